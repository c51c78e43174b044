package domain

import "time"

// Friendship represents a directed follow edge between two users.
// A Friendship is created when one user decides to follow another user.
// The FollowerID is the ID of the user that follows, and the FolloweeID is
// the ID of the user that is being followed. At most one edge may exist per
// ordered pair, enforced by a composite unique index on the friendships table.
type Friendship struct {
	ID         int  `json:"id"`
	FollowerID int  `json:"-" gorm:"not null;index;uniqueIndex:idx_friendships_follower_followee"`
	Follower   User `json:"follower" gorm:"constraint:OnDelete:CASCADE"`
	FolloweeID int  `json:"-" gorm:"not null;index;uniqueIndex:idx_friendships_follower_followee"`
	Followee   User `json:"followee" gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
}

// FriendshipService is a set of methods to manipulate and work with the
// Friendship model. Edges are immutable, there is no update operation.
type FriendshipService interface {
	Create(friendship *Friendship) error
	Delete(friendship *Friendship) error
	Following(userID int) ([]Friendship, error)
	Followers(userID int) ([]Friendship, error)
	CountFollowing(userID int) (int, error)
	CountFollowers(userID int) (int, error)
	IsFollowing(followerID, followeeID int) bool
}
