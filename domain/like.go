package domain

import "time"

// Like represents a many-to-many relationship between a User and a Tweet.
// A user may like a given tweet at most once, enforced by a composite unique
// index on the likes table. Likes go away with either endpoint.
type Like struct {
	ID      int   `json:"id"`
	UserID  int   `json:"user_id" gorm:"not null;uniqueIndex:idx_likes_user_tweet"`
	TweetID int   `json:"tweet_id" gorm:"not null;uniqueIndex:idx_likes_user_tweet"`
	Tweet   Tweet `json:"tweet"`

	CreatedAt time.Time `json:"created_at"`
}

// LikeService is a set of methods to manipulate and work with the Like model.
type LikeService interface {
	Create(like *Like) error
	Delete(like *Like) error
	ByUserID(userID int) ([]Like, error)
	CountByTweet(tweetID int) (int, error)
	Likes(userID, tweetID int) bool
}
