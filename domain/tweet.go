package domain

import "time"

// ContentMaxLength is the maximum number of characters (runes, not bytes)
// a tweet may contain.
const ContentMaxLength = 280

// Tweet is a short text post owned by a user. Tweets are never updated in
// place; they are created and, only by their owner, deleted.
type Tweet struct {
	ID      int    `json:"id"`
	UserID  int    `json:"user_id" gorm:"not null;index"`
	User    User   `json:"user" gorm:"constraint:OnDelete:CASCADE"`
	Content string `json:"content" gorm:"not null;size:280"`

	Likes []Like `json:"likes,omitempty" gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
}

// TweetService is a set of methods to manipulate and work with the Tweet model.
type TweetService interface {
	All() ([]Tweet, error)
	ByID(id int) (*Tweet, error)
	ByUserID(userID int) ([]Tweet, error)
	Create(tweet *Tweet) error
	Delete(tweet *Tweet) error
}
