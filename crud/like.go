package crud

import (
	"errors"

	"gorm.io/gorm"

	"twtr/domain"
	"twtr/errs"
)

// LikeService manages Likes.
// It implements the domain.LikeService interface.
type LikeService struct {
	likeValidator
}

// likeValidator runs validations on incoming Like data.
// On success, it passes the data on to likeGorm.
// Otherwise, it returns the error of the validation that has failed.
type likeValidator struct {
	likeGorm
}

// likeGorm runs CRUD operations on the database using incoming Like data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type likeGorm struct {
	db *gorm.DB
}

// NewLikeService returns an instance of LikeService.
func NewLikeService(db *gorm.DB) *LikeService {
	return &LikeService{
		likeValidator{
			likeGorm{
				db: db,
			},
		},
	}
}

// Ensure the LikeService struct properly implements the domain.LikeService
// interface. If it does not, then this expression becomes invalid and won't compile.
var _ domain.LikeService = &LikeService{}

// Create runs validations needed for creating new Like database records.
func (lv *likeValidator) Create(like *domain.Like) error {
	err := runLikeValFns(like,
		lv.userIDValid,
		lv.likedTweetExists,
		lv.notAlreadyLiked)
	if err != nil {
		return err
	}
	return lv.likeGorm.Create(like)
}

// Delete removes the Like matching the (user, tweet) pair. Unliking a tweet
// that was never liked is a silent no-op.
func (lv *likeValidator) Delete(like *domain.Like) error {
	err := runLikeValFns(like,
		lv.userIDValid,
		lv.likedTweetExists)
	if err != nil {
		return err
	}
	return lv.likeGorm.Delete(like)
}

// runLikeValFns runs any number of functions of type likeValFn on the passed
// in Like object. If none of them returns an error, it returns nil.
// Otherwise, it returns the respective error.
func runLikeValFns(like *domain.Like, fns ...likeValFn) error {
	for _, fn := range fns {
		if err := fn(like); err != nil {
			return err
		}
	}
	return nil
}

// A likeValFn is any function that takes in a pointer to a domain.Like
// object and returns an error.
type likeValFn func(like *domain.Like) error

// userIDValid ensures that the userId is not empty.
func (lv *likeValidator) userIDValid(like *domain.Like) error {
	if like.UserID <= 0 {
		return errs.Errorf(errs.EINTERNAL, "like has no owner")
	}
	return nil
}

// likedTweetExists makes sure that the tweet to be liked actually exists.
func (lv *likeValidator) likedTweetExists(like *domain.Like) error {
	err := lv.db.First(&domain.Tweet{}, "id = ?", like.TweetID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.Errorf(errs.ENOTFOUND, "The tweet does not exist.")
		}
		return err
	}
	return nil
}

// notAlreadyLiked makes sure that the user doesn't already like the tweet.
func (lv *likeValidator) notAlreadyLiked(like *domain.Like) error {
	err := lv.db.
		Where("user_id = ? AND tweet_id = ?", like.UserID, like.TweetID).
		First(&domain.Like{}).Error
	if err == nil {
		return errs.Errorf(errs.EINVALID, "You already like this tweet.")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

// ByUserID retrieves all likes of a user, along with the Tweet belonging to
// each Like.
func (lg *likeGorm) ByUserID(userID int) ([]domain.Like, error) {
	var likes []domain.Like
	err := lg.db.
		Where("user_id = ?", userID).
		Preload("Tweet.User").
		Order("created_at desc").
		Find(&likes).Error
	if err != nil {
		return nil, err
	}
	return likes, nil
}

// CountByTweet returns how many users like the given tweet.
func (lg *likeGorm) CountByTweet(tweetID int) (int, error) {
	var count int64
	err := lg.db.Model(&domain.Like{}).Where("tweet_id = ?", tweetID).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// Likes returns whether the given user likes the given tweet.
func (lg *likeGorm) Likes(userID, tweetID int) bool {
	err := lg.db.
		Where("user_id = ? AND tweet_id = ?", userID, tweetID).
		First(&domain.Like{}).Error
	return err == nil
}

// Create stores the data from the Like object in a new database record.
func (lg *likeGorm) Create(like *domain.Like) error {
	return lg.db.Create(like).Error
}

// Delete removes the database record matching the Like's (user, tweet) pair,
// if any.
func (lg *likeGorm) Delete(like *domain.Like) error {
	return lg.db.
		Where("user_id = ? AND tweet_id = ?", like.UserID, like.TweetID).
		Delete(&domain.Like{}).Error
}
