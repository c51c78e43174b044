package crud

import (
	"errors"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"twtr/domain"
	"twtr/errs"
)

// TweetService manages Tweets.
// It implements the domain.TweetService interface.
type TweetService struct {
	tweetValidator
}

// tweetValidator runs validations on incoming Tweet data.
// On success, it passes the data on to tweetGorm.
// Otherwise, it returns the error of the validation that has failed.
type tweetValidator struct {
	tweetGorm
}

// tweetGorm runs CRUD operations on the database using incoming Tweet data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type tweetGorm struct {
	db *gorm.DB
}

// NewTweetService returns an instance of TweetService.
func NewTweetService(db *gorm.DB) *TweetService {
	return &TweetService{
		tweetValidator{
			tweetGorm{
				db: db,
			},
		},
	}
}

// Ensure the TweetService struct properly implements the domain.TweetService
// interface. If it does not, then this expression becomes invalid and won't compile.
var _ domain.TweetService = &TweetService{}

// Create runs validations needed for creating new Tweet database records.
func (tv *tweetValidator) Create(tweet *domain.Tweet) error {
	err := runTweetValFns(tweet,
		tv.userIDValid,
		tv.contentRequired,
		tv.contentMaxLength)
	if err != nil {
		return err
	}
	return tv.tweetGorm.Create(tweet)
}

// Delete runs validations needed for deleting existing Tweet database records.
func (tv *tweetValidator) Delete(tweet *domain.Tweet) error {
	err := runTweetValFns(tweet, tv.idValid)
	if err != nil {
		return err
	}
	return tv.tweetGorm.Delete(tweet)
}

// runTweetValFns runs any number of functions of type tweetValFn on the
// passed in Tweet object. Field-scoped validation errors are collected and
// returned as one error; any other error aborts immediately.
func runTweetValFns(tweet *domain.Tweet, fns ...tweetValFn) error {
	fields := make(map[string][]string)
	for _, fn := range fns {
		if err := fn(tweet); err != nil {
			var e *errs.Error
			if errors.As(err, &e) && e.Code == errs.EINVALID && e.Field != "" {
				fields[e.Field] = append(fields[e.Field], e.Message)
				continue
			}
			return err
		}
	}
	if len(fields) > 0 {
		return errs.FieldErrors(fields)
	}
	return nil
}

// A tweetValFn is any function that takes in a pointer to a domain.Tweet
// object and returns an error.
type tweetValFn func(tweet *domain.Tweet) error

// userIDValid ensures that the userId is not empty.
func (tv *tweetValidator) userIDValid(tweet *domain.Tweet) error {
	if tweet.UserID <= 0 {
		return errs.Errorf(errs.EINTERNAL, "tweet has no owner")
	}
	return nil
}

// contentRequired makes sure that the Tweet's content is not empty.
func (tv *tweetValidator) contentRequired(tweet *domain.Tweet) error {
	if strings.TrimSpace(tweet.Content) == "" {
		return errs.FieldErrorf("content", "Tweet content must not be empty.")
	}
	return nil
}

// contentMaxLength makes sure that the Tweet's content does not exceed the
// maximum content length. The limit counts runes, not bytes.
func (tv *tweetValidator) contentMaxLength(tweet *domain.Tweet) error {
	if utf8.RuneCountInString(tweet.Content) > domain.ContentMaxLength {
		return errs.FieldErrorf("content", "Tweet content max length is 280 characters.")
	}
	return nil
}

// idValid makes sure that the passed in ID of a Tweet to be deleted is
// greater than 0.
func (tv *tweetValidator) idValid(tweet *domain.Tweet) error {
	if tweet.ID <= 0 {
		return errs.Errorf(errs.EINVALID, "Invalid Id.")
	}
	return nil
}

// All retrieves every tweet system-wide for the home timeline, newest first,
// each with its author preloaded.
func (tg *tweetGorm) All() ([]domain.Tweet, error) {
	var tweets []domain.Tweet
	err := tg.db.
		Preload("User").
		Order("created_at desc").
		Find(&tweets).Error
	if err != nil {
		return nil, err
	}
	return tweets, nil
}

// ByID retrieves a single Tweet by ID, along with its author.
func (tg *tweetGorm) ByID(id int) (*domain.Tweet, error) {
	var tweet domain.Tweet
	err := tg.db.
		Preload("User").
		First(&tweet, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Errorf(errs.ENOTFOUND, "The tweet does not exist.")
		}
		return nil, err
	}
	return &tweet, nil
}

// ByUserID retrieves all tweets of a user, newest first.
func (tg *tweetGorm) ByUserID(userID int) ([]domain.Tweet, error) {
	var tweets []domain.Tweet
	err := tg.db.
		Where("user_id = ?", userID).
		Preload("User").
		Order("created_at desc").
		Find(&tweets).Error
	if err != nil {
		return nil, err
	}
	return tweets, nil
}

// Create stores the data from the Tweet object in a new database record.
// On success, it eager-loads the author so that the response displays the
// full tweet.
func (tg *tweetGorm) Create(tweet *domain.Tweet) error {
	if err := tg.db.Create(tweet).Error; err != nil {
		return err
	}
	return tg.db.Preload("User").First(tweet).Error
}

// Delete permanently deletes a Tweet record from the database, along with
// its associated Likes.
func (tg *tweetGorm) Delete(tweet *domain.Tweet) error {
	return tg.db.Select("Likes").Delete(tweet).Error
}
