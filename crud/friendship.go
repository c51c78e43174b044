package crud

import (
	"errors"

	"gorm.io/gorm"

	"twtr/domain"
	"twtr/errs"
)

// FriendshipService manages follow edges between users.
// It implements the domain.FriendshipService interface.
type FriendshipService struct {
	friendshipValidator
}

// friendshipValidator runs validations on incoming Friendship data.
// On success, it passes the data on to friendshipGorm.
// Otherwise, it returns the error of the validation that has failed.
type friendshipValidator struct {
	friendshipGorm
}

// friendshipGorm runs CRUD operations on the database using incoming
// Friendship data. It assumes that data has been validated.
type friendshipGorm struct {
	db *gorm.DB
}

// NewFriendshipService returns an instance of FriendshipService.
func NewFriendshipService(db *gorm.DB) *FriendshipService {
	return &FriendshipService{
		friendshipValidator{
			friendshipGorm{
				db: db,
			},
		},
	}
}

// Ensure the FriendshipService struct properly implements the
// domain.FriendshipService interface.
var _ domain.FriendshipService = &FriendshipService{}

// Create runs validations needed for creating new Friendship database
// records. The duplicate check runs as a business rule before the composite
// unique index on (follower_id, followee_id) could surface a driver error.
func (fv *friendshipValidator) Create(friendship *domain.Friendship) error {
	err := runFriendshipValFns(friendship,
		fv.followeeExists,
		fv.followeeIsNotFollower,
		fv.notAlreadyFollowed)
	if err != nil {
		return err
	}
	return fv.friendshipGorm.Create(friendship)
}

// Delete runs validations needed for deleting existing Friendship database
// records. Deleting an edge that does not exist is a silent no-op.
func (fv *friendshipValidator) Delete(friendship *domain.Friendship) error {
	err := runFriendshipValFns(friendship,
		fv.followeeExists,
		fv.followeeIsNotFollower)
	if err != nil {
		return err
	}
	return fv.friendshipGorm.Delete(friendship)
}

// runFriendshipValFns runs any number of functions of type friendshipValFn on
// the passed in Friendship object. If none of them returns an error, it
// returns nil. Otherwise, it returns the respective error.
func runFriendshipValFns(friendship *domain.Friendship, fns ...friendshipValFn) error {
	for _, fn := range fns {
		if err := fn(friendship); err != nil {
			return err
		}
	}
	return nil
}

// A friendshipValFn is any function that takes in a pointer to a
// domain.Friendship object and returns an error.
type friendshipValFn func(friendship *domain.Friendship) error

// followeeExists makes sure that the user to be followed actually exists.
func (fv *friendshipValidator) followeeExists(friendship *domain.Friendship) error {
	err := fv.db.First(&domain.User{}, "id = ?", friendship.FolloweeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.Errorf(errs.ENOTFOUND, "The user does not exist.")
		}
		return err
	}
	return nil
}

// followeeIsNotFollower makes sure that a user does not follow themselves.
func (fv *friendshipValidator) followeeIsNotFollower(friendship *domain.Friendship) error {
	if friendship.FollowerID == friendship.FolloweeID {
		return errs.Errorf(errs.EINVALID, "You cannot follow yourself.")
	}
	return nil
}

// notAlreadyFollowed makes sure that the edge does not already exist.
func (fv *friendshipValidator) notAlreadyFollowed(friendship *domain.Friendship) error {
	err := fv.db.
		Where("follower_id = ? AND followee_id = ?", friendship.FollowerID, friendship.FolloweeID).
		First(&domain.Friendship{}).Error
	if err == nil {
		return errs.Errorf(errs.EINVALID, "You already follow this user.")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

// Create stores the data from the Friendship object in a new database record.
// On success, it eager-loads both endpoints so that the response displays
// the full data of the edge.
func (fg *friendshipGorm) Create(friendship *domain.Friendship) error {
	if err := fg.db.Create(friendship).Error; err != nil {
		return err
	}
	return fg.db.Preload("Follower").Preload("Followee").First(friendship).Error
}

// Delete removes the edge matching the Friendship's ordered pair, if any.
func (fg *friendshipGorm) Delete(friendship *domain.Friendship) error {
	return fg.db.
		Where("follower_id = ? AND followee_id = ?", friendship.FollowerID, friendship.FolloweeID).
		Delete(&domain.Friendship{}).Error
}

// Following retrieves the edges where the given user is the follower, each
// with the followed user preloaded, newest first.
func (fg *friendshipGorm) Following(userID int) ([]domain.Friendship, error) {
	var friendships []domain.Friendship
	err := fg.db.
		Where("follower_id = ?", userID).
		Preload("Followee").
		Order("created_at desc").
		Find(&friendships).Error
	if err != nil {
		return nil, err
	}
	return friendships, nil
}

// Followers retrieves the edges where the given user is the followee, each
// with the following user preloaded, newest first.
func (fg *friendshipGorm) Followers(userID int) ([]domain.Friendship, error) {
	var friendships []domain.Friendship
	err := fg.db.
		Where("followee_id = ?", userID).
		Preload("Follower").
		Order("created_at desc").
		Find(&friendships).Error
	if err != nil {
		return nil, err
	}
	return friendships, nil
}

// CountFollowing returns the number of users the given user follows.
func (fg *friendshipGorm) CountFollowing(userID int) (int, error) {
	var count int64
	err := fg.db.Model(&domain.Friendship{}).Where("follower_id = ?", userID).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// CountFollowers returns the number of users following the given user.
func (fg *friendshipGorm) CountFollowers(userID int) (int, error) {
	var count int64
	err := fg.db.Model(&domain.Friendship{}).Where("followee_id = ?", userID).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// IsFollowing returns whether an edge from follower to followee exists.
func (fg *friendshipGorm) IsFollowing(followerID, followeeID int) bool {
	err := fg.db.
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		First(&domain.Friendship{}).Error
	return err == nil
}
