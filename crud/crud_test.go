package crud

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"twtr/domain"
)

// testDB opens a fresh in-memory sqlite database, migrated to the full
// schema. Each test gets its own database, named after the test so that
// parallel tests never share state.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("err opening test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("err getting underlying sql.DB: %v", err)
	}
	// The shared in-memory database disappears with its last connection.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	err = db.AutoMigrate(
		domain.User{},
		domain.Friendship{},
		domain.Tweet{},
		domain.Like{},
	)
	if err != nil {
		t.Fatalf("err migrating test database: %v", err)
	}
	return db
}

// createTestUser persists a valid user through the real UserService, so all
// signup-side effects (hashing, remember token) are in place.
func createTestUser(t *testing.T, us *UserService, username string) *domain.User {
	t.Helper()
	user := &domain.User{
		Username:        username,
		Email:           username + "@example.com",
		Password:        "horse-battery-staple",
		PasswordConfirm: "horse-battery-staple",
	}
	if err := us.Create(context.Background(), user); err != nil {
		t.Fatalf("err creating test user %q: %v", username, err)
	}
	return user
}

// createTestTweet persists a tweet for the given user.
func createTestTweet(t *testing.T, ts *TweetService, userID int, content string) *domain.Tweet {
	t.Helper()
	tweet := &domain.Tweet{UserID: userID, Content: content}
	if err := ts.Create(tweet); err != nil {
		t.Fatalf("err creating test tweet: %v", err)
	}
	return tweet
}

// TestMigrationEnforcesNotNull checks the migrated schema itself: the
// required columns must come out NOT NULL, which only happens when the gorm
// tag is spelled in a form the schema parser recognizes.
func TestMigrationEnforcesNotNull(t *testing.T) {
	db := testDB(t)

	checks := []struct {
		model  interface{}
		column string
	}{
		{&domain.User{}, "username"},
		{&domain.User{}, "email"},
		{&domain.User{}, "password_hash"},
		{&domain.Friendship{}, "follower_id"},
		{&domain.Friendship{}, "followee_id"},
		{&domain.Tweet{}, "user_id"},
		{&domain.Tweet{}, "content"},
		{&domain.Like{}, "user_id"},
		{&domain.Like{}, "tweet_id"},
	}
	for _, c := range checks {
		columns, err := db.Migrator().ColumnTypes(c.model)
		if err != nil {
			t.Fatalf("err reading column types for %T: %v", c.model, err)
		}
		found := false
		for _, col := range columns {
			if col.Name() != c.column {
				continue
			}
			found = true
			if nullable, ok := col.Nullable(); ok && nullable {
				t.Errorf("expected %T column %q to be NOT NULL", c.model, c.column)
			}
		}
		if !found {
			t.Errorf("column %q not found on %T", c.column, c.model)
		}
	}
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int {
	t.Helper()
	var count int64
	if err := db.Model(model).Count(&count).Error; err != nil {
		t.Fatalf("err counting rows: %v", err)
	}
	return int(count)
}
