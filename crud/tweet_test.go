package crud

import (
	"strings"
	"testing"
	"time"

	"twtr/domain"
	"twtr/errs"
)

func TestCreateTweet(t *testing.T) {
	db := testDB(t)
	us := NewUserService(db, "test-pepper", "test-hmac-key")
	ts := NewTweetService(db)
	alice := createTestUser(t, us, "alice")

	tweet := createTestTweet(t, ts, alice.ID, "hello")
	if tweet.ID == 0 {
		t.Error("expected the created tweet to have an ID")
	}
	if tweet.User.Username != "alice" {
		t.Errorf("expected the author to be resolved, got %+v", tweet.User)
	}
	if got := countRows(t, db, &domain.Tweet{}); got != 1 {
		t.Errorf("expected exactly 1 tweet row, got %d", got)
	}
}

func TestCreateTweetContentBounds(t *testing.T) {
	db := testDB(t)
	us := NewUserService(db, "test-pepper", "test-hmac-key")
	ts := NewTweetService(db)
	alice := createTestUser(t, us, "alice")

	// Exactly 280 characters is accepted.
	max := strings.Repeat("a", 280)
	if err := ts.Create(&domain.Tweet{UserID: alice.ID, Content: max}); err != nil {
		t.Fatalf("expected a 280-character tweet to be accepted, got %v", err)
	}

	// The limit counts runes, not bytes.
	maxRunes := strings.Repeat("é", 280)
	if err := ts.Create(&domain.Tweet{UserID: alice.ID, Content: maxRunes}); err != nil {
		t.Fatalf("expected 280 multi-byte characters to be accepted, got %v", err)
	}

	// 281 characters is rejected and creates no row.
	err := ts.Create(&domain.Tweet{UserID: alice.ID, Content: max + "a"})
	if errs.ErrorCode(err) != errs.EINVALID {
		t.Fatalf("expected EINVALID for a 281-character tweet, got %v", err)
	}
	if fields := errs.ErrorFields(err); len(fields["content"]) == 0 {
		t.Errorf("expected a field error on content, got %v", fields)
	}
	if got := countRows(t, db, &domain.Tweet{}); got != 2 {
		t.Errorf("expected 2 tweet rows, got %d", got)
	}
}

func TestCreateTweetContentRequired(t *testing.T) {
	db := testDB(t)
	us := NewUserService(db, "test-pepper", "test-hmac-key")
	ts := NewTweetService(db)
	alice := createTestUser(t, us, "alice")

	for _, content := range []string{"", "   "} {
		err := ts.Create(&domain.Tweet{UserID: alice.ID, Content: content})
		if errs.ErrorCode(err) != errs.EINVALID {
			t.Fatalf("expected EINVALID for content %q, got %v", content, err)
		}
	}
	if got := countRows(t, db, &domain.Tweet{}); got != 0 {
		t.Errorf("expected no tweet rows, got %d", got)
	}
}

func TestAllOrdersNewestFirst(t *testing.T) {
	db := testDB(t)
	us := NewUserService(db, "test-pepper", "test-hmac-key")
	ts := NewTweetService(db)
	alice := createTestUser(t, us, "alice")

	now := time.Now()
	older := &domain.Tweet{UserID: alice.ID, Content: "older", CreatedAt: now.Add(-time.Hour)}
	newer := &domain.Tweet{UserID: alice.ID, Content: "newer", CreatedAt: now}
	if err := ts.Create(older); err != nil {
		t.Fatalf("err creating tweet: %v", err)
	}
	if err := ts.Create(newer); err != nil {
		t.Fatalf("err creating tweet: %v", err)
	}

	tweets, err := ts.All()
	if err != nil {
		t.Fatalf("err listing tweets: %v", err)
	}
	if len(tweets) != 2 {
		t.Fatalf("expected 2 tweets, got %d", len(tweets))
	}
	if tweets[0].Content != "newer" || tweets[1].Content != "older" {
		t.Errorf("expected newest-first ordering, got %q then %q", tweets[0].Content, tweets[1].Content)
	}
	if tweets[0].User.Username != "alice" {
		t.Errorf("expected the author to be resolved, got %+v", tweets[0].User)
	}
}

func TestTweetByID(t *testing.T) {
	db := testDB(t)
	us := NewUserService(db, "test-pepper", "test-hmac-key")
	ts := NewTweetService(db)
	alice := createTestUser(t, us, "alice")
	tweet := createTestTweet(t, ts, alice.ID, "hello")

	found, err := ts.ByID(tweet.ID)
	if err != nil {
		t.Fatalf("expected to find the tweet, got %v", err)
	}
	if found.Content != "hello" || found.User.Username != "alice" {
		t.Errorf("unexpected tweet: %+v", found)
	}

	_, err = ts.ByID(9999)
	if errs.ErrorCode(err) != errs.ENOTFOUND {
		t.Errorf("expected ENOTFOUND for a missing tweet, got %v", err)
	}
}

func TestDeleteTweetRemovesLikes(t *testing.T) {
	db := testDB(t)
	us := NewUserService(db, "test-pepper", "test-hmac-key")
	ts := NewTweetService(db)
	ls := NewLikeService(db)
	alice := createTestUser(t, us, "alice")
	bob := createTestUser(t, us, "bob")
	tweet := createTestTweet(t, ts, alice.ID, "hello")

	if err := ls.Create(&domain.Like{UserID: bob.ID, TweetID: tweet.ID}); err != nil {
		t.Fatalf("expected like to succeed, got %v", err)
	}

	if err := ts.Delete(tweet); err != nil {
		t.Fatalf("expected delete to succeed, got %v", err)
	}
	if got := countRows(t, db, &domain.Tweet{}); got != 0 {
		t.Errorf("expected no tweet rows after delete, got %d", got)
	}
	if got := countRows(t, db, &domain.Like{}); got != 0 {
		t.Errorf("expected the tweet's likes to be deleted with it, got %d", got)
	}
}
