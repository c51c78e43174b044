package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"twtr/domain"
)

func TestProfile(t *testing.T) {
	s, _ := newTestServer(t)
	cookieAlice := signup(t, s, "alice")
	cookieBob := signup(t, s, "bob")
	createTweet(t, s, cookieAlice, "hello")

	// B follows A.
	rr := postForm(s, "/accounts/alice/follow/", nil, cookieBob)
	if rr.Code != http.StatusFound {
		t.Fatalf("expected follow to redirect, got %d: %s", rr.Code, rr.Body.String())
	}
	if loc := rr.Header().Get("Location"); loc != "/accounts/alice/" {
		t.Errorf("expected redirect to alice's profile, got %q", loc)
	}

	rr = get(s, "/accounts/alice/", cookieBob)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for the profile, got %d", rr.Code)
	}
	var profile profileResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &profile); err != nil {
		t.Fatalf("err decoding profile: %v", err)
	}
	if profile.User.Username != "alice" {
		t.Errorf("expected alice's profile, got %q", profile.User.Username)
	}
	if len(profile.Tweets) != 1 || profile.Tweets[0].Content != "hello" {
		t.Errorf("expected exactly one tweet with content hello, got %+v", profile.Tweets)
	}
	if !profile.IsFollowing {
		t.Error("expected is_following to be true for bob")
	}
	if profile.FollowersCount != 1 {
		t.Errorf("expected followers_count=1, got %d", profile.FollowersCount)
	}
	if profile.FollowingCount != 0 {
		t.Errorf("expected following_count=0, got %d", profile.FollowingCount)
	}

	// B unfollows A; the counts must reflect the store at query time.
	rr = postForm(s, "/accounts/alice/unfollow/", nil, cookieBob)
	if rr.Code != http.StatusFound {
		t.Fatalf("expected unfollow to redirect, got %d", rr.Code)
	}
	rr = get(s, "/accounts/alice/", cookieBob)
	if err := json.Unmarshal(rr.Body.Bytes(), &profile); err != nil {
		t.Fatalf("err decoding profile: %v", err)
	}
	if profile.FollowersCount != 0 {
		t.Errorf("expected followers_count=0 after unfollow, got %d", profile.FollowersCount)
	}
	if profile.IsFollowing {
		t.Error("expected is_following to be false after unfollow")
	}
}

func TestProfileNotFound(t *testing.T) {
	s, _ := newTestServer(t)
	cookie := signup(t, s, "alice")

	rr := get(s, "/accounts/nosuchuser/", cookie)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for an unknown profile, got %d", rr.Code)
	}
}

func TestFollowStatusCodes(t *testing.T) {
	s, _ := newTestServer(t)
	cookie := signup(t, s, "alice")
	signup(t, s, "bob")

	// Unknown target.
	rr := postForm(s, "/accounts/nosuchuser/follow/", nil, cookie)
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404 for following an unknown user, got %d", rr.Code)
	}

	// Self-follow.
	rr = postForm(s, "/accounts/alice/follow/", nil, cookie)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a self-follow, got %d", rr.Code)
	}

	// First follow works, second is rejected.
	rr = postForm(s, "/accounts/bob/follow/", nil, cookie)
	if rr.Code != http.StatusFound {
		t.Errorf("expected follow to redirect, got %d", rr.Code)
	}
	rr = postForm(s, "/accounts/bob/follow/", nil, cookie)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a duplicate follow, got %d", rr.Code)
	}

	// Self-unfollow is 400; unfollowing without an edge is fine.
	rr = postForm(s, "/accounts/alice/unfollow/", nil, cookie)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a self-unfollow, got %d", rr.Code)
	}
	rr = postForm(s, "/accounts/bob/unfollow/", nil, cookie)
	if rr.Code != http.StatusFound {
		t.Errorf("expected unfollow to redirect, got %d", rr.Code)
	}
	rr = postForm(s, "/accounts/bob/unfollow/", nil, cookie)
	if rr.Code != http.StatusFound {
		t.Errorf("expected repeated unfollow to redirect, got %d", rr.Code)
	}
}

func TestFollowingAndFollowersListings(t *testing.T) {
	s, _ := newTestServer(t)
	cookieAlice := signup(t, s, "alice")
	cookieBob := signup(t, s, "bob")
	cookieCarol := signup(t, s, "carol")

	// bob and carol follow alice; alice follows carol.
	for _, req := range []struct {
		path   string
		cookie *http.Cookie
	}{
		{"/accounts/alice/follow/", cookieBob},
		{"/accounts/alice/follow/", cookieCarol},
		{"/accounts/carol/follow/", cookieAlice},
	} {
		if rr := postForm(s, req.path, nil, req.cookie); rr.Code != http.StatusFound {
			t.Fatalf("expected follow to redirect, got %d", rr.Code)
		}
	}

	rr := get(s, "/accounts/alice/followers/", cookieBob)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for the followers listing, got %d", rr.Code)
	}
	var followers []domain.Friendship
	if err := json.Unmarshal(rr.Body.Bytes(), &followers); err != nil {
		t.Fatalf("err decoding followers: %v", err)
	}
	if len(followers) != 2 {
		t.Fatalf("expected 2 followers, got %d", len(followers))
	}
	for _, f := range followers {
		if f.Follower.Username == "" {
			t.Errorf("expected the follower endpoint to be resolved, got %+v", f)
		}
	}

	rr = get(s, "/accounts/alice/following/", cookieBob)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for the following listing, got %d", rr.Code)
	}
	var following []domain.Friendship
	if err := json.Unmarshal(rr.Body.Bytes(), &following); err != nil {
		t.Fatalf("err decoding following: %v", err)
	}
	if len(following) != 1 || following[0].Followee.Username != "carol" {
		t.Errorf("expected alice to follow exactly carol, got %+v", following)
	}
}
