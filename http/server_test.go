package http

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"twtr/crud"
	"twtr/domain"
)

// newTestServer builds a full server on a fresh in-memory sqlite database.
// CSRF and CORS stay off so the tests can post plain forms.
func newTestServer(t *testing.T) (*Server, *crud.Services) {
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

	services, err := crud.NewServices(
		db,
		crud.WithUser("test-pepper", "test-hmac-key"),
		crud.WithTweet(),
		crud.WithFriendship(),
		crud.WithLike(),
	)
	if err != nil {
		t.Fatalf("err creating services: %v", err)
	}
	return NewServer(false, "", nil, services), services
}

// postForm performs a form-encoded POST against the server, optionally with
// a session cookie.
func postForm(s *Server, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)
	return rr
}

// get performs a GET against the server, optionally with a session cookie.
func get(s *Server, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)
	return rr
}

// signupForm builds a valid signup form for the given username.
func signupForm(username string) url.Values {
	return url.Values{
		"username":  {username},
		"email":     {username + "@example.com"},
		"password1": {"horse-battery-staple"},
		"password2": {"horse-battery-staple"},
	}
}

// signup registers a user through the real endpoint and returns the session
// cookie of the now authenticated user.
func signup(t *testing.T, s *Server, username string) *http.Cookie {
	t.Helper()
	rr := postForm(s, "/accounts/signup/", signupForm(username), nil)
	if rr.Code != http.StatusFound {
		t.Fatalf("expected signup of %q to redirect, got %d: %s", username, rr.Code, rr.Body.String())
	}
	for _, c := range rr.Result().Cookies() {
		if c.Name == "remember_token" && c.Value != "" {
			return c
		}
	}
	t.Fatalf("expected signup of %q to set a session cookie", username)
	return nil
}

// createTweet posts a tweet as the user behind the given cookie.
func createTweet(t *testing.T, s *Server, cookie *http.Cookie, content string) {
	t.Helper()
	rr := postForm(s, "/tweets/create/", url.Values{"content": {content}}, cookie)
	if rr.Code != http.StatusFound {
		t.Fatalf("expected tweet creation to redirect, got %d: %s", rr.Code, rr.Body.String())
	}
}
