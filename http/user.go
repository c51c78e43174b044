package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"twtr/auth"
	"twtr/domain"
	"twtr/errs"
)

func (s *Server) registerUserRoutes(r *mux.Router) {
	// Get the profile data of a specific user.
	r.HandleFunc("/accounts/{username}/", s.requireAuth(s.handleGetProfile)).Methods("GET")

	// Follow / unfollow a specific user.
	r.HandleFunc("/accounts/{username}/follow/", s.requireAuth(s.handleCreateFollow)).Methods("POST")
	r.HandleFunc("/accounts/{username}/unfollow/", s.requireAuth(s.handleDeleteFollow)).Methods("POST")

	// List who a user follows and who follows them.
	r.HandleFunc("/accounts/{username}/following/", s.requireAuth(s.handleListFollowing)).Methods("GET")
	r.HandleFunc("/accounts/{username}/followers/", s.requireAuth(s.handleListFollowers)).Methods("GET")
}

// profileResponse is the json rendering of a profile page: the user, their
// tweets newest first, and how the viewer relates to them. All values are
// computed from the stores at request time.
type profileResponse struct {
	User           *domain.User   `json:"user"`
	Tweets         []domain.Tweet `json:"tweets"`
	IsFollowing    bool           `json:"is_following"`
	FollowingCount int            `json:"following_count"`
	FollowersCount int            `json:"followers_count"`
}

// handleGetProfile handles the route "GET /accounts/{username}/".
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := s.us.ByUsername(r.Context(), mux.Vars(r)["username"])
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	tweets, err := s.ts.ByUserID(user.ID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	followingCount, err := s.fs.CountFollowing(user.ID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	followersCount, err := s.fs.CountFollowers(user.ID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	viewer := auth.GetUser(r.Context())
	resp := profileResponse{
		User:           user,
		Tweets:         tweets,
		IsFollowing:    s.fs.IsFollowing(viewer.ID, user.ID),
		FollowingCount: followingCount,
		FollowersCount: followersCount,
	}
	if err := json.NewEncoder(w).Encode(&resp); err != nil {
		errs.LogError(r, err)
	}
}

// handleCreateFollow handles the route "POST /accounts/{username}/follow/".
// The authenticated caller starts following the named user and gets
// redirected to that user's profile.
func (s *Server) handleCreateFollow(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	followee, err := s.us.ByUsername(r.Context(), username)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	follower := auth.GetUser(r.Context())
	friendship := domain.Friendship{
		FollowerID: follower.ID,
		FolloweeID: followee.ID,
	}
	if err := s.fs.Create(&friendship); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	followsTotal.Inc()
	http.Redirect(w, r, "/accounts/"+username+"/", http.StatusFound)
}

// handleDeleteFollow handles the route "POST /accounts/{username}/unfollow/".
// Unfollowing a user the caller doesn't follow is a no-op, not an error.
func (s *Server) handleDeleteFollow(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	followee, err := s.us.ByUsername(r.Context(), username)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	follower := auth.GetUser(r.Context())
	friendship := domain.Friendship{
		FollowerID: follower.ID,
		FolloweeID: followee.ID,
	}
	if err := s.fs.Delete(&friendship); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	http.Redirect(w, r, "/accounts/"+username+"/", http.StatusFound)
}

// handleListFollowing handles the route "GET /accounts/{username}/following/".
// It returns the edges where the named user is the follower, each with the
// followed user resolved.
func (s *Server) handleListFollowing(w http.ResponseWriter, r *http.Request) {
	user, err := s.us.ByUsername(r.Context(), mux.Vars(r)["username"])
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	friendships, err := s.fs.Following(user.ID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := json.NewEncoder(w).Encode(friendships); err != nil {
		errs.LogError(r, err)
	}
}

// handleListFollowers handles the route "GET /accounts/{username}/followers/".
// It returns the edges where the named user is the followee, each with the
// following user resolved.
func (s *Server) handleListFollowers(w http.ResponseWriter, r *http.Request) {
	user, err := s.us.ByUsername(r.Context(), mux.Vars(r)["username"])
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	friendships, err := s.fs.Followers(user.ID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := json.NewEncoder(w).Encode(friendships); err != nil {
		errs.LogError(r, err)
	}
}
