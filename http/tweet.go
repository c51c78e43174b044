package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"twtr/auth"
	"twtr/domain"
	"twtr/errs"
)

func (s *Server) registerTweetRoutes(r *mux.Router) {
	// The home timeline.
	r.HandleFunc("/tweets/", s.requireAuth(s.handleHome)).Methods("GET")

	// Create a new tweet.
	r.HandleFunc("/tweets/create/", s.requireAuth(s.handleForm)).Methods("GET")
	r.HandleFunc("/tweets/create/", s.requireAuth(s.handleCreateTweet)).Methods("POST")

	// Show a single tweet.
	r.HandleFunc("/tweets/{id:[0-9]+}/", s.requireAuth(s.handleGetTweet)).Methods("GET")

	// Delete an existing tweet. Only its owner may do that.
	r.HandleFunc("/tweets/{id:[0-9]+}/delete/", s.requireAuth(s.handleDeleteTweet)).Methods("POST")
}

// handleHome handles the route "GET /tweets/".
// It lists all tweets system-wide, newest first, each with its author.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	tweets, err := s.ts.All()
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := json.NewEncoder(w).Encode(tweets); err != nil {
		errs.LogError(r, err)
	}
}

// handleCreateTweet handles the route "POST /tweets/create/".
// The author is always the authenticated caller, never client input.
func (s *Server) handleCreateTweet(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid form data."))
		return
	}

	user := auth.GetUser(r.Context())
	tweet := domain.Tweet{
		UserID:  user.ID,
		Content: r.PostFormValue("content"),
	}
	if err := s.ts.Create(&tweet); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	tweetsPostedTotal.Inc()
	http.Redirect(w, r, homePath, http.StatusFound)
}

// handleGetTweet handles the route "GET /tweets/{id}/".
func (s *Server) handleGetTweet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}
	tweet, err := s.ts.ByID(id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := json.NewEncoder(w).Encode(tweet); err != nil {
		errs.LogError(r, err)
	}
}

// handleDeleteTweet handles the route "POST /tweets/{id}/delete/".
// A missing tweet is 404; an existing tweet owned by someone else is 403.
// The two must stay distinguishable.
func (s *Server) handleDeleteTweet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}

	tweet, err := s.ts.ByID(id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	user := auth.GetUser(r.Context())
	if tweet.UserID != user.ID {
		errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "You are not allowed to delete this tweet."))
		return
	}

	if err := s.ts.Delete(tweet); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	http.Redirect(w, r, homePath, http.StatusFound)
}
