package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"twtr/auth"
	"twtr/domain"
	"twtr/errs"
)

func (s *Server) registerLikeRoutes(r *mux.Router) {
	// Like a tweet.
	r.HandleFunc("/tweets/{id:[0-9]+}/like/", s.requireAuth(s.handleCreateLike)).Methods("POST")

	// Unlike a previously liked tweet.
	r.HandleFunc("/tweets/{id:[0-9]+}/unlike/", s.requireAuth(s.handleDeleteLike)).Methods("POST")
}

// handleCreateLike handles the route "POST /tweets/{id}/like/".
// Liking a tweet twice is rejected as a business rule, before the unique
// index on (user_id, tweet_id) could surface a driver error.
func (s *Server) handleCreateLike(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}

	user := auth.GetUser(r.Context())
	like := domain.Like{
		UserID:  user.ID,
		TweetID: id,
	}
	if err := s.ls.Create(&like); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	http.Redirect(w, r, "/tweets/"+strconv.Itoa(id)+"/", http.StatusFound)
}

// handleDeleteLike handles the route "POST /tweets/{id}/unlike/".
// Unliking a tweet the caller never liked is a no-op, not an error.
func (s *Server) handleDeleteLike(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}

	user := auth.GetUser(r.Context())
	like := domain.Like{
		UserID:  user.ID,
		TweetID: id,
	}
	if err := s.ls.Delete(&like); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	http.Redirect(w, r, "/tweets/"+strconv.Itoa(id)+"/", http.StatusFound)
}
