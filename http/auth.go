package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"

	"twtr/auth"
	"twtr/domain"
	"twtr/errs"
)

// homePath is where successful signups, logins and tweet mutations redirect to.
const homePath = "/tweets/"

func (s *Server) registerAuthRoutes(r *mux.Router) {
	r.HandleFunc("/accounts/signup/", s.handleForm).Methods("GET")
	r.HandleFunc("/accounts/signup/", s.handleSignup).Methods("POST")
	r.HandleFunc("/accounts/login/", s.handleForm).Methods("GET")
	r.HandleFunc("/accounts/login/", s.handleLogin).Methods("POST")
	r.HandleFunc("/accounts/logout/", s.requireAuth(s.handleLogout)).Methods("POST")
}

// handleForm bootstraps a form-submitting client: it returns the CSRF token
// the subsequent POST has to carry. Shared by the signup, login and tweet
// create pages.
func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]string{
		"csrf_token": csrf.Token(r),
	})
}

// handleSignup handles the route "POST /accounts/signup/".
// It creates a user record from the submitted form fields and signs the new
// user in. Any validation failure returns all field errors at once and
// leaves the database untouched.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid form data."))
		return
	}
	user := domain.User{
		Username:        r.PostFormValue("username"),
		Email:           r.PostFormValue("email"),
		Password:        r.PostFormValue("password1"),
		PasswordConfirm: r.PostFormValue("password2"),
	}
	if err := s.us.Create(r.Context(), &user); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := s.signIn(r.Context(), w, &user); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	signupsTotal.Inc()
	http.Redirect(w, r, homePath, http.StatusFound)
}

// handleLogin handles the route "POST /accounts/login/".
// Empty fields are field errors; unknown username and wrong password are
// deliberately indistinguishable in the response.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid form data."))
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	fields := make(map[string][]string)
	if username == "" {
		fields["username"] = append(fields["username"], "A username is required.")
	}
	if password == "" {
		fields["password"] = append(fields["password"], "A password is required.")
	}
	if len(fields) > 0 {
		errs.ReturnError(w, r, errs.FieldErrors(fields))
		return
	}

	user, err := s.us.Authenticate(r.Context(), username, password)
	if err != nil {
		loginFailuresTotal.Inc()
		errs.ReturnError(w, r, err)
		return
	}
	if err := s.signIn(r.Context(), w, user); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	loginsTotal.Inc()
	http.Redirect(w, r, homePath, http.StatusFound)
}

// handleLogout handles the route "POST /accounts/logout/".
// It clears the session cookie and rotates the user's remember token, which
// invalidates the session on every device that still holds the old token.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "remember_token",
		Value:    "",
		Path:     "/",
		Expires:  time.Now(),
		HttpOnly: true,
	})

	user := auth.GetUser(r.Context())
	token, err := auth.MakeRememberToken()
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	user.Remember = token
	if err := s.us.Update(r.Context(), user); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	http.Redirect(w, r, "/accounts/login/", http.StatusFound)
}

// signIn signs the given user in via a remember token cookie.
func (s *Server) signIn(ctx context.Context, w http.ResponseWriter, user *domain.User) error {
	if user.Remember == "" {
		token, err := auth.MakeRememberToken()
		if err != nil {
			return err
		}
		user.Remember = token
		if err := s.us.Update(ctx, user); err != nil {
			return err
		}
	}
	// Without an explicit path the cookie would be scoped to /accounts and
	// never accompany requests to /tweets/.
	http.SetCookie(w, &http.Cookie{
		Name:     "remember_token",
		Value:    user.Remember,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProd,
	})
	return nil
}
