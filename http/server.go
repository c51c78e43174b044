package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"twtr/auth"
	"twtr/crud"
	"twtr/domain"
)

// Server provides most of the http functionality of this app, namely routing,
// request handling, and middleware. It also performs authentication and
// authorization before handing things over to one of the crud services.
type Server struct {
	router *mux.Router
	us     domain.UserService
	ts     domain.TweetService
	fs     domain.FriendshipService
	ls     domain.LikeService
	isProd bool
}

// NewServer returns a new instance of the server, registers all necessary
// routes and gives their handlers access to the app services passed in.
// A non-empty csrfKey enables CSRF protection; corsOrigins enables CORS for
// the given origins.
func NewServer(isProd bool, csrfKey string, corsOrigins []string, services *crud.Services) *Server {
	s := &Server{
		router: mux.NewRouter(),
		us:     services.User,
		ts:     services.Tweet,
		fs:     services.Friendship,
		ls:     services.Like,
		isProd: isProd,
	}

	// Routes of the auth system. These have to be registered before the
	// user routes, so that /accounts/signup/ doesn't match {username}.
	s.registerAuthRoutes(s.router)

	// Routes of the crud system.
	s.registerTweetRoutes(s.router)
	s.registerLikeRoutes(s.router)
	s.registerUserRoutes(s.router)

	// Operational surface.
	s.registerMetricsRoutes(s.router)

	// Middleware that runs on every request.
	s.router.Use(setRequestID, logRequest, instrumentRequest)
	if len(corsOrigins) > 0 {
		s.router.Use(handlers.CORS(
			handlers.AllowedOrigins(corsOrigins),
			handlers.AllowedMethods([]string{"GET", "POST"}),
			handlers.AllowedHeaders([]string{"Content-Type", "X-CSRF-Token"}),
			handlers.AllowCredentials(),
		))
	}
	if csrfKey != "" {
		s.router.Use(csrf.Protect([]byte(csrfKey), csrf.Secure(isProd), csrf.Path("/")))
	}
	s.router.Use(setContentTypeJSON, s.checkUser)

	return s
}

// ServeHTTP makes the server itself a http.Handler, which is what the
// httptest-driven tests run against.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run starts to listen and serve on the specified port.
func (s *Server) Run(port int, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(port),
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
	logrus.WithField("port", port).Info("server listening")
	return srv.ListenAndServe()
}

// The setRequestID middleware attaches a fresh request ID to the request
// headers, so that the access log lines of one request can be correlated.
func setRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		r.Header.Set("X-Request-Id", id)
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r)
	})
}

// The logRequest middleware writes one structured access log line per request.
func logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecordingWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		logrus.WithFields(logrus.Fields{
			"request_id": r.Header.Get("X-Request-Id"),
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     rw.statusCode,
			"duration":   time.Since(start).String(),
		}).Info("request")
	})
}

// The setContentTypeJSON middleware sets the content type to "application/json".
func setContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// statusRecordingWriter remembers the status code written to it, for the
// access log and the request duration metric.
type statusRecordingWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusRecordingWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// instrumentRequest observes the duration of every request, labeled by
// method, route template and status.
func instrumentRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecordingWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		requestDuration.
			WithLabelValues(r.Method, route, fmt.Sprintf("%d", rw.statusCode)).
			Observe(time.Since(start).Seconds())
	})
}

// The checkUser middleware tries to identify the requesting user by the
// remember token cookie and, on success, stores the user in the request
// context. It never rejects a request; requireAuth does that.
func (s *Server) checkUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("remember_token")
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		user, err := s.us.ByRemember(r.Context(), cookie.Value)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		r = r.WithContext(auth.SetUser(r.Context(), user))
		next.ServeHTTP(w, r)
	})
}

// requireAuth redirects unauthenticated requests to the login page.
// It assumes the checkUser middleware has already run.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if auth.GetUser(r.Context()) == nil {
			http.Redirect(w, r, "/accounts/login/", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	}
}
