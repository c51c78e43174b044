package http

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "twtr_http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	signupsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "twtr_signups_total",
		Help: "Total successful signups.",
	})

	loginsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "twtr_logins_total",
		Help: "Total successful login attempts.",
	})

	loginFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "twtr_login_failures_total",
		Help: "Total failed login attempts.",
	})

	tweetsPostedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "twtr_tweets_posted_total",
		Help: "Total tweets successfully posted.",
	})

	followsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "twtr_follows_total",
		Help: "Total follow edges created.",
	})
)

func init() {
	prometheus.MustRegister(
		requestDuration,
		signupsTotal,
		loginsTotal,
		loginFailuresTotal,
		tweetsPostedTotal,
		followsTotal,
	)
}

// registerMetricsRoutes exposes the prometheus scrape endpoint. It requires
// no authentication.
func (s *Server) registerMetricsRoutes(r *mux.Router) {
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
}
