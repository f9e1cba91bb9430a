// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequests counts handled requests by method, route and status
	HTTPRequests *prometheus.CounterVec

	// HTTPDuration observes request latency by method and route
	HTTPDuration *prometheus.HistogramVec

	// ArticleSaves counts successful article writes by operation (create, update)
	ArticleSaves *prometheus.CounterVec

	// SlugConflicts counts writes that lost a race on the slug constraint
	SlugConflicts prometheus.Counter

	// LoginAttempts counts login outcomes (success, failure)
	LoginAttempts *prometheus.CounterVec
)

func init() {
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blog_http_requests_total",
			Help: "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "blog_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	ArticleSaves = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blog_article_saves_total",
			Help: "Total number of articles created or updated.",
		},
		[]string{"operation"},
	)
	SlugConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "blog_slug_conflicts_total",
			Help: "Total number of article writes retried after a slug uniqueness violation.",
		},
	)
	LoginAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blog_login_attempts_total",
			Help: "Total number of login attempts by outcome.",
		},
		[]string{"outcome"},
	)

	prometheus.MustRegister(HTTPRequests, HTTPDuration, ArticleSaves, SlugConflicts, LoginAttempts)
}

// Handler serves the default registry in the Prometheus text format
func Handler() http.Handler {
	return promhttp.Handler()
}

// RegisterDBStats exports the connection pool statistics of db
func RegisterDBStats(db *sql.DB) error {
	err := prometheus.Register(collectors.NewDBStatsCollector(db, "blog"))
	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		return nil
	}
	return err
}
