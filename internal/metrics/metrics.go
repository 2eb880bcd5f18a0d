// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts requests by route pattern, method and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wechat_editor_http_requests_total",
		Help: "Total HTTP requests by route, method and status code",
	}, []string{"route", "method", "status"})

	// HTTPRequestDuration records request latency by route pattern and method.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wechat_editor_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	// AuthEventsTotal counts registrations and logins by outcome.
	AuthEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wechat_editor_auth_events_total",
		Help: "Authentication events by kind and outcome",
	}, []string{"event", "outcome"})

	// ArticleOpsTotal counts article mutations by operation.
	ArticleOpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wechat_editor_article_operations_total",
		Help: "Article create, update and delete operations",
	}, []string{"operation"})

	// SuggestionsTotal counts suggestions handed out by type.
	SuggestionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wechat_editor_suggestions_total",
		Help: "Writing suggestions generated by type",
	}, []string{"type"})

	// UploadBytes observes the size of accepted uploads.
	UploadBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "wechat_editor_upload_bytes",
		Help:    "Size of accepted image uploads in bytes",
		Buckets: prometheus.ExponentialBuckets(16<<10, 2, 10),
	})

	// ExportsTotal counts export requests by format and outcome.
	ExportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wechat_editor_exports_total",
		Help: "Article exports by format and outcome",
	}, []string{"format", "outcome"})
)
