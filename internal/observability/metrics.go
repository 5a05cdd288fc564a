// Package observability provides Prometheus metrics and OpenTelemetry tracing setup.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// VotesTotal counts processed vote requests by requested kind and outcome.
	VotesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_votes_total",
		Help: "Total number of vote operations by requested kind and outcome",
	}, []string{"kind", "outcome"})

	// PostsCreatedTotal counts created posts.
	PostsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ripple_posts_created_total",
		Help: "Total number of posts created",
	})

	// UsersRegisteredTotal counts successful registrations.
	UsersRegisteredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ripple_users_registered_total",
		Help: "Total number of registered users",
	})

	// WebSocketConnections is the gauge of active notification stream connections.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ripple_websocket_connections",
		Help: "Number of active WebSocket notification connections",
	})

	// NotificationsPublishedTotal counts vote notifications published to Redis.
	NotificationsPublishedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ripple_notifications_published_total",
		Help: "Total number of vote notifications published",
	})
)
