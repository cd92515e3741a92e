// Package metrics provides Prometheus exporters for application metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the team leaderboard.
var (
	// Counters.
	WritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leaderboard_writes_total",
			Help: "Total number of write operations by resource, operation and outcome",
		},
		[]string{"resource", "operation", "status"},
	)

	RankRecomputesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leaderboard_rank_recomputes_total",
			Help: "Total number of full rank recomputations",
		},
		[]string{"status"},
	)

	LeaderChangesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leaderboard_leader_changes_total",
			Help: "Total number of times the rank 1 team changed",
		},
	)

	PointsAwardedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leaderboard_points_awarded_total",
			Help: "Sum of points recorded through new scores",
		},
	)

	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leaderboard_cache_requests_total",
			Help: "Stats cache lookups by result",
		},
		[]string{"result"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests handled by the API",
		},
		[]string{"method", "route", "status"},
	)

	LiveBroadcastsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leaderboard_live_broadcasts_total",
			Help: "Total standings messages broadcast to websocket clients",
		},
	)

	// Gauges.
	ActiveTeams = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "leaderboard_active_teams",
			Help: "Number of active teams at the last rank recomputation",
		},
	)

	LiveClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "leaderboard_live_clients",
			Help: "Current number of connected websocket clients",
		},
	)

	// Histograms.
	RankRecomputeDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "leaderboard_rank_recompute_duration_seconds",
			Help:    "Time taken to recompute and persist every rank",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
	)

	HTTPRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Scheduler metrics.
	SchedulerJobsRunTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_jobs_run_total",
			Help: "Total scheduler job executions",
		},
		[]string{"status"},
	)

	SchedulerLastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scheduler_last_run_timestamp",
			Help: "Unix timestamp of last scheduler run",
		},
	)

	SchedulerJobDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scheduler_job_duration_seconds",
			Help:    "Time taken to execute the standings digest job",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 8), // 100ms to ~13s
		},
	)

	// Notification metrics.
	NotificationsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Total successful Mattermost notifications",
		},
		[]string{"kind"},
	)

	NotificationsFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_failed_total",
			Help: "Total failed Mattermost notification attempts",
		},
		[]string{"kind"},
	)
)

// RecordWrite records a write operation on a resource.
func RecordWrite(resource, operation, status string) {
	WritesTotal.WithLabelValues(resource, operation, status).Inc()
}

// RecordRankRecompute records a full rank recomputation.
func RecordRankRecompute(status string, seconds float64) {
	RankRecomputesTotal.WithLabelValues(status).Inc()
	RankRecomputeDurationSeconds.Observe(seconds)
}

// SetActiveTeams sets the number of ranked teams.
func SetActiveTeams(count int) {
	ActiveTeams.Set(float64(count))
}

// RecordLeaderChange records a change of the rank 1 team.
func RecordLeaderChange() {
	LeaderChangesTotal.Inc()
}

// AddPointsAwarded adds the points of a new score. Negative adjustments are not counted.
func AddPointsAwarded(points int) {
	if points > 0 {
		PointsAwardedTotal.Add(float64(points))
	}
}

// RecordCacheRequest records a stats cache lookup result (hit, miss or error).
func RecordCacheRequest(result string) {
	CacheRequestsTotal.WithLabelValues(result).Inc()
}

// RecordHTTPRequest records an HTTP request and its latency.
func RecordHTTPRequest(method, route, status string, seconds float64) {
	HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	HTTPRequestDurationSeconds.WithLabelValues(method, route).Observe(seconds)
}

// RecordLiveBroadcast records a standings broadcast.
func RecordLiveBroadcast() {
	LiveBroadcastsTotal.Inc()
}

// SetLiveClients sets the number of connected websocket clients.
func SetLiveClients(count int) {
	LiveClients.Set(float64(count))
}

// RecordSchedulerJobRun records a scheduler job execution.
func RecordSchedulerJobRun(status string) {
	SchedulerJobsRunTotal.WithLabelValues(status).Inc()
}

// SetSchedulerLastRun sets the timestamp of the last scheduler run.
func SetSchedulerLastRun() {
	SchedulerLastRunTimestamp.SetToCurrentTime()
}

// ObserveSchedulerJobDuration observes the duration of a scheduler job.
func ObserveSchedulerJobDuration(seconds float64) {
	SchedulerJobDurationSeconds.Observe(seconds)
}

// RecordNotificationSent records a delivered notification.
func RecordNotificationSent(kind string) {
	NotificationsSentTotal.WithLabelValues(kind).Inc()
}

// RecordNotificationFailed records a failed notification.
func RecordNotificationFailed(kind string) {
	NotificationsFailedTotal.WithLabelValues(kind).Inc()
}
