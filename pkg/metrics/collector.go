package metrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Proton-105/wasawasa-bot/internal/state"
)

var (
	messagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_messages_total",
			Help: "Total number of inbound customer messages labeled by the stage that handled them",
		},
		[]string{"stage"},
	)
	messageDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bot_message_duration_seconds",
			Help:    "Time spent turning an inbound message into a reply",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)
	stageTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stage_transitions_total",
			Help: "Total number of conversation stage transitions",
		},
		[]string{"from", "to"},
	)
	ordersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_total",
			Help: "Total number of finished order conversations by outcome",
		},
		[]string{"outcome"},
	)
	notificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "restaurant_notifications_total",
			Help: "Total number of restaurant notifications by result",
		},
		[]string{"result"},
	)
	outboundMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbound_messages_total",
			Help: "Total number of messages handed to the messaging provider by result",
		},
		[]string{"result"},
	)
	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors split by type and severity",
		},
		[]string{"type", "severity"},
	)
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by route, method and status code",
		},
		[]string{"route", "method", "code"},
	)
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_sessions",
			Help: "Current number of open customer sessions",
		},
	)
	sessionsByStage = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sessions_by_stage",
			Help: "Number of open sessions per conversation stage",
		},
		[]string{"stage"},
	)
)

// RecordMessage counts an inbound message and how long it took to answer.
func RecordMessage(stage string, duration time.Duration) {
	stage = orUnknown(stage)
	messagesTotal.WithLabelValues(stage).Inc()
	messageDurationSeconds.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordStageTransition tracks conversation stage changes.
func RecordStageTransition(from, to string) {
	stageTransitionsTotal.WithLabelValues(orUnknown(from), orUnknown(to)).Inc()
}

// RecordOrder counts a finished conversation, e.g. "confirmed" or "cancelled".
func RecordOrder(outcome string) {
	ordersTotal.WithLabelValues(orUnknown(outcome)).Inc()
}

// RecordNotification counts restaurant notification results, e.g. "sent", "failed", "skipped".
func RecordNotification(result string) {
	notificationsTotal.WithLabelValues(orUnknown(result)).Inc()
}

// RecordOutbound counts provider send attempts by result.
func RecordOutbound(result string) {
	outboundMessagesTotal.WithLabelValues(orUnknown(result)).Inc()
}

// RecordError increments error counters with metadata.
func RecordError(errType, severity string) {
	errorsTotal.WithLabelValues(orUnknown(errType), orUnknown(severity)).Inc()
}

// RecordHTTPRequest counts a served HTTP request.
func RecordHTTPRequest(route, method, code string, duration time.Duration) {
	route = orUnknown(route)
	httpRequestsTotal.WithLabelValues(route, method, code).Inc()
	httpRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// SessionCollector periodically gathers session counts per stage and emits gauge metrics.
type SessionCollector struct {
	storage  state.Storage
	log      *slog.Logger
	interval time.Duration
}

// NewSessionCollector builds a collector bound to the provided session storage.
func NewSessionCollector(storage state.Storage, log *slog.Logger, interval time.Duration) *SessionCollector {
	if log == nil {
		log = slog.Default()
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}

	return &SessionCollector{storage: storage, log: log, interval: interval}
}

// Run polls the storage until ctx is cancelled.
func (c *SessionCollector) Run(ctx context.Context) {
	if c == nil || c.storage == nil {
		return
	}

	for {
		if err := c.collect(ctx); err != nil {
			c.log.Warn("session metrics collection failed", slog.Any("error", err))
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(c.interval):
		}
	}
}

func (c *SessionCollector) collect(ctx context.Context) error {
	sessions, err := c.storage.List(ctx)
	if err != nil {
		return err
	}

	activeSessions.Set(float64(len(sessions)))

	counts := make(map[string]int, len(state.Stages))
	for _, s := range sessions {
		counts[orUnknown(string(s.Stage))]++
	}

	sessionsByStage.Reset()
	for _, stage := range state.Stages {
		label := string(stage)
		sessionsByStage.WithLabelValues(label).Set(float64(counts[label]))
		delete(counts, label)
	}
	for label, count := range counts {
		sessionsByStage.WithLabelValues(label).Set(float64(count))
	}

	return nil
}

func orUnknown(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
