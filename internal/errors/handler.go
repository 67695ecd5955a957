package errors

import (
	"context"
	"errors"
	"log/slog"

	"github.com/getsentry/sentry-go"

	"github.com/Proton-105/wasawasa-bot/pkg/logger"
	"github.com/Proton-105/wasawasa-bot/pkg/metrics"
)

// Handler logs errors and forwards the serious ones to Sentry.
type Handler struct {
	log           *slog.Logger
	sentryEnabled bool
}

func NewHandler(log *slog.Logger, sentryEnabled bool) *Handler {
	return &Handler{
		log:           log,
		sentryEnabled: sentryEnabled,
	}
}

// Handle records err and returns the severity it was classified with.
func (h *Handler) Handle(ctx context.Context, err error) Severity {
	if err == nil {
		return ""
	}

	if ctx == nil {
		ctx = context.Background()
	}

	log := h.log
	if log == nil {
		log = slog.Default()
	}

	severity := SeverityHigh
	attrs := []slog.Attr{
		slog.String("error", err.Error()),
	}

	var appErr *AppError
	if errors.As(err, &appErr) && appErr != nil {
		severity = appErr.Severity
		attrs = append(attrs, slog.String("code", appErr.Code))
	}
	attrs = append(attrs, slog.String("severity", string(severity)))

	if correlationID := logger.CorrelationIDFromContext(ctx); correlationID != "" {
		attrs = append(attrs, slog.String("correlation_id", correlationID))
	}

	log.LogAttrs(ctx, slog.LevelError, "request failed", attrs...)
	metrics.RecordError(errorType(appErr), string(severity))

	if h.sentryEnabled && (severity == SeverityCritical || severity == SeverityHigh) {
		h.sendToSentry(err)
	}

	return severity
}

func (h *Handler) sendToSentry(err error) {
	if err == nil {
		return
	}

	sentry.WithScope(func(scope *sentry.Scope) {
		var appErr *AppError
		if errors.As(err, &appErr) && appErr != nil {
			if appErr.Code != "" {
				scope.SetTag("code", appErr.Code)
			}

			if appErr.Severity != "" {
				scope.SetTag("severity", string(appErr.Severity))
			}
		}

		sentry.CaptureException(err)
	})
}

func errorType(appErr *AppError) string {
	if appErr == nil || appErr.Code == "" {
		return "unknown"
	}
	return appErr.Code
}
