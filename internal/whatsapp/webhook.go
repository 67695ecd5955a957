package whatsapp

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	apperrors "github.com/Proton-105/wasawasa-bot/internal/errors"
	"github.com/Proton-105/wasawasa-bot/internal/idempotency"
)

// DefaultDisplayName is used when Twilio does not send a profile name.
const DefaultDisplayName = "Customer"

// MessageProcessor turns one inbound customer message into a reply.
type MessageProcessor interface {
	ProcessMessage(ctx context.Context, customerID, text, displayName string) (string, error)
}

// WebhookOptions holds the optional collaborators of a Webhook.
type WebhookOptions struct {
	// Claims suppresses redelivered MessageSids; nil disables the check.
	Claims   idempotency.Store
	ClaimTTL time.Duration
	// Validator rejects unsigned requests; nil disables the check.
	Validator *SignatureValidator
	Errors    *apperrors.Handler
}

// Webhook handles Twilio's inbound WhatsApp message callback.
type Webhook struct {
	engine MessageProcessor
	opts   WebhookOptions
	log    *slog.Logger
}

func NewWebhook(engine MessageProcessor, opts WebhookOptions, log *slog.Logger) *Webhook {
	if log == nil {
		log = slog.Default()
	}
	if opts.ClaimTTL <= 0 {
		opts.ClaimTTL = 24 * time.Hour
	}
	if opts.Errors == nil {
		opts.Errors = apperrors.NewHandler(log, false)
	}

	return &Webhook{engine: engine, opts: opts, log: log}
}

func (h *Webhook) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		h.opts.Errors.Handle(ctx, apperrors.NewValidationError("malformed webhook form: "+err.Error()))
		writeText(w, http.StatusBadRequest, "Bad Request")
		return
	}

	if h.opts.Validator != nil && !h.opts.Validator.Valid(r) {
		h.log.WarnContext(ctx, "rejected webhook with invalid signature", slog.String("remote_addr", r.RemoteAddr))
		writeText(w, http.StatusForbidden, "Forbidden")
		return
	}

	from := r.PostForm.Get("From")
	body := r.PostForm.Get("Body")
	if from == "" || body == "" {
		writeText(w, http.StatusOK, "OK")
		return
	}

	name := r.PostForm.Get("ProfileName")
	if name == "" {
		name = DefaultDisplayName
	}
	customerID := CustomerID(from)
	sid := r.PostForm.Get("MessageSid")

	h.log.InfoContext(ctx, "message received",
		slog.String("customer_id", customerID),
		slog.String("name", name),
		slog.String("message_sid", sid))

	claimedSid := false
	if h.opts.Claims != nil && sid != "" {
		claimed, err := h.opts.Claims.Claim(ctx, sid, h.opts.ClaimTTL)
		switch {
		case err != nil:
			h.log.WarnContext(ctx, "duplicate check unavailable, processing message", slog.Any("error", err))
		case !claimed:
			h.log.InfoContext(ctx, "ignoring redelivered message", slog.String("message_sid", sid))
			writeXML(w, EmptyTwiML())
			return
		default:
			claimedSid = true
		}
	}

	reply, err := h.engine.ProcessMessage(ctx, customerID, body, name)
	if err != nil {
		h.opts.Errors.Handle(ctx, err)
		if claimedSid {
			// the provider retries failed callbacks; let that retry through
			if relErr := h.opts.Claims.Release(context.WithoutCancel(ctx), sid); relErr != nil {
				h.log.WarnContext(ctx, "failed to release message claim", slog.String("message_sid", sid), slog.Any("error", relErr))
			}
		}
		writeText(w, http.StatusInternalServerError, "Error")
		return
	}

	writeXML(w, TwiML(reply))
}

func writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(text))
}

func writeXML(w http.ResponseWriter, doc string) {
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}
