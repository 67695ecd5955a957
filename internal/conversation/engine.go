// Package conversation implements the order-taking dialogue: one session per
// customer, advanced stage by stage until the order is confirmed or cancelled.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Proton-105/wasawasa-bot/internal/domain"
	"github.com/Proton-105/wasawasa-bot/internal/state"
	"github.com/Proton-105/wasawasa-bot/pkg/metrics"
)

// Notifier receives confirmed orders for the restaurant. Implementations must
// hand the order off without waiting for delivery and must not fail the caller.
type Notifier interface {
	NotifyRestaurant(ctx context.Context, order domain.Order)
}

// outcome is what a stage handler decided for one message.
type outcome struct {
	reply string
	// done marks a confirmed order: the session is deleted and order is announced.
	done  bool
	order *domain.Order
}

type stageHandler func(ctx context.Context, s *state.Session, text string) outcome

// Engine turns inbound customer text into replies while owning session lifetime.
type Engine struct {
	storage  state.Storage
	locker   state.Locker
	notifier Notifier
	log      *slog.Logger
	now      func() time.Time
	handlers map[state.Stage]stageHandler
}

// NewEngine builds an Engine. A nil locker falls back to in-process per-customer locks
// and a nil notifier discards confirmed orders.
func NewEngine(storage state.Storage, locker state.Locker, notifier Notifier, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	if locker == nil {
		locker = state.NewMemoryLocker()
	}
	if notifier == nil {
		notifier = discardNotifier{}
	}

	e := &Engine{
		storage:  storage,
		locker:   locker,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}

	e.handlers = map[state.Stage]stageHandler{
		state.StageGreeting:        e.handleGreeting,
		state.StageSelectingPrice:  e.handlePriceSelection,
		state.StageGettingLocation: e.handleLocation,
		state.StageConfirming:      e.handleConfirmation,
		state.StageComplete:        e.handleComplete,
	}

	return e
}

// ProcessMessage advances the customer's conversation with text and returns the reply.
// displayName is only used when the customer has no session yet.
// Errors come from the session backend only; unrecognised input always yields a re-prompt.
func (e *Engine) ProcessMessage(ctx context.Context, customerID, text, displayName string) (string, error) {
	start := time.Now()

	unlock, err := e.locker.Lock(ctx, customerID)
	if err != nil {
		return "", fmt.Errorf("lock session: %w", err)
	}
	defer unlock()

	session, err := e.storage.Get(ctx, customerID)
	switch {
	case errors.Is(err, state.ErrSessionNotFound):
		session = &state.Session{
			CustomerID: customerID,
			Stage:      state.StageGreeting,
			Name:       displayName,
		}
		e.log.Info("new customer session", slog.String("customer_id", customerID), slog.String("name", displayName))
	case err != nil:
		return "", fmt.Errorf("load session: %w", err)
	}

	stage := session.Stage
	handler, ok := e.handlers[stage]
	if !ok {
		e.log.Warn("session in unknown stage, restarting", slog.String("customer_id", customerID), slog.String("stage", string(stage)))
		handler = e.handleComplete
	}

	out := handler(ctx, session, text)

	if out.done {
		if err := e.storage.Delete(ctx, customerID); err != nil {
			return "", fmt.Errorf("delete session: %w", err)
		}
	} else if err := e.storage.Save(ctx, session); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}

	if out.order != nil {
		e.notifier.NotifyRestaurant(ctx, *out.order)
	}

	metrics.RecordMessage(string(stage), time.Since(start))

	return out.reply, nil
}

func (e *Engine) handleGreeting(_ context.Context, s *state.Session, _ string) outcome {
	e.advance(s, state.StageSelectingPrice)
	return outcome{reply: greetingMessage(s.Name)}
}

func (e *Engine) handlePriceSelection(_ context.Context, s *state.Session, text string) outcome {
	price := matchPrice(normalize(text))
	if price == "" {
		return outcome{reply: invalidPriceMessage()}
	}

	s.Price = price
	e.advance(s, state.StageGettingLocation)
	return outcome{reply: priceAcceptedMessage(price)}
}

func (e *Engine) handleLocation(_ context.Context, s *state.Session, text string) outcome {
	if !acceptableLocation(text) {
		return outcome{reply: locationTooShortMessage()}
	}

	s.Location = text
	e.advance(s, state.StageConfirming)
	return outcome{reply: orderSummaryMessage(s.Price, s.Location)}
}

func (e *Engine) handleConfirmation(_ context.Context, s *state.Session, text string) outcome {
	msg := normalize(text)

	// affirmative wins when a message contains both, e.g. "yes, cancel"
	switch {
	case isAffirmative(msg):
		e.advance(s, state.StageComplete)
		metrics.RecordOrder("confirmed")
		e.log.Info("order confirmed",
			slog.String("customer_id", s.CustomerID),
			slog.String("price", s.Price),
			slog.String("location", s.Location),
		)

		return outcome{
			reply: orderConfirmedMessage(s.Name, s.Price, s.Location),
			done:  true,
			order: &domain.Order{
				CustomerID:   s.CustomerID,
				CustomerName: s.Name,
				Price:        s.Price,
				Location:     s.Location,
				ConfirmedAt:  e.now(),
			},
		}
	case isNegative(msg):
		e.advance(s, state.StageGreeting)
		metrics.RecordOrder("cancelled")
		return outcome{reply: orderCancelledMessage()}
	default:
		return outcome{reply: confirmPromptMessage()}
	}
}

// handleComplete restarts a stale session and greets in the same turn.
func (e *Engine) handleComplete(ctx context.Context, s *state.Session, text string) outcome {
	e.advance(s, state.StageGreeting)
	return e.handleGreeting(ctx, s, text)
}

// advance moves s to the next stage. Returning to greeting forgets price and location.
func (e *Engine) advance(s *state.Session, to state.Stage) {
	from := s.Stage
	if !state.IsTransitionAllowed(from, to) {
		e.log.Error("unexpected stage transition",
			slog.String("customer_id", s.CustomerID),
			slog.String("from", string(from)),
			slog.String("to", string(to)),
		)
	}

	if to == state.StageGreeting {
		s.Reset()
	} else {
		s.Stage = to
	}

	metrics.RecordStageTransition(string(from), string(to))
}

type discardNotifier struct{}

func (discardNotifier) NotifyRestaurant(context.Context, domain.Order) {}
