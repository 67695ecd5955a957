package state

import "time"

// Stage represents one step of the ordering conversation.
type Stage string

const (
	// StageGreeting indicates the customer is about to receive the welcome menu.
	StageGreeting Stage = "greeting"
	// StageSelectingPrice indicates the bot is waiting for a portion price.
	StageSelectingPrice Stage = "selecting_price"
	// StageGettingLocation indicates the bot is waiting for a delivery location.
	StageGettingLocation Stage = "getting_location"
	// StageConfirming indicates the bot is waiting for a yes/no confirmation.
	StageConfirming Stage = "confirming"
	// StageComplete indicates the order was confirmed.
	StageComplete Stage = "complete"
)

// Stages lists every stage in conversation order.
var Stages = []Stage{
	StageGreeting,
	StageSelectingPrice,
	StageGettingLocation,
	StageConfirming,
	StageComplete,
}

// Session captures the conversation state for one customer.
type Session struct {
	CustomerID string    `json:"customer_id"`
	Stage      Stage     `json:"stage"`
	Name       string    `json:"name"`
	Price      string    `json:"price,omitempty"`
	Location   string    `json:"location,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Reset returns the session to the greeting stage and forgets the order details.
// The customer name is kept.
func (s *Session) Reset() {
	s.Stage = StageGreeting
	s.Price = ""
	s.Location = ""
}

// Clone returns a copy of the session.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}

	c := *s
	return &c
}
