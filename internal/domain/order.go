// Package domain holds the menu and the confirmed order shared across the bot.
package domain

import "time"

const (
	// VendorName is the customer-facing name of the restaurant.
	VendorName = "WasaWasa"
	// DishName is the single dish on the menu.
	DishName = "Wasawasa"
	// Currency is the unit every price is quoted in.
	Currency = "GHS"
	// DeliveryArea is the town the vendor delivers to.
	DeliveryArea = "Wa"
	// DeliveryEstimate is quoted to customers on confirmation.
	DeliveryEstimate = "30-45 minutes"
	// ContactNumber is the vendor's phone line for customer questions.
	ContactNumber = "0209856297"
)

// Portion is one selectable size on the menu.
type Portion struct {
	Price string
	Label string
}

// Portions is the fixed menu, smallest first.
var Portions = []Portion{
	{Price: "5", Label: "Small"},
	{Price: "10", Label: "Medium"},
	{Price: "15", Label: "Large"},
	{Price: "20", Label: "Extra Large"},
}

// Order is the snapshot of a confirmed conversation handed to the restaurant.
type Order struct {
	CustomerID   string    `json:"customer_id"`
	CustomerName string    `json:"customer_name"`
	Price        string    `json:"price"`
	Location     string    `json:"location"`
	ConfirmedAt  time.Time `json:"confirmed_at"`
}
