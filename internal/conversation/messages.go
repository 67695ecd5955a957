package conversation

import (
	"fmt"
	"strings"

	"github.com/Proton-105/wasawasa-bot/internal/domain"
)

func greetingMessage(name string) string {
	var menu strings.Builder
	for _, p := range domain.Portions {
		fmt.Fprintf(&menu, "• %s %s - %s\n", p.Price, domain.Currency, p.Label)
	}

	return fmt.Sprintf(`🥣 *Welcome to %s!*

Hello %s! 👋

We serve *authentic %s* - a delicious Northern Ghanaian dish made from millet flour.

*Choose your portion size:*
%s
📍 We deliver anywhere in %s!

Reply with the amount you want (%s):`,
		domain.VendorName, name, domain.DishName, menu.String(), domain.DeliveryArea, priceChoices(", ", "or "))
}

func priceAcceptedMessage(price string) string {
	return fmt.Sprintf(`✅ Great choice! *%s %s* portion.

📍 Now, please send your *delivery location* (e.g., "Bamahu, near Total filling station")`, price, domain.Currency)
}

func invalidPriceMessage() string {
	prices := make([]string, 0, len(domain.Portions))
	for _, p := range domain.Portions {
		prices = append(prices, "*"+p.Price+"*")
	}
	last := len(prices) - 1
	return fmt.Sprintf("❌ Please choose a valid price: %s, or %s %s", strings.Join(prices[:last], ", "), prices[last], domain.Currency)
}

func locationTooShortMessage() string {
	return "📍 Please provide a more detailed location so we can find you!"
}

func orderSummaryMessage(price, location string) string {
	return fmt.Sprintf(`📋 *ORDER SUMMARY*

🥣 Item: %s
💰 Price: *%s %s*
📍 Delivery: *%s*

Is this correct? Reply *YES* to confirm or *NO* to cancel.`, domain.DishName, price, domain.Currency, location)
}

func orderConfirmedMessage(name, price, location string) string {
	return fmt.Sprintf(`🎉 *ORDER CONFIRMED!*

Thank you %s! Your order is being prepared.

📦 *%s %s %s*
📍 Delivering to: %s

Expected delivery: *%s*

For any questions, call: %s

Enjoy your meal! 🥣✨`, name, price, domain.Currency, domain.DishName, location, domain.DeliveryEstimate, domain.ContactNumber)
}

func orderCancelledMessage() string {
	return `❌ Order cancelled. 

Send any message to start a new order! 🥣`
}

func confirmPromptMessage() string {
	return "Please reply *YES* to confirm or *NO* to cancel your order."
}

// priceChoices renders "5, 10, 15, or 20" style lists.
func priceChoices(sep, lastPrefix string) string {
	prices := make([]string, 0, len(domain.Portions))
	for _, p := range domain.Portions {
		prices = append(prices, p.Price)
	}
	last := len(prices) - 1
	return strings.Join(prices[:last], sep) + sep + lastPrefix + prices[last]
}
