package notify

import (
	"fmt"
	"time"

	"github.com/Proton-105/wasawasa-bot/internal/domain"
)

// TimestampLayout renders confirmation times the way the restaurant reads them (dd/mm/yyyy, 24h).
const TimestampLayout = "02/01/2006, 15:04:05"

var restaurantZone = loadRestaurantZone()

// Accra observes GMT all year, so a fixed zone is an exact fallback when tzdata is missing.
func loadRestaurantZone() *time.Location {
	loc, err := time.LoadLocation("Africa/Accra")
	if err != nil {
		return time.FixedZone("GMT", 0)
	}
	return loc
}

// RestaurantMessage composes the new-order alert sent to the restaurant.
func RestaurantMessage(order domain.Order) string {
	return fmt.Sprintf(`🔔 *NEW ORDER!*

👤 Customer: %s
📞 Phone: %s
🥣 Order: %s
💰 Price: %s %s
📍 Location: %s

Time: %s`,
		order.CustomerName,
		order.CustomerID,
		domain.DishName,
		order.Price, domain.Currency,
		order.Location,
		order.ConfirmedAt.In(restaurantZone).Format(TimestampLayout),
	)
}
