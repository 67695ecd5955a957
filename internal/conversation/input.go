package conversation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Proton-105/wasawasa-bot/internal/domain"
)

// minLocationLength is the shortest delivery description accepted, in characters.
const minLocationLength = 5

var (
	// pricePattern matches a menu price as a whole word, so "150" never yields "15".
	pricePattern = buildPricePattern()

	affirmativeKeywords = []string{"yes", "confirm", "ok"}
	negativeKeywords    = []string{"no", "cancel"}
)

func buildPricePattern() *regexp.Regexp {
	prices := make([]string, 0, len(domain.Portions))
	for _, p := range domain.Portions {
		prices = append(prices, regexp.QuoteMeta(p.Price))
	}
	return regexp.MustCompile(`\b(` + strings.Join(prices, "|") + `)\b`)
}

// normalize trims and lower-cases customer input.
func normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// matchPrice returns the first standalone menu price in msg, or "" when there is none.
func matchPrice(msg string) string {
	m := pricePattern.FindStringSubmatch(msg)
	if m == nil {
		return ""
	}
	return m[1]
}

// acceptableLocation reports whether raw is long enough to deliver to.
func acceptableLocation(raw string) bool {
	return utf8.RuneCountInString(raw) >= minLocationLength
}

// isAffirmative and isNegative are plain substring tests; callers check affirmative first.
func isAffirmative(msg string) bool {
	return containsAny(msg, affirmativeKeywords)
}

func isNegative(msg string) bool {
	return containsAny(msg, negativeKeywords)
}

func containsAny(msg string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(msg, kw) {
			return true
		}
	}
	return false
}
