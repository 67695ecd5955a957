package whatsapp

import "strings"

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// TwiML renders a messaging response that replies with message.
func TwiML(message string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<Response>
    <Message>` + xmlEscaper.Replace(message) + `</Message>
</Response>`
}

// EmptyTwiML acknowledges a webhook without replying.
func EmptyTwiML() string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<Response></Response>`
}
