package whatsapp

import (
	"net/http"

	"github.com/twilio/twilio-go/client"
)

// SignatureHeader carries Twilio's request signature.
const SignatureHeader = "X-Twilio-Signature"

// SignatureValidator checks that webhook requests were signed by Twilio.
type SignatureValidator struct {
	validator client.RequestValidator
	url       string
}

// NewSignatureValidator validates against the public webhook URL Twilio was configured with,
// which differs from the request URL seen behind a proxy.
func NewSignatureValidator(authToken, webhookURL string) *SignatureValidator {
	return &SignatureValidator{
		validator: client.NewRequestValidator(authToken),
		url:       webhookURL,
	}
}

// Valid reports whether r carries a correct signature. r.PostForm must already be parsed.
func (v *SignatureValidator) Valid(r *http.Request) bool {
	signature := r.Header.Get(SignatureHeader)
	if signature == "" {
		return false
	}

	params := make(map[string]string, len(r.PostForm))
	for key, values := range r.PostForm {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}

	return v.validator.Validate(v.url, params, signature)
}
