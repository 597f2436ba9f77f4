// Package signature authenticates webhook deliveries before their body is parsed.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/url"
	"strings"

	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/automation"
)

const (
	// HeaderMeta carries the HMAC of Facebook, Instagram and WhatsApp deliveries
	HeaderMeta = "X-Hub-Signature-256"
	// HeaderFormToken is the default header for the website form shared secret
	HeaderFormToken = "X-Form-Token"

	sha256Prefix = "sha256="
)

// FormTokenFields lists the form fields that may carry the shared secret, in
// priority order. They are stripped before normalization.
var FormTokenFields = []string{"form_token", "_token"}

// Verify checks a delivery against the platform's scheme. It is a pure
// function over its inputs: Meta platforms use HMAC-SHA256 over the raw body,
// website forms compare a shared token. An empty secret never verifies.
func Verify(platform automation.Platform, rawBody []byte, headerSignature, sharedSecret string) bool {
	if sharedSecret == "" || headerSignature == "" {
		return false
	}

	switch platform {
	case automation.PlatformFacebook, automation.PlatformInstagram, automation.PlatformWhatsApp:
		return verifyHMACSHA256(rawBody, headerSignature, sharedSecret)
	case automation.PlatformWebsiteForm:
		return subtle.ConstantTimeCompare([]byte(headerSignature), []byte(sharedSecret)) == 1
	default:
		return false
	}
}

// verifyHMACSHA256 validates a "sha256=<hex>" signature of body
func verifyHMACSHA256(body []byte, signature, secret string) bool {
	if !strings.HasPrefix(signature, sha256Prefix) {
		return false
	}
	got, err := hex.DecodeString(strings.TrimPrefix(signature, sha256Prefix))
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}

// Sign returns the "sha256=<hex>" HMAC of body, the format Meta sends and
// the outbound webhook executor emits.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return sha256Prefix + hex.EncodeToString(mac.Sum(nil))
}

// ExtractFormToken returns the shared token of a form delivery: the header
// value when present, otherwise the first token field of the form body.
func ExtractFormToken(headerValue string, rawBody []byte) string {
	if headerValue != "" {
		return headerValue
	}
	values, err := url.ParseQuery(string(rawBody))
	if err != nil {
		return ""
	}
	for _, field := range FormTokenFields {
		if v := values.Get(field); v != "" {
			return v
		}
	}
	return ""
}
