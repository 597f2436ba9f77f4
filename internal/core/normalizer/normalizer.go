// Package normalizer turns platform webhook bodies into automation.InboundEvent values.
//
// Every platform resolves field-name variance through an explicit alias list
// evaluated in priority order; the first non-empty value wins. Entries that
// cannot be decoded are skipped one by one so a single bad item never drops
// the rest of the batch.
package normalizer

import (
	"fmt"
	"strings"
	"time"

	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/automation"
)

// Result is the output of one delivery
type Result struct {
	Events []automation.InboundEvent
	// Skipped counts malformed entries that were dropped
	Skipped int
	// Ignored counts well-formed items that carry nothing to act on
	// (delivery statuses, echoes, edits, the page's own comments)
	Ignored int
}

// Normalizer parses the raw body of one platform. An error means the body is
// malformed beyond recovery and wraps automation.ErrMalformedPayload.
type Normalizer interface {
	Platform() automation.Platform
	Normalize(rawBody []byte) (Result, error)
}

// Registry holds one normalizer per platform
type Registry struct {
	normalizers map[automation.Platform]Normalizer
}

// NewRegistry builds the normalizers of every supported platform. now stamps
// ReceivedAt; nil uses time.Now.
func NewRegistry(now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}
	r := &Registry{normalizers: make(map[automation.Platform]Normalizer)}
	for _, n := range []Normalizer{
		NewFacebook(now),
		NewInstagram(now),
		NewWhatsApp(now),
		NewWebsiteForm(now),
	} {
		r.normalizers[n.Platform()] = n
	}
	return r
}

// For returns the normalizer of platform
func (r *Registry) For(platform automation.Platform) (Normalizer, bool) {
	n, ok := r.normalizers[platform]
	return n, ok
}

func malformed(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", automation.ErrMalformedPayload, fmt.Sprintf(format, args...))
}

// firstNonEmpty resolves an alias list
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
