package normalizer

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
	"time"

	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/automation"
	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/signature"
)

// Website form aliases, highest priority first. Field names follow the
// common form builders (plain HTML, Contact Form 7, WPForms).
var (
	formIDFields      = []string{"submission_id", "id", "form_submission_id"}
	formEmailFields   = []string{"email", "email_address", "your-email", "contact_email"}
	formNameFields    = []string{"name", "full_name", "your-name"}
	formPhoneFields   = []string{"phone", "tel", "your-phone"}
	formTextFields    = []string{"message", "comments", "your-message", "body", "text"}
	formChannelFields = []string{"form_id", "form_key"}
)

type websiteForm struct {
	now func() time.Time
}

// NewWebsiteForm returns the normalizer for form-encoded submissions. One
// delivery carries exactly one submission.
func NewWebsiteForm(now func() time.Time) Normalizer {
	return &websiteForm{now: now}
}

func (n *websiteForm) Platform() automation.Platform { return automation.PlatformWebsiteForm }

func (n *websiteForm) Normalize(raw []byte) (Result, error) {
	values, err := url.ParseQuery(strings.TrimSpace(string(raw)))
	if err != nil {
		return Result{}, malformed("invalid form encoding: %v", err)
	}
	for _, field := range signature.FormTokenFields {
		values.Del(field)
	}
	if len(values) == 0 {
		return Result{}, malformed("empty form submission")
	}

	lookup := func(fields []string) string {
		candidates := make([]string, len(fields))
		for i, f := range fields {
			candidates[i] = values.Get(f)
		}
		return firstNonEmpty(candidates...)
	}

	email := lookup(formEmailFields)
	phone := lookup(formPhoneFields)
	authorID := firstNonEmpty(email, phone)
	if authorID == "" {
		return Result{Skipped: 1}, nil
	}

	name := lookup(formNameFields)
	if name == "" {
		name = strings.TrimSpace(values.Get("first_name") + " " + values.Get("last_name"))
	}

	externalID := lookup(formIDFields)
	if externalID == "" {
		sum := sha256.Sum256(raw)
		externalID = "sha256:" + hex.EncodeToString(sum[:])
	}

	fields := make(map[string]string, len(values))
	for k := range values {
		fields[k] = values.Get(k)
	}

	event := automation.InboundEvent{
		Platform:    automation.PlatformWebsiteForm,
		Kind:        automation.KindFormSubmission,
		ExternalID:  externalID,
		AuthorID:    authorID,
		AuthorName:  name,
		AuthorEmail: email,
		AuthorPhone: phone,
		Text:        lookup(formTextFields),
		ChannelID:   lookup(formChannelFields),
		Fields:      fields,
		ReceivedAt:  n.now().UTC(),
	}
	return Result{Events: []automation.InboundEvent{event}}, nil
}
