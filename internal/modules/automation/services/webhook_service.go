package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/automation"
	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/dispatch"
	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/normalizer"
	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/signature"
	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/tenant"
)

// Secrets holds the shared secrets used to verify deliveries. Form is the
// fallback for form channels that carry no secret of their own.
type Secrets struct {
	Facebook  string
	Instagram string
	WhatsApp  string
	Form      string
}

func (s Secrets) forPlatform(p automation.Platform) string {
	switch p {
	case automation.PlatformFacebook:
		return s.Facebook
	case automation.PlatformInstagram:
		return s.Instagram
	case automation.PlatformWhatsApp:
		return s.WhatsApp
	case automation.PlatformWebsiteForm:
		return s.Form
	}
	return ""
}

// IngestRequest is one webhook delivery as received over HTTP
type IngestRequest struct {
	Platform  automation.Platform
	Body      []byte
	Signature string
	// ChannelKey is the form key from the URL; unused for Meta platforms
	ChannelKey string
}

// IngestReport summarises what happened to a delivery
type IngestReport struct {
	Events  int `json:"events"`
	Skipped int `json:"skipped"`
	Ignored int `json:"ignored"`
	Dropped int `json:"dropped"`
}

// WebhookService verifies, normalizes and enqueues webhook deliveries.
// Rule evaluation happens later on the dispatch queue.
type WebhookService struct {
	secrets     Secrets
	normalizers *normalizer.Registry
	resolver    *tenant.Resolver
	queue       dispatch.Queue
}

// NewWebhookService creates a new webhook service
func NewWebhookService(
	secrets Secrets,
	normalizers *normalizer.Registry,
	resolver *tenant.Resolver,
	queue dispatch.Queue,
) *WebhookService {
	return &WebhookService{
		secrets:     secrets,
		normalizers: normalizers,
		resolver:    resolver,
		queue:       queue,
	}
}

// Ingest runs the synchronous part of webhook handling. It returns
// ErrSignatureInvalid or ErrMalformedPayload for deliveries that must be
// rejected; anything after normalization is logged and never fails the call.
func (s *WebhookService) Ingest(ctx context.Context, req IngestRequest) (IngestReport, error) {
	var report IngestReport

	secret, err := s.secretFor(ctx, req)
	if err != nil {
		return report, err
	}
	if !signature.Verify(req.Platform, req.Body, req.Signature, secret) {
		log.Warn().Str("platform", string(req.Platform)).Msg("🚫 Webhook signature rejected")
		return report, automation.ErrSignatureInvalid
	}

	n, ok := s.normalizers.For(req.Platform)
	if !ok {
		return report, fmt.Errorf("%w: unsupported platform %q", automation.ErrMalformedPayload, req.Platform)
	}
	result, err := n.Normalize(req.Body)
	if err != nil {
		log.Warn().Err(err).Str("platform", string(req.Platform)).Msg("⚠️ Malformed webhook body")
		return report, err
	}
	report.Skipped = result.Skipped
	report.Ignored = result.Ignored

	for _, event := range result.Events {
		if req.Platform == automation.PlatformWebsiteForm && req.ChannelKey != "" {
			event.ChannelID = req.ChannelKey
		}

		if err := s.resolver.Apply(ctx, &event); err != nil {
			report.Dropped++
			log.Warn().Err(err).
				Str("platform", string(event.Platform)).
				Str("channel_id", event.ChannelID).
				Str("external_id", event.ExternalID).
				Msg("⚠️ No workspace for event, dropping")
			continue
		}

		if err := s.queue.Submit(ctx, event); err != nil {
			report.Dropped++
			log.Error().Err(err).
				Str("workspace_id", event.WorkspaceID.String()).
				Str("external_id", event.ExternalID).
				Msg("❌ Failed to enqueue event")
			continue
		}
		report.Events++
	}

	log.Info().
		Str("platform", string(req.Platform)).
		Int("events", report.Events).
		Int("skipped", report.Skipped).
		Int("ignored", report.Ignored).
		Int("dropped", report.Dropped).
		Msg("📨 Webhook accepted")
	return report, nil
}

// secretFor picks the verification secret. Form channels use their own
// secret when one is configured, else the global form secret.
func (s *WebhookService) secretFor(ctx context.Context, req IngestRequest) (string, error) {
	if req.Platform != automation.PlatformWebsiteForm || req.ChannelKey == "" {
		return s.secrets.forPlatform(req.Platform), nil
	}

	ch, err := s.resolver.Resolve(ctx, automation.PlatformWebsiteForm, req.ChannelKey)
	switch {
	case errors.Is(err, tenant.ErrChannelNotFound):
		return s.secrets.Form, nil
	case err != nil:
		// Without the channel the delivery cannot be attributed either
		log.Error().Err(err).Str("form_key", req.ChannelKey).Msg("❌ Failed to load form channel")
		return s.secrets.Form, nil
	case ch.FormSecret != "":
		return ch.FormSecret, nil
	}
	return s.secrets.Form, nil
}
