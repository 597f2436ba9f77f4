package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/automation"
	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/signature"
	"github.com/wisemantransports-ux/retail-assist-sub005/internal/modules/automation/services"
)

// WebhookOptions configures the handshake token and signature header names
type WebhookOptions struct {
	VerifyToken             string
	WhatsAppSignatureHeader string
	FormTokenHeader         string
}

type WebhookHandler struct {
	webhookService *services.WebhookService
	opts           WebhookOptions
}

func NewWebhookHandler(webhookService *services.WebhookService, opts WebhookOptions) *WebhookHandler {
	if opts.WhatsAppSignatureHeader == "" {
		opts.WhatsAppSignatureHeader = signature.HeaderMeta
	}
	if opts.FormTokenHeader == "" {
		opts.FormTokenHeader = signature.HeaderFormToken
	}
	return &WebhookHandler{
		webhookService: webhookService,
		opts:           opts,
	}
}

// VerifySubscription godoc
// @Summary Meta webhook subscription handshake
// @Description Echo hub.challenge when hub.verify_token matches the configured token
// @Tags Webhook
// @Produce plain
// @Param platform path string true "facebook, instagram or whatsapp"
// @Param hub.mode query string true "Always 'subscribe'"
// @Param hub.verify_token query string true "Configured verify token"
// @Param hub.challenge query string true "Challenge to echo"
// @Success 200 {string} string
// @Failure 403 {object} map[string]interface{}
// @Router /webhooks/{platform} [get]
func (h *WebhookHandler) VerifySubscription(c *fiber.Ctx) error {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode != "subscribe" || h.opts.VerifyToken == "" || token != h.opts.VerifyToken {
		log.Warn().Str("platform", c.Params("platform")).Msg("🚫 Webhook verification failed")
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "verification failed",
		})
	}

	log.Info().Str("platform", c.Params("platform")).Msg("✅ Webhook subscription verified")
	return c.Status(fiber.StatusOK).SendString(challenge)
}

// ReceiveMeta godoc
// @Summary Receive a Facebook, Instagram or WhatsApp webhook
// @Description Verify X-Hub-Signature-256, normalize the delivery and queue its events for rule evaluation
// @Tags Webhook
// @Accept json
// @Produce json
// @Param platform path string true "facebook, instagram or whatsapp"
// @Param X-Hub-Signature-256 header string true "sha256=<hex HMAC of the body>"
// @Param payload body map[string]interface{} true "Webhook payload"
// @Success 200 {object} IngestResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /webhooks/{platform} [post]
func (h *WebhookHandler) ReceiveMeta(c *fiber.Ctx) error {
	platform := automation.Platform(c.Params("platform"))
	switch platform {
	case automation.PlatformFacebook, automation.PlatformInstagram, automation.PlatformWhatsApp:
	default:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "unknown platform",
		})
	}

	header := signature.HeaderMeta
	if platform == automation.PlatformWhatsApp {
		header = h.opts.WhatsAppSignatureHeader
	}

	return h.ingest(c, services.IngestRequest{
		Platform:  platform,
		Body:      copyBody(c),
		Signature: c.Get(header),
	})
}

// ReceiveForm godoc
// @Summary Receive a website form submission
// @Description Verify the shared form token, normalize the submission and queue it for rule evaluation
// @Tags Webhook
// @Accept x-www-form-urlencoded
// @Produce json
// @Param formKey path string true "Form channel key"
// @Param X-Form-Token header string false "Shared form token (or form_token field)"
// @Success 200 {object} IngestResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /webhooks/forms/{formKey} [post]
func (h *WebhookHandler) ReceiveForm(c *fiber.Ctx) error {
	body := copyBody(c)
	return h.ingest(c, services.IngestRequest{
		Platform:   automation.PlatformWebsiteForm,
		Body:       body,
		Signature:  signature.ExtractFormToken(c.Get(h.opts.FormTokenHeader), body),
		ChannelKey: strings.Clone(c.Params("formKey")),
	})
}

// IngestResponse is the 200 body of a webhook delivery
type IngestResponse struct {
	Status string `json:"status"`
	services.IngestReport
}

func (h *WebhookHandler) ingest(c *fiber.Ctx, req services.IngestRequest) error {
	report, err := h.webhookService.Ingest(c.UserContext(), req)
	switch {
	case err == nil:
		return c.Status(fiber.StatusOK).JSON(IngestResponse{
			Status:       "accepted",
			IngestReport: report,
		})
	case errors.Is(err, automation.ErrSignatureInvalid):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "invalid signature",
		})
	case errors.Is(err, automation.ErrMalformedPayload):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	default:
		log.Error().Err(err).Str("platform", string(req.Platform)).Msg("❌ Webhook ingest failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal error",
		})
	}
}

// copyBody detaches the request body from fasthttp's reusable buffer so
// queued work never reads memory that belongs to the next request
func copyBody(c *fiber.Ctx) []byte {
	return append([]byte(nil), c.Body()...)
}
