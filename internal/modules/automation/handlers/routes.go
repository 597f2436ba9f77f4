package handlers

import "github.com/gofiber/fiber/v2"

// MaxBodyBytes caps request bodies, webhook deliveries included
const MaxBodyBytes = 1 << 20

// NewApp creates the fiber app with the automation server settings
func NewApp(name string) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:   name,
		BodyLimit: MaxBodyBytes,
	})
}

// RegisterRoutes mounts the automation endpoints on router
func RegisterRoutes(router fiber.Router, webhook *WebhookHandler, rule *RuleHandler, health *HealthHandler) {
	// Health check
	router.Get("/health", health.GetHealth)

	// Webhook routes
	router.Post("/webhooks/forms/:formKey", webhook.ReceiveForm)
	router.Get("/webhooks/:platform", webhook.VerifySubscription)
	router.Post("/webhooks/:platform", webhook.ReceiveMeta)

	// Rule routes
	router.Post("/rules/:id/run", rule.RunRule)
	router.Get("/rules/:id/executions", rule.GetExecutions)
}
