package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger is satisfied by *sql.DB
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db        Pinger
	queueMode string
	providers map[string]string
}

func NewHealthHandler(db Pinger, queueMode string, providers map[string]string) *HealthHandler {
	return &HealthHandler{db: db, queueMode: queueMode, providers: providers}
}

// GetHealth godoc
// @Summary Service health check
// @Description Check if API is alive and the database answers
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) GetHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":   "degraded",
			"service":  "automation-api",
			"database": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"status":    "ok",
		"service":   "automation-api",
		"database":  "ok",
		"queue":     h.queueMode,
		"providers": h.providers,
	})
}
