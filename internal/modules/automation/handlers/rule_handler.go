package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/automation"
	"github.com/wisemantransports-ux/retail-assist-sub005/internal/modules/automation/services"
)

type RuleHandler struct {
	ruleService *services.RuleService
}

func NewRuleHandler(ruleService *services.RuleService) *RuleHandler {
	return &RuleHandler{ruleService: ruleService}
}

// RunRule godoc
// @Summary Run a rule manually
// @Description Evaluate one enabled rule immediately and return its execution result
// @Tags Rules
// @Accept json
// @Produce json
// @Param id path string true "Rule ID"
// @Param input body services.RunInput false "Optional event context"
// @Success 200 {object} automation.ExecutionResult
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /rules/{id}/run [post]
func (h *RuleHandler) RunRule(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid rule id",
		})
	}

	var input services.RunInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}
	}

	result, err := h.ruleService.Run(c.UserContext(), id, input)
	switch {
	case err == nil:
		return c.JSON(result)
	case errors.Is(err, automation.ErrRuleNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "rule not found",
		})
	case errors.Is(err, automation.ErrRuleDisabled):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "rule is disabled",
		})
	case errors.Is(err, automation.ErrStoreUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "rule store unavailable",
		})
	default:
		log.Error().Err(err).Str("rule_id", id.String()).Msg("❌ Manual run failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
}

// GetExecutions godoc
// @Summary List rule executions
// @Description Latest execution records of a rule, newest first
// @Tags Rules
// @Produce json
// @Param id path string true "Rule ID"
// @Param limit query int false "Max records (default 50, max 500)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /rules/{id}/executions [get]
func (h *RuleHandler) GetExecutions(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid rule id",
		})
	}

	records, err := h.ruleService.Executions(c.UserContext(), id, c.QueryInt("limit", services.DefaultExecutionLimit))
	if err != nil {
		log.Error().Err(err).Str("rule_id", id.String()).Msg("❌ Failed to load executions")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load executions",
		})
	}

	return c.JSON(fiber.Map{
		"rule_id":    id,
		"executions": records,
		"count":      len(records),
	})
}
