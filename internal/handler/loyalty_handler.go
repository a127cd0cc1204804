package handler

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/InugamiDev/car-rental-ooad-sub000/internal/loyalty"
	"github.com/InugamiDev/car-rental-ooad-sub000/internal/middleware"
	"github.com/InugamiDev/car-rental-ooad-sub000/internal/model"
	"github.com/InugamiDev/car-rental-ooad-sub000/internal/service"
)

// LoyaltyServiceInterface defines the interface for loyalty business logic.
type LoyaltyServiceInterface interface {
	Redeem(ctx context.Context, userID, redemptionID string) (*model.RedemptionResult, error)
	Summary(ctx context.Context, userID string) (*model.LoyaltySummary, error)
}

// LoyaltyHandler handles HTTP requests for the loyalty account.
type LoyaltyHandler struct {
	service   LoyaltyServiceInterface
	validator *validator.Validate
}

// NewLoyaltyHandler creates a new LoyaltyHandler with the given service and validator.
func NewLoyaltyHandler(svc LoyaltyServiceInterface, v *validator.Validate) *LoyaltyHandler {
	return &LoyaltyHandler{service: svc, validator: v}
}

// formatRedeemValidationError converts validator errors to client messages.
func formatRedeemValidationError(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			if fe.Field() == "RedemptionID" {
				switch fe.Tag() {
				case "required":
					return "invalid request: redemption_id is required"
				case "notblank":
					return "invalid request: redemption_id cannot be whitespace only"
				case "max":
					return "invalid request: redemption_id exceeds maximum length of 64"
				}
				return "invalid request: redemption_id is invalid"
			}
			return "invalid request: " + fe.Field() + " is invalid"
		}
	}
	return "invalid request"
}

// Redeem handles POST /api/loyalty/redeem requests to spend points on a
// catalog option.
func (h *LoyaltyHandler) Redeem(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	var req model.RedeemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatRedeemValidationError(err)})
	}

	result, err := h.service.Redeem(c.Context(), userID, req.RedemptionID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
		}
		if errors.Is(err, loyalty.ErrUnknownOption) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown redemption option"})
		}
		var insufficientErr *loyalty.InsufficientPointsError
		if errors.As(err, &insufficientErr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":     "insufficient points",
				"required":  insufficientErr.Required,
				"available": insufficientErr.Available,
			})
		}
		log.Error().
			Err(err).
			Str("request_id", c.GetRespHeader("X-Request-ID")).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("user_id", userID).
			Str("redemption_id", req.RedemptionID).
			Msg("failed to redeem points")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	log.Info().
		Str("request_id", c.GetRespHeader("X-Request-ID")).
		Str("user_id", userID).
		Str("redemption_id", req.RedemptionID).
		Int("points_deducted", result.PointsDeducted).
		Int("remaining_points", result.RemainingPoints).
		Msg("points redeemed")

	return c.JSON(fiber.Map{"redemption": result})
}

// GetLoyalty handles GET /api/loyalty requests for the account summary.
func (h *LoyaltyHandler) GetLoyalty(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	summary, err := h.service.Summary(c.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
		}
		log.Error().Err(err).Str("user_id", userID).Msg("failed to load loyalty summary")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(summary)
}
