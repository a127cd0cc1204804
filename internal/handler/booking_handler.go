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

// BookingServiceInterface defines the interface for booking business logic.
type BookingServiceInterface interface {
	Complete(ctx context.Context, bookingID, requesterID string, kilometers *float64) (*model.CompleteBookingResponse, error)
}

// BookingHandler handles HTTP requests for booking lifecycle operations.
type BookingHandler struct {
	service   BookingServiceInterface
	validator *validator.Validate
}

// NewBookingHandler creates a new BookingHandler with the given service and validator.
func NewBookingHandler(svc BookingServiceInterface, v *validator.Validate) *BookingHandler {
	return &BookingHandler{service: svc, validator: v}
}

// formatCompleteValidationError converts validator errors to client messages.
func formatCompleteValidationError(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			switch fe.Field() {
			case "Kilometers":
				return "invalid request: kilometers must be non-negative"
			case "ActualEndDate":
				return "invalid request: actual_end_date is invalid"
			case "Notes":
				return "invalid request: notes exceeds maximum length"
			default:
				return "invalid request: " + fe.Field() + " is invalid"
			}
		}
	}
	return "invalid request"
}

// CompleteBooking handles POST /api/bookings/:id/complete requests.
// The body is optional; kilometers, when present and positive, drives the
// loyalty award.
func (h *BookingHandler) CompleteBooking(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	bookingID := c.Params("id")
	if bookingID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: booking id is required"})
	}

	var req model.CompleteBookingRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if err := h.validator.Struct(req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatCompleteValidationError(err)})
		}
	}

	resp, err := h.service.Complete(c.Context(), bookingID, userID, req.Kilometers)
	if err != nil {
		if errors.Is(err, service.ErrBookingNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "booking not found"})
		}
		if errors.Is(err, service.ErrForbidden) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "booking belongs to another user"})
		}
		var stateErr *service.InvalidStateError
		if errors.As(err, &stateErr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":          "booking is not in a completable state",
				"current_status": string(stateErr.Status),
			})
		}
		if errors.Is(err, loyalty.ErrInvalidDistance) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: kilometers must be non-negative"})
		}
		log.Error().
			Err(err).
			Str("request_id", c.GetRespHeader("X-Request-ID")).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("user_id", userID).
			Str("booking_id", bookingID).
			Msg("failed to complete booking")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	log.Info().
		Str("request_id", c.GetRespHeader("X-Request-ID")).
		Str("user_id", userID).
		Str("booking_id", bookingID).
		Bool("awarded", resp.LoyaltyReward != nil).
		Msg("booking completed")

	return c.JSON(resp)
}
