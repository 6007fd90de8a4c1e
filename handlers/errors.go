package handlers

import (
	"errors"
	"log"

	"github.com/earnhub/rewards-backend/services"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// serviceError maps the services taxonomy onto HTTP responses with stable
// messages, so a member can always tell "invalid input" from "not eligible
// now" from "already done". Anything outside the taxonomy is a storage
// failure: logged, surfaced as 500, and left for the transport to retry.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrInvalidPayoutTarget):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrBelowMinimum),
		errors.Is(err, services.ErrInsufficientFunds),
		errors.Is(err, services.ErrPayoutTargetMissing),
		errors.Is(err, services.ErrCooldownActive):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrDuplicateFingerprint),
		errors.Is(err, services.ErrBonusAlreadyGranted),
		errors.Is(err, services.ErrAlreadyDecided),
		errors.Is(err, services.ErrNotApproved):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrNotAuthorized):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrAccountNotFound),
		errors.Is(err, services.ErrRequestNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	default:
		log.Printf("🔥 Unexpected service error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal error"})
	}
}

func accountIDFromToken(c *fiber.Ctx) string {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	accountID, _ := claims["account_id"].(string)
	return accountID
}
