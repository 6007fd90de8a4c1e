package handlers

import (
	"time"

	config "github.com/earnhub/rewards-backend/configs"
	"github.com/earnhub/rewards-backend/services"
	"github.com/earnhub/rewards-backend/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

type SessionRequest struct {
	AccountID   string  `json:"account_id" validate:"required"`
	DisplayName string  `json:"display_name"`
	ReferrerID  *string `json:"referrer_id,omitempty"`
}

// CreateSession is called by the chat gateway for every inbound actor. It
// resolves (or creates) the ledger account, attaches the referrer on first
// contact when the join carried a referral deep link, and mints the member
// JWT the gateway uses for the rest of the interaction.
func CreateSession(c *fiber.Ctx) error {
	var req SessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	account, err := services.GetOrCreateAccount(req.AccountID, req.DisplayName)
	if err != nil {
		return serviceError(c, err)
	}

	if req.ReferrerID != nil {
		services.AttachReferrer(account.ID, *req.ReferrerID)
	}

	claims := jwt.MapClaims{
		"account_id": account.ID,
		"role":       "member",
		"exp":        time.Now().Add(time.Hour * 72).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	t, err := token.SignedString([]byte(config.Config("JWT_SECRET")))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create token"})
	}

	return c.JSON(fiber.Map{
		"token":         t,
		"account_id":    account.ID,
		"referral_link": utils.BuildReferralLink(account.ID),
	})
}
