package handlers

import (
	"fmt"

	"github.com/earnhub/rewards-backend/database"
	"github.com/earnhub/rewards-backend/models"
	"github.com/earnhub/rewards-backend/notifications"
	"github.com/earnhub/rewards-backend/services"
	"github.com/earnhub/rewards-backend/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type BindPayoutTargetRequest struct {
	PayoutTarget string `json:"payout_target" validate:"required"`
}

func BindPayoutTarget(c *fiber.Ctx) error {
	accountID := accountIDFromToken(c)

	var req BindPayoutTargetRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := services.SetPayoutTarget(accountID, req.PayoutTarget); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Payout target bound successfully", "payout_target": req.PayoutTarget})
}

type WithdrawalRequestBody struct {
	Amount decimal.Decimal `json:"amount"`
}

// RequestWithdrawal escrows the amount and opens a pending request, then
// notifies every configured reviewer with enough detail to decide.
// Notifications go out only after the ledger transaction has committed.
func RequestWithdrawal(c *fiber.Ctx) error {
	accountID := accountIDFromToken(c)

	var req WithdrawalRequestBody
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	request, err := services.RequestWithdrawal(accountID, req.Amount)
	if err != nil {
		return serviceError(c, err)
	}

	notifications.NotifyReviewers(fmt.Sprintf(
		"📤 Withdrawal request #%d: account %s wants %s to %s",
		request.ID, accountID, request.Amount, request.PayoutTarget))
	websocket.Publish(websocket.ReviewEvent{
		Type:         "requested",
		RequestID:    request.ID,
		AccountID:    accountID,
		Amount:       request.Amount.String(),
		PayoutTarget: request.PayoutTarget,
		Status:       string(request.Status),
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "✅ Withdrawal request submitted!",
		"request": request,
	})
}

func ListMyWithdrawals(c *fiber.Ctx) error {
	accountID := accountIDFromToken(c)

	var requests []models.WithdrawalRequest
	if err := database.DB.
		Where("account_id = ?", accountID).
		Order("created_at desc").
		Limit(20).
		Find(&requests).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch withdrawals"})
	}

	return c.JSON(requests)
}
