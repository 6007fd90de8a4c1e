package handlers

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	config "github.com/earnhub/rewards-backend/configs"
	"github.com/earnhub/rewards-backend/database"
	"github.com/earnhub/rewards-backend/models"
	"github.com/earnhub/rewards-backend/notifications"
	"github.com/earnhub/rewards-backend/services"
	"github.com/earnhub/rewards-backend/websocket"
	"github.com/go-playground/validator/v10"
	ws "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var validate = validator.New()

type ReviewerLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func ReviewerLogin(c *fiber.Ctx) error {
	var req ReviewerLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var reviewer models.Reviewer
	if err := database.DB.Where("email = ? AND is_active = ?", req.Email, true).First(&reviewer).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
	}
	if err := bcrypt.CompareHashAndPassword([]byte(reviewer.Password), []byte(req.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
	}

	claims := jwt.MapClaims{
		"user_id": reviewer.ID.String(),
		"role":    "reviewer",
		"exp":     time.Now().Add(time.Hour * 72).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	t, err := token.SignedString([]byte(config.Config("JWT_SECRET")))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create token"})
	}

	return c.JSON(fiber.Map{"token": t})
}

func reviewerFromToken(c *fiber.Ctx) (*models.Reviewer, error) {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	rawID, _ := claims["user_id"].(string)

	reviewerID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, services.ErrNotAuthorized
	}

	var reviewer models.Reviewer
	if err := database.DB.First(&reviewer, "id = ?", reviewerID).Error; err != nil {
		return nil, services.ErrNotAuthorized
	}
	return &reviewer, nil
}

// ListWithdrawals shows the review queue, filtered by status
// (default pending).
func ListWithdrawals(c *fiber.Ctx) error {
	status := strings.ToLower(c.Query("status", string(models.WithdrawalPending)))

	query := database.DB.Model(&models.WithdrawalRequest{}).Preload("Account")
	if status != "all" {
		query = query.Where("status = ?", status)
	}

	var requests []models.WithdrawalRequest
	if err := query.Order("created_at asc").Find(&requests).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch withdrawal requests"})
	}

	return c.JSON(requests)
}

type DecideRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approve reject"`
	Notes    string `json:"notes"`
}

func DecideWithdrawal(c *fiber.Ctx) error {
	requestID, err := strconv.ParseUint(c.Params("requestId"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request ID"})
	}

	var req DecideRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	reviewer, err := reviewerFromToken(c)
	if err != nil {
		return serviceError(c, err)
	}

	request, err := services.DecideWithdrawal(uint(requestID), req.Decision == "approve", reviewer, req.Notes)
	if err != nil {
		return serviceError(c, err)
	}

	notifyDecisionOutcome(request, req.Notes)
	websocket.Publish(websocket.ReviewEvent{
		Type:         "decided",
		RequestID:    request.ID,
		AccountID:    request.AccountID,
		Amount:       request.Amount.String(),
		PayoutTarget: request.PayoutTarget,
		Status:       string(request.Status),
	})

	return c.JSON(fiber.Map{"message": "Withdrawal request processed.", "request": request})
}

func SettleWithdrawal(c *fiber.Ctx) error {
	requestID, err := strconv.ParseUint(c.Params("requestId"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request ID"})
	}

	reviewer, err := reviewerFromToken(c)
	if err != nil {
		return serviceError(c, err)
	}

	request, err := services.ConfirmSettlement(uint(requestID), reviewer)
	if err != nil {
		return serviceError(c, err)
	}

	go notifications.Notify(request.AccountID, fmt.Sprintf(
		"✅ Your withdrawal of %s to %s has been paid out.", request.Amount, request.PayoutTarget))
	websocket.Publish(websocket.ReviewEvent{
		Type:      "settled",
		RequestID: request.ID,
		AccountID: request.AccountID,
		Amount:    request.Amount.String(),
		Status:    string(request.Status),
	})

	return c.JSON(fiber.Map{"message": "Withdrawal settled.", "request": request})
}

func notifyDecisionOutcome(request *models.WithdrawalRequest, notes string) {
	switch request.Status {
	case models.WithdrawalRejected:
		msg := fmt.Sprintf("❌ Your withdrawal request for %s was rejected. The funds have been returned to your balance.", request.Amount)
		if notes != "" {
			msg += " Note: " + notes
		}
		go notifications.Notify(request.AccountID, msg)
	case models.WithdrawalApproved:
		go notifications.Notify(request.AccountID, fmt.Sprintf(
			"👍 Your withdrawal request for %s was approved and is awaiting payout.", request.Amount))
	case models.WithdrawalCompleted:
		go notifications.Notify(request.AccountID, fmt.Sprintf(
			"✅ Your withdrawal of %s to %s has been processed.", request.Amount, request.PayoutTarget))
	}
}

// ListAccounts is the reviewer-side account overview with search and
// pagination.
func ListAccounts(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	search := strings.TrimSpace(c.Query("search"))
	offset := (page - 1) * limit

	var accounts []models.Account
	var total int64

	query := database.DB.Model(&models.Account{})
	countQuery := database.DB.Model(&models.Account{})

	if search != "" {
		searchTerm := "%" + search + "%"
		query = query.Where("id LIKE ? OR display_name LIKE ?", searchTerm, searchTerm)
		countQuery = countQuery.Where("id LIKE ? OR display_name LIKE ?", searchTerm, searchTerm)
	}

	countQuery.Count(&total)
	query.Order("created_at desc").Offset(offset).Limit(limit).Find(&accounts)

	return c.JSON(fiber.Map{
		"data": accounts,
		"meta": fiber.Map{
			"total":     total,
			"page":      page,
			"last_page": int(math.Ceil(float64(total) / float64(limit))),
		},
	})
}

// ReviewFeed upgrades a reviewer connection onto the live withdrawal event
// feed.
func ReviewFeed(c *ws.Conn) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		c.Close()
		return
	}
	claims := token.Claims.(jwt.MapClaims)
	rawID, _ := claims["user_id"].(string)
	reviewerID, err := uuid.Parse(rawID)
	if err != nil {
		c.Close()
		return
	}

	client := &websocket.Client{ReviewerID: reviewerID, Conn: c}
	websocket.Register <- client
	defer func() {
		websocket.Unregister <- client
		c.Close()
	}()

	// Hold the connection open; the hub writes, we only watch for close.
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
}
