package routes

import (
	"github.com/earnhub/rewards-backend/handlers"
	"github.com/earnhub/rewards-backend/middleware"
	"github.com/gofiber/fiber/v2"
)

func AccountRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	account := api.Group("/account", middleware.Protected())
	account.Post("/verify", handlers.VerifyAccount)
	account.Get("/balance", handlers.GetBalance)
	account.Get("/referral", handlers.GetReferralInfo)
	account.Post("/daily-bonus", handlers.ClaimDailyBonus)
	account.Post("/payout-target", handlers.BindPayoutTarget)

	withdrawals := api.Group("/withdrawals", middleware.Protected())
	withdrawals.Post("", handlers.RequestWithdrawal)
	withdrawals.Get("", handlers.ListMyWithdrawals)
}
