package routes

import (
	"github.com/earnhub/rewards-backend/handlers"
	"github.com/earnhub/rewards-backend/middleware"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func ReviewRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	review := api.Group("/review", middleware.Protected(), middleware.ReviewerRequired())
	review.Get("/withdrawals", handlers.ListWithdrawals)
	review.Post("/withdrawals/:requestId/decide", handlers.DecideWithdrawal)
	review.Post("/withdrawals/:requestId/settle", handlers.SettleWithdrawal)
	review.Get("/accounts", handlers.ListAccounts)

	app.Use("/ws/review", middleware.Protected(), middleware.ReviewerRequired(), func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/review/feed", websocket.New(handlers.ReviewFeed))
}
