package routes

import (
	"github.com/earnhub/rewards-backend/handlers"
	"github.com/earnhub/rewards-backend/middleware"
	"github.com/gofiber/fiber/v2"
)

func PublicRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Post("/gateway/session", middleware.GatewayOnly(), handlers.CreateSession)
	api.Post("/review/login", handlers.ReviewerLogin)
}
