package v1

import (
	"taskboard/internal/api/v1/handlers"
	"taskboard/internal/config"
	"taskboard/internal/middleware"
	myws "taskboard/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

func RegisterRoutes(app *fiber.App) {
	// Auth
	app.Post("/register", handlers.Register)
	app.Post("/login", handlers.Login)

	// User
	app.Get("/me", middleware.UseToken, handlers.Me)
	app.Get("/users", middleware.UseToken, handlers.GetAllUsers)

	// Legacy board listing used by the original frontend
	app.Get("/tasks", middleware.UseToken, handlers.ListBoards)

	api := app.Group("/api")

	// Boards. Both save routes share the one canonical handler and body
	// shape.
	boardRoutes := api.Group("/boards", middleware.UseToken)
	boardRoutes.Get("/", handlers.GetBoards)
	boardRoutes.Post("/", handlers.SaveBoards)
	api.Post("/saveBoards", middleware.UseToken, handlers.SaveBoards)

	// Task sub-resource
	taskRoutes := api.Group("/tasks", middleware.UseToken)
	taskRoutes.Post("/", handlers.AddTask)
	taskRoutes.Get("/", handlers.GetTasks)
	taskRoutes.Put("/:id", handlers.UpdateTask)
	taskRoutes.Delete("/:id", handlers.DeleteTask)

	// Password reset
	authRoutes := api.Group("/auth")
	authRoutes.Post("/request-reset", handlers.RequestReset)
	authRoutes.Post("/verify-code", handlers.VerifyCode)
	authRoutes.Post("/reset-password", handlers.ResetPassword)

	// Board events. The browser cannot set headers on a websocket
	// handshake, so the token rides in a query parameter.
	app.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		claims, err := middleware.ParseToken(c.Query("token"))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token"})
		}
		userID, ok := claims["user_id"].(float64)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid user ID in token"})
		}
		c.Locals("userID", int(userID))
		return c.Next()
	})
	app.Get("/ws", websocket.New(func(conn *websocket.Conn) {
		userID := conn.Locals("userID").(int)
		client := myws.NewClient(userID, conn)
		config.BoardHub.Register <- client
		defer func() {
			config.BoardHub.Unregister <- client
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}))
}
