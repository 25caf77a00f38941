package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"taskboard/internal/config"
	"taskboard/internal/models"
	"taskboard/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// User handlers

// Me returns the logged-in user's own record, without the credential field.
func Me(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int)

	cacheKey := fmt.Sprintf("user:%d", userID)
	if cached, err := config.RedisClient.Get(config.Ctx, cacheKey).Result(); err == nil {
		var user models.User
		if err = json.Unmarshal([]byte(cached), &user); err == nil {
			return c.JSON(fiber.Map{
				"message": "User found (from cache)",
				"success": true,
				"status":  200,
				"data":    user,
			})
		}
	}

	var user models.User
	err := config.DB.QueryRow(
		"SELECT id, name, email, role, board_data, created_at, updated_at FROM users WHERE id = $1",
		userID).Scan(&user.ID, &user.Name, &user.Email, &user.Role, &user.BoardData, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		logger.SecurityLogger.Warn("User not found", zap.Int("user_id", userID))
		return c.Status(404).JSON(fiber.Map{
			"message": "User not found",
			"success": false,
			"status":  404,
		})
	} else if err != nil {
		logger.ErrorLogger.Error("Error fetching user", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Server error",
			"success": false,
			"status":  500,
		})
	}

	userJSON, err := json.Marshal(user)
	if err == nil {
		config.RedisClient.SetEX(config.Ctx, cacheKey, userJSON, time.Hour)
	}

	logger.AuditLogger.Info("User found", zap.Int("user_id", userID))
	return c.JSON(fiber.Map{
		"message": "User found",
		"success": true,
		"status":  200,
		"data":    user,
	})
}

// GetAllUsers lists every user record, Admin only. The password hash is
// never serialized (json:"-" on the model).
func GetAllUsers(c *fiber.Ctx) error {
	role := c.Locals("role").(string)

	if role != models.RoleAdmin {
		logger.SecurityLogger.Warn("Forbidden", zap.String("role", role))
		return c.Status(403).JSON(fiber.Map{
			"message": "Access denied",
			"success": false,
			"status":  403,
		})
	}

	rows, err := config.DB.Query(
		"SELECT id, name, email, role, board_data, created_at, updated_at FROM users")
	if err != nil {
		logger.ErrorLogger.Error("Error fetching users", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Server error",
			"success": false,
			"status":  500,
		})
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var user models.User
		err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.Role, &user.BoardData, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			logger.ErrorLogger.Error("Error scanning users", zap.Error(err))
			return c.Status(500).JSON(fiber.Map{
				"message": "Server error",
				"success": false,
				"status":  500,
			})
		}
		users = append(users, user)
	}

	if err = rows.Err(); err != nil {
		logger.ErrorLogger.Error("Error iterating over users", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Server error",
			"success": false,
			"status":  500,
		})
	}

	logger.AuditLogger.Info("Users fetched successfully", zap.Int("count", len(users)))
	return c.JSON(fiber.Map{
		"message": "Users fetched successfully",
		"success": true,
		"status":  200,
		"data":    users,
	})
}
