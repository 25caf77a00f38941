package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"taskboard/internal/config"
	"taskboard/internal/models"
	"taskboard/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Board handlers

// loadBoardData and saveBoardData are the only paths between the board/task
// handlers and the users table. They are variables so tests can swap in an
// in-memory document store.
var loadBoardData = func(userID int) (models.BoardData, error) {
	var data models.BoardData
	err := config.DB.QueryRow(
		"SELECT board_data FROM users WHERE id = $1", userID).Scan(&data)
	return data, err
}

var saveBoardData = func(userID int, data models.BoardData) error {
	res, err := config.DB.Exec(
		"UPDATE users SET board_data = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2",
		data, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	// The cached /me profile embeds the board document; drop it so the
	// next read is fresh.
	config.RedisClient.Del(config.Ctx, fmt.Sprintf("user:%d", userID))
	return nil
}

// GetBoards returns the user's board document exactly as last stored.
func GetBoards(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int)

	data, err := loadBoardData(userID)
	if err == sql.ErrNoRows {
		logger.SecurityLogger.Warn("User not found", zap.Int("user_id", userID))
		return c.Status(404).JSON(fiber.Map{
			"message": "User not found",
			"success": false,
			"status":  404,
		})
	}
	if err != nil {
		logger.ErrorLogger.Error("Error fetching boards", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Server error",
			"success": false,
			"status":  500,
		})
	}

	return c.JSON(fiber.Map{
		"message": "Boards fetched successfully",
		"success": true,
		"status":  200,
		"data":    data,
	})
}

// SaveBoards is the single canonical board-save handler. It validates the
// incoming document, overwrites the stored one wholesale (last writer wins)
// and notifies the user's other connected clients.
func SaveBoards(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int)

	type SaveBoardsRequest struct {
		Boards        []models.Board `json:"boards" validate:"required,dive"`
		ActiveBoardID *string        `json:"activeBoardId"`
	}

	var req SaveBoardsRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in save boards", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{
			"message": "Bad request",
			"success": false,
			"status":  400,
		})
	}

	if err := config.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error during save boards", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{
			"message": "Validation error",
			"errors":  err.Error(),
			"success": false,
			"status":  400,
		})
	}

	data := models.BoardData{Boards: req.Boards, ActiveBoardID: req.ActiveBoardID}
	err := saveBoardData(userID, data)
	if err == sql.ErrNoRows {
		logger.SecurityLogger.Warn("User not found", zap.Int("user_id", userID))
		return c.Status(404).JSON(fiber.Map{
			"message": "User not found",
			"success": false,
			"status":  404,
		})
	}
	if err != nil {
		logger.ErrorLogger.Error("Error saving boards", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Failed to save boards",
			"success": false,
			"status":  500,
		})
	}

	if payload, err := json.Marshal(fiber.Map{"event": "boards_saved"}); err == nil {
		config.BoardHub.Notify(userID, payload)
	}

	logger.AuditLogger.Info("Boards saved successfully", zap.Int("user_id", userID))
	return c.JSON(fiber.Map{
		"message": "Boards saved successfully",
		"success": true,
		"status":  200,
	})
}

// ListBoards returns only the boards array, the shape the original board
// frontend loads on startup.
func ListBoards(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int)

	data, err := loadBoardData(userID)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching boards", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Server error",
			"success": false,
			"status":  500,
		})
	}

	return c.JSON(fiber.Map{
		"message": "Boards fetched successfully",
		"success": true,
		"status":  200,
		"data":    data.Boards,
	})
}
