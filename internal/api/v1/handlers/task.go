package handlers

import (
	"database/sql"

	"taskboard/internal/config"
	"taskboard/internal/models"
	"taskboard/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Task handlers. Tasks live inside the user's board document
// (boards -> columns -> tasks); these endpoints address them by ID without
// the client having to resubmit the whole document.

func AddTask(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int)

	type AddTaskRequest struct {
		ID          string `json:"id" validate:"required"`
		Title       string `json:"title" validate:"required"`
		Description string `json:"description"`
		ColumnID    string `json:"columnId" validate:"required"`
	}

	var req AddTaskRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in add task", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{
			"message": "Bad request",
			"success": false,
			"status":  400,
		})
	}

	if err := config.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error during add task", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{
			"message": "Validation error",
			"errors":  err.Error(),
			"success": false,
			"status":  400,
		})
	}

	data, err := loadBoardData(userID)
	if err == sql.ErrNoRows {
		return c.Status(404).JSON(fiber.Map{
			"message": "User not found",
			"success": false,
			"status":  404,
		})
	}
	if err != nil {
		logger.ErrorLogger.Error("Error fetching board data", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Server error",
			"success": false,
			"status":  500,
		})
	}

	task := models.Task{
		ID:          req.ID,
		Title:       req.Title,
		Description: req.Description,
		ColumnID:    req.ColumnID,
	}
	if err := data.AddTask(task); err != nil {
		logger.AuditLogger.Warn("Column not found in add task", zap.String("column_id", req.ColumnID))
		return c.Status(404).JSON(fiber.Map{
			"message": "Column not found",
			"success": false,
			"status":  404,
		})
	}

	if err := saveBoardData(userID, data); err != nil {
		logger.ErrorLogger.Error("Error saving task", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Server error",
			"success": false,
			"status":  500,
		})
	}

	logger.AuditLogger.Info("Task added", zap.Int("user_id", userID), zap.String("task_id", req.ID))
	return c.Status(201).JSON(fiber.Map{
		"message": "Task added",
		"success": true,
		"status":  201,
		"data":    task,
	})
}

func GetTasks(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int)

	data, err := loadBoardData(userID)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching tasks", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Server error",
			"success": false,
			"status":  500,
		})
	}

	return c.JSON(fiber.Map{
		"message": "Tasks fetched successfully",
		"success": true,
		"status":  200,
		"data":    data.Tasks(),
	})
}

func UpdateTask(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int)
	taskID := c.Params("id")

	// Empty strings mean "field not provided": an empty title never
	// overwrites the stored one.
	type UpdateTaskRequest struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		ColumnID    string `json:"columnId"`
	}

	var req UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in update task", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{
			"message": "Bad request",
			"success": false,
			"status":  400,
		})
	}

	data, err := loadBoardData(userID)
	if err == sql.ErrNoRows {
		return c.Status(404).JSON(fiber.Map{
			"message": "User not found",
			"success": false,
			"status":  404,
		})
	}
	if err != nil {
		logger.ErrorLogger.Error("Error fetching board data", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Server error",
			"success": false,
			"status":  500,
		})
	}

	task, err := data.UpdateTask(taskID, req.Title, req.Description, req.ColumnID)
	if err == models.ErrTaskNotFound {
		return c.Status(404).JSON(fiber.Map{
			"message": "Task not found",
			"success": false,
			"status":  404,
		})
	}
	if err == models.ErrColumnNotFound {
		return c.Status(404).JSON(fiber.Map{
			"message": "Column not found",
			"success": false,
			"status":  404,
		})
	}

	if err := saveBoardData(userID, data); err != nil {
		logger.ErrorLogger.Error("Error saving task update", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Server error",
			"success": false,
			"status":  500,
		})
	}

	logger.AuditLogger.Info("Task updated", zap.Int("user_id", userID), zap.String("task_id", taskID))
	return c.JSON(fiber.Map{
		"message": "Task updated",
		"success": true,
		"status":  200,
		"data":    task,
	})
}

// DeleteTask removes a task by ID. Removing an ID that does not exist is a
// no-op success.
func DeleteTask(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int)
	taskID := c.Params("id")

	data, err := loadBoardData(userID)
	if err == sql.ErrNoRows {
		return c.Status(404).JSON(fiber.Map{
			"message": "User not found",
			"success": false,
			"status":  404,
		})
	}
	if err != nil {
		logger.ErrorLogger.Error("Error fetching board data", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Server error",
			"success": false,
			"status":  500,
		})
	}

	data.DeleteTask(taskID)

	if err := saveBoardData(userID, data); err != nil {
		logger.ErrorLogger.Error("Error saving task delete", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Server error",
			"success": false,
			"status":  500,
		})
	}

	logger.AuditLogger.Info("Task deleted", zap.Int("user_id", userID), zap.String("task_id", taskID))
	return c.JSON(fiber.Map{
		"message": "Task deleted",
		"success": true,
		"status":  200,
	})
}
