package handlers

import (
	"database/sql"
	"time"

	"taskboard/internal/config"
	"taskboard/internal/models"
	"taskboard/pkg/crypto"
	"taskboard/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Auth handlers

func Register(c *fiber.Ctx) error {
	type RegisterRequest struct {
		Name     string `json:"name" validate:"required"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=6"`
	}

	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in register", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{
			"message": "Bad request",
			"success": false,
			"status":  400,
		})
	}

	if err := config.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error during register", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{
			"message": "Validation error",
			"errors":  err.Error(),
			"success": false,
			"status":  400,
		})
	}

	hashedPassword, err := crypto.HashPassword(req.Password)
	if err != nil {
		logger.ErrorLogger.Error("Error hashing password", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Server error",
			"success": false,
			"status":  500,
		})
	}

	// Every new account starts as a plain user with an empty board document.
	var userID int
	err = config.DB.QueryRow(
		"INSERT INTO users (name, email, password, role, board_data) VALUES ($1, $2, $3, $4, $5) RETURNING id",
		req.Name, req.Email, hashedPassword, models.RoleUser, models.DefaultBoardData(),
	).Scan(&userID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			logger.SecurityLogger.Warn("Duplicate email on register", zap.String("email", req.Email))
			return c.Status(400).JSON(fiber.Map{
				"message": "User already exists",
				"success": false,
				"status":  400,
			})
		}
		logger.ErrorLogger.Error("Error creating user", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Server error",
			"success": false,
			"status":  500,
		})
	}

	logger.AuditLogger.Info("User registered successfully", zap.Int("user_id", userID))
	return c.Status(201).JSON(fiber.Map{
		"message": "User registered successfully",
		"success": true,
		"status":  201,
		"data": fiber.Map{
			"id": userID,
		},
	})
}

func Login(c *fiber.Ctx) error {
	type LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in login", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{
			"message": "Bad request",
			"success": false,
			"status":  400,
		})
	}

	if err := config.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error during login", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{
			"message": "Validation error",
			"errors":  err.Error(),
			"success": false,
			"status":  400,
		})
	}

	var user models.User
	err := config.DB.QueryRow(
		"SELECT id, name, email, password, role FROM users WHERE email = $1",
		req.Email).Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.Role)
	if err == sql.ErrNoRows {
		// Same message for unknown email and wrong password, so failed
		// logins cannot be used to enumerate accounts.
		logger.SecurityLogger.Warn("Login failed, user not found", zap.String("email", req.Email))
		return c.Status(400).JSON(fiber.Map{
			"message": "Invalid email or password",
			"success": false,
			"status":  400,
		})
	} else if err != nil {
		logger.ErrorLogger.Error("Error fetching user on login", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Server error",
			"success": false,
			"status":  500,
		})
	}

	if !crypto.CheckPasswordHash(req.Password, user.Password) {
		logger.SecurityLogger.Warn("Login failed, wrong password", zap.String("email", req.Email))
		return c.Status(400).JSON(fiber.Map{
			"message": "Invalid email or password",
			"success": false,
			"status":  400,
		})
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	})

	tokenString, err := token.SignedString(config.SecretKey)
	if err != nil {
		logger.ErrorLogger.Error("Error generating token", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Server error",
			"success": false,
			"status":  500,
		})
	}

	logger.AuditLogger.Info("Login success", zap.Int("user_id", user.ID), zap.String("role", user.Role))
	return c.JSON(fiber.Map{
		"message": "Login successful",
		"success": true,
		"status":  200,
		"data": fiber.Map{
			"token": tokenString,
			"user": fiber.Map{
				"id":    user.ID,
				"name":  user.Name,
				"email": user.Email,
				"role":  user.Role,
			},
		},
	})
}
