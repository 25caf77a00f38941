package handlers

import (
	"database/sql"
	"fmt"
	"time"

	"taskboard/internal/config"
	"taskboard/internal/resetcode"
	"taskboard/pkg/crypto"
	"taskboard/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
)

// Password-reset handlers. The flow is request-reset -> verify-code ->
// reset-password; verify-code hands out a short-lived proof token that
// reset-password demands, so knowing an email address alone is not enough
// to change its password.

const resetTokenValidity = 10 * time.Minute

func issueResetToken(email string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email":   email,
		"purpose": "password_reset",
		"exp":     time.Now().Add(resetTokenValidity).Unix(),
	})
	return token.SignedString(config.SecretKey)
}

func checkResetToken(tokenString, email string) bool {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return config.SecretKey, nil
	})
	if err != nil || !token.Valid {
		return false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return false
	}
	return claims["purpose"] == "password_reset" && claims["email"] == email
}

func RequestReset(c *fiber.Ctx) error {
	type RequestResetRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	var req RequestResetRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in request reset", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{
			"message": "Please provide a valid email",
			"success": false,
			"status":  400,
		})
	}

	if err := config.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error during request reset", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{
			"message": "Please provide a valid email",
			"success": false,
			"status":  400,
		})
	}

	var name string
	err := config.DB.QueryRow(
		"SELECT name FROM users WHERE email = $1", req.Email).Scan(&name)
	if err == sql.ErrNoRows {
		logger.SecurityLogger.Warn("Reset requested for unknown email", zap.String("email", req.Email))
		return c.Status(404).JSON(fiber.Map{
			"message": "User not found",
			"success": false,
			"status":  404,
		})
	} else if err != nil {
		logger.ErrorLogger.Error("Error looking up user for reset", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Server error",
			"success": false,
			"status":  500,
		})
	}

	// A new request replaces any earlier unconsumed code for this email.
	code, err := config.ResetCodes.Issue(config.Ctx, req.Email)
	if err != nil {
		logger.ErrorLogger.Error("Error issuing reset code", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Server error",
			"success": false,
			"status":  500,
		})
	}

	subject := "Your Password Reset Code"
	html := fmt.Sprintf(`<h3>Hello %s,</h3>
<p>Your password reset code is:</p>
<h2>%s</h2>
<p>This code will expire in 10 minutes.</p>`, name, code)

	if err := config.Mail.Send(req.Email, subject, "", html); err != nil {
		// The stored code stays live; a retry simply overwrites it.
		logger.ErrorLogger.Error("Error sending reset mail", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Failed to send reset email",
			"success": false,
			"status":  500,
		})
	}

	logger.AuditLogger.Info("Reset code sent", zap.String("email", req.Email))
	return c.JSON(fiber.Map{
		"message": "Reset code sent successfully",
		"success": true,
		"status":  200,
	})
}

func VerifyCode(c *fiber.Ctx) error {
	type VerifyCodeRequest struct {
		Email string `json:"email" validate:"required,email"`
		Code  string `json:"code" validate:"required"`
	}

	var req VerifyCodeRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in verify code", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{
			"message": "Email and code are required",
			"success": false,
			"status":  400,
		})
	}

	if err := config.Validate.Struct(req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"message": "Email and code are required",
			"success": false,
			"status":  400,
		})
	}

	switch err := config.ResetCodes.Check(config.Ctx, req.Email, req.Code); err {
	case nil:
	case resetcode.ErrNoCode:
		return c.Status(400).JSON(fiber.Map{
			"message": "No reset code found. Please request a new one",
			"success": false,
			"status":  400,
		})
	case resetcode.ErrExpired:
		logger.SecurityLogger.Warn("Expired reset code", zap.String("email", req.Email))
		return c.Status(400).JSON(fiber.Map{
			"message": "Reset code has expired. Please request a new one",
			"success": false,
			"status":  400,
		})
	case resetcode.ErrInvalid:
		logger.SecurityLogger.Warn("Invalid reset code", zap.String("email", req.Email))
		return c.Status(400).JSON(fiber.Map{
			"message": "Invalid reset code",
			"success": false,
			"status":  400,
		})
	default:
		logger.ErrorLogger.Error("Error verifying reset code", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Server error",
			"success": false,
			"status":  500,
		})
	}

	// Sign the proof token first; the code is only consumed once there is a
	// token to hand back, so a signing failure leaves it usable for a retry.
	resetToken, err := issueResetToken(req.Email)
	if err != nil {
		logger.ErrorLogger.Error("Error issuing reset token", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Server error",
			"success": false,
			"status":  500,
		})
	}

	if err := config.ResetCodes.Consume(config.Ctx, req.Email); err != nil {
		logger.ErrorLogger.Error("Error consuming reset code", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Server error",
			"success": false,
			"status":  500,
		})
	}

	logger.AuditLogger.Info("Reset code verified", zap.String("email", req.Email))
	return c.JSON(fiber.Map{
		"message": "Code verified successfully",
		"success": true,
		"status":  200,
		"data": fiber.Map{
			"resetToken": resetToken,
		},
	})
}

func ResetPassword(c *fiber.Ctx) error {
	type ResetPasswordRequest struct {
		Email      string `json:"email" validate:"required,email"`
		Password   string `json:"password" validate:"required,min=6"`
		Confirm    string `json:"confirm" validate:"required"`
		ResetToken string `json:"resetToken" validate:"required"`
	}

	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in reset password", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{
			"message": "All fields are required",
			"success": false,
			"status":  400,
		})
	}

	if err := config.Validate.Struct(req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"message": "All fields are required",
			"success": false,
			"status":  400,
		})
	}

	if req.Password != req.Confirm {
		return c.Status(400).JSON(fiber.Map{
			"message": "Passwords do not match",
			"success": false,
			"status":  400,
		})
	}

	if !checkResetToken(req.ResetToken, req.Email) {
		logger.SecurityLogger.Warn("Invalid reset token", zap.String("email", req.Email))
		return c.Status(400).JSON(fiber.Map{
			"message": "Invalid or expired reset token",
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

	var userID int
	err = config.DB.QueryRow(
		"UPDATE users SET password = $1, updated_at = CURRENT_TIMESTAMP WHERE email = $2 RETURNING id",
		hashedPassword, req.Email).Scan(&userID)
	if err == sql.ErrNoRows {
		logger.SecurityLogger.Warn("Reset for unknown email", zap.String("email", req.Email))
		return c.Status(404).JSON(fiber.Map{
			"message": "User not found",
			"success": false,
			"status":  404,
		})
	} else if err != nil {
		logger.ErrorLogger.Error("Error updating password", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Server error",
			"success": false,
			"status":  500,
		})
	}

	// Drop the cached profile so stale data is not served after the change.
	config.RedisClient.Del(config.Ctx, fmt.Sprintf("user:%d", userID))

	logger.AuditLogger.Info("Password reset", zap.String("email", req.Email), zap.Int("user_id", userID))
	return c.JSON(fiber.Map{
		"message": "Password reset successful",
		"success": true,
		"status":  200,
	})
}
