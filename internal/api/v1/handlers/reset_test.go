package handlers

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"taskboard/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResetTokenBinding(t *testing.T) {
	token, err := issueResetToken("alice@example.com")
	require.NoError(t, err)

	assert.True(t, checkResetToken(token, "alice@example.com"))
	// A token for one email proves nothing about another.
	assert.False(t, checkResetToken(token, "bob@example.com"))
	assert.False(t, checkResetToken("garbage", "alice@example.com"))
}

func TestVerifyCodeWithoutRequest(t *testing.T) {
	app := createTestApp()

	status, result := doJSON(t, app, "POST", "/api/auth/verify-code", map[string]string{
		"email": "nobody@example.com",
		"code":  "123456",
	}, "")
	assert.Equal(t, 400, status)
	assert.Contains(t, result["message"], "No reset code found")
}

func TestVerifyCodeMissingFields(t *testing.T) {
	app := createTestApp()

	status, _ := doJSON(t, app, "POST", "/api/auth/verify-code", map[string]string{
		"email": "alice@example.com",
	}, "")
	assert.Equal(t, 400, status)
}

func TestVerifyCodeFlow(t *testing.T) {
	app := createTestApp()
	email := fmt.Sprintf("verify_%d@example.com", time.Now().UnixNano())

	code, err := config.ResetCodes.Issue(config.Ctx, email)
	require.NoError(t, err)

	// A wrong guess is rejected without burning the code.
	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	status, result := doJSON(t, app, "POST", "/api/auth/verify-code", map[string]string{
		"email": email,
		"code":  wrong,
	}, "")
	assert.Equal(t, 400, status)
	assert.Equal(t, "Invalid reset code", result["message"])

	// The correct code still works and yields a proof token.
	status, result = doJSON(t, app, "POST", "/api/auth/verify-code", map[string]string{
		"email": email,
		"code":  code,
	}, "")
	require.Equal(t, 200, status)
	data := result["data"].(map[string]interface{})
	resetToken := data["resetToken"].(string)
	assert.True(t, checkResetToken(resetToken, email))

	// Replaying the consumed code fails.
	status, result = doJSON(t, app, "POST", "/api/auth/verify-code", map[string]string{
		"email": email,
		"code":  code,
	}, "")
	assert.Equal(t, 400, status)
	assert.Contains(t, result["message"], "No reset code found")
}

func TestResetPasswordRejectsMismatch(t *testing.T) {
	app := createTestApp()

	status, result := doJSON(t, app, "POST", "/api/auth/reset-password", map[string]string{
		"email":      "alice@example.com",
		"password":   "newpass1",
		"confirm":    "different",
		"resetToken": "irrelevant",
	}, "")
	assert.Equal(t, 400, status)
	assert.Equal(t, "Passwords do not match", result["message"])
}

func TestResetPasswordRequiresProofToken(t *testing.T) {
	app := createTestApp()

	// Without a token issued by verify-code, knowing the email is not
	// enough.
	status, result := doJSON(t, app, "POST", "/api/auth/reset-password", map[string]string{
		"email":      "alice@example.com",
		"password":   "newpass1",
		"confirm":    "newpass1",
		"resetToken": "forged",
	}, "")
	assert.Equal(t, 400, status)
	assert.Equal(t, "Invalid or expired reset token", result["message"])

	status, _ = doJSON(t, app, "POST", "/api/auth/reset-password", map[string]string{
		"email":    "alice@example.com",
		"password": "newpass1",
		"confirm":  "newpass1",
	}, "")
	assert.Equal(t, 400, status)
}

func TestRequestResetUnknownEmail(t *testing.T) {
	requireDB(t)
	app := createTestApp()

	status, result := doJSON(t, app, "POST", "/api/auth/request-reset", map[string]string{
		"email": fmt.Sprintf("missing_%d@example.com", time.Now().UnixNano()),
	}, "")
	assert.Equal(t, 404, status)
	assert.Equal(t, "User not found", result["message"])
}

func TestRequestResetInvalidEmail(t *testing.T) {
	app := createTestApp()

	status, _ := doJSON(t, app, "POST", "/api/auth/request-reset", map[string]string{
		"email": "not-an-email",
	}, "")
	assert.Equal(t, 400, status)
}

func TestFullPasswordResetFlow(t *testing.T) {
	requireDB(t)
	app := createTestApp()

	email, _ := registerAndLogin(t, app, "paula")

	testMail.Sent = nil
	status, _ := doJSON(t, app, "POST", "/api/auth/request-reset", map[string]string{
		"email": email,
	}, "")
	require.Equal(t, 200, status)
	require.Len(t, testMail.Sent, 1)
	assert.Equal(t, email, testMail.Sent[0].To)

	// Pull the 6-digit code out of the mail body.
	code := extractCode(t, testMail.Sent[0].HTML)

	status, result := doJSON(t, app, "POST", "/api/auth/verify-code", map[string]string{
		"email": email,
		"code":  code,
	}, "")
	require.Equal(t, 200, status)
	resetToken := result["data"].(map[string]interface{})["resetToken"].(string)

	status, _ = doJSON(t, app, "POST", "/api/auth/reset-password", map[string]string{
		"email":      email,
		"password":   "brandnew1",
		"confirm":    "brandnew1",
		"resetToken": resetToken,
	}, "")
	require.Equal(t, 200, status)

	// The old password is dead, the new one works.
	status, _ = doJSON(t, app, "POST", "/login", map[string]string{
		"email":    email,
		"password": "secret123",
	}, "")
	assert.Equal(t, 400, status)

	status, _ = doJSON(t, app, "POST", "/login", map[string]string{
		"email":    email,
		"password": "brandnew1",
	}, "")
	assert.Equal(t, 200, status)
}

func TestRequestResetMailFailure(t *testing.T) {
	requireDB(t)
	app := createTestApp()

	email, _ := registerAndLogin(t, app, "quinn")

	testMail.Err = errors.New("smtp unreachable")
	defer func() { testMail.Err = nil }()

	status, result := doJSON(t, app, "POST", "/api/auth/request-reset", map[string]string{
		"email": email,
	}, "")
	assert.Equal(t, 500, status)
	assert.Equal(t, "Failed to send reset email", result["message"])
}

// extractCode finds the reset code inside the mail HTML.
func extractCode(t *testing.T, html string) string {
	t.Helper()
	start := strings.Index(html, "<h2>")
	end := strings.Index(html, "</h2>")
	if start == -1 || end == -1 || end <= start+4 {
		t.Fatalf("no code found in mail body: %q", html)
	}
	return html[start+4 : end]
}
