package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"it-inventory/internal/service"
	"it-inventory/pkg/jwt"
)

// Authenticator validates a bearer token against the current session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*jwt.Claims, error)
}

// RequireAuth is middleware that validates JWT token and sets user info in context
func RequireAuth(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		token, ok := bearerToken(authHeader)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}
		return authenticate(c, auth, token)
	}
}

// RequireWebSocketAuth guards the realtime endpoint. Browsers cannot set headers
// on a websocket handshake, so the token may also come from the "token" query parameter.
func RequireWebSocketAuth(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return c.SendStatus(fiber.StatusUpgradeRequired)
		}

		token := c.Query("token")
		if token == "" {
			token, _ = bearerToken(c.Get(fiber.HeaderAuthorization))
		}
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing authorization token"})
		}
		return authenticate(c, auth, token)
	}
}

// Extract token from "Bearer <token>"
func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

func authenticate(c *fiber.Ctx, auth Authenticator, token string) error {
	claims, err := auth.Authenticate(c.UserContext(), token)
	if err != nil {
		msg := "Invalid or expired token"
		switch {
		case errors.Is(err, service.ErrSessionExpired):
			msg = "Session expired (logged in elsewhere or logged out)"
		case errors.Is(err, service.ErrUserNotFound):
			msg = "User not found"
		}
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msg})
	}

	// Set user info in context for downstream handlers
	c.Locals("user_id", claims.UserID)
	c.Locals("username", claims.Username)

	return c.Next()
}
