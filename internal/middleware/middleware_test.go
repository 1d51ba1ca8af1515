package middleware

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"it-inventory/internal/service"
	"it-inventory/pkg/jwt"
)

type stubAuth struct {
	claims *jwt.Claims
	err    error
	got    string
}

func (s *stubAuth) Authenticate(_ context.Context, token string) (*jwt.Claims, error) {
	s.got = token
	return s.claims, s.err
}

func newAuthApp(auth Authenticator) *fiber.App {
	app := fiber.New()
	app.Get("/me", RequireAuth(auth), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":  c.Locals("user_id"),
			"username": c.Locals("username"),
		})
	})
	return app
}

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name   string
		header string
		auth   *stubAuth
		status int
	}{
		{"missing header", "", &stubAuth{}, fiber.StatusUnauthorized},
		{"wrong scheme", "Basic abc", &stubAuth{}, fiber.StatusUnauthorized},
		{"invalid token", "Bearer bad", &stubAuth{err: jwt.ErrInvalidToken}, fiber.StatusUnauthorized},
		{"revoked session", "Bearer old", &stubAuth{err: service.ErrSessionExpired}, fiber.StatusUnauthorized},
		{"valid", "Bearer good", &stubAuth{claims: &jwt.Claims{UserID: 1, Username: "admin"}}, fiber.StatusOK},
		{"lowercase scheme", "bearer good", &stubAuth{claims: &jwt.Claims{UserID: 1, Username: "admin"}}, fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newAuthApp(tt.auth)
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
		})
	}
}

func TestRequireAuth_PassesTokenThrough(t *testing.T) {
	auth := &stubAuth{claims: &jwt.Claims{UserID: 3, Username: "tech"}}
	app := newAuthApp(auth)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer abc.def.ghi")
	if _, err := app.Test(req); err != nil {
		t.Fatalf("request: %v", err)
	}
	if auth.got != "abc.def.ghi" {
		t.Fatalf("token = %q", auth.got)
	}
}

func TestRequireWebSocketAuth(t *testing.T) {
	valid := func() *stubAuth { return &stubAuth{claims: &jwt.Claims{UserID: 2, Username: "tech"}} }
	tests := []struct {
		name      string
		target    string
		header    string
		upgrade   bool
		auth      *stubAuth
		status    int
		wantToken string
	}{
		{"plain http", "/ws?token=good", "", false, valid(), fiber.StatusUpgradeRequired, ""},
		{"missing token", "/ws", "", true, valid(), fiber.StatusUnauthorized, ""},
		{"query token", "/ws?token=good", "", true, valid(), fiber.StatusOK, "good"},
		{"header token", "/ws", "Bearer hdr", true, valid(), fiber.StatusOK, "hdr"},
		{"query wins over header", "/ws?token=q", "Bearer hdr", true, valid(), fiber.StatusOK, "q"},
		{"revoked session", "/ws?token=old", "", true, &stubAuth{err: service.ErrSessionExpired}, fiber.StatusUnauthorized, "old"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Use("/ws", RequireWebSocketAuth(tt.auth))
			app.Get("/ws", func(c *fiber.Ctx) error {
				if c.Locals("user_id") != uint(2) {
					return c.SendStatus(fiber.StatusInternalServerError)
				}
				return c.SendStatus(fiber.StatusOK)
			})

			req := httptest.NewRequest("GET", tt.target, nil)
			if tt.upgrade {
				req.Header.Set("Connection", "Upgrade")
				req.Header.Set("Upgrade", "websocket")
			}
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if tt.auth.got != tt.wantToken {
				t.Fatalf("token = %q, want %q", tt.auth.got, tt.wantToken)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	limit, err := RateLimit("2-M", zap.NewNop())
	if err != nil {
		t.Fatalf("rate limit: %v", err)
	}
	app := fiber.New()
	app.Post("/login", limit, func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	want := []int{fiber.StatusOK, fiber.StatusOK, fiber.StatusTooManyRequests}
	for i, status := range want {
		resp, err := app.Test(httptest.NewRequest("POST", "/login", nil))
		if err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
		if resp.StatusCode != status {
			t.Fatalf("request %d status = %d, want %d", i, resp.StatusCode, status)
		}
	}
}

func TestRateLimit_BadFormat(t *testing.T) {
	if _, err := RateLimit("lots", zap.NewNop()); err == nil {
		t.Fatal("expected error for malformed rate")
	}
}
