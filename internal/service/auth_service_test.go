package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"it-inventory/internal/model"
	"it-inventory/internal/repository"
	"it-inventory/pkg/jwt"
)

type memUsers struct {
	users   map[uint]*model.User
	touches int
}

func newMemUsers(t *testing.T, username, password string) *memUsers {
	t.Helper()
	u := &model.User{Username: username}
	u.ID = 1
	if err := u.SetPassword(password); err != nil {
		t.Fatalf("hash: %v", err)
	}
	return &memUsers{users: map[uint]*model.User{1: u}}
}

func (m *memUsers) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) FindByID(_ context.Context, id uint) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) Create(_ context.Context, user *model.User) error {
	user.ID = uint(len(m.users) + 1)
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memUsers) UpdatePassword(_ context.Context, userID uint, hashed string) error {
	m.users[userID].Password = hashed
	return nil
}

func (m *memUsers) UpdateTokenVersion(_ context.Context, userID uint, version string) error {
	now := time.Now()
	m.users[userID].TokenVersion = version
	m.users[userID].LastSeenAt = &now
	return nil
}

func (m *memUsers) UpdateLastSeen(_ context.Context, userID uint) error {
	m.touches++
	now := time.Now()
	m.users[userID].LastSeenAt = &now
	return nil
}

func newAuthFixture(t *testing.T) (*memUsers, AuthService) {
	users := newMemUsers(t, "admin", "admin123")
	return users, NewAuthService(users, jwt.NewManager("test-secret", time.Hour), zap.NewNop())
}

func TestLogin(t *testing.T) {
	_, svc := newAuthFixture(t)
	ctx := context.Background()

	resp, err := svc.Login(ctx, &LoginRequest{Username: "admin", Password: "admin123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Token == "" || resp.User.Username != "admin" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	claims, err := svc.Authenticate(ctx, resp.Token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if claims.UserID != 1 {
		t.Fatalf("user id = %d", claims.UserID)
	}

	for _, req := range []*LoginRequest{
		{Username: "admin", Password: "wrong"},
		{Username: "ghost", Password: "admin123"},
	} {
		if _, err := svc.Login(ctx, req); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials for %q, got %v", req.Username, err)
		}
	}
}

func TestLogin_NewSessionRevokesOldToken(t *testing.T) {
	_, svc := newAuthFixture(t)
	ctx := context.Background()

	first, err := svc.Login(ctx, &LoginRequest{Username: "admin", Password: "admin123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := svc.Login(ctx, &LoginRequest{Username: "admin", Password: "admin123"}); err != nil {
		t.Fatalf("second login: %v", err)
	}
	if _, err := svc.Authenticate(ctx, first.Token); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
}

func TestAuthenticate_RefreshesLastSeen(t *testing.T) {
	users, svc := newAuthFixture(t)
	ctx := context.Background()

	resp, err := svc.Login(ctx, &LoginRequest{Username: "admin", Password: "admin123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	// Login just stamped last_seen_at, so a request right after is not written.
	if _, err := svc.Authenticate(ctx, resp.Token); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if users.touches != 0 {
		t.Fatalf("touches = %d, want 0 within the resolution window", users.touches)
	}

	stale := time.Now().Add(-2 * lastSeenResolution)
	users.users[1].LastSeenAt = &stale
	if _, err := svc.Authenticate(ctx, resp.Token); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if users.touches != 1 {
		t.Fatalf("touches = %d, want 1", users.touches)
	}
	if seen := users.users[1].LastSeenAt; seen == nil || !seen.After(stale) {
		t.Fatalf("last_seen_at not refreshed: %v", seen)
	}

	// Revoked sessions never count as activity.
	users.users[1].LastSeenAt = &stale
	users.users[1].TokenVersion = "rotated"
	if _, err := svc.Authenticate(ctx, resp.Token); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if users.touches != 1 {
		t.Fatalf("touches = %d, want 1 after a rejected token", users.touches)
	}
}

func TestLogout(t *testing.T) {
	_, svc := newAuthFixture(t)
	ctx := context.Background()

	resp, err := svc.Login(ctx, &LoginRequest{Username: "admin", Password: "admin123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := svc.Logout(ctx, resp.User.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.Authenticate(ctx, resp.Token); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected token to be revoked, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	users, svc := newAuthFixture(t)
	ctx := context.Background()

	err := svc.ChangePassword(ctx, 1, &ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "secret99"})
	if !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}

	err = svc.ChangePassword(ctx, 1, &ChangePasswordRequest{CurrentPassword: "admin123", NewPassword: "123"})
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "new_password" {
		t.Fatalf("expected validation error on new_password, got %v", err)
	}

	if err := svc.ChangePassword(ctx, 1, &ChangePasswordRequest{CurrentPassword: "admin123", NewPassword: "secret99"}); err != nil {
		t.Fatalf("change: %v", err)
	}
	if !users.users[1].CheckPassword("secret99") {
		t.Fatal("new password not stored")
	}
	if _, err := svc.Login(ctx, &LoginRequest{Username: "admin", Password: "admin123"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatal("old password must stop working")
	}
}

func TestMe(t *testing.T) {
	_, svc := newAuthFixture(t)
	me, err := svc.Me(context.Background(), 1)
	if err != nil || me.Username != "admin" {
		t.Fatalf("me: %+v %v", me, err)
	}
	if _, err := svc.Me(context.Background(), 7); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
