package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alpnix/HackAtDavidson/apperrors"
	"github.com/alpnix/HackAtDavidson/models"
	"github.com/alpnix/HackAtDavidson/utils"
)

func newTestAuth(t *testing.T) (*AuthService, *MemoryKV) {
	t.Helper()
	kv := NewMemoryKV()
	tokens := utils.NewTokenManager("test-secret", time.Hour)
	return NewAuthService(dryRunDB(t), tokens, kv, LogMailer{}), kv
}

func TestVerifyOTPLocksAfterMaxAttempts(t *testing.T) {
	svc, kv := newTestAuth(t)
	ctx := context.Background()
	email := "staff@example.com"
	if err := kv.Set(ctx, otpPrefix+email, hashOTP(email, "123456"), OTPTTL); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < OTPMaxAttempts; i++ {
		_, err := svc.VerifyOTP(ctx, email, "000000")
		if !apperrors.IsType(err, apperrors.TypeAuth) {
			t.Fatalf("attempt %d: want auth error, got %v", i+1, err)
		}
	}
	if _, ok, _ := kv.Get(ctx, otpPrefix+email); !ok {
		t.Fatal("code dropped before the limit was exceeded")
	}

	// The right code no longer works once the limit is hit.
	if _, err := svc.VerifyOTP(ctx, " STAFF@example.com ", "123456"); !apperrors.IsType(err, apperrors.TypeAuth) {
		t.Fatalf("want auth error after lockout, got %v", err)
	}
	if _, ok, _ := kv.Get(ctx, otpPrefix+email); ok {
		t.Error("code still stored after lockout")
	}
}

func TestVerifyOTPWithoutPendingCode(t *testing.T) {
	svc, _ := newTestAuth(t)
	_, err := svc.VerifyOTP(context.Background(), "nobody@example.com", "123456")
	appErr, ok := apperrors.As(err)
	if !ok || appErr.Code != apperrors.CodeBadCredentials {
		t.Fatalf("got %v", err)
	}
}

func TestResetValidatesPasswords(t *testing.T) {
	svc, _ := newTestAuth(t)
	err := svc.Reset(context.Background(), "whatever", "short", "other")
	appErr, ok := apperrors.As(err)
	if !ok || appErr.Type != apperrors.TypeValidation {
		t.Fatalf("got %v", err)
	}
	if appErr.Fields["password"] == "" || appErr.Fields["confirm_password"] == "" {
		t.Errorf("fields = %v", appErr.Fields)
	}
}

func TestResetRejectsPasswordsBcryptCannotHash(t *testing.T) {
	svc, _ := newTestAuth(t)
	long := strings.Repeat("é", 40) // 80 bytes, 40 characters
	err := svc.Reset(context.Background(), "whatever", long, long)
	appErr, ok := apperrors.As(err)
	if !ok || appErr.Type != apperrors.TypeValidation {
		t.Fatalf("got %v", err)
	}
	if !strings.Contains(appErr.Fields["password"], "at most 72") {
		t.Errorf("fields = %v", appErr.Fields)
	}
}

func TestResetRejectsSessionToken(t *testing.T) {
	svc, _ := newTestAuth(t)
	token, _, err := svc.tokens.GenerateToken(models.Profile{ID: 1, Email: "a@b.co", Role: models.RolePresident})
	if err != nil {
		t.Fatal(err)
	}
	err = svc.Reset(context.Background(), token, "longenough", "longenough")
	if !apperrors.IsType(err, apperrors.TypeAuth) {
		t.Fatalf("want auth error, got %v", err)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, _ := newTestAuth(t)
	ctx := context.Background()
	token, _, err := svc.tokens.GenerateToken(models.Profile{ID: 3, Email: "a@b.co", Role: models.RoleSocial})
	if err != nil {
		t.Fatal(err)
	}
	claims, err := svc.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if claims.UserID != 3 || claims.Role != models.RoleSocial {
		t.Errorf("claims = %+v", claims)
	}
	if err := svc.Logout(ctx, claims); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Authenticate(ctx, token); !apperrors.IsType(err, apperrors.TypeAuth) {
		t.Errorf("revoked token accepted: %v", err)
	}
}

func TestAuthenticateRejectsRecoveryToken(t *testing.T) {
	svc, _ := newTestAuth(t)
	token, _, err := svc.tokens.GenerateRecoveryToken(models.Profile{ID: 1}, RecoveryTTL)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Authenticate(context.Background(), token); err == nil {
		t.Error("recovery token accepted as a session")
	}
}
