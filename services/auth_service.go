// file: services/auth_service.go
package services

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alpnix/HackAtDavidson/apperrors"
	"github.com/alpnix/HackAtDavidson/database"
	"github.com/alpnix/HackAtDavidson/models"
	"github.com/alpnix/HackAtDavidson/utils"
	"gorm.io/gorm"
)

const (
	OTPDigits      = 6
	OTPTTL         = 10 * time.Minute
	OTPMaxAttempts = 5
	// RecoveryTTL is the lifetime of the token a verified code is exchanged for.
	RecoveryTTL       = 10 * time.Minute
	MinPasswordLength = 8
	// MaxPasswordBytes is the most bcrypt will hash.
	MaxPasswordBytes = 72

	otpPrefix        = "otp:"
	otpAttemptPrefix = "otp_attempts:"
	revokedPrefix    = "jwt_revoked:"
)

var errBadCredentials = apperrors.NewAuthError(apperrors.CodeBadCredentials, "Invalid email or password")

type AuthService struct {
	db     *gorm.DB
	tokens *utils.TokenManager
	kv     KV
	mailer Mailer
	now    func() time.Time
}

func NewAuthService(db *gorm.DB, tokens *utils.TokenManager, kv KV, mailer Mailer) *AuthService {
	return &AuthService{db: db, tokens: tokens, kv: kv, mailer: mailer, now: time.Now}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) findProfile(ctx context.Context, email string) (*models.Profile, error) {
	var p models.Profile
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Login checks credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.Profile, error) {
	p, err := s.findProfile(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, errBadCredentials
	}
	if err != nil {
		return "", nil, database.MapError(err, "profile")
	}
	if !p.CheckPassword(password) {
		return "", nil, errBadCredentials
	}
	token, _, err := s.tokens.GenerateToken(*p)
	if err != nil {
		return "", nil, apperrors.NewSystemError("token generation failed", err)
	}
	return token, p, nil
}

func hashOTP(email, code string) string {
	sum := sha256.Sum256([]byte(email + ":" + code))
	return hex.EncodeToString(sum[:])
}

// Forgot emails a one time code to a staff account. The outcome is never
// revealed to the caller so accounts cannot be enumerated.
func (s *AuthService) Forgot(ctx context.Context, email string) {
	email = normalizeEmail(email)
	p, err := s.findProfile(ctx, email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Error("password reset lookup failed", "error", err)
		}
		return
	}
	code, err := utils.GenerateOTP(OTPDigits)
	if err != nil {
		slog.Error("otp generation failed", "error", err)
		return
	}
	if err := s.kv.Set(ctx, otpPrefix+email, hashOTP(email, code), OTPTTL); err != nil {
		slog.Error("otp store failed", "error", err)
		return
	}
	if err := s.kv.Del(ctx, otpAttemptPrefix+email); err != nil {
		slog.Warn("otp attempt reset failed", "error", err)
	}
	SendAsync(s.mailer, Mail{
		To:      p.Email,
		Subject: "Your password reset code",
		Body:    fmt.Sprintf("Your verification code is %s. It expires in %d minutes.\n", code, int(OTPTTL/time.Minute)),
	}, 30*time.Second)
}

// VerifyOTP checks a recovery code and exchanges it for a recovery token.
// Codes are single use and locked after OTPMaxAttempts wrong guesses.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) (string, error) {
	email = normalizeEmail(email)
	invalid := apperrors.NewAuthError(apperrors.CodeBadCredentials, "Invalid or expired code")

	stored, ok, err := s.kv.Get(ctx, otpPrefix+email)
	if err != nil {
		return "", apperrors.NewSystemError("otp lookup failed", err)
	}
	if !ok {
		return "", invalid
	}
	attempts, err := s.kv.Incr(ctx, otpAttemptPrefix+email, OTPTTL)
	if err != nil {
		return "", apperrors.NewSystemError("otp lookup failed", err)
	}
	if attempts > OTPMaxAttempts {
		_ = s.kv.Del(ctx, otpPrefix+email, otpAttemptPrefix+email)
		return "", invalid
	}
	want := hashOTP(email, strings.TrimSpace(code))
	if subtle.ConstantTimeCompare([]byte(stored), []byte(want)) != 1 {
		return "", invalid
	}
	if err := s.kv.Del(ctx, otpPrefix+email, otpAttemptPrefix+email); err != nil {
		slog.Warn("otp cleanup failed", "error", err)
	}

	p, err := s.findProfile(ctx, email)
	if err != nil {
		return "", database.MapError(err, "profile")
	}
	token, _, err := s.tokens.GenerateRecoveryToken(*p, RecoveryTTL)
	if err != nil {
		return "", apperrors.NewSystemError("token generation failed", err)
	}
	return token, nil
}

// Reset sets a new password using a recovery token. The token is revoked afterwards.
func (s *AuthService) Reset(ctx context.Context, token, password, confirm string) error {
	fields := map[string]string{}
	if msg := passwordProblem(password); msg != "" {
		fields["password"] = msg
	}
	if password != confirm {
		fields["confirm_password"] = "Passwords do not match"
	}
	if len(fields) > 0 {
		return apperrors.NewValidationError("invalid password", fields)
	}

	claims, err := s.parse(ctx, token, utils.PurposeRecovery)
	if err != nil {
		return err
	}
	hash, err := models.HashPassword(password)
	if err != nil {
		return apperrors.NewSystemError("password hashing failed", err)
	}
	res := s.db.WithContext(ctx).Model(&models.Profile{}).
		Where("id = ?", claims.UserID).
		UpdateColumn("password", hash)
	if res.Error != nil {
		return database.MapError(res.Error, "profile")
	}
	if res.RowsAffected == 0 {
		return apperrors.NewNotFoundError("profile not found")
	}
	return s.revoke(ctx, claims)
}

// Authenticate validates a session token for protected routes.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*utils.Claims, error) {
	return s.parse(ctx, token, utils.PurposeSession)
}

func (s *AuthService) parse(ctx context.Context, token, purpose string) (*utils.Claims, error) {
	claims, err := s.tokens.ParseToken(token)
	if err != nil || claims.Purpose != purpose {
		return nil, apperrors.NewAuthError(apperrors.CodeForbidden, "Invalid or expired token")
	}
	_, revoked, err := s.kv.Get(ctx, revokedPrefix+claims.ID)
	if err != nil {
		return nil, apperrors.NewSystemError("token check failed", err)
	}
	if revoked {
		return nil, apperrors.NewAuthError(apperrors.CodeForbidden, "Invalid or expired token")
	}
	return claims, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, claims *utils.Claims) error {
	return s.revoke(ctx, claims)
}

func (s *AuthService) revoke(ctx context.Context, claims *utils.Claims) error {
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Time.Sub(s.now())
	}
	if ttl <= 0 {
		return nil
	}
	if err := s.kv.Set(ctx, revokedPrefix+claims.ID, "1", ttl); err != nil {
		return apperrors.NewSystemError("token revocation failed", err)
	}
	return nil
}

// passwordProblem describes why password cannot be used, or returns "".
func passwordProblem(password string) string {
	switch {
	case len(password) < MinPasswordLength:
		return fmt.Sprintf("must be at least %d characters", MinPasswordLength)
	case len(password) > MaxPasswordBytes:
		return fmt.Sprintf("must be at most %d bytes", MaxPasswordBytes)
	}
	return ""
}
