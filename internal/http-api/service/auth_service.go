package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"storefront/internal/config"
	"storefront/internal/http-api/models"
	"storefront/internal/http-api/repository"
	"storefront/internal/middleware/auth"
)

var (
	ErrNameInUse          = errors.New("username already in use")
	ErrEmailInUse         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid refresh token")
	ErrExpiredToken       = errors.New("refresh token expired")
	ErrInvalidAccessToken = errors.New("invalid access token")

	// ErrTokenReuse: a revoked token was presented again. Replay handling
	// (revoke-all + alert) has already run by the time this is returned.
	ErrTokenReuse = errors.New("revoked refresh token reused")

	// ErrConcurrentRotation: this request lost the rotation race to another
	// in-flight refresh with the same token. Benign contention, must not be
	// confused with ErrTokenReuse: it triggers no revocation fan-out.
	ErrConcurrentRotation = errors.New("refresh token already claimed for rotation")

	ErrUserNotFound = errors.New("user not found")
)

// AuthResult bundles everything a successful login or refresh returns.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64 // access-token lifetime in seconds
	User         *models.User
}

type AuthService interface {
	Register(username, password, email string) (*models.User, error)
	Login(username, password, ip, userAgent string) (*AuthResult, error)
	RefreshAccessToken(tokenValue, ip, userAgent string) (*AuthResult, error)
	RevokeToken(tokenValue string) error
	ValidateToken(tokenString string) (*Claims, error)
	PromoteToAdmin(userID string) (*models.User, error)
}

type authService struct {
	userRepo         repository.UserRepository
	refreshTokenRepo repository.RefreshTokenRepository
	issuer           TokenIssuer
	replayDetector   *ReplayDetector
	alerts           AlertSink
	logger           *slog.Logger
	refreshTokenTTL  time.Duration
	alertTimeout     time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	refreshTokenRepo repository.RefreshTokenRepository,
	issuer TokenIssuer,
	replayDetector *ReplayDetector,
	alerts AlertSink,
	logger *slog.Logger,
	cfg *config.Config,
) AuthService {
	return &authService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		issuer:           issuer,
		replayDetector:   replayDetector,
		alerts:           alerts,
		logger:           logger,
		refreshTokenTTL:  cfg.RefreshTokenTTL, // 7 days
		alertTimeout:     cfg.AlertTimeout,
	}
}

// Register: registers a new user with the given username, password, and email.
func (s *authService) Register(username, password, email string) (*models.User, error) {
	if _, err := s.userRepo.FindByUsername(username); err == nil {
		return nil, ErrNameInUse
	}
	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailInUse
	}

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: hashedPassword,
	}

	if err := s.userRepo.Create(user); err != nil {
		// lost a race with a concurrent signup for the same username/email
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrNameInUse
		}
		return nil, err
	}

	return user, nil
}

// Login: authenticates a user and starts a fresh session chain.
func (s *authService) Login(username, password, ip, userAgent string) (*AuthResult, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		// User not found: dummy compare to mitigate timing attacks (always take same time)
		auth.VerifyPassword("$2a$10$7EqJtq98hPqEX7fNZaFWoOHi6VbU5h6K9v8u5rO0m3j0h6dX5r8e", password)
		return nil, ErrInvalidCredentials
	}

	if err := auth.VerifyPassword(user.Password, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	accessToken, err := s.issuer.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issuing access token: %w", err)
	}

	refreshToken, err := s.createRefreshToken(user.ID, ip, userAgent)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.TouchLastLogin(user.ID); err != nil {
		s.logger.Warn("failed to update last login", "user_id", user.ID, "error", err)
	}

	return &AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken.Token,
		ExpiresIn:    int64(s.issuer.TTL().Seconds()),
		User:         user,
	}, nil
}

// createRefreshToken mints a new high-entropy token row for the user.
func (s *authService) createRefreshToken(userID, ip, userAgent string) (*models.RefreshToken, error) {
	value, err := newRefreshTokenValue()
	if err != nil {
		return nil, fmt.Errorf("generating refresh token: %w", err)
	}

	token := &models.RefreshToken{
		UserID:    userID,
		Token:     value,
		ExpiresAt: time.Now().Add(s.refreshTokenTTL),
		IPAddress: ip,
		UserAgent: userAgent,
	}

	if err := s.refreshTokenRepo.Create(token); err != nil {
		return nil, fmt.Errorf("storing refresh token: %w", err)
	}

	return token, nil
}

// newRefreshTokenValue returns 32 bytes of crypto randomness, base64url
// encoded. UUIDs are not used here: the token value is a bearer credential
// and needs full-entropy unguessability.
func newRefreshTokenValue() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// verifyRefreshToken resolves a presented token value. Expiry is checked
// before the revoked flag so an expired token always reads as expired,
// revoked or not.
func (s *authService) verifyRefreshToken(tokenValue string) (*models.RefreshToken, error) {
	token, err := s.refreshTokenRepo.FindByToken(tokenValue)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if time.Now().After(token.ExpiresAt) {
		return nil, ErrExpiredToken
	}
	return token, nil
}

// RefreshAccessToken rotates the presented refresh token and issues a new
// access token. Exactly one of two concurrent calls with the same value can
// succeed: the winner is decided by TryClaimForRotation's conditional
// UPDATE, and the loser gets ErrConcurrentRotation with no side effects.
func (s *authService) RefreshAccessToken(tokenValue, ip, userAgent string) (*AuthResult, error) {
	token, err := s.verifyRefreshToken(tokenValue)
	if err != nil {
		return nil, err
	}

	if token.Revoked {
		s.replayDetector.HandleReplay(token, ip, userAgent)
		return nil, ErrTokenReuse
	}

	claimed, err := s.refreshTokenRepo.TryClaimForRotation(tokenValue)
	if err != nil {
		return nil, fmt.Errorf("claiming refresh token: %w", err)
	}
	if !claimed {
		return nil, ErrConcurrentRotation
	}

	successor, err := s.createRefreshToken(token.UserID, ip, userAgent)
	if err != nil {
		return nil, err
	}

	if !IsDeviceMatching(token, ip, userAgent) {
		s.notifyNewDevice(token.UserID, ip, userAgent)
	}

	user, err := s.userRepo.FindByID(token.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	accessToken, err := s.issuer.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issuing access token: %w", err)
	}

	return &AuthResult{
		AccessToken:  accessToken,
		RefreshToken: successor.Token,
		ExpiresIn:    int64(s.issuer.TTL().Seconds()),
		User:         user,
	}, nil
}

// notifyNewDevice dispatches the new-device alert off the request path.
// Rotation has already succeeded; nothing here may fail the response.
func (s *authService) notifyNewDevice(userID, ip, userAgent string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.alertTimeout)
		defer cancel()
		if err := s.alerts.NotifyNewDeviceLogin(ctx, userID, ip, userAgent); err != nil {
			s.logger.Warn("new device alert dispatch failed", "user_id", userID, "error", err)
		}
	}()
}

// RevokeToken revokes the presented token. Idempotent: revoking an absent
// or already-revoked token is not an error, to avoid token fishing via the
// logout endpoint.
func (s *authService) RevokeToken(tokenValue string) error {
	if tokenValue == "" {
		return nil
	}
	if _, err := s.refreshTokenRepo.FindByToken(tokenValue); err != nil {
		return nil
	}
	return s.refreshTokenRepo.Revoke(tokenValue)
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	return s.issuer.Validate(tokenString)
}

// PromoteToAdmin grants the admin role to an existing user.
func (s *authService) PromoteToAdmin(userID string) (*models.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if user.Role == "admin" {
		return user, nil
	}
	if err := s.userRepo.UpdateRole(userID, "admin"); err != nil {
		return nil, err
	}
	user.Role = "admin"
	return user, nil
}
