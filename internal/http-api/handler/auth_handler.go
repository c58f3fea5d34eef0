package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"storefront/internal/http-api/dto"
	"storefront/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

const refreshCookieName = "refreshToken"

// genericAuthFailure is what every refresh failure looks like from outside.
// Replay detection and benign rotation races are logged separately but must
// be indistinguishable at the protocol level.
const genericAuthFailure = "invalid or expired refresh token"

type AuthHandler struct {
	authService service.AuthService
	logger      *slog.Logger
	refreshTTL  time.Duration
}

func NewAuthHandler(authService service.AuthService, logger *slog.Logger, refreshTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
		refreshTTL:  refreshTTL,
	}
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, value string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(refreshCookieName, value, int(h.refreshTTL.Seconds()), "/", "", true, true)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(refreshCookieName, "", -1, "/", "", true, true)
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authService.Register(req.Username, req.Password, req.Email)
	if err == service.ErrNameInUse || err == service.ErrEmailInUse {
		c.JSON(http.StatusConflict, gin.H{"error": "Account creation failed"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Account creation failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user_id":  user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.authService.Login(req.Username, req.Password, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	h.setRefreshCookie(c, result.RefreshToken)
	c.JSON(http.StatusOK, dto.AuthResponse{
		AccessToken: result.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   result.ExpiresIn,
		UserID:      result.User.ID,
		Username:    result.User.Username,
		Role:        result.User.Role,
	})
}

// Refresh rotates the refresh token presented in the cookie. On any
// failure the cookie is cleared so the client cannot retry-loop against a
// credential that will never work again.
func (h *AuthHandler) Refresh(c *gin.Context) {
	tokenValue, err := c.Cookie(refreshCookieName)
	if err != nil || tokenValue == "" {
		h.clearRefreshCookie(c)
		c.JSON(http.StatusUnauthorized, gin.H{"error": genericAuthFailure})
		return
	}

	result, err := h.authService.RefreshAccessToken(tokenValue, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		h.clearRefreshCookie(c)
		switch {
		case errors.Is(err, service.ErrInvalidToken),
			errors.Is(err, service.ErrExpiredToken),
			errors.Is(err, service.ErrTokenReuse),
			errors.Is(err, service.ErrConcurrentRotation),
			errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusUnauthorized, gin.H{"error": genericAuthFailure})
		default:
			h.logger.Error("refresh failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	h.setRefreshCookie(c, result.RefreshToken)
	c.JSON(http.StatusOK, dto.RefreshResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    result.ExpiresIn,
	})
}

// Logout revokes the presented token and clears the cookie. Always
// answers 200: revoking an absent or already-revoked token is not an error.
func (h *AuthHandler) Logout(c *gin.Context) {
	tokenValue, _ := c.Cookie(refreshCookieName)

	if err := h.authService.RevokeToken(tokenValue); err != nil {
		h.logger.Warn("logout revoke failed", "error", err)
	}

	h.clearRefreshCookie(c)
	c.JSON(http.StatusOK, dto.LogoutResponse{Message: "logged out"})
}

// Promote grants the admin role to a user. Route is guarded by RequireAdmin.
func (h *AuthHandler) Promote(c *gin.Context) {
	userID := c.Param("id")

	user, err := h.authService.PromoteToAdmin(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "promotion failed"})
		return
	}

	c.JSON(http.StatusOK, dto.PromoteResponse{UserID: user.ID, Role: user.Role})
}
