package handler

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/http-api/models"
	"storefront/internal/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAuthService mocks the AuthService interface
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(username, password, email string) (*models.User, error) {
	args := m.Called(username, password, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) Login(username, password, ip, userAgent string) (*service.AuthResult, error) {
	args := m.Called(username, password, ip, userAgent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthResult), args.Error(1)
}

func (m *MockAuthService) RefreshAccessToken(tokenValue, ip, userAgent string) (*service.AuthResult, error) {
	args := m.Called(tokenValue, ip, userAgent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthResult), args.Error(1)
}

func (m *MockAuthService) RevokeToken(tokenValue string) error {
	args := m.Called(tokenValue)
	return args.Error(0)
}

func (m *MockAuthService) ValidateToken(tokenString string) (*service.Claims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Claims), args.Error(1)
}

func (m *MockAuthService) PromoteToAdmin(userID string) (*models.User, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func newAuthTestRouter(mockService *MockAuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewAuthHandler(mockService, logger, 7*24*time.Hour)

	r := gin.New()
	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/logout", h.Logout)
	}
	return r
}

func refreshCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == "refreshToken" {
			return c
		}
	}
	return nil
}

func TestLogin_SetsRefreshCookie(t *testing.T) {
	mockService := new(MockAuthService)
	r := newAuthTestRouter(mockService)

	result := &service.AuthResult{
		AccessToken:  "access-jwt",
		RefreshToken: "refresh-value",
		ExpiresIn:    900,
		User:         &models.User{ID: "user-id", Username: "testuser", Role: "customer"},
	}
	mockService.On("Login", "testuser", "password123", mock.Anything, mock.Anything).Return(result, nil)

	body := bytes.NewBufferString(`{"username":"testuser","password":"password123"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "access-jwt")
	// the refresh token travels only in the cookie, never in the login body
	assert.NotContains(t, w.Body.String(), "refresh-value")

	cookie := refreshCookie(t, w)
	require.NotNil(t, cookie)
	assert.Equal(t, "refresh-value", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, int((7 * 24 * time.Hour).Seconds()), cookie.MaxAge)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
}

func TestRefresh_Success_ReplacesCookie(t *testing.T) {
	mockService := new(MockAuthService)
	r := newAuthTestRouter(mockService)

	result := &service.AuthResult{
		AccessToken:  "new-access-jwt",
		RefreshToken: "successor-value",
		ExpiresIn:    900,
		User:         &models.User{ID: "user-id"},
	}
	mockService.On("RefreshAccessToken", "old-value", mock.Anything, mock.Anything).Return(result, nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "old-value"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "new-access-jwt")

	cookie := refreshCookie(t, w)
	require.NotNil(t, cookie)
	assert.Equal(t, "successor-value", cookie.Value)
	mockService.AssertExpectations(t)
}

func TestRefresh_MissingCookie(t *testing.T) {
	mockService := new(MockAuthService)
	r := newAuthTestRouter(mockService)

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"invalid or expired refresh token"}`, w.Body.String())
	mockService.AssertNotCalled(t, "RefreshAccessToken", mock.Anything, mock.Anything, mock.Anything)
}

// Every auth failure mode gets the same 401 body and a cleared cookie, so a
// caller cannot tell a replayed token from an expired or unknown one.
func TestRefresh_FailuresAreUniform(t *testing.T) {
	failures := []struct {
		name string
		err  error
	}{
		{"unknown token", service.ErrInvalidToken},
		{"expired token", service.ErrExpiredToken},
		{"replayed token", service.ErrTokenReuse},
		{"lost rotation race", service.ErrConcurrentRotation},
		{"orphaned token", service.ErrUserNotFound},
	}

	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockAuthService)
			r := newAuthTestRouter(mockService)
			mockService.On("RefreshAccessToken", "bad-value", mock.Anything, mock.Anything).Return(nil, tt.err)

			req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
			req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "bad-value"})
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.JSONEq(t, `{"error":"invalid or expired refresh token"}`, w.Body.String())

			cookie := refreshCookie(t, w)
			require.NotNil(t, cookie)
			assert.Empty(t, cookie.Value)
			assert.Less(t, cookie.MaxAge, 0)
		})
	}
}

func TestRefresh_InternalErrorStillClearsCookie(t *testing.T) {
	mockService := new(MockAuthService)
	r := newAuthTestRouter(mockService)
	mockService.On("RefreshAccessToken", "some-value", mock.Anything, mock.Anything).
		Return(nil, assert.AnError)

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "some-value"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	cookie := refreshCookie(t, w)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
}

func TestLogout_AlwaysSucceeds(t *testing.T) {
	mockService := new(MockAuthService)
	r := newAuthTestRouter(mockService)
	mockService.On("RevokeToken", "some-value").Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "some-value"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	cookie := refreshCookie(t, w)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
}

func TestLogout_NoCookieStillSucceeds(t *testing.T) {
	mockService := new(MockAuthService)
	r := newAuthTestRouter(mockService)
	mockService.On("RevokeToken", "").Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegister_DuplicateIsGeneric(t *testing.T) {
	mockService := new(MockAuthService)
	r := newAuthTestRouter(mockService)
	mockService.On("Register", "taken", "password123", "taken@example.com").
		Return(nil, service.ErrNameInUse)

	body := bytes.NewBufferString(`{"username":"taken","password":"password123","email":"taken@example.com"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/register", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	// does not reveal whether username or email collided
	assert.JSONEq(t, `{"error":"Account creation failed"}`, w.Body.String())
}
