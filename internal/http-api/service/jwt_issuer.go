package service

import (
	"errors"
	"strings"
	"time"

	"storefront/internal/http-api/models"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuerName = "storefront"

// Claims carried by access tokens.
type Claims struct {
	UserID   string   `json:"user_id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Role     string   `json:"role"`
	Scopes   []string `json:"scopes,omitempty"`
	jwt.RegisteredClaims
}

// ScopeString joins scopes into a single space-separated string
func (c *Claims) ScopeString() string {
	return strings.Join(c.Scopes, " ")
}

// TokenIssuer mints and validates the short-lived signed access tokens.
// The refresh flow only depends on this interface; the JWT implementation
// below is the production one.
type TokenIssuer interface {
	Issue(user *models.User) (string, error)
	Validate(tokenString string) (*Claims, error)
	TTL() time.Duration
}

type jwtIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewJWTIssuer(secret string, ttl time.Duration) TokenIssuer {
	return &jwtIssuer{secret: []byte(secret), ttl: ttl}
}

func (i *jwtIssuer) Issue(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuerName,
			Subject:   user.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

func (i *jwtIssuer) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, ErrInvalidAccessToken
	}
	if claims.Issuer != tokenIssuerName || claims.Subject == "" {
		return nil, ErrInvalidAccessToken
	}
	return claims, nil
}

func (i *jwtIssuer) TTL() time.Duration {
	return i.ttl
}
