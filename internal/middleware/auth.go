package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"pharmaledger/internal/access"
	apperrors "pharmaledger/internal/errors"
	"pharmaledger/internal/models"
)

const (
	// ActorKey is the gin context key holding the authenticated access.Actor.
	ActorKey = "actor"

	tokenIssuer = "pharmaledger-api"
)

// JWTClaims represents the claims in the JWT. Role and shift are copied from
// the user at sign-in; both are immutable, so they cannot go stale.
type JWTClaims struct {
	UserID   string            `json:"user_id"`
	Username string            `json:"username"`
	Role     models.Role       `json:"role"`
	Shift    *models.ShiftType `json:"shift,omitempty"`
	jwt.RegisteredClaims
}

// UserLookup resolves the user behind a token on every request.
type UserLookup interface {
	GetUserByID(id string) (*models.User, error)
}

// GenerateToken signs an access token for user valid for ttl.
func GenerateToken(user *models.User, secret string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := &JWTClaims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		Shift:    user.Shift,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   user.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseToken validates a signed token and returns its claims.
func ParseToken(tokenString, secret string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == "" {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// AuthMiddleware verifies the bearer token, reloads the user and stores the
// resulting actor in the context. Deactivated users are rejected even while
// their token has not expired.
func AuthMiddleware(secret string, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			AbortWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Authorization header is required"))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			AbortWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid authorization header format"))
			return
		}

		claims, err := ParseToken(parts[1], secret)
		if err != nil {
			AbortWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid or expired token"))
			return
		}

		user, err := users.GetUserByID(claims.UserID)
		if err != nil || !user.IsActive {
			AbortWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Account is not active"))
			return
		}

		c.Set(ActorKey, access.ActorOf(user))
		c.Set(userIDKey, user.ID)
		c.Next()
	}
}

// ActorFrom returns the actor stored by AuthMiddleware.
func ActorFrom(c *gin.Context) (access.Actor, bool) {
	v, ok := c.Get(ActorKey)
	if !ok {
		return access.Actor{}, false
	}
	actor, ok := v.(access.Actor)
	return actor, ok
}
