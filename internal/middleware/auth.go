package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/tiendalibre/marketplace-backend/internal/repository"
)

// Same wire shape as the handler package's ErrorResponse, duplicated here
// so the middleware does not depend on the handler layer.
type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

func newErrorResponse(code, message string) errorResponse {
	return errorResponse{Error: errorPayload{Code: code, Message: message}}
}

type AuthMiddleware struct {
	secret []byte
	users  repository.UserDirectory
}

func NewAuthMiddleware(secret string, users repository.UserDirectory) (*AuthMiddleware, error) {
	if secret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}
	return &AuthMiddleware{secret: []byte(secret), users: users}, nil
}

func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authz := c.Request().Header.Get("Authorization")
		if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
			return c.JSON(http.StatusUnauthorized, newErrorResponse("unauthorized", "missing bearer token"))
		}
		tokenStr := strings.TrimPrefix(authz, "Bearer ")
		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return m.secret, nil
		})
		if err != nil || !token.Valid {
			return c.JSON(http.StatusUnauthorized, newErrorResponse("invalid_token", "token is invalid or expired"))
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return c.JSON(http.StatusUnauthorized, newErrorResponse("invalid_token", "token is invalid or expired"))
		}
		idClaim, ok := claims["user_id"].(float64)
		if !ok || idClaim < 1 {
			return c.JSON(http.StatusUnauthorized, newErrorResponse("invalid_token", "token is invalid or expired"))
		}
		uid := uint64(idClaim)

		user, err := m.users.LookupUser(c.Request().Context(), uid)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, newErrorResponse("internal_error", "failed to resolve user"))
		}
		if user == nil {
			return c.JSON(http.StatusUnauthorized, newErrorResponse("unauthorized", "user not found"))
		}
		if !user.IsActive {
			return c.JSON(http.StatusForbidden, newErrorResponse("forbidden", "account is deactivated"))
		}

		c.Set("uid", uid)
		return next(c)
	}
}

// SignToken issues an HS256 token for the given user. Used by the seed tool
// and tests; production tokens come from the auth service.
func SignToken(secret string, userID uint64, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
