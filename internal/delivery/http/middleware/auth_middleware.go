package middleware

import (
	"errors"
	"strings"

	"classifieds/internal/domain/access"
	"classifieds/internal/pkg/jwt"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const (
	CtxPrincipalKey = "principal"
	CtxEmailKey     = "email"
)

type AuthMiddleware struct {
	jwt jwt.Service
}

func NewAuthMiddleware(jwtSvc jwt.Service) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwtSvc}
}

// Middleware rejects requests without a valid access token.
func (m *AuthMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, ok := tokenFromRequest(c)
		if !ok {
			return NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
		}
		if err := m.authenticate(c, token); err != nil {
			return err
		}
		return c.Next()
	}
}

// Optional resolves a principal when a token is present and continues anonymously
// otherwise. A present but invalid token is still rejected.
func (m *AuthMiddleware) Optional() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, ok := tokenFromRequest(c)
		if ok {
			if err := m.authenticate(c, token); err != nil {
				return err
			}
		}
		return c.Next()
	}
}

func (m *AuthMiddleware) authenticate(c fiber.Ctx, token string) error {
	claims, err := m.jwt.ValidateToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return NewAppError(fiber.StatusUnauthorized, "Token expired", nil, err)
		}
		return NewAppError(fiber.StatusUnauthorized, "Invalid token", nil, err)
	}

	c.Locals(CtxPrincipalKey, access.Principal{ID: claims.UserID, Role: access.ParseRole(claims.Role)})
	c.Locals(CtxEmailKey, claims.Email)
	return nil
}

// PrincipalFrom returns the caller resolved by the auth middleware, or Anonymous.
func PrincipalFrom(c fiber.Ctx) access.Principal {
	p, ok := c.Locals(CtxPrincipalKey).(access.Principal)
	if !ok {
		return access.Anonymous
	}
	return p
}

// UserIDFrom adapts PrincipalFrom for callers that only need the user id.
func UserIDFrom(c fiber.Ctx) (uuid.UUID, bool) {
	p := PrincipalFrom(c)
	return p.ID, p.Authenticated()
}

func tokenFromRequest(c fiber.Ctx) (string, bool) {
	if token, ok := bearerTokenFromHeader(c.Get("Authorization")); ok {
		return token, true
	}
	// Browsers cannot set headers on websocket upgrades.
	if token := strings.TrimSpace(c.Query("access_token")); token != "" {
		return token, true
	}
	return "", false
}

func bearerTokenFromHeader(authHeader string) (string, bool) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}

	return token, true
}
