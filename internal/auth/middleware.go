package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/staff-directory/internal/domain"
)

const principalKey = "auth_principal"

// UserFinder loads users by id. A missing user is (nil, nil).
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// AuthMiddleware resolves bearer tokens to users without rejecting anonymous callers.
type AuthMiddleware struct {
	tokens *TokenManager
	users  UserFinder
	logger *zap.Logger
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users UserFinder, logger *zap.Logger) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{tokens: tokens, users: users, logger: logger}
}

// ResolveUser verifies token and loads its user. Any failure yields (nil, false).
func (m *AuthMiddleware) ResolveUser(ctx context.Context, token string) (*domain.User, bool) {
	if token == "" {
		return nil, false
	}
	userID, err := m.tokens.Verify(token)
	if err != nil {
		m.logger.Debug("token rejected", zap.Error(err))
		return nil, false
	}
	user, err := m.users.FindByID(ctx, userID)
	if err != nil {
		m.logger.Warn("user lookup failed during authentication", zap.String("user_id", userID), zap.Error(err))
		return nil, false
	}
	if user == nil {
		m.logger.Debug("token subject no longer exists", zap.String("user_id", userID))
		return nil, false
	}
	return user, true
}

// Handle attaches the caller, if any, to the request and always continues.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	token := BearerToken(c.Get(fiber.HeaderAuthorization))
	if user, ok := m.ResolveUser(c.UserContext(), token); ok {
		c.Locals(principalKey, user)
		c.SetUserContext(ContextWithUser(c.UserContext(), user))
	}
	return c.Next()
}

// BearerToken extracts the credential from an Authorization header value.
func BearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// PrincipalFromContext retrieves the authenticated user.
func PrincipalFromContext(c *fiber.Ctx) (*domain.User, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	user, ok := val.(*domain.User)
	return user, ok
}
