package auth

import (
	"context"

	"github.com/spec-kit/staff-directory/internal/domain"
)

type ctxKey int

const userKey ctxKey = iota

// ContextWithUser stores the resolved caller.
func ContextWithUser(ctx context.Context, user *domain.User) context.Context {
	if user == nil {
		return ctx
	}
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the caller, or false for an anonymous request.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userKey).(*domain.User)
	return user, ok && user != nil
}
