package auth

import (
	"github.com/spec-kit/staff-directory/internal/domain"
	apperrors "github.com/spec-kit/staff-directory/pkg/util"
)

// RequireAuthenticated fails when no user is resolved.
func RequireAuthenticated(user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, apperrors.NewUnauthenticated("You must be logged in")
	}
	return user, nil
}

// RequireRole fails unless user holds one of allowed. No roles means no restriction.
func RequireRole(user *domain.User, allowed ...domain.Role) (*domain.User, error) {
	if len(allowed) == 0 {
		return user, nil
	}
	if user != nil {
		for _, role := range allowed {
			if user.Role == role {
				return user, nil
			}
		}
	}
	return nil, apperrors.NewForbidden("You don't have permission to perform this action")
}

// RequireAdmin composes both guards for admin-only operations.
func RequireAdmin(user *domain.User) (*domain.User, error) {
	if _, err := RequireAuthenticated(user); err != nil {
		return nil, err
	}
	return RequireRole(user, domain.RoleAdmin)
}
