package service

import (
	"context"
	"errors"

	"github.com/spec-kit/staff-directory/internal/auth"
	"github.com/spec-kit/staff-directory/internal/domain"
	"github.com/spec-kit/staff-directory/internal/repository"
	apperrors "github.com/spec-kit/staff-directory/pkg/util"
)

// NewUser carries the fields needed to create an account. Password is plaintext.
type NewUser struct {
	Username   string
	Password   string
	Email      string
	Name       string
	Role       domain.Role
	EmployeeID *string
}

// CredentialStore persists accounts and owns secret hashing, so plaintext
// never reaches the repository.
type CredentialStore struct {
	users      repository.UserRepository
	bcryptCost int
}

// NewCredentialStore builds the store.
func NewCredentialStore(users repository.UserRepository, bcryptCost int) *CredentialStore {
	if bcryptCost <= 0 {
		bcryptCost = auth.DefaultBcryptCost
	}
	return &CredentialStore{users: users, bcryptCost: bcryptCost}
}

// HashSecret returns a salted one-way digest of plain.
func (s *CredentialStore) HashSecret(plain string) (string, error) {
	return auth.HashPassword(plain, s.bcryptCost)
}

// VerifySecret reports whether plain matches digest.
func (s *CredentialStore) VerifySecret(plain, digest string) bool {
	return auth.VerifyPassword(digest, plain)
}

// FindByUsername returns nil when no account has username.
func (s *CredentialStore) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return orNil(s.users.GetByUsername(ctx, username))
}

// FindByID returns nil when no account has id.
func (s *CredentialStore) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return orNil(s.users.GetByID(ctx, id))
}

// Create hashes the secret and stores a new account.
func (s *CredentialStore) Create(ctx context.Context, in NewUser) (*domain.User, error) {
	hash, err := s.HashSecret(in.Password)
	if err != nil {
		return nil, err
	}
	role := in.Role
	if role == "" {
		role = domain.RoleEmployee
	}

	user := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: hash,
		Role:         role,
		EmployeeID:   in.EmployeeID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errUserConflict()
		}
		return nil, err
	}
	return user, nil
}

// UpdateFields applies a partial update and returns nil when id is unknown.
// A new password is re-hashed before it is stored.
func (s *CredentialStore) UpdateFields(ctx context.Context, id string, fields domain.UserFields) (*domain.User, error) {
	user, err := s.FindByID(ctx, id)
	if err != nil || user == nil {
		return nil, err
	}

	if fields.Password != nil {
		hash, err := s.HashSecret(*fields.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if fields.Role != nil {
		user.Role = *fields.Role
	}
	if fields.EmployeeID != nil {
		user.EmployeeID = fields.EmployeeID
	}

	if err := s.users.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, nil
		case errors.Is(err, repository.ErrDuplicate):
			return nil, errUserConflict()
		}
		return nil, err
	}
	return user, nil
}

// List returns accounts, optionally restricted to one role.
func (s *CredentialStore) List(ctx context.Context, role *domain.Role) ([]domain.User, error) {
	return s.users.List(ctx, role)
}

func errUserConflict() error {
	return apperrors.NewConflict("Username or email already in use", nil)
}

func orNil[T any](v *T, err error) (*T, error) {
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}
