package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/spec-kit/staff-directory/internal/auth"
	"github.com/spec-kit/staff-directory/internal/domain"
	"github.com/spec-kit/staff-directory/internal/events"
	"github.com/spec-kit/staff-directory/internal/repository"
	apperrors "github.com/spec-kit/staff-directory/pkg/util"
)

const invalidCredentialsMessage = "Invalid username or password"

// dummyHash is compared against when the username is unknown so both login
// failure paths spend a bcrypt verification.
var dummyHash, _ = auth.HashPassword("directory-login-placeholder", auth.DefaultBcryptCost)

// RegisterRequest carries the register mutation arguments.
type RegisterRequest struct {
	Username string
	Password string
	Email    string
	Name     string
	Role     domain.Role
}

// AuthService coordinates login, registration and account administration.
type AuthService struct {
	credentials *CredentialStore
	users       repository.UserRepository
	employees   repository.EmployeeRepository
	tokenMgr    *auth.TokenManager
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	validate    *validator.Validate
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo     repository.UserRepository
	EmployeeRepo repository.EmployeeRepository
	Tokens       *auth.TokenManager
	BcryptCost   int
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		credentials: NewCredentialStore(deps.UserRepo, deps.BcryptCost),
		users:       deps.UserRepo,
		employees:   deps.EmployeeRepo,
		tokenMgr:    deps.Tokens,
		dispatcher:  deps.Dispatcher,
		logger:      logger,
		validate:    newValidator(),
	}
}

// Login verifies credentials and issues a token. Unknown usernames and wrong
// passwords fail with the same error.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.AuthPayload, error) {
	user, err := s.credentials.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.credentials.VerifySecret(password, dummyHash)
		return nil, apperrors.NewUnauthenticated(invalidCredentialsMessage)
	}
	if !s.credentials.VerifySecret(password, user.PasswordHash) {
		return nil, apperrors.NewUnauthenticated(invalidCredentialsMessage)
	}
	return s.issue(user)
}

// Register creates an account and logs it in. Only an admin caller may
// create another admin.
func (s *AuthService) Register(ctx context.Context, caller *domain.User, req RegisterRequest) (*domain.AuthPayload, error) {
	role := req.Role
	if role == "" {
		role = domain.RoleEmployee
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": string(role)})
	}
	if role == domain.RoleAdmin && (caller == nil || caller.Role != domain.RoleAdmin) {
		return nil, apperrors.NewForbidden("Only admins can create admin accounts")
	}

	in := registerInput{
		Username: strings.TrimSpace(req.Username),
		Password: req.Password,
		Email:    strings.TrimSpace(req.Email),
		Name:     strings.TrimSpace(req.Name),
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	taken, err := s.users.ExistsByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, errUserConflict()
	}

	user, err := s.credentials.Create(ctx, NewUser{
		Username: in.Username,
		Password: in.Password,
		Email:    in.Email,
		Name:     in.Name,
		Role:     role,
	})
	if err != nil {
		return nil, err
	}

	actor := ""
	if caller != nil {
		actor = caller.ID
	}
	s.publish(ctx, events.NewEvent(events.EventUserRegistered, user.ID, actor,
		events.UserRegisteredPayload{Username: user.Username, Role: string(user.Role)}))
	return s.issue(user)
}

// Me returns the authenticated caller.
func (s *AuthService) Me(_ context.Context, caller *domain.User) (*domain.User, error) {
	return auth.RequireAuthenticated(caller)
}

// Users lists accounts, optionally filtered by role. Admin only.
func (s *AuthService) Users(ctx context.Context, caller *domain.User, role *domain.Role) ([]domain.User, error) {
	if _, err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	if role != nil && !role.Valid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": string(*role)})
	}
	return s.credentials.List(ctx, role)
}

// AssignEmployeeToUser links an account to an employee record. Admin only.
func (s *AuthService) AssignEmployeeToUser(ctx context.Context, caller *domain.User, userID, employeeID string) (*domain.User, error) {
	if _, err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}

	user, err := s.credentials.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errUserNotFound(userID)
	}

	emp, err := orNil(s.employees.GetByID(ctx, employeeID))
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, errEmployeeNotFound(employeeID)
	}

	updated, err := s.credentials.UpdateFields(ctx, user.ID, domain.UserFields{EmployeeID: &emp.ID})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, errUserNotFound(userID)
	}

	s.publish(ctx, events.NewEvent(events.EventUserEmployeeLinked, updated.ID, caller.ID,
		events.UserEmployeeLinkedPayload{EmployeeID: emp.ID}))
	return updated, nil
}

// UpdateUserRole changes an account's role. Admin only.
func (s *AuthService) UpdateUserRole(ctx context.Context, caller *domain.User, userID string, role domain.Role) (*domain.User, error) {
	if _, err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": string(role)})
	}

	user, err := s.credentials.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errUserNotFound(userID)
	}
	oldRole := user.Role

	updated, err := s.credentials.UpdateFields(ctx, user.ID, domain.UserFields{Role: &role})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, errUserNotFound(userID)
	}

	s.publish(ctx, events.NewEvent(events.EventUserRoleChanged, updated.ID, caller.ID,
		events.UserRoleChangedPayload{OldRole: string(oldRole), NewRole: string(updated.Role)}))
	return updated, nil
}

// Credentials exposes the underlying credential store.
func (s *AuthService) Credentials() *CredentialStore {
	return s.credentials
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) issue(user *domain.User) (*domain.AuthPayload, error) {
	token, exp, err := s.tokenMgr.GenerateToken(user.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &domain.AuthPayload{Token: token, ExpiresAt: exp, User: user}, nil
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event", string(event.Type)), zap.Error(err))
	}
}

func errUserNotFound(id string) error {
	return apperrors.NewNotFound("User", map[string]any{"id": id})
}
