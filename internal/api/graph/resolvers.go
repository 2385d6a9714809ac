package graph

import (
	"github.com/graphql-go/graphql"
	"go.uber.org/zap"

	"github.com/spec-kit/staff-directory/internal/auth"
	"github.com/spec-kit/staff-directory/internal/domain"
	"github.com/spec-kit/staff-directory/internal/service"
	apperrors "github.com/spec-kit/staff-directory/pkg/util"
)

type resolver struct {
	directory *service.DirectoryService
	auth      *service.AuthService
	logger    *zap.Logger
}

// wrap converts resolver errors into the client-facing form. Internal
// failures are logged and replaced by a generic message.
func (r *resolver) wrap(fn graphql.FieldResolveFn) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		out, err := fn(p)
		if err == nil {
			return out, nil
		}
		derr := apperrors.ToDomainError(err)
		if derr.Code == apperrors.CodeInternal {
			r.logger.Error("resolver failed", zap.String("field", p.Info.FieldName), zap.Error(err))
			return nil, &apperrors.DomainError{
				Code:       apperrors.CodeInternal,
				Message:    "Internal server error",
				HTTPStatus: derr.HTTPStatus,
			}
		}
		return nil, &apperrors.DomainError{
			Code:       derr.Code,
			Message:    derr.Message,
			HTTPStatus: derr.HTTPStatus,
			Details:    derr.Details,
		}
	}
}

func caller(p graphql.ResolveParams) *domain.User {
	user, _ := auth.UserFromContext(p.Context)
	return user
}

func (r *resolver) employees(p graphql.ResolveParams) (interface{}, error) {
	params := service.ListParams{
		Page:       intArg(p.Args, "page"),
		Limit:      intArg(p.Args, "limit"),
		SortBy:     stringArg(p.Args, "sortBy"),
		SortOrder:  stringArg(p.Args, "sortOrder"),
		FilterName: optionalString(p.Args, "filterName"),
	}
	return r.directory.List(p.Context, params)
}

func (r *resolver) employee(p graphql.ResolveParams) (interface{}, error) {
	emp, err := r.directory.GetByID(p.Context, stringArg(p.Args, "id"))
	if err != nil || emp == nil {
		return nil, err
	}
	return emp, nil
}

func (r *resolver) me(p graphql.ResolveParams) (interface{}, error) {
	user, err := r.auth.Me(p.Context, caller(p))
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *resolver) users(p graphql.ResolveParams) (interface{}, error) {
	var role *domain.Role
	if v, ok := roleArg(p.Args, "role"); ok {
		role = &v
	}
	list, err := r.auth.Users(p.Context, caller(p), role)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.User, len(list))
	for i := range list {
		out[i] = &list[i]
	}
	return out, nil
}

func (r *resolver) userEmployee(p graphql.ResolveParams) (interface{}, error) {
	user, ok := p.Source.(*domain.User)
	if !ok || user == nil || user.EmployeeID == nil {
		return nil, nil
	}
	emp, err := r.directory.GetByID(p.Context, *user.EmployeeID)
	if err != nil {
		r.logger.Warn("employee lookup for user failed", zap.String("user_id", user.ID), zap.Error(err))
		return nil, nil
	}
	if emp == nil {
		return nil, nil
	}
	return emp, nil
}

func (r *resolver) addEmployee(p graphql.ResolveParams) (interface{}, error) {
	emp, err := r.directory.AddEmployee(p.Context, caller(p), employeeFields(p.Args))
	if err != nil {
		return nil, err
	}
	return emp, nil
}

func (r *resolver) updateEmployee(p graphql.ResolveParams) (interface{}, error) {
	emp, err := r.directory.UpdateEmployee(p.Context, caller(p), stringArg(p.Args, "id"), employeeFields(p.Args))
	if err != nil {
		return nil, err
	}
	return emp, nil
}

func (r *resolver) deleteEmployee(p graphql.ResolveParams) (interface{}, error) {
	return r.directory.DeleteEmployee(p.Context, caller(p), stringArg(p.Args, "id"))
}

func (r *resolver) login(p graphql.ResolveParams) (interface{}, error) {
	payload, err := r.auth.Login(p.Context, stringArg(p.Args, "username"), stringArg(p.Args, "password"))
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (r *resolver) register(p graphql.ResolveParams) (interface{}, error) {
	req := service.RegisterRequest{
		Username: stringArg(p.Args, "username"),
		Password: stringArg(p.Args, "password"),
		Email:    stringArg(p.Args, "email"),
		Name:     stringArg(p.Args, "name"),
	}
	if role, ok := roleArg(p.Args, "role"); ok {
		req.Role = role
	}
	payload, err := r.auth.Register(p.Context, caller(p), req)
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (r *resolver) assignEmployeeToUser(p graphql.ResolveParams) (interface{}, error) {
	user, err := r.auth.AssignEmployeeToUser(p.Context, caller(p), stringArg(p.Args, "userId"), stringArg(p.Args, "employeeId"))
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *resolver) updateUserRole(p graphql.ResolveParams) (interface{}, error) {
	role, _ := roleArg(p.Args, "role")
	user, err := r.auth.UpdateUserRole(p.Context, caller(p), stringArg(p.Args, "userId"), role)
	if err != nil {
		return nil, err
	}
	return user, nil
}
