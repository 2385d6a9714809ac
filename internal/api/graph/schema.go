// Package graph exposes the directory over GraphQL.
package graph

import (
	"context"
	"time"

	"github.com/graphql-go/graphql"
	"go.uber.org/zap"

	"github.com/spec-kit/staff-directory/internal/observability"
	"github.com/spec-kit/staff-directory/internal/service"
)

// Request is a decoded GraphQL request body.
type Request struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

// Executor runs GraphQL requests against the directory schema.
type Executor struct {
	schema  graphql.Schema
	logger  *zap.Logger
	metrics *observability.Metrics
}

// Dependencies bundles what the resolvers call into.
type Dependencies struct {
	Directory *service.DirectoryService
	Auth      *service.AuthService
	Logger    *zap.Logger
	Metrics   *observability.Metrics
}

// NewExecutor builds the schema and wraps it for execution.
func NewExecutor(deps Dependencies) (*Executor, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &resolver{directory: deps.Directory, auth: deps.Auth, logger: logger}
	schema, err := newSchema(r)
	if err != nil {
		return nil, err
	}
	return &Executor{schema: schema, logger: logger, metrics: deps.Metrics}, nil
}

// Execute runs req. Per-field failures are reported in the result's errors.
func (e *Executor) Execute(ctx context.Context, req Request) *graphql.Result {
	start := time.Now()
	result := graphql.Do(graphql.Params{
		Schema:         e.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	})
	elapsed := time.Since(start)

	op := req.OperationName
	if op == "" {
		op = "anonymous"
	}
	e.metrics.RecordOperation(op, elapsed)
	e.logger.Debug("graphql operation",
		zap.String("operation", op),
		zap.Duration("duration", elapsed),
		zap.Int("errors", len(result.Errors)))
	return result
}

func newSchema(r *resolver) (graphql.Schema, error) {
	userType := newUserType(r.userEmployee)
	authPayloadType := newAuthPayloadType(userType)

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"employees": &graphql.Field{
				Type: graphql.NewNonNull(employeePageType),
				Args: graphql.FieldConfigArgument{
					"page":       &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: service.DefaultPage},
					"limit":      &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: service.DefaultLimit},
					"sortBy":     &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: service.DefaultSortField},
					"sortOrder":  &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: service.SortAsc},
					"filterName": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: r.wrap(r.employees),
			},
			"employee": &graphql.Field{
				Type: employeeType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.wrap(r.employee),
			},
			"me": &graphql.Field{
				Type:    userType,
				Resolve: r.wrap(r.me),
			},
			"users": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(userType))),
				Args: graphql.FieldConfigArgument{
					"role": &graphql.ArgumentConfig{Type: roleEnum},
				},
				Resolve: r.wrap(r.users),
			},
		},
	})

	employeeArgs := func(withID bool) graphql.FieldConfigArgument {
		nameType := graphql.Input(graphql.String)
		args := graphql.FieldConfigArgument{}
		if withID {
			args["id"] = &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)}
		} else {
			nameType = graphql.NewNonNull(graphql.String)
		}
		args["name"] = &graphql.ArgumentConfig{Type: nameType}
		args["age"] = &graphql.ArgumentConfig{Type: graphql.Int}
		args["class"] = &graphql.ArgumentConfig{Type: graphql.String}
		args["subjects"] = &graphql.ArgumentConfig{Type: graphql.NewList(graphql.NewNonNull(graphql.String))}
		args["attendance"] = &graphql.ArgumentConfig{Type: graphql.Float}
		return args
	}

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"addEmployee": &graphql.Field{
				Type:    graphql.NewNonNull(employeeType),
				Args:    employeeArgs(false),
				Resolve: r.wrap(r.addEmployee),
			},
			"updateEmployee": &graphql.Field{
				Type:    employeeType,
				Args:    employeeArgs(true),
				Resolve: r.wrap(r.updateEmployee),
			},
			"deleteEmployee": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.wrap(r.deleteEmployee),
			},
			"login": &graphql.Field{
				Type: graphql.NewNonNull(authPayloadType),
				Args: graphql.FieldConfigArgument{
					"username": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.wrap(r.login),
			},
			"register": &graphql.Field{
				Type: graphql.NewNonNull(authPayloadType),
				Args: graphql.FieldConfigArgument{
					"username": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"email":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"name":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"role":     &graphql.ArgumentConfig{Type: roleEnum},
				},
				Resolve: r.wrap(r.register),
			},
			"assignEmployeeToUser": &graphql.Field{
				Type: userType,
				Args: graphql.FieldConfigArgument{
					"userId":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"employeeId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.wrap(r.assignEmployeeToUser),
			},
			"updateUserRole": &graphql.Field{
				Type: userType,
				Args: graphql.FieldConfigArgument{
					"userId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"role":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(roleEnum)},
				},
				Resolve: r.wrap(r.updateUserRole),
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    query,
		Mutation: mutation,
	})
}
