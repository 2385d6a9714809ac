package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql/gqlerrors"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"

	"github.com/spec-kit/staff-directory/internal/api/graph"
	apperrors "github.com/spec-kit/staff-directory/pkg/util"
)

// GraphQLHandler serves the directory schema over POST and GET.
type GraphQLHandler struct {
	executor *graph.Executor
}

// NewGraphQLHandler returns a new handler instance.
func NewGraphQLHandler(executor *graph.Executor) *GraphQLHandler {
	return &GraphQLHandler{executor: executor}
}

// Post executes a JSON {query, variables, operationName} body.
func (h *GraphQLHandler) Post(c *fiber.Ctx) error {
	var req graph.Request
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return requestError(c, "Invalid JSON body")
	}
	return h.execute(c, req)
}

// Get executes a query passed in the URL. Mutations and subscriptions are
// refused so that state never changes through a safe method.
func (h *GraphQLHandler) Get(c *fiber.Ctx) error {
	req := graph.Request{
		Query:         c.Query("query"),
		OperationName: c.Query("operationName"),
	}
	if raw := c.Query("variables"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Variables); err != nil {
			return requestError(c, "Variables are invalid JSON")
		}
	}
	if op := selectedOperation(req.Query, req.OperationName); op != "" && op != ast.OperationTypeQuery {
		derr := apperrors.ToDomainError(apperrors.NewMethodNotAllowed("Can only perform a " + op + " operation from a POST request."))
		c.Set(fiber.HeaderAllow, fiber.MethodPost)
		return c.Status(derr.HTTPStatus).JSON(fiber.Map{
			"errors": []fiber.Map{{
				"message":    derr.Message,
				"extensions": derr.Extensions(),
			}},
		})
	}
	return h.execute(c, req)
}

func (h *GraphQLHandler) execute(c *fiber.Ctx, req graph.Request) error {
	if req.Query == "" {
		return requestError(c, "Must provide query string")
	}
	result := h.executor.Execute(c.UserContext(), req)
	status := fiber.StatusOK
	if result.Data == nil && requestLevel(result.Errors) {
		status = fiber.StatusBadRequest
	}
	return c.Status(status).JSON(result)
}

// selectedOperation returns the type of the operation a request would run,
// or "" when the document does not parse or names no single operation. The
// executor reports those cases itself.
func selectedOperation(query, operationName string) string {
	doc, err := parser.Parse(parser.ParseParams{Source: query})
	if err != nil {
		return ""
	}
	var selected *ast.OperationDefinition
	for _, def := range doc.Definitions {
		op, ok := def.(*ast.OperationDefinition)
		if !ok {
			continue
		}
		if operationName == "" {
			if selected != nil {
				return ""
			}
			selected = op
			continue
		}
		if op.Name != nil && op.Name.Value == operationName {
			selected = op
		}
	}
	if selected == nil {
		return ""
	}
	return selected.Operation
}

// requestLevel reports whether errs stem from parsing or validation, which
// carry no path, rather than from a resolver.
func requestLevel(errs []gqlerrors.FormattedError) bool {
	if len(errs) == 0 {
		return false
	}
	for _, e := range errs {
		if len(e.Path) > 0 {
			return false
		}
	}
	return true
}

func requestError(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"errors": []fiber.Map{{"message": message}},
	})
}
