package graph

import (
	"time"

	"github.com/graphql-go/graphql"

	"github.com/spec-kit/staff-directory/internal/domain"
)

var roleEnum = graphql.NewEnum(graphql.EnumConfig{
	Name: "Role",
	Values: graphql.EnumValueConfigMap{
		string(domain.RoleAdmin):    &graphql.EnumValueConfig{Value: domain.RoleAdmin},
		string(domain.RoleEmployee): &graphql.EnumValueConfig{Value: domain.RoleEmployee},
	},
})

var pageInfoType = graphql.NewObject(graphql.ObjectConfig{
	Name: "PageInfo",
	Fields: graphql.Fields{
		"hasNextPage":     pageInfoField(graphql.NewNonNull(graphql.Boolean), func(p domain.PageInfo) interface{} { return p.HasNextPage }),
		"hasPreviousPage": pageInfoField(graphql.NewNonNull(graphql.Boolean), func(p domain.PageInfo) interface{} { return p.HasPreviousPage }),
		"totalPages":      pageInfoField(graphql.NewNonNull(graphql.Int), func(p domain.PageInfo) interface{} { return p.TotalPages }),
		"totalCount":      pageInfoField(graphql.NewNonNull(graphql.Int), func(p domain.PageInfo) interface{} { return p.TotalCount }),
		"currentPage":     pageInfoField(graphql.NewNonNull(graphql.Int), func(p domain.PageInfo) interface{} { return p.CurrentPage }),
	},
})

var employeeType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Employee",
	Fields: graphql.Fields{
		"id":   employeeField(graphql.NewNonNull(graphql.ID), func(e *domain.Employee) interface{} { return e.ID }),
		"name": employeeField(graphql.NewNonNull(graphql.String), func(e *domain.Employee) interface{} { return e.Name }),
		"age": employeeField(graphql.Int, func(e *domain.Employee) interface{} {
			if e.Age == nil {
				return nil
			}
			return *e.Age
		}),
		"class": employeeField(graphql.String, func(e *domain.Employee) interface{} {
			if e.Class == nil {
				return nil
			}
			return *e.Class
		}),
		"subjects": employeeField(graphql.NewList(graphql.NewNonNull(graphql.String)), func(e *domain.Employee) interface{} {
			return e.Subjects
		}),
		"attendance": employeeField(graphql.Float, func(e *domain.Employee) interface{} {
			if e.Attendance == nil {
				return nil
			}
			return *e.Attendance
		}),
		"createdAt": employeeField(graphql.String, func(e *domain.Employee) interface{} { return timestamp(e.CreatedAt) }),
		"updatedAt": employeeField(graphql.String, func(e *domain.Employee) interface{} { return timestamp(e.UpdatedAt) }),
	},
})

var employeePageType = graphql.NewObject(graphql.ObjectConfig{
	Name: "EmployeePage",
	Fields: graphql.Fields{
		"employees": &graphql.Field{
			Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(employeeType))),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				page, ok := p.Source.(*domain.EmployeePage)
				if !ok {
					return nil, nil
				}
				out := make([]*domain.Employee, len(page.Employees))
				for i := range page.Employees {
					out[i] = &page.Employees[i]
				}
				return out, nil
			},
		},
		"pageInfo": &graphql.Field{
			Type: graphql.NewNonNull(pageInfoType),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				page, ok := p.Source.(*domain.EmployeePage)
				if !ok {
					return nil, nil
				}
				return page.PageInfo, nil
			},
		},
	},
})

// newUserType builds the User object. The employee field follows the weak
// employeeId reference through resolve.
func newUserType(employee graphql.FieldResolveFn) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"id":       userField(graphql.NewNonNull(graphql.ID), func(u *domain.User) interface{} { return u.ID }),
			"username": userField(graphql.NewNonNull(graphql.String), func(u *domain.User) interface{} { return u.Username }),
			"role":     userField(graphql.NewNonNull(roleEnum), func(u *domain.User) interface{} { return u.Role }),
			"email":    userField(graphql.NewNonNull(graphql.String), func(u *domain.User) interface{} { return u.Email }),
			"name":     userField(graphql.NewNonNull(graphql.String), func(u *domain.User) interface{} { return u.Name }),
			"employeeId": userField(graphql.ID, func(u *domain.User) interface{} {
				if u.EmployeeID == nil {
					return nil
				}
				return *u.EmployeeID
			}),
			"employee":  &graphql.Field{Type: employeeType, Resolve: employee},
			"createdAt": userField(graphql.String, func(u *domain.User) interface{} { return timestamp(u.CreatedAt) }),
			"updatedAt": userField(graphql.String, func(u *domain.User) interface{} { return timestamp(u.UpdatedAt) }),
		},
	})
}

func newAuthPayloadType(user *graphql.Object) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "AuthPayload",
		Fields: graphql.Fields{
			"token": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if payload, ok := p.Source.(*domain.AuthPayload); ok {
						return payload.Token, nil
					}
					return nil, nil
				},
			},
			"user": &graphql.Field{
				Type: graphql.NewNonNull(user),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if payload, ok := p.Source.(*domain.AuthPayload); ok && payload.User != nil {
						return payload.User, nil
					}
					return nil, nil
				},
			},
		},
	})
}

func employeeField(typ graphql.Output, get func(*domain.Employee) interface{}) *graphql.Field {
	return &graphql.Field{
		Type: typ,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			if e, ok := p.Source.(*domain.Employee); ok && e != nil {
				return get(e), nil
			}
			return nil, nil
		},
	}
}

func userField(typ graphql.Output, get func(*domain.User) interface{}) *graphql.Field {
	return &graphql.Field{
		Type: typ,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			if u, ok := p.Source.(*domain.User); ok && u != nil {
				return get(u), nil
			}
			return nil, nil
		},
	}
}

func pageInfoField(typ graphql.Output, get func(domain.PageInfo) interface{}) *graphql.Field {
	return &graphql.Field{
		Type: typ,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			if info, ok := p.Source.(domain.PageInfo); ok {
				return get(info), nil
			}
			return nil, nil
		},
	}
}

func timestamp(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
