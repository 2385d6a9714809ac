// Package seed loads the sample directory used for local development.
package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spec-kit/staff-directory/internal/domain"
	"github.com/spec-kit/staff-directory/internal/repository"
	"github.com/spec-kit/staff-directory/internal/service"
)

// Account is a seeded login.
type Account struct {
	Username string
	Password string
	Email    string
	Name     string
	Role     domain.Role
}

// Admin and Employee are the seeded logins. Employee is linked to the first
// seeded employee record.
var (
	Admin = Account{
		Username: "admin",
		Password: "admin123",
		Email:    "admin@graphstaff.com",
		Name:     "Admin User",
		Role:     domain.RoleAdmin,
	}
	Employee = Account{
		Username: "john",
		Password: "employee123",
		Email:    "john@graphstaff.com",
		Name:     "John Smith",
		Role:     domain.RoleEmployee,
	}
)

type sample struct {
	name       string
	age        int
	class      string
	subjects   []string
	attendance float64
}

var samples = []sample{
	{"John Smith", 35, "Senior Faculty", []string{"Mathematics", "Computer Science"}, 98.5},
	{"Sarah Johnson", 28, "Junior Faculty", []string{"English Literature", "Creative Writing"}, 95.2},
	{"Michael Chen", 42, "Department Head", []string{"Physics", "Astronomy"}, 99.1},
	{"Emily Davis", 31, "Mid-level Faculty", []string{"History", "Political Science"}, 92.8},
	{"Robert Wilson", 45, "Senior Faculty", []string{"Chemistry", "Biology"}, 97.3},
	{"Jennifer Lee", 29, "Junior Faculty", []string{"Psychology", "Sociology"}, 94.6},
	{"David Martinez", 39, "Mid-level Faculty", []string{"Economics", "Business Studies"}, 91.5},
	{"Lisa Thompson", 33, "Mid-level Faculty", []string{"Art History", "Studio Art"}, 89.9},
	{"James Wilson", 47, "Department Head", []string{"Music Theory", "Composition"}, 96.7},
	{"Patricia Rodriguez", 36, "Senior Faculty", []string{"Spanish", "French"}, 93.2},
}

// Employees returns fresh copies of the sample employee records.
func Employees() []domain.Employee {
	out := make([]domain.Employee, len(samples))
	for i, s := range samples {
		age, class, attendance := s.age, s.class, s.attendance
		out[i] = domain.Employee{
			Name:       s.name,
			Age:        &age,
			Class:      &class,
			Subjects:   append([]string(nil), s.subjects...),
			Attendance: &attendance,
		}
	}
	return out
}

// Result summarizes what Run inserted.
type Result struct {
	Employees []domain.Employee
	Admin     *domain.User
	Employee  *domain.User
}

// Run inserts the sample employees and both seeded accounts into empty
// storage.
func Run(ctx context.Context, employees repository.EmployeeRepository, credentials *service.CredentialStore, logger *zap.Logger) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	res := &Result{Employees: Employees()}
	for i := range res.Employees {
		if err := employees.Create(ctx, &res.Employees[i]); err != nil {
			return nil, fmt.Errorf("insert employee %q: %w", res.Employees[i].Name, err)
		}
	}
	logger.Info("employees inserted", zap.Int("count", len(res.Employees)))

	var err error
	res.Admin, err = credentials.Create(ctx, service.NewUser{
		Username: Admin.Username,
		Password: Admin.Password,
		Email:    Admin.Email,
		Name:     Admin.Name,
		Role:     Admin.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", Admin.Username, err)
	}

	linked := res.Employees[0].ID
	res.Employee, err = credentials.Create(ctx, service.NewUser{
		Username:   Employee.Username,
		Password:   Employee.Password,
		Email:      Employee.Email,
		Name:       Employee.Name,
		Role:       Employee.Role,
		EmployeeID: &linked,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", Employee.Username, err)
	}

	logger.Info("users created", zap.String("admin", Admin.Username), zap.String("employee", Employee.Username))
	return res, nil
}

// Reset empties both tables so Run starts from a clean slate.
func Reset(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `TRUNCATE TABLE users, employees`)
	return err
}
