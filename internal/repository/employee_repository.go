package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/staff-directory/internal/domain"
)

// Sortable employee fields mapped to their ORDER BY expressions. Text
// columns use the "C" collation so ordering is byte-wise on every server
// locale, matching the in-memory store.
var sortColumns = map[string]string{
	"name":       `name COLLATE "C"`,
	"age":        "age",
	"class":      `class COLLATE "C"`,
	"attendance": "attendance",
	"createdAt":  "created_at",
	"updatedAt":  "updated_at",
}

// IsSortField reports whether field may appear in an ORDER BY.
func IsSortField(field string) bool {
	_, ok := sortColumns[field]
	return ok
}

// EmployeeFilter captures listing parameters.
type EmployeeFilter struct {
	NameContains string
	SortBy       string
	Descending   bool
	Limit        int
	Offset       int
}

// EmployeeRepository encapsulates employee persistence.
type EmployeeRepository interface {
	Create(ctx context.Context, emp *domain.Employee) error
	Update(ctx context.Context, emp *domain.Employee) error
	Delete(ctx context.Context, id string) (bool, error)
	GetByID(ctx context.Context, id string) (*domain.Employee, error)
	List(ctx context.Context, filter EmployeeFilter) ([]domain.Employee, error)
	Count(ctx context.Context, filter EmployeeFilter) (int, error)
}

type employeeRepository struct {
	pool *pgxpool.Pool
}

// NewEmployeeRepository instantiates repository.
func NewEmployeeRepository(pool *pgxpool.Pool) EmployeeRepository {
	return &employeeRepository{pool: pool}
}

const employeeColumns = `id, name, age, class, subjects, attendance, created_at, updated_at`

func (r *employeeRepository) Create(ctx context.Context, emp *domain.Employee) error {
	const query = `
        INSERT INTO employees (id, name, age, class, subjects, attendance)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING created_at, updated_at`

	id := uuid.NewString()
	if err := r.pool.QueryRow(ctx, query,
		id,
		emp.Name,
		emp.Age,
		emp.Class,
		subjectsOrEmpty(emp.Subjects),
		emp.Attendance,
	).Scan(&emp.CreatedAt, &emp.UpdatedAt); err != nil {
		return mapPgError(err)
	}
	emp.ID = id
	return nil
}

func (r *employeeRepository) Update(ctx context.Context, emp *domain.Employee) error {
	const query = `
        UPDATE employees SET name=$1, age=$2, class=$3, subjects=$4, attendance=$5, updated_at=NOW()
        WHERE id=$6
        RETURNING created_at, updated_at`

	if !validID(emp.ID) {
		return ErrNotFound
	}
	err := r.pool.QueryRow(ctx, query,
		emp.Name,
		emp.Age,
		emp.Class,
		subjectsOrEmpty(emp.Subjects),
		emp.Attendance,
		emp.ID,
	).Scan(&emp.CreatedAt, &emp.UpdatedAt)
	return mapPgError(err)
}

func (r *employeeRepository) Delete(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM employees WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *employeeRepository) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id=$1`
	return scanEmployee(r.pool.QueryRow(ctx, query, id))
}

func employeeOrderBy(filter EmployeeFilter) string {
	column, ok := sortColumns[filter.SortBy]
	if !ok {
		column = sortColumns["name"]
	}
	direction := "ASC"
	if filter.Descending {
		direction = "DESC"
	}
	return column + " " + direction + ", id " + direction
}

func (r *employeeRepository) List(ctx context.Context, filter EmployeeFilter) ([]domain.Employee, error) {
	where, args := employeeWhere(filter)
	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := max(filter.Offset, 0)

	query := fmt.Sprintf(`SELECT %s FROM employees%s ORDER BY %s LIMIT %d OFFSET %d`,
		employeeColumns, where, employeeOrderBy(filter), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Employee{}
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *emp)
	}
	return result, rows.Err()
}

func (r *employeeRepository) Count(ctx context.Context, filter EmployeeFilter) (int, error) {
	where, args := employeeWhere(filter)
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM employees`+where, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func employeeWhere(filter EmployeeFilter) (string, []any) {
	clauses := []string{}
	args := []any{}

	if filter.NameContains != "" {
		args = append(args, filter.NameContains)
		clauses = append(clauses, fmt.Sprintf("strpos(lower(name), lower($%d)) > 0", len(args)))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanEmployee(row pgx.Row) (*domain.Employee, error) {
	var emp domain.Employee
	if err := row.Scan(
		&emp.ID,
		&emp.Name,
		&emp.Age,
		&emp.Class,
		&emp.Subjects,
		&emp.Attendance,
		&emp.CreatedAt,
		&emp.UpdatedAt,
	); err != nil {
		return nil, mapPgError(err)
	}
	if emp.Subjects == nil {
		emp.Subjects = []string{}
	}
	return &emp, nil
}

func subjectsOrEmpty(subjects []string) []string {
	if subjects == nil {
		return []string{}
	}
	return subjects
}
