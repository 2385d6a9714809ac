package repository

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/staff-directory/internal/domain"
)

// MemoryStore keeps users and employees in process. It mirrors the Postgres
// repositories, including ON DELETE SET NULL on user employee links, and is
// used when no database is configured.
type MemoryStore struct {
	mu        sync.RWMutex
	users     map[string]domain.User
	employees map[string]domain.Employee
	now       func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     make(map[string]domain.User),
		employees: make(map[string]domain.Employee),
		now:       time.Now,
	}
}

// Users returns the user repository view of the store.
func (s *MemoryStore) Users() UserRepository { return memoryUsers{s} }

// Employees returns the employee repository view of the store.
func (s *MemoryStore) Employees() EmployeeRepository { return memoryEmployees{s} }

type memoryUsers struct{ s *MemoryStore }

func (r memoryUsers) Create(_ context.Context, user *domain.User) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return ErrDuplicate
		}
	}
	now := s.now()
	user.ID = uuid.NewString()
	user.CreatedAt, user.UpdatedAt = now, now
	s.users[user.ID] = copyUser(*user)
	return nil
}

func (r memoryUsers) Update(_ context.Context, user *domain.User) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	for id, existing := range s.users {
		if id != user.ID && (existing.Username == user.Username || existing.Email == user.Email) {
			return ErrDuplicate
		}
	}
	user.CreatedAt = current.CreatedAt
	user.UpdatedAt = s.now()
	s.users[user.ID] = copyUser(*user)
	return nil
}

func (r memoryUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := copyUser(user)
	return &cp, nil
}

func (r memoryUsers) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, user := range r.s.users {
		if user.Username == username {
			cp := copyUser(user)
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r memoryUsers) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, user := range r.s.users {
		if user.Username == username || user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r memoryUsers) List(_ context.Context, role *domain.Role) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := []domain.User{}
	for _, user := range r.s.users {
		if role != nil && user.Role != *role {
			continue
		}
		result = append(result, copyUser(user))
	}
	slices.SortFunc(result, func(a, b domain.User) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return result, nil
}

type memoryEmployees struct{ s *MemoryStore }

func (r memoryEmployees) Create(_ context.Context, emp *domain.Employee) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	emp.ID = uuid.NewString()
	emp.Subjects = subjectsOrEmpty(emp.Subjects)
	emp.CreatedAt, emp.UpdatedAt = now, now
	s.employees[emp.ID] = copyEmployee(*emp)
	return nil
}

func (r memoryEmployees) Update(_ context.Context, emp *domain.Employee) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.employees[emp.ID]
	if !ok {
		return ErrNotFound
	}
	emp.Subjects = subjectsOrEmpty(emp.Subjects)
	emp.CreatedAt = current.CreatedAt
	emp.UpdatedAt = s.now()
	s.employees[emp.ID] = copyEmployee(*emp)
	return nil
}

func (r memoryEmployees) Delete(_ context.Context, id string) (bool, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.employees[id]; !ok {
		return false, nil
	}
	delete(s.employees, id)
	for uid, user := range s.users {
		if user.EmployeeID != nil && *user.EmployeeID == id {
			user.EmployeeID = nil
			s.users[uid] = user
		}
	}
	return true, nil
}

func (r memoryEmployees) GetByID(_ context.Context, id string) (*domain.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	emp, ok := r.s.employees[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := copyEmployee(emp)
	return &cp, nil
}

func (r memoryEmployees) List(_ context.Context, filter EmployeeFilter) ([]domain.Employee, error) {
	matched := r.matching(filter)

	field := filter.SortBy
	if !IsSortField(field) {
		field = "name"
	}
	slices.SortFunc(matched, func(a, b domain.Employee) int {
		c := compareEmployees(a, b, field)
		if c == 0 {
			c = strings.Compare(a.ID, b.ID)
		}
		if filter.Descending {
			return -c
		}
		return c
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	start := min(max(filter.Offset, 0), len(matched))
	end := min(start+limit, len(matched))
	return matched[start:end], nil
}

func (r memoryEmployees) Count(_ context.Context, filter EmployeeFilter) (int, error) {
	return len(r.matching(filter)), nil
}

func (r memoryEmployees) matching(filter EmployeeFilter) []domain.Employee {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	needle := strings.ToLower(filter.NameContains)
	result := []domain.Employee{}
	for _, emp := range r.s.employees {
		if needle != "" && !strings.Contains(strings.ToLower(emp.Name), needle) {
			continue
		}
		result = append(result, copyEmployee(emp))
	}
	return result
}

// compareEmployees orders by field with NULLs last, as Postgres does for ASC.
// Text compares byte-wise, like the "C" collation the Postgres store sorts with.
func compareEmployees(a, b domain.Employee, field string) int {
	switch field {
	case "age":
		return compareNullable(a.Age, b.Age)
	case "class":
		return compareNullable(a.Class, b.Class)
	case "attendance":
		return compareNullable(a.Attendance, b.Attendance)
	case "createdAt":
		return a.CreatedAt.Compare(b.CreatedAt)
	case "updatedAt":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	default:
		return strings.Compare(a.Name, b.Name)
	}
}

func compareNullable[T cmp.Ordered](a, b *T) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return cmp.Compare(*a, *b)
	}
}

func copyUser(u domain.User) domain.User {
	if u.EmployeeID != nil {
		id := *u.EmployeeID
		u.EmployeeID = &id
	}
	return u
}

func copyEmployee(e domain.Employee) domain.Employee {
	if e.Age != nil {
		v := *e.Age
		e.Age = &v
	}
	if e.Class != nil {
		v := *e.Class
		e.Class = &v
	}
	if e.Attendance != nil {
		v := *e.Attendance
		e.Attendance = &v
	}
	e.Subjects = slices.Clone(e.Subjects)
	return e
}
