package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/staff-directory/internal/auth"
	"github.com/spec-kit/staff-directory/internal/cache"
	"github.com/spec-kit/staff-directory/internal/domain"
	"github.com/spec-kit/staff-directory/internal/events"
	"github.com/spec-kit/staff-directory/internal/repository"
	apperrors "github.com/spec-kit/staff-directory/pkg/util"
)

// countingEmployees wraps a repository and counts storage reads and writes.
type countingEmployees struct {
	repository.EmployeeRepository
	reads  atomic.Int64
	writes atomic.Int64
}

func (c *countingEmployees) Create(ctx context.Context, emp *domain.Employee) error {
	c.writes.Add(1)
	return c.EmployeeRepository.Create(ctx, emp)
}

func (c *countingEmployees) Update(ctx context.Context, emp *domain.Employee) error {
	c.writes.Add(1)
	return c.EmployeeRepository.Update(ctx, emp)
}

func (c *countingEmployees) Delete(ctx context.Context, id string) (bool, error) {
	c.writes.Add(1)
	return c.EmployeeRepository.Delete(ctx, id)
}

func (c *countingEmployees) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	c.reads.Add(1)
	return c.EmployeeRepository.GetByID(ctx, id)
}

func (c *countingEmployees) List(ctx context.Context, f repository.EmployeeFilter) ([]domain.Employee, error) {
	c.reads.Add(1)
	return c.EmployeeRepository.List(ctx, f)
}

func (c *countingEmployees) Count(ctx context.Context, f repository.EmployeeFilter) (int, error) {
	c.reads.Add(1)
	return c.EmployeeRepository.Count(ctx, f)
}

type clock struct{ t time.Time }

func (c *clock) Now() time.Time          { return c.t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type fixture struct {
	store      *repository.MemoryStore
	employees  *countingEmployees
	cache      *cache.Memory
	clock      *clock
	dispatcher events.Dispatcher
	published  []events.Event
	directory  *DirectoryService
	auth       *AuthService
	admin      *domain.User
	staff      *domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:      repository.NewMemoryStore(),
		clock:      &clock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)},
		dispatcher: events.NewInMemoryDispatcher(),
	}
	f.employees = &countingEmployees{EmployeeRepository: f.store.Employees()}
	f.cache = cache.NewMemory(cache.DefaultTTL).WithClock(f.clock.Now)

	record := func(_ context.Context, e events.Event) error {
		f.published = append(f.published, e)
		return nil
	}
	for _, et := range []events.EventType{
		events.EventEmployeeCreated, events.EventEmployeeUpdated, events.EventEmployeeDeleted,
		events.EventUserRegistered, events.EventUserRoleChanged, events.EventUserEmployeeLinked,
	} {
		f.dispatcher.Subscribe(et, record)
	}

	f.directory = NewDirectoryService(DirectoryDependencies{
		EmployeeRepo: f.employees,
		Cache:        f.cache,
		Dispatcher:   f.dispatcher,
	})
	f.auth = NewAuthService(AuthDependencies{
		UserRepo:     f.store.Users(),
		EmployeeRepo: f.store.Employees(),
		Tokens:       auth.NewTokenManager("test-secret", auth.DefaultTokenTTL),
		BcryptCost:   bcrypt.MinCost,
		Dispatcher:   f.dispatcher,
	})

	f.admin = f.createUser(t, "admin", "admin123", domain.RoleAdmin)
	f.staff = f.createUser(t, "john", "employee123", domain.RoleEmployee)
	f.published = nil
	return f
}

func (f *fixture) createUser(t *testing.T, username, password string, role domain.Role) *domain.User {
	t.Helper()
	u, err := f.auth.Credentials().Create(context.Background(), NewUser{
		Username: username,
		Password: password,
		Email:    username + "@example.com",
		Name:     username,
		Role:     role,
	})
	if err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

func (f *fixture) addEmployee(t *testing.T, fields domain.EmployeeFields) *domain.Employee {
	t.Helper()
	emp, err := f.directory.AddEmployee(context.Background(), f.admin, fields)
	if err != nil {
		t.Fatalf("AddEmployee: %v", err)
	}
	return emp
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	if !apperrors.HasCode(err, code) {
		t.Fatalf("expected %s error, got %v", code, err)
	}
}

func strPtr(v string) *string            { return &v }
func intPtr(v int) *int                  { return &v }
func floatPtr(v float64) *float64        { return &v }
func rolePtr(r domain.Role) *domain.Role { return &r }
