package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/spec-kit/staff-directory/internal/auth"
	"github.com/spec-kit/staff-directory/internal/cache"
	"github.com/spec-kit/staff-directory/internal/domain"
	"github.com/spec-kit/staff-directory/internal/events"
	"github.com/spec-kit/staff-directory/internal/observability"
	"github.com/spec-kit/staff-directory/internal/repository"
	apperrors "github.com/spec-kit/staff-directory/pkg/util"
)

// DirectoryService answers employee reads through the result cache and
// applies admin-gated employee writes.
type DirectoryService struct {
	employees  repository.EmployeeRepository
	cache      cache.Store
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	validate   *validator.Validate
}

// DirectoryDependencies bundles collaborators for the directory service.
type DirectoryDependencies struct {
	EmployeeRepo repository.EmployeeRepository
	Cache        cache.Store
	Dispatcher   events.Dispatcher
	Metrics      *observability.Metrics
	Logger       *zap.Logger
}

// NewDirectoryService constructs the service.
func NewDirectoryService(deps DirectoryDependencies) *DirectoryService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	store := deps.Cache
	if store == nil {
		store = cache.NewMemory(cache.DefaultTTL)
	}
	return &DirectoryService{
		employees:  deps.EmployeeRepo,
		cache:      store,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		validate:   newValidator(),
	}
}

// List returns one page of employees. A cached page is returned as stored,
// counts included, until it expires or a write flushes the cache.
func (s *DirectoryService) List(ctx context.Context, params ListParams) (*domain.EmployeePage, error) {
	q := normalizeListParams(params)
	key := q.cacheKey()

	var page domain.EmployeePage
	if s.cached(ctx, key, &page) {
		return &page, nil
	}

	filter := q.repoFilter()
	total, err := s.employees.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	items, err := s.employees.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	page = domain.EmployeePage{
		Employees: items,
		PageInfo:  NewPageInfo(total, q.page, q.limit),
	}
	s.store(ctx, key, page)
	return &page, nil
}

// GetByID returns nil when the employee does not exist.
func (s *DirectoryService) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	key := cache.EmployeeKey(id)

	var emp domain.Employee
	if s.cached(ctx, key, &emp) {
		return &emp, nil
	}

	found, err := orNil(s.employees.GetByID(ctx, id))
	if err != nil || found == nil {
		return nil, err
	}
	s.store(ctx, key, found)
	return found, nil
}

// AddEmployee creates an employee. Admin only.
func (s *DirectoryService) AddEmployee(ctx context.Context, caller *domain.User, fields domain.EmployeeFields) (*domain.Employee, error) {
	if _, err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}

	in := createEmployeeInput{
		Age:        fields.Age,
		Class:      fields.Class,
		Subjects:   fields.Subjects,
		Attendance: fields.Attendance,
	}
	if fields.Name != nil {
		in.Name = strings.TrimSpace(*fields.Name)
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	emp := &domain.Employee{
		Name:       in.Name,
		Age:        in.Age,
		Class:      in.Class,
		Subjects:   in.Subjects,
		Attendance: in.Attendance,
	}
	if err := s.employees.Create(ctx, emp); err != nil {
		return nil, err
	}

	s.cache.InvalidateAll(ctx)
	s.publish(ctx, events.NewEvent(events.EventEmployeeCreated, emp.ID, caller.ID,
		events.EmployeeChangedPayload{Name: emp.Name, Fields: changedFields(fields)}))
	return emp, nil
}

// UpdateEmployee applies a partial update. Admin only.
func (s *DirectoryService) UpdateEmployee(ctx context.Context, caller *domain.User, id string, fields domain.EmployeeFields) (*domain.Employee, error) {
	if _, err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}

	in := updateEmployeeInput{
		Age:        fields.Age,
		Class:      fields.Class,
		Subjects:   fields.Subjects,
		Attendance: fields.Attendance,
	}
	if fields.Name != nil {
		name := strings.TrimSpace(*fields.Name)
		in.Name = &name
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	emp, err := orNil(s.employees.GetByID(ctx, id))
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, errEmployeeNotFound(id)
	}

	if in.Name != nil {
		emp.Name = *in.Name
	}
	if in.Age != nil {
		emp.Age = in.Age
	}
	if in.Class != nil {
		emp.Class = in.Class
	}
	if in.Subjects != nil {
		emp.Subjects = in.Subjects
	}
	if in.Attendance != nil {
		emp.Attendance = in.Attendance
	}

	if err := s.employees.Update(ctx, emp); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errEmployeeNotFound(id)
		}
		return nil, err
	}

	s.cache.InvalidateAll(ctx)
	s.publish(ctx, events.NewEvent(events.EventEmployeeUpdated, emp.ID, caller.ID,
		events.EmployeeChangedPayload{Name: emp.Name, Fields: changedFields(fields)}))
	return emp, nil
}

// DeleteEmployee removes an employee. Admin only.
func (s *DirectoryService) DeleteEmployee(ctx context.Context, caller *domain.User, id string) (bool, error) {
	if _, err := auth.RequireAdmin(caller); err != nil {
		return false, err
	}

	removed, err := s.employees.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if !removed {
		return false, errEmployeeNotFound(id)
	}

	s.cache.InvalidateAll(ctx)
	s.publish(ctx, events.NewEvent(events.EventEmployeeDeleted, id, caller.ID, nil))
	return true, nil
}

// cached decodes a hit into dest. Undecodable entries count as misses.
func (s *DirectoryService) cached(ctx context.Context, key string, dest any) bool {
	data, ok := s.cache.Get(ctx, key)
	if ok {
		if err := json.Unmarshal(data, dest); err != nil {
			s.logger.Warn("discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
			s.cache.Invalidate(ctx, key)
			ok = false
		}
	}
	s.metrics.RecordCacheLookup(ok)
	return ok
}

func (s *DirectoryService) store(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	s.cache.Set(ctx, key, data)
}

func (s *DirectoryService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event", string(event.Type)), zap.Error(err))
	}
}

func errEmployeeNotFound(id string) error {
	return apperrors.NewNotFound("Employee", map[string]any{"id": id})
}

func changedFields(f domain.EmployeeFields) []string {
	var out []string
	if f.Name != nil {
		out = append(out, "name")
	}
	if f.Age != nil {
		out = append(out, "age")
	}
	if f.Class != nil {
		out = append(out, "class")
	}
	if f.Subjects != nil {
		out = append(out, "subjects")
	}
	if f.Attendance != nil {
		out = append(out, "attendance")
	}
	return out
}
