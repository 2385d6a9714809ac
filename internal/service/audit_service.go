package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/staff-directory/internal/events"
)

// AuditService writes a log line for every directory and account change.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger.Named("audit"),
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventEmployeeCreated, a.handleEmployeeChange)
	a.dispatcher.Subscribe(events.EventEmployeeUpdated, a.handleEmployeeChange)
	a.dispatcher.Subscribe(events.EventEmployeeDeleted, a.handleEmployeeChange)
	a.dispatcher.Subscribe(events.EventUserRegistered, a.handleUserRegistered)
	a.dispatcher.Subscribe(events.EventUserRoleChanged, a.handleUserRoleChanged)
	a.dispatcher.Subscribe(events.EventUserEmployeeLinked, a.handleUserEmployeeLinked)
}

func (a *AuditService) handleEmployeeChange(_ context.Context, event events.Event) error {
	fields := a.baseFields(event, "employee_id")
	if p, ok := event.Payload.(events.EmployeeChangedPayload); ok {
		fields = append(fields, zap.String("name", p.Name), zap.Strings("fields", p.Fields))
	}
	a.logger.Info(string(event.Type), fields...)
	return nil
}

func (a *AuditService) handleUserRegistered(_ context.Context, event events.Event) error {
	fields := a.baseFields(event, "user_id")
	if p, ok := event.Payload.(events.UserRegisteredPayload); ok {
		fields = append(fields, zap.String("username", p.Username), zap.String("role", p.Role))
	}
	a.logger.Info(string(event.Type), fields...)
	return nil
}

func (a *AuditService) handleUserRoleChanged(_ context.Context, event events.Event) error {
	fields := a.baseFields(event, "user_id")
	if p, ok := event.Payload.(events.UserRoleChangedPayload); ok {
		fields = append(fields, zap.String("old_role", p.OldRole), zap.String("new_role", p.NewRole))
	}
	a.logger.Info(string(event.Type), fields...)
	return nil
}

func (a *AuditService) handleUserEmployeeLinked(_ context.Context, event events.Event) error {
	fields := a.baseFields(event, "user_id")
	if p, ok := event.Payload.(events.UserEmployeeLinkedPayload); ok {
		fields = append(fields, zap.String("employee_id", p.EmployeeID))
	}
	a.logger.Info(string(event.Type), fields...)
	return nil
}

func (a *AuditService) baseFields(event events.Event, subjectKey string) []zap.Field {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String(subjectKey, event.SubjectID),
		zap.Time("at", event.Timestamp),
	}
	if event.ActorID != "" {
		fields = append(fields, zap.String("actor_id", event.ActorID))
	}
	return fields
}
