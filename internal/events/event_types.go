package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventEmployeeCreated    EventType = "employee_created"
	EventEmployeeUpdated    EventType = "employee_updated"
	EventEmployeeDeleted    EventType = "employee_deleted"
	EventUserRegistered     EventType = "user_registered"
	EventUserRoleChanged    EventType = "user_role_changed"
	EventUserEmployeeLinked EventType = "user_employee_linked"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	ActorID   string      `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType EventType, subjectID, actorID string, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// EmployeeChangedPayload lists the fields touched by a create or update.
type EmployeeChangedPayload struct {
	Name   string   `json:"name"`
	Fields []string `json:"fields,omitempty"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// UserRoleChangedPayload payload.
type UserRoleChangedPayload struct {
	OldRole string `json:"old_role"`
	NewRole string `json:"new_role"`
}

// UserEmployeeLinkedPayload payload.
type UserEmployeeLinkedPayload struct {
	EmployeeID string `json:"employee_id"`
}
