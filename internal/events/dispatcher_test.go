package events

import (
	"context"
	"errors"
	"testing"
)

func TestDispatcherFanOut(t *testing.T) {
	d := NewInMemoryDispatcher()
	var got []string

	d.Subscribe(EventEmployeeCreated, func(_ context.Context, e Event) error {
		got = append(got, "first:"+e.SubjectID)
		return errors.New("first failed")
	})
	d.Subscribe(EventEmployeeCreated, func(_ context.Context, e Event) error {
		got = append(got, "second:"+e.SubjectID)
		return nil
	})
	d.Subscribe(EventEmployeeDeleted, func(_ context.Context, e Event) error {
		got = append(got, "deleted")
		return nil
	})

	err := d.Publish(context.Background(), NewEvent(EventEmployeeCreated, "emp-1", "admin-1", nil))
	if err == nil {
		t.Fatal("expected handler error to be reported")
	}
	if len(got) != 2 || got[0] != "first:emp-1" || got[1] != "second:emp-1" {
		t.Fatalf("unexpected handler calls: %v", got)
	}

	if err := d.Publish(context.Background(), NewEvent(EventUserRegistered, "u", "", nil)); err != nil {
		t.Fatalf("publishing without listeners: %v", err)
	}
}

func TestNewEvent(t *testing.T) {
	e := NewEvent(EventUserRoleChanged, "u1", "a1", UserRoleChangedPayload{OldRole: "EMPLOYEE", NewRole: "ADMIN"})
	if e.ID == "" || e.Timestamp.IsZero() {
		t.Fatalf("expected id and timestamp: %+v", e)
	}
	if e.Type != EventUserRoleChanged || e.SubjectID != "u1" || e.ActorID != "a1" {
		t.Fatalf("unexpected event: %+v", e)
	}
}
