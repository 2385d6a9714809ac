package service

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/staff-directory/internal/events"
)

func TestAuditServiceLogsEvents(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher()
	NewAuditService(dispatcher, zap.New(core)).RegisterHandlers()
	ctx := context.Background()

	_ = dispatcher.Publish(ctx, events.NewEvent(events.EventEmployeeCreated, "emp-1", "admin-1",
		events.EmployeeChangedPayload{Name: "Bob", Fields: []string{"name", "age"}}))
	_ = dispatcher.Publish(ctx, events.NewEvent(events.EventUserRoleChanged, "user-1", "admin-1",
		events.UserRoleChangedPayload{OldRole: "EMPLOYEE", NewRole: "ADMIN"}))
	_ = dispatcher.Publish(ctx, events.NewEvent(events.EventUserRegistered, "user-2", "",
		events.UserRegisteredPayload{Username: "alice", Role: "EMPLOYEE"}))

	entries := logs.All()
	if len(entries) != 3 {
		t.Fatalf("expected 3 audit lines, got %d", len(entries))
	}

	created := entries[0].ContextMap()
	if entries[0].Message != "employee_created" || created["employee_id"] != "emp-1" || created["name"] != "Bob" {
		t.Fatalf("unexpected employee audit line: %s %v", entries[0].Message, created)
	}
	if entries[0].LoggerName != "audit" {
		t.Fatalf("logger name = %q", entries[0].LoggerName)
	}

	role := entries[1].ContextMap()
	if role["old_role"] != "EMPLOYEE" || role["new_role"] != "ADMIN" || role["actor_id"] != "admin-1" {
		t.Fatalf("unexpected role audit line: %v", role)
	}

	if _, ok := entries[2].ContextMap()["actor_id"]; ok {
		t.Fatal("self-registration should carry no actor")
	}
}
