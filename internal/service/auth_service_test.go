package service

import (
	"context"
	"testing"

	"github.com/spec-kit/staff-directory/internal/domain"
	"github.com/spec-kit/staff-directory/internal/events"
	apperrors "github.com/spec-kit/staff-directory/pkg/util"
)

func TestRegisterThenDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	payload, err := f.auth.Register(ctx, nil, RegisterRequest{
		Username: "alice",
		Password: "secret1",
		Email:    "a@x.com",
		Name:     "Alice",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if payload.Token == "" || payload.User == nil {
		t.Fatalf("expected token and user, got %+v", payload)
	}
	if payload.User.Role != domain.RoleEmployee {
		t.Fatalf("default role = %s", payload.User.Role)
	}
	if payload.User.PasswordHash == "secret1" {
		t.Fatal("password stored in plaintext")
	}

	userID, err := f.auth.TokenManager().Verify(payload.Token)
	if err != nil || userID != payload.User.ID {
		t.Fatalf("token does not resolve to the new user: %q, %v", userID, err)
	}

	_, err = f.auth.Register(ctx, nil, RegisterRequest{
		Username: "alice",
		Password: "other",
		Email:    "other@x.com",
		Name:     "Alice Again",
	})
	assertCode(t, err, apperrors.CodeConflict)

	_, err = f.auth.Register(ctx, nil, RegisterRequest{
		Username: "alice2",
		Password: "other",
		Email:    "a@x.com",
		Name:     "Alice Two",
	})
	assertCode(t, err, apperrors.CodeConflict)

	if len(f.published) != 1 || f.published[0].Type != events.EventUserRegistered {
		t.Fatalf("unexpected events: %+v", f.published)
	}
}

func TestRegisterAdminRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := RegisterRequest{Username: "root2", Password: "pw", Email: "root2@x.com", Name: "Root", Role: domain.RoleAdmin}

	_, err := f.auth.Register(ctx, nil, req)
	assertCode(t, err, apperrors.CodeForbidden)

	_, err = f.auth.Register(ctx, f.staff, req)
	assertCode(t, err, apperrors.CodeForbidden)

	payload, err := f.auth.Register(ctx, f.admin, req)
	if err != nil {
		t.Fatalf("admin registering admin: %v", err)
	}
	if payload.User.Role != domain.RoleAdmin {
		t.Fatalf("role = %s", payload.User.Role)
	}
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  RegisterRequest
	}{
		{"missing username", RegisterRequest{Password: "pw", Email: "x@x.com", Name: "X"}},
		{"missing password", RegisterRequest{Username: "x", Email: "x@x.com", Name: "X"}},
		{"bad email", RegisterRequest{Username: "x", Password: "pw", Email: "not-an-email", Name: "X"}},
		{"missing name", RegisterRequest{Username: "x", Password: "pw", Email: "x@x.com"}},
		{"unknown role", RegisterRequest{Username: "x", Password: "pw", Email: "x@x.com", Name: "X", Role: "OWNER"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.auth.Register(ctx, nil, tc.req)
			assertCode(t, err, apperrors.CodeValidationFailed)
		})
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, wrongPassword := f.auth.Login(ctx, "admin", "wrong")
	_, unknownUser := f.auth.Login(ctx, "nosuchuser", "x")

	assertCode(t, wrongPassword, apperrors.CodeUnauthenticated)
	assertCode(t, unknownUser, apperrors.CodeUnauthenticated)
	if wrongPassword.Error() != unknownUser.Error() {
		t.Fatalf("messages differ: %q vs %q", wrongPassword, unknownUser)
	}

	payload, err := f.auth.Login(ctx, "admin", "admin123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if payload.User.ID != f.admin.ID || payload.Token == "" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestMe(t *testing.T) {
	f := newFixture(t)

	_, err := f.auth.Me(context.Background(), nil)
	assertCode(t, err, apperrors.CodeUnauthenticated)

	me, err := f.auth.Me(context.Background(), f.staff)
	if err != nil || me.ID != f.staff.ID {
		t.Fatalf("Me = %+v, %v", me, err)
	}
}

func TestUsersListing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.Users(ctx, nil, nil)
	assertCode(t, err, apperrors.CodeUnauthenticated)
	_, err = f.auth.Users(ctx, f.staff, nil)
	assertCode(t, err, apperrors.CodeForbidden)

	all, err := f.auth.Users(ctx, f.admin, nil)
	if err != nil || len(all) != 2 {
		t.Fatalf("Users = %d, %v", len(all), err)
	}
	admins, err := f.auth.Users(ctx, f.admin, rolePtr(domain.RoleAdmin))
	if err != nil || len(admins) != 1 || admins[0].ID != f.admin.ID {
		t.Fatalf("admin filter = %+v, %v", admins, err)
	}
}

func TestAssignEmployeeToUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	emp := f.addEmployee(t, domain.EmployeeFields{Name: strPtr("John Doe")})
	f.published = nil

	_, err := f.auth.AssignEmployeeToUser(ctx, f.staff, f.staff.ID, emp.ID)
	assertCode(t, err, apperrors.CodeForbidden)

	_, err = f.auth.AssignEmployeeToUser(ctx, f.admin, "00000000-0000-0000-0000-000000000000", emp.ID)
	assertCode(t, err, apperrors.CodeNotFound)

	_, err = f.auth.AssignEmployeeToUser(ctx, f.admin, f.staff.ID, "00000000-0000-0000-0000-000000000000")
	assertCode(t, err, apperrors.CodeNotFound)

	user, err := f.auth.AssignEmployeeToUser(ctx, f.admin, f.staff.ID, emp.ID)
	if err != nil {
		t.Fatalf("AssignEmployeeToUser: %v", err)
	}
	if user.EmployeeID == nil || *user.EmployeeID != emp.ID {
		t.Fatalf("employee not linked: %+v", user)
	}
	if len(f.published) != 1 || f.published[0].Type != events.EventUserEmployeeLinked {
		t.Fatalf("unexpected events: %+v", f.published)
	}

	if _, err := f.directory.DeleteEmployee(ctx, f.admin, emp.ID); err != nil {
		t.Fatalf("DeleteEmployee: %v", err)
	}
	after, err := f.auth.Credentials().FindByID(ctx, f.staff.ID)
	if err != nil || after.EmployeeID != nil {
		t.Fatalf("link should be cleared when the employee is deleted: %+v, %v", after, err)
	}
}

func TestUpdateUserRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.UpdateUserRole(ctx, nil, f.staff.ID, domain.RoleAdmin)
	assertCode(t, err, apperrors.CodeUnauthenticated)

	_, err = f.auth.UpdateUserRole(ctx, f.admin, "00000000-0000-0000-0000-000000000000", domain.RoleAdmin)
	assertCode(t, err, apperrors.CodeNotFound)

	_, err = f.auth.UpdateUserRole(ctx, f.admin, f.staff.ID, domain.Role("OWNER"))
	assertCode(t, err, apperrors.CodeValidationFailed)

	user, err := f.auth.UpdateUserRole(ctx, f.admin, f.staff.ID, domain.RoleAdmin)
	if err != nil || user.Role != domain.RoleAdmin {
		t.Fatalf("UpdateUserRole = %+v, %v", user, err)
	}
	if len(f.published) != 1 {
		t.Fatalf("expected one event, got %d", len(f.published))
	}
	p, ok := f.published[0].Payload.(events.UserRoleChangedPayload)
	if !ok || p.OldRole != "EMPLOYEE" || p.NewRole != "ADMIN" {
		t.Fatalf("unexpected payload: %+v", f.published[0].Payload)
	}

	// Password stays valid across a role change.
	if _, err := f.auth.Login(ctx, "john", "employee123"); err != nil {
		t.Fatalf("Login after role change: %v", err)
	}
}

func TestCredentialStoreSecrets(t *testing.T) {
	f := newFixture(t)
	store := f.auth.Credentials()

	digest, err := store.HashSecret("s3cret")
	if err != nil {
		t.Fatalf("HashSecret: %v", err)
	}
	if !store.VerifySecret("s3cret", digest) || store.VerifySecret("other", digest) {
		t.Fatal("secret verification mismatch")
	}

	ctx := context.Background()
	updated, err := store.UpdateFields(ctx, f.staff.ID, domain.UserFields{Password: strPtr("changed")})
	if err != nil || updated == nil {
		t.Fatalf("UpdateFields: %+v, %v", updated, err)
	}
	if !store.VerifySecret("changed", updated.PasswordHash) {
		t.Fatal("new password not hashed into place")
	}

	missing, err := store.UpdateFields(ctx, "00000000-0000-0000-0000-000000000000", domain.UserFields{Role: rolePtr(domain.RoleAdmin)})
	if err != nil || missing != nil {
		t.Fatalf("unknown id should yield nil, got %+v, %v", missing, err)
	}

	if u, err := store.FindByUsername(ctx, "ghost"); err != nil || u != nil {
		t.Fatalf("FindByUsername(ghost) = %+v, %v", u, err)
	}
}
