package auth

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/staff-directory/internal/domain"
	apperrors "github.com/spec-kit/staff-directory/pkg/util"
)

func TestPasswordRoundTrip(t *testing.T) {
	secrets := []string{"secret1", "admin123", "p@ss w0rd", ""}
	for _, s := range secrets {
		hash, err := HashPassword(s, bcrypt.MinCost)
		if err != nil {
			t.Fatalf("HashPassword(%q): %v", s, err)
		}
		if hash == s {
			t.Fatalf("hash must differ from plaintext")
		}
		if !VerifyPassword(hash, s) {
			t.Fatalf("VerifyPassword(%q) = false", s)
		}
		if VerifyPassword(hash, s+"x") {
			t.Fatalf("VerifyPassword accepted a different secret for %q", s)
		}
	}
	if VerifyPassword("not-a-bcrypt-hash", "secret1") {
		t.Fatal("malformed hash must not verify")
	}
}

func TestHashPasswordSalts(t *testing.T) {
	a, err := HashPassword("secret1", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	b, err := HashPassword("secret1", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if a == b {
		t.Fatal("expected distinct salted digests")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 0)
	token, exp, err := tm.GenerateToken("user-42")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if d := time.Until(exp); d < 7*24*time.Hour-time.Minute || d > 7*24*time.Hour {
		t.Fatalf("unexpected expiry window: %s", d)
	}
	userID, err := tm.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if userID != "user-42" {
		t.Fatalf("unexpected user id %q", userID)
	}
}

func TestTokenRejections(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	valid, _, err := tm.GenerateToken("user-1")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	expired, _, err := tm.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }).GenerateToken("user-1")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	other, _, err := NewTokenManager("other-secret", time.Hour).GenerateToken("user-1")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	cases := map[string]string{
		"expired":      expired,
		"wrong secret": other,
		"unsigned":     unsigned,
		"malformed":    "not.a.jwt",
		"tampered":     valid + "x",
		"empty":        "",
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := tm.Verify(token)
			if err == nil {
				t.Fatal("expected error")
			}
			if !apperrors.HasCode(err, apperrors.CodeInvalidToken) {
				t.Fatalf("expected INVALID_TOKEN, got %v", err)
			}
		})
	}
}

func TestAccessControl(t *testing.T) {
	admin := &domain.User{ID: "a", Role: domain.RoleAdmin}
	employee := &domain.User{ID: "e", Role: domain.RoleEmployee}

	if _, err := RequireAuthenticated(nil); !apperrors.HasCode(err, apperrors.CodeUnauthenticated) {
		t.Fatalf("expected UNAUTHENTICATED, got %v", err)
	}
	if u, err := RequireAuthenticated(employee); err != nil || u != employee {
		t.Fatalf("RequireAuthenticated(employee) = %v, %v", u, err)
	}

	if _, err := RequireRole(employee, domain.RoleAdmin); !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
	if _, err := RequireRole(admin, domain.RoleAdmin); err != nil {
		t.Fatalf("RequireRole(admin): %v", err)
	}
	if _, err := RequireRole(employee); err != nil {
		t.Fatalf("empty role list must pass: %v", err)
	}
	if _, err := RequireRole(employee, domain.RoleAdmin, domain.RoleEmployee); err != nil {
		t.Fatalf("RequireRole(any): %v", err)
	}

	if _, err := RequireAdmin(nil); !apperrors.HasCode(err, apperrors.CodeUnauthenticated) {
		t.Fatalf("expected UNAUTHENTICATED for anonymous admin check, got %v", err)
	}
	if _, err := RequireAdmin(employee); !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Fatalf("expected FORBIDDEN for employee admin check, got %v", err)
	}
}

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"Bearer abc":   "abc",
		"bearer abc":   "abc",
		"Bearer  abc ": "abc",
		"Basic abc":    "",
		"abc":          "",
		"":             "",
	}
	for header, want := range cases {
		if got := BearerToken(header); got != want {
			t.Fatalf("BearerToken(%q) = %q, want %q", header, got, want)
		}
	}
}

type stubFinder struct {
	users map[string]*domain.User
	err   error
}

func (s stubFinder) FindByID(_ context.Context, id string) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.users[id], nil
}

func TestResolveUserIsSoft(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	alice := &domain.User{ID: "u1", Username: "alice", Role: domain.RoleEmployee}
	m := NewAuthMiddleware(tm, stubFinder{users: map[string]*domain.User{"u1": alice}}, nil)

	token, _, _ := tm.GenerateToken("u1")
	ghost, _, _ := tm.GenerateToken("u2")

	if user, ok := m.ResolveUser(context.Background(), token); !ok || user.ID != "u1" {
		t.Fatalf("expected alice, got %v %v", user, ok)
	}
	if _, ok := m.ResolveUser(context.Background(), ghost); ok {
		t.Fatal("deleted user must resolve to none")
	}
	if _, ok := m.ResolveUser(context.Background(), "garbage"); ok {
		t.Fatal("bad token must resolve to none")
	}
	if _, ok := m.ResolveUser(context.Background(), ""); ok {
		t.Fatal("missing token must resolve to none")
	}

	failing := NewAuthMiddleware(tm, stubFinder{err: errors.New("db down")}, nil)
	if _, ok := failing.ResolveUser(context.Background(), token); ok {
		t.Fatal("lookup failure must resolve to none")
	}
}

func TestMiddlewareAttachesUser(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	alice := &domain.User{ID: "u1", Username: "alice", Role: domain.RoleEmployee}
	m := NewAuthMiddleware(tm, stubFinder{users: map[string]*domain.User{"u1": alice}}, nil)

	app := fiber.New()
	app.Use(m.Handle)
	app.Get("/whoami", func(c *fiber.Ctx) error {
		user, ok := UserFromContext(c.UserContext())
		if !ok {
			return c.SendString("anonymous")
		}
		if local, ok := PrincipalFromContext(c); !ok || local.ID != user.ID {
			return c.SendString("mismatch")
		}
		return c.SendString(user.Username)
	})

	token, _, _ := tm.GenerateToken("u1")
	cases := map[string]string{
		"Bearer " + token: "alice",
		"":                "anonymous",
		"Bearer nope":     "anonymous",
	}
	for header, want := range cases {
		req := httptest.NewRequest("GET", "/whoami", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != fiber.StatusOK || string(body) != want {
			t.Fatalf("header %q: got %d %q, want %q", header, resp.StatusCode, body, want)
		}
	}
}
