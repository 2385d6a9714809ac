package observability

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/staff-directory/internal/config"
	apperrors "github.com/spec-kit/staff-directory/pkg/util"
)

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "chatty"})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if logger.Core().Enabled(zap.DebugLevel) {
		t.Fatal("unknown level must fall back to info")
	}
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordError("/", "GET", "X")
	m.RecordOperation("q", time.Millisecond)
	m.RecordCacheLookup(true)
}

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()
	m.RecordCacheLookup(true)
	m.RecordCacheLookup(false)
	m.RecordCacheLookup(false)
	m.RecordError("/graphql", "POST", apperrors.CodeRateLimited)

	if got := testutil.ToFloat64(m.cacheLookups.WithLabelValues("hit")); got != 1 {
		t.Fatalf("hits = %v", got)
	}
	if got := testutil.ToFloat64(m.cacheLookups.WithLabelValues("miss")); got != 2 {
		t.Fatalf("misses = %v", got)
	}
	if got := testutil.ToFloat64(m.errors.WithLabelValues("POST", "/graphql", apperrors.CodeRateLimited)); got != 1 {
		t.Fatalf("errors = %v", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "directory_cache_lookups_total") {
		t.Fatalf("expected cache metric in exposition:\n%s", rec.Body.String())
	}
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := NewMetrics()

	app := fiber.New()
	app.Use(RequestLogger(zap.New(core), m))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/missing", func(c *fiber.Ctx) error { return apperrors.NewNotFound("Employee", nil) })

	for _, path := range []string{"/ok", "/missing"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil), -1)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}

	entries := logs.FilterMessage("request completed").All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 log lines, got %d", len(entries))
	}
	if status := entries[1].ContextMap()["status"]; status != int64(404) {
		t.Fatalf("expected 404 logged for domain error, got %v", status)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "/ok", "200")); got != 1 {
		t.Fatalf("requests{/ok} = %v", got)
	}
}
