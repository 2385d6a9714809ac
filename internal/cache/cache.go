// Package cache holds the result cache placed in front of directory reads.
//
// Values are opaque byte payloads so that a hit returns exactly what was
// stored. Backends never report errors to callers: a faulty backend
// behaves like an empty cache.
package cache

import (
	"context"
	"fmt"
	"time"
)

// DefaultTTL is how long a cached result stays valid.
const DefaultTTL = time.Minute

// Store is a key-value cache with absolute expiry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
	Invalidate(ctx context.Context, key string)
	InvalidateAll(ctx context.Context)
}

// ListKey fingerprints a listing query.
func ListKey(page, limit int, sortBy, sortOrder, filterName string) string {
	return fmt.Sprintf("%d_%d_%s_%s_%s", page, limit, sortBy, sortOrder, filterName)
}

// EmployeeKey fingerprints a single-employee lookup.
func EmployeeKey(id string) string {
	return "employee_" + id
}
