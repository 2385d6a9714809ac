package ids

import "testing"

func TestNewIsMonotonic(t *testing.T) {
	prev := New()
	for i := 0; i < 100; i++ {
		next := New()
		if len(next) != 26 {
			t.Fatalf("unexpected ulid length %d", len(next))
		}
		if next <= prev {
			t.Fatalf("ids not increasing: %s then %s", prev, next)
		}
		prev = next
	}
}
