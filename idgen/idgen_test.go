package idgen

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestUUIDv7(t *testing.T) {
	gen := UUIDv7()
	a := gen()
	b := gen()
	if a == b {
		t.Fatal("two generated IDs are equal")
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Fatalf("not a valid UUID: %q", a)
	}
}

func TestPrefixed(t *testing.T) {
	gen := Prefixed("evt_", UUIDv7())
	id := gen()
	if !strings.HasPrefix(id, "evt_") {
		t.Fatalf("missing prefix: %q", id)
	}
	if _, err := uuid.Parse(strings.TrimPrefix(id, "evt_")); err != nil {
		t.Fatalf("suffix not a UUID: %q", id)
	}
}

func TestNew(t *testing.T) {
	if New() == "" {
		t.Fatal("empty ID from default generator")
	}
}
