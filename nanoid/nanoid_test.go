package nanoid

import (
	"strings"
	"testing"
)

func TestLower(t *testing.T) {
	id := Lower(12)
	if len(id) != 12 {
		t.Errorf("Lower(12) length = %d", len(id))
	}
	if strings.ToLower(id) != id {
		t.Errorf("Lower() = %q contains uppercase", id)
	}
	if len(Must()) != defaultSize {
		t.Errorf("Must() length = %d, want %d", len(Must()), defaultSize)
	}
}

func TestPrefixedLower(t *testing.T) {
	id := PrefixedLower("sub", 8)
	if !strings.HasPrefix(id, "sub_") || len(id) != 12 {
		t.Errorf("PrefixedLower() = %q", id)
	}
	if PrefixedLower("sub") == PrefixedLower("sub") {
		t.Error("PrefixedLower() should not repeat")
	}
}
