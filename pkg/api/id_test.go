package api

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewUserID(t *testing.T) {
	id := NewUserID()
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("NewUserID() = %q, not a UUID: %v", id, err)
	}
}

func TestNewUserIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewUserID()
		if seen[id] {
			t.Fatalf("duplicate ID generated: %s", id)
		}
		seen[id] = true
	}
}
