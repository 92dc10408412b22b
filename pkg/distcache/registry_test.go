package distcache

import (
	"reflect"
	"testing"

	"github.com/DeBrosOfficial/distcache/pkg/errors"
)

func TestRegistry(t *testing.T) {
	reg := NewRegistry()

	sessions, _ := NewAdapter("sessions", newFakeStore())
	pages, _ := NewAdapter("pages", newFakeStore())

	if err := reg.Register("sessions", sessions); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := reg.Register("pages", pages); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if err := reg.Register("sessions", pages); !errors.IsConflict(err) {
		t.Errorf("duplicate Register() error = %v, want conflict", err)
	}
	if err := reg.Register("", pages); !errors.IsValidation(err) {
		t.Errorf("Register(\"\") error = %v, want validation", err)
	}

	got, err := reg.Lookup("sessions")
	if err != nil || got != Cache(sessions) {
		t.Errorf("Lookup() = %v, %v", got, err)
	}
	if _, err := reg.Lookup("missing"); !errors.IsNotFound(err) {
		t.Errorf("Lookup(missing) error = %v, want not found", err)
	}

	if names := reg.Names(); !reflect.DeepEqual(names, []string{"pages", "sessions"}) {
		t.Errorf("Names() = %v", names)
	}
	if err := reg.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
