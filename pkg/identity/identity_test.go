package identity

import (
	"path/filepath"
	"testing"
)

func TestEventIDDeterministic(t *testing.T) {
	a := EventID("task-123")
	b := EventID("task-123")
	if a != b {
		t.Errorf("EventID is not deterministic: %q vs %q", a, b)
	}
	if a == EventID("task-124") {
		t.Errorf("distinct task ids produced the same event id %q", a)
	}
}

func TestEventIDCharset(t *testing.T) {
	id := EventID("Tarea: Revisión de Guión #42 (2026)")
	if len(id) != EventIDLength {
		t.Fatalf("expected %d characters, got %d (%q)", EventIDLength, len(id), id)
	}
	for _, r := range id {
		if !((r >= 'a' && r <= 'v') || (r >= '0' && r <= '9')) {
			t.Errorf("event id %q contains %q, outside the base32hex alphabet", id, r)
		}
	}
}

func TestLegacyEventID(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"abc-123", "abc123"},
		{"Tarea_42!", "Tarea42"},
		{"", ""},
		{"aaaaaaaaaabbbbbbbbbbcccc", "aaaaaaaaaabbbbbbbbbb"}, // truncated at 20
	}
	for _, c := range cases {
		if got := LegacyEventID(c.in); got != c.want {
			t.Errorf("LegacyEventID(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

// Two ids differing only in stripped characters collide under the
// legacy policy but not under the hash derivation.
func TestLegacyCollisionResolvedByHash(t *testing.T) {
	a, b := "task-1", "task1"
	if LegacyEventID(a) != LegacyEventID(b) {
		t.Fatalf("expected legacy collision between %q and %q", a, b)
	}
	if EventID(a) == EventID(b) {
		t.Errorf("hash derivation collided for %q and %q", a, b)
	}
}

func TestIDMapRoundTrip(t *testing.T) {
	dir := t.TempDir()

	m, err := NewIDMap(dir)
	if err != nil {
		t.Fatalf("NewIDMap failed: %v", err)
	}
	m.Set("task-1", "abc123")
	if err := m.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded, err := NewIDMap(dir)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got := reloaded.Get("task-1"); got != "abc123" {
		t.Errorf("expected cached event id abc123, got %q", got)
	}

	reloaded.Remove("task-1")
	if got := reloaded.Get("task-1"); got != "" {
		t.Errorf("expected empty after Remove, got %q", got)
	}
	if _, err := filepath.Abs(reloaded.Path); err != nil {
		t.Errorf("unexpected path error: %v", err)
	}
}
