package cache

import (
	"encoding/json"
	"testing"

	"github.com/gsaugg/compare/internal/config"
)

func TestSaveAndLoadRoundtrip(t *testing.T) {
	t.Parallel()

	d := NewDir(t.TempDir(), nil)
	store := config.Store{ID: "s1", Name: "Store One", URL: "https://one.example", Platform: "shopify"}
	products := []json.RawMessage{
		json.RawMessage(`{"id":1,"title":"A"}`),
		json.RawMessage(`{"id":2,"title":"B"}`),
	}

	if err := d.Save(store, products); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := d.Load(store)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 payloads, got %d", len(loaded))
	}
	if string(loaded[0]) != `{"id":1,"title":"A"}` {
		t.Fatalf("payload altered in roundtrip: %s", loaded[0])
	}
}

func TestLoadMissingSnapshot(t *testing.T) {
	t.Parallel()

	d := NewDir(t.TempDir(), nil)
	if _, err := d.Load(config.Store{ID: "absent"}); err == nil {
		t.Fatalf("expected error for missing snapshot")
	}
}

func TestSanitizeName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in, want string
	}{
		{"store-one", "store-one"},
		{"Store One!", "store-one-"},
		{"../escape", "---escape"},
		{"", "store"},
	}
	for _, tc := range cases {
		if got := sanitizeName(tc.in); got != tc.want {
			t.Fatalf("sanitizeName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
