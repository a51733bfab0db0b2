package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gsaugg/compare/internal/domain"
)

func fixNow(t *testing.T, unix int64) {
	t.Helper()
	orig := timeNow
	timeNow = func() time.Time { return time.Unix(unix, 0).UTC() }
	t.Cleanup(func() { timeNow = orig })
}

func fptr(v float64) *float64 { return &v }

func TestRecordObservationFirstAndUnchanged(t *testing.T) {
	fixNow(t, 1000)

	l := NewLedger()
	if !l.RecordObservation("s1|1|1", 49.99, nil, true) {
		t.Fatalf("first observation must append")
	}
	if l.RecordObservation("s1|1|1", 49.99, nil, true) {
		t.Fatalf("identical observation must not append")
	}
	// Sub-cent movement is not a change.
	if l.RecordObservation("s1|1|1", 49.994, nil, true) {
		t.Fatalf("sub-cent movement must not append")
	}
	if len(l.History["s1|1|1"]) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(l.History["s1|1|1"]))
	}
}

func TestRecordObservationPriceChange(t *testing.T) {
	fixNow(t, 1000)

	l := NewLedger()
	l.RecordObservation("s1|1|1", 50, nil, true)
	if !l.RecordObservation("s1|1|1", 45, nil, true) {
		t.Fatalf("price drop must append")
	}

	entries := l.History["s1|1|1"]
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[1].Price != 45 {
		t.Fatalf("unexpected price: %v", entries[1].Price)
	}
	if entries[1].Unix != 1000 {
		t.Fatalf("unexpected timestamp: %d", entries[1].Unix)
	}
}

func TestRecordObservationRegularPriceTransitions(t *testing.T) {
	fixNow(t, 1000)

	l := NewLedger()
	l.RecordObservation("s1|1|1", 40, nil, true)

	// Sale starts: regular price appears.
	if !l.RecordObservation("s1|1|1", 40, fptr(50), true) {
		t.Fatalf("regular price appearing must append")
	}
	// Sale deepens: regular price value moves.
	if !l.RecordObservation("s1|1|1", 40, fptr(55), true) {
		t.Fatalf("regular price change must append")
	}
	// Sale ends: regular price disappears.
	if !l.RecordObservation("s1|1|1", 40, nil, true) {
		t.Fatalf("regular price disappearing must append")
	}
	// Non-positive regular price is treated as absent.
	if l.RecordObservation("s1|1|1", 40, fptr(0), true) {
		t.Fatalf("zero regular price must not append")
	}

	if got := len(l.History["s1|1|1"]); got != 4 {
		t.Fatalf("expected 4 entries, got %d", got)
	}
}

func TestStockFlipAloneDoesNotAppend(t *testing.T) {
	fixNow(t, 1000)

	l := NewLedger()
	l.RecordObservation("s1|1|1", 50, nil, true)
	if l.RecordObservation("s1|1|1", 50, nil, false) {
		t.Fatalf("stock flip without a price change must not append")
	}

	// But the flag rides on entries that do append.
	if !l.RecordObservation("s1|1|1", 45, nil, false) {
		t.Fatalf("price change must append")
	}
	entries := l.History["s1|1|1"]
	last := entries[len(entries)-1]
	if last.InStock == nil || *last.InStock {
		t.Fatalf("appended entry should carry inStock=false")
	}
}

func TestPruneOlderThan(t *testing.T) {
	fixNow(t, 100*86400)

	l := NewLedger()
	l.History["old"] = []domain.HistoryEntry{{Unix: 10 * 86400, Price: 10}}
	l.History["mixed"] = []domain.HistoryEntry{
		{Unix: 10 * 86400, Price: 10},
		{Unix: 95 * 86400, Price: 12},
	}

	removed := l.PruneOlderThan(30)
	if removed != 2 {
		t.Fatalf("expected 2 entries removed, got %d", removed)
	}
	if _, ok := l.History["old"]; ok {
		t.Fatalf("fully pruned item should be deleted")
	}
	if got := len(l.History["mixed"]); got != 1 {
		t.Fatalf("expected 1 surviving entry, got %d", got)
	}
}

func TestRemoveOrphans(t *testing.T) {
	fixNow(t, 1000)

	l := NewLedger()
	l.RecordObservation("live", 10, nil, true)
	l.RecordObservation("gone", 20, nil, true)

	removed := l.RemoveOrphans(map[string]struct{}{"live": {}})
	if removed != 1 {
		t.Fatalf("expected 1 orphan removed, got %d", removed)
	}
	if _, ok := l.History["gone"]; ok {
		t.Fatalf("orphan should be deleted")
	}
	if _, ok := l.History["live"]; !ok {
		t.Fatalf("live item should survive")
	}
}

func TestSaveAndReload(t *testing.T) {
	fixNow(t, 1000)

	path := filepath.Join(t.TempDir(), "data", "item-history.json")
	l := NewLedger()
	l.RecordObservation("s1|1|1", 49.99, fptr(59.99), true)

	if err := l.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded := Load(path, nil)
	entries := loaded.History["s1|1|1"]
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry after reload, got %d", len(entries))
	}
	if entries[0].Price != 49.99 {
		t.Fatalf("unexpected price: %v", entries[0].Price)
	}
	if entries[0].RegularPrice == nil || *entries[0].RegularPrice != 59.99 {
		t.Fatalf("regular price lost in roundtrip: %+v", entries[0])
	}
	if loaded.LastUpdated == nil || *loaded.LastUpdated == "" {
		t.Fatalf("lastUpdated not stamped")
	}
}

func TestLoadMissingOrCorruptStartsFresh(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	l := Load(filepath.Join(dir, "absent.json"), nil)
	if len(l.History) != 0 {
		t.Fatalf("missing file should yield empty ledger")
	}

	corrupt := filepath.Join(dir, "corrupt.json")
	if err := os.WriteFile(corrupt, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	l = Load(corrupt, nil)
	if len(l.History) != 0 {
		t.Fatalf("corrupt file should yield empty ledger")
	}
}

func TestTrackItems(t *testing.T) {
	fixNow(t, 1000)

	l := NewLedger()
	l.RecordObservation("s1|1|1", 50, nil, true)
	l.RecordObservation("s2|1|1", 30, nil, true)

	items := map[string]domain.Item{
		"s1|1|1": {ID: "s1|1|1", Price: 45, InStock: true}, // changed
		"s2|1|1": {ID: "s2|1|1", Price: 30, InStock: true}, // unchanged
		"s3|1|1": {ID: "s3|1|1", Price: 25, InStock: true}, // new
		"s4|1|1": {ID: "s4|1|1", Price: 0, InStock: true},  // non-positive, skipped
	}

	stats := l.TrackItems(items)
	if stats.New != 1 || stats.Changed != 1 || stats.Unchanged != 1 {
		t.Fatalf("unexpected track stats: %+v", stats)
	}
	if _, tracked := l.History["s4|1|1"]; tracked {
		t.Fatalf("non-positive price must not be tracked")
	}
}
