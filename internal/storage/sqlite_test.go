package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreSaveAndRetrieve(t *testing.T) {
	store := openTestStore(t)

	started := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	id, err := store.SaveRun(RunRecord{
		Script:      "game.js",
		StartedAt:   started,
		Ticks:       600,
		LoadMs:      1.5,
		InitMs:      0.25,
		AvgFrameMs:  16.0,
		AvgUpdateMs: 0.1,
		AvgDrawMs:   0.4,
		Faults:      2,
	})
	if err != nil {
		t.Fatalf("SaveRun() failed: %v", err)
	}

	got, err := store.RunByID(id)
	if err != nil {
		t.Fatalf("RunByID() failed: %v", err)
	}
	if got == nil {
		t.Fatal("RunByID() returned nil for a saved run")
	}

	if got.Script != "game.js" || got.Ticks != 600 || got.Faults != 2 {
		t.Errorf("RunByID() = %+v", got)
	}
	if got.Origin != "local" {
		t.Errorf("Origin = %q, expected local", got.Origin)
	}
	if !got.StartedAt.Equal(started) {
		t.Errorf("StartedAt = %v, expected %v", got.StartedAt, started)
	}
	if got.LoadMs != 1.5 || got.InitMs != 0.25 || got.AvgDrawMs != 0.4 {
		t.Errorf("timings = %v/%v/%v, expected 1.5/0.25/0.4", got.LoadMs, got.InitMs, got.AvgDrawMs)
	}
	if got.FPS() != 62.5 {
		t.Errorf("FPS() = %v, expected 62.5", got.FPS())
	}
}

func TestStoreRunByIDMissing(t *testing.T) {
	store := openTestStore(t)

	got, err := store.RunByID(42)
	if err != nil {
		t.Fatalf("RunByID() failed: %v", err)
	}
	if got != nil {
		t.Errorf("RunByID() = %+v, expected nil", got)
	}
}

func TestStoreRecentRuns(t *testing.T) {
	store := openTestStore(t)

	for i := 1; i <= 5; i++ {
		store.SaveRun(RunRecord{Script: "a.js", Ticks: i, StartedAt: time.Now()})
	}
	store.SaveRun(RunRecord{Script: "b.js", Ticks: 99, Origin: "bench", StartedAt: time.Now()})

	runs, err := store.RecentRuns("a.js", 3)
	if err != nil {
		t.Fatalf("RecentRuns() failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("Expected 3 runs with limit, got %d", len(runs))
	}

	// Newest first
	if runs[0].Ticks != 5 || runs[1].Ticks != 4 || runs[2].Ticks != 3 {
		t.Errorf("Runs not in expected order: %v", runs)
	}

	all, err := store.RecentRuns("", 0)
	if err != nil {
		t.Fatalf("RecentRuns() failed: %v", err)
	}
	if len(all) != 6 {
		t.Errorf("Expected 6 runs across scripts, got %d", len(all))
	}
	if all[0].Script != "b.js" || all[0].Origin != "bench" {
		t.Errorf("Newest run = %+v, expected b.js from bench", all[0])
	}
}

func TestStoreClearRuns(t *testing.T) {
	store := openTestStore(t)

	store.SaveRun(RunRecord{Script: "a.js", StartedAt: time.Now()})
	store.SaveRun(RunRecord{Script: "a.js", StartedAt: time.Now()})
	store.SaveRun(RunRecord{Script: "b.js", StartedAt: time.Now()})

	// Clear only a.js runs
	if err := store.ClearRuns("a.js"); err != nil {
		t.Fatalf("ClearRuns() failed: %v", err)
	}

	if n, _ := store.RunCount("a.js"); n != 0 {
		t.Errorf("Expected 0 a.js runs after clear, got %d", n)
	}
	if n, _ := store.RunCount("b.js"); n != 1 {
		t.Errorf("b.js runs should not be affected by clearing a.js, got %d", n)
	}
}

func TestStoreClearAllRuns(t *testing.T) {
	store := openTestStore(t)

	store.SaveRun(RunRecord{Script: "a.js", StartedAt: time.Now()})
	store.SaveRun(RunRecord{Script: "b.js", StartedAt: time.Now()})

	if err := store.ClearRuns(""); err != nil {
		t.Fatalf("ClearRuns() failed: %v", err)
	}

	if n, _ := store.RunCount(""); n != 0 {
		t.Errorf("Expected 0 runs after clearing all, got %d", n)
	}
}

func TestStoreScripts(t *testing.T) {
	store := openTestStore(t)

	scripts, err := store.Scripts()
	if err != nil {
		t.Fatalf("Scripts() failed: %v", err)
	}
	if len(scripts) != 0 {
		t.Errorf("Expected no scripts, got %v", scripts)
	}

	for _, name := range []string{"zeta.js", "alpha.js", "zeta.js"} {
		store.SaveRun(RunRecord{Script: name, StartedAt: time.Now()})
	}

	scripts, err = store.Scripts()
	if err != nil {
		t.Fatalf("Scripts() failed: %v", err)
	}
	if len(scripts) != 2 || scripts[0] != "alpha.js" || scripts[1] != "zeta.js" {
		t.Errorf("Scripts() = %v, expected [alpha.js zeta.js]", scripts)
	}
}

func TestStoreNestedPath(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	// Verify nested directories were created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}

func TestRunRecordFPS(t *testing.T) {
	tests := []struct {
		frameMs  float64
		expected float64
	}{
		{0, 0},
		{-1, 0},
		{20, 50},
		{1000.0 / 60, 60},
	}

	for _, tc := range tests {
		got := RunRecord{AvgFrameMs: tc.frameMs}.FPS()
		if got < tc.expected-1e-9 || got > tc.expected+1e-9 {
			t.Errorf("FPS() with %vms frames = %v, expected %v", tc.frameMs, got, tc.expected)
		}
	}
}
