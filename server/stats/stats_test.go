package intlstats

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestLoad_MissingFile(t *testing.T) {
	s := &PageStats{StateFile: "/nonexistent/stats.json"}
	s.Load()
	if s.Views == nil {
		t.Fatal("Views is nil after Load with missing file")
	}
}

// TestLoad_NullJSON verifies that a stats file containing "null" leaves a
// usable counter map behind.
func TestLoad_NullJSON(t *testing.T) {
	sf := filepath.Join(t.TempDir(), "stats.json")
	if err := os.WriteFile(sf, []byte("null"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := &PageStats{StateFile: sf}
	s.Load()
	if s.Views == nil {
		t.Fatal("Views is nil after Load with null JSON file")
	}
	s.Increment("en")
}

func TestLoad_MalformedJSON(t *testing.T) {
	sf := filepath.Join(t.TempDir(), "stats.json")
	if err := os.WriteFile(sf, []byte(`{not valid json`), 0o644); err != nil {
		t.Fatal(err)
	}
	s := &PageStats{StateFile: sf}
	s.Load()
	if len(s.Views) != 0 {
		t.Errorf("expected empty Views after malformed JSON, got %v", s.Views)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	sf := filepath.Join(t.TempDir(), "stats.json")
	s := &PageStats{StateFile: sf}
	s.Increment("fr")
	s.Increment("fr")
	s.Increment("en")
	if err := s.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded := &PageStats{StateFile: sf}
	loaded.Load()
	if loaded.Views["fr"] != 2 || loaded.Views["en"] != 1 {
		t.Errorf("round trip mismatch: %v", loaded.Views)
	}
}

func TestGraph_RendersSVG(t *testing.T) {
	s := &PageStats{}
	s.Increment("de")
	s.Increment("en")
	var buf bytes.Buffer
	if err := s.Graph(&buf); err != nil {
		t.Fatalf("Graph: %v", err)
	}
	if !strings.Contains(buf.String(), "<svg") {
		t.Errorf("Graph output is not SVG: %.80s", buf.String())
	}
}

// TestIncrement_ConcurrentSafety verifies that Increment and Save may run
// from many goroutines at once. Run with -race.
func TestIncrement_ConcurrentSafety(t *testing.T) {
	s := &PageStats{StateFile: filepath.Join(t.TempDir(), "stats.json")}

	const goroutines = 50
	const callsEach = 100
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < callsEach; j++ {
				s.Increment("fr")
			}
		}()
	}
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Save()
		}()
	}
	wg.Wait()

	if got := s.Snapshot()["fr"]; got != goroutines*callsEach {
		t.Errorf("concurrent increments: got %d, want %d", got, goroutines*callsEach)
	}
}
