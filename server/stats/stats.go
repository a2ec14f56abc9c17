// Package intlstats counts page views per language and renders them as an
// SVG bar chart.
package intlstats

import (
	"bytes"
	"encoding/json"
	"io"
	"maps"
	"os"
	"slices"
	"sync"

	"github.com/wcharczuk/go-chart/v2"
)

// PageStats holds per-language view counters. The zero value is ready to
// use; Load replaces the counters with those persisted in StateFile.
type PageStats struct {
	mu        sync.Mutex
	Views     map[string]int
	StateFile string
}

// Increment records one view of a page in lang.
func (s *PageStats) Increment(lang string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Views == nil {
		s.Views = make(map[string]int)
	}
	s.Views[lang]++
}

// Snapshot returns a copy of the counters.
func (s *PageStats) Snapshot() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := maps.Clone(s.Views)
	if out == nil {
		out = make(map[string]int)
	}
	return out
}

// Graph renders the counters as an SVG bar chart, one bar per language in
// sorted order followed by the total. Nothing is written to w when the
// chart fails to render.
func (s *PageStats) Graph(w io.Writer) error {
	views := s.Snapshot()
	bars := []chart.Value{
		{Value: float64(0), Label: "baseline"},
	}
	total := 0
	for _, lang := range slices.Sorted(maps.Keys(views)) {
		total += views[lang]
		bars = append(bars, chart.Value{Value: float64(views[lang]), Label: lang})
	}
	bars = append(bars, chart.Value{Value: float64(total), Label: "Total page views"})

	graph := chart.BarChart{
		Title: "Page views by language",
		Background: chart.Style{
			Padding: chart.Box{
				Top:   40,
				Left:  10,
				Right: 10,
			},
		},
		Height:   256,
		BarWidth: 20,
		Bars:     bars,
	}
	var buf bytes.Buffer
	if err := graph.Render(chart.SVG, &buf); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

// Save writes the counters to StateFile as JSON.
func (s *PageStats) Save() error {
	data, err := json.Marshal(s.Snapshot())
	if err != nil {
		return err
	}
	return os.WriteFile(s.StateFile, data, 0o644)
}

// Load reads counters from StateFile. A missing, malformed, or null file
// leaves an empty counter set.
func (s *PageStats) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Views = make(map[string]int)
	data, err := os.ReadFile(s.StateFile)
	if err != nil {
		return
	}
	var views map[string]int
	if err := json.Unmarshal(data, &views); err != nil || views == nil {
		return
	}
	s.Views = views
}
