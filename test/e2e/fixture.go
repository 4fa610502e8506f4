package e2e

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"time"

	"github.com/negwatch/negwatch/internal/grid"
	"github.com/negwatch/negwatch/internal/model"
	"github.com/negwatch/negwatch/internal/store"
)

// seedFixtureDB creates a fresh ~/.negwatch database with deterministic
// presets and display modes for UI tests.
func seedFixtureDB(homeDir string) error {
	dataDir := filepath.Join(homeDir, ".negwatch")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return err
	}
	st, err := store.Open(filepath.Join(dataDir, "negwatch.db"))
	if err != nil {
		return err
	}
	defer st.Close()

	modes := grid.DefaultModeSet()
	modes.Toggle(grid.ModeAgreement)
	if err := st.SaveDisplayModes(modes); err != nil {
		return err
	}

	presets := []model.FilterPreset{
		{
			ID:        "fixture-1",
			Name:      "Fixture Preset",
			IsDefault: true,
			Criteria:  model.Criteria{MinIssues: 2},
			CreatedAt: time.Now().UTC(),
		},
	}
	return st.CachePresets(presets)
}

// fakeServer serves the minimal API surface the dashboard touches at startup.
func fakeServer() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/scenarios", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]model.Scenario{
			{ID: "s1", Path: "scenarios/laptop", Name: "Laptop", NIssues: 3, Outcomes: 27},
		})
	})
	mux.HandleFunc("/api/negotiators", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]model.Negotiator{
			{TypeName: "Atlas3"}, {TypeName: "Boulware"},
		})
	})
	mux.HandleFunc("/api/cache/scenarios/status", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(model.CacheStatus{Total: 1, Cached: 1})
	})
	mux.HandleFunc("/api/filters", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]model.FilterPreset{
			{ID: "fixture-1", Name: "Fixture Preset", IsDefault: true},
		})
	})
	return httptest.NewServer(mux)
}
