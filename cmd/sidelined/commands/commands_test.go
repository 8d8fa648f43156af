package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/fortuna/sidelined/internal/config"
	"github.com/fortuna/sidelined/internal/metrics"
	"github.com/fortuna/sidelined/internal/model"
	"github.com/stretchr/testify/require"
)

func newFixtureServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/injured/2025/view/player", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, filepath.Join("testdata", "injuries.html"))
	})
	mux.HandleFunc("/leagues/NBA_2025_advanced.html", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, filepath.Join("testdata", "advanced.html"))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	t.Setenv("SIDELINED_SPOTRAC_BASE_URL", server.URL+"/injured")
	t.Setenv("SIDELINED_BREF_BASE_URL", server.URL+"/leagues")
	return server
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootWritesCSV(t *testing.T) {
	newFixtureServer(t)
	path := filepath.Join(t.TempDir(), "out.csv")

	out, err := execute(t, "2025", path)
	require.NoError(t, err)
	require.Contains(t, out, "✓ Wrote results to "+path+" (3 teams).")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	// Butler's 8 games split 6/2 by minutes between MIA and GSW
	require.Equal(t, "team,wins_lost\nMIA,0.58\nGSW,0.27\nDEN,0.00\n", string(content))
}

func TestRootPrintsTable(t *testing.T) {
	newFixtureServer(t)

	out, err := execute(t, "2025")
	require.NoError(t, err)
	require.Contains(t, out, "NBA 2025 — Wins Lost to Injury")
	require.Contains(t, out, "0.58")
}

func TestRootRejectsBadSeason(t *testing.T) {
	_, err := execute(t, "twenty")
	require.ErrorContains(t, err, "four-digit end year")
}

func TestScrapePerformance(t *testing.T) {
	newFixtureServer(t)

	out, err := execute(t, "scrape", "performance", "2025")
	require.NoError(t, err)
	require.Contains(t, out, "player,team,g,mp,ws_48,vorp,war,war_per_minute,mpg")
	require.Contains(t, out, "Jimmy Butler,MIA,25,750")
	require.NotContains(t, out, "2TM")
}

func TestPublishMissingInput(t *testing.T) {
	t.Setenv("SIDELINED_DATAWRAPPER_API_KEY", "key")

	_, err := execute(t, "publish", "--input", filepath.Join(t.TempDir(), "missing.csv"))
	require.ErrorIs(t, err, model.ErrInputFileMissing)
}

func TestPublishRequiresAPIKey(t *testing.T) {
	t.Setenv("SIDELINED_DATAWRAPPER_API_KEY", "")
	t.Setenv("DW_API_KEY", "")

	_, err := execute(t, "publish", "--input", "unused.csv")
	require.ErrorContains(t, err, "datawrapper API key")
}

func TestPublishFromInputSkipsSources(t *testing.T) {
	var chartCalls []string
	mux := http.NewServeMux()
	mux.HandleFunc("/charts", func(w http.ResponseWriter, r *http.Request) {
		chartCalls = append(chartCalls, "create")
		_, _ = w.Write([]byte(`{"id":"x1"}`))
	})
	mux.HandleFunc("/charts/x1", func(w http.ResponseWriter, r *http.Request) {
		chartCalls = append(chartCalls, "metadata")
		_, _ = w.Write([]byte(`{}`))
	})
	mux.HandleFunc("/charts/x1/data", func(w http.ResponseWriter, r *http.Request) {
		chartCalls = append(chartCalls, "data")
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/charts/x1/publish", func(w http.ResponseWriter, r *http.Request) {
		chartCalls = append(chartCalls, "publish")
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]string{"publicUrl": "https://charts.test/x1/"}})
	})
	mux.HandleFunc("/charts/x1/export/png", func(w http.ResponseWriter, r *http.Request) {
		chartCalls = append(chartCalls, "export")
		_, _ = w.Write([]byte("\x89PNG"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	t.Setenv("SIDELINED_DATAWRAPPER_API_KEY", "key")
	t.Setenv("SIDELINED_DATAWRAPPER_API_URL", server.URL+"/charts")
	t.Setenv("SIDELINED_FETCH_MODE", "browser")

	built := 0
	buildApp = func(cfg *config.Config, m *metrics.Manager) (*app, error) {
		built++
		return newApp(cfg, m)
	}
	t.Cleanup(func() { buildApp = newApp })

	dir := t.TempDir()
	input := filepath.Join(dir, "teams.csv")
	require.NoError(t, os.WriteFile(input, []byte("team,wins_lost\nMIA,0.58\n"), 0o644))
	image := filepath.Join(dir, "chart.png")

	out, err := execute(t, "publish", "--input", input, "--image", image, "--season", "2025")
	require.NoError(t, err)
	require.Contains(t, out, "Public URL: https://charts.test/x1/")
	require.Zero(t, built)
	require.Equal(t, []string{"create", "data", "metadata", "publish", "export"}, chartCalls)
	require.FileExists(t, image)
}
