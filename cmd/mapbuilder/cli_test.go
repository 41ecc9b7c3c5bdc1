package main

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/amgst/mapapp2/internal/catalog"
	"github.com/amgst/mapapp2/internal/config"
	"github.com/amgst/mapapp2/internal/db"
	"github.com/amgst/mapapp2/internal/geometry"
	"github.com/amgst/mapapp2/internal/locator"
)

// setupTestEnv creates a temporary database-backed appEnv for testing.
func setupTestEnv(t *testing.T) *appEnv {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("failed to init test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return &appEnv{
		database: database,
		cfg:      config.DefaultConfig(),
		catalog:  catalog.Default(),
		stores:   locator.NewRepository(database),
	}
}

// captureStdout runs fn while capturing everything written to stdout.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = oldStdout
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("failed to read captured output: %v", err)
	}
	return string(data)
}

// TestCLICatalog tests the catalog command.
func TestCLICatalog(t *testing.T) {
	env := setupTestEnv(t)
	app := newCLIApp(env)

	out := captureStdout(t, func() {
		if err := app.Run([]string{"mapbuilder", "catalog"}); err != nil {
			t.Errorf("catalog command failed: %v", err)
		}
	})

	var products []catalog.ProductVariant
	if err := json.Unmarshal([]byte(out), &products); err != nil {
		t.Fatalf("failed to parse catalog output: %v", err)
	}
	if len(products) != 6 {
		t.Errorf("expected 6 products, got %d", len(products))
	}
}

// TestCLIFrame tests the frame command.
func TestCLIFrame(t *testing.T) {
	env := setupTestEnv(t)
	app := newCLIApp(env)

	out := captureStdout(t, func() {
		if err := app.Run([]string{"mapbuilder", "frame", "--max-width=400", "--max-height=400", "2:1"}); err != nil {
			t.Errorf("frame command failed: %v", err)
		}
	})

	var frame geometry.Frame
	if err := json.Unmarshal([]byte(out), &frame); err != nil {
		t.Fatalf("failed to parse frame output: %v", err)
	}
	if frame.Width != 400 || frame.Height != 200 {
		t.Errorf("frame = %vx%v, want 400x200", frame.Width, frame.Height)
	}
}

// TestCLIFrame_InvalidRatio tests error formatting for a bad ratio.
func TestCLIFrame_InvalidRatio(t *testing.T) {
	env := setupTestEnv(t)
	app := newCLIApp(env)

	err := app.Run([]string{"mapbuilder", "frame", "sideways"})
	if err == nil {
		t.Fatal("expected error for invalid ratio, got nil")
	}
	if !strings.Contains(err.Error(), "INVALID_ASPECT_RATIO") {
		t.Errorf("error = %q, want INVALID_ASPECT_RATIO code", err.Error())
	}
}

// TestCLIFrame_MissingArg tests the missing-argument error.
func TestCLIFrame_MissingArg(t *testing.T) {
	env := setupTestEnv(t)
	app := newCLIApp(env)

	err := app.Run([]string{"mapbuilder", "frame"})
	if err == nil {
		t.Fatal("expected error for missing ratio argument, got nil")
	}
	if !strings.Contains(err.Error(), "INVALID_REQUEST") {
		t.Errorf("error = %q, want INVALID_REQUEST code", err.Error())
	}
}

// TestCLIStores tests the stores seed, list, and search commands.
func TestCLIStores(t *testing.T) {
	env := setupTestEnv(t)
	app := newCLIApp(env)

	seedFile := filepath.Join(t.TempDir(), "stores.json")
	seed := `[
		{"id": "downtown", "name": "Downtown Gifts", "city": "Toronto", "country": "Canada", "latitude": 43.6532, "longitude": -79.3832},
		{"id": "ottawa", "name": "Capital Keepsakes", "city": "Ottawa", "country": "Canada", "latitude": 45.4215, "longitude": -75.6972}
	]`
	if err := os.WriteFile(seedFile, []byte(seed), 0600); err != nil {
		t.Fatalf("failed to write seed file: %v", err)
	}

	out := captureStdout(t, func() {
		if err := app.Run([]string{"mapbuilder", "stores", "seed", "--file", seedFile}); err != nil {
			t.Errorf("stores seed failed: %v", err)
		}
	})
	var seeded map[string]int
	if err := json.Unmarshal([]byte(out), &seeded); err != nil {
		t.Fatalf("failed to parse seed output: %v", err)
	}
	if seeded["seeded"] != 2 {
		t.Errorf("seeded = %d, want 2", seeded["seeded"])
	}

	out = captureStdout(t, func() {
		if err := app.Run([]string{"mapbuilder", "stores", "list"}); err != nil {
			t.Errorf("stores list failed: %v", err)
		}
	})
	var stores []locator.Store
	if err := json.Unmarshal([]byte(out), &stores); err != nil {
		t.Fatalf("failed to parse list output: %v", err)
	}
	if len(stores) != 2 {
		t.Errorf("expected 2 stores, got %d", len(stores))
	}

	// Search near Toronto: only the downtown store is within range.
	out = captureStdout(t, func() {
		if err := app.Run([]string{"mapbuilder", "stores", "search", "--lat=43.65", "--lng=-79.38"}); err != nil {
			t.Errorf("stores search failed: %v", err)
		}
	})
	var results []locator.Result
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("failed to parse search output: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].ID != "downtown" {
		t.Errorf("result = %q, want downtown", results[0].ID)
	}
}

// TestCLIStores_SeedInvalidJSON tests the malformed-seed error path.
func TestCLIStores_SeedInvalidJSON(t *testing.T) {
	env := setupTestEnv(t)
	app := newCLIApp(env)

	seedFile := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(seedFile, []byte("not json"), 0600); err != nil {
		t.Fatalf("failed to write seed file: %v", err)
	}

	err := app.Run([]string{"mapbuilder", "stores", "seed", "--file", seedFile})
	if err == nil {
		t.Fatal("expected error for invalid seed JSON, got nil")
	}
	if !strings.Contains(err.Error(), "INVALID_REQUEST") {
		t.Errorf("error = %q, want INVALID_REQUEST code", err.Error())
	}
}

// TestIsCLIMode tests command/mode detection.
func TestIsCLIMode(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want bool
	}{
		{"no args", []string{"mapbuilder"}, false},
		{"serve command", []string{"mapbuilder", "serve"}, true},
		{"catalog command", []string{"mapbuilder", "catalog"}, true},
		{"help flag", []string{"mapbuilder", "--help"}, true},
		{"version flag", []string{"mapbuilder", "-v"}, true},
		{"unknown arg", []string{"mapbuilder", "bogus"}, false},
	}

	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			if got := isCLIMode(); got != tt.want {
				t.Errorf("isCLIMode() = %v, want %v", got, tt.want)
			}
		})
	}
}
