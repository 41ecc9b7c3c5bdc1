package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_DefaultWhenMissing(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.SaveDelayMS != DefaultConfig().SaveDelayMS {
		t.Fatalf("SaveDelayMS = %d, want %d", cfg.SaveDelayMS, DefaultConfig().SaveDelayMS)
	}
	if cfg.PreviewMaxWidth != 600 || cfg.PreviewMaxHeight != 500 {
		t.Fatalf("preview bounds = %vx%v, want 600x500", cfg.PreviewMaxWidth, cfg.PreviewMaxHeight)
	}
}

func TestLoad_OverridesFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{"save_delay_ms": 100, "catalog_path": "/data/catalog.json"}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.SaveDelayMS != 100 {
		t.Fatalf("SaveDelayMS = %d, want 100", cfg.SaveDelayMS)
	}
	if cfg.CatalogPath != "/data/catalog.json" {
		t.Fatalf("CatalogPath = %q, want /data/catalog.json", cfg.CatalogPath)
	}
	// Untouched scalars keep defaults
	if cfg.PreviewMaxWidth != 600 {
		t.Fatalf("PreviewMaxWidth = %v, want default 600", cfg.PreviewMaxWidth)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{not json}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Fatalf("Load() expected error, got nil")
	}
}

func TestLoad_AllowedOrigins(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{"allowed_origins": ["https://shop.example.com", " https://shop.example.com ", "https://other.example.com"]}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.AllowedOrigins) != 2 {
		t.Fatalf("AllowedOrigins = %v, want 2 deduplicated entries", cfg.AllowedOrigins)
	}
}

func TestMerge(t *testing.T) {
	base := &Config{
		SaveDelayMS:    2000,
		AllowedOrigins: []string{"https://a.example.com"},
		DBMaxOpenConns: 1,
	}
	overlay := &Config{
		SaveDelayMS:    50,
		AllowedOrigins: []string{"https://b.example.com"},
	}

	merged := Merge(base, overlay)
	if merged.SaveDelayMS != 50 {
		t.Errorf("SaveDelayMS = %d, want overlay 50", merged.SaveDelayMS)
	}
	if merged.DBMaxOpenConns != 1 {
		t.Errorf("DBMaxOpenConns = %d, want base 1", merged.DBMaxOpenConns)
	}
	if len(merged.AllowedOrigins) != 2 {
		t.Errorf("AllowedOrigins = %v, want both merged", merged.AllowedOrigins)
	}
}
