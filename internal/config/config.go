package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Config holds application configuration.
type Config struct {
	// CatalogPath points at a JSON catalog file. Empty uses the
	// built-in product catalog.
	CatalogPath string `json:"catalog_path,omitempty"`

	// AllowedOrigins is an allowlist of host-page origins whose
	// cross-document messages are acted on. Empty accepts any
	// origin; production embeddings should set it.
	AllowedOrigins []string `json:"allowed_origins,omitempty"`

	// SaveDelayMS is the simulated save round-trip in milliseconds.
	SaveDelayMS int `json:"save_delay_ms,omitempty"`

	// PreviewMaxWidth and PreviewMaxHeight bound the preview frame.
	PreviewMaxWidth  float64 `json:"preview_max_width,omitempty"`
	PreviewMaxHeight float64 `json:"preview_max_height,omitempty"`

	// ShopEndpoint and ShopToken configure the storefront info
	// client. Both empty disables the shop surface.
	ShopEndpoint string `json:"shop_endpoint,omitempty"`
	ShopToken    string `json:"shop_token,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// If set to 1, all database access is serialized (reduces "database is locked" errors).
	// 0 means use sql.DB default (unlimited). Only set if you experience contention.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	// 0 means use sql.DB default. Typically set equal to DBMaxOpenConns.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// All tools are enabled by default. Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		SaveDelayMS:      2000,
		PreviewMaxWidth:  600,
		PreviewMaxHeight: 500,
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of the
// real data directory.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// File doesn't exist, return zero config
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	// Scalars: overlay wins if non-zero, else base
	result.CatalogPath = overlay.CatalogPath
	if result.CatalogPath == "" {
		result.CatalogPath = base.CatalogPath
	}

	result.SaveDelayMS = overlay.SaveDelayMS
	if result.SaveDelayMS == 0 {
		result.SaveDelayMS = base.SaveDelayMS
	}

	result.PreviewMaxWidth = overlay.PreviewMaxWidth
	if result.PreviewMaxWidth == 0 {
		result.PreviewMaxWidth = base.PreviewMaxWidth
	}

	result.PreviewMaxHeight = overlay.PreviewMaxHeight
	if result.PreviewMaxHeight == 0 {
		result.PreviewMaxHeight = base.PreviewMaxHeight
	}

	result.ShopEndpoint = overlay.ShopEndpoint
	if result.ShopEndpoint == "" {
		result.ShopEndpoint = base.ShopEndpoint
	}

	result.ShopToken = overlay.ShopToken
	if result.ShopToken == "" {
		result.ShopToken = base.ShopToken
	}

	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}

	result.DBMaxIdleConns = overlay.DBMaxIdleConns
	if result.DBMaxIdleConns == 0 {
		result.DBMaxIdleConns = base.DBMaxIdleConns
	}

	// Arrays: merge and deduplicate
	result.AllowedOrigins = mergeStringSlice(base.AllowedOrigins, overlay.AllowedOrigins)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
