// Package config loads runtime settings from the environment and persists
// the CLI actor profile.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Defaults
const (
	DefaultDBFile           = "cadastre.db"
	DefaultSeriesPrefix     = "SC/CN"
	DefaultMaxBatch         = 50
	DefaultRadiusKm         = 5.0
	DefaultMaxRadiusKm      = 100.0
	DefaultSearchLimit      = 10
	DefaultCacheTTL         = 10 * time.Minute
	DefaultHTTPAddr         = ":8080"
	DefaultProjectionPreset = "EPSG:26332"
)

// Config holds the service settings.
type Config struct {
	DBPath       string
	Projection   string // EPSG preset name
	SeriesPrefix string // Used when admin approval names no series
	MaxBatch     int
	RadiusKm     float64
	MaxRadiusKm  float64
	SearchLimit  int

	RedisAddr     string // Empty disables the search cache
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	HTTPAddr  string
	LogLevel  string
	LogFormat string
}

// Load reads .env files (missing files are ignored) and then CADASTRE_*
// environment variables. Values already set in the environment win over .env.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}

	cfg := &Config{
		DBPath:        os.Getenv("CADASTRE_DB_PATH"),
		Projection:    envString("CADASTRE_PROJECTION", DefaultProjectionPreset),
		SeriesPrefix:  envString("CADASTRE_SERIES_PREFIX", DefaultSeriesPrefix),
		RedisAddr:     os.Getenv("CADASTRE_REDIS_ADDR"),
		RedisPassword: os.Getenv("CADASTRE_REDIS_PASSWORD"),
		HTTPAddr:      envString("CADASTRE_HTTP_ADDR", DefaultHTTPAddr),
		LogLevel:      envString("LOG_LEVEL", "info"),
		LogFormat:     envString("LOG_FORMAT", "text"),
	}

	var err error
	if cfg.MaxBatch, err = envInt("CADASTRE_MAX_BATCH", DefaultMaxBatch); err != nil {
		return nil, err
	}
	if cfg.SearchLimit, err = envInt("CADASTRE_SEARCH_LIMIT", DefaultSearchLimit); err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = envInt("CADASTRE_REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.RadiusKm, err = envFloat("CADASTRE_DEFAULT_RADIUS_KM", DefaultRadiusKm); err != nil {
		return nil, err
	}
	if cfg.MaxRadiusKm, err = envFloat("CADASTRE_MAX_RADIUS_KM", DefaultMaxRadiusKm); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = envDuration("CADASTRE_CACHE_TTL", DefaultCacheTTL); err != nil {
		return nil, err
	}

	if cfg.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		cfg.DBPath = filepath.Join(home, ".cadastre", DefaultDBFile)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the numeric settings for sane ranges.
func (c *Config) Validate() error {
	if c.MaxBatch < 1 {
		return fmt.Errorf("CADASTRE_MAX_BATCH must be positive, got %d", c.MaxBatch)
	}
	if c.SearchLimit < 1 {
		return fmt.Errorf("CADASTRE_SEARCH_LIMIT must be positive, got %d", c.SearchLimit)
	}
	if c.RadiusKm <= 0 || c.MaxRadiusKm <= 0 {
		return fmt.Errorf("search radii must be positive")
	}
	if c.RadiusKm > c.MaxRadiusKm {
		return fmt.Errorf("default radius %.1f km exceeds maximum %.1f km", c.RadiusKm, c.MaxRadiusKm)
	}
	return nil
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func envFloat(key string, def float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return f, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

// Profile is the actor identity the CLI acts as when no flags are given.
type Profile struct {
	ActorID string `json:"actor_id"`
	Role    string `json:"role"` // SURVEYOR, NIS_OFFICER or ADMIN
}

// LoadProfile reads .cadastre/profile.json from the specified directory.
// Returns error if no profile found - caller should handle accordingly.
func LoadProfile(dir string) (*Profile, error) {
	path := filepath.Join(dir, ".cadastre", "profile.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}

	return &p, nil
}

// SaveProfile writes profile.json to directory
func SaveProfile(dir string, p *Profile) error {
	profileDir := filepath.Join(dir, ".cadastre")
	if err := os.MkdirAll(profileDir, 0755); err != nil {
		return fmt.Errorf("failed to create .cadastre dir: %w", err)
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	path := filepath.Join(profileDir, "profile.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}

	return nil
}
