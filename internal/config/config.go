package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"portfolio/internal/rotor"
)

const (
	SourceFile   = "file"
	SourceRemote = "remote"
)

type Config struct {
	Port          int
	Password      string
	LogDirectory  string
	StaticDir     string
	WorksSource   string        // "file" or "remote"
	WorksFile     string        // YAML/JSON list of work items
	WorksURL      string        // remote JSON array of work items
	WorksTimeout  time.Duration // remote fetch timeout
	WorksCacheDB  string        // SQLite path for last-known-good items, empty disables
	WatchWorks    bool          // reload WorksFile on change
	FrameInterval time.Duration // rotor frame period per viewer
	Rotor         rotor.Config
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
// ROTOR_CONFIG may point to a YAML file with rotor settings, which the
// individual ROTOR_* variables then override.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	rc := rotor.DefaultConfig()
	if path := getEnv("ROTOR_CONFIG", ""); path != "" {
		fileCfg, err := LoadRotorFile(path, rc)
		if err != nil {
			return nil, err
		}
		rc = fileCfg
	}
	rc.SpeedSeconds = getEnvAsFloat("ROTOR_SPEED", rc.SpeedSeconds)
	rc.Radius = getEnvAsFloat("ROTOR_RADIUS", rc.Radius)
	rc.SlowOnHover = getEnvAsBool("ROTOR_SLOW_ON_HOVER", rc.SlowOnHover)
	rc.DragEnabled = getEnvAsBool("ROTOR_DRAG", rc.DragEnabled)

	cfg := &Config{
		Port:          getEnvAsInt("PORT", 8080),
		Password:      getEnv("PASSWORD", "changeme"),
		LogDirectory:  getEnv("LOG_DIR", filepath.Join(".", "logs")),
		StaticDir:     getEnv("STATIC_DIR", filepath.Join(".", "static")),
		WorksSource:   getEnv("WORKS_SOURCE", SourceFile),
		WorksFile:     getEnv("WORKS_FILE", filepath.Join(".", "data", "works.yaml")),
		WorksURL:      getEnv("WORKS_URL", ""),
		WorksTimeout:  time.Duration(getEnvAsInt("WORKS_TIMEOUT", 5)) * time.Second,
		WorksCacheDB:  getEnv("WORKS_CACHE_DB", ""),
		WatchWorks:    getEnvAsBool("WATCH_WORKS", true),
		FrameInterval: time.Duration(getEnvAsInt("FRAME_INTERVAL_MS", 16)) * time.Millisecond,
		Rotor:         rc,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that cannot be defaulted silently.
func (c *Config) Validate() error {
	switch c.WorksSource {
	case SourceFile:
	case SourceRemote:
		if c.WorksURL == "" {
			return fmt.Errorf("WORKS_URL is required when WORKS_SOURCE=%s", SourceRemote)
		}
	default:
		return fmt.Errorf("unknown WORKS_SOURCE %q", c.WorksSource)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	return nil
}

// LoadRotorFile overlays the rotor settings in a YAML file on base. Keys
// missing from the file keep their base value.
func LoadRotorFile(path string, base rotor.Config) (rotor.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("failed to read rotor config %s: %w", path, err)
	}

	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return base, fmt.Errorf("failed to parse rotor config %s: %w", path, err)
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
