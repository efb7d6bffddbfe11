package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

var (
	// Global is the process-wide singleton, populated by Load.
	Global Config
	once   sync.Once
)

// defaultConfigPath is where Load looks for (and, on first run,
// creates) the configuration file.
const defaultConfigPath = "~/.tw-go-client/config.yaml"

// Load populates Global from path (expanding a leading "~"), creating
// a default file on first run, following the teacher's config.Load/
// loadInternal singleton pattern. path == "" uses defaultConfigPath.
func Load(path string) error {
	var err error
	once.Do(func() {
		err = loadInternal(path)
	})
	return err
}

func loadInternal(path string) error {
	if path == "" {
		path = defaultConfigPath
	}
	resolved, err := expandHome(path)
	if err != nil {
		return fmt.Errorf("config: resolve path %s: %w", path, err)
	}
	if _, err := os.Stat(resolved); os.IsNotExist(err) {
		if err := createDefault(resolved); err != nil {
			return err
		}
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", resolved, err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", resolved, err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: invalid %s: %w", resolved, err)
	}
	Global = cfg
	return nil
}

func createDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("config: create directory %s: %w", dir, err)
	}
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
