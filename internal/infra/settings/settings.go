// Package settings holds the tuning knobs of the panel: logging, bridge
// timeouts and discovery. They live in an optional settings.yaml next to the
// bridge record and can be overridden from the environment.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
	"hue-panel/internal/domain/model"
)

const FileName = "settings.yaml"

// Environment overrides.
const (
	EnvLogLevel   = "HUE_PANEL_LOG_LEVEL"
	EnvConfigPath = "HUE_PANEL_CONFIG"
)

type Settings struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Bridge    BridgeConfig    `yaml:"bridge"`
	Discovery DiscoveryConfig `yaml:"discovery"`

	// ConfigPath overrides where the bridge record is stored.
	ConfigPath string `yaml:"config_path"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

type BridgeConfig struct {
	Timeout     time.Duration `yaml:"timeout"`
	PairTimeout time.Duration `yaml:"pair_timeout"`
	DeviceType  string        `yaml:"device_type"`
}

type DiscoveryConfig struct {
	Workers          int           `yaml:"workers"`
	ProbeTimeout     time.Duration `yaml:"probe_timeout"`
	FallbackPrefixes []string      `yaml:"fallback_prefixes"`
	MDNS             bool          `yaml:"mdns"`
	SSDP             bool          `yaml:"ssdp"`
	ListenWait       time.Duration `yaml:"listen_wait"`
}

// Default returns the settings used when no file is present.
func Default() *Settings {
	return &Settings{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Bridge: BridgeConfig{
			Timeout:     4 * time.Second,
			PairTimeout: 5 * time.Second,
			DeviceType:  DefaultDeviceType(),
		},
		Discovery: DiscoveryConfig{
			Workers:          32,
			ProbeTimeout:     500 * time.Millisecond,
			FallbackPrefixes: model.DefaultFallbackPrefixes(),
			ListenWait:       3 * time.Second,
		},
	}
}

// DefaultDeviceType is the name the bridge shows for our credential,
// "hue-panel#<hostname>".
func DefaultDeviceType() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "unknown"
	}
	return "hue-panel#" + host
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Settings, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading settings: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing settings: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating settings: %w", err)
	}
	return cfg, nil
}

// PathNextTo returns settings.yaml in the directory of the bridge record.
func PathNextTo(configPath string) string {
	return filepath.Join(filepath.Dir(configPath), FileName)
}

func applyEnvOverrides(cfg *Settings) {
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv(EnvConfigPath); v != "" {
		cfg.ConfigPath = v
	}
}

func (s *Settings) Validate() error {
	var errs []error
	if s.Bridge.Timeout <= 0 {
		errs = append(errs, errors.New("bridge.timeout must be positive"))
	}
	if s.Bridge.PairTimeout <= 0 {
		errs = append(errs, errors.New("bridge.pair_timeout must be positive"))
	}
	if strings.TrimSpace(s.Bridge.DeviceType) == "" {
		errs = append(errs, errors.New("bridge.device_type must not be empty"))
	}
	if s.Discovery.Workers < 1 {
		errs = append(errs, errors.New("discovery.workers must be at least 1"))
	}
	if s.Discovery.ProbeTimeout <= 0 {
		errs = append(errs, errors.New("discovery.probe_timeout must be positive"))
	}
	for _, p := range s.Discovery.FallbackPrefixes {
		if strings.Count(p, ".") != 3 || !strings.HasSuffix(p, ".") {
			errs = append(errs, fmt.Errorf("discovery.fallback_prefixes: %q is not of the form a.b.c.", p))
		}
	}
	return errors.Join(errs...)
}
