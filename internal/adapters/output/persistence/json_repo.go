package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"hue-panel/internal/domain/model"
	"hue-panel/internal/ports"
)

const (
	AppDirName     = "hue-panel"
	ConfigFileName = "hue_config.json"

	EnvBridgeIP = "HUE_BRIDGE_IP"
	EnvUsername = "HUE_USERNAME"
)

// DefaultConfigPath is hue_config.json in the per-user config directory.
// When that directory cannot be determined the file lives in the working
// directory.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ConfigFileName
	}
	return filepath.Join(dir, AppDirName, ConfigFileName)
}

// JSONConfigRepository keeps the bridge record in a small JSON file that is
// always read and written whole.
type JSONConfigRepository struct {
	filepath string
	mu       sync.RWMutex
	logger   *slog.Logger
}

var _ ports.ConfigRepository = (*JSONConfigRepository)(nil)

func NewJSONConfigRepository(path string, logger *slog.Logger) *JSONConfigRepository {
	if path == "" {
		path = DefaultConfigPath()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &JSONConfigRepository{filepath: path, logger: logger.With("component", "config")}
}

func (r *JSONConfigRepository) Path() string { return r.filepath }

// Load reads the record. A missing or unreadable file is not an error: the
// record then comes from HUE_BRIDGE_IP and HUE_USERNAME, each defaulting to
// "". The config directory is created as a side effect.
func (r *JSONConfigRepository) Load(ctx context.Context) *model.BridgeConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(r.filepath), 0o755); err != nil {
		r.logger.Warn("cannot create config directory", "path", r.filepath, "error", err)
	}

	data, err := os.ReadFile(r.filepath)
	if err != nil {
		if !os.IsNotExist(err) {
			r.logger.Warn("cannot read config, using environment", "path", r.filepath, "error", err)
		}
		return fromEnv()
	}

	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || trimmed[0] != '{' {
		r.logger.Warn("config is not a JSON object, using environment", "path", r.filepath)
		return fromEnv()
	}

	var cfg model.BridgeConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		r.logger.Warn("cannot parse config, using environment", "path", r.filepath, "error", err)
		return fromEnv()
	}
	return &cfg
}

// Save overwrites the record. The file is replaced atomically so a reader
// never sees a partial write; concurrent saves resolve to the last one.
func (r *JSONConfigRepository) Save(ctx context.Context, cfg *model.BridgeConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cfg == nil {
		cfg = &model.BridgeConfig{}
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(r.filepath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ConfigFileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.filepath); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	r.logger.Debug("config saved", "path", r.filepath)
	return nil
}

func fromEnv() *model.BridgeConfig {
	return &model.BridgeConfig{
		BridgeIP: os.Getenv(EnvBridgeIP),
		Username: os.Getenv(EnvUsername),
	}
}
