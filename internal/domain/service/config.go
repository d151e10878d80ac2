package service

import (
	"context"
	"errors"
	"strings"

	"hue-panel/internal/domain/model"
	"hue-panel/internal/ports"
)

// ErrBridgeIPRequired is returned when a bridge address is needed but blank.
var ErrBridgeIPRequired = errors.New("bridge IP is required")

// ConfigService exposes the stored bridge record to the settings screen.
type ConfigService struct {
	repo ports.ConfigRepository
}

func NewConfigService(repo ports.ConfigRepository) *ConfigService {
	return &ConfigService{repo: repo}
}

// GetConfig returns the stored record, or environment defaults.
func (s *ConfigService) GetConfig(ctx context.Context) *model.BridgeConfig {
	return s.repo.Load(ctx)
}

// UpdateConfig overwrites the whole record. Both fields are always written.
func (s *ConfigService) UpdateConfig(ctx context.Context, bridgeIP, username string) error {
	bridgeIP = strings.TrimSpace(bridgeIP)
	if bridgeIP == "" {
		return ErrBridgeIPRequired
	}
	return s.repo.Save(ctx, &model.BridgeConfig{
		BridgeIP: bridgeIP,
		Username: strings.TrimSpace(username),
	})
}
