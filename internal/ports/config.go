package ports

import (
	"context"

	"hue-panel/internal/domain/model"
)

// ConfigRepository persists the bridge address and credential. Load never
// fails: a missing or broken record degrades to environment defaults.
type ConfigRepository interface {
	Load(ctx context.Context) *model.BridgeConfig
	Save(ctx context.Context, cfg *model.BridgeConfig) error
}
