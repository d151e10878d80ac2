package ports

import (
	"context"

	"hue-panel/internal/domain/model"
)

// BridgeAPI is the bridge's v1 REST surface. Implementations resolve the
// bridge address and credential on every call and turn any error envelope
// into a *model.BridgeError.
type BridgeAPI interface {
	Lights(ctx context.Context) (map[string]model.WireLight, error)
	Light(ctx context.Context, id int) (model.WireLight, error)
	SetLightState(ctx context.Context, id int, update model.StateUpdate) error

	Groups(ctx context.Context) (map[string]model.WireGroup, error)
	Group(ctx context.Context, id int) (model.WireGroup, error)
	SetGroupAction(ctx context.Context, id int, update model.StateUpdate) error

	// CreateUser asks the bridge at ip for a new credential. It needs no
	// stored credential and succeeds only after the link button is pressed.
	CreateUser(ctx context.Context, ip, deviceType string) (string, error)
}

// BridgeFinder locates candidate bridge addresses on the local network.
type BridgeFinder interface {
	Name() string
	Find(ctx context.Context) ([]string, error)
}
