package ports

import (
	"context"

	"hue-panel/internal/domain/model"
)

// LightControl is what the panel's screens call to read and drive lights
// and rooms. Every call is a fresh blocking request to the bridge.
type LightControl interface {
	ListLightsDetailed(ctx context.Context) (map[int]model.LightState, error)
	LightIsOn(ctx context.Context, id int) (bool, error)
	SetOn(ctx context.Context, id int, on bool) error
	SetBrightness(ctx context.Context, id int, pct int) error
	SetColorHS(ctx context.Context, id int, hueDeg, satPct float64) error

	ListRoomsDetailed(ctx context.Context) (map[int]model.RoomState, error)
	ListLightsDetailedForRoom(ctx context.Context, roomID int) (map[int]model.LightState, error)
	RoomIsOn(ctx context.Context, id int) (bool, error)
	SetRoomOn(ctx context.Context, id int, on bool) error
	SetRoomBrightness(ctx context.Context, id int, pct int) error
	SetRoomColorHS(ctx context.Context, id int, hueDeg, satPct float64) error
}

// Discoverer returns sorted candidate bridge addresses.
type Discoverer interface {
	Discover(ctx context.Context) ([]string, error)
}

// Pairer exchanges a link-button press for a stored credential.
type Pairer interface {
	Pair(ctx context.Context, ip string) (string, error)
	Connect(ctx context.Context, ip, username string) error
}
