package service

import (
	"context"
	"fmt"
	"log/slog"

	"hue-panel/internal/domain/model"
	"hue-panel/internal/domain/translator"
	"hue-panel/internal/ports"
)

// LightService reads and drives lights and rooms on the paired bridge.
// Nothing is cached: every call issues fresh requests.
type LightService struct {
	api    ports.BridgeAPI
	logger *slog.Logger
}

var _ ports.LightControl = (*LightService)(nil)

func NewLightService(api ports.BridgeAPI, logger *slog.Logger) *LightService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LightService{
		api:    api,
		logger: logger.With("component", "lights"),
	}
}

func (s *LightService) ListLightsDetailed(ctx context.Context) (map[int]model.LightState, error) {
	wire, err := s.api.Lights(ctx)
	if err != nil {
		return nil, fmt.Errorf("list lights: %w", err)
	}
	out := make(map[int]model.LightState, len(wire))
	for key, l := range wire {
		id, ok := translator.ParseID(key)
		if !ok {
			s.logger.Warn("skipping light with non-numeric id", "id", key)
			continue
		}
		out[id] = translator.LightFromWire(id, l)
	}
	return out, nil
}

func (s *LightService) LightIsOn(ctx context.Context, id int) (bool, error) {
	l, err := s.api.Light(ctx, id)
	if err != nil {
		return false, fmt.Errorf("light %d: %w", id, err)
	}
	return translator.LightIsOn(l), nil
}

func (s *LightService) SetOn(ctx context.Context, id int, on bool) error {
	if err := s.api.SetLightState(ctx, id, model.StateUpdate{On: &on}); err != nil {
		return fmt.Errorf("set light %d on=%t: %w", id, on, err)
	}
	return nil
}

// SetBrightness sets a light to pct percent. Zero or less turns the light off
// through the on/off call, since the bridge reserves bri 0.
func (s *LightService) SetBrightness(ctx context.Context, id int, pct int) error {
	pct = translator.ClampPercent(pct)
	if pct == 0 {
		return s.SetOn(ctx, id, false)
	}
	if err := s.api.SetLightState(ctx, id, brightnessUpdate(pct)); err != nil {
		return fmt.Errorf("set light %d brightness %d%%: %w", id, pct, err)
	}
	return nil
}

func (s *LightService) SetColorHS(ctx context.Context, id int, hueDeg, satPct float64) error {
	if err := s.api.SetLightState(ctx, id, colorUpdate(hueDeg, satPct)); err != nil {
		return fmt.Errorf("set light %d color: %w", id, err)
	}
	return nil
}

// ListRoomsDetailed returns every group of type Room.
func (s *LightService) ListRoomsDetailed(ctx context.Context) (map[int]model.RoomState, error) {
	wire, err := s.api.Groups(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	out := make(map[int]model.RoomState)
	for key, g := range wire {
		if !translator.IsRoom(g) {
			continue
		}
		id, ok := translator.ParseID(key)
		if !ok {
			s.logger.Warn("skipping group with non-numeric id", "id", key)
			continue
		}
		out[id] = translator.RoomFromWire(id, g)
	}
	return out, nil
}

// ListLightsDetailedForRoom returns the room's member lights. Members the
// bridge no longer lists are left out.
func (s *LightService) ListLightsDetailedForRoom(ctx context.Context, roomID int) (map[int]model.LightState, error) {
	g, err := s.api.Group(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("room %d: %w", roomID, err)
	}
	members := translator.MemberIDs(g)
	if len(members) == 0 {
		return map[int]model.LightState{}, nil
	}

	wire, err := s.api.Lights(ctx)
	if err != nil {
		return nil, fmt.Errorf("room %d lights: %w", roomID, err)
	}
	out := make(map[int]model.LightState, len(members))
	for _, id := range members {
		l, ok := wire[fmt.Sprint(id)]
		if !ok {
			s.logger.Debug("room member missing from light list", "room", roomID, "id", id)
			continue
		}
		out[id] = translator.LightFromWire(id, l)
	}
	return out, nil
}

func (s *LightService) RoomIsOn(ctx context.Context, id int) (bool, error) {
	g, err := s.api.Group(ctx, id)
	if err != nil {
		return false, fmt.Errorf("room %d: %w", id, err)
	}
	return translator.GroupIsOn(g), nil
}

func (s *LightService) SetRoomOn(ctx context.Context, id int, on bool) error {
	if err := s.api.SetGroupAction(ctx, id, model.StateUpdate{On: &on}); err != nil {
		return fmt.Errorf("set room %d on=%t: %w", id, on, err)
	}
	return nil
}

func (s *LightService) SetRoomBrightness(ctx context.Context, id int, pct int) error {
	pct = translator.ClampPercent(pct)
	if pct == 0 {
		return s.SetRoomOn(ctx, id, false)
	}
	if err := s.api.SetGroupAction(ctx, id, brightnessUpdate(pct)); err != nil {
		return fmt.Errorf("set room %d brightness %d%%: %w", id, pct, err)
	}
	return nil
}

func (s *LightService) SetRoomColorHS(ctx context.Context, id int, hueDeg, satPct float64) error {
	if err := s.api.SetGroupAction(ctx, id, colorUpdate(hueDeg, satPct)); err != nil {
		return fmt.Errorf("set room %d color: %w", id, err)
	}
	return nil
}

func brightnessUpdate(pct int) model.StateUpdate {
	on := true
	bri := translator.PercentToBrightness(pct)
	return model.StateUpdate{On: &on, Bri: &bri}
}

func colorUpdate(hueDeg, satPct float64) model.StateUpdate {
	on := true
	hue := translator.DegreesToHue(hueDeg)
	sat := translator.PercentToSaturation(satPct)
	return model.StateUpdate{On: &on, Hue: &hue, Sat: &sat}
}
