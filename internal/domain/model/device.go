package model

import "encoding/json"

// LightState is the UI-facing view of a single light.
type LightState struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	On            bool   `json:"on"`
	BrightnessPct int    `json:"brightness_pct"`
	SupportsColor bool   `json:"supports_color"`
}

// RoomState mirrors LightState for a bridge group of type Room.
type RoomState LightState

// GroupTypeRoom is the only group type surfaced as a room.
const GroupTypeRoom = "Room"

// WireLight is a light object as the bridge returns it. State is kept as a raw
// map so key presence (hue, bri, colormode) can be inspected.
type WireLight struct {
	Name  string         `json:"name"`
	State map[string]any `json:"state"`
}

// WireGroup is a group object as the bridge returns it.
type WireGroup struct {
	Name   string         `json:"name"`
	Type   string         `json:"type"`
	State  map[string]any `json:"state"`
	Action map[string]any `json:"action"`
	Lights []json.Number  `json:"lights"`
}

// StateUpdate is the body PUT to a light state or group action endpoint.
// Nil fields are omitted so only the intended attributes change.
type StateUpdate struct {
	On  *bool   `json:"on,omitempty"`
	Bri *uint8  `json:"bri,omitempty"`
	Hue *uint16 `json:"hue,omitempty"`
	Sat *uint8  `json:"sat,omitempty"`
}
