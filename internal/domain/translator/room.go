package translator

import (
	"fmt"

	"hue-panel/internal/domain/model"
)

// IsRoom reports whether a group is a Room as opposed to a zone,
// entertainment area or light group.
func IsRoom(g model.WireGroup) bool {
	return g.Type == model.GroupTypeRoom
}

// GroupIsOn prefers the live state.any_on indicator and falls back to the
// last commanded action.on when the bridge does not report it.
func GroupIsOn(g model.WireGroup) bool {
	if anyOn, ok := g.State["any_on"]; ok {
		return truthy(anyOn)
	}
	return boolField(g.Action, "on")
}

// RoomFromWire builds the panel view of a room. Brightness and color
// capability come from the group's aggregate action object.
func RoomFromWire(id int, g model.WireGroup) model.RoomState {
	on := GroupIsOn(g)
	name := g.Name
	if name == "" {
		name = fmt.Sprintf("Room %d", id)
	}
	return model.RoomState{
		ID:            id,
		Name:          name,
		On:            on,
		BrightnessPct: BrightnessFromState(g.Action, on),
		SupportsColor: SupportsColor(g.Action),
	}
}

// MemberIDs returns the numeric ids of the group's lights, skipping any the
// bridge reports in an unexpected form.
func MemberIDs(g model.WireGroup) []int {
	ids := make([]int, 0, len(g.Lights))
	for _, n := range g.Lights {
		if id, ok := ParseID(n.String()); ok {
			ids = append(ids, id)
		}
	}
	return ids
}
