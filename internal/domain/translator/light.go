package translator

import (
	"encoding/json"
	"fmt"
	"strconv"

	"hue-panel/internal/domain/model"
)

// LightFromWire builds the panel view of a light from its bridge object.
func LightFromWire(id int, w model.WireLight) model.LightState {
	on := boolField(w.State, "on")
	name := w.Name
	if name == "" {
		name = fmt.Sprintf("Light %d", id)
	}
	return model.LightState{
		ID:            id,
		Name:          name,
		On:            on,
		BrightnessPct: BrightnessFromState(w.State, on),
		SupportsColor: SupportsColor(w.State),
	}
}

// LightIsOn reads state.on. Bridges send a boolean; other values follow
// truthy.
func LightIsOn(w model.WireLight) bool {
	return boolField(w.State, "on")
}

// ParseID converts a bridge resource key into a numeric id. Bridge ids are
// non-negative decimal strings.
func ParseID(key string) (int, bool) {
	id, err := strconv.Atoi(key)
	if err != nil || id < 0 {
		return 0, false
	}
	return id, true
}

func boolField(m map[string]any, key string) bool {
	return truthy(m[key])
}

// truthy treats null, false, zero, "" and empty containers as false and
// everything else as true.
func truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case float64:
		return v != 0
	case int:
		return v != 0
	case json.Number:
		f, err := v.Float64()
		return err != nil || f != 0
	case string:
		return v != ""
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	}
	return true
}
