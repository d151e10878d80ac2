// Package translator converts between the bridge's native value ranges and the
// percent/degree scales the panel works with.
//
// Native ranges: brightness 0-254 (0 is reserved by the bridge), hue 0-65535,
// saturation 0-254.
package translator

import (
	"encoding/json"
	"math"
)

const (
	maxBri = 254
	maxHue = 65535
	maxSat = 254
)

// ClampPercent bounds p to [0,100].
func ClampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// BrightnessToPercent converts a raw bri value into a percentage. A
// non-numeric value falls back to 100 when on and 0 when off.
func BrightnessToPercent(raw any, on bool) int {
	bri, ok := toFloat(raw)
	if !ok {
		if on {
			return 100
		}
		return 0
	}
	return ClampPercent(int(math.Round(bri * 100 / maxBri)))
}

// BrightnessFromState reads bri out of a state or action object. An absent
// bri is read as full brightness.
func BrightnessFromState(state map[string]any, on bool) int {
	raw, ok := state["bri"]
	if !ok {
		raw = float64(maxBri)
	}
	return BrightnessToPercent(raw, on)
}

// PercentToBrightness converts a percentage into a native bri value. The
// result is never 0; callers route a 0% request to an on/off call instead.
func PercentToBrightness(pct int) uint8 {
	bri := int(math.Round(float64(ClampPercent(pct)) * maxBri / 100))
	if bri < 1 {
		bri = 1
	}
	if bri > maxBri {
		bri = maxBri
	}
	return uint8(bri)
}

// DegreesToHue wraps deg into [0,360) and scales it to the native hue range.
func DegreesToHue(deg float64) uint16 {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return 0
	}
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	hue := math.Round(deg * maxHue / 360)
	if hue > maxHue {
		hue = maxHue
	}
	return uint16(hue)
}

// PercentToSaturation clamps pct to [0,100] and scales it to the native range.
func PercentToSaturation(pct float64) uint8 {
	if math.IsNaN(pct) || pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return uint8(math.Round(pct * maxSat / 100))
}

// SupportsColor reports whether a light state or group action object looks
// color capable: it carries a hue field or a color mode of hs or xy.
// The result is advisory only.
func SupportsColor(state map[string]any) bool {
	if _, ok := state["hue"]; ok {
		return true
	}
	switch state["colormode"] {
	case "hs", "xy":
		return true
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint8:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
