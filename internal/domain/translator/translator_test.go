package translator

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"hue-panel/internal/domain/model"
)

func TestBrightnessRoundTrip(t *testing.T) {
	for p := 1; p <= 100; p++ {
		bri := PercentToBrightness(p)
		got := BrightnessToPercent(float64(bri), true)
		assert.InDelta(t, p, got, 1, "percent %d -> bri %d -> %d", p, bri, got)
	}
}

func TestPercentToBrightness(t *testing.T) {
	assert.Equal(t, uint8(1), PercentToBrightness(0))
	assert.Equal(t, uint8(1), PercentToBrightness(-20))
	assert.Equal(t, uint8(127), PercentToBrightness(50))
	assert.Equal(t, uint8(254), PercentToBrightness(100))
	assert.Equal(t, uint8(254), PercentToBrightness(250))
}

func TestBrightnessToPercent(t *testing.T) {
	assert.Equal(t, 100, BrightnessToPercent(254.0, false))
	assert.Equal(t, 50, BrightnessToPercent(127.0, true))
	assert.Equal(t, 0, BrightnessToPercent(0.0, true))
	assert.Equal(t, 100, BrightnessToPercent(400.0, true))
	assert.Equal(t, 50, BrightnessToPercent(json.Number("127"), true))

	// Non-numeric
	assert.Equal(t, 100, BrightnessToPercent("bright", true))
	assert.Equal(t, 0, BrightnessToPercent("bright", false))
	assert.Equal(t, 0, BrightnessToPercent(nil, false))
}

func TestBrightnessFromState(t *testing.T) {
	assert.Equal(t, 100, BrightnessFromState(map[string]any{"on": false}, false))
	assert.Equal(t, 100, BrightnessFromState(nil, false))
	assert.Equal(t, 0, BrightnessFromState(map[string]any{"bri": nil}, false))
	assert.Equal(t, 20, BrightnessFromState(map[string]any{"bri": 51.0}, true))
}

func TestDegreesToHue(t *testing.T) {
	assert.Equal(t, uint16(0), DegreesToHue(0))
	assert.Equal(t, uint16(0), DegreesToHue(360))
	assert.Equal(t, uint16(32768), DegreesToHue(180))
	assert.Equal(t, uint16(49151), DegreesToHue(-90))
	assert.Equal(t, uint16(0), DegreesToHue(math.NaN()))

	for _, d := range []float64{-1e6, -720.5, -0.0001, 0.4, 359.9999, 720, 1e9} {
		h := DegreesToHue(d)
		assert.LessOrEqual(t, int(h), 65535)
	}
}

func TestPercentToSaturation(t *testing.T) {
	for s := 0.0; s <= 100; s += 0.5 {
		sat := PercentToSaturation(s)
		assert.LessOrEqual(t, int(sat), 254)
	}
	assert.Equal(t, uint8(0), PercentToSaturation(-5))
	assert.Equal(t, uint8(127), PercentToSaturation(50))
	assert.Equal(t, uint8(254), PercentToSaturation(150))
}

func TestSupportsColor(t *testing.T) {
	assert.True(t, SupportsColor(map[string]any{"hue": 1000.0}))
	assert.True(t, SupportsColor(map[string]any{"colormode": "xy"}))
	assert.True(t, SupportsColor(map[string]any{"colormode": "hs"}))
	assert.False(t, SupportsColor(map[string]any{"colormode": "ct"}))
	assert.False(t, SupportsColor(map[string]any{"on": true, "bri": 10.0}))
	assert.False(t, SupportsColor(nil))
}

func TestLightFromWire(t *testing.T) {
	l := LightFromWire(4, model.WireLight{
		Name:  "Desk",
		State: map[string]any{"on": true, "bri": 127.0, "hue": 100.0},
	})
	assert.Equal(t, model.LightState{ID: 4, Name: "Desk", On: true, BrightnessPct: 50, SupportsColor: true}, l)

	l = LightFromWire(9, model.WireLight{State: map[string]any{"on": "yes"}})
	assert.Equal(t, "Light 9", l.Name)
	assert.True(t, l.On)
	assert.Equal(t, 100, l.BrightnessPct)
	assert.False(t, l.SupportsColor)
}

func TestLightIsOn_LooseValues(t *testing.T) {
	cases := []struct {
		on   any
		want bool
	}{
		{true, true},
		{false, false},
		{nil, false},
		{1.0, true},
		{0.0, false},
		{json.Number("0"), false},
		{json.Number("2"), true},
		{"", false},
		{"false", true},
		{[]any{}, false},
		{map[string]any{"x": 1.0}, true},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, LightIsOn(model.WireLight{State: map[string]any{"on": c.on}}), "on=%#v", c.on)
	}
	assert.False(t, LightIsOn(model.WireLight{State: map[string]any{}}))
}

func TestGroupIsOn(t *testing.T) {
	g := model.WireGroup{
		State:  map[string]any{"any_on": true},
		Action: map[string]any{"on": false},
	}
	assert.True(t, GroupIsOn(g))

	g = model.WireGroup{Action: map[string]any{"on": true}}
	assert.True(t, GroupIsOn(g))

	g = model.WireGroup{
		State:  map[string]any{"all_on": false},
		Action: map[string]any{"on": true},
	}
	assert.True(t, GroupIsOn(g))

	g = model.WireGroup{
		State:  map[string]any{"any_on": false},
		Action: map[string]any{"on": true},
	}
	assert.False(t, GroupIsOn(g))
}

func TestRoomFromWire(t *testing.T) {
	r := RoomFromWire(2, model.WireGroup{
		Type:   "Room",
		Action: map[string]any{"on": true, "bri": 254.0, "colormode": "ct"},
	})
	assert.Equal(t, model.RoomState{ID: 2, Name: "Room 2", On: true, BrightnessPct: 100}, r)
}

func TestMemberIDs(t *testing.T) {
	g := model.WireGroup{Lights: []json.Number{"3", "7", "x1", "-2"}}
	assert.Equal(t, []int{3, 7}, MemberIDs(g))
	assert.Empty(t, MemberIDs(model.WireGroup{}))
}

func TestParseID(t *testing.T) {
	id, ok := ParseID("12")
	assert.True(t, ok)
	assert.Equal(t, 12, id)

	_, ok = ParseID("abc")
	assert.False(t, ok)
}
