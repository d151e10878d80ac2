package http

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/amimof/huego"
	"github.com/google/uuid"
	"hue-panel/internal/domain/model"
)

// Bridge is an in-memory Hue bridge: lights, groups, whitelisted users and
// the link button window.
type Bridge struct {
	mu        sync.Mutex
	lights    map[string]*huego.Light
	groups    map[string]*huego.Group
	users     map[string]string
	linkUntil time.Time

	now         func() time.Time
	newUsername func() string
}

func NewBridge() *Bridge {
	return &Bridge{
		lights: make(map[string]*huego.Light),
		groups: make(map[string]*huego.Group),
		users:  make(map[string]string),
		now:    time.Now,
		newUsername: func() string {
			return strings.ReplaceAll(uuid.NewString(), "-", "")
		},
	}
}

// AddUser whitelists a username without pairing.
func (b *Bridge) AddUser(username, deviceType string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.users[username] = deviceType
}

// AddLight registers a light. Color lights report hue, sat and colormode hs;
// the rest are dimmable only.
func (b *Bridge) AddLight(id, name string, color bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	state := &huego.State{On: false, Bri: 254, Reachable: true}
	light := &huego.Light{
		Name:             name,
		Type:             "Dimmable light",
		ModelID:          "LWB010",
		ManufacturerName: "Signify Netherlands B.V.",
		UniqueID:         "00:17:88:01:00:00:00:" + id + "-0b",
		State:            state,
	}
	if color {
		state.Hue = 8418
		state.Sat = 140
		state.ColorMode = "hs"
		light.Type = "Extended color light"
		light.ModelID = "LCT015"
	}
	b.lights[id] = light
	b.refreshGroupsLocked()
}

// AddGroup registers a group of the given type ("Room", "Zone", ...).
func (b *Bridge) AddGroup(id, name, groupType string, lightIDs ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.groups[id] = &huego.Group{
		Name:       name,
		Type:       groupType,
		Lights:     lightIDs,
		GroupState: &huego.GroupState{},
		State:      &huego.State{On: false, Bri: 254},
	}
	b.refreshGroupsLocked()
}

// RemoveLight deletes a light but leaves group memberships untouched, the
// way a bridge briefly reports a deleted bulb.
func (b *Bridge) RemoveLight(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.lights, id)
	b.refreshGroupsLocked()
}

// PressLinkButton opens the pairing window for d.
func (b *Bridge) PressLinkButton(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.linkUntil = b.now().Add(d)
}

// LightState returns a copy of a light's state.
func (b *Bridge) LightState(id string) (huego.State, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	l, ok := b.lights[id]
	if !ok {
		return huego.State{}, false
	}
	return *l.State, true
}

func (b *Bridge) authorized(username string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.users[username]
	return ok
}

func (b *Bridge) createUser(deviceType string) (string, *model.BridgeError) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if deviceType == "" {
		return "", &model.BridgeError{Type: 5, Address: "/", Description: "invalid/missing parameters in body"}
	}
	if !b.now().Before(b.linkUntil) {
		return "", &model.BridgeError{
			Type:        model.ErrTypeLinkButtonNotPressed,
			Address:     "",
			Description: "link button not pressed",
		}
	}
	username := b.newUsername()
	b.users[username] = deviceType
	return username, nil
}

func (b *Bridge) snapshotLights() map[string]huego.Light {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]huego.Light, len(b.lights))
	for id, l := range b.lights {
		cp := *l
		st := *l.State
		cp.State = &st
		out[id] = cp
	}
	return out
}

func (b *Bridge) snapshotGroups() map[string]huego.Group {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]huego.Group, len(b.groups))
	for id, g := range b.groups {
		cp := *g
		gs := *g.GroupState
		st := *g.State
		cp.GroupState = &gs
		cp.State = &st
		cp.Lights = append([]string(nil), g.Lights...)
		out[id] = cp
	}
	return out
}

// applyLight writes an update to one light. It returns the applied keys in
// key order for the success envelope.
func (b *Bridge) applyLight(id string, update map[string]any) ([]string, *model.BridgeError) {
	b.mu.Lock()
	defer b.mu.Unlock()
	l, ok := b.lights[id]
	if !ok {
		return nil, notAvailable("/lights/" + id)
	}
	keys, err := applyState(l.State, update, "/lights/"+id+"/state", l.State.ColorMode != "")
	b.refreshGroupsLocked()
	return keys, err
}

func (b *Bridge) applyGroup(id string, update map[string]any) ([]string, *model.BridgeError) {
	b.mu.Lock()
	defer b.mu.Unlock()
	g, ok := b.groups[id]
	if !ok {
		return nil, notAvailable("/groups/" + id)
	}
	color := false
	for _, lid := range g.Lights {
		if l, ok := b.lights[lid]; ok && l.State.ColorMode != "" {
			color = true
		}
	}
	keys, err := applyState(g.State, update, "/groups/"+id+"/action", color)
	if err != nil {
		return keys, err
	}
	for _, lid := range g.Lights {
		l, ok := b.lights[lid]
		if !ok {
			continue
		}
		member := update
		if l.State.ColorMode == "" {
			member = withoutColor(update)
		}
		applyState(l.State, member, "", l.State.ColorMode != "")
	}
	b.refreshGroupsLocked()
	return keys, nil
}

// refreshGroupsLocked recomputes any_on/all_on from member lights.
func (b *Bridge) refreshGroupsLocked() {
	for _, g := range b.groups {
		anyOn, allOn := false, len(g.Lights) > 0
		for _, lid := range g.Lights {
			l, ok := b.lights[lid]
			if !ok {
				continue
			}
			if l.State.On {
				anyOn = true
			} else {
				allOn = false
			}
		}
		g.GroupState = &huego.GroupState{AnyOn: anyOn, AllOn: allOn && anyOn}
		if !anyOn {
			g.State.On = false
		}
	}
}

func applyState(st *huego.State, update map[string]any, address string, color bool) ([]string, *model.BridgeError) {
	keys := make([]string, 0, len(update))
	for _, k := range sortedKeys(update) {
		v := update[k]
		switch k {
		case "on":
			on, ok := v.(bool)
			if !ok {
				return keys, invalidValue(address, k, v)
			}
			st.On = on
		case "bri":
			n, ok := v.(float64)
			if !ok || n < 1 || n > 254 {
				return keys, invalidValue(address, k, v)
			}
			st.Bri = uint8(n)
		case "hue":
			n, ok := v.(float64)
			if !ok || n < 0 || n > 65535 {
				return keys, invalidValue(address, k, v)
			}
			if !color {
				return keys, paramNotAvailable(address, k)
			}
			st.Hue = uint16(n)
			st.ColorMode = "hs"
		case "sat":
			n, ok := v.(float64)
			if !ok || n < 0 || n > 254 {
				return keys, invalidValue(address, k, v)
			}
			if !color {
				return keys, paramNotAvailable(address, k)
			}
			st.Sat = uint8(n)
			st.ColorMode = "hs"
		default:
			return keys, paramNotAvailable(address, k)
		}
		keys = append(keys, k)
	}
	return keys, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func notAvailable(address string) *model.BridgeError {
	return &model.BridgeError{
		Type:        model.ErrTypeResourceNotFound,
		Address:     address,
		Description: fmt.Sprintf("resource, %s, not available", address),
	}
}

func invalidValue(address, key string, v any) *model.BridgeError {
	return &model.BridgeError{
		Type:        7,
		Address:     address + "/" + key,
		Description: fmt.Sprintf("invalid value, %v, for parameter, %s", v, key),
	}
}

func paramNotAvailable(address, key string) *model.BridgeError {
	return &model.BridgeError{
		Type:        6,
		Address:     address + "/" + key,
		Description: fmt.Sprintf("parameter, %s, not available", key),
	}
}

func withoutColor(update map[string]any) map[string]any {
	out := make(map[string]any, len(update))
	for k, v := range update {
		if k == "hue" || k == "sat" {
			continue
		}
		out[k] = v
	}
	return out
}
