package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	simhttp "hue-panel/internal/adapters/input/http"
	"hue-panel/internal/domain/service"
)

type harness struct {
	bridge   *simhttp.Bridge
	host     string
	config   string
	settings string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("HUE_BRIDGE_IP", "")
	t.Setenv("HUE_USERNAME", "")
	t.Setenv("HUE_PANEL_LOG_LEVEL", "")
	t.Setenv("HUE_PANEL_CONFIG", "")

	b := simhttp.NewBridge()
	b.AddLight("1", "Desk", true)
	b.AddLight("2", "Hall", false)
	b.AddGroup("1", "Office", "Room", "1", "2")
	srv := httptest.NewServer(simhttp.NewServer(b, "127.0.0.1", nil).Handler())
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	settingsPath := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(settingsPath, []byte("logging:\n  level: error\n"), 0o644))

	return &harness{
		bridge:   b,
		host:     strings.TrimPrefix(srv.URL, "http://"),
		config:   filepath.Join(dir, "hue_config.json"),
		settings: settingsPath,
	}
}

func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"--config", h.config, "--settings", h.settings}, args...)
	err := run(context.Background(), full, &stdout, &stderr)
	return stdout.String(), err
}

func TestRun_PairAndControl(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "pair", h.host)
	require.ErrorIs(t, err, service.ErrLinkButtonNotPressed)

	h.bridge.PressLinkButton(time.Minute)
	out, err := h.run(t, "pair", h.host)
	require.NoError(t, err)
	assert.Contains(t, out, "paired with")

	out, err = h.run(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, h.host)

	_, err = h.run(t, "bri", "1", "50")
	require.NoError(t, err)
	st, _ := h.bridge.LightState("1")
	assert.True(t, st.On)
	assert.Equal(t, uint8(127), st.Bri)

	out, err = h.run(t, "lights")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Desk")
	assert.Contains(t, lines[0], " 50%")
	assert.Contains(t, lines[0], "color")

	out, err = h.run(t, "rooms")
	require.NoError(t, err)
	assert.Contains(t, out, "Office")
	assert.Contains(t, out, " on ")

	_, err = h.run(t, "room-off", "1")
	require.NoError(t, err)
	st, _ = h.bridge.LightState("1")
	assert.False(t, st.On)
}

func TestRun_PairWithExistingUsername(t *testing.T) {
	h := newHarness(t)
	h.bridge.AddUser("known", "other#device")

	_, err := h.run(t, "pair", h.host, "known")
	require.NoError(t, err)

	out, err := h.run(t, "lights", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Hall")
}

func TestRun_ArgumentErrors(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "bri", "1")
	assert.ErrorContains(t, err, "missing brightness percent")

	_, err = h.run(t, "color", "x", "1", "2")
	assert.ErrorContains(t, err, `invalid id "x"`)

	_, err = h.run(t, "dance")
	assert.ErrorContains(t, err, "unknown command")

	_, err = h.run(t)
	assert.Error(t, err)
}

func TestRun_NotConfigured(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "lights")

	assert.ErrorContains(t, err, "not configured")
}
