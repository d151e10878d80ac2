package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"

	"hue-panel/internal/adapters/output/hueapi"
	"hue-panel/internal/adapters/output/lan"
	"hue-panel/internal/adapters/output/persistence"
	"hue-panel/internal/domain/model"
	"hue-panel/internal/domain/service"
	"hue-panel/internal/infra/logger"
	"hue-panel/internal/infra/settings"
	"hue-panel/internal/ports"
)

type app struct {
	out       io.Writer
	repo      *persistence.JSONConfigRepository
	lights    ports.LightControl
	pairing   *service.PairingService
	discovery ports.Discoverer
	config    *service.ConfigService
	logger    *slog.Logger
	closeLog  func() error
}

// newApp wires the services. An explicit configPath wins over the
// settings file's config_path; settings.yaml is looked up next to the record
// unless settingsPath is given.
func newApp(configPath, settingsPath string, out io.Writer) (*app, error) {
	explicit := configPath != ""
	if !explicit {
		configPath = persistence.DefaultConfigPath()
	}
	if settingsPath == "" {
		settingsPath = settings.PathNextTo(configPath)
	}
	cfg, err := settings.Load(settingsPath)
	if err != nil {
		return nil, err
	}
	if cfg.ConfigPath != "" && !explicit {
		configPath = cfg.ConfigPath
	}

	log, closeLog, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, err
	}

	repo := persistence.NewJSONConfigRepository(configPath, log)
	client := hueapi.NewClient(repo,
		hueapi.WithTimeouts(cfg.Bridge.Timeout, cfg.Bridge.PairTimeout),
		hueapi.WithLogger(log),
	)

	finders := []ports.BridgeFinder{
		lan.NewSweeper(cfg.Discovery.ProbeTimeout, cfg.Discovery.FallbackPrefixes,
			lan.WithWorkers(cfg.Discovery.Workers),
			lan.WithSweepLogger(log),
		),
	}
	if cfg.Discovery.MDNS {
		finders = append(finders, lan.NewMDNSFinder(cfg.Discovery.ListenWait, log))
	}
	if cfg.Discovery.SSDP {
		finders = append(finders, lan.NewSSDPFinder(cfg.Discovery.ListenWait, log))
	}

	return &app{
		out:       out,
		repo:      repo,
		lights:    service.NewLightService(client, log),
		pairing:   service.NewPairingService(client, repo, cfg.Bridge.DeviceType, log),
		discovery: service.NewDiscoveryService(log, finders...),
		config:    service.NewConfigService(repo),
		logger:    log,
		closeLog:  closeLog,
	}, nil
}

func (a *app) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "discover":
		return a.discover(ctx)
	case "pair":
		return a.pair(ctx, args)
	case "config":
		cfg := a.config.GetConfig(ctx)
		fmt.Fprintf(a.out, "file:      %s\nbridge_ip: %s\nusername:  %s\n", a.repo.Path(), cfg.BridgeIP, cfg.Username)
		return nil
	case "lights":
		return a.listLights(ctx, args)
	case "rooms":
		return a.listRooms(ctx)
	case "on", "off":
		id, err := intArg(args, 0, "light id")
		if err != nil {
			return err
		}
		return a.lights.SetOn(ctx, id, cmd == "on")
	case "room-on", "room-off":
		id, err := intArg(args, 0, "room id")
		if err != nil {
			return err
		}
		return a.lights.SetRoomOn(ctx, id, cmd == "room-on")
	case "bri", "room-bri":
		id, err := intArg(args, 0, "id")
		if err != nil {
			return err
		}
		pct, err := intArg(args, 1, "brightness percent")
		if err != nil {
			return err
		}
		if cmd == "bri" {
			return a.lights.SetBrightness(ctx, id, pct)
		}
		return a.lights.SetRoomBrightness(ctx, id, pct)
	case "color", "room-color":
		id, err := intArg(args, 0, "id")
		if err != nil {
			return err
		}
		deg, err := floatArg(args, 1, "hue degrees")
		if err != nil {
			return err
		}
		sat, err := floatArg(args, 2, "saturation percent")
		if err != nil {
			return err
		}
		if cmd == "color" {
			return a.lights.SetColorHS(ctx, id, deg, sat)
		}
		return a.lights.SetRoomColorHS(ctx, id, deg, sat)
	}
	return fmt.Errorf("unknown command: %s", cmd)
}

func (a *app) discover(ctx context.Context) error {
	ips, err := a.discovery.Discover(ctx)
	for _, ip := range ips {
		fmt.Fprintln(a.out, ip)
	}
	if err != nil {
		return err
	}
	if len(ips) == 0 {
		fmt.Fprintln(a.out, "no bridge found")
	}
	return nil
}

func (a *app) pair(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: pair <ip> [username]")
	}
	username := ""
	if len(args) > 1 {
		username = args[1]
	}
	if err := a.pairing.Connect(ctx, args[0], username); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "paired with %s\n", args[0])
	return nil
}

func (a *app) listLights(ctx context.Context, args []string) error {
	var (
		lights map[int]model.LightState
		err    error
	)
	if len(args) > 0 {
		room, convErr := intArg(args, 0, "room id")
		if convErr != nil {
			return convErr
		}
		lights, err = a.lights.ListLightsDetailedForRoom(ctx, room)
	} else {
		lights, err = a.lights.ListLightsDetailed(ctx)
	}
	if err != nil {
		return err
	}
	for _, id := range sortedIDs(lights) {
		printState(a.out, model.RoomState(lights[id]))
	}
	return nil
}

func (a *app) listRooms(ctx context.Context) error {
	rooms, err := a.lights.ListRoomsDetailed(ctx)
	if err != nil {
		return err
	}
	for _, id := range sortedIDs(rooms) {
		printState(a.out, rooms[id])
	}
	return nil
}

func printState(w io.Writer, s model.RoomState) {
	power := "off"
	if s.On {
		power = "on"
	}
	color := ""
	if s.SupportsColor {
		color = " color"
	}
	fmt.Fprintf(w, "%3d  %-24s %-3s %3d%%%s\n", s.ID, s.Name, power, s.BrightnessPct, color)
}

func sortedIDs[V any](m map[int]V) []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func intArg(args []string, i int, what string) (int, error) {
	if i >= len(args) {
		return 0, fmt.Errorf("missing %s", what)
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", what, args[i])
	}
	return n, nil
}

func floatArg(args []string, i int, what string) (float64, error) {
	if i >= len(args) {
		return 0, fmt.Errorf("missing %s", what)
	}
	f, err := strconv.ParseFloat(args[i], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", what, args[i])
	}
	return f, nil
}
