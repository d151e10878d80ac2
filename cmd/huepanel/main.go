package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"hue-panel/internal/domain/service"
)

func main() {
	// HUE_BRIDGE_IP / HUE_USERNAME may come from a .env file; a missing one is fine.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "huepanel: %v\n", err)
		if errors.Is(err, service.ErrLinkButtonNotPressed) {
			fmt.Fprintln(os.Stderr, "Press the link button on the bridge and run pair again.")
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("huepanel", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path of the bridge record (default: user config dir)")
	settingsPath := fs.String("settings", "", "path of settings.yaml (default: next to the bridge record)")
	fs.Usage = func() { showUsage(stderr, fs) }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() == 0 {
		showUsage(stderr, fs)
		return errors.New("no command given")
	}

	a, err := newApp(*configPath, *settingsPath, stdout)
	if err != nil {
		return err
	}
	defer a.closeLog()

	cmd := fs.Arg(0)
	a.logger.Debug("running command", "command", cmd)
	return a.dispatch(ctx, cmd, fs.Args()[1:])
}

func showUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprint(w, `huepanel - control Philips Hue lights from the command line

USAGE:
    huepanel [FLAGS] COMMAND [ARGS]

COMMANDS:
    discover                      Sweep the LAN for bridges
    pair <ip> [username]          Pair with a bridge (press its link button first),
                                  or store an existing username
    config                        Show the stored bridge record
    lights [room]                 List lights, optionally only a room's members
    rooms                         List rooms
    on|off <light>                Switch a light
    bri <light> <pct>             Set brightness, 0 switches off
    color <light> <deg> <sat>     Set hue (degrees) and saturation (percent)
    room-on|room-off <room>
    room-bri <room> <pct>
    room-color <room> <deg> <sat>

ENVIRONMENT:
    HUE_BRIDGE_IP, HUE_USERNAME   Used when no bridge record exists (.env honoured)
    HUE_PANEL_LOG_LEVEL           Overrides logging.level

FLAGS:
`)
	fs.PrintDefaults()
}
