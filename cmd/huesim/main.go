package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	simhttp "hue-panel/internal/adapters/input/http"
	"hue-panel/internal/adapters/input/ssdp"
	"hue-panel/internal/infra/logger"
	"hue-panel/internal/infra/settings"
)

func main() {
	_ = godotenv.Load()

	addr := flag.String("addr", ":80", "HTTP listen address")
	ip := flag.String("ip", os.Getenv("LOCAL_IP"), "address advertised over SSDP (default: first non-loopback IPv4)")
	noSSDP := flag.Bool("no-ssdp", false, "do not answer SSDP searches")
	username := flag.String("username", os.Getenv("HUE_USERNAME"), "whitelist this username up front")
	level := flag.String("log-level", "info", "debug, info, warn or error")
	flag.Parse()

	log, closeLog, err := logger.New(settings.LoggingConfig{Level: *level, Format: "text", Output: "stderr"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "huesim: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	if *ip == "" {
		*ip = localIP()
	}
	if *ip == "" {
		log.Error("could not determine local IP, set -ip or LOCAL_IP")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bridge := seed(simhttp.NewBridge())
	if *username != "" {
		bridge.AddUser(*username, "huesim#preset")
	}

	if !*noSSDP {
		port := 80
		if _, p, err := net.SplitHostPort(*addr); err == nil {
			if n, err := strconv.Atoi(p); err == nil {
				port = n
			}
		}
		go func() {
			if err := ssdp.NewServer(*ip, port, log).Start(ctx); err != nil {
				log.Warn("ssdp responder stopped", "error", err)
			}
		}()
	}

	log.Info("simulated bridge ready", "ip", *ip, "addr", *addr)
	if err := simhttp.NewServer(bridge, *ip, log).ListenAndServe(ctx, *addr); err != nil {
		log.Error("http server failed", "error", err)
		os.Exit(1)
	}
}

// seed fills the bridge with a small demo home.
func seed(b *simhttp.Bridge) *simhttp.Bridge {
	b.AddLight("1", "Sofa", true)
	b.AddLight("2", "Reading lamp", false)
	b.AddLight("3", "Ceiling", true)
	b.AddLight("4", "Counter", false)
	b.AddLight("5", "Porch", false)
	b.AddGroup("1", "Living room", "Room", "1", "2", "3")
	b.AddGroup("2", "Kitchen", "Room", "4")
	b.AddGroup("3", "Downstairs", "Zone", "1", "2", "3", "4")
	b.AddGroup("4", "Garden", "Room", "5")
	return b
}

func localIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return ""
	}
	for _, address := range addrs {
		if ipnet, ok := address.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ipnet.IP.To4() != nil {
				return ipnet.IP.String()
			}
		}
	}
	return ""
}
