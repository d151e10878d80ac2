package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"hue-panel/internal/domain/model"
)

// ServerHeader is what a v1 bridge reports on every HTTP response.
const ServerHeader = "Linux/3.14.0 UPnP/1.0 IpBridge/1.26.0"

// LinkButtonWindow is how long a press of the simulated link button lasts.
const LinkButtonWindow = 30 * time.Second

// Server exposes a Bridge through the Hue v1 REST API.
type Server struct {
	bridge *Bridge
	ip     string
	logger *slog.Logger
}

func NewServer(bridge *Bridge, ip string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		bridge: bridge,
		ip:     ip,
		logger: logger.With("component", "huesim"),
	}
}

// Handler returns the routing for the simulator. It is what ListenAndServe
// serves, exported for httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/description.xml", s.handleDescription)
	mux.HandleFunc("/api", s.handleAPI)
	mux.HandleFunc("/api/", s.handleAPI)
	mux.HandleFunc("/linkbutton", s.handleLinkButton)
	return s.withServerHeader(mux)
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("simulator listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) withServerHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", ServerHeader)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleDescription(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/xml")
	fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8" ?>
<root xmlns="urn:schemas-upnp-org:device-1-0">
<specVersion>
<major>1</major>
<minor>0</minor>
</specVersion>
<URLBase>http://%s:80/</URLBase>
<device>
<deviceType>urn:schemas-upnp-org:device:Basic:1</deviceType>
<friendlyName>Hue Bridge (%s)</friendlyName>
<manufacturer>Signify</manufacturer>
<manufacturerURL>http://www.philips-hue.com</manufacturerURL>
<modelDescription>Philips hue Personal Wireless Lighting</modelDescription>
<modelName>Philips hue bridge 2015</modelName>
<modelNumber>BSB002</modelNumber>
<modelURL>http://www.philips-hue.com</modelURL>
<serialNumber>001788102201</serialNumber>
<UDN>uuid:2f402f80-da50-11e1-9b23-001788102201</UDN>
</device>
</root>`, s.ip, s.ip)
}

func (s *Server) handleLinkButton(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.bridge.PressLinkButton(LinkButtonWindow)
	s.logger.Info("link button pressed", "window", LinkButtonWindow)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api"), "/")

	if path == "" {
		if r.Method != http.MethodPost {
			writeError(w, &model.BridgeError{Type: 4, Address: "/", Description: "method, " + r.Method + ", not available for resource, /"})
			return
		}
		s.handleRegister(w, r)
		return
	}

	parts := strings.Split(path, "/")
	username, sub := parts[0], parts[1:]
	if !s.bridge.authorized(username) {
		address := "/"
		if len(sub) > 0 {
			address += strings.Join(sub, "/")
		}
		writeError(w, &model.BridgeError{Type: model.ErrTypeUnauthorizedUser, Address: address, Description: "unauthorized user"})
		return
	}

	if len(sub) == 0 {
		s.handleFullState(w)
		return
	}

	switch {
	case sub[0] == "lights" && len(sub) == 1:
		writeJSON(w, s.bridge.snapshotLights())
	case sub[0] == "lights" && len(sub) == 2:
		s.handleGetLight(w, sub[1])
	case sub[0] == "lights" && len(sub) == 3 && sub[2] == "state":
		s.handleSetState(w, r, "/lights/"+sub[1]+"/state", func(u map[string]any) ([]string, *model.BridgeError) {
			return s.bridge.applyLight(sub[1], u)
		})
	case sub[0] == "groups" && len(sub) == 1:
		writeJSON(w, s.bridge.snapshotGroups())
	case sub[0] == "groups" && len(sub) == 2:
		s.handleGetGroup(w, sub[1])
	case sub[0] == "groups" && len(sub) == 3 && sub[2] == "action":
		s.handleSetState(w, r, "/groups/"+sub[1]+"/action", func(u map[string]any) ([]string, *model.BridgeError) {
			return s.bridge.applyGroup(sub[1], u)
		})
	default:
		writeError(w, notAvailable("/"+strings.Join(sub, "/")))
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DeviceType string `json:"devicetype"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &model.BridgeError{Type: 2, Address: "/", Description: "body contains invalid json"})
		return
	}
	username, be := s.bridge.createUser(req.DeviceType)
	if be != nil {
		writeError(w, be)
		return
	}
	s.logger.Info("user created", "devicetype", req.DeviceType)
	writeJSON(w, []map[string]any{{"success": map[string]string{"username": username}}})
}

func (s *Server) handleFullState(w http.ResponseWriter) {
	writeJSON(w, map[string]any{
		"lights": s.bridge.snapshotLights(),
		"groups": s.bridge.snapshotGroups(),
		"config": map[string]any{
			"name":       "Philips hue",
			"ipaddress":  s.ip,
			"swversion":  "1926.0",
			"apiversion": "1.26.0",
			"mac":        "00:17:88:10:22:01",
			"bridgeid":   "001788FFFE102201",
			"modelid":    "BSB002",
		},
	})
}

func (s *Server) handleGetLight(w http.ResponseWriter, id string) {
	lights := s.bridge.snapshotLights()
	l, ok := lights[id]
	if !ok {
		writeError(w, notAvailable("/lights/"+id))
		return
	}
	writeJSON(w, l)
}

func (s *Server) handleGetGroup(w http.ResponseWriter, id string) {
	groups := s.bridge.snapshotGroups()
	g, ok := groups[id]
	if !ok {
		writeError(w, notAvailable("/groups/"+id))
		return
	}
	writeJSON(w, g)
}

// handleSetState answers a PUT with one success entry per applied key,
// followed by the error that stopped the update, if any.
func (s *Server) handleSetState(w http.ResponseWriter, r *http.Request, address string, apply func(map[string]any) ([]string, *model.BridgeError)) {
	if r.Method != http.MethodPut {
		writeError(w, &model.BridgeError{Type: 4, Address: address, Description: "method, " + r.Method + ", not available for resource, " + address})
		return
	}

	var update map[string]any
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, &model.BridgeError{Type: 2, Address: address, Description: "body contains invalid json"})
		return
	}

	applied, be := apply(update)
	resp := make([]map[string]any, 0, len(applied)+1)
	for _, k := range applied {
		resp = append(resp, map[string]any{
			"success": map[string]any{address + "/" + k: update[k]},
		})
	}
	if be != nil {
		resp = append(resp, map[string]any{"error": be})
	}
	writeJSON(w, resp)
}

// writeError sends a single-element error envelope. Like a real bridge the
// status stays 200.
func writeError(w http.ResponseWriter, be *model.BridgeError) {
	writeJSON(w, []map[string]any{{"error": be}})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
