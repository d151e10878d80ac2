package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"hue-panel/internal/domain/model"
	"hue-panel/internal/ports"
)

// PairingState tracks where the credential exchange stands.
type PairingState int

const (
	PairingIdle PairingState = iota
	PairingInProgress
	PairingPaired
	PairingFailed
)

func (s PairingState) String() string {
	switch s {
	case PairingIdle:
		return "idle"
	case PairingInProgress:
		return "pairing"
	case PairingPaired:
		return "paired"
	case PairingFailed:
		return "failed"
	}
	return fmt.Sprintf("PairingState(%d)", int(s))
}

var (
	// ErrLinkButtonNotPressed means the bridge is reachable but its link
	// button was not pressed. Press it and call Pair again.
	ErrLinkButtonNotPressed = errors.New("link button not pressed")

	// ErrPairingFailed wraps every other pairing failure.
	ErrPairingFailed = errors.New("pairing failed")
)

// PairingService runs the one-shot credential exchange with a bridge and
// stores the result.
type PairingService struct {
	api        ports.BridgeAPI
	repo       ports.ConfigRepository
	deviceType string
	logger     *slog.Logger

	mu    sync.Mutex
	state PairingState
}

var _ ports.Pairer = (*PairingService)(nil)

func NewPairingService(api ports.BridgeAPI, repo ports.ConfigRepository, deviceType string, logger *slog.Logger) *PairingService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &PairingService{
		api:        api,
		repo:       repo,
		deviceType: deviceType,
		logger:     logger.With("component", "pairing"),
	}
}

// State returns the current pairing state.
func (s *PairingService) State() PairingState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Reset returns the flow to Idle.
func (s *PairingService) Reset() {
	s.setState(PairingIdle)
}

// Pair asks the bridge at ip for a credential and saves ip and credential
// together. The bridge only answers with a credential within its own window
// after the physical link button is pressed; until then the error wraps
// ErrLinkButtonNotPressed and the caller may retry.
func (s *PairingService) Pair(ctx context.Context, ip string) (string, error) {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		s.setState(PairingFailed)
		return "", ErrBridgeIPRequired
	}

	s.setState(PairingInProgress)
	s.logger.Info("requesting credential", "ip", ip, "devicetype", s.deviceType)

	username, err := s.api.CreateUser(ctx, ip, s.deviceType)
	if err != nil {
		s.setState(PairingFailed)
		var be *model.BridgeError
		if errors.As(err, &be) && be.Type == model.ErrTypeLinkButtonNotPressed {
			s.logger.Info("link button not pressed", "ip", ip)
			return "", fmt.Errorf("%w: %w", ErrLinkButtonNotPressed, err)
		}
		s.logger.Warn("pairing failed", "ip", ip, "error", err)
		return "", fmt.Errorf("%w: %w", ErrPairingFailed, err)
	}

	if err := s.repo.Save(ctx, &model.BridgeConfig{BridgeIP: ip, Username: username}); err != nil {
		s.setState(PairingFailed)
		return "", fmt.Errorf("%w: save credential: %w", ErrPairingFailed, err)
	}

	s.setState(PairingPaired)
	s.logger.Info("paired", "ip", ip)
	return username, nil
}

// Connect stores ip with an existing username, or pairs when username is
// blank.
func (s *PairingService) Connect(ctx context.Context, ip, username string) error {
	ip = strings.TrimSpace(ip)
	username = strings.TrimSpace(username)
	if ip == "" {
		return ErrBridgeIPRequired
	}
	if username == "" {
		_, err := s.Pair(ctx, ip)
		return err
	}
	if err := s.repo.Save(ctx, &model.BridgeConfig{BridgeIP: ip, Username: username}); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	s.setState(PairingPaired)
	return nil
}

func (s *PairingService) setState(st PairingState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}
