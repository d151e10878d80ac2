package model

import "fmt"

// Error types the bridge reports in its error envelope.
const (
	ErrTypeUnauthorizedUser     = 1
	ErrTypeResourceNotFound     = 3
	ErrTypeLinkButtonNotPressed = 101
)

// BridgeError is an explicit error returned by the bridge inside its
// success/error envelope.
type BridgeError struct {
	Type        int    `json:"type"`
	Address     string `json:"address"`
	Description string `json:"description"`
}

func (e *BridgeError) Error() string {
	return fmt.Sprintf("hue error %d: %s (%s)", e.Type, e.Description, e.Address)
}
