package model

// BridgeConfig is the single persisted record addressing the paired bridge.
// Username stays empty until pairing succeeds.
type BridgeConfig struct {
	BridgeIP string `json:"bridge_ip"`
	Username string `json:"username"`
}

// IsPaired reports whether both the address and the credential are known.
func (c *BridgeConfig) IsPaired() bool {
	return c != nil && c.BridgeIP != "" && c.Username != ""
}

// DefaultFallbackPrefixes returns the /24 prefixes swept when the local
// address cannot be determined. Each call returns a new slice.
func DefaultFallbackPrefixes() []string {
	return []string{"192.168.1.", "192.168.0.", "10.0.0."}
}
