package enums

import (
	"fmt"
	"strings"
)

// Network identifies the mobile operator a bundle is sold for.
// Stored values are historically mixed case ("MTN", "Ishare"); every
// comparison goes through ParseNetwork so casing never changes routing.
type Network string

const (
	NetworkMTN     Network = "mtn"
	NetworkTelecel Network = "telecel"
	NetworkIshare  Network = "ishare"
	NetworkBigtime Network = "bigtime"
)

var validNetworks = []Network{
	NetworkMTN,
	NetworkTelecel,
	NetworkIshare,
	NetworkBigtime,
}

// String implements fmt.Stringer.
func (n Network) String() string {
	return string(n)
}

// IsValid reports whether the value is a known Network.
func (n Network) IsValid() bool {
	for _, candidate := range validNetworks {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNetwork converts raw input into a Network, ignoring case and padding.
func ParseNetwork(value string) (Network, error) {
	normalized := Network(strings.ToLower(strings.TrimSpace(value)))
	if normalized.IsValid() {
		return normalized, nil
	}
	return "", fmt.Errorf("invalid network %q", value)
}

// NetworkIs compares a stored network value against a canonical Network.
func NetworkIs(value string, network Network) bool {
	parsed, err := ParseNetwork(value)
	return err == nil && parsed == network
}
