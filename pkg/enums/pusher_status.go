package enums

import "fmt"

// PusherStatus records the outcome of handing an order to an upstream vendor.
// A nil pointer on the order means no dispatch has been attempted yet.
type PusherStatus string

const (
	PusherStatusDisabled PusherStatus = "disabled"
	PusherStatusSuccess  PusherStatus = "success"
	PusherStatusFailed   PusherStatus = "failed"
)

var validPusherStatuses = []PusherStatus{
	PusherStatusDisabled,
	PusherStatusSuccess,
	PusherStatusFailed,
}

func (p PusherStatus) String() string {
	return string(p)
}

func (p PusherStatus) IsValid() bool {
	for _, candidate := range validPusherStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

func ParsePusherStatus(value string) (PusherStatus, error) {
	for _, candidate := range validPusherStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pusher status %q", value)
}
