package enums

import "fmt"

// InboundStatus tracks the lifecycle of a receiving document.
type InboundStatus string

const (
	InboundStatusPending   InboundStatus = "pending"
	InboundStatusVerifying InboundStatus = "verifying"
	InboundStatusCompleted InboundStatus = "completed"
)

var validInboundStatuses = []InboundStatus{
	InboundStatusPending,
	InboundStatusVerifying,
	InboundStatusCompleted,
}

// String implements fmt.Stringer.
func (s InboundStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known InboundStatus.
func (s InboundStatus) IsValid() bool {
	for _, candidate := range validInboundStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Next returns the status the inbound advances to, or "" from a terminal state.
// The chain is strictly forward: pending, verifying, completed.
func (s InboundStatus) Next() InboundStatus {
	switch s {
	case InboundStatusPending:
		return InboundStatusVerifying
	case InboundStatusVerifying:
		return InboundStatusCompleted
	default:
		return ""
	}
}

// ParseInboundStatus converts raw input into an InboundStatus.
func ParseInboundStatus(value string) (InboundStatus, error) {
	for _, candidate := range validInboundStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid inbound status %q", value)
}
