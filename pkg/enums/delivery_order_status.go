package enums

import "fmt"

// DeliveryOrderStatus tracks a dispatch document through the outbound flow.
type DeliveryOrderStatus string

const (
	DeliveryOrderStatusPending    DeliveryOrderStatus = "pending"
	DeliveryOrderStatusPicking    DeliveryOrderStatus = "picking"
	DeliveryOrderStatusPicked     DeliveryOrderStatus = "picked"
	DeliveryOrderStatusPacking    DeliveryOrderStatus = "packing"
	DeliveryOrderStatusPacked     DeliveryOrderStatus = "packed"
	DeliveryOrderStatusDispatched DeliveryOrderStatus = "dispatched"
	DeliveryOrderStatusCompleted  DeliveryOrderStatus = "completed"
)

var validDeliveryOrderStatuses = []DeliveryOrderStatus{
	DeliveryOrderStatusPending,
	DeliveryOrderStatusPicking,
	DeliveryOrderStatusPicked,
	DeliveryOrderStatusPacking,
	DeliveryOrderStatusPacked,
	DeliveryOrderStatusDispatched,
	DeliveryOrderStatusCompleted,
}

// deliveryOrderTransitions maps each status to the statuses reachable from it.
// The flow is linear with no skips; stock only leaves the building at "dispatched".
var deliveryOrderTransitions = map[DeliveryOrderStatus][]DeliveryOrderStatus{
	DeliveryOrderStatusPending:    {DeliveryOrderStatusPicking},
	DeliveryOrderStatusPicking:    {DeliveryOrderStatusPicked},
	DeliveryOrderStatusPicked:     {DeliveryOrderStatusPacking},
	DeliveryOrderStatusPacking:    {DeliveryOrderStatusPacked},
	DeliveryOrderStatusPacked:     {DeliveryOrderStatusDispatched},
	DeliveryOrderStatusDispatched: {DeliveryOrderStatusCompleted},
	DeliveryOrderStatusCompleted:  {},
}

// String implements fmt.Stringer.
func (s DeliveryOrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known DeliveryOrderStatus.
func (s DeliveryOrderStatus) IsValid() bool {
	for _, candidate := range validDeliveryOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions exist from this status.
func (s DeliveryOrderStatus) IsTerminal() bool {
	return len(deliveryOrderTransitions[s]) == 0
}

// CanTransitionTo reports whether moving from s to target is allowed.
func (s DeliveryOrderStatus) CanTransitionTo(target DeliveryOrderStatus) bool {
	for _, candidate := range deliveryOrderTransitions[s] {
		if candidate == target {
			return true
		}
	}
	return false
}

// ParseDeliveryOrderStatus converts raw input into a DeliveryOrderStatus.
func ParseDeliveryOrderStatus(value string) (DeliveryOrderStatus, error) {
	for _, candidate := range validDeliveryOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery order status %q", value)
}
