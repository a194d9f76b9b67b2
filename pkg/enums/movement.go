package enums

import (
	"fmt"
	"strings"
)

// MovementType is the direction of a ledger entry relative to the warehouse.
type MovementType string

const (
	MovementTypeIn  MovementType = "IN"
	MovementTypeOut MovementType = "OUT"
)

func (t MovementType) String() string {
	return string(t)
}

func (t MovementType) IsValid() bool {
	return t == MovementTypeIn || t == MovementTypeOut
}

// ParseMovementType normalizes and validates a raw direction value.
func ParseMovementType(raw string) (MovementType, error) {
	parsed := MovementType(strings.ToUpper(strings.TrimSpace(raw)))
	if !parsed.IsValid() {
		return "", fmt.Errorf("invalid movement type: %q", raw)
	}
	return parsed, nil
}

// MovementReference names the kind of source document a ledger entry points at.
type MovementReference string

const (
	MovementReferenceInboundItem       MovementReference = "inbound_item"
	MovementReferenceDeliveryOrderItem MovementReference = "delivery_order_item"
)

func (r MovementReference) String() string {
	return string(r)
}

func (r MovementReference) IsValid() bool {
	return r == MovementReferenceInboundItem || r == MovementReferenceDeliveryOrderItem
}
