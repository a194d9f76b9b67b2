package inbound

import (
	"time"

	"github.com/google/uuid"
)

// CreateInput carries a new receiving document with its planned lines.
type CreateInput struct {
	WarehouseID       uuid.UUID
	ExpectedArrivalAt time.Time
	Notes             *string
	Items             []CreateItemInput
	Actor             Actor
}

// CreateItemInput is one planned line: what arrives, how much, and the
// rack it is expected to land on.
type CreateItemInput struct {
	ItemID            uuid.UUID
	Quantity          int
	RackID            uuid.UUID
	ExpiryDate        *time.Time
	MaintenanceDate   *time.Time
	ManufacturingYear *int
}

// VerifyInput moves an inbound from pending to verifying.
type VerifyInput struct {
	InboundID uuid.UUID
	Actor     Actor
}

// PutawayInput stores one verified line into an operator-chosen bin.
// RackID may differ from the rack planned at creation time.
type PutawayInput struct {
	InboundID        uuid.UUID
	InboundItemID    uuid.UUID
	RackID           uuid.UUID
	BinID            uuid.UUID
	ReceivedQuantity int
	Actor            Actor
}
