package dispatch

import (
	"time"

	"github.com/google/uuid"

	"github.com/stackbin/stackbin-backend/pkg/db/models"
)

// SubmitInput carries a new delivery order request. Every line is
// pinned to a concrete stock key by the requester; nothing is deferred
// to pick time.
type SubmitInput struct {
	Items   []SubmitItemInput
	DueDate *time.Time
	Notes   *string
	Actor   Actor
}

// SubmitItemInput is one requested line against a stock key. Several
// lines may point at the same key; their quantities are summed for the
// sufficiency check but decremented per line.
type SubmitItemInput struct {
	ItemID      uuid.UUID
	WarehouseID uuid.UUID
	BinID       uuid.UUID
	BatchID     string
	Quantity    int
}

// TransitionInput advances an order one step along the flow.
type TransitionInput struct {
	OrderID uuid.UUID
	Actor   Actor
}

// DispatchInput hands a packed order over to a driver.
type DispatchInput struct {
	OrderID       uuid.UUID
	DriverName    string
	VehicleNumber string
	Actor         Actor
}

// OrderSummary is a listing row; IsCurrentUser marks orders raised by
// the requesting actor.
type OrderSummary struct {
	models.DeliveryOrder
	IsCurrentUser bool `json:"is_current_user"`
}
