package models

import (
	"time"

	"github.com/google/uuid"
)

// Dispatch records the physical handover of a delivery order to a
// driver. Created atomically with the order's flip to dispatched.
type Dispatch struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	DeliveryOrderID uuid.UUID `gorm:"column:delivery_order_id;type:uuid;not null;uniqueIndex"`
	DriverName      string    `gorm:"column:driver_name;not null"`
	VehicleNumber   string    `gorm:"column:vehicle_number;not null"`
	DispatchedAt    time.Time `gorm:"column:dispatched_at;not null"`
	CreatedBy       uuid.UUID `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
