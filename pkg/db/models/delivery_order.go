package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/stackbin/stackbin-backend/pkg/enums"
)

// DeliveryOrder is a fulfillment document. Stock is allocated eagerly:
// every line is pinned to a concrete stock key at submission, and the
// balances are already decremented by the time the order is pending.
type DeliveryOrder struct {
	ID          uuid.UUID                 `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber string                    `gorm:"column:order_number;not null;uniqueIndex"`
	RequesterID uuid.UUID                 `gorm:"column:requester_id;type:uuid;not null;index"`
	Status      enums.DeliveryOrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	DueDate     *time.Time                `gorm:"column:due_date"`
	Notes       *string                   `gorm:"column:notes"`
	CreatedBy   uuid.UUID                 `gorm:"column:created_by;type:uuid;not null"`
	UpdatedBy   uuid.UUID                 `gorm:"column:updated_by;type:uuid;not null"`
	Items       []DeliveryOrderItem       `gorm:"foreignKey:DeliveryOrderID;constraint:OnDelete:CASCADE"`
	Dispatch    *Dispatch                 `gorm:"foreignKey:DeliveryOrderID;constraint:OnDelete:CASCADE"`
	CompletedAt *time.Time                `gorm:"column:completed_at"`
	CreatedAt   time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}

// DeliveryOrderItem is one fulfillment line pinned to a stock key.
// ExpiryDate is a snapshot of the stock row's expiry at submission time.
type DeliveryOrderItem struct {
	ID              uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	DeliveryOrderID uuid.UUID  `gorm:"column:delivery_order_id;type:uuid;not null;index"`
	ItemID          uuid.UUID  `gorm:"column:item_id;type:uuid;not null;index"`
	WarehouseID     uuid.UUID  `gorm:"column:warehouse_id;type:uuid;not null"`
	BinID           uuid.UUID  `gorm:"column:bin_id;type:uuid;not null"`
	BatchID         string     `gorm:"column:batch_id;not null"`
	Quantity        int        `gorm:"column:quantity;not null"`
	ExpiryDate      *time.Time `gorm:"column:expiry_date"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
