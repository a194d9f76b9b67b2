package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/stackbin/stackbin-backend/pkg/enums"
)

// StockMovement is one append-only ledger entry. Rows are immutable
// after creation; there is no UpdatedAt on purpose. The reference pair
// points at the inbound item or delivery order item that caused it.
type StockMovement struct {
	ID            uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	ItemID        uuid.UUID               `gorm:"column:item_id;type:uuid;not null;index"`
	WarehouseID   uuid.UUID               `gorm:"column:warehouse_id;type:uuid;not null;index"`
	BinID         uuid.UUID               `gorm:"column:bin_id;type:uuid;not null"`
	BatchID       string                  `gorm:"column:batch_id;not null;index"`
	Type          enums.MovementType      `gorm:"column:type;type:text;not null"`
	Quantity      int                     `gorm:"column:quantity;not null"`
	ReferenceType enums.MovementReference `gorm:"column:reference_type;type:text;not null"`
	ReferenceID   uuid.UUID               `gorm:"column:reference_id;type:uuid;not null"`
	CreatedAt     time.Time               `gorm:"column:created_at;autoCreateTime"`
}
