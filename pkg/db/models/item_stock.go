package models

import (
	"time"

	"github.com/google/uuid"
)

// ItemStock is the current balance for one (item, warehouse, bin, batch)
// key. Rows are created on first putaway at a key and never deleted;
// quantity may sit at zero after full dispatch. Every quantity change
// goes through the stock package so a matching ledger row exists.
type ItemStock struct {
	ID                uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	ItemID            uuid.UUID  `gorm:"column:item_id;type:uuid;not null;uniqueIndex:idx_item_stocks_key"`
	WarehouseID       uuid.UUID  `gorm:"column:warehouse_id;type:uuid;not null;uniqueIndex:idx_item_stocks_key"`
	BinID             uuid.UUID  `gorm:"column:bin_id;type:uuid;not null;uniqueIndex:idx_item_stocks_key"`
	BatchID           string     `gorm:"column:batch_id;not null;uniqueIndex:idx_item_stocks_key"`
	Quantity          int        `gorm:"column:quantity;not null;default:0"`
	ExpiryDate        *time.Time `gorm:"column:expiry_date"`
	MaintenanceDate   *time.Time `gorm:"column:maintenance_date"`
	ManufacturingYear *int       `gorm:"column:manufacturing_year"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
