package models

import (
	"time"

	"github.com/google/uuid"
)

// Warehouse is a physical site holding racks and bins.
type Warehouse struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Code      string    `gorm:"column:code;not null;uniqueIndex"`
	Name      string    `gorm:"column:name;not null"`
	Address   *string   `gorm:"column:address"`
	Racks     []Rack    `gorm:"foreignKey:WarehouseID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Rack is a shelving unit inside a warehouse.
type Rack struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	WarehouseID uuid.UUID `gorm:"column:warehouse_id;type:uuid;not null;index"`
	Code        string    `gorm:"column:code;not null"`
	Bins        []Bin     `gorm:"foreignKey:RackID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Bin is a single storage slot on a rack. IsAvailable is cached
// occupancy state maintained by the stock mutations, not computed live.
type Bin struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	RackID      uuid.UUID `gorm:"column:rack_id;type:uuid;not null;index"`
	Code        string    `gorm:"column:code;not null"`
	IsAvailable bool      `gorm:"column:is_available;not null;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
