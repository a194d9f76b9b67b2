package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/stackbin/stackbin-backend/pkg/enums"
)

// Inbound is a receiving document. One batch id is minted per inbound
// and shared by every stock row produced from its lines.
type Inbound struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	InboundNumber     string              `gorm:"column:inbound_number;not null;uniqueIndex"`
	BatchID           string              `gorm:"column:batch_id;not null;uniqueIndex"`
	WarehouseID       uuid.UUID           `gorm:"column:warehouse_id;type:uuid;not null;index"`
	Status            enums.InboundStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	ExpectedArrivalAt time.Time           `gorm:"column:expected_arrival_at;not null"`
	ActualArrivalAt   *time.Time          `gorm:"column:actual_arrival_at"`
	Notes             *string             `gorm:"column:notes"`
	CreatedBy         uuid.UUID           `gorm:"column:created_by;type:uuid;not null"`
	UpdatedBy         uuid.UUID           `gorm:"column:updated_by;type:uuid;not null"`
	Items             []InboundItem       `gorm:"foreignKey:InboundID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// InboundItem is one planned receiving line. RackID is the rack chosen
// at creation; putaway records the final rack and bin, which may differ.
type InboundItem struct {
	ID                uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	InboundID         uuid.UUID               `gorm:"column:inbound_id;type:uuid;not null;index"`
	ItemID            uuid.UUID               `gorm:"column:item_id;type:uuid;not null;index"`
	Quantity          int                     `gorm:"column:quantity;not null"`
	RackID            uuid.UUID               `gorm:"column:rack_id;type:uuid;not null"`
	Status            enums.InboundItemStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	ReceivedQuantity  *int                    `gorm:"column:received_quantity"`
	FinalRackID       *uuid.UUID              `gorm:"column:final_rack_id;type:uuid"`
	BinID             *uuid.UUID              `gorm:"column:bin_id;type:uuid"`
	ExpiryDate        *time.Time              `gorm:"column:expiry_date"`
	MaintenanceDate   *time.Time              `gorm:"column:maintenance_date"`
	ManufacturingYear *int                    `gorm:"column:manufacturing_year"`
	StoredAt          *time.Time              `gorm:"column:stored_at"`
	CreatedAt         time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
