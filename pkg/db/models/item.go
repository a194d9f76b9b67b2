package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/stackbin/stackbin-backend/pkg/enums"
)

// Item is a master-data SKU record. The workflows only read it for
// identity and display fields; item CRUD lives outside this service.
type Item struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	SKU         string            `gorm:"column:sku;not null;uniqueIndex"`
	Name        string            `gorm:"column:name;not null"`
	Category    *string           `gorm:"column:category"`
	StorageType enums.StorageType `gorm:"column:storage_type;type:text;not null;default:'ambient'"`
	Unit        string            `gorm:"column:unit;not null;default:'pcs'"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
