package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/stackbin/stackbin-backend/pkg/enums"
)

// User is an authenticated actor. Account management is external; the
// workflows only read the id and role off verified tokens.
type User struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name      string          `gorm:"column:name;not null"`
	Email     string          `gorm:"column:email;not null;uniqueIndex"`
	Role      enums.ActorRole `gorm:"column:role;type:text;not null;default:'staff'"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
