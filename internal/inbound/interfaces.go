package inbound

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stackbin/stackbin-backend/pkg/db/models"
	"github.com/stackbin/stackbin-backend/pkg/enums"
)

// Repository defines persistence operations for the receiving tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateInbound(ctx context.Context, inbound *models.Inbound) (*models.Inbound, error)
	FindInbound(ctx context.Context, id uuid.UUID) (*models.Inbound, error)
	FindInboundItem(ctx context.Context, id uuid.UUID) (*models.InboundItem, error)
	ListInbounds(ctx context.Context) ([]models.Inbound, error)
	UpdateInbound(ctx context.Context, id uuid.UUID, updates map[string]any) error
	UpdateInboundItem(ctx context.Context, id uuid.UUID, updates map[string]any) error
	CountItemsNotStored(ctx context.Context, inboundID uuid.UUID) (int64, error)
	WarehouseExists(ctx context.Context, id uuid.UUID) (bool, error)
	ItemExists(ctx context.Context, id uuid.UUID) (bool, error)
	FindRack(ctx context.Context, id uuid.UUID) (*models.Rack, error)
	FindBin(ctx context.Context, id uuid.UUID) (*models.Bin, error)
}

// Service defines the receiving workflow: create pending, verify,
// put items away until the document auto-completes.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Inbound, error)
	Verify(ctx context.Context, input VerifyInput) (*models.Inbound, error)
	Putaway(ctx context.Context, input PutawayInput) (*models.Inbound, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Inbound, error)
	List(ctx context.Context) ([]models.Inbound, error)
}

// Actor identifies the authenticated caller of a workflow operation.
type Actor struct {
	UserID uuid.UUID
	Role   enums.ActorRole
}
