package dispatch

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stackbin/stackbin-backend/pkg/db/models"
	"github.com/stackbin/stackbin-backend/pkg/enums"
)

// Repository defines persistence operations for the fulfillment tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.DeliveryOrder) (*models.DeliveryOrder, error)
	FindOrder(ctx context.Context, id uuid.UUID) (*models.DeliveryOrder, error)
	ListOrders(ctx context.Context) ([]models.DeliveryOrder, error)
	UpdateOrder(ctx context.Context, id uuid.UUID, updates map[string]any) error
	CreateDispatch(ctx context.Context, dispatch *models.Dispatch) (*models.Dispatch, error)
}

// Service drives a delivery order through pending, picking, picked,
// packing, packed, dispatched and completed. Stock leaves the balance
// store at submission; the later transitions are bookkeeping over
// already-allocated lines.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*models.DeliveryOrder, error)
	StartPicking(ctx context.Context, input TransitionInput) (*models.DeliveryOrder, error)
	CompletePicking(ctx context.Context, input TransitionInput) (*models.DeliveryOrder, error)
	StartPacking(ctx context.Context, input TransitionInput) (*models.DeliveryOrder, error)
	CompletePacking(ctx context.Context, input TransitionInput) (*models.DeliveryOrder, error)
	Dispatch(ctx context.Context, input DispatchInput) (*models.DeliveryOrder, error)
	Complete(ctx context.Context, input TransitionInput) (*models.DeliveryOrder, error)
	Get(ctx context.Context, id uuid.UUID) (*models.DeliveryOrder, error)
	List(ctx context.Context, actor Actor) ([]OrderSummary, error)
}

// Actor identifies the authenticated caller of a workflow operation.
type Actor struct {
	UserID uuid.UUID
	Role   enums.ActorRole
}
