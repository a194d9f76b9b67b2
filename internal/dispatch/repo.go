package dispatch

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stackbin/stackbin-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a dispatch repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.DeliveryOrder) (*models.DeliveryOrder, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindOrder(ctx context.Context, id uuid.UUID) (*models.DeliveryOrder, error) {
	var order models.DeliveryOrder
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Dispatch").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListOrders(ctx context.Context) ([]models.DeliveryOrder, error) {
	var orders []models.DeliveryOrder
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Dispatch").
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) UpdateOrder(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.DeliveryOrder{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) CreateDispatch(ctx context.Context, dispatch *models.Dispatch) (*models.Dispatch, error) {
	if err := r.db.WithContext(ctx).Create(dispatch).Error; err != nil {
		return nil, err
	}
	return dispatch, nil
}
