package inbound

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stackbin/stackbin-backend/pkg/db/models"
	"github.com/stackbin/stackbin-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an inbound repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateInbound(ctx context.Context, inbound *models.Inbound) (*models.Inbound, error) {
	if err := r.db.WithContext(ctx).Create(inbound).Error; err != nil {
		return nil, err
	}
	return inbound, nil
}

func (r *repository) FindInbound(ctx context.Context, id uuid.UUID) (*models.Inbound, error) {
	var inbound models.Inbound
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&inbound).Error
	if err != nil {
		return nil, err
	}
	return &inbound, nil
}

func (r *repository) FindInboundItem(ctx context.Context, id uuid.UUID) (*models.InboundItem, error) {
	var item models.InboundItem
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) ListInbounds(ctx context.Context) ([]models.Inbound, error) {
	var inbounds []models.Inbound
	err := r.db.WithContext(ctx).
		Preload("Items").
		Order("created_at DESC").
		Find(&inbounds).Error
	if err != nil {
		return nil, err
	}
	return inbounds, nil
}

func (r *repository) UpdateInbound(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Inbound{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) UpdateInboundItem(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.InboundItem{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// CountItemsNotStored re-counts persisted rows so concurrent putaway
// calls on the same inbound cannot both observe a stale cached total.
func (r *repository) CountItemsNotStored(ctx context.Context, inboundID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.InboundItem{}).
		Where("inbound_id = ? AND status <> ?", inboundID, enums.InboundItemStatusStored).
		Count(&count).Error
	return count, err
}

func (r *repository) WarehouseExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Warehouse{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) ItemExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) FindRack(ctx context.Context, id uuid.UUID) (*models.Rack, error) {
	var rack models.Rack
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&rack).Error
	if err != nil {
		return nil, err
	}
	return &rack, nil
}

func (r *repository) FindBin(ctx context.Context, id uuid.UUID) (*models.Bin, error) {
	var bin models.Bin
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&bin).Error
	if err != nil {
		return nil, err
	}
	return &bin, nil
}
