// Package stock owns the balance store, the movement ledger and the
// bin occupancy cache. Balances are only ever mutated through Increase
// and Decrease, which write the paired ledger row inside the caller's
// transaction, so the sum of IN minus OUT movements for a key always
// equals its current balance.
package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stackbin/stackbin-backend/pkg/db/models"
	"github.com/stackbin/stackbin-backend/pkg/enums"
	pkgerrors "github.com/stackbin/stackbin-backend/pkg/errors"
)

// Key identifies one balance row.
type Key struct {
	ItemID      uuid.UUID
	WarehouseID uuid.UUID
	BinID       uuid.UUID
	BatchID     string
}

// Metadata is copied onto a balance row when the first stock arrives
// at its key. Subsequent increases leave it untouched.
type Metadata struct {
	ExpiryDate        *time.Time
	MaintenanceDate   *time.Time
	ManufacturingYear *int
}

// Reference points a ledger row at the document line that caused it.
type Reference struct {
	Type enums.MovementReference
	ID   uuid.UUID
}

// Increase adds quantity at the key and records the matching IN
// movement. The balance row is created with the supplied metadata if
// this is the first stock at the key.
func Increase(ctx context.Context, tx *gorm.DB, key Key, quantity int, meta Metadata, ref Reference) error {
	if err := validateMutation(tx, key, quantity, ref); err != nil {
		return err
	}

	res := tx.WithContext(ctx).Exec(`
		UPDATE item_stocks
		SET quantity = quantity + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE item_id = ? AND warehouse_id = ? AND bin_id = ? AND batch_id = ?
	`, quantity, key.ItemID, key.WarehouseID, key.BinID, key.BatchID)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "increase stock balance")
	}

	if res.RowsAffected == 0 {
		row := models.ItemStock{
			ID:                uuid.New(),
			ItemID:            key.ItemID,
			WarehouseID:       key.WarehouseID,
			BinID:             key.BinID,
			BatchID:           key.BatchID,
			Quantity:          quantity,
			ExpiryDate:        meta.ExpiryDate,
			MaintenanceDate:   meta.MaintenanceDate,
			ManufacturingYear: meta.ManufacturingYear,
		}
		if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create stock balance row")
		}
	}

	return recordMovement(ctx, tx, key, enums.MovementTypeIn, quantity, ref)
}

// Decrease removes quantity at the key and records the matching OUT
// movement. The update is guarded so a balance can never go negative
// even if a concurrent decrease slipped past an earlier sufficiency
// check; insufficient rows fail with InsufficientStock naming the key
// and the available/requested amounts.
func Decrease(ctx context.Context, tx *gorm.DB, key Key, quantity int, ref Reference) error {
	if err := validateMutation(tx, key, quantity, ref); err != nil {
		return err
	}

	res := tx.WithContext(ctx).Exec(`
		UPDATE item_stocks
		SET quantity = quantity - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE item_id = ? AND warehouse_id = ? AND bin_id = ? AND batch_id = ?
			AND quantity >= ?
	`, quantity, key.ItemID, key.WarehouseID, key.BinID, key.BatchID, quantity)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "decrease stock balance")
	}

	if res.RowsAffected == 0 {
		available, err := BalanceFor(ctx, tx, key)
		if err != nil {
			return err
		}
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock for key").
			WithDetails(insufficientStockDetails(key, available, quantity))
	}

	return recordMovement(ctx, tx, key, enums.MovementTypeOut, quantity, ref)
}

// BalanceFor returns the current quantity at the key, zero when no row
// exists yet.
func BalanceFor(ctx context.Context, tx *gorm.DB, key Key) (int, error) {
	var row models.ItemStock
	err := tx.WithContext(ctx).
		Where("item_id = ? AND warehouse_id = ? AND bin_id = ? AND batch_id = ?",
			key.ItemID, key.WarehouseID, key.BinID, key.BatchID).
		First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock balance")
	}
	return row.Quantity, nil
}

// RowFor loads the balance row at the key, nil when none exists.
func RowFor(ctx context.Context, tx *gorm.DB, key Key) (*models.ItemStock, error) {
	var row models.ItemStock
	err := tx.WithContext(ctx).
		Where("item_id = ? AND warehouse_id = ? AND bin_id = ? AND batch_id = ?",
			key.ItemID, key.WarehouseID, key.BinID, key.BatchID).
		First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock balance")
	}
	return &row, nil
}

// OccupyBin marks the bin occupied. Idempotent.
func OccupyBin(ctx context.Context, tx *gorm.DB, binID uuid.UUID) error {
	err := tx.WithContext(ctx).
		Model(&models.Bin{}).
		Where("id = ?", binID).
		UpdateColumn("is_available", false).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "occupy bin")
	}
	return nil
}

// FreeBinIfEmpty marks the bin available again when no stock remains
// on it across every key, reporting whether it flipped the flag.
func FreeBinIfEmpty(ctx context.Context, tx *gorm.DB, binID uuid.UUID) (bool, error) {
	var total int64
	err := tx.WithContext(ctx).
		Model(&models.ItemStock{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("bin_id = ?", binID).
		Scan(&total).Error
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum bin stock")
	}
	if total > 0 {
		return false, nil
	}

	res := tx.WithContext(ctx).
		Model(&models.Bin{}).
		Where("id = ? AND is_available = ?", binID, false).
		UpdateColumn("is_available", true)
	if res.Error != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "free bin")
	}
	return res.RowsAffected > 0, nil
}

func recordMovement(ctx context.Context, tx *gorm.DB, key Key, direction enums.MovementType, quantity int, ref Reference) error {
	movement := models.StockMovement{
		ID:            uuid.New(),
		ItemID:        key.ItemID,
		WarehouseID:   key.WarehouseID,
		BinID:         key.BinID,
		BatchID:       key.BatchID,
		Type:          direction,
		Quantity:      quantity,
		ReferenceType: ref.Type,
		ReferenceID:   ref.ID,
	}
	if err := tx.WithContext(ctx).Create(&movement).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record stock movement")
	}
	return nil
}

func validateMutation(tx *gorm.DB, key Key, quantity int, ref Reference) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock mutation")
	}
	if quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock mutation quantity must be positive")
	}
	if key.BatchID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock key requires a batch id")
	}
	if !ref.Type.IsValid() || ref.ID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock mutation requires a document reference")
	}
	return nil
}

func insufficientStockDetails(key Key, available, requested int) map[string]any {
	return map[string]any{
		"item_id":      key.ItemID,
		"warehouse_id": key.WarehouseID,
		"bin_id":       key.BinID,
		"batch_id":     key.BatchID,
		"available":    available,
		"requested":    requested,
	}
}
