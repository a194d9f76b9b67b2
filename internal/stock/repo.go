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

// Repository serves the read models layered on the balance store and
// the ledger: warehouse layout, catalog totals and monthly movement
// listings.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	LayoutForWarehouse(ctx context.Context, warehouseID uuid.UUID) ([]RackLayout, error)
	ItemTotals(ctx context.Context) ([]ItemTotal, error)
	WarehouseTotals(ctx context.Context) ([]WarehouseTotal, error)
	BalancesForItem(ctx context.Context, itemID uuid.UUID) ([]models.ItemStock, error)
	MovementsByMonth(ctx context.Context, year int, month time.Month, direction *enums.MovementType) ([]models.StockMovement, error)
}

// RackLayout is one rack with its bins and their current occupants.
type RackLayout struct {
	RackID uuid.UUID   `json:"rack_id"`
	Code   string      `json:"code"`
	Bins   []BinLayout `json:"bins"`
}

// BinLayout carries cached occupancy plus a summary of what currently
// sits in the bin, for layout rendering.
type BinLayout struct {
	BinID       uuid.UUID     `json:"bin_id"`
	Code        string        `json:"code"`
	IsAvailable bool          `json:"is_available"`
	Occupants   []BinOccupant `json:"occupants,omitempty"`
}

// BinOccupant summarizes one positive balance row in a bin.
type BinOccupant struct {
	ItemID     uuid.UUID  `json:"item_id"`
	SKU        string     `json:"sku"`
	Name       string     `json:"name"`
	Quantity   int        `json:"quantity"`
	BatchID    string     `json:"batch_id"`
	ExpiryDate *time.Time `json:"expiry_date,omitempty"`
}

// ItemTotal is the stock sum for one item across every warehouse.
type ItemTotal struct {
	ItemID   uuid.UUID `json:"item_id"`
	SKU      string    `json:"sku"`
	Name     string    `json:"name"`
	Quantity int       `json:"quantity"`
}

// WarehouseTotal is the stock sum held in one warehouse.
type WarehouseTotal struct {
	WarehouseID uuid.UUID `json:"warehouse_id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Quantity    int       `json:"quantity"`
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a stock repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) LayoutForWarehouse(ctx context.Context, warehouseID uuid.UUID) ([]RackLayout, error) {
	var racks []models.Rack
	err := r.db.WithContext(ctx).
		Preload("Bins").
		Where("warehouse_id = ?", warehouseID).
		Order("code ASC").
		Find(&racks).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load racks")
	}

	type occupantRow struct {
		BinID      uuid.UUID
		ItemID     uuid.UUID
		SKU        string
		Name       string
		Quantity   int
		BatchID    string
		ExpiryDate *time.Time
	}
	var occupants []occupantRow
	err = r.db.WithContext(ctx).
		Table("item_stocks").
		Select(`item_stocks.bin_id,
			item_stocks.item_id,
			items.sku,
			items.name,
			item_stocks.quantity,
			item_stocks.batch_id,
			item_stocks.expiry_date`).
		Joins("JOIN items ON items.id = item_stocks.item_id").
		Where("item_stocks.warehouse_id = ? AND item_stocks.quantity > 0", warehouseID).
		Order("item_stocks.batch_id ASC").
		Scan(&occupants).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load bin occupants")
	}

	occupantsByBin := make(map[uuid.UUID][]BinOccupant, len(occupants))
	for _, row := range occupants {
		occupantsByBin[row.BinID] = append(occupantsByBin[row.BinID], BinOccupant{
			ItemID:     row.ItemID,
			SKU:        row.SKU,
			Name:       row.Name,
			Quantity:   row.Quantity,
			BatchID:    row.BatchID,
			ExpiryDate: row.ExpiryDate,
		})
	}

	layout := make([]RackLayout, 0, len(racks))
	for _, rack := range racks {
		bins := make([]BinLayout, 0, len(rack.Bins))
		for _, bin := range rack.Bins {
			bins = append(bins, BinLayout{
				BinID:       bin.ID,
				Code:        bin.Code,
				IsAvailable: bin.IsAvailable,
				Occupants:   occupantsByBin[bin.ID],
			})
		}
		layout = append(layout, RackLayout{
			RackID: rack.ID,
			Code:   rack.Code,
			Bins:   bins,
		})
	}
	return layout, nil
}

func (r *repository) ItemTotals(ctx context.Context) ([]ItemTotal, error) {
	var totals []ItemTotal
	err := r.db.WithContext(ctx).
		Table("items").
		Select(`items.id AS item_id,
			items.sku,
			items.name,
			COALESCE(SUM(item_stocks.quantity), 0) AS quantity`).
		Joins("LEFT JOIN item_stocks ON item_stocks.item_id = items.id").
		Group("items.id, items.sku, items.name").
		Order("items.sku ASC").
		Scan(&totals).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum item totals")
	}
	return totals, nil
}

func (r *repository) WarehouseTotals(ctx context.Context) ([]WarehouseTotal, error) {
	var totals []WarehouseTotal
	err := r.db.WithContext(ctx).
		Table("warehouses").
		Select(`warehouses.id AS warehouse_id,
			warehouses.code,
			warehouses.name,
			COALESCE(SUM(item_stocks.quantity), 0) AS quantity`).
		Joins("LEFT JOIN item_stocks ON item_stocks.warehouse_id = warehouses.id").
		Group("warehouses.id, warehouses.code, warehouses.name").
		Order("warehouses.code ASC").
		Scan(&totals).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum warehouse totals")
	}
	return totals, nil
}

// BalancesForItem lists an item's balance rows in FEFO order: soonest
// expiry first, rows without an expiry date last. Callers use this for
// display; allocation stays operator-chosen.
func (r *repository) BalancesForItem(ctx context.Context, itemID uuid.UUID) ([]models.ItemStock, error) {
	var rows []models.ItemStock
	err := r.db.WithContext(ctx).
		Where("item_id = ? AND quantity > 0", itemID).
		Order("CASE WHEN expiry_date IS NULL THEN 1 ELSE 0 END, expiry_date ASC, batch_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item balances")
	}
	return rows, nil
}

// MovementsByMonth lists ledger rows created within the calendar
// month, optionally filtered by direction. The window is computed here
// rather than in SQL so the query stays portable.
func (r *repository) MovementsByMonth(ctx context.Context, year int, month time.Month, direction *enums.MovementType) ([]models.StockMovement, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	query := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", start, end)
	if direction != nil {
		query = query.Where("type = ?", *direction)
	}

	var rows []models.StockMovement
	if err := query.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load monthly movements")
	}
	return rows, nil
}
