package stock

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stackbin/stackbin-backend/pkg/db/models"
	"github.com/stackbin/stackbin-backend/pkg/enums"
)

func TestLayoutForWarehouse(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	f := seedFixture(t, db)

	emptyBin := models.Bin{ID: uuid.New(), RackID: f.rack.ID, Code: "B2", IsAvailable: true}
	if err := db.Create(&emptyBin).Error; err != nil {
		t.Fatalf("seed empty bin: %v", err)
	}

	key := keyFor(f, "B-20260901-A")
	err := db.Transaction(func(tx *gorm.DB) error {
		if terr := Increase(ctx, tx, key, 4, Metadata{}, inRef()); terr != nil {
			return terr
		}
		return OccupyBin(ctx, tx, f.bin.ID)
	})
	if err != nil {
		t.Fatalf("seed stock: %v", err)
	}

	layout, err := NewRepository(db).LayoutForWarehouse(ctx, f.warehouse.ID)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if len(layout) != 1 {
		t.Fatalf("expected 1 rack, got %d", len(layout))
	}
	if len(layout[0].Bins) != 2 {
		t.Fatalf("expected 2 bins, got %d", len(layout[0].Bins))
	}

	var occupied, empty *BinLayout
	for i := range layout[0].Bins {
		bin := &layout[0].Bins[i]
		if bin.BinID == f.bin.ID {
			occupied = bin
		} else {
			empty = bin
		}
	}
	if occupied == nil || empty == nil {
		t.Fatal("expected both seeded bins in layout")
	}
	if occupied.IsAvailable {
		t.Fatal("expected seeded bin to be occupied")
	}
	if len(occupied.Occupants) != 1 {
		t.Fatalf("expected 1 occupant, got %d", len(occupied.Occupants))
	}
	occ := occupied.Occupants[0]
	if occ.SKU != f.item.SKU || occ.Quantity != 4 || occ.BatchID != key.BatchID {
		t.Fatalf("unexpected occupant: %+v", occ)
	}
	if !empty.IsAvailable || len(empty.Occupants) != 0 {
		t.Fatalf("expected empty bin available with no occupants: %+v", empty)
	}
}

func TestItemAndWarehouseTotals(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	f := seedFixture(t, db)

	secondBin := models.Bin{ID: uuid.New(), RackID: f.rack.ID, Code: "B2", IsAvailable: true}
	if err := db.Create(&secondBin).Error; err != nil {
		t.Fatalf("seed bin: %v", err)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if terr := Increase(ctx, tx, keyFor(f, "B-20260901-A"), 4, Metadata{}, inRef()); terr != nil {
			return terr
		}
		other := Key{ItemID: f.item.ID, WarehouseID: f.warehouse.ID, BinID: secondBin.ID, BatchID: "B-20260902-A"}
		return Increase(ctx, tx, other, 6, Metadata{}, inRef())
	})
	if err != nil {
		t.Fatalf("seed stock: %v", err)
	}

	repo := NewRepository(db)

	itemTotals, err := repo.ItemTotals(ctx)
	if err != nil {
		t.Fatalf("item totals: %v", err)
	}
	if len(itemTotals) != 1 || itemTotals[0].Quantity != 10 {
		t.Fatalf("expected single item total of 10, got %+v", itemTotals)
	}

	warehouseTotals, err := repo.WarehouseTotals(ctx)
	if err != nil {
		t.Fatalf("warehouse totals: %v", err)
	}
	if len(warehouseTotals) != 1 || warehouseTotals[0].Quantity != 10 {
		t.Fatalf("expected single warehouse total of 10, got %+v", warehouseTotals)
	}
}

func TestBalancesForItemFEFOOrder(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	f := seedFixture(t, db)

	binB := models.Bin{ID: uuid.New(), RackID: f.rack.ID, Code: "B2", IsAvailable: true}
	binC := models.Bin{ID: uuid.New(), RackID: f.rack.ID, Code: "B3", IsAvailable: true}
	for _, bin := range []*models.Bin{&binB, &binC} {
		if err := db.Create(bin).Error; err != nil {
			t.Fatalf("seed bin: %v", err)
		}
	}

	late := time.Date(2027, 6, 1, 0, 0, 0, 0, time.UTC)
	soon := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)

	err := db.Transaction(func(tx *gorm.DB) error {
		if terr := Increase(ctx, tx, keyFor(f, "B-20260901-A"), 1, Metadata{ExpiryDate: &late}, inRef()); terr != nil {
			return terr
		}
		noExpiry := Key{ItemID: f.item.ID, WarehouseID: f.warehouse.ID, BinID: binB.ID, BatchID: "B-20260902-A"}
		if terr := Increase(ctx, tx, noExpiry, 1, Metadata{}, inRef()); terr != nil {
			return terr
		}
		soonest := Key{ItemID: f.item.ID, WarehouseID: f.warehouse.ID, BinID: binC.ID, BatchID: "B-20260903-A"}
		return Increase(ctx, tx, soonest, 1, Metadata{ExpiryDate: &soon}, inRef())
	})
	if err != nil {
		t.Fatalf("seed stock: %v", err)
	}

	rows, err := NewRepository(db).BalancesForItem(ctx, f.item.ID)
	if err != nil {
		t.Fatalf("balances: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].BatchID != "B-20260903-A" {
		t.Fatalf("expected soonest expiry first, got %s", rows[0].BatchID)
	}
	if rows[1].BatchID != "B-20260901-A" {
		t.Fatalf("expected later expiry second, got %s", rows[1].BatchID)
	}
	if rows[2].ExpiryDate != nil {
		t.Fatalf("expected nil expiry last, got %v", rows[2].ExpiryDate)
	}
}

func TestMovementsByMonth(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	f := seedFixture(t, db)
	key := keyFor(f, "B-20260901-A")

	err := db.Transaction(func(tx *gorm.DB) error {
		if terr := Increase(ctx, tx, key, 9, Metadata{}, inRef()); terr != nil {
			return terr
		}
		return Decrease(ctx, tx, key, 2, outRef())
	})
	if err != nil {
		t.Fatalf("seed movements: %v", err)
	}

	// Push one movement outside the queried month.
	stale := time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC)
	err = db.Model(&models.StockMovement{}).
		Where("type = ?", enums.MovementTypeOut).
		UpdateColumn("created_at", stale).Error
	if err != nil {
		t.Fatalf("backdate movement: %v", err)
	}

	now := time.Now().UTC()
	repo := NewRepository(db)

	all, err := repo.MovementsByMonth(ctx, now.Year(), now.Month(), nil)
	if err != nil {
		t.Fatalf("movements: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 movement in current month, got %d", len(all))
	}
	if all[0].Type != enums.MovementTypeIn {
		t.Fatalf("expected the IN movement, got %s", all[0].Type)
	}

	direction := enums.MovementTypeOut
	outs, err := repo.MovementsByMonth(ctx, 2026, time.July, &direction)
	if err != nil {
		t.Fatalf("movements: %v", err)
	}
	if len(outs) != 1 || outs[0].Quantity != 2 {
		t.Fatalf("expected the backdated OUT movement, got %+v", outs)
	}
}
