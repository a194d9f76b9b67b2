package dispatch

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/stackbin/stackbin-backend/internal/stock"
	"github.com/stackbin/stackbin-backend/pkg/db/models"
	"github.com/stackbin/stackbin-backend/pkg/enums"
	pkgerrors "github.com/stackbin/stackbin-backend/pkg/errors"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:dispatch_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&models.User{},
		&models.Item{},
		&models.Warehouse{},
		&models.Rack{},
		&models.Bin{},
		&models.ItemStock{},
		&models.StockMovement{},
		&models.DeliveryOrder{},
		&models.DeliveryOrderItem{},
		&models.Dispatch{},
	))
	return conn
}

type fixture struct {
	item      models.Item
	warehouse models.Warehouse
	rack      models.Rack
	bin       models.Bin
	staff     Actor
	customer  Actor
}

func seedFixture(t *testing.T, db *gorm.DB) fixture {
	t.Helper()
	f := fixture{
		item:      models.Item{ID: uuid.New(), SKU: "SKU-" + uuid.NewString()[:8], Name: "Bearing"},
		warehouse: models.Warehouse{ID: uuid.New(), Code: "WH-" + uuid.NewString()[:8], Name: "Central"},
		staff:     Actor{UserID: uuid.New(), Role: enums.ActorRoleStaff},
		customer:  Actor{UserID: uuid.New(), Role: enums.ActorRoleCustomer},
	}
	f.rack = models.Rack{ID: uuid.New(), WarehouseID: f.warehouse.ID, Code: "R1"}
	f.bin = models.Bin{ID: uuid.New(), RackID: f.rack.ID, Code: "B1", IsAvailable: true}

	for _, seed := range []any{&f.item, &f.warehouse, &f.rack, &f.bin} {
		require.NoError(t, db.Create(seed).Error)
	}
	return f
}

func seedStock(t *testing.T, db *gorm.DB, f fixture, batchID string, qty int) stock.Key {
	t.Helper()
	key := stock.Key{
		ItemID:      f.item.ID,
		WarehouseID: f.warehouse.ID,
		BinID:       f.bin.ID,
		BatchID:     batchID,
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		ref := stock.Reference{Type: enums.MovementReferenceInboundItem, ID: uuid.New()}
		if terr := stock.Increase(context.Background(), tx, key, qty, stock.Metadata{}, ref); terr != nil {
			return terr
		}
		return stock.OccupyBin(context.Background(), tx, f.bin.ID)
	})
	require.NoError(t, err)
	return key
}

func newService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db), gormTxRunner{db: db}, nil)
	require.NoError(t, err)
	return svc
}

func lineFor(key stock.Key, qty int) SubmitItemInput {
	return SubmitItemInput{
		ItemID:      key.ItemID,
		WarehouseID: key.WarehouseID,
		BinID:       key.BinID,
		BatchID:     key.BatchID,
		Quantity:    qty,
	}
}

func balanceAt(t *testing.T, db *gorm.DB, key stock.Key) int {
	t.Helper()
	var qty int
	err := db.Transaction(func(tx *gorm.DB) error {
		var terr error
		qty, terr = stock.BalanceFor(context.Background(), tx, key)
		return terr
	})
	require.NoError(t, err)
	return qty
}

func TestSubmitAllocatesStockEagerly(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	f := seedFixture(t, db)
	svc := newService(t, db)
	ctx := context.Background()
	key := seedStock(t, db, f, "B-20260901-A", 10)

	order, err := svc.Submit(ctx, SubmitInput{
		Items: []SubmitItemInput{lineFor(key, 6)},
		Actor: f.staff,
	})
	require.NoError(t, err)
	require.Equal(t, enums.DeliveryOrderStatusPending, order.Status)
	require.True(t, strings.HasPrefix(order.OrderNumber, "REQ-"))
	require.Len(t, order.Items, 1)

	require.Equal(t, 4, balanceAt(t, db, key))

	var movement models.StockMovement
	require.NoError(t, db.First(&movement, "reference_id = ?", order.Items[0].ID).Error)
	require.Equal(t, enums.MovementTypeOut, movement.Type)
	require.Equal(t, 6, movement.Quantity)
	require.Equal(t, enums.MovementReferenceDeliveryOrderItem, movement.ReferenceType)

	// Stock remains, so the bin stays occupied.
	var bin models.Bin
	require.NoError(t, db.First(&bin, "id = ?", f.bin.ID).Error)
	require.False(t, bin.IsAvailable)
}

func TestSubmitOrderNumberSeriesByRole(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	f := seedFixture(t, db)
	svc := newService(t, db)
	ctx := context.Background()
	key := seedStock(t, db, f, "B-20260901-A", 10)

	customerOrder, err := svc.Submit(ctx, SubmitInput{
		Items: []SubmitItemInput{lineFor(key, 1)},
		Actor: f.customer,
	})
	require.NoError(t, err)
	require.Equal(t, "ORD-000001", customerOrder.OrderNumber)
	require.Equal(t, f.customer.UserID, customerOrder.RequesterID)

	staffOrder, err := svc.Submit(ctx, SubmitInput{
		Items: []SubmitItemInput{lineFor(key, 1)},
		Actor: f.staff,
	})
	require.NoError(t, err)
	require.Equal(t, "REQ-000001", staffOrder.OrderNumber)
}

func TestSubmitAggregatesLinesBeforeSufficiencyCheck(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	f := seedFixture(t, db)
	svc := newService(t, db)
	ctx := context.Background()
	key := seedStock(t, db, f, "B-20260901-A", 7)

	// Two lines of 4 against 7: the aggregated demand of 8 must fail
	// even though each line alone would pass.
	_, err := svc.Submit(ctx, SubmitInput{
		Items: []SubmitItemInput{lineFor(key, 4), lineFor(key, 4)},
		Actor: f.staff,
	})
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	require.Equal(t, pkgerrors.CodeInsufficientStock, coded.Code())

	details, ok := coded.Details().(map[string]any)
	require.True(t, ok)
	require.Equal(t, 7, details["available"])
	require.Equal(t, 8, details["requested"])

	// Pre-check rejection leaves everything untouched.
	require.Equal(t, 7, balanceAt(t, db, key))
	var orderCount, movementCount int64
	require.NoError(t, db.Model(&models.DeliveryOrder{}).Count(&orderCount).Error)
	require.NoError(t, db.Model(&models.StockMovement{}).Where("type = ?", enums.MovementTypeOut).Count(&movementCount).Error)
	require.Zero(t, orderCount)
	require.Zero(t, movementCount)
}

func TestSubmitSplitLinesDrainKeyAndFreeBin(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	f := seedFixture(t, db)
	svc := newService(t, db)
	ctx := context.Background()
	key := seedStock(t, db, f, "B-20260901-A", 7)

	order, err := svc.Submit(ctx, SubmitInput{
		Items: []SubmitItemInput{lineFor(key, 3), lineFor(key, 4)},
		Actor: f.staff,
	})
	require.NoError(t, err)
	require.Len(t, order.Items, 2)

	require.Equal(t, 0, balanceAt(t, db, key))

	// One OUT movement per line, each with its own quantity.
	var movements []models.StockMovement
	require.NoError(t, db.Where("type = ?", enums.MovementTypeOut).Order("quantity ASC").Find(&movements).Error)
	require.Len(t, movements, 2)
	require.Equal(t, 3, movements[0].Quantity)
	require.Equal(t, 4, movements[1].Quantity)

	var bin models.Bin
	require.NoError(t, db.First(&bin, "id = ?", f.bin.ID).Error)
	require.True(t, bin.IsAvailable, "depleted bin must be freed")
}

func TestSubmitSnapshotsExpiry(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	f := seedFixture(t, db)
	svc := newService(t, db)
	ctx := context.Background()
	key := seedStock(t, db, f, "B-20260901-A", 5)

	expiry := time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Model(&models.ItemStock{}).
		Where("batch_id = ?", key.BatchID).
		UpdateColumn("expiry_date", expiry).Error)

	order, err := svc.Submit(ctx, SubmitInput{
		Items: []SubmitItemInput{lineFor(key, 2)},
		Actor: f.staff,
	})
	require.NoError(t, err)
	require.NotNil(t, order.Items[0].ExpiryDate)
	require.True(t, order.Items[0].ExpiryDate.Equal(expiry))
}

func TestFulfillmentFlowTransitions(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	f := seedFixture(t, db)
	svc := newService(t, db)
	ctx := context.Background()
	key := seedStock(t, db, f, "B-20260901-A", 5)

	order, err := svc.Submit(ctx, SubmitInput{
		Items: []SubmitItemInput{lineFor(key, 5)},
		Actor: f.staff,
	})
	require.NoError(t, err)
	transition := TransitionInput{OrderID: order.ID, Actor: f.staff}

	// Skipping straight to picked is rejected.
	_, err = svc.CompletePicking(ctx, transition)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	require.Equal(t, pkgerrors.CodeStateConflict, coded.Code())
	details := coded.Details().(map[string]any)
	require.Equal(t, "picking", details["expected"])
	require.Equal(t, "pending", details["actual"])

	order, err = svc.StartPicking(ctx, transition)
	require.NoError(t, err)
	require.Equal(t, enums.DeliveryOrderStatusPicking, order.Status)

	order, err = svc.CompletePicking(ctx, transition)
	require.NoError(t, err)
	require.Equal(t, enums.DeliveryOrderStatusPicked, order.Status)

	order, err = svc.StartPacking(ctx, transition)
	require.NoError(t, err)
	require.Equal(t, enums.DeliveryOrderStatusPacking, order.Status)

	order, err = svc.CompletePacking(ctx, transition)
	require.NoError(t, err)
	require.Equal(t, enums.DeliveryOrderStatusPacked, order.Status)

	// Dispatch requires driver and vehicle.
	_, err = svc.Dispatch(ctx, DispatchInput{OrderID: order.ID, VehicleNumber: "TRK-12", Actor: f.staff})
	coded = pkgerrors.As(err)
	require.NotNil(t, coded)
	require.Equal(t, pkgerrors.CodeValidation, coded.Code())

	order, err = svc.Dispatch(ctx, DispatchInput{
		OrderID:       order.ID,
		DriverName:    "R. Alvarez",
		VehicleNumber: "TRK-12",
		Actor:         f.staff,
	})
	require.NoError(t, err)
	require.Equal(t, enums.DeliveryOrderStatusDispatched, order.Status)
	require.NotNil(t, order.Dispatch)
	require.Equal(t, "R. Alvarez", order.Dispatch.DriverName)
	require.Equal(t, "TRK-12", order.Dispatch.VehicleNumber)
	require.False(t, order.Dispatch.DispatchedAt.IsZero())

	order, err = svc.Complete(ctx, transition)
	require.NoError(t, err)
	require.Equal(t, enums.DeliveryOrderStatusCompleted, order.Status)
	require.NotNil(t, order.CompletedAt)

	// Terminal state rejects further moves.
	_, err = svc.Complete(ctx, transition)
	coded = pkgerrors.As(err)
	require.NotNil(t, coded)
	require.Equal(t, pkgerrors.CodeStateConflict, coded.Code())
}

func TestListFlagsRequesterOrders(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	f := seedFixture(t, db)
	svc := newService(t, db)
	ctx := context.Background()
	key := seedStock(t, db, f, "B-20260901-A", 10)

	_, err := svc.Submit(ctx, SubmitInput{
		Items: []SubmitItemInput{lineFor(key, 2)},
		Actor: f.customer,
	})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, SubmitInput{
		Items: []SubmitItemInput{lineFor(key, 3)},
		Actor: f.staff,
	})
	require.NoError(t, err)

	summaries, err := svc.List(ctx, f.customer)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	byNumber := make(map[string]OrderSummary, len(summaries))
	for _, summary := range summaries {
		byNumber[summary.OrderNumber] = summary
	}
	require.True(t, byNumber["ORD-000001"].IsCurrentUser)
	require.False(t, byNumber["REQ-000001"].IsCurrentUser)
}

// collidingNumberRepo mimics a concurrent mint winning the race: the
// insert itself comes back with a unique-index violation.
type collidingNumberRepo struct {
	Repository
}

func (r collidingNumberRepo) WithTx(tx *gorm.DB) Repository {
	return collidingNumberRepo{Repository: r.Repository.WithTx(tx)}
}

func (collidingNumberRepo) CreateOrder(context.Context, *models.DeliveryOrder) (*models.DeliveryOrder, error) {
	return nil, fmt.Errorf(`duplicate key value violates unique constraint "idx_delivery_orders_order_number"`)
}

func TestSubmitSurfacesDuplicateNumberOnUniqueViolation(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	f := seedFixture(t, db)
	key := seedStock(t, db, f, "B-20260901-A", 10)

	svc, err := NewService(collidingNumberRepo{Repository: NewRepository(db)}, gormTxRunner{db: db}, nil)
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), SubmitInput{
		Items: []SubmitItemInput{lineFor(key, 4)},
		Actor: f.customer,
	})
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	require.Equal(t, pkgerrors.CodeDuplicateNumber, coded.Code())

	// The rolled-back transaction leaves the balance and ledger alone.
	require.Equal(t, 10, balanceAt(t, db, key))
	var movements int64
	require.NoError(t, db.Model(&models.StockMovement{}).
		Where("type = ?", enums.MovementTypeOut).
		Count(&movements).Error)
	require.Zero(t, movements)
}
