package numbering

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/stackbin/stackbin-backend/pkg/db/models"
	"github.com/stackbin/stackbin-backend/pkg/enums"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:numbering_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Inbound{}, &models.DeliveryOrder{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return conn
}

func seedInbound(t *testing.T, db *gorm.DB, number, batchID string) {
	t.Helper()
	inbound := models.Inbound{
		ID:                uuid.New(),
		InboundNumber:     number,
		BatchID:           batchID,
		WarehouseID:       uuid.New(),
		Status:            enums.InboundStatusPending,
		ExpectedArrivalAt: time.Now(),
		CreatedBy:         uuid.New(),
		UpdatedBy:         uuid.New(),
	}
	if err := db.Create(&inbound).Error; err != nil {
		t.Fatalf("seed inbound: %v", err)
	}
}

func seedDeliveryOrder(t *testing.T, db *gorm.DB, number string) {
	t.Helper()
	order := models.DeliveryOrder{
		ID:          uuid.New(),
		OrderNumber: number,
		RequesterID: uuid.New(),
		Status:      enums.DeliveryOrderStatusPending,
		CreatedBy:   uuid.New(),
		UpdatedBy:   uuid.New(),
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("seed delivery order: %v", err)
	}
}

func TestNextBatchIDFirstOfDay(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	day := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	first, err := NextBatchID(ctx, db, day)
	if err != nil {
		t.Fatalf("next batch id: %v", err)
	}
	if first != "B-20260901-A" {
		t.Fatalf("expected B-20260901-A, got %s", first)
	}

	seedInbound(t, db, "GRN-2026-001", first)

	second, err := NextBatchID(ctx, db, day)
	if err != nil {
		t.Fatalf("next batch id: %v", err)
	}
	if second != "B-20260901-B" {
		t.Fatalf("expected B-20260901-B, got %s", second)
	}
}

func TestNextBatchIDRollsOverZToAA(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	day := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	seedInbound(t, db, "GRN-2026-001", "B-20260901-Z")

	next, err := NextBatchID(ctx, db, day)
	if err != nil {
		t.Fatalf("next batch id: %v", err)
	}
	if next != "B-20260901-AA" {
		t.Fatalf("expected B-20260901-AA, got %s", next)
	}
}

func TestNextBatchIDIgnoresOtherDays(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedInbound(t, db, "GRN-2026-001", "B-20260831-F")

	next, err := NextBatchID(ctx, db, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("next batch id: %v", err)
	}
	if next != "B-20260901-A" {
		t.Fatalf("expected B-20260901-A, got %s", next)
	}
}

func TestNextInboundNumberResetsEachYear(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedInbound(t, db, "GRN-2025-007", "B-20251201-A")

	number, err := NextInboundNumber(ctx, db, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("next inbound number: %v", err)
	}
	if number != "GRN-2026-001" {
		t.Fatalf("expected GRN-2026-001, got %s", number)
	}

	seedInbound(t, db, "GRN-2026-012", "B-20260105-A")

	number, err = NextInboundNumber(ctx, db, time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("next inbound number: %v", err)
	}
	if number != "GRN-2026-013" {
		t.Fatalf("expected GRN-2026-013, got %s", number)
	}
}

func TestNextInboundNumberGrowsPastPadding(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedInbound(t, db, "GRN-2026-999", "B-20260901-A")
	seedInbound(t, db, "GRN-2026-1000", "B-20260902-A")

	number, err := NextInboundNumber(ctx, db, time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("next inbound number: %v", err)
	}
	if number != "GRN-2026-1001" {
		t.Fatalf("expected GRN-2026-1001, got %s", number)
	}
}

func TestNextOrderNumberPerRoleSeries(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedDeliveryOrder(t, db, "ORD-000009")
	seedDeliveryOrder(t, db, "REQ-000002")

	customer, err := NextOrderNumber(ctx, db, enums.ActorRoleCustomer)
	if err != nil {
		t.Fatalf("next order number: %v", err)
	}
	if customer != "ORD-000010" {
		t.Fatalf("expected ORD-000010, got %s", customer)
	}

	staff, err := NextOrderNumber(ctx, db, enums.ActorRoleStaff)
	if err != nil {
		t.Fatalf("next order number: %v", err)
	}
	if staff != "REQ-000003" {
		t.Fatalf("expected REQ-000003, got %s", staff)
	}
}

func TestNextLetterSequence(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "A"},
		{"A", "B"},
		{"Y", "Z"},
		{"Z", "AA"},
		{"AA", "AB"},
		{"AZ", "BA"},
		{"ZZ", "AAA"},
	}
	for _, tc := range cases {
		if got := nextLetterSequence(tc.in); got != tc.want {
			t.Errorf("nextLetterSequence(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
