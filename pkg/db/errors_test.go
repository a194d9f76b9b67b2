package db

import (
	"errors"
	"testing"
)

func TestIsUniqueViolation(t *testing.T) {
	pgErr := errors.New(`duplicate key value violates unique constraint "idx_inbounds_inbound_number"`)
	sqliteErr := errors.New("UNIQUE constraint failed: inbounds.inbound_number")

	if !IsUniqueViolation(pgErr, "") {
		t.Fatal("expected postgres duplicate-key text to match without a constraint name")
	}
	if !IsUniqueViolation(sqliteErr, "") {
		t.Fatal("expected sqlite unique-constraint text to match without a constraint name")
	}
	if !IsUniqueViolation(pgErr, "idx_inbounds_inbound_number") {
		t.Fatal("expected named constraint to match")
	}
	if IsUniqueViolation(pgErr, "idx_delivery_orders_order_number") {
		t.Fatal("expected mismatched constraint name to be rejected")
	}
	if IsUniqueViolation(errors.New("connection refused"), "") {
		t.Fatal("expected unrelated error to be rejected")
	}
	if IsUniqueViolation(nil, "") {
		t.Fatal("expected nil error to be rejected")
	}
}
