// Package numbering mints the human-readable identifiers used as
// correlation keys across the ledger: inbound numbers, batch ids and
// delivery order numbers. All generators run on the caller's
// transaction so the scan and the subsequent insert share one
// isolation scope; the unique indexes on the target tables are the
// final arbiter if two transactions race to the same candidate.
package numbering

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/stackbin/stackbin-backend/pkg/enums"
)

const (
	inboundNumberPrefix = "GRN"
	batchIDPrefix       = "B"

	// OrderPrefixCustomer and OrderPrefixStaff pick the delivery order
	// series based on who raised the request.
	OrderPrefixCustomer = "ORD"
	OrderPrefixStaff    = "REQ"
)

// NextInboundNumber returns the next GRN-YYYY-NNN number. The integer
// part restarts at 1 each calendar year and is padded to three digits,
// growing naturally past 999.
func NextInboundNumber(ctx context.Context, tx *gorm.DB, now time.Time) (string, error) {
	prefix := fmt.Sprintf("%s-%d-", inboundNumberPrefix, now.Year())

	last, err := lastWithPrefix(ctx, tx, "inbounds", "inbound_number", prefix)
	if err != nil {
		return "", fmt.Errorf("scanning inbound numbers: %w", err)
	}

	next := 1
	if last != "" {
		seq, err := strconv.Atoi(strings.TrimPrefix(last, prefix))
		if err != nil {
			return "", fmt.Errorf("malformed inbound number %q: %w", last, err)
		}
		next = seq + 1
	}
	return fmt.Sprintf("%s%03d", prefix, next), nil
}

// NextBatchID returns the next B-YYYYMMDD-<letters> batch id for the
// given day. The letter suffix runs A..Z then rolls over to AA, like a
// spreadsheet column.
func NextBatchID(ctx context.Context, tx *gorm.DB, now time.Time) (string, error) {
	prefix := fmt.Sprintf("%s-%s-", batchIDPrefix, now.Format("20060102"))

	last, err := lastWithPrefix(ctx, tx, "inbounds", "batch_id", prefix)
	if err != nil {
		return "", fmt.Errorf("scanning batch ids: %w", err)
	}

	suffix := ""
	if last != "" {
		suffix = strings.TrimPrefix(last, prefix)
	}
	return prefix + nextLetterSequence(suffix), nil
}

// NextOrderNumber returns the next delivery order number for the
// series implied by the requester's role: ORD-NNNNNN for customers,
// REQ-NNNNNN for warehouse personnel. Padded to six digits.
func NextOrderNumber(ctx context.Context, tx *gorm.DB, role enums.ActorRole) (string, error) {
	prefix := OrderPrefixFor(role) + "-"

	last, err := lastWithPrefix(ctx, tx, "delivery_orders", "order_number", prefix)
	if err != nil {
		return "", fmt.Errorf("scanning order numbers: %w", err)
	}

	next := 1
	if last != "" {
		seq, err := strconv.Atoi(strings.TrimPrefix(last, prefix))
		if err != nil {
			return "", fmt.Errorf("malformed order number %q: %w", last, err)
		}
		next = seq + 1
	}
	return fmt.Sprintf("%s%06d", prefix, next), nil
}

// OrderPrefixFor maps a requester role onto its order number series.
func OrderPrefixFor(role enums.ActorRole) string {
	if role == enums.ActorRoleCustomer {
		return OrderPrefixCustomer
	}
	return OrderPrefixStaff
}

// lastWithPrefix finds the highest existing identifier sharing the
// prefix. Ordering by (length, value) keeps the comparison numeric in
// spirit: "GRN-2026-1000" sorts after "GRN-2026-999" and "AA" after
// "Z" even though plain lexicographic order disagrees.
func lastWithPrefix(ctx context.Context, tx *gorm.DB, table, column, prefix string) (string, error) {
	var last string
	err := tx.WithContext(ctx).
		Table(table).
		Select(column).
		Where(column+" LIKE ?", prefix+"%").
		Order(fmt.Sprintf("length(%s) DESC, %s DESC", column, column)).
		Limit(1).
		Scan(&last).Error
	if err != nil {
		return "", err
	}
	return last, nil
}

// nextLetterSequence increments a bijective base-26 suffix: "" -> A,
// A -> B, Z -> AA, AZ -> BA, ZZ -> AAA.
func nextLetterSequence(seq string) string {
	if seq == "" {
		return "A"
	}
	letters := []byte(seq)
	for i := len(letters) - 1; i >= 0; i-- {
		if letters[i] < 'Z' {
			letters[i]++
			return string(letters)
		}
		letters[i] = 'A'
	}
	return "A" + string(letters)
}
