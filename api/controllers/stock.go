package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/stackbin/stackbin-backend/api/responses"
	internalstock "github.com/stackbin/stackbin-backend/internal/stock"
	"github.com/stackbin/stackbin-backend/pkg/enums"
	pkgerrors "github.com/stackbin/stackbin-backend/pkg/errors"
	"github.com/stackbin/stackbin-backend/pkg/logger"
)

// WarehouseLayout returns a warehouse's racks and bins with their
// current occupants.
func WarehouseLayout(repo internalstock.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stock repository unavailable"))
			return
		}

		warehouseID, err := parseUUIDParam(r, "warehouseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		layout, err := repo.LayoutForWarehouse(r.Context(), warehouseID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, layout)
	}
}

// ItemStockTotals returns per-item stock sums across all warehouses.
func ItemStockTotals(repo internalstock.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stock repository unavailable"))
			return
		}

		totals, err := repo.ItemTotals(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, totals)
	}
}

// WarehouseStockTotals returns per-warehouse stock sums.
func WarehouseStockTotals(repo internalstock.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stock repository unavailable"))
			return
		}

		totals, err := repo.WarehouseTotals(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, totals)
	}
}

// ItemBalances returns an item's balance rows, soonest expiry first.
func ItemBalances(repo internalstock.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stock repository unavailable"))
			return
		}

		itemID, err := parseUUIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		balances, err := repo.BalancesForItem(r.Context(), itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, balances)
	}
}

// MonthlyMovements lists ledger rows for a calendar month, optionally
// filtered to one direction via ?direction=IN|OUT.
func MonthlyMovements(repo internalstock.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stock repository unavailable"))
			return
		}

		year, month, err := parseMonthQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var direction *enums.MovementType
		if raw := strings.TrimSpace(r.URL.Query().Get("direction")); raw != "" {
			parsed, err := enums.ParseMovementType(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("invalid direction %q", raw)))
				return
			}
			direction = &parsed
		}

		movements, err := repo.MovementsByMonth(r.Context(), year, month, direction)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, movements)
	}
}

func parseMonthQuery(r *http.Request) (int, time.Month, error) {
	rawYear := strings.TrimSpace(r.URL.Query().Get("year"))
	rawMonth := strings.TrimSpace(r.URL.Query().Get("month"))

	now := time.Now().UTC()
	year := now.Year()
	month := now.Month()

	if rawYear != "" {
		parsed, err := strconv.Atoi(rawYear)
		if err != nil || parsed < 2000 || parsed > 2200 {
			return 0, 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid year %q", rawYear))
		}
		year = parsed
	}
	if rawMonth != "" {
		parsed, err := strconv.Atoi(rawMonth)
		if err != nil || parsed < 1 || parsed > 12 {
			return 0, 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid month %q", rawMonth))
		}
		month = time.Month(parsed)
	}

	return year, month, nil
}
