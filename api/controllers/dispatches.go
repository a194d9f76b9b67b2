package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/stackbin/stackbin-backend/api/responses"
	"github.com/stackbin/stackbin-backend/api/validators"
	internaldispatch "github.com/stackbin/stackbin-backend/internal/dispatch"
	"github.com/stackbin/stackbin-backend/pkg/db/models"
	pkgerrors "github.com/stackbin/stackbin-backend/pkg/errors"
	"github.com/stackbin/stackbin-backend/pkg/logger"
)

// SubmitDeliveryOrder creates a delivery order and allocates its stock
// in the same transaction.
func SubmitDeliveryOrder(svc internaldispatch.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dispatch service unavailable"))
			return
		}

		actorID, role, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload submitOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dueDate, err := parseTimeField(stringValue(payload.DueDate), "due_date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]internaldispatch.SubmitItemInput, 0, len(payload.Items))
		for _, line := range payload.Items {
			itemID, err := uuid.Parse(line.ItemID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item id"))
				return
			}
			warehouseID, err := uuid.Parse(line.WarehouseID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid warehouse id"))
				return
			}
			binID, err := uuid.Parse(line.BinID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid bin id"))
				return
			}
			items = append(items, internaldispatch.SubmitItemInput{
				ItemID:      itemID,
				WarehouseID: warehouseID,
				BinID:       binID,
				BatchID:     line.BatchID,
				Quantity:    line.Quantity,
			})
		}

		input := internaldispatch.SubmitInput{
			Items:   items,
			DueDate: dueDate,
			Notes:   payload.Notes,
			Actor:   internaldispatch.Actor{UserID: actorID, Role: role},
		}

		created, err := svc.Submit(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// TransitionDeliveryOrder advances an order one step along the
// fulfillment flow.
func TransitionDeliveryOrder(step func(context.Context, internaldispatch.TransitionInput) (*models.DeliveryOrder, error), logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if step == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dispatch service unavailable"))
			return
		}

		actorID, role, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := step(r.Context(), internaldispatch.TransitionInput{
			OrderID: orderID,
			Actor:   internaldispatch.Actor{UserID: actorID, Role: role},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, updated)
	}
}

// DispatchDeliveryOrder hands a packed order to a driver.
func DispatchDeliveryOrder(svc internaldispatch.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dispatch service unavailable"))
			return
		}

		actorID, role, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload dispatchRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Dispatch(r.Context(), internaldispatch.DispatchInput{
			OrderID:       orderID,
			DriverName:    payload.DriverName,
			VehicleNumber: payload.VehicleNumber,
			Actor:         internaldispatch.Actor{UserID: actorID, Role: role},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, updated)
	}
}

// GetDeliveryOrder returns one order with its lines and dispatch record.
func GetDeliveryOrder(svc internaldispatch.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dispatch service unavailable"))
			return
		}

		orderID, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		found, err := svc.Get(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, found)
	}
}

// ListDeliveryOrders returns every order, flagging those raised by the
// requesting actor.
func ListDeliveryOrders(svc internaldispatch.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dispatch service unavailable"))
			return
		}

		actorID, role, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), internaldispatch.Actor{UserID: actorID, Role: role})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

type submitOrderRequest struct {
	Items   []submitOrderItemRequest `json:"items" validate:"required,min=1,dive"`
	DueDate *string                  `json:"due_date,omitempty"`
	Notes   *string                  `json:"notes,omitempty"`
}

type submitOrderItemRequest struct {
	ItemID      string `json:"item_id" validate:"required,uuid4"`
	WarehouseID string `json:"warehouse_id" validate:"required,uuid4"`
	BinID       string `json:"bin_id" validate:"required,uuid4"`
	BatchID     string `json:"batch_id" validate:"required"`
	Quantity    int    `json:"quantity" validate:"required,min=1"`
}

type dispatchRequest struct {
	DriverName    string `json:"driver_name" validate:"required"`
	VehicleNumber string `json:"vehicle_number" validate:"required"`
}
