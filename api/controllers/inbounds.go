package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/stackbin/stackbin-backend/api/responses"
	"github.com/stackbin/stackbin-backend/api/validators"
	internalinbound "github.com/stackbin/stackbin-backend/internal/inbound"
	pkgerrors "github.com/stackbin/stackbin-backend/pkg/errors"
	"github.com/stackbin/stackbin-backend/pkg/logger"
)

// CreateInbound registers a pending receiving document with its planned lines.
func CreateInbound(svc internalinbound.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inbound service unavailable"))
			return
		}

		actorID, role, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createInboundRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		warehouseID, err := uuid.Parse(payload.WarehouseID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid warehouse id"))
			return
		}

		expectedAt, err := parseTimeField(payload.ExpectedArrivalAt, "expected_arrival_at")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if expectedAt == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "expected_arrival_at is required"))
			return
		}

		items := make([]internalinbound.CreateItemInput, 0, len(payload.Items))
		for _, line := range payload.Items {
			itemID, err := uuid.Parse(line.ItemID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item id"))
				return
			}
			rackID, err := uuid.Parse(line.RackID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid rack id"))
				return
			}
			expiry, err := parseTimeField(stringValue(line.ExpiryDate), "expiry_date")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			maintenance, err := parseTimeField(stringValue(line.MaintenanceDate), "maintenance_date")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			items = append(items, internalinbound.CreateItemInput{
				ItemID:            itemID,
				Quantity:          line.Quantity,
				RackID:            rackID,
				ExpiryDate:        expiry,
				MaintenanceDate:   maintenance,
				ManufacturingYear: line.ManufacturingYear,
			})
		}

		input := internalinbound.CreateInput{
			WarehouseID:       warehouseID,
			ExpectedArrivalAt: *expectedAt,
			Notes:             payload.Notes,
			Items:             items,
			Actor:             internalinbound.Actor{UserID: actorID, Role: role},
		}

		created, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// VerifyInbound confirms a pending arrival and opens it for putaway.
func VerifyInbound(svc internalinbound.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inbound service unavailable"))
			return
		}

		actorID, role, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		inboundID, err := parseUUIDParam(r, "inboundId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Verify(r.Context(), internalinbound.VerifyInput{
			InboundID: inboundID,
			Actor:     internalinbound.Actor{UserID: actorID, Role: role},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, updated)
	}
}

// PutawayInboundItem stores one verified line into an operator-chosen bin.
func PutawayInboundItem(svc internalinbound.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inbound service unavailable"))
			return
		}

		actorID, role, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		inboundID, err := parseUUIDParam(r, "inboundId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := parseUUIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload putawayRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rackID, err := uuid.Parse(payload.RackID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid rack id"))
			return
		}
		binID, err := uuid.Parse(payload.BinID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid bin id"))
			return
		}

		updated, err := svc.Putaway(r.Context(), internalinbound.PutawayInput{
			InboundID:        inboundID,
			InboundItemID:    itemID,
			RackID:           rackID,
			BinID:            binID,
			ReceivedQuantity: payload.ReceivedQuantity,
			Actor:            internalinbound.Actor{UserID: actorID, Role: role},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, updated)
	}
}

// GetInbound returns one receiving document with its lines.
func GetInbound(svc internalinbound.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inbound service unavailable"))
			return
		}

		inboundID, err := parseUUIDParam(r, "inboundId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		found, err := svc.Get(r.Context(), inboundID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, found)
	}
}

// ListInbounds returns every receiving document, newest first.
func ListInbounds(svc internalinbound.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inbound service unavailable"))
			return
		}

		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

type createInboundRequest struct {
	WarehouseID       string                     `json:"warehouse_id" validate:"required,uuid4"`
	ExpectedArrivalAt string                     `json:"expected_arrival_at" validate:"required"`
	Notes             *string                    `json:"notes,omitempty"`
	Items             []createInboundItemRequest `json:"items" validate:"required,min=1,dive"`
}

type createInboundItemRequest struct {
	ItemID            string  `json:"item_id" validate:"required,uuid4"`
	Quantity          int     `json:"quantity" validate:"required,min=1"`
	RackID            string  `json:"rack_id" validate:"required,uuid4"`
	ExpiryDate        *string `json:"expiry_date,omitempty"`
	MaintenanceDate   *string `json:"maintenance_date,omitempty"`
	ManufacturingYear *int    `json:"manufacturing_year,omitempty"`
}

type putawayRequest struct {
	RackID           string `json:"rack_id" validate:"required,uuid4"`
	BinID            string `json:"bin_id" validate:"required,uuid4"`
	ReceivedQuantity int    `json:"received_quantity" validate:"required,min=1"`
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
