package inbound

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stackbin/stackbin-backend/internal/numbering"
	"github.com/stackbin/stackbin-backend/internal/stock"
	pkgdb "github.com/stackbin/stackbin-backend/pkg/db"
	"github.com/stackbin/stackbin-backend/pkg/db/models"
	"github.com/stackbin/stackbin-backend/pkg/enums"
	pkgerrors "github.com/stackbin/stackbin-backend/pkg/errors"
	"github.com/stackbin/stackbin-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo    Repository
	tx      txRunner
	metrics *metrics.WorkflowMetrics
	now     func() time.Time
}

// NewService builds an inbound service with the required dependencies.
// Metrics may be nil.
func NewService(repo Repository, tx txRunner, workflowMetrics *metrics.WorkflowMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inbound repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:    repo,
		tx:      tx,
		metrics: workflowMetrics,
		now:     time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Inbound, error) {
	if input.WarehouseID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "warehouse id required")
	}
	if input.Actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item required")
	}
	for i, item := range input.Items {
		if item.ItemID == uuid.Nil || item.RackID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d has an invalid reference", i))
		}
		if item.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d quantity must be at least 1", i))
		}
	}

	var created *models.Inbound
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		ok, err := repo.WarehouseExists(ctx, input.WarehouseID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check warehouse")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeValidation, "warehouse does not exist")
		}

		for i, item := range input.Items {
			exists, err := repo.ItemExists(ctx, item.ItemID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check item")
			}
			if !exists {
				return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d does not exist", i))
			}
			rack, err := repo.FindRack(ctx, item.RackID)
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("rack for item %d does not exist", i))
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load rack")
			}
			if rack.WarehouseID != input.WarehouseID {
				return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("rack for item %d belongs to another warehouse", i))
			}
		}

		now := s.now()
		number, err := numbering.NextInboundNumber(ctx, tx, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mint inbound number")
		}
		batchID, err := numbering.NextBatchID(ctx, tx, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mint batch id")
		}

		inbound := &models.Inbound{
			ID:                uuid.New(),
			InboundNumber:     number,
			BatchID:           batchID,
			WarehouseID:       input.WarehouseID,
			Status:            enums.InboundStatusPending,
			ExpectedArrivalAt: input.ExpectedArrivalAt,
			Notes:             input.Notes,
			CreatedBy:         input.Actor.UserID,
			UpdatedBy:         input.Actor.UserID,
		}
		for _, item := range input.Items {
			inbound.Items = append(inbound.Items, models.InboundItem{
				ID:                uuid.New(),
				InboundID:         inbound.ID,
				ItemID:            item.ItemID,
				Quantity:          item.Quantity,
				RackID:            item.RackID,
				Status:            enums.InboundItemStatusPending,
				ExpiryDate:        item.ExpiryDate,
				MaintenanceDate:   item.MaintenanceDate,
				ManufacturingYear: item.ManufacturingYear,
			})
		}

		created, err = repo.CreateInbound(ctx, inbound)
		if err != nil {
			if pkgdb.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeDuplicateNumber, err, "inbound number already taken")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create inbound")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) Verify(ctx context.Context, input VerifyInput) (*models.Inbound, error) {
	if input.InboundID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "inbound id required")
	}
	if input.Actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var verified *models.Inbound
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		inbound, err := repo.FindInbound(ctx, input.InboundID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "inbound not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inbound")
		}
		if inbound.Status != enums.InboundStatusPending {
			return stateConflict(enums.InboundStatusPending.String(), inbound.Status.String(), "inbound cannot be verified in current state")
		}

		now := s.now()
		updates := map[string]any{
			"status":            enums.InboundStatusVerifying,
			"actual_arrival_at": now,
			"updated_by":        input.Actor.UserID,
		}
		if err := repo.UpdateInbound(ctx, inbound.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update inbound status")
		}

		inbound.Status = enums.InboundStatusVerifying
		inbound.ActualArrivalAt = &now
		inbound.UpdatedBy = input.Actor.UserID
		verified = inbound
		return nil
	})
	if err != nil {
		return nil, err
	}
	return verified, nil
}

func (s *service) Putaway(ctx context.Context, input PutawayInput) (*models.Inbound, error) {
	if input.InboundID == uuid.Nil || input.InboundItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "inbound and item ids required")
	}
	if input.RackID == uuid.Nil || input.BinID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rack and bin ids required")
	}
	if input.ReceivedQuantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "received quantity must be at least 1")
	}
	if input.Actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	started := s.now()
	var result *models.Inbound
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		inbound, err := repo.FindInbound(ctx, input.InboundID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "inbound not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inbound")
		}
		if inbound.Status != enums.InboundStatusVerifying {
			return stateConflict(enums.InboundStatusVerifying.String(), inbound.Status.String(), "putaway requires a verifying inbound")
		}

		item, err := repo.FindInboundItem(ctx, input.InboundItemID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "inbound item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inbound item")
		}
		if item.InboundID != inbound.ID {
			return pkgerrors.New(pkgerrors.CodeValidation, "item does not belong to inbound")
		}
		if item.Status == enums.InboundItemStatusStored {
			return pkgerrors.New(pkgerrors.CodeAlreadyStored, "inbound item already stored")
		}

		rack, err := repo.FindRack(ctx, input.RackID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeValidation, "rack does not exist")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load rack")
		}
		if rack.WarehouseID != inbound.WarehouseID {
			return pkgerrors.New(pkgerrors.CodeValidation, "rack belongs to another warehouse")
		}

		bin, err := repo.FindBin(ctx, input.BinID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeValidation, "bin does not exist")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load bin")
		}
		if bin.RackID != rack.ID {
			return pkgerrors.New(pkgerrors.CodeBinRackMismatch, "bin does not sit on the chosen rack").
				WithDetails(map[string]any{
					"bin_id":         bin.ID,
					"bin_rack_id":    bin.RackID,
					"chosen_rack_id": rack.ID,
				})
		}

		now := s.now()
		updates := map[string]any{
			"status":            enums.InboundItemStatusStored,
			"received_quantity": input.ReceivedQuantity,
			"final_rack_id":     rack.ID,
			"bin_id":            bin.ID,
			"stored_at":         now,
		}
		if err := repo.UpdateInboundItem(ctx, item.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store inbound item")
		}

		if err := stock.OccupyBin(ctx, tx, bin.ID); err != nil {
			return err
		}

		key := stock.Key{
			ItemID:      item.ItemID,
			WarehouseID: inbound.WarehouseID,
			BinID:       bin.ID,
			BatchID:     inbound.BatchID,
		}
		meta := stock.Metadata{
			ExpiryDate:        item.ExpiryDate,
			MaintenanceDate:   item.MaintenanceDate,
			ManufacturingYear: item.ManufacturingYear,
		}
		ref := stock.Reference{Type: enums.MovementReferenceInboundItem, ID: item.ID}
		if err := stock.Increase(ctx, tx, key, input.ReceivedQuantity, meta, ref); err != nil {
			return err
		}

		remaining, err := repo.CountItemsNotStored(ctx, inbound.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count pending items")
		}
		if remaining == 0 {
			completion := map[string]any{
				"status":     enums.InboundStatusCompleted,
				"updated_by": input.Actor.UserID,
			}
			if err := repo.UpdateInbound(ctx, inbound.ID, completion); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete inbound")
			}
		}

		result, err = repo.FindInbound(ctx, inbound.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload inbound")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncPutaway()
	s.metrics.ObserveDuration("putaway", s.now().Sub(started))
	return result, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Inbound, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "inbound id required")
	}
	inbound, err := s.repo.FindInbound(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inbound not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inbound")
	}
	return inbound, nil
}

func (s *service) List(ctx context.Context) ([]models.Inbound, error) {
	inbounds, err := s.repo.ListInbounds(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list inbounds")
	}
	return inbounds, nil
}

func stateConflict(expected, actual, message string) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, message).
		WithDetails(map[string]any{
			"expected": expected,
			"actual":   actual,
		})
}
