package dispatch

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

// NewService builds a dispatch service with the required dependencies.
// Metrics may be nil.
func NewService(repo Repository, tx txRunner, workflowMetrics *metrics.WorkflowMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("dispatch repository required")
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

func (s *service) Submit(ctx context.Context, input SubmitInput) (*models.DeliveryOrder, error) {
	if input.Actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one line required")
	}
	for i, line := range input.Items {
		if line.ItemID == uuid.Nil || line.WarehouseID == uuid.Nil || line.BinID == uuid.Nil || line.BatchID == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line %d has an incomplete stock key", i))
		}
		if line.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line %d quantity must be at least 1", i))
		}
	}

	started := s.now()
	var created *models.DeliveryOrder
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		// Sufficiency pre-check on aggregated demand: lines sharing a
		// key are summed before comparing against the balance, and no
		// mutation happens until every key passes.
		demand := make(map[stock.Key]int)
		order := make([]stock.Key, 0, len(input.Items))
		for _, line := range input.Items {
			key := stockKey(line)
			if _, seen := demand[key]; !seen {
				order = append(order, key)
			}
			demand[key] += line.Quantity
		}

		rows := make(map[stock.Key]*models.ItemStock, len(demand))
		for _, key := range order {
			row, err := stock.RowFor(ctx, tx, key)
			if err != nil {
				return err
			}
			available := 0
			if row != nil {
				available = row.Quantity
			}
			if available < demand[key] {
				return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock for requested lines").
					WithDetails(map[string]any{
						"item_id":      key.ItemID,
						"warehouse_id": key.WarehouseID,
						"bin_id":       key.BinID,
						"batch_id":     key.BatchID,
						"available":    available,
						"requested":    demand[key],
					})
			}
			rows[key] = row
		}

		number, err := numbering.NextOrderNumber(ctx, tx, input.Actor.Role)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mint order number")
		}

		deliveryOrder := &models.DeliveryOrder{
			ID:          uuid.New(),
			OrderNumber: number,
			RequesterID: input.Actor.UserID,
			Status:      enums.DeliveryOrderStatusPending,
			DueDate:     input.DueDate,
			Notes:       input.Notes,
			CreatedBy:   input.Actor.UserID,
			UpdatedBy:   input.Actor.UserID,
		}
		for _, line := range input.Items {
			item := models.DeliveryOrderItem{
				ID:              uuid.New(),
				DeliveryOrderID: deliveryOrder.ID,
				ItemID:          line.ItemID,
				WarehouseID:     line.WarehouseID,
				BinID:           line.BinID,
				BatchID:         line.BatchID,
				Quantity:        line.Quantity,
			}
			if row := rows[stockKey(line)]; row != nil {
				item.ExpiryDate = row.ExpiryDate
			}
			deliveryOrder.Items = append(deliveryOrder.Items, item)
		}

		created, err = repo.CreateOrder(ctx, deliveryOrder)
		if err != nil {
			if pkgdb.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeDuplicateNumber, err, "order number already taken")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create delivery order")
		}

		// Decrement per line, not per aggregated key, so each ledger
		// row references its own order line.
		for _, item := range created.Items {
			key := stock.Key{
				ItemID:      item.ItemID,
				WarehouseID: item.WarehouseID,
				BinID:       item.BinID,
				BatchID:     item.BatchID,
			}
			ref := stock.Reference{Type: enums.MovementReferenceDeliveryOrderItem, ID: item.ID}
			if err := stock.Decrease(ctx, tx, key, item.Quantity, ref); err != nil {
				return err
			}
			if _, err := stock.FreeBinIfEmpty(ctx, tx, item.BinID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if coded := pkgerrors.As(err); coded != nil && coded.Code() == pkgerrors.CodeInsufficientStock {
			s.metrics.IncInsufficientStock()
			s.metrics.IncSubmission("insufficient_stock")
		}
		return nil, err
	}

	s.metrics.IncSubmission("success")
	s.metrics.ObserveDuration("submit", s.now().Sub(started))
	return created, nil
}

func (s *service) StartPicking(ctx context.Context, input TransitionInput) (*models.DeliveryOrder, error) {
	return s.transition(ctx, input, enums.DeliveryOrderStatusPicking, nil)
}

func (s *service) CompletePicking(ctx context.Context, input TransitionInput) (*models.DeliveryOrder, error) {
	return s.transition(ctx, input, enums.DeliveryOrderStatusPicked, nil)
}

func (s *service) StartPacking(ctx context.Context, input TransitionInput) (*models.DeliveryOrder, error) {
	return s.transition(ctx, input, enums.DeliveryOrderStatusPacking, nil)
}

func (s *service) CompletePacking(ctx context.Context, input TransitionInput) (*models.DeliveryOrder, error) {
	return s.transition(ctx, input, enums.DeliveryOrderStatusPacked, nil)
}

func (s *service) Dispatch(ctx context.Context, input DispatchInput) (*models.DeliveryOrder, error) {
	if input.DriverName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "driver name required")
	}
	if input.VehicleNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle number required")
	}

	transitionInput := TransitionInput{OrderID: input.OrderID, Actor: input.Actor}
	return s.transition(ctx, transitionInput, enums.DeliveryOrderStatusDispatched, func(tx *gorm.DB, order *models.DeliveryOrder) error {
		dispatch := &models.Dispatch{
			ID:              uuid.New(),
			DeliveryOrderID: order.ID,
			DriverName:      input.DriverName,
			VehicleNumber:   input.VehicleNumber,
			DispatchedAt:    s.now(),
			CreatedBy:       input.Actor.UserID,
		}
		if _, err := s.repo.WithTx(tx).CreateDispatch(ctx, dispatch); err != nil {
			if pkgdb.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "order already dispatched")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create dispatch record")
		}
		return nil
	})
}

func (s *service) Complete(ctx context.Context, input TransitionInput) (*models.DeliveryOrder, error) {
	return s.transition(ctx, input, enums.DeliveryOrderStatusCompleted, func(tx *gorm.DB, order *models.DeliveryOrder) error {
		return s.repo.WithTx(tx).UpdateOrder(ctx, order.ID, map[string]any{"completed_at": s.now()})
	})
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.DeliveryOrder, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindOrder(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery order")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, actor Actor) ([]OrderSummary, error) {
	orders, err := s.repo.ListOrders(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list delivery orders")
	}
	summaries := make([]OrderSummary, 0, len(orders))
	for _, order := range orders {
		summaries = append(summaries, OrderSummary{
			DeliveryOrder: order,
			IsCurrentUser: order.RequesterID == actor.UserID,
		})
	}
	return summaries, nil
}

// transition moves the order to target after checking the flow allows
// it, running extra inside the same transaction when provided.
func (s *service) transition(ctx context.Context, input TransitionInput, target enums.DeliveryOrderStatus, extra func(tx *gorm.DB, order *models.DeliveryOrder) error) (*models.DeliveryOrder, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.Actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var result *models.DeliveryOrder
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrder(ctx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "delivery order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery order")
		}
		if !order.Status.CanTransitionTo(target) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("order cannot move to %s", target)).
				WithDetails(map[string]any{
					"expected": expectedStatusFor(target),
					"actual":   order.Status.String(),
				})
		}

		updates := map[string]any{
			"status":     target,
			"updated_by": input.Actor.UserID,
		}
		if err := repo.UpdateOrder(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}

		if extra != nil {
			if err := extra(tx, order); err != nil {
				return err
			}
		}

		result, err = repo.FindOrder(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload delivery order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// expectedStatusFor names the only status the linear flow departs from
// to reach target.
func expectedStatusFor(target enums.DeliveryOrderStatus) string {
	switch target {
	case enums.DeliveryOrderStatusPicking:
		return enums.DeliveryOrderStatusPending.String()
	case enums.DeliveryOrderStatusPicked:
		return enums.DeliveryOrderStatusPicking.String()
	case enums.DeliveryOrderStatusPacking:
		return enums.DeliveryOrderStatusPicked.String()
	case enums.DeliveryOrderStatusPacked:
		return enums.DeliveryOrderStatusPacking.String()
	case enums.DeliveryOrderStatusDispatched:
		return enums.DeliveryOrderStatusPacked.String()
	case enums.DeliveryOrderStatusCompleted:
		return enums.DeliveryOrderStatusDispatched.String()
	default:
		return ""
	}
}

func stockKey(line SubmitItemInput) stock.Key {
	return stock.Key{
		ItemID:      line.ItemID,
		WarehouseID: line.WarehouseID,
		BinID:       line.BinID,
		BatchID:     line.BatchID,
	}
}
