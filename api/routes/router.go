package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stackbin/stackbin-backend/api/controllers"
	"github.com/stackbin/stackbin-backend/api/middleware"
	internaldispatch "github.com/stackbin/stackbin-backend/internal/dispatch"
	internalinbound "github.com/stackbin/stackbin-backend/internal/inbound"
	internalstock "github.com/stackbin/stackbin-backend/internal/stock"
	"github.com/stackbin/stackbin-backend/pkg/config"
	"github.com/stackbin/stackbin-backend/pkg/db"
	"github.com/stackbin/stackbin-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	inboundSvc internalinbound.Service,
	dispatchSvc internaldispatch.Service,
	stockRepo internalstock.Repository,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, logg))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/inbounds", func(r chi.Router) {
			r.Use(middleware.RequireInternal(logg))
			r.Post("/", controllers.CreateInbound(inboundSvc, logg))
			r.Get("/", controllers.ListInbounds(inboundSvc, logg))
			r.Get("/{inboundId}", controllers.GetInbound(inboundSvc, logg))
			r.Post("/{inboundId}/verify", controllers.VerifyInbound(inboundSvc, logg))
			r.Post("/{inboundId}/items/{itemId}/putaway", controllers.PutawayInboundItem(inboundSvc, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.SubmitDeliveryOrder(dispatchSvc, logg))
			r.Get("/", controllers.ListDeliveryOrders(dispatchSvc, logg))
			r.Get("/{orderId}", controllers.GetDeliveryOrder(dispatchSvc, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireInternal(logg))
				r.Post("/{orderId}/start-picking", controllers.TransitionDeliveryOrder(dispatchSvc.StartPicking, logg))
				r.Post("/{orderId}/complete-picking", controllers.TransitionDeliveryOrder(dispatchSvc.CompletePicking, logg))
				r.Post("/{orderId}/start-packing", controllers.TransitionDeliveryOrder(dispatchSvc.StartPacking, logg))
				r.Post("/{orderId}/complete-packing", controllers.TransitionDeliveryOrder(dispatchSvc.CompletePacking, logg))
				r.Post("/{orderId}/dispatch", controllers.DispatchDeliveryOrder(dispatchSvc, logg))
				r.Post("/{orderId}/complete", controllers.TransitionDeliveryOrder(dispatchSvc.Complete, logg))
			})
		})

		r.Route("/stock", func(r chi.Router) {
			r.Use(middleware.RequireInternal(logg))
			r.Get("/items", controllers.ItemStockTotals(stockRepo, logg))
			r.Get("/items/{itemId}/balances", controllers.ItemBalances(stockRepo, logg))
			r.Get("/warehouses", controllers.WarehouseStockTotals(stockRepo, logg))
			r.Get("/warehouses/{warehouseId}/layout", controllers.WarehouseLayout(stockRepo, logg))
			r.Get("/movements", controllers.MonthlyMovements(stockRepo, logg))
		})
	})

	return r
}
