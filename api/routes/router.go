package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sahelretail/pos-backend/api/controllers"
	"github.com/sahelretail/pos-backend/api/middleware"
	"github.com/sahelretail/pos-backend/internal/access"
	"github.com/sahelretail/pos-backend/internal/alerts"
	"github.com/sahelretail/pos-backend/internal/auth"
	"github.com/sahelretail/pos-backend/internal/employees"
	"github.com/sahelretail/pos-backend/internal/inventory"
	"github.com/sahelretail/pos-backend/internal/products"
	"github.com/sahelretail/pos-backend/internal/shifts"
	"github.com/sahelretail/pos-backend/internal/transfers"
	"github.com/sahelretail/pos-backend/pkg/auth/session"
	"github.com/sahelretail/pos-backend/pkg/config"
	"github.com/sahelretail/pos-backend/pkg/db"
	"github.com/sahelretail/pos-backend/pkg/logger"
	"github.com/sahelretail/pos-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessionChecker session.AccessSessionChecker,
	resolver access.Resolver,
	authService auth.Service,
	inventoryService inventory.Service,
	transferService transfers.Service,
	shiftService shifts.Service,
	alertService alerts.Service,
	employeeService employees.Service,
	productService products.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	table := resolver.Table()

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.AuthLogin(authService, logg))
		r.Post("/refresh", controllers.AuthRefresh(authService, logg))
		r.With(middleware.Auth(cfg.JWT, sessionChecker, logg)).Post("/logout", controllers.AuthLogout(authService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))
		r.Use(middleware.Scope(resolver, logg))

		r.Route("/inventory", func(r chi.Router) {
			r.With(middleware.RequirePermission(table, access.PermInventoryRead, logg)).Get("/stock", controllers.ListStock(inventoryService, logg))
			r.With(middleware.RequirePermission(table, access.PermInventoryRead, logg)).Get("/stock/low", controllers.GetLowStock(inventoryService, logg))
			r.With(middleware.RequirePermission(table, access.PermInventoryRead, logg)).Get("/movements", controllers.ListMovements(inventoryService, logg))
			r.With(middleware.RequirePermission(table, access.PermInventoryAdjust, logg)).Post("/adjustments", controllers.AdjustStock(inventoryService, logg))
			r.With(middleware.RequirePermission(table, access.PermInventoryLevels, logg)).Put("/levels", controllers.SetStockLevels(inventoryService, logg))
		})

		r.Route("/transfers", func(r chi.Router) {
			r.With(middleware.RequirePermission(table, access.PermTransfersRead, logg)).Get("/", controllers.ListTransfers(transferService, logg))
			r.With(middleware.RequirePermission(table, access.PermTransfersRead, logg)).Get("/{transferID}", controllers.GetTransfer(transferService, logg))
			r.With(middleware.RequirePermission(table, access.PermTransfersCreate, logg)).Post("/", controllers.CreateTransfer(transferService, logg))
			r.With(middleware.RequirePermission(table, access.PermTransfersApprove, logg)).Post("/{transferID}/decision", controllers.DecideTransfer(transferService, logg))
			r.With(middleware.RequirePermission(table, access.PermTransfersReceive, logg)).Post("/{transferID}/receive", controllers.ReceiveTransfer(transferService, logg))
		})

		r.Route("/shifts", func(r chi.Router) {
			r.With(middleware.RequirePermission(table, access.PermShiftsStart, logg)).Post("/start", controllers.StartShift(shiftService, logg))
			r.With(middleware.RequirePermission(table, access.PermShiftsEnd, logg)).Post("/end", controllers.EndShift(shiftService, logg))
			r.With(middleware.RequirePermission(table, access.PermShiftsRead, logg)).Get("/current", controllers.CurrentShift(shiftService, logg))
			r.With(middleware.RequirePermission(table, access.PermShiftsRead, logg)).Get("/", controllers.ListShifts(shiftService, logg))
			r.With(middleware.RequirePermission(table, access.PermShiftsRead, logg)).Get("/{shiftID}", controllers.GetShift(shiftService, logg))
		})

		r.Route("/alerts", func(r chi.Router) {
			r.Use(middleware.RequirePermission(table, access.PermAlertsRead, logg))
			r.Get("/", controllers.ListAlerts(alertService, logg))
			r.Get("/unread-count", controllers.UnreadAlertCount(alertService, logg))
			r.With(middleware.RequirePermission(table, access.PermAlertsManage, logg)).Post("/{alertID}/read", controllers.MarkAlertRead(alertService, logg))
			r.With(middleware.RequirePermission(table, access.PermAlertsManage, logg)).Post("/read-all", controllers.MarkAllAlertsRead(alertService, logg))
		})

		r.Route("/employees", func(r chi.Router) {
			r.Get("/{employeeID}", controllers.GetEmployee(employeeService, logg))
			r.With(middleware.RequirePermission(table, access.PermEmployeesManage, logg)).Get("/", controllers.ListEmployees(employeeService, logg))
			r.With(middleware.RequirePermission(table, access.PermEmployeesManage, logg)).Post("/", controllers.CreateEmployee(employeeService, logg))
			r.With(middleware.RequirePermission(table, access.PermEmployeesManage, logg)).Post("/{employeeID}/deactivate", controllers.DeactivateEmployee(employeeService, logg))
			r.With(middleware.RequirePermission(table, access.PermWarehousesManage, logg)).Post("/{employeeID}/warehouses/{warehouseID}", controllers.AssignWarehouse(employeeService, logg))
			r.With(middleware.RequirePermission(table, access.PermWarehousesManage, logg)).Delete("/{employeeID}/warehouses/{warehouseID}", controllers.UnassignWarehouse(employeeService, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.With(middleware.RequirePermission(table, access.PermInventoryRead, logg)).Get("/", controllers.ListProducts(productService, logg))
			r.With(middleware.RequirePermission(table, access.PermInventoryRead, logg)).Get("/{productID}", controllers.GetProduct(productService, logg))
			r.With(middleware.RequirePermission(table, access.PermEmployeesManage, logg)).Delete("/{productID}", controllers.DeleteProduct(productService, logg))
		})
	})

	return r
}
