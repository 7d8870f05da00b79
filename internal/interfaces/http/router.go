package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/retail-ledger/internal/application/inventory"
	"github.com/jhoicas/retail-ledger/internal/application/payment"
	"github.com/jhoicas/retail-ledger/pkg/logger"
)

// RoleAdmin rol que puede forzar la re-proyección de saldos.
const RoleAdmin = "admin"

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Payments    *payment.UseCase
	Adjustments *inventory.AdjustmentUseCase
	Transfers   *inventory.TransferUseCase
	Audit       *inventory.AuditUseCase
	JWTSecret   string
	JWTIssuer   string
	Log         *logger.Logger
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))

	paymentHandler := NewPaymentHandler(deps.Payments, deps.Log)
	payments := api.Group("/payments")
	payments.Post("/", paymentHandler.Create)
	payments.Get("/", paymentHandler.List)
	payments.Get("/totals", paymentHandler.Totals)
	payments.Get("/:id", paymentHandler.Get)
	payments.Delete("/:id", paymentHandler.Delete)

	orders := api.Group("/orders")
	orders.Get("/unpaid", paymentHandler.UnpaidOrders)
	orders.Post("/:id/reproject", RequireRole(RoleAdmin), paymentHandler.Reproject)

	adjustmentHandler := NewAdjustmentHandler(deps.Adjustments, deps.Log)
	adjustments := api.Group("/stock-adjustments")
	adjustments.Post("/", adjustmentHandler.Create)
	adjustments.Get("/", adjustmentHandler.List)
	adjustments.Get("/:id", adjustmentHandler.Get)
	adjustments.Patch("/:id", adjustmentHandler.Update)
	adjustments.Delete("/:id", adjustmentHandler.Delete)
	adjustments.Post("/:id/lock", adjustmentHandler.Lock)

	transferHandler := NewTransferHandler(deps.Transfers, deps.Log)
	transfers := api.Group("/stock-transfers")
	transfers.Post("/", transferHandler.Create)
	transfers.Get("/", transferHandler.List)
	transfers.Get("/:id", transferHandler.Get)

	inventoryHandler := NewInventoryHandler(deps.Audit, deps.Log)
	inv := api.Group("/inventory")
	inv.Get("/movements", inventoryHandler.ListMovements)
	inv.Get("/levels/:product_id/:warehouse_id/reconcile", inventoryHandler.ReconcileStock)
}
