package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/retail-ledger/internal/application/dto"
	"github.com/jhoicas/retail-ledger/internal/application/inventory"
	"github.com/jhoicas/retail-ledger/pkg/logger"
)

// InventoryHandler auditoría del libro de movimientos (protegido).
type InventoryHandler struct {
	uc  *inventory.AuditUseCase
	log *logger.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.AuditUseCase, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{uc: uc, log: log}
}

// ListMovements godoc
// @Summary      Historial de movimientos de inventario
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id      query  string  false  "producto"
// @Param        warehouse_id    query  string  false  "bodega"
// @Param        kind            query  string  false  "tipo de movimiento"
// @Param        reference_id    query  string  false  "documento origen"
// @Param        reference_type  query  string  false  "stock_adjustment | stock_transfer"
// @Param        from            query  string  false  "YYYY-MM-DD"
// @Param        to              query  string  false  "YYYY-MM-DD"
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.MovementFilterRequest
	if ok, err := bindQuery(c, &in, &in.PageRequest); !ok {
		return err
	}
	out, err := h.uc.ListMovements(c.Context(), companyID, in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// ReconcileStock godoc
// @Summary      Verificar stock contra el libro de movimientos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id    path  string  true  "producto"
// @Param        warehouse_id  path  string  true  "bodega"
// @Success      200  {object}  dto.StockReconciliationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/levels/{product_id}/{warehouse_id}/reconcile [get]
func (h *InventoryHandler) ReconcileStock(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.ReconcileStock(c.Context(), companyID, c.Params("product_id"), c.Params("warehouse_id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}
