package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/retail-ledger/internal/application/dto"
	"github.com/jhoicas/retail-ledger/internal/application/inventory"
	"github.com/jhoicas/retail-ledger/pkg/logger"
)

// AdjustmentHandler ajustes manuales de inventario (protegido).
type AdjustmentHandler struct {
	uc  *inventory.AdjustmentUseCase
	log *logger.Logger
}

// NewAdjustmentHandler construye el handler.
func NewAdjustmentHandler(uc *inventory.AdjustmentUseCase, log *logger.Logger) *AdjustmentHandler {
	return &AdjustmentHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Crear ajuste de inventario
// @Tags         stock-adjustments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateAdjustmentRequest  true  "ajuste"
// @Success      201   {object}  dto.AdjustmentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock-adjustments [post]
func (h *AdjustmentHandler) Create(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.CreateAdjustmentRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Create(c.Context(), companyID, userID, in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Modificar ajuste (parcial)
// @Description  Registra un único movimiento con la diferencia neta entre el efecto anterior y el nuevo.
// @Tags         stock-adjustments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                       true  "ID del ajuste"
// @Param        body  body  dto.UpdateAdjustmentRequest  true  "campos a cambiar"
// @Success      200   {object}  dto.AdjustmentResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/stock-adjustments/{id} [patch]
func (h *AdjustmentHandler) Update(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.UpdateAdjustmentRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Update(c.Context(), companyID, userID, c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar ajuste (registra la reversión)
// @Tags         stock-adjustments
// @Security     Bearer
// @Param        id   path  string  true  "ID del ajuste"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/stock-adjustments/{id} [delete]
func (h *AdjustmentHandler) Delete(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	if err := h.uc.Delete(c.Context(), companyID, userID, c.Params("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Lock marca el ajuste como no modificable.
func (h *AdjustmentHandler) Lock(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	if err := h.uc.Lock(c.Context(), companyID, c.Params("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Get godoc
// @Summary      Obtener ajuste
// @Tags         stock-adjustments
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del ajuste"
// @Success      200  {object}  dto.AdjustmentResponse
// @Router       /api/stock-adjustments/{id} [get]
func (h *AdjustmentHandler) Get(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.Get(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar ajustes
// @Tags         stock-adjustments
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "bodega"
// @Param        product_id    query  string  false  "producto"
// @Success      200  {object}  dto.AdjustmentListResponse
// @Router       /api/stock-adjustments [get]
func (h *AdjustmentHandler) List(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	page := pageFromQuery(c)
	if ok, err := checkStruct(c, &page); !ok {
		return err
	}
	out, err := h.uc.List(c.Context(), companyID, c.Query("warehouse_id"), c.Query("product_id"), page)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}
