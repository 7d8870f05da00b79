package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/retail-ledger/internal/application/dto"
	"github.com/jhoicas/retail-ledger/internal/application/payment"
	"github.com/jhoicas/retail-ledger/pkg/logger"
)

// HeaderIdempotencyKey header opcional; tiene prioridad sobre idempotency_key del body.
const HeaderIdempotencyKey = "Idempotency-Key"

// PaymentHandler maneja pagos y saldos de órdenes (protegido).
type PaymentHandler struct {
	uc  *payment.UseCase
	log *logger.Logger
}

// NewPaymentHandler construye el handler.
func NewPaymentHandler(uc *payment.UseCase, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Registrar pago
// @Description  Crea el pago, lo aplica a las órdenes y recalcula su saldo. Un reenvío
//
//	detectado como duplicado responde 200 con is_duplicate=true y no escribe nada.
//
// @Tags         payments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                    false  "clave de idempotencia"
// @Param        body             body    dto.CreatePaymentRequest  true   "pago"
// @Success      201  {object}  dto.CreatePaymentResponse
// @Success      200  {object}  dto.CreatePaymentResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/payments [post]
func (h *PaymentHandler) Create(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.CreatePaymentRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	if key := strings.TrimSpace(c.Get(HeaderIdempotencyKey)); key != "" {
		in.IdempotencyKey = key
	}

	out, err := h.uc.Create(c.Context(), companyID, userID, in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	if out.IsDuplicate {
		return c.Status(fiber.StatusOK).JSON(out)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar pagos con totales
// @Tags         payments
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id     query  string  false  "bodega"
// @Param        user_id          query  string  false  "contraparte"
// @Param        payment_mode_id  query  string  false  "medio de pago"
// @Param        order_id         query  string  false  "orden enlazada"
// @Param        direction        query  string  false  "in | out"
// @Param        from             query  string  false  "YYYY-MM-DD"
// @Param        to               query  string  false  "YYYY-MM-DD"
// @Param        search           query  string  false  "número o notas"
// @Success      200  {object}  dto.PaymentListResponse
// @Router       /api/payments [get]
func (h *PaymentHandler) List(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.PaymentFilterRequest
	if ok, err := bindQuery(c, &in, &in.PageRequest); !ok {
		return err
	}
	out, err := h.uc.List(c.Context(), companyID, in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Totals godoc
// @Summary      Totales de pagos (entradas, salidas, neto)
// @Tags         payments
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.PaymentTotalsResponse
// @Router       /api/payments/totals [get]
func (h *PaymentHandler) Totals(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.PaymentFilterRequest
	if ok, err := bindQuery(c, &in, &in.PageRequest); !ok {
		return err
	}
	out, err := h.uc.Totals(c.Context(), companyID, in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener pago con sus enlaces
// @Tags         payments
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pago"
// @Success      200  {object}  dto.PaymentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/payments/{id} [get]
func (h *PaymentHandler) Get(c *fiber.Ctx) error {
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

// Delete godoc
// @Summary      Eliminar pago
// @Description  Borra el pago y sus enlaces y recalcula el saldo de las órdenes afectadas.
// @Tags         payments
// @Security     Bearer
// @Param        id   path  string  true  "ID del pago"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/payments/{id} [delete]
func (h *PaymentHandler) Delete(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	if err := h.uc.Delete(c.Context(), companyID, c.Params("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UnpaidOrders godoc
// @Summary      Órdenes pendientes de una contraparte
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        user_id       query  string  true   "contraparte"
// @Param        warehouse_id  query  string  false  "bodega"
// @Success      200  {array}  dto.OrderBalanceResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/orders/unpaid [get]
func (h *PaymentHandler) UnpaidOrders(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.UnpaidOrders(c.Context(), companyID, c.Query("user_id"), c.Query("warehouse_id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"total": len(out), "orders": out})
}

// Reproject godoc
// @Summary      Recalcular saldo de una orden
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderBalanceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/reproject [post]
func (h *PaymentHandler) Reproject(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.Reproject(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}
