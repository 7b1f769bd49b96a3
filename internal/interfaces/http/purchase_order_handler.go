package http

import (
	"sort"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Activos-api/internal/application/dto"
	"github.com/jhoicas/Activos-api/internal/application/movement"
	"github.com/jhoicas/Activos-api/internal/application/reconcile"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

// PurchaseOrderHandler maneja órdenes de compra: alta, recepciones parciales,
// reporte de pendientes y generación de los movimientos de recepción.
type PurchaseOrderHandler struct {
	reconcileUC *reconcile.UseCase
	movementUC  *movement.UseCase
	locRepo     repository.LocationRepository
}

// NewPurchaseOrderHandler construye el handler de órdenes.
func NewPurchaseOrderHandler(reconcileUC *reconcile.UseCase, movementUC *movement.UseCase, locRepo repository.LocationRepository) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{reconcileUC: reconcileUC, movementUC: movementUC, locRepo: locRepo}
}

// Create godoc
// @Summary      Crear orden de compra
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePurchaseOrderRequest  true  "proveedor y líneas"
// @Success      201   {object}  dto.PurchaseOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *PurchaseOrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePurchaseOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	lines := make([]*entity.PurchaseOrderLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		line := &entity.PurchaseOrderLine{
			TemplateID:  l.TemplateID,
			Qty:         l.Qty,
			ReceivedQty: l.ReceivedQty,
			AgreedPrice: l.AgreedPrice,
			SerialNos:   l.SerialNos,
		}
		for _, b := range l.Bundled {
			line.Bundled = append(line.Bundled, entity.BundledLine{TemplateID: b.TemplateID, Qty: b.Qty})
		}
		lines = append(lines, line)
	}
	o, err := h.reconcileUC.CreateOrder(c.Context(), GetUserID(c), reconcile.CreateOrderInput{
		Reference:    in.Reference,
		SupplierID:   in.SupplierID,
		DepartmentID: in.DepartmentID,
	}, lines)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(orderResponse(o))
}

// List godoc
// @Summary      Listar órdenes de compra
// @Tags         orders
// @Produce      json
// @Param        limit   query  int  false  "máximo por página"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {array}  dto.PurchaseOrderResponse
// @Router       /api/orders [get]
func (h *PurchaseOrderHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	orders, err := h.reconcileUC.ListOrders(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.PurchaseOrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderResponse(o))
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener una orden con sus líneas
// @Tags         orders
// @Produce      json
// @Param        id  path  int  true  "id de la orden"
// @Success      200  {object}  dto.PurchaseOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *PurchaseOrderHandler) GetByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	o, err := h.reconcileUC.GetOrder(c.Context(), int64(id))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(orderResponse(o))
}

// UpdateLine godoc
// @Summary      Registrar recepción parcial en una línea
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id      path  int  true  "id de la orden"
// @Param        lineID  path  int  true  "id de la línea"
// @Param        body    body  dto.UpdateOrderLineRequest  true  "received_qty, serial_nos"
// @Success      200  {object}  dto.OrderLineResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/lines/{lineID} [patch]
func (h *PurchaseOrderHandler) UpdateLine(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	lineID, err := c.ParamsInt("lineID")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "lineID inválido"})
	}
	var in dto.UpdateOrderLineRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	line, err := h.reconcileUC.RegisterReception(c.Context(), int64(id), int64(lineID), in.ReceivedQty, in.SerialNos)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(lineResponse(line))
}

// Unmoved godoc
// @Summary      Reporte de recibido-no-movido de una orden
// @Tags         orders
// @Produce      json
// @Param        id  path  int  true  "id de la orden"
// @Success      200  {array}  dto.UnmovedEntry
// @Router       /api/orders/{id}/unmoved [get]
func (h *PurchaseOrderHandler) Unmoved(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	remaining, err := h.reconcileUC.CalcUnmovedItems(c.Context(), int64(id))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(unmovedEntries(remaining))
}

// Receive godoc
// @Summary      Generar los movimientos de recepción pendientes de una orden
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id    path  int  true  "id de la orden"
// @Param        body  body  dto.ReceiveRequest  true  "ubicación destino"
// @Success      201   {object}  dto.ReceiveResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/receive [post]
func (h *PurchaseOrderHandler) Receive(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	var in dto.ReceiveRequest
	if err := c.BodyParser(&in); err != nil || in.LocationDestID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "location_dest_id es requerido"})
	}
	dateAct, err := parseDate(in.DateAct)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "date_act debe ser YYYY-MM-DD"})
	}
	orderID := int64(id)

	order, err := h.reconcileUC.GetOrder(c.Context(), orderID)
	if err != nil {
		return writeError(c, err)
	}
	remaining, err := h.reconcileUC.CalcUnmovedItems(c.Context(), orderID)
	if err != nil {
		return writeError(c, err)
	}
	if len(remaining) == 0 {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "la orden no tiene pendientes por recibir"})
	}

	userID := GetUserID(c)
	m, err := h.movementUC.Create(c.Context(), userID, movement.CreateInput{
		Type:            entity.MovementIn,
		LocationSrcID:   order.SupplierID,
		LocationDestID:  in.LocationDestID,
		DateAct:         dateAct,
		PurchaseOrderID: &orderID,
	})
	if err != nil {
		return writeError(c, err)
	}
	bundled, err := h.reconcileUC.FillOutMovement(c.Context(), remaining, m.ID)
	if err != nil {
		return writeError(c, err)
	}

	out := dto.ReceiveResponse{MovementID: m.ID, ItemsAttached: directCount(remaining)}
	if len(bundled) > 0 {
		bundleLoc, err := h.locRepo.FindBundling(c.Context())
		if err != nil {
			return writeError(c, err)
		}
		if bundleLoc == nil {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "no hay ubicación de armado de paquetes configurada"})
		}
		bm, err := h.movementUC.Create(c.Context(), userID, movement.CreateInput{
			Type:            entity.MovementIn,
			LocationSrcID:   order.SupplierID,
			LocationDestID:  bundleLoc.ID,
			DateAct:         dateAct,
			PurchaseOrderID: &orderID,
		})
		if err != nil {
			return writeError(c, err)
		}
		if err := h.reconcileUC.FillOutBundleMove(c.Context(), bundled, bm.ID); err != nil {
			return writeError(c, err)
		}
		out.BundleMovementID = &bm.ID
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func orderResponse(o *entity.PurchaseOrder) dto.PurchaseOrderResponse {
	resp := dto.PurchaseOrderResponse{
		ID:           o.ID,
		Reference:    o.Reference,
		SupplierID:   o.SupplierID,
		DepartmentID: o.DepartmentID,
		State:        o.State,
		IssueDate:    o.IssueDate.Format("2006-01-02"),
	}
	for _, l := range o.Lines {
		resp.Lines = append(resp.Lines, lineResponse(l))
	}
	return resp
}

func lineResponse(l *entity.PurchaseOrderLine) dto.OrderLineResponse {
	out := dto.OrderLineResponse{
		ID:          l.ID,
		TemplateID:  l.TemplateID,
		Qty:         l.Qty,
		ReceivedQty: l.ReceivedQty,
		AgreedPrice: l.AgreedPrice,
		SerialNos:   l.SerialNos,
	}
	for _, b := range l.Bundled {
		out.Bundled = append(out.Bundled, dto.BundledSubRequest{TemplateID: b.TemplateID, Qty: b.Qty})
	}
	return out
}

// unmovedEntries aplana el mapa de pendientes en orden estable.
func unmovedEntries(remaining map[reconcile.LineKey]*reconcile.Remaining) []dto.UnmovedEntry {
	out := make([]dto.UnmovedEntry, 0, len(remaining))
	for k, r := range remaining {
		e := dto.UnmovedEntry{TemplateID: k.TemplateID, Bundled: k.Bundled, Qty: r.Qty}
		for s := range r.Serials {
			e.Serials = append(e.Serials, s)
		}
		sort.Strings(e.Serials)
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TemplateID != out[j].TemplateID {
			return out[i].TemplateID < out[j].TemplateID
		}
		return !out[i].Bundled && out[j].Bundled
	})
	return out
}

// directCount unidades directas (con y sin serial) que terminan en el
// movimiento principal.
func directCount(remaining map[reconcile.LineKey]*reconcile.Remaining) int {
	n := 0
	for k, r := range remaining {
		if k.Bundled {
			continue
		}
		n += int(r.Qty) + len(r.Serials)
	}
	return n
}
