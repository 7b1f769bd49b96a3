package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Activos-api/internal/application/dto"
	"github.com/jhoicas/Activos-api/internal/application/movement"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
)

// MovementHandler maneja el ciclo de vida de movimientos: borrador, carrito,
// cierre por uno o dos lados, y rechazo.
type MovementHandler struct {
	uc *movement.UseCase
}

// NewMovementHandler construye el handler de movimientos.
func NewMovementHandler(uc *movement.UseCase) *MovementHandler {
	return &MovementHandler{uc: uc}
}

// Create godoc
// @Summary      Crear movimiento en borrador
// @Tags         movements
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateMovementRequest  true  "tipo, origen, destino"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/movements [post]
func (h *MovementHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	dateAct, err := parseDate(in.DateAct)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "date_act debe ser YYYY-MM-DD"})
	}
	m, err := h.uc.Create(c.Context(), GetUserID(c), movement.CreateInput{
		Type:            entity.MovementType(in.Type),
		LocationSrcID:   in.LocationSrcID,
		LocationDestID:  in.LocationDestID,
		DateAct:         dateAct,
		PurchaseOrderID: in.PurchaseOrderID,
		ItemIDs:         in.ItemIDs,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(movementResponse(m))
}

// Close godoc
// @Summary      Validar y cerrar un movimiento (lado receptor)
// @Tags         movements
// @Accept       json
// @Produce      json
// @Param        id    path  int  true  "id del movimiento"
// @Param        body  body  dto.CloseMovementRequest  false  "fecha de validación"
// @Success      200   {object}  dto.MovementResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/movements/{id}/close [post]
func (h *MovementHandler) Close(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	valDate, err := closeDate(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "date_val debe ser YYYY-MM-DD"})
	}
	m, err := h.uc.Close(c.Context(), GetUserID(c), int64(id), valDate)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(movementResponse(m))
}

// CloseSource godoc
// @Summary      Aprobación del lado emisor de un traslado interno
// @Tags         movements
// @Accept       json
// @Produce      json
// @Param        id    path  int  true  "id del movimiento"
// @Param        body  body  dto.CloseMovementRequest  false  "fecha de validación"
// @Success      200   {object}  dto.MovementResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/movements/{id}/close-source [post]
func (h *MovementHandler) CloseSource(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	valDate, err := closeDate(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "date_val debe ser YYYY-MM-DD"})
	}
	m, err := h.uc.CloseSource(c.Context(), GetUserID(c), int64(id), valDate)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(movementResponse(m))
}

// Reject godoc
// @Summary      Rechazar un movimiento en borrador
// @Tags         movements
// @Produce      json
// @Param        id  path  int  true  "id del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Router       /api/movements/{id}/reject [post]
func (h *MovementHandler) Reject(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	m, err := h.uc.Reject(c.Context(), GetUserID(c), int64(id))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(movementResponse(m))
}

// AddItem godoc
// @Summary      Agregar un activo al carrito del movimiento
// @Tags         movements
// @Accept       json
// @Param        id    path  int  true  "id del movimiento"
// @Param        body  body  dto.CartItemRequest  true  "asset_id"
// @Success      204
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/movements/{id}/items [post]
func (h *MovementHandler) AddItem(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	var in dto.CartItemRequest
	if err := c.BodyParser(&in); err != nil || in.AssetID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "asset_id es requerido"})
	}
	if err := h.uc.AddItem(c.Context(), GetUserID(c), int64(id), in.AssetID); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RemoveItem godoc
// @Summary      Quitar un activo del carrito del movimiento
// @Tags         movements
// @Param        id       path  int  true  "id del movimiento"
// @Param        assetID  path  int  true  "id del activo"
// @Success      204
// @Router       /api/movements/{id}/items/{assetID} [delete]
func (h *MovementHandler) RemoveItem(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	assetID, err := c.ParamsInt("assetID")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "assetID inválido"})
	}
	if err := h.uc.RemoveItem(c.Context(), GetUserID(c), int64(id), int64(assetID)); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func movementResponse(m *entity.Movement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:              m.ID,
		Reference:       m.Reference,
		State:           string(m.State),
		Type:            string(m.Type),
		LocationSrcID:   m.LocationSrcID,
		LocationDestID:  m.LocationDestID,
		DateAct:         m.DateAct.Format("2006-01-02"),
		DateVal:         m.DateVal,
		ValidateUserID:  m.ValidateUserID,
		SrcValidateUser: m.SrcValidateUserID,
		PurchaseOrderID: m.PurchaseOrderID,
	}
}

// parseDate interpreta una fecha de negocio YYYY-MM-DD; vacía = zero value.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation("2006-01-02", s, time.UTC)
}

// closeDate lee la fecha de validación opcional del cuerpo. El cuerpo puede
// faltar por completo.
func closeDate(c *fiber.Ctx) (*time.Time, error) {
	if len(c.Body()) == 0 {
		return nil, nil
	}
	var in dto.CloseMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return nil, err
	}
	if in.DateVal == "" {
		return nil, nil
	}
	d, err := parseDate(in.DateVal)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
