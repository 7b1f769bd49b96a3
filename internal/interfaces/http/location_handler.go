package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Activos-api/internal/application/dto"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

// LocationHandler catálogo de ubicaciones. CRUD mínimo sin caso de uso
// intermedio: no hay reglas de negocio más allá del enum de usage.
type LocationHandler struct {
	repo repository.LocationRepository
}

// NewLocationHandler construye el handler de ubicaciones.
func NewLocationHandler(repo repository.LocationRepository) *LocationHandler {
	return &LocationHandler{repo: repo}
}

// Create godoc
// @Summary      Crear ubicación
// @Tags         locations
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateLocationRequest  true  "name, usage"
// @Success      201   {object}  dto.LocationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/locations [post]
func (h *LocationHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateLocationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "name es requerido"})
	}
	usage := entity.LocationUsage(in.Usage)
	switch usage {
	case entity.UsageInternal, entity.UsageProcurement, entity.UsageSupplier,
		entity.UsageCustomer, entity.UsageCorrection, entity.UsageBundle:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "usage inválido"})
	}
	l := &entity.Location{Name: in.Name, Usage: usage, DepartmentID: in.DepartmentID, Active: true}
	if err := h.repo.Create(c.Context(), l); err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(locationResponse(l))
}

// List godoc
// @Summary      Listar ubicaciones
// @Tags         locations
// @Produce      json
// @Param        limit   query  int  false  "máximo por página"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {array}  dto.LocationResponse
// @Router       /api/locations [get]
func (h *LocationHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	locs, err := h.repo.List(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.LocationResponse, 0, len(locs))
	for _, l := range locs {
		out = append(out, locationResponse(l))
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener ubicación
// @Tags         locations
// @Produce      json
// @Param        id  path  int  true  "id de la ubicación"
// @Success      200  {object}  dto.LocationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/locations/{id} [get]
func (h *LocationHandler) GetByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	l, err := h.repo.GetByID(c.Context(), int64(id))
	if err != nil {
		return writeError(c, err)
	}
	if l == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "ubicación no encontrada"})
	}
	return c.JSON(locationResponse(l))
}

func locationResponse(l *entity.Location) dto.LocationResponse {
	return dto.LocationResponse{
		ID:           l.ID,
		Name:         l.Name,
		Usage:        string(l.Usage),
		DepartmentID: l.DepartmentID,
		Active:       l.Active,
	}
}
