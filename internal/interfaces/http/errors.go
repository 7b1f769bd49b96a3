package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Activos-api/internal/application/dto"
	"github.com/jhoicas/Activos-api/internal/domain"
)

// writeError traduce errores de dominio a respuestas HTTP. Los errores de
// validación van con 422 y su clase como código para que el cliente distinga
// qué precondición falló; el resto mapea a los códigos clásicos.
func writeError(c *fiber.Ctx, err error) error {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(validationBody(ve))
	}
	var pe *domain.PermissionError
	if errors.As(err, &pe) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: pe.Error()})
	}
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

// validationBody arma el cuerpo con el contexto del ValidationError (activo y
// ubicaciones esperada/encontrada cuando aplican).
func validationBody(ve *domain.ValidationError) fiber.Map {
	body := fiber.Map{"code": string(ve.Kind), "message": ve.Msg}
	if ve.AssetID != 0 {
		body["asset_id"] = ve.AssetID
	}
	if ve.ExpectedID != nil {
		body["expected_location_id"] = *ve.ExpectedID
	}
	if ve.FoundID != nil {
		body["found_location_id"] = *ve.FoundID
	}
	return body
}
