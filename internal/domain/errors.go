package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrUserNotFound = errors.New("usuario no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")
)

// ValidationKind clase de error de validación del libro de movimientos.
// Señala una precondición violada por el llamador o por datos sucios;
// la operación aborta sin mutación parcial y nunca se reintenta sola.
type ValidationKind string

const (
	NotDraft                   ValidationKind = "NOT_DRAFT"
	AlreadyValidated           ValidationKind = "ALREADY_VALIDATED"
	LocationMismatch           ValidationKind = "LOCATION_MISMATCH"
	SerialCountExceedsReceived ValidationKind = "SERIAL_COUNT_EXCEEDS_RECEIVED"
	NegativeQuantity           ValidationKind = "NEGATIVE_QUANTITY"
	EmptyMovement              ValidationKind = "EMPTY_MOVEMENT"
	CheckpointLocked           ValidationKind = "CHECKPOINT_LOCKED"
)

// ValidationError error de validación con contexto suficiente para que un
// operador corrija los datos y reintente (id de activo, ubicación esperada
// contra encontrada, etc.).
type ValidationError struct {
	Kind       ValidationKind
	Msg        string
	AssetID    int64  // activo afectado, 0 si no aplica
	ExpectedID *int64 // ubicación esperada (LocationMismatch)
	FoundID    *int64 // ubicación encontrada (LocationMismatch)
}

func (e *ValidationError) Error() string {
	if e.AssetID != 0 {
		return fmt.Sprintf("%s: %s (activo #%d)", e.Kind, e.Msg, e.AssetID)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Validation construye un ValidationError simple.
func Validation(kind ValidationKind, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// IsValidation indica si err es un ValidationError de la clase dada.
func IsValidation(err error, kind ValidationKind) bool {
	var ve *ValidationError
	return errors.As(err, &ve) && ve.Kind == kind
}

// PermissionError falla de autorización, distinta de validación: se detecta
// antes de tocar cualquier estado.
type PermissionError struct {
	UserID     string
	Capability Capability
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("usuario %s sin capacidad %s", e.UserID, e.Capability)
}
