package entity

import "time"

// Estados de un movimiento. Solo draft es mutable; done y rejected son terminales.
type MovementState string

const (
	MovementDraft    MovementState = "draft"
	MovementDone     MovementState = "done"
	MovementRejected MovementState = "rejected"
)

// Tipos de movimiento.
type MovementType string

const (
	MovementIn       MovementType = "in"       // entrada (compras, proveedor)
	MovementOut      MovementType = "out"      // salida (cliente, baja)
	MovementInternal MovementType = "internal" // traslado entre ubicaciones internas
	MovementOther    MovementType = "other"
)

// Movement transacción atómica de reubicación de activos entre dos ubicaciones.
//
// date_val y validate_user se fijan juntos al cerrar. En traslados internos
// entre departamentos distintos el cierre es en dos fases: el lado receptor
// fija ValidateUserID/DateVal y el lado emisor SrcValidateUserID/SrcDateVal;
// la reubicación ocurre exactamente una vez, con la segunda aprobación.
type Movement struct {
	ID             int64
	Reference      string
	State          MovementState
	Type           MovementType
	LocationSrcID  int64
	LocationDestID int64
	DateAct        time.Time  // fecha efectiva (de negocio)
	DateVal        *time.Time // fecha de validación, null hasta el cierre
	CreateUserID   string
	ValidateUserID *string
	// Segunda aprobación (lado emisor) para traslados internos entre departamentos.
	SrcValidateUserID *string
	SrcDateVal        *time.Time

	PurchaseOrderID  *int64
	CheckpointSrcID  *int64
	CheckpointDestID *int64
}

// IsDraft indica si el movimiento sigue abierto a mutación.
func (m *Movement) IsDraft() bool { return m.State == MovementDraft }

// DestApproved indica si el lado receptor ya validó.
func (m *Movement) DestApproved() bool { return m.ValidateUserID != nil }

// SrcApproved indica si el lado emisor ya validó.
func (m *Movement) SrcApproved() bool { return m.SrcValidateUserID != nil }
