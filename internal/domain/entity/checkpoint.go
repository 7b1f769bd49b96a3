package entity

import "time"

// Checkpoint corte de inventario físico (stock-take) de una ubicación.
// Una vez validado (DateVal fijado) congela la historia: no se permiten
// movimientos ni reparaciones con fecha efectiva anterior al corte.
type Checkpoint struct {
	ID         int64
	LocationID int64
	DateAct    time.Time
	DateVal    *time.Time
}

// Validated indica si el corte fue confirmado.
func (c *Checkpoint) Validated() bool { return c.DateVal != nil }
