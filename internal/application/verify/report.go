package verify

import "time"

// FindingKind clase de hallazgo de integridad. No es un error de programa:
// se registra en el reporte y el lote sigue con los demás activos.
type FindingKind string

const (
	// LocationJump el activo saltó de ubicación entre dos movimientos.
	LocationJump FindingKind = "LOCATION_JUMP"
)

// Finding hallazgo de integridad sobre la cadena de un activo, con el
// contexto necesario para que un operador lo investigue.
type Finding struct {
	Kind               FindingKind
	AssetID            int64
	ExpectedLocationID *int64 // ubicación donde debía estar (nil = sin historia previa)
	FoundLocationID    int64  // origen declarado por el movimiento inconsistente
	PrevMovementID     *int64 // último movimiento consistente
	MovementID         int64  // movimiento inconsistente
}

// Repair reparación propuesta: mover la fecha efectiva de un movimiento para
// reinsertarlo después de otro, restaurando una cadena consistente.
type Repair struct {
	MovementID      int64
	OldDateAct      time.Time
	NewDateAct      time.Time
	AfterMovementID int64
	Applied         bool
}

// Estado por activo en el reporte.
type AssetStatus string

const (
	StatusConsistent AssetStatus = "consistent"
	StatusRepaired   AssetStatus = "repaired"
	StatusFindings   AssetStatus = "findings"
)

// AssetResult resultado de auditar la cadena de movimientos de un activo.
type AssetResult struct {
	AssetID            int64
	Status             AssetStatus
	Findings           []Finding
	Repairs            []Repair
	ProposedLocationID *int64 // corrección de ubicación propuesta (puede ser nil = sin ubicación)
	LocationMismatch   bool
	LocationFixed      bool
}

// Report reporte estructurado de una corrida del verificador. La corrida nunca
// aborta por el primer problema: cada activo se procesa con independencia.
type Report struct {
	Processed           int
	Consistent          int
	Repaired            int
	WithFindings        int
	Results             []AssetResult // solo activos con algo que reportar
	LastCommittedOffset int           // para reanudar tras una interrupción
}

func (r *Report) add(res AssetResult) {
	r.Processed++
	switch res.Status {
	case StatusConsistent:
		r.Consistent++
		if !res.LocationMismatch {
			return
		}
	case StatusRepaired:
		r.Repaired++
	case StatusFindings:
		r.WithFindings++
	}
	r.Results = append(r.Results, res)
}

// SweepReport resultado de los barridos de activos huérfanos.
type SweepReport struct {
	DeletedNoTrace   int // sin movimientos y sin ubicación
	ClearedIncoming  int // sin movimientos, ubicación de recepción
	ReviewedStranded int // sin movimientos, ubicación interna (solo reporte)
}
