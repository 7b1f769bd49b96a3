package entity

// Department departamento de la organización. Un departamento puede quedar
// inactivo o fusionarse en otro (MergedIntoID); ambos casos relajan la doble
// aprobación de traslados internos.
type Department struct {
	ID           int64
	Name         string
	Active       bool
	MergedIntoID *int64
}

// Effective indica si el departamento sigue vigente como aprobador.
func (d *Department) Effective() bool {
	return d.Active && d.MergedIntoID == nil
}
