package entity

// LocationUsage clasifica el rol de una ubicación en la cadena de movimientos.
type LocationUsage string

const (
	UsageInternal    LocationUsage = "internal"    // ubicación interna de un departamento
	UsageProcurement LocationUsage = "procurement" // recepción de compras
	UsageSupplier    LocationUsage = "supplier"    // proveedor (externo)
	UsageCustomer    LocationUsage = "customer"    // cliente (externo)
	UsageCorrection  LocationUsage = "correction"  // ajustes de inventario
	UsageBundle      LocationUsage = "bundle"      // zona neutra de armado de paquetes
)

// Location ubicación física o lógica donde pueden residir activos.
type Location struct {
	ID           int64
	Name         string
	Usage        LocationUsage
	DepartmentID *int64
	Active       bool
}

// IsIncoming indica si la ubicación es un origen de primera recepción:
// los activos pueden llegar desde aquí sin ubicación previa.
func (l *Location) IsIncoming() bool {
	return l.Usage == UsageProcurement || l.Usage == UsageSupplier
}
