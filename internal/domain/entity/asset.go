package entity

// Asset activo rastreable: una unidad serializada o un lote de unidades
// idénticas (Quantity > 1). Pertenece a una plantilla del catálogo, que el
// núcleo trata como identificador opaco.
type Asset struct {
	ID           int64
	TemplateID   int64
	SerialNumber *string
	Quantity     int64
	LocationID   *int64
	BundleID     *int64 // activo padre cuando forma parte de un paquete
	Bundled      bool   // llegó como sub-ítem de una línea empaquetada
	Active       bool
}

// PlacementConsistent valida el invariante de colocación: un activo en reposo
// tiene ubicación o paquete padre, exactamente uno de los dos.
func (a *Asset) PlacementConsistent() bool {
	return (a.LocationID != nil) != (a.BundleID != nil)
}

// Serial devuelve el número de serie o cadena vacía.
func (a *Asset) Serial() string {
	if a.SerialNumber == nil {
		return ""
	}
	return *a.SerialNumber
}
