package reconcile

// LineKey clave del resultado de conciliación. La variante se marca con
// Bundled para que una misma plantilla pueda aparecer como línea directa y
// como sub-ítem empaquetado sin colisionar.
type LineKey struct {
	TemplateID int64
	Bundled    bool
}

// Direct clave para una línea directa de la orden.
func Direct(templateID int64) LineKey { return LineKey{TemplateID: templateID} }

// BundledKey clave para un sub-ítem empaquetado.
func BundledKey(templateID int64) LineKey {
	return LineKey{TemplateID: templateID, Bundled: true}
}

// Remaining lo que falta por recibir de una clave: cantidad sin serial y
// conjunto de seriales esperados todavía no vistos.
type Remaining struct {
	Qty     int64
	Serials map[string]struct{}
}

// Empty indica que no queda nada pendiente bajo esta clave.
func (r *Remaining) Empty() bool {
	return r.Qty == 0 && len(r.Serials) == 0
}

// BundledRemainder residuo empaquetado que FillOutMovement devuelve al caller:
// estos ítems pasan primero por la ubicación neutra de armado y requieren un
// segundo movimiento (FillOutBundleMove).
type BundledRemainder struct {
	TemplateID int64
	Qty        int64
}
