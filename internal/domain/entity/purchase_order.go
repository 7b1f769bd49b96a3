package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden de compra.
const (
	OrderOpen   = "open"
	OrderClosed = "closed"
)

// PurchaseOrder orden de compra contra un proveedor. Las recepciones parciales
// se registran subiendo ReceivedQty en las líneas; la conciliación calcula lo
// que falta por reflejar en movimientos.
type PurchaseOrder struct {
	ID           int64
	Reference    string
	SupplierID   int64
	DepartmentID *int64
	State        string
	IssueDate    time.Time
	CreateUserID string
	Lines        []*PurchaseOrderLine
}

// PurchaseOrderLine línea de una orden: plantilla, cantidades y seriales
// explícitos. Bundled describe los sub-ítems que componen cada unidad recibida.
type PurchaseOrderLine struct {
	ID          int64
	OrderID     int64
	TemplateID  int64
	Qty         int64
	ReceivedQty int64
	AgreedPrice decimal.Decimal
	SerialNos   []string
	Bundled     []BundledLine
}

// BundledLine sub-ítem empaquetado de una línea (sub-plantilla y cantidad por unidad).
type BundledLine struct {
	TemplateID int64
	Qty        int64
}
