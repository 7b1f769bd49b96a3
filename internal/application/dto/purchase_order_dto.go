package dto

import "github.com/shopspring/decimal"

// CreatePurchaseOrderRequest alta de orden de compra con sus líneas.
type CreatePurchaseOrderRequest struct {
	Reference    string             `json:"reference"`
	SupplierID   int64              `json:"supplier_id" validate:"required"`
	DepartmentID *int64             `json:"department_id"`
	Lines        []OrderLineRequest `json:"lines" validate:"required,dive"`
}

// OrderLineRequest línea de orden: cantidades, seriales y sub-ítems empaquetados.
type OrderLineRequest struct {
	TemplateID  int64               `json:"template_id" validate:"required"`
	Qty         int64               `json:"qty" validate:"required,min=1"`
	ReceivedQty int64               `json:"received_qty" validate:"min=0"`
	AgreedPrice decimal.Decimal     `json:"agreed_price"`
	SerialNos   []string            `json:"serial_nos"`
	Bundled     []BundledSubRequest `json:"bundled"`
}

// BundledSubRequest sub-ítem empaquetado de una línea.
type BundledSubRequest struct {
	TemplateID int64 `json:"template_id" validate:"required"`
	Qty        int64 `json:"qty" validate:"required,min=1"`
}

// UpdateOrderLineRequest registra recepciones parciales en una línea.
type UpdateOrderLineRequest struct {
	ReceivedQty int64    `json:"received_qty" validate:"min=0"`
	SerialNos   []string `json:"serial_nos"`
}

// ReceiveRequest genera los movimientos de recepción pendientes de una orden.
type ReceiveRequest struct {
	LocationDestID int64  `json:"location_dest_id" validate:"required"`
	DateAct        string `json:"date_act"` // YYYY-MM-DD, vacío = hoy
}

// UnmovedEntry entrada del reporte de pendientes por recibir.
type UnmovedEntry struct {
	TemplateID int64    `json:"template_id"`
	Bundled    bool     `json:"bundled"`
	Qty        int64    `json:"qty"`
	Serials    []string `json:"serials,omitempty"`
}

// PurchaseOrderResponse vista de una orden con sus líneas.
type PurchaseOrderResponse struct {
	ID           int64               `json:"id"`
	Reference    string              `json:"reference"`
	SupplierID   int64               `json:"supplier_id"`
	DepartmentID *int64              `json:"department_id,omitempty"`
	State        string              `json:"state"`
	IssueDate    string              `json:"issue_date"`
	Lines        []OrderLineResponse `json:"lines"`
}

// OrderLineResponse línea de orden en respuestas.
type OrderLineResponse struct {
	ID          int64               `json:"id"`
	TemplateID  int64               `json:"template_id"`
	Qty         int64               `json:"qty"`
	ReceivedQty int64               `json:"received_qty"`
	AgreedPrice decimal.Decimal     `json:"agreed_price"`
	SerialNos   []string            `json:"serial_nos,omitempty"`
	Bundled     []BundledSubRequest `json:"bundled,omitempty"`
}

// ReceiveResponse resultado de generar los movimientos de recepción.
type ReceiveResponse struct {
	MovementID       int64  `json:"movement_id"`
	BundleMovementID *int64 `json:"bundle_movement_id,omitempty"`
	ItemsAttached    int    `json:"items_attached"`
}
