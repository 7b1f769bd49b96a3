package dto

import "time"

// CreateMovementRequest crea un movimiento en borrador.
type CreateMovementRequest struct {
	Type            string  `json:"type" validate:"required,oneof=in out internal other"`
	LocationSrcID   int64   `json:"location_src_id" validate:"required"`
	LocationDestID  int64   `json:"location_dest_id" validate:"required"`
	DateAct         string  `json:"date_act"` // YYYY-MM-DD, vacío = hoy
	PurchaseOrderID *int64  `json:"purchase_order_id"`
	ItemIDs         []int64 `json:"item_ids"`
}

// CloseMovementRequest cierre (validación) de un movimiento.
type CloseMovementRequest struct {
	DateVal string `json:"date_val"` // YYYY-MM-DD, vacío = hoy
}

// CartItemRequest agrega o quita un activo del carrito del movimiento.
type CartItemRequest struct {
	AssetID int64 `json:"asset_id" validate:"required"`
}

// MovementResponse vista de un movimiento.
type MovementResponse struct {
	ID              int64      `json:"id"`
	Reference       string     `json:"reference"`
	State           string     `json:"state"`
	Type            string     `json:"type"`
	LocationSrcID   int64      `json:"location_src_id"`
	LocationDestID  int64      `json:"location_dest_id"`
	DateAct         string     `json:"date_act"`
	DateVal         *time.Time `json:"date_val,omitempty"`
	ValidateUserID  *string    `json:"validate_user_id,omitempty"`
	SrcValidateUser *string    `json:"src_validate_user_id,omitempty"`
	PurchaseOrderID *int64     `json:"purchase_order_id,omitempty"`
}
