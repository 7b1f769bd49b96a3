package repository

import (
	"context"

	"github.com/jhoicas/Activos-api/internal/domain/entity"
)

// PurchaseOrderRepository puerto de persistencia para órdenes de compra.
type PurchaseOrderRepository interface {
	Create(ctx context.Context, o *entity.PurchaseOrder) error

	// GetByID carga la orden con sus líneas y sub-ítems empaquetados.
	GetByID(ctx context.Context, id int64) (*entity.PurchaseOrder, error)

	List(ctx context.Context, limit, offset int) ([]*entity.PurchaseOrder, error)
	UpdateLine(ctx context.Context, line *entity.PurchaseOrderLine) error
}
