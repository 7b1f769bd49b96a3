package reconcile

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
)

// CreateOrderInput alta de una orden de compra. Las líneas van aparte porque
// ya vienen armadas como entidades desde el handler.
type CreateOrderInput struct {
	Reference    string
	SupplierID   int64
	DepartmentID *int64
}

// CreateOrder registra una orden abierta con sus líneas.
func (uc *UseCase) CreateOrder(ctx context.Context, userID string, in CreateOrderInput, lines []*entity.PurchaseOrderLine) (*entity.PurchaseOrder, error) {
	if in.SupplierID == 0 || len(lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, l := range lines {
		if l.Qty < 1 || l.ReceivedQty < 0 || l.ReceivedQty > l.Qty {
			return nil, domain.ErrInvalidInput
		}
		if int64(len(l.SerialNos)) > l.Qty {
			return nil, domain.ErrInvalidInput
		}
	}
	ref := in.Reference
	if ref == "" {
		ref = uuid.New().String()[:8]
	}
	o := &entity.PurchaseOrder{
		Reference:    ref,
		SupplierID:   in.SupplierID,
		DepartmentID: in.DepartmentID,
		State:        entity.OrderOpen,
		IssueDate:    time.Now().UTC(),
		CreateUserID: userID,
		Lines:        lines,
	}
	if err := uc.orderRepo.Create(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// GetOrder carga una orden completa.
func (uc *UseCase) GetOrder(ctx context.Context, orderID int64) (*entity.PurchaseOrder, error) {
	o, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

// ListOrders pagina las órdenes.
func (uc *UseCase) ListOrders(ctx context.Context, limit, offset int) ([]*entity.PurchaseOrder, error) {
	return uc.orderRepo.List(ctx, limit, offset)
}

// RegisterReception sube lo recibido de una línea. ReceivedQty es acumulado,
// nunca puede bajar ni superar lo pedido, y los seriales declarados no pueden
// exceder lo recibido.
func (uc *UseCase) RegisterReception(ctx context.Context, orderID, lineID, receivedQty int64, serialNos []string) (*entity.PurchaseOrderLine, error) {
	o, err := uc.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	var line *entity.PurchaseOrderLine
	for _, l := range o.Lines {
		if l.ID == lineID {
			line = l
			break
		}
	}
	if line == nil {
		return nil, domain.ErrNotFound
	}
	if receivedQty < line.ReceivedQty || receivedQty > line.Qty {
		return nil, domain.ErrInvalidInput
	}
	if int64(len(serialNos)) > receivedQty {
		return nil, domain.Validation(domain.SerialCountExceedsReceived,
			"la línea %d declara %d seriales pero solo %d unidades recibidas",
			line.ID, len(serialNos), receivedQty)
	}
	line.ReceivedQty = receivedQty
	if serialNos != nil {
		line.SerialNos = serialNos
	}
	if err := uc.orderRepo.UpdateLine(ctx, line); err != nil {
		return nil, err
	}
	return line, nil
}
