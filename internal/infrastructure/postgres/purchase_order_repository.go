package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

// PurchaseOrderRepo implementación de órdenes de compra sobre PostgreSQL.
// Las líneas y sub-ítems empaquetados viven en tablas hijas y se cargan
// siempre junto con la orden.
type PurchaseOrderRepo struct {
	q Querier
}

func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

const orderCols = `id, reference, supplier_id, department_id, state, issue_date, create_user_id`

func scanOrder(row pgx.Row) (*entity.PurchaseOrder, error) {
	var o entity.PurchaseOrder
	err := row.Scan(&o.ID, &o.Reference, &o.SupplierID, &o.DepartmentID,
		&o.State, &o.IssueDate, &o.CreateUserID)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Create persiste la orden con todas sus líneas y sub-ítems.
func (r *PurchaseOrderRepo) Create(ctx context.Context, o *entity.PurchaseOrder) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO purchase_orders (reference, supplier_id, department_id, state, issue_date, create_user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		o.Reference, o.SupplierID, o.DepartmentID, o.State, o.IssueDate, o.CreateUserID,
	).Scan(&o.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create purchase order: %w", domain.ErrDuplicate)
		}
		return fmt.Errorf("create purchase order: %w", err)
	}
	for _, line := range o.Lines {
		line.OrderID = o.ID
		err := r.q.QueryRow(ctx, `
			INSERT INTO purchase_order_lines (order_id, template_id, qty, received_qty, agreed_price, serial_nos)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			line.OrderID, line.TemplateID, line.Qty, line.ReceivedQty, line.AgreedPrice, line.SerialNos,
		).Scan(&line.ID)
		if err != nil {
			return fmt.Errorf("create order line: %w", err)
		}
		for _, b := range line.Bundled {
			_, err := r.q.Exec(ctx, `
				INSERT INTO purchase_order_bundled (line_id, template_id, qty)
				VALUES ($1, $2, $3)`,
				line.ID, b.TemplateID, b.Qty)
			if err != nil {
				return fmt.Errorf("create bundled line: %w", err)
			}
		}
	}
	return nil
}

// GetByID carga la orden completa, o nil si no existe.
func (r *PurchaseOrderRepo) GetByID(ctx context.Context, id int64) (*entity.PurchaseOrder, error) {
	o, err := scanOrder(r.q.QueryRow(ctx,
		`SELECT `+orderCols+` FROM purchase_orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	if err := r.loadLines(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// List devuelve las órdenes paginadas, con líneas incluidas.
func (r *PurchaseOrderRepo) List(ctx context.Context, limit, offset int) ([]*entity.PurchaseOrder, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+orderCols+` FROM purchase_orders ORDER BY id DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	defer rows.Close()
	var out []*entity.PurchaseOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase order: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, o := range out {
		if err := r.loadLines(ctx, o); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// UpdateLine persiste una línea (recepciones parciales, seriales).
func (r *PurchaseOrderRepo) UpdateLine(ctx context.Context, line *entity.PurchaseOrderLine) error {
	_, err := r.q.Exec(ctx, `
		UPDATE purchase_order_lines
		SET qty = $2, received_qty = $3, agreed_price = $4, serial_nos = $5
		WHERE id = $1`,
		line.ID, line.Qty, line.ReceivedQty, line.AgreedPrice, line.SerialNos)
	if err != nil {
		return fmt.Errorf("update order line: %w", err)
	}
	return nil
}

func (r *PurchaseOrderRepo) loadLines(ctx context.Context, o *entity.PurchaseOrder) error {
	rows, err := r.q.Query(ctx, `
		SELECT id, order_id, template_id, qty, received_qty, agreed_price, serial_nos
		FROM purchase_order_lines WHERE order_id = $1 ORDER BY id`, o.ID)
	if err != nil {
		return fmt.Errorf("load order lines: %w", err)
	}
	defer rows.Close()
	o.Lines = nil
	byID := map[int64]*entity.PurchaseOrderLine{}
	for rows.Next() {
		var l entity.PurchaseOrderLine
		err := rows.Scan(&l.ID, &l.OrderID, &l.TemplateID, &l.Qty, &l.ReceivedQty,
			&l.AgreedPrice, &l.SerialNos)
		if err != nil {
			return fmt.Errorf("scan order line: %w", err)
		}
		o.Lines = append(o.Lines, &l)
		byID[l.ID] = &l
	}
	if err := rows.Err(); err != nil {
		return err
	}

	brows, err := r.q.Query(ctx, `
		SELECT b.line_id, b.template_id, b.qty
		FROM purchase_order_bundled b
		JOIN purchase_order_lines l ON l.id = b.line_id
		WHERE l.order_id = $1
		ORDER BY b.line_id, b.template_id`, o.ID)
	if err != nil {
		return fmt.Errorf("load bundled lines: %w", err)
	}
	defer brows.Close()
	for brows.Next() {
		var lineID int64
		var b entity.BundledLine
		if err := brows.Scan(&lineID, &b.TemplateID, &b.Qty); err != nil {
			return fmt.Errorf("scan bundled line: %w", err)
		}
		if l := byID[lineID]; l != nil {
			l.Bundled = append(l.Bundled, b)
		}
	}
	return brows.Err()
}
