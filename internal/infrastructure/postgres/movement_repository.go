package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación del registro de movimientos sobre PostgreSQL.
type MovementRepo struct {
	q Querier
}

func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementCols = `id, reference, state, type, location_src_id, location_dest_id,
	date_act, date_val, create_user_id, validate_user_id, src_validate_user_id, src_date_val,
	purchase_order_id, checkpoint_src_id, checkpoint_dest_id`

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	err := row.Scan(&m.ID, &m.Reference, &m.State, &m.Type, &m.LocationSrcID, &m.LocationDestID,
		&m.DateAct, &m.DateVal, &m.CreateUserID, &m.ValidateUserID, &m.SrcValidateUserID, &m.SrcDateVal,
		&m.PurchaseOrderID, &m.CheckpointSrcID, &m.CheckpointDestID)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create persiste un movimiento borrador nuevo.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO movements (reference, state, type, location_src_id, location_dest_id,
			date_act, date_val, create_user_id, validate_user_id, src_validate_user_id, src_date_val,
			purchase_order_id, checkpoint_src_id, checkpoint_dest_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id`,
		m.Reference, m.State, m.Type, m.LocationSrcID, m.LocationDestID,
		m.DateAct, m.DateVal, m.CreateUserID, m.ValidateUserID, m.SrcValidateUserID, m.SrcDateVal,
		m.PurchaseOrderID, m.CheckpointSrcID, m.CheckpointDestID,
	).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("create movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por id, o nil si no existe.
func (r *MovementRepo) GetByID(ctx context.Context, id int64) (*entity.Movement, error) {
	m, err := scanMovement(r.q.QueryRow(ctx,
		`SELECT `+movementCols+` FROM movements WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// GetForUpdate bloquea la fila del movimiento para el resto de la transacción.
func (r *MovementRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Movement, error) {
	m, err := scanMovement(r.q.QueryRow(ctx,
		`SELECT `+movementCols+` FROM movements WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock movement: %w", err)
	}
	return m, nil
}

// Update persiste los campos mutables del movimiento.
func (r *MovementRepo) Update(ctx context.Context, m *entity.Movement) error {
	_, err := r.q.Exec(ctx, `
		UPDATE movements
		SET state = $2, type = $3, location_src_id = $4, location_dest_id = $5,
			date_act = $6, date_val = $7, validate_user_id = $8,
			src_validate_user_id = $9, src_date_val = $10,
			checkpoint_src_id = $11, checkpoint_dest_id = $12
		WHERE id = $1`,
		m.ID, m.State, m.Type, m.LocationSrcID, m.LocationDestID,
		m.DateAct, m.DateVal, m.ValidateUserID,
		m.SrcValidateUserID, m.SrcDateVal,
		m.CheckpointSrcID, m.CheckpointDestID)
	if err != nil {
		return fmt.Errorf("update movement: %w", err)
	}
	return nil
}

// AddItem agrega un activo al carrito del movimiento.
func (r *MovementRepo) AddItem(ctx context.Context, movementID, assetID int64) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO movement_items (movement_id, asset_id) VALUES ($1, $2)`,
		movementID, assetID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("add item: %w", domain.ErrDuplicate)
		}
		return fmt.Errorf("add item: %w", err)
	}
	return nil
}

// RemoveItem quita un activo del carrito.
func (r *MovementRepo) RemoveItem(ctx context.Context, movementID, assetID int64) error {
	_, err := r.q.Exec(ctx,
		`DELETE FROM movement_items WHERE movement_id = $1 AND asset_id = $2`,
		movementID, assetID)
	if err != nil {
		return fmt.Errorf("remove item: %w", err)
	}
	return nil
}

// HasItem indica si el activo ya está en el movimiento.
func (r *MovementRepo) HasItem(ctx context.Context, movementID, assetID int64) (bool, error) {
	var ok bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM movement_items WHERE movement_id = $1 AND asset_id = $2)`,
		movementID, assetID).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("has item: %w", err)
	}
	return ok, nil
}

// CountItems cuenta los activos del movimiento.
func (r *MovementRepo) CountItems(ctx context.Context, movementID int64) (int, error) {
	var n int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM movement_items WHERE movement_id = $1`, movementID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}

// ListDoneByAsset historial validado del activo en orden cronológico, con el
// id como desempate para fechas iguales.
func (r *MovementRepo) ListDoneByAsset(ctx context.Context, assetID int64) ([]*entity.Movement, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+movementCols+`
		FROM movements m
		JOIN movement_items mi ON mi.movement_id = m.id
		WHERE mi.asset_id = $1 AND m.state = $2
		ORDER BY m.date_act, m.id`,
		assetID, entity.MovementDone)
	if err != nil {
		return nil, fmt.Errorf("list movements by asset: %w", err)
	}
	defer rows.Close()
	var out []*entity.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// UpdateDateAct reubica temporalmente el movimiento.
func (r *MovementRepo) UpdateDateAct(ctx context.Context, movementID int64, dateAct time.Time) error {
	_, err := r.q.Exec(ctx,
		`UPDATE movements SET date_act = $2 WHERE id = $1`, movementID, dateAct)
	if err != nil {
		return fmt.Errorf("update movement date: %w", err)
	}
	return nil
}
