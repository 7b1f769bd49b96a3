package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

var _ repository.LocationRepository = (*LocationRepo)(nil)

// LocationRepo implementación del catálogo de ubicaciones sobre PostgreSQL.
type LocationRepo struct {
	q Querier
}

func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

const locationCols = `id, name, usage, department_id, active`

func scanLocation(row pgx.Row) (*entity.Location, error) {
	var l entity.Location
	err := row.Scan(&l.ID, &l.Name, &l.Usage, &l.DepartmentID, &l.Active)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LocationRepo) GetByID(ctx context.Context, id int64) (*entity.Location, error) {
	l, err := scanLocation(r.q.QueryRow(ctx,
		`SELECT `+locationCols+` FROM locations WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get location: %w", err)
	}
	return l, nil
}

func (r *LocationRepo) Create(ctx context.Context, l *entity.Location) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO locations (name, usage, department_id, active)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		l.Name, l.Usage, l.DepartmentID, l.Active,
	).Scan(&l.ID)
	if err != nil {
		return fmt.Errorf("create location: %w", err)
	}
	return nil
}

func (r *LocationRepo) List(ctx context.Context, limit, offset int) ([]*entity.Location, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+locationCols+` FROM locations ORDER BY id LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()
	var out []*entity.Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// FindBundling busca la ubicación neutra de armado de paquetes.
func (r *LocationRepo) FindBundling(ctx context.Context) (*entity.Location, error) {
	l, err := scanLocation(r.q.QueryRow(ctx, `
		SELECT `+locationCols+` FROM locations
		WHERE usage = $1 AND department_id IS NULL AND active
		ORDER BY id LIMIT 1`,
		entity.UsageBundle))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find bundling location: %w", err)
	}
	return l, nil
}

var _ repository.DepartmentRepository = (*DepartmentRepo)(nil)

// DepartmentRepo lectura de departamentos.
type DepartmentRepo struct {
	q Querier
}

func NewDepartmentRepository(q Querier) *DepartmentRepo {
	return &DepartmentRepo{q: q}
}

func (r *DepartmentRepo) GetByID(ctx context.Context, id int64) (*entity.Department, error) {
	var d entity.Department
	err := r.q.QueryRow(ctx,
		`SELECT id, name, active, merged_into_id FROM departments WHERE id = $1`, id,
	).Scan(&d.ID, &d.Name, &d.Active, &d.MergedIntoID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get department: %w", err)
	}
	return &d, nil
}

var _ repository.CheckpointRepository = (*CheckpointRepo)(nil)

// CheckpointRepo lectura de cortes de inventario.
type CheckpointRepo struct {
	q Querier
}

func NewCheckpointRepository(q Querier) *CheckpointRepo {
	return &CheckpointRepo{q: q}
}

const checkpointCols = `id, location_id, date_act, date_val`

func scanCheckpoint(row pgx.Row) (*entity.Checkpoint, error) {
	var c entity.Checkpoint
	err := row.Scan(&c.ID, &c.LocationID, &c.DateAct, &c.DateVal)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CheckpointRepo) GetByID(ctx context.Context, id int64) (*entity.Checkpoint, error) {
	c, err := scanCheckpoint(r.q.QueryRow(ctx,
		`SELECT `+checkpointCols+` FROM checkpoints WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get checkpoint: %w", err)
	}
	return c, nil
}

// LastValidated último corte validado de la ubicación.
func (r *CheckpointRepo) LastValidated(ctx context.Context, locationID int64) (*entity.Checkpoint, error) {
	c, err := scanCheckpoint(r.q.QueryRow(ctx, `
		SELECT `+checkpointCols+` FROM checkpoints
		WHERE location_id = $1 AND date_val IS NOT NULL
		ORDER BY date_act DESC, id DESC LIMIT 1`,
		locationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("last validated checkpoint: %w", err)
	}
	return c, nil
}
