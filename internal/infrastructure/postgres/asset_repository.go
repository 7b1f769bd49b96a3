package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

var _ repository.AssetRepository = (*AssetRepo)(nil)

// AssetRepo implementación del registro de activos sobre PostgreSQL
// (usable con pool o tx).
type AssetRepo struct {
	q Querier
}

// NewAssetRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAssetRepository(q Querier) *AssetRepo {
	return &AssetRepo{q: q}
}

const assetCols = `id, template_id, serial_number, quantity, location_id, bundle_id, bundled, active`

const assetColsAliased = `a.id, a.template_id, a.serial_number, a.quantity, a.location_id, a.bundle_id, a.bundled, a.active`

func scanAsset(row pgx.Row) (*entity.Asset, error) {
	var a entity.Asset
	err := row.Scan(&a.ID, &a.TemplateID, &a.SerialNumber, &a.Quantity,
		&a.LocationID, &a.BundleID, &a.Bundled, &a.Active)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByID obtiene un activo por id, o nil si no existe.
func (r *AssetRepo) GetByID(ctx context.Context, id int64) (*entity.Asset, error) {
	a, err := scanAsset(r.q.QueryRow(ctx,
		`SELECT `+assetCols+` FROM assets WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get asset: %w", err)
	}
	return a, nil
}

// Create persiste un activo nuevo.
func (r *AssetRepo) Create(ctx context.Context, a *entity.Asset) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO assets (template_id, serial_number, quantity, location_id, bundle_id, bundled, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		a.TemplateID, a.SerialNumber, a.Quantity, a.LocationID, a.BundleID, a.Bundled, a.Active,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("create asset: %w", err)
	}
	return nil
}

// Update persiste los campos mutables del activo.
func (r *AssetRepo) Update(ctx context.Context, a *entity.Asset) error {
	_, err := r.q.Exec(ctx, `
		UPDATE assets
		SET serial_number = $2, quantity = $3, location_id = $4, bundle_id = $5, bundled = $6, active = $7
		WHERE id = $1`,
		a.ID, a.SerialNumber, a.Quantity, a.LocationID, a.BundleID, a.Bundled, a.Active)
	if err != nil {
		return fmt.Errorf("update asset: %w", err)
	}
	return nil
}

// GetOrCreateSerial busca el activo (template, serial) o lo crea con cantidad 1
// y sin ubicación.
func (r *AssetRepo) GetOrCreateSerial(ctx context.Context, templateID int64, serial string) (*entity.Asset, bool, error) {
	a, err := scanAsset(r.q.QueryRow(ctx,
		`SELECT `+assetCols+` FROM assets WHERE template_id = $1 AND serial_number = $2`,
		templateID, serial))
	if err == nil {
		return a, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("get asset by serial: %w", err)
	}

	nuevo := &entity.Asset{TemplateID: templateID, SerialNumber: &serial, Quantity: 1, Active: true}
	if err := r.Create(ctx, nuevo); err != nil {
		if isUniqueViolation(err) {
			// Carrera con otra recepción: releer.
			a, err2 := scanAsset(r.q.QueryRow(ctx,
				`SELECT `+assetCols+` FROM assets WHERE template_id = $1 AND serial_number = $2`,
				templateID, serial))
			if err2 != nil {
				return nil, false, fmt.Errorf("reread asset by serial: %w", err2)
			}
			return a, false, nil
		}
		return nil, false, err
	}
	return nuevo, true, nil
}

// Relocate fija la ubicación de todos los ids en una sola sentencia
// todo-o-nada, limpiando el paquete padre.
func (r *AssetRepo) Relocate(ctx context.Context, ids []int64, destID int64) error {
	if len(ids) == 0 {
		return nil
	}
	tag, err := r.q.Exec(ctx, `
		UPDATE assets SET location_id = $2, bundle_id = NULL WHERE id = ANY($1)`,
		ids, destID)
	if err != nil {
		return fmt.Errorf("relocate assets: %w", err)
	}
	if int(tag.RowsAffected()) != len(ids) {
		return fmt.Errorf("relocate assets: %d de %d filas afectadas", tag.RowsAffected(), len(ids))
	}
	return nil
}

// ListByMovement devuelve los activos de un movimiento; con lock bloquea las
// filas FOR UPDATE para serializar cierres que compartan ítems.
func (r *AssetRepo) ListByMovement(ctx context.Context, movementID int64, lock bool) ([]*entity.Asset, error) {
	query := `
		SELECT ` + assetColsAliased + `
		FROM assets a
		JOIN movement_items mi ON mi.asset_id = a.id
		WHERE mi.movement_id = $1
		ORDER BY a.id`
	if lock {
		query += ` FOR UPDATE OF a`
	}
	return r.list(ctx, query, movementID)
}

// ListByOrder devuelve los activos enlazados a una orden a través de
// cualquiera de sus movimientos, sin importar el estado del movimiento.
func (r *AssetRepo) ListByOrder(ctx context.Context, orderID int64) ([]*entity.Asset, error) {
	query := `
		SELECT DISTINCT ` + assetColsAliased + `
		FROM assets a
		JOIN movement_items mi ON mi.asset_id = a.id
		JOIN movements m ON m.id = mi.movement_id
		WHERE m.purchase_order_id = $1
		ORDER BY a.id`
	return r.list(ctx, query, orderID)
}

// ListIDs pagina ids de activos para el verificador.
func (r *AssetRepo) ListIDs(ctx context.Context, offset, limit int) ([]int64, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id FROM assets ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list asset ids: %w", err)
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan asset id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListUnmovedWithoutLocation activos sin movimientos y sin ubicación.
func (r *AssetRepo) ListUnmovedWithoutLocation(ctx context.Context) ([]*entity.Asset, error) {
	return r.list(ctx, `
		SELECT `+assetCols+` FROM assets a
		WHERE a.location_id IS NULL AND a.bundle_id IS NULL
		  AND NOT EXISTS (SELECT 1 FROM movement_items mi WHERE mi.asset_id = a.id)
		ORDER BY a.id`)
}

// ListUnmovedWithLocation activos con ubicación pero sin movimientos.
func (r *AssetRepo) ListUnmovedWithLocation(ctx context.Context) ([]*entity.Asset, error) {
	return r.list(ctx, `
		SELECT `+assetCols+` FROM assets a
		WHERE a.location_id IS NOT NULL
		  AND NOT EXISTS (SELECT 1 FROM movement_items mi WHERE mi.asset_id = a.id)
		ORDER BY a.id`)
}

// Delete elimina un activo (barridos del verificador).
func (r *AssetRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.q.Exec(ctx, `DELETE FROM assets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	return nil
}

func (r *AssetRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Asset, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()
	var out []*entity.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

