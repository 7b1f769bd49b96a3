package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Activos-api/internal/application/movement"
	"github.com/jhoicas/Activos-api/internal/application/verify"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

// Ensure TxRunner implementa los puertos transaccionales de los casos de uso.
var _ movement.TxRunner = (*TxRunner)(nil)
var _ verify.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace
// Commit o Rollback. Es la unidad de atomicidad del motor de movimientos.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	assetRepo repository.AssetRepository,
	locRepo repository.LocationRepository,
	chkRepo repository.CheckpointRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(
		NewMovementRepository(tx),
		NewAssetRepository(tx),
		NewLocationRepository(tx),
		NewCheckpointRepository(tx),
	); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunVerify inicia la transacción de un chunk del verificador. El chunk se
// confirma entero o se revierte entero; la interrupción nunca lo deja a medias.
func (r *TxRunner) RunVerify(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	assetRepo repository.AssetRepository,
	locRepo repository.LocationRepository,
	chkRepo repository.CheckpointRepository,
) error) error {
	return r.Run(ctx, fn)
}
