package memory

import (
	"context"

	"github.com/jhoicas/Activos-api/internal/application/movement"
	"github.com/jhoicas/Activos-api/internal/application/verify"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

var _ movement.TxRunner = (*TxRunner)(nil)
var _ verify.TxRunner = (*TxRunner)(nil)

// TxRunner versión en memoria del corredor de transacciones. No hay rollback
// real: los tests que verifican atomicidad lo hacen contra precondiciones que
// fallan antes de la primera escritura.
type TxRunner struct {
	s *Store
}

func NewTxRunner(s *Store) *TxRunner { return &TxRunner{s: s} }

func (t *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	assetRepo repository.AssetRepository,
	locRepo repository.LocationRepository,
	chkRepo repository.CheckpointRepository,
) error) error {
	return fn(NewMovements(t.s), NewAssets(t.s), NewLocations(t.s), NewCheckpoints(t.s))
}

func (t *TxRunner) RunVerify(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	assetRepo repository.AssetRepository,
	locRepo repository.LocationRepository,
	chkRepo repository.CheckpointRepository,
) error) error {
	return t.Run(ctx, fn)
}
