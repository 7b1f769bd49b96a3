package verify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

// SweepOrphans barre activos sin movimientos antes de la verificación de
// cadenas: los que tampoco tienen ubicación son ruido de captura y se pueden
// borrar; los que figuran en una ubicación de recepción nunca llegaron a
// moverse y también; los varados en ubicaciones internas solo se reportan.
// Toda eliminación pasa por el callback de confirmación.
func (uc *UseCase) SweepOrphans(ctx context.Context, dryRun bool, decide Decision) (*SweepReport, error) {
	if decide == nil {
		decide = func(string) bool { return false }
	}
	rep := &SweepReport{}

	err := uc.txRunner.RunVerify(ctx, func(
		_ repository.MovementRepository,
		assetRepo repository.AssetRepository,
		locRepo repository.LocationRepository,
		_ repository.CheckpointRepository,
	) error {
		noTrace, err := assetRepo.ListUnmovedWithoutLocation(ctx)
		if err != nil {
			return err
		}
		if len(noTrace) > 0 && decide(fmt.Sprintf("Hay %d activos sin movimientos ni ubicación. Borrar?", len(noTrace))) {
			for _, a := range noTrace {
				if dryRun {
					continue
				}
				if err := assetRepo.Delete(ctx, a.ID); err != nil {
					return err
				}
				rep.DeletedNoTrace++
			}
		}

		placed, err := assetRepo.ListUnmovedWithLocation(ctx)
		if err != nil {
			return err
		}
		locs := map[int64]*entity.Location{}
		var incoming, stranded []*entity.Asset
		for _, a := range placed {
			loc, err := uc.location(ctx, locRepo, locs, *a.LocationID)
			if err != nil {
				return err
			}
			if loc != nil && loc.IsIncoming() {
				incoming = append(incoming, a)
			} else {
				stranded = append(stranded, a)
			}
		}

		if len(incoming) > 0 && decide(fmt.Sprintf("Hay %d activos sin movimientos en ubicación de recepción. Limpiar?", len(incoming))) {
			for _, a := range incoming {
				if dryRun {
					continue
				}
				if err := assetRepo.Delete(ctx, a.ID); err != nil {
					return err
				}
				rep.ClearedIncoming++
			}
		}

		for _, a := range stranded {
			log.Info().Int64("activo", a.ID).Int64("ubicación", *a.LocationID).
				Msg("activo con ubicación pero sin movimientos que lo lleven allí")
			rep.ReviewedStranded++
		}
		return nil
	})
	if err != nil {
		return rep, err
	}
	return rep, nil
}
