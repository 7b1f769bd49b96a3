package verify

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

// Decision callback de confirmación inyectado por el caller. El verificador
// nunca hace I/O interactivo directo: el CLI lo alimenta desde consola y los
// tests con respuestas deterministas.
type Decision func(question string) bool

// TxRunner transacción por chunk del verificador: cada chunk se confirma
// completo o se revierte completo, nunca a medias.
type TxRunner interface {
	RunVerify(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		assetRepo repository.AssetRepository,
		locRepo repository.LocationRepository,
		chkRepo repository.CheckpointRepository,
	) error) error
}

// DefaultChunkSize activos por transacción del lote.
const DefaultChunkSize = 1000

// Options parámetros de una corrida del verificador.
type Options struct {
	AssetIDs  []int64 // explícitos; vacío = paginar todo el registro
	Offset    int
	Limit     int // 0 = sin límite
	ChunkSize int // 0 = DefaultChunkSize
	DryRun    bool
	Decide    Decision // nil = denegar toda mutación
}

// UseCase verificador de cadenas / auditor de reordenado. Valida fuera de
// línea que la historia de movimientos de cada activo forme un camino
// consistente de ubicaciones y propone reparaciones acotadas cuando los
// movimientos se registraron fuera de orden temporal.
type UseCase struct {
	txRunner  TxRunner
	assetRepo repository.AssetRepository // lectura de ids fuera de transacción
}

// NewUseCase construye el verificador.
func NewUseCase(txRunner TxRunner, assetRepo repository.AssetRepository) *UseCase {
	return &UseCase{txRunner: txRunner, assetRepo: assetRepo}
}

// Run procesa los activos en chunks, cada chunk dentro de su propia
// transacción. Un activo irreparable no bloquea a los demás; un error de
// infraestructura revierte el chunk en curso y el reporte indica desde qué
// offset reanudar.
func (uc *UseCase) Run(ctx context.Context, opts Options) (*Report, error) {
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	decide := opts.Decide
	if decide == nil {
		decide = func(string) bool { return false }
	}

	report := &Report{LastCommittedOffset: opts.Offset}
	offset := opts.Offset
	remaining := opts.Limit

	for {
		size := chunkSize
		if opts.Limit > 0 && remaining < size {
			size = remaining
		}
		if size == 0 {
			break
		}

		var ids []int64
		var err error
		if len(opts.AssetIDs) > 0 {
			ids = pageIDs(opts.AssetIDs, offset, size)
		} else {
			ids, err = uc.assetRepo.ListIDs(ctx, offset, size)
			if err != nil {
				return report, fmt.Errorf("listar activos: %w", err)
			}
		}
		if len(ids) == 0 {
			break
		}

		err = uc.txRunner.RunVerify(ctx, func(
			movRepo repository.MovementRepository,
			assetRepo repository.AssetRepository,
			locRepo repository.LocationRepository,
			chkRepo repository.CheckpointRepository,
		) error {
			locs := map[int64]*entity.Location{}
			for _, id := range ids {
				res, err := uc.auditAsset(ctx, movRepo, assetRepo, locRepo, chkRepo, locs, id, opts.DryRun, decide)
				if err != nil {
					return err
				}
				report.add(res)
			}
			return nil
		})
		if err != nil {
			// El chunk se revirtió entero; se reanuda desde el último commit.
			return report, fmt.Errorf("chunk en offset %d: %w", offset, err)
		}

		offset += len(ids)
		report.LastCommittedOffset = offset
		if opts.Limit > 0 {
			remaining -= len(ids)
			if remaining <= 0 {
				break
			}
		}
		if len(ids) < size {
			break
		}
	}
	return report, nil
}

// auditAsset recorre los movimientos 'done' del activo en orden
// (date_act, id) verificando que formen un camino de ubicaciones. Ante una
// inconsistencia intenta una reparación acotada (reinsertar el movimiento
// después del primero del resto que sí encaje); si la reparación queda fuera
// de los límites externos (fecha de validación, corte de inventario, más de un
// activo en el movimiento) registra un hallazgo LocationJump y sigue.
func (uc *UseCase) auditAsset(
	ctx context.Context,
	movRepo repository.MovementRepository,
	assetRepo repository.AssetRepository,
	locRepo repository.LocationRepository,
	chkRepo repository.CheckpointRepository,
	locs map[int64]*entity.Location,
	assetID int64,
	dryRun bool,
	decide Decision,
) (AssetResult, error) {
	res := AssetResult{AssetID: assetID, Status: StatusConsistent}

	chain, err := movRepo.ListDoneByAsset(ctx, assetID)
	if err != nil {
		return res, err
	}

	var lastLoc *int64
	var lastMove *entity.Movement

	i := 0
	for i < len(chain) {
		m := chain[i]
		ok, err := uc.consistent(ctx, locRepo, locs, m, lastLoc)
		if err != nil {
			return res, err
		}
		if ok {
			dest := m.LocationDestID
			lastLoc = &dest
			lastMove = m
			i++
			continue
		}

		// Buscar en la cola restante un movimiento que sí encaje con la
		// ubicación actual.
		next := -1
		for j := i + 1; j < len(chain); j++ {
			ok, err := uc.consistent(ctx, locRepo, locs, chain[j], lastLoc)
			if err != nil {
				return res, err
			}
			if ok {
				next = j
				break
			}
		}

		if next >= 0 {
			n := chain[next]
			candidate := n.DateAct
			if m.ID < n.ID {
				// Desempate de misma fecha: un día extra evita que el id
				// menor parezca anterior al mayor. Heurística heredada de
				// datos migrados, sin confirmación de negocio.
				candidate = candidate.AddDate(0, 0, 1)
			}

			ok, err := uc.repairAllowed(ctx, movRepo, chkRepo, m, candidate)
			if err != nil {
				return res, err
			}
			if ok {
				repair := Repair{
					MovementID:      m.ID,
					OldDateAct:      m.DateAct,
					NewDateAct:      candidate,
					AfterMovementID: n.ID,
				}
				q := fmt.Sprintf("Mover movimiento #%d de %s a %s (después de #%d)?",
					m.ID, m.DateAct.Format("2006-01-02"), candidate.Format("2006-01-02"), n.ID)
				if !dryRun && decide(q) {
					if err := movRepo.UpdateDateAct(ctx, m.ID, candidate); err != nil {
						return res, err
					}
					repair.Applied = true
				}
				res.Repairs = append(res.Repairs, repair)

				// Reinsertar M justo después de N y retomar el recorrido en la
				// posición de N, sin avanzar last_location sobre lo saltado.
				m.DateAct = candidate
				copy(chain[i:next], chain[i+1:next+1])
				chain[next] = m
				i = next - 1
				continue
			}
		}

		// Sin reparación posible: hallazgo y seguir con el resto sin avanzar
		// la ubicación esperada.
		f := Finding{
			Kind:            LocationJump,
			AssetID:         assetID,
			FoundLocationID: m.LocationSrcID,
			MovementID:      m.ID,
		}
		if lastLoc != nil {
			exp := *lastLoc
			f.ExpectedLocationID = &exp
		}
		if lastMove != nil {
			prev := lastMove.ID
			f.PrevMovementID = &prev
		}
		res.Findings = append(res.Findings, f)
		log.Warn().Int64("activo", assetID).Int64("movimiento", m.ID).
			Msg("salto de ubicación en la cadena de movimientos")
		i++
	}

	// Comparar el final de la cadena con la ubicación almacenada.
	asset, err := assetRepo.GetByID(ctx, assetID)
	if err != nil {
		return res, err
	}
	if asset != nil && !sameLoc(lastLoc, asset.LocationID) {
		res.LocationMismatch = true
		res.ProposedLocationID = lastLoc
		if len(res.Findings) == 0 {
			// Cadena limpia: proponer corregir la ubicación almacenada.
			// Disposición confirmada por operador, nunca automática.
			q := fmt.Sprintf("Activo #%d debería estar en %s pero figura en %s, corregir?",
				assetID, fmtLoc(lastLoc), fmtLoc(asset.LocationID))
			if !dryRun && decide(q) {
				asset.LocationID = lastLoc
				if lastLoc != nil {
					asset.BundleID = nil
				}
				if err := assetRepo.Update(ctx, asset); err != nil {
					return res, err
				}
				res.LocationFixed = true
			}
		}
	}

	switch {
	case len(res.Findings) > 0:
		res.Status = StatusFindings
	case len(res.Repairs) > 0:
		res.Status = StatusRepaired
	}
	return res, nil
}

// consistent decide si el movimiento encaja con la ubicación acumulada:
// sin historia previa solo se acepta un origen de primera recepción
// (procurement/supplier); con historia, el origen debe ser la última
// ubicación alcanzada.
func (uc *UseCase) consistent(
	ctx context.Context,
	locRepo repository.LocationRepository,
	locs map[int64]*entity.Location,
	m *entity.Movement,
	lastLoc *int64,
) (bool, error) {
	if lastLoc == nil {
		src, err := uc.location(ctx, locRepo, locs, m.LocationSrcID)
		if err != nil {
			return false, err
		}
		return src != nil && src.IsIncoming(), nil
	}
	return m.LocationSrcID == *lastLoc, nil
}

// repairAllowed acota la reparación con hechos fijados externamente: la fecha
// candidata no puede superar la fecha de validación del movimiento ni la de su
// corte de inventario destino, y un movimiento con más de un activo nunca se
// reordena (puede ser correcto para sus otros activos).
func (uc *UseCase) repairAllowed(
	ctx context.Context,
	movRepo repository.MovementRepository,
	chkRepo repository.CheckpointRepository,
	m *entity.Movement,
	candidate time.Time,
) (bool, error) {
	if m.DateVal != nil && candidate.After(*m.DateVal) {
		return false, nil
	}
	if m.CheckpointDestID != nil {
		chk, err := chkRepo.GetByID(ctx, *m.CheckpointDestID)
		if err != nil {
			return false, err
		}
		if chk != nil && candidate.After(chk.DateAct) {
			return false, nil
		}
	}
	n, err := movRepo.CountItems(ctx, m.ID)
	if err != nil {
		return false, err
	}
	return n <= 1, nil
}

func (uc *UseCase) location(
	ctx context.Context,
	locRepo repository.LocationRepository,
	cache map[int64]*entity.Location,
	id int64,
) (*entity.Location, error) {
	if l, ok := cache[id]; ok {
		return l, nil
	}
	l, err := locRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cache[id] = l
	return l, nil
}

func sameLoc(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func fmtLoc(id *int64) string {
	if id == nil {
		return "(sin ubicación)"
	}
	return fmt.Sprintf("ubicación #%d", *id)
}

func pageIDs(ids []int64, offset, limit int) []int64 {
	if offset >= len(ids) {
		return nil
	}
	end := offset + limit
	if end > len(ids) {
		end = len(ids)
	}
	return ids[offset:end]
}
