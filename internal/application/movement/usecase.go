package movement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

// UseCase motor de movimientos: máquina de estados de reubicación de activos
// entre ubicaciones, con bloqueo de fila (SELECT FOR UPDATE) y Commit/Rollback.
// Los traslados internos entre departamentos distintos cierran en dos fases.
type UseCase struct {
	txRunner TxRunner
	roles    RoleProvider
	locRepo  repository.LocationRepository
	deptRepo repository.DepartmentRepository
}

// NewUseCase construye el motor de movimientos.
func NewUseCase(
	txRunner TxRunner,
	roles RoleProvider,
	locRepo repository.LocationRepository,
	deptRepo repository.DepartmentRepository,
) *UseCase {
	return &UseCase{
		txRunner: txRunner,
		roles:    roles,
		locRepo:  locRepo,
		deptRepo: deptRepo,
	}
}

// CreateInput entrada para crear un movimiento en borrador.
type CreateInput struct {
	Type            entity.MovementType
	LocationSrcID   int64
	LocationDestID  int64
	DateAct         time.Time
	PurchaseOrderID *int64
	ItemIDs         []int64
}

// Create crea un movimiento en estado draft. Los ítems iniciales son
// opcionales; un draft se puede seguir armando con AddItem/RemoveItem.
func (uc *UseCase) Create(ctx context.Context, userID string, in CreateInput) (*entity.Movement, error) {
	switch in.Type {
	case entity.MovementIn, entity.MovementOut, entity.MovementInternal, entity.MovementOther:
	default:
		return nil, domain.ErrInvalidInput
	}
	if in.LocationSrcID == 0 || in.LocationDestID == 0 || in.LocationSrcID == in.LocationDestID {
		return nil, domain.ErrInvalidInput
	}
	src, err := uc.locRepo.GetByID(ctx, in.LocationSrcID)
	if err != nil {
		return nil, err
	}
	dest, err := uc.locRepo.GetByID(ctx, in.LocationDestID)
	if err != nil {
		return nil, err
	}
	if src == nil || dest == nil {
		return nil, domain.ErrNotFound
	}
	if !dest.Active {
		return nil, domain.ErrConflict
	}

	dateAct := in.DateAct
	if dateAct.IsZero() {
		dateAct = today()
	}
	m := &entity.Movement{
		Reference:       uuid.New().String()[:8],
		State:           entity.MovementDraft,
		Type:            in.Type,
		LocationSrcID:   in.LocationSrcID,
		LocationDestID:  in.LocationDestID,
		DateAct:         dateAct,
		CreateUserID:    userID,
		PurchaseOrderID: in.PurchaseOrderID,
	}

	err = uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		assetRepo repository.AssetRepository,
		_ repository.LocationRepository,
		_ repository.CheckpointRepository,
	) error {
		if err := movRepo.Create(ctx, m); err != nil {
			return err
		}
		for _, assetID := range in.ItemIDs {
			a, err := assetRepo.GetByID(ctx, assetID)
			if err != nil {
				return err
			}
			if a == nil {
				return domain.ErrNotFound
			}
			if err := movRepo.AddItem(ctx, m.ID, assetID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Close valida el movimiento por el lado receptor y, si corresponde, lo
// finaliza: verifica la consistencia de ubicación de cada ítem y reubica todo
// el conjunto a destino en una sola operación atómica.
//
// Para traslados internos entre departamentos distintos implementa la primera
// mitad del protocolo de dos fases: fija ValidateUserID/DateVal y solo
// finaliza si el lado emisor ya aprobó, o si el departamento origen es nulo,
// está inactivo, fue fusionado, o es el mismo que el destino. La reubicación
// ocurre exactamente una vez, en la llamada que completa la segunda aprobación.
func (uc *UseCase) Close(ctx context.Context, userID string, movementID int64, valDate *time.Time) (*entity.Movement, error) {
	role, err := uc.roles.RoleOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := role.Require(domain.CapValidateMovement); err != nil {
		return nil, err
	}

	date := today()
	if valDate != nil {
		date = *valDate
	}

	var out *entity.Movement
	err = uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		assetRepo repository.AssetRepository,
		locRepo repository.LocationRepository,
		chkRepo repository.CheckpointRepository,
	) error {
		m, err := movRepo.GetForUpdate(ctx, movementID)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.ErrNotFound
		}
		if !m.IsDraft() {
			return domain.Validation(domain.NotDraft, "el movimiento %s (id %d) no está en borrador", m.Reference, m.ID)
		}
		if m.DestApproved() {
			return domain.Validation(domain.AlreadyValidated, "el movimiento %s ya fue validado", m.Reference)
		}

		src, dest, err := uc.endpoints(ctx, locRepo, m)
		if err != nil {
			return err
		}
		if err := uc.guardCheckpoints(ctx, chkRepo, m, src, dest); err != nil {
			return err
		}
		if err := uc.checkItems(ctx, assetRepo, m, src); err != nil {
			return err
		}

		m.ValidateUserID = &userID
		m.DateVal = &date

		if uc.needsSecondApproval(ctx, m, src, dest) && !m.SrcApproved() {
			// Queda en borrador esperando la aprobación del lado emisor.
			out = m
			return movRepo.Update(ctx, m)
		}
		out = m
		return uc.finalize(ctx, movRepo, assetRepo, m)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CloseSource registra la aprobación del lado emisor de un traslado interno.
// Finaliza si el lado receptor ya había validado; si no, el movimiento queda
// en borrador esperando la llamada simétrica a Close.
func (uc *UseCase) CloseSource(ctx context.Context, userID string, movementID int64, valDate *time.Time) (*entity.Movement, error) {
	role, err := uc.roles.RoleOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := role.Require(domain.CapValidateMovement); err != nil {
		return nil, err
	}

	date := today()
	if valDate != nil {
		date = *valDate
	}

	var out *entity.Movement
	err = uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		assetRepo repository.AssetRepository,
		locRepo repository.LocationRepository,
		chkRepo repository.CheckpointRepository,
	) error {
		m, err := movRepo.GetForUpdate(ctx, movementID)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.ErrNotFound
		}
		if !m.IsDraft() {
			return domain.Validation(domain.NotDraft, "el movimiento %s (id %d) no está en borrador", m.Reference, m.ID)
		}
		if m.Type != entity.MovementInternal {
			return domain.ErrConflict
		}
		if m.SrcApproved() {
			return domain.Validation(domain.AlreadyValidated, "el lado emisor del movimiento %s ya aprobó", m.Reference)
		}

		m.SrcValidateUserID = &userID
		m.SrcDateVal = &date

		if !m.DestApproved() {
			// Primera aprobación: queda esperando al lado receptor.
			out = m
			return movRepo.Update(ctx, m)
		}

		src, dest, err := uc.endpoints(ctx, locRepo, m)
		if err != nil {
			return err
		}
		if err := uc.guardCheckpoints(ctx, chkRepo, m, src, dest); err != nil {
			return err
		}
		if err := uc.checkItems(ctx, assetRepo, m, src); err != nil {
			return err
		}
		out = m
		return uc.finalize(ctx, movRepo, assetRepo, m)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Reject marca el movimiento como rechazado. Terminal, sin reubicación.
func (uc *UseCase) Reject(ctx context.Context, userID string, movementID int64) (*entity.Movement, error) {
	role, err := uc.roles.RoleOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := role.Require(domain.CapRejectMovement); err != nil {
		return nil, err
	}

	var out *entity.Movement
	err = uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		_ repository.AssetRepository,
		_ repository.LocationRepository,
		_ repository.CheckpointRepository,
	) error {
		m, err := movRepo.GetForUpdate(ctx, movementID)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.ErrNotFound
		}
		if !m.IsDraft() {
			return domain.Validation(domain.NotDraft, "el movimiento %s (id %d) no está en borrador", m.Reference, m.ID)
		}
		m.State = entity.MovementRejected
		out = m
		return movRepo.Update(ctx, m)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AddItem agrega un activo al carrito de un movimiento en borrador. Falla si
// el activo no está actualmente en la ubicación origen del movimiento.
func (uc *UseCase) AddItem(ctx context.Context, userID string, movementID, assetID int64) error {
	return uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		assetRepo repository.AssetRepository,
		_ repository.LocationRepository,
		_ repository.CheckpointRepository,
	) error {
		m, err := movRepo.GetForUpdate(ctx, movementID)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.ErrNotFound
		}
		if !m.IsDraft() {
			return domain.Validation(domain.NotDraft, "el movimiento %s (id %d) no está en borrador", m.Reference, m.ID)
		}
		a, err := assetRepo.GetByID(ctx, assetID)
		if err != nil {
			return err
		}
		if a == nil {
			return domain.ErrNotFound
		}
		if a.LocationID == nil || *a.LocationID != m.LocationSrcID {
			ve := domain.Validation(domain.LocationMismatch, "el activo no está en la ubicación origen del movimiento")
			ve.AssetID = a.ID
			ve.ExpectedID = &m.LocationSrcID
			ve.FoundID = a.LocationID
			return ve
		}
		in, err := movRepo.HasItem(ctx, movementID, assetID)
		if err != nil {
			return err
		}
		if in {
			return domain.ErrDuplicate
		}
		return movRepo.AddItem(ctx, movementID, assetID)
	})
}

// RemoveItem quita un activo del carrito de un movimiento en borrador.
func (uc *UseCase) RemoveItem(ctx context.Context, userID string, movementID, assetID int64) error {
	return uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		_ repository.AssetRepository,
		_ repository.LocationRepository,
		_ repository.CheckpointRepository,
	) error {
		m, err := movRepo.GetForUpdate(ctx, movementID)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.ErrNotFound
		}
		if !m.IsDraft() {
			return domain.Validation(domain.NotDraft, "el movimiento %s (id %d) no está en borrador", m.Reference, m.ID)
		}
		in, err := movRepo.HasItem(ctx, movementID, assetID)
		if err != nil {
			return err
		}
		if !in {
			return domain.ErrNotFound
		}
		return movRepo.RemoveItem(ctx, movementID, assetID)
	})
}

// endpoints carga origen y destino del movimiento.
func (uc *UseCase) endpoints(ctx context.Context, locRepo repository.LocationRepository, m *entity.Movement) (src, dest *entity.Location, err error) {
	src, err = locRepo.GetByID(ctx, m.LocationSrcID)
	if err != nil {
		return nil, nil, err
	}
	dest, err = locRepo.GetByID(ctx, m.LocationDestID)
	if err != nil {
		return nil, nil, err
	}
	if src == nil || dest == nil {
		return nil, nil, domain.ErrNotFound
	}
	return src, dest, nil
}

// guardCheckpoints fija el último corte validado de los extremos internos como
// checkpoint origen, y rechaza cierres con fecha efectiva no posterior a ese
// corte: la historia anterior a un inventario validado está congelada.
func (uc *UseCase) guardCheckpoints(ctx context.Context, chkRepo repository.CheckpointRepository, m *entity.Movement, src, dest *entity.Location) error {
	var latest *entity.Checkpoint
	for _, loc := range []*entity.Location{src, dest} {
		if loc.Usage != entity.UsageInternal {
			continue
		}
		chk, err := chkRepo.LastValidated(ctx, loc.ID)
		if err != nil {
			return err
		}
		if chk != nil && (latest == nil || chk.DateAct.After(latest.DateAct)) {
			latest = chk
		}
	}
	if latest == nil {
		return nil
	}
	m.CheckpointSrcID = &latest.ID
	if !m.DateAct.After(latest.DateAct) {
		return domain.Validation(domain.CheckpointLocked,
			"no se permiten movimientos hasta %s, fecha del último inventario validado",
			latest.DateAct.Format("2006-01-02"))
	}
	return nil
}

// checkItems verifica la consistencia de ubicación de cada ítem: debe estar en
// la ubicación origen, o sin ubicación si el origen es de primera recepción
// (procurement/supplier). Cualquier desvío aborta el cierre completo.
func (uc *UseCase) checkItems(ctx context.Context, assetRepo repository.AssetRepository, m *entity.Movement, src *entity.Location) error {
	items, err := assetRepo.ListByMovement(ctx, m.ID, true)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return domain.Validation(domain.EmptyMovement, "no se puede cerrar un movimiento sin ítems")
	}
	for _, it := range items {
		switch {
		case it.LocationID != nil && *it.LocationID == src.ID:
		case it.LocationID == nil && src.IsIncoming():
			// Primera recepción: los ítems aún no tienen ubicación.
		default:
			ve := domain.Validation(domain.LocationMismatch,
				"el activo no está en la ubicación origen del movimiento")
			ve.AssetID = it.ID
			ve.ExpectedID = &src.ID
			ve.FoundID = it.LocationID
			return ve
		}
	}
	return nil
}

// needsSecondApproval decide si el traslado requiere la aprobación del lado
// emisor: tipo internal con departamento origen vigente y distinto al destino.
func (uc *UseCase) needsSecondApproval(ctx context.Context, m *entity.Movement, src, dest *entity.Location) bool {
	if m.Type != entity.MovementInternal {
		return false
	}
	if src.DepartmentID == nil {
		return false
	}
	if dest.DepartmentID != nil && *src.DepartmentID == *dest.DepartmentID {
		return false
	}
	srcDept, err := uc.deptRepo.GetByID(ctx, *src.DepartmentID)
	if err != nil || srcDept == nil {
		// Departamento desconocido: no hay quien apruebe del lado emisor.
		return false
	}
	return srcDept.Effective()
}

// finalize reubica todos los ítems a destino y marca done. Se ejecuta dentro
// de la transacción del caller; la visibilidad del efecto llega con el commit.
func (uc *UseCase) finalize(ctx context.Context, movRepo repository.MovementRepository, assetRepo repository.AssetRepository, m *entity.Movement) error {
	items, err := assetRepo.ListByMovement(ctx, m.ID, false)
	if err != nil {
		return err
	}
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	if err := assetRepo.Relocate(ctx, ids, m.LocationDestID); err != nil {
		return err
	}
	m.State = entity.MovementDone
	return movRepo.Update(ctx, m)
}

// today trunca la hora: date_act y date_val son fechas de negocio.
func today() time.Time {
	y, mo, d := time.Now().Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}
