package movement_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Activos-api/internal/application/movement"
	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// roleMap RoleProvider de pruebas: usuario -> rol precargado.
type roleMap map[string]*domain.Role

func (r roleMap) RoleOf(_ context.Context, userID string) (*domain.Role, error) {
	role, ok := r[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return role, nil
}

// fixture mundo mínimo: dos departamentos, tres ubicaciones internas, un
// proveedor, y usuarios con capacidades de validación.
type fixture struct {
	store *memory.Store
	uc    *movement.UseCase

	deptA, deptB       *entity.Department
	bodegaA, bodegaA2  *entity.Location
	bodegaB            *entity.Location
	proveedor          *entity.Location
	almacenero, auditor string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := memory.NewStore()

	deptA := s.AddDepartment(&entity.Department{Name: "Sistemas", Active: true})
	deptB := s.AddDepartment(&entity.Department{Name: "Contabilidad", Active: true})

	bodegaA := s.AddLocation(&entity.Location{Name: "Bodega A", Usage: entity.UsageInternal, DepartmentID: &deptA.ID, Active: true})
	bodegaA2 := s.AddLocation(&entity.Location{Name: "Bodega A2", Usage: entity.UsageInternal, DepartmentID: &deptA.ID, Active: true})
	bodegaB := s.AddLocation(&entity.Location{Name: "Bodega B", Usage: entity.UsageInternal, DepartmentID: &deptB.ID, Active: true})
	proveedor := s.AddLocation(&entity.Location{Name: "Proveedor", Usage: entity.UsageSupplier, Active: true})

	roles := roleMap{
		"almacenero": domain.NewRole("almacenero", &deptA.ID, domain.CapValidateMovement, domain.CapRejectMovement),
		"auditor":    domain.NewRole("auditor", nil, domain.CapRepairChain),
	}

	uc := movement.NewUseCase(memory.NewTxRunner(s), roles, memory.NewLocations(s), memory.NewDepartments(s))
	return &fixture{
		store:      s,
		uc:         uc,
		deptA:      deptA,
		deptB:      deptB,
		bodegaA:    bodegaA,
		bodegaA2:   bodegaA2,
		bodegaB:    bodegaB,
		proveedor:  proveedor,
		almacenero: "almacenero",
		auditor:    "auditor",
	}
}

func (f *fixture) assetAt(loc *entity.Location) *entity.Asset {
	a := &entity.Asset{TemplateID: 1, Quantity: 1, Active: true}
	if loc != nil {
		id := loc.ID
		a.LocationID = &id
	}
	return f.store.AddAsset(a)
}

func day(s string) time.Time {
	d, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		panic(err)
	}
	return d
}

func dayPtr(s string) *time.Time {
	d := day(s)
	return &d
}

// ──────────────────────────────────────────────────────────────────────────────
// Create
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_BorradorConItems(t *testing.T) {
	f := newFixture(t)
	a1 := f.assetAt(f.bodegaA)
	a2 := f.assetAt(f.bodegaA)

	m, err := f.uc.Create(context.Background(), f.almacenero, movement.CreateInput{
		Type:           entity.MovementInternal,
		LocationSrcID:  f.bodegaA.ID,
		LocationDestID: f.bodegaA2.ID,
		DateAct:        day("2026-03-10"),
		ItemIDs:        []int64{a1.ID, a2.ID},
	})
	require.NoError(t, err)

	assert.Equal(t, entity.MovementDraft, m.State)
	assert.NotEmpty(t, m.Reference)
	assert.Equal(t, []int64{a1.ID, a2.ID}, f.store.ItemIDs(m.ID))
	// El borrador no reubica nada.
	assert.Equal(t, f.bodegaA.ID, *f.store.Asset(a1.ID).LocationID)
}

func TestCreate_TipoInvalido(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Create(context.Background(), f.almacenero, movement.CreateInput{
		Type:           "prestamo",
		LocationSrcID:  f.bodegaA.ID,
		LocationDestID: f.bodegaA2.ID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreate_OrigenIgualDestino(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Create(context.Background(), f.almacenero, movement.CreateInput{
		Type:           entity.MovementInternal,
		LocationSrcID:  f.bodegaA.ID,
		LocationDestID: f.bodegaA.ID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreate_DestinoInactivo(t *testing.T) {
	f := newFixture(t)
	inactiva := f.store.AddLocation(&entity.Location{Name: "Cerrada", Usage: entity.UsageInternal, Active: false})

	_, err := f.uc.Create(context.Background(), f.almacenero, movement.CreateInput{
		Type:           entity.MovementInternal,
		LocationSrcID:  f.bodegaA.ID,
		LocationDestID: inactiva.ID,
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

// ──────────────────────────────────────────────────────────────────────────────
// Close — camino feliz y precondiciones
// ──────────────────────────────────────────────────────────────────────────────

func TestClose_MismoDepartamento_FinalizaYReubica(t *testing.T) {
	f := newFixture(t)
	a1 := f.assetAt(f.bodegaA)
	a2 := f.assetAt(f.bodegaA)

	m, err := f.uc.Create(context.Background(), f.almacenero, movement.CreateInput{
		Type:           entity.MovementInternal,
		LocationSrcID:  f.bodegaA.ID,
		LocationDestID: f.bodegaA2.ID,
		DateAct:        day("2026-03-10"),
		ItemIDs:        []int64{a1.ID, a2.ID},
	})
	require.NoError(t, err)

	out, err := f.uc.Close(context.Background(), f.almacenero, m.ID, dayPtr("2026-03-11"))
	require.NoError(t, err)

	assert.Equal(t, entity.MovementDone, out.State)
	require.NotNil(t, out.DateVal)
	assert.Equal(t, day("2026-03-11"), *out.DateVal)
	require.NotNil(t, out.ValidateUserID)
	assert.Equal(t, f.almacenero, *out.ValidateUserID)

	// Ambos ítems reubicados a destino.
	assert.Equal(t, f.bodegaA2.ID, *f.store.Asset(a1.ID).LocationID)
	assert.Equal(t, f.bodegaA2.ID, *f.store.Asset(a2.ID).LocationID)
}

func TestClose_RecepcionDesdeProveedor_ItemsSinUbicacion(t *testing.T) {
	f := newFixture(t)
	a := f.assetAt(nil) // recién creado, todavía sin ubicación

	m, err := f.uc.Create(context.Background(), f.almacenero, movement.CreateInput{
		Type:           entity.MovementIn,
		LocationSrcID:  f.proveedor.ID,
		LocationDestID: f.bodegaA.ID,
		DateAct:        day("2026-03-10"),
		ItemIDs:        []int64{a.ID},
	})
	require.NoError(t, err)

	out, err := f.uc.Close(context.Background(), f.almacenero, m.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementDone, out.State)
	assert.Equal(t, f.bodegaA.ID, *f.store.Asset(a.ID).LocationID)
}

func TestClose_SinCapacidad_PermissionError(t *testing.T) {
	f := newFixture(t)
	a := f.assetAt(f.bodegaA)
	m, err := f.uc.Create(context.Background(), f.almacenero, movement.CreateInput{
		Type:           entity.MovementInternal,
		LocationSrcID:  f.bodegaA.ID,
		LocationDestID: f.bodegaA2.ID,
		ItemIDs:        []int64{a.ID},
	})
	require.NoError(t, err)

	_, err = f.uc.Close(context.Background(), f.auditor, m.ID, nil)
	var pe *domain.PermissionError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, domain.CapValidateMovement, pe.Capability)
	// Sin mutación: sigue en borrador y el ítem no se movió.
	assert.Equal(t, entity.MovementDraft, f.store.Movement(m.ID).State)
	assert.Equal(t, f.bodegaA.ID, *f.store.Asset(a.ID).LocationID)
}

func TestClose_NoBorrador(t *testing.T) {
	f := newFixture(t)
	a := f.assetAt(f.bodegaA)
	m, err := f.uc.Create(context.Background(), f.almacenero, movement.CreateInput{
		Type:           entity.MovementInternal,
		LocationSrcID:  f.bodegaA.ID,
		LocationDestID: f.bodegaA2.ID,
		ItemIDs:        []int64{a.ID},
	})
	require.NoError(t, err)
	_, err = f.uc.Close(context.Background(), f.almacenero, m.ID, nil)
	require.NoError(t, err)

	_, err = f.uc.Close(context.Background(), f.almacenero, m.ID, nil)
	assert.True(t, domain.IsValidation(err, domain.NotDraft), "cerrar dos veces debe fallar con NOT_DRAFT: %v", err)
}

func TestClose_SinItems(t *testing.T) {
	f := newFixture(t)
	m, err := f.uc.Create(context.Background(), f.almacenero, movement.CreateInput{
		Type:           entity.MovementInternal,
		LocationSrcID:  f.bodegaA.ID,
		LocationDestID: f.bodegaA2.ID,
	})
	require.NoError(t, err)

	_, err = f.uc.Close(context.Background(), f.almacenero, m.ID, nil)
	assert.True(t, domain.IsValidation(err, domain.EmptyMovement))
}

func TestClose_ItemEnOtraUbicacion_AbortaTodo(t *testing.T) {
	f := newFixture(t)
	bien := f.assetAt(f.bodegaA)
	mal := f.assetAt(f.bodegaB) // no está en el origen

	m, err := f.uc.Create(context.Background(), f.almacenero, movement.CreateInput{
		Type:           entity.MovementInternal,
		LocationSrcID:  f.bodegaA.ID,
		LocationDestID: f.bodegaA2.ID,
		ItemIDs:        []int64{bien.ID, mal.ID},
	})
	require.NoError(t, err)

	_, err = f.uc.Close(context.Background(), f.almacenero, m.ID, nil)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, domain.LocationMismatch, ve.Kind)
	assert.Equal(t, mal.ID, ve.AssetID)
	require.NotNil(t, ve.ExpectedID)
	assert.Equal(t, f.bodegaA.ID, *ve.ExpectedID)
	require.NotNil(t, ve.FoundID)
	assert.Equal(t, f.bodegaB.ID, *ve.FoundID)

	// Ningún ítem se movió: el cierre es todo-o-nada.
	assert.Equal(t, f.bodegaA.ID, *f.store.Asset(bien.ID).LocationID)
	assert.Equal(t, entity.MovementDraft, f.store.Movement(m.ID).State)
}

func TestClose_BloqueadoPorInventarioValidado(t *testing.T) {
	f := newFixture(t)
	a := f.assetAt(f.bodegaA)
	f.store.AddCheckpoint(&entity.Checkpoint{
		LocationID: f.bodegaA.ID,
		DateAct:    day("2026-03-15"),
		DateVal:    dayPtr("2026-03-16"),
	})

	// Fecha efectiva anterior al último inventario validado del origen.
	m, err := f.uc.Create(context.Background(), f.almacenero, movement.CreateInput{
		Type:           entity.MovementInternal,
		LocationSrcID:  f.bodegaA.ID,
		LocationDestID: f.bodegaA2.ID,
		DateAct:        day("2026-03-10"),
		ItemIDs:        []int64{a.ID},
	})
	require.NoError(t, err)

	_, err = f.uc.Close(context.Background(), f.almacenero, m.ID, nil)
	assert.True(t, domain.IsValidation(err, domain.CheckpointLocked), "se esperaba CHECKPOINT_LOCKED: %v", err)

	// Con fecha posterior al corte sí cierra.
	m2, err := f.uc.Create(context.Background(), f.almacenero, movement.CreateInput{
		Type:           entity.MovementInternal,
		LocationSrcID:  f.bodegaA.ID,
		LocationDestID: f.bodegaA2.ID,
		DateAct:        day("2026-03-20"),
		ItemIDs:        []int64{a.ID},
	})
	require.NoError(t, err)
	out, err := f.uc.Close(context.Background(), f.almacenero, m2.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementDone, out.State)
}

// ──────────────────────────────────────────────────────────────────────────────
// Doble aprobación en traslados entre departamentos
// ──────────────────────────────────────────────────────────────────────────────

func TestDobleAprobacion_ReceptorPrimero(t *testing.T) {
	f := newFixture(t)
	a := f.assetAt(f.bodegaA)

	m, err := f.uc.Create(context.Background(), f.almacenero, movement.CreateInput{
		Type:           entity.MovementInternal,
		LocationSrcID:  f.bodegaA.ID, // dept A
		LocationDestID: f.bodegaB.ID, // dept B
		DateAct:        day("2026-03-10"),
		ItemIDs:        []int64{a.ID},
	})
	require.NoError(t, err)

	// Primera aprobación (receptor): queda en borrador, sin reubicar.
	out, err := f.uc.Close(context.Background(), f.almacenero, m.ID, dayPtr("2026-03-11"))
	require.NoError(t, err)
	assert.Equal(t, entity.MovementDraft, out.State)
	assert.NotNil(t, out.ValidateUserID)
	assert.Nil(t, out.SrcValidateUserID)
	assert.Equal(t, f.bodegaA.ID, *f.store.Asset(a.ID).LocationID)

	// Segunda aprobación (emisor): finaliza y reubica.
	out, err = f.uc.CloseSource(context.Background(), f.almacenero, m.ID, dayPtr("2026-03-12"))
	require.NoError(t, err)
	assert.Equal(t, entity.MovementDone, out.State)
	assert.NotNil(t, out.SrcValidateUserID)
	assert.Equal(t, f.bodegaB.ID, *f.store.Asset(a.ID).LocationID)
}

func TestDobleAprobacion_EmisorPrimero(t *testing.T) {
	f := newFixture(t)
	a := f.assetAt(f.bodegaA)

	m, err := f.uc.Create(context.Background(), f.almacenero, movement.CreateInput{
		Type:           entity.MovementInternal,
		LocationSrcID:  f.bodegaA.ID,
		LocationDestID: f.bodegaB.ID,
		DateAct:        day("2026-03-10"),
		ItemIDs:        []int64{a.ID},
	})
	require.NoError(t, err)

	out, err := f.uc.CloseSource(context.Background(), f.almacenero, m.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementDraft, out.State)
	assert.Equal(t, f.bodegaA.ID, *f.store.Asset(a.ID).LocationID)

	out, err = f.uc.Close(context.Background(), f.almacenero, m.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementDone, out.State)
	assert.Equal(t, f.bodegaB.ID, *f.store.Asset(a.ID).LocationID)
}

func TestDobleAprobacion_SegundaVezMismoLado(t *testing.T) {
	f := newFixture(t)
	a := f.assetAt(f.bodegaA)
	m, err := f.uc.Create(context.Background(), f.almacenero, movement.CreateInput{
		Type:           entity.MovementInternal,
		LocationSrcID:  f.bodegaA.ID,
		LocationDestID: f.bodegaB.ID,
		ItemIDs:        []int64{a.ID},
	})
	require.NoError(t, err)

	_, err = f.uc.Close(context.Background(), f.almacenero, m.ID, nil)
	require.NoError(t, err)

	_, err = f.uc.Close(context.Background(), f.almacenero, m.ID, nil)
	assert.True(t, domain.IsValidation(err, domain.AlreadyValidated), "repetir el mismo lado debe fallar: %v", err)
}

func TestDobleAprobacion_DepartamentoFusionadoNoAplica(t *testing.T) {
	f := newFixture(t)
	// El departamento origen fue fusionado: ya no hay quien apruebe por él.
	f.deptA.MergedIntoID = &f.deptB.ID

	a := f.assetAt(f.bodegaA)
	m, err := f.uc.Create(context.Background(), f.almacenero, movement.CreateInput{
		Type:           entity.MovementInternal,
		LocationSrcID:  f.bodegaA.ID,
		LocationDestID: f.bodegaB.ID,
		ItemIDs:        []int64{a.ID},
	})
	require.NoError(t, err)

	out, err := f.uc.Close(context.Background(), f.almacenero, m.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementDone, out.State, "sin departamento origen vigente el cierre es de una sola fase")
	assert.Equal(t, f.bodegaB.ID, *f.store.Asset(a.ID).LocationID)
}

func TestCloseSource_SoloTrasladosInternos(t *testing.T) {
	f := newFixture(t)
	a := f.assetAt(nil)
	m, err := f.uc.Create(context.Background(), f.almacenero, movement.CreateInput{
		Type:           entity.MovementIn,
		LocationSrcID:  f.proveedor.ID,
		LocationDestID: f.bodegaA.ID,
		ItemIDs:        []int64{a.ID},
	})
	require.NoError(t, err)

	_, err = f.uc.CloseSource(context.Background(), f.almacenero, m.ID, nil)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reject y carrito
// ──────────────────────────────────────────────────────────────────────────────

func TestReject_BorradorQuedaRechazado(t *testing.T) {
	f := newFixture(t)
	a := f.assetAt(f.bodegaA)
	m, err := f.uc.Create(context.Background(), f.almacenero, movement.CreateInput{
		Type:           entity.MovementInternal,
		LocationSrcID:  f.bodegaA.ID,
		LocationDestID: f.bodegaA2.ID,
		ItemIDs:        []int64{a.ID},
	})
	require.NoError(t, err)

	out, err := f.uc.Reject(context.Background(), f.almacenero, m.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementRejected, out.State)
	// Rechazar nunca reubica.
	assert.Equal(t, f.bodegaA.ID, *f.store.Asset(a.ID).LocationID)

	// Terminal: ni cerrar ni re-rechazar.
	_, err = f.uc.Close(context.Background(), f.almacenero, m.ID, nil)
	assert.True(t, domain.IsValidation(err, domain.NotDraft))
	_, err = f.uc.Reject(context.Background(), f.almacenero, m.ID)
	assert.True(t, domain.IsValidation(err, domain.NotDraft))
}

func TestAddItem_UbicacionIncorrecta(t *testing.T) {
	f := newFixture(t)
	m, err := f.uc.Create(context.Background(), f.almacenero, movement.CreateInput{
		Type:           entity.MovementInternal,
		LocationSrcID:  f.bodegaA.ID,
		LocationDestID: f.bodegaA2.ID,
	})
	require.NoError(t, err)

	ajeno := f.assetAt(f.bodegaB)
	err = f.uc.AddItem(context.Background(), f.almacenero, m.ID, ajeno.ID)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, domain.LocationMismatch, ve.Kind)
	assert.Empty(t, f.store.ItemIDs(m.ID))
}

func TestAddItem_Duplicado(t *testing.T) {
	f := newFixture(t)
	a := f.assetAt(f.bodegaA)
	m, err := f.uc.Create(context.Background(), f.almacenero, movement.CreateInput{
		Type:           entity.MovementInternal,
		LocationSrcID:  f.bodegaA.ID,
		LocationDestID: f.bodegaA2.ID,
	})
	require.NoError(t, err)

	require.NoError(t, f.uc.AddItem(context.Background(), f.almacenero, m.ID, a.ID))
	err = f.uc.AddItem(context.Background(), f.almacenero, m.ID, a.ID)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestRemoveItem_NoPresente(t *testing.T) {
	f := newFixture(t)
	a := f.assetAt(f.bodegaA)
	m, err := f.uc.Create(context.Background(), f.almacenero, movement.CreateInput{
		Type:           entity.MovementInternal,
		LocationSrcID:  f.bodegaA.ID,
		LocationDestID: f.bodegaA2.ID,
	})
	require.NoError(t, err)

	err = f.uc.RemoveItem(context.Background(), f.almacenero, m.ID, a.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCarrito_SoloEnBorrador(t *testing.T) {
	f := newFixture(t)
	a := f.assetAt(f.bodegaA)
	otro := f.assetAt(f.bodegaA)
	m, err := f.uc.Create(context.Background(), f.almacenero, movement.CreateInput{
		Type:           entity.MovementInternal,
		LocationSrcID:  f.bodegaA.ID,
		LocationDestID: f.bodegaA2.ID,
		ItemIDs:        []int64{a.ID},
	})
	require.NoError(t, err)
	_, err = f.uc.Close(context.Background(), f.almacenero, m.ID, nil)
	require.NoError(t, err)

	err = f.uc.AddItem(context.Background(), f.almacenero, m.ID, otro.ID)
	assert.True(t, domain.IsValidation(err, domain.NotDraft))
	err = f.uc.RemoveItem(context.Background(), f.almacenero, m.ID, a.ID)
	assert.True(t, domain.IsValidation(err, domain.NotDraft))
}
