package reconcile_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Activos-api/internal/application/reconcile"
	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type world struct {
	store *memory.Store
	uc    *reconcile.UseCase
}

func newWorld() *world {
	s := memory.NewStore()
	uc := reconcile.NewUseCase(memory.NewOrders(s), memory.NewAssets(s), memory.NewMovements(s))
	return &world{store: s, uc: uc}
}

func line(templateID, qty, received int64, serials []string, bundled ...entity.BundledLine) *entity.PurchaseOrderLine {
	return &entity.PurchaseOrderLine{
		TemplateID:  templateID,
		Qty:         qty,
		ReceivedQty: received,
		AgreedPrice: decimal.NewFromInt(100),
		SerialNos:   serials,
		Bundled:     bundled,
	}
}

func (w *world) order(lines ...*entity.PurchaseOrderLine) *entity.PurchaseOrder {
	return w.store.AddOrder(&entity.PurchaseOrder{
		Reference:    "OC-1",
		SupplierID:   1,
		State:        entity.OrderOpen,
		CreateUserID: "comprador",
		Lines:        lines,
	})
}

// draftMovement borrador de recepción enlazado a la orden.
func (w *world) draftMovement(orderID int64, assetIDs ...int64) *entity.Movement {
	return w.store.AddMovement(&entity.Movement{
		Reference:       "rx",
		State:           entity.MovementDraft,
		Type:            entity.MovementIn,
		LocationSrcID:   1,
		LocationDestID:  2,
		CreateUserID:    "comprador",
		PurchaseOrderID: &orderID,
	}, assetIDs...)
}

func remainingOf(t *testing.T, w *world, orderID int64) map[reconcile.LineKey]*reconcile.Remaining {
	t.Helper()
	r, err := w.uc.CalcUnmovedItems(context.Background(), orderID)
	require.NoError(t, err)
	return r
}

// ──────────────────────────────────────────────────────────────────────────────
// CalcUnmovedItems
// ──────────────────────────────────────────────────────────────────────────────

func TestCalc_NadaRecibidoNadaPendiente(t *testing.T) {
	w := newWorld()
	o := w.order(line(10, 5, 0, nil))

	remaining := remainingOf(t, w, o.ID)
	assert.Empty(t, remaining, "received_qty=0 no genera pendientes")
}

func TestCalc_RecepcionParcialConSeriales(t *testing.T) {
	w := newWorld()
	// 5 pedidos, 3 recibidos, 2 de ellos con serial.
	o := w.order(line(10, 5, 3, []string{"SN-1", "SN-2"}))

	remaining := remainingOf(t, w, o.ID)
	require.Len(t, remaining, 1)
	r := remaining[reconcile.Direct(10)]
	require.NotNil(t, r)
	assert.Equal(t, int64(1), r.Qty, "3 recibidos - 2 seriales = 1 sin serial")
	assert.Len(t, r.Serials, 2)
}

func TestCalc_DescuentaActivosYaEnlazados(t *testing.T) {
	w := newWorld()
	o := w.order(line(10, 5, 4, []string{"SN-1", "SN-2"}))

	sn1 := "SN-1"
	conSerial := w.store.AddAsset(&entity.Asset{TemplateID: 10, SerialNumber: &sn1, Quantity: 1, Active: true})
	sinSerial := w.store.AddAsset(&entity.Asset{TemplateID: 10, Quantity: 1, Active: true})
	w.draftMovement(o.ID, conSerial.ID, sinSerial.ID)

	remaining := remainingOf(t, w, o.ID)
	r := remaining[reconcile.Direct(10)]
	require.NotNil(t, r)
	assert.Equal(t, int64(1), r.Qty, "2 sin serial esperados - 1 enlazado = 1")
	assert.Len(t, r.Serials, 1)
	assert.Contains(t, r.Serials, "SN-2", "SN-1 ya está enlazado")
}

func TestCalc_Idempotente(t *testing.T) {
	w := newWorld()
	o := w.order(line(10, 5, 3, []string{"SN-1"}), line(20, 2, 2, nil))

	primera := remainingOf(t, w, o.ID)
	segunda := remainingOf(t, w, o.ID)
	assert.Equal(t, primera, segunda, "sin escrituras intermedias el cálculo no cambia")
}

func TestCalc_EmpaquetadosPorUnidadRecibida(t *testing.T) {
	w := newWorld()
	// Cada unidad recibida del template 10 trae 2 sub-ítems del template 30.
	o := w.order(line(10, 3, 2, nil, entity.BundledLine{TemplateID: 30, Qty: 2}))

	remaining := remainingOf(t, w, o.ID)
	require.Len(t, remaining, 2)
	assert.Equal(t, int64(2), remaining[reconcile.Direct(10)].Qty)
	assert.Equal(t, int64(4), remaining[reconcile.BundledKey(30)].Qty, "2 unidades x 2 sub-ítems")
}

func TestCalc_MismaPlantillaDirectaYEmpaquetada(t *testing.T) {
	w := newWorld()
	// El template 30 se pide directo en una línea y viene empaquetado en otra:
	// las dos variantes se acumulan por separado.
	o := w.order(
		line(30, 1, 1, nil),
		line(10, 1, 1, nil, entity.BundledLine{TemplateID: 30, Qty: 3}),
	)

	remaining := remainingOf(t, w, o.ID)
	assert.Equal(t, int64(1), remaining[reconcile.Direct(30)].Qty)
	assert.Equal(t, int64(3), remaining[reconcile.BundledKey(30)].Qty)

	// Un activo empaquetado solo descuenta de la variante empaquetada.
	empaquetado := w.store.AddAsset(&entity.Asset{TemplateID: 30, Quantity: 1, Bundled: true, Active: true})
	w.draftMovement(o.ID, empaquetado.ID)

	remaining = remainingOf(t, w, o.ID)
	assert.Equal(t, int64(1), remaining[reconcile.Direct(30)].Qty)
	assert.Equal(t, int64(2), remaining[reconcile.BundledKey(30)].Qty)
}

func TestCalc_SerialesExcedenRecibido(t *testing.T) {
	w := newWorld()
	o := w.order(line(10, 5, 1, []string{"SN-1", "SN-2"}))

	_, err := w.uc.CalcUnmovedItems(context.Background(), o.ID)
	assert.True(t, domain.IsValidation(err, domain.SerialCountExceedsReceived), "error inesperado: %v", err)
}

func TestCalc_CantidadNegativa(t *testing.T) {
	w := newWorld()
	o := w.order(line(10, 5, 2, nil))
	raro := w.store.AddAsset(&entity.Asset{TemplateID: 10, Quantity: 0, Active: true})
	w.draftMovement(o.ID, raro.ID)

	_, err := w.uc.CalcUnmovedItems(context.Background(), o.ID)
	assert.True(t, domain.IsValidation(err, domain.NegativeQuantity), "error inesperado: %v", err)
}

func TestCalc_SobreEntregaNoGeneraNegativos(t *testing.T) {
	w := newWorld()
	o := w.order(line(10, 5, 2, nil))
	// Tres activos enlazados aunque solo se declararon 2 recibidos.
	for i := 0; i < 3; i++ {
		a := w.store.AddAsset(&entity.Asset{TemplateID: 10, Quantity: 1, Active: true})
		w.draftMovement(o.ID, a.ID)
	}

	remaining := remainingOf(t, w, o.ID)
	assert.Empty(t, remaining, "el residuo se recorta a cero, nunca negativo")
}

func TestCalc_OrdenInexistente(t *testing.T) {
	w := newWorld()
	_, err := w.uc.CalcUnmovedItems(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// FillOutMovement / FillOutBundleMove
// ──────────────────────────────────────────────────────────────────────────────

func TestFillOut_CreaActivosYLosAdjunta(t *testing.T) {
	w := newWorld()
	o := w.order(line(10, 5, 3, []string{"SN-1", "SN-2"}))
	m := w.draftMovement(o.ID)

	remaining := remainingOf(t, w, o.ID)
	bundled, err := w.uc.FillOutMovement(context.Background(), remaining, m.ID)
	require.NoError(t, err)
	assert.Empty(t, bundled)

	items := w.store.ItemIDs(m.ID)
	assert.Len(t, items, 3, "2 con serial + 1 sin serial")

	// Conservación: tras rellenar, la orden no tiene pendientes.
	assert.Empty(t, remainingOf(t, w, o.ID))
}

func TestFillOut_ReutilizaActivoSerialExistente(t *testing.T) {
	w := newWorld()
	o := w.order(line(10, 2, 2, []string{"SN-1", "SN-2"}))
	sn1 := "SN-1"
	existente := w.store.AddAsset(&entity.Asset{TemplateID: 10, SerialNumber: &sn1, Quantity: 1, Active: true})
	m := w.draftMovement(o.ID)

	antes := w.store.AssetCount()
	remaining := remainingOf(t, w, o.ID)
	_, err := w.uc.FillOutMovement(context.Background(), remaining, m.ID)
	require.NoError(t, err)

	assert.Equal(t, antes+1, w.store.AssetCount(), "solo SN-2 se crea; SN-1 se reutiliza")
	assert.Contains(t, w.store.ItemIDs(m.ID), existente.ID)
}

func TestFillOut_DevuelveResiduoEmpaquetado(t *testing.T) {
	w := newWorld()
	o := w.order(line(10, 1, 1, nil, entity.BundledLine{TemplateID: 30, Qty: 2}))
	m := w.draftMovement(o.ID)

	remaining := remainingOf(t, w, o.ID)
	bundled, err := w.uc.FillOutMovement(context.Background(), remaining, m.ID)
	require.NoError(t, err)
	require.Len(t, bundled, 1)
	assert.Equal(t, int64(30), bundled[0].TemplateID)
	assert.Equal(t, int64(2), bundled[0].Qty)

	// El movimiento principal solo lleva el directo.
	assert.Len(t, w.store.ItemIDs(m.ID), 1)

	// El segundo movimiento recibe los empaquetados con la marca puesta.
	bm := w.draftMovement(o.ID)
	require.NoError(t, w.uc.FillOutBundleMove(context.Background(), bundled, bm.ID))
	bitems := w.store.ItemIDs(bm.ID)
	assert.Len(t, bitems, 2)
	for _, id := range bitems {
		assert.True(t, w.store.Asset(id).Bundled, "los sub-ítems nacen marcados como empaquetados")
	}

	// Conservación total tras ambos rellenos.
	assert.Empty(t, remainingOf(t, w, o.ID))
}

func TestFillOut_MovimientoNoBorrador(t *testing.T) {
	w := newWorld()
	o := w.order(line(10, 1, 1, nil))
	m := w.draftMovement(o.ID)
	m.State = entity.MovementDone

	remaining := map[reconcile.LineKey]*reconcile.Remaining{
		reconcile.Direct(10): {Qty: 1},
	}
	_, err := w.uc.FillOutMovement(context.Background(), remaining, m.ID)
	assert.True(t, domain.IsValidation(err, domain.NotDraft))
}

func TestFillOut_SinPendientes(t *testing.T) {
	w := newWorld()
	o := w.order(line(10, 1, 1, nil))
	m := w.draftMovement(o.ID)

	_, err := w.uc.FillOutMovement(context.Background(), map[reconcile.LineKey]*reconcile.Remaining{}, m.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Órdenes: alta y recepciones parciales
// ──────────────────────────────────────────────────────────────────────────────

func TestRegisterReception_AcumuladoYLimites(t *testing.T) {
	w := newWorld()
	o := w.order(line(10, 5, 0, nil))
	l := o.Lines[0]

	out, err := w.uc.RegisterReception(context.Background(), o.ID, l.ID, 3, []string{"SN-1"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), out.ReceivedQty)

	// No puede bajar ni superar lo pedido.
	_, err = w.uc.RegisterReception(context.Background(), o.ID, l.ID, 2, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = w.uc.RegisterReception(context.Background(), o.ID, l.ID, 6, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Seriales por encima de lo recibido.
	_, err = w.uc.RegisterReception(context.Background(), o.ID, l.ID, 3, []string{"a", "b", "c", "d"})
	assert.True(t, domain.IsValidation(err, domain.SerialCountExceedsReceived))
}

func TestCreateOrder_Validaciones(t *testing.T) {
	w := newWorld()
	_, err := w.uc.CreateOrder(context.Background(), "comprador", reconcile.CreateOrderInput{SupplierID: 1}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "orden sin líneas")

	_, err = w.uc.CreateOrder(context.Background(), "comprador", reconcile.CreateOrderInput{SupplierID: 1},
		[]*entity.PurchaseOrderLine{line(10, 0, 0, nil)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "línea con qty<1")

	o, err := w.uc.CreateOrder(context.Background(), "comprador", reconcile.CreateOrderInput{SupplierID: 1},
		[]*entity.PurchaseOrderLine{line(10, 2, 0, nil)})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderOpen, o.State)
	assert.NotEmpty(t, o.Reference)
}
