package reconcile

import (
	"context"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

// UseCase conciliador de órdenes de compra: calcula qué falta por recibir de
// una orden tolerando entregas parciales e ítems empaquetados, y rellena
// movimientos de recepción en borrador con los activos pendientes.
type UseCase struct {
	orderRepo repository.PurchaseOrderRepository
	assetRepo repository.AssetRepository
	movRepo   repository.MovementRepository
}

// NewUseCase construye el conciliador.
func NewUseCase(
	orderRepo repository.PurchaseOrderRepository,
	assetRepo repository.AssetRepository,
	movRepo repository.MovementRepository,
) *UseCase {
	return &UseCase{orderRepo: orderRepo, assetRepo: assetRepo, movRepo: movRepo}
}

// CalcUnmovedItems calcula, por clave (plantilla, empaquetado), la cantidad y
// los seriales marcados como recibidos en la orden que todavía no aparecen en
// ningún movimiento enlazado a ella. Llamadas repetidas sin escrituras
// intermedias devuelven el mismo resultado.
func (uc *UseCase) CalcUnmovedItems(ctx context.Context, orderID int64) (map[LineKey]*Remaining, error) {
	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}

	// Paso 1: acumular lo marcado como recibido en las líneas.
	expected := make(map[LineKey]*Remaining)
	get := func(k LineKey) *Remaining {
		r := expected[k]
		if r == nil {
			r = &Remaining{Serials: make(map[string]struct{})}
			expected[k] = r
		}
		return r
	}
	for _, line := range order.Lines {
		if line.ReceivedQty == 0 {
			continue
		}
		if int64(len(line.SerialNos)) > line.ReceivedQty {
			return nil, domain.Validation(domain.SerialCountExceedsReceived,
				"la línea %d declara %d seriales pero solo %d unidades recibidas",
				line.ID, len(line.SerialNos), line.ReceivedQty)
		}
		r := get(Direct(line.TemplateID))
		for _, s := range line.SerialNos {
			r.Serials[s] = struct{}{}
		}
		r.Qty += line.ReceivedQty - int64(len(line.SerialNos))

		// Cada unidad recibida de la línea trae su juego de sub-ítems.
		for _, b := range line.Bundled {
			get(BundledKey(b.TemplateID)).Qty += b.Qty * line.ReceivedQty
		}
	}

	// Paso 2: descontar los activos ya enlazados a la orden por cualquiera
	// de sus movimientos, sin importar el estado del movimiento.
	assets, err := uc.assetRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	for _, a := range assets {
		if a.Quantity < 1 {
			ve := domain.Validation(domain.NegativeQuantity,
				"cantidad cero o negativa en el activo #%d", a.ID)
			ve.AssetID = a.ID
			return nil, ve
		}
		// La marca Bundled del activo decide contra qué variante de la
		// plantilla se descuenta; nunca se cruzan.
		direct := expected[Direct(a.TemplateID)]
		bundled := expected[BundledKey(a.TemplateID)]

		switch {
		case a.Bundled && bundled != nil && bundled.Qty > 0:
			bundled.Qty -= min64(a.Quantity, bundled.Qty)
		case !a.Bundled && direct != nil && a.Serial() != "" && hasSerial(direct, a.Serial()):
			delete(direct.Serials, a.Serial())
		case !a.Bundled && direct != nil && direct.Qty > 0:
			direct.Qty -= min64(a.Quantity, direct.Qty)
		default:
			// Activo ajeno a las líneas de esta orden; no es fatal.
			log.Debug().Int64("orden", orderID).Int64("activo", a.ID).
				Int64("plantilla", a.TemplateID).
				Msg("activo del movimiento no corresponde a líneas de la orden")
		}
	}

	// Paso 3: descartar claves sin pendientes.
	for k, r := range expected {
		if r.Empty() {
			delete(expected, k)
		}
	}
	return expected, nil
}

// FillOutMovement crea/adjunta al movimiento los activos pendientes directos:
// un activo por serial (get-or-create) y activos de cantidad 1 por cada unidad
// sin serial. Los residuos empaquetados se devuelven al caller: físicamente
// pasan primero por la ubicación de armado y necesitan un segundo movimiento.
func (uc *UseCase) FillOutMovement(ctx context.Context, remaining map[LineKey]*Remaining, movementID int64) ([]BundledRemainder, error) {
	if len(remaining) == 0 {
		return nil, domain.ErrInvalidInput
	}
	m, err := uc.movRepo.GetByID(ctx, movementID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	if !m.IsDraft() {
		return nil, domain.Validation(domain.NotDraft, "el movimiento %s (id %d) no está en borrador", m.Reference, m.ID)
	}

	var bundled []BundledRemainder
	for _, k := range sortedKeys(remaining) {
		r := remaining[k]
		if k.Bundled {
			bundled = append(bundled, BundledRemainder{TemplateID: k.TemplateID, Qty: r.Qty})
			continue
		}
		for _, s := range sortedSerials(r.Serials) {
			a, _, err := uc.assetRepo.GetOrCreateSerial(ctx, k.TemplateID, s)
			if err != nil {
				return nil, err
			}
			if err := uc.movRepo.AddItem(ctx, movementID, a.ID); err != nil {
				return nil, err
			}
		}
		for i := int64(0); i < r.Qty; i++ {
			a := newUnit(k.TemplateID, false)
			if err := uc.assetRepo.Create(ctx, a); err != nil {
				return nil, err
			}
			if err := uc.movRepo.AddItem(ctx, movementID, a.ID); err != nil {
				return nil, err
			}
		}
	}
	return bundled, nil
}

// FillOutBundleMove crea los activos empaquetados pendientes y los adjunta al
// movimiento hacia la ubicación de armado.
func (uc *UseCase) FillOutBundleMove(ctx context.Context, bundled []BundledRemainder, movementID int64) error {
	if len(bundled) == 0 {
		return domain.ErrInvalidInput
	}
	m, err := uc.movRepo.GetByID(ctx, movementID)
	if err != nil {
		return err
	}
	if m == nil {
		return domain.ErrNotFound
	}
	if !m.IsDraft() {
		return domain.Validation(domain.NotDraft, "el movimiento %s (id %d) no está en borrador", m.Reference, m.ID)
	}
	for _, b := range bundled {
		for i := int64(0); i < b.Qty; i++ {
			a := newUnit(b.TemplateID, true)
			if err := uc.assetRepo.Create(ctx, a); err != nil {
				return err
			}
			if err := uc.movRepo.AddItem(ctx, movementID, a.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

// newUnit activo nuevo de cantidad 1, todavía sin ubicación: la toma cuando
// el movimiento receptor se cierre.
func newUnit(templateID int64, bundled bool) *entity.Asset {
	return &entity.Asset{TemplateID: templateID, Quantity: 1, Bundled: bundled, Active: true}
}

func hasSerial(r *Remaining, s string) bool {
	_, ok := r.Serials[s]
	return ok
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// sortedKeys ordena las claves para que el relleno sea determinista.
func sortedKeys(m map[LineKey]*Remaining) []LineKey {
	keys := make([]LineKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].TemplateID != keys[j].TemplateID {
			return keys[i].TemplateID < keys[j].TemplateID
		}
		return !keys[i].Bundled && keys[j].Bundled
	})
	return keys
}

func sortedSerials(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
