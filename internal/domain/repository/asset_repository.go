package repository

import (
	"context"

	"github.com/jhoicas/Activos-api/internal/domain/entity"
)

// AssetRepository puerto de persistencia del registro de activos (Registry).
type AssetRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Asset, error)
	Create(ctx context.Context, a *entity.Asset) error
	Update(ctx context.Context, a *entity.Asset) error

	// GetOrCreateSerial busca el activo (template, serial) o lo crea con
	// cantidad 1 y sin ubicación. Devuelve created=true si fue creado.
	GetOrCreateSerial(ctx context.Context, templateID int64, serial string) (a *entity.Asset, created bool, err error)

	// Relocate fija la ubicación de todos los ids a destID en una sola
	// operación todo-o-nada, limpiando cualquier paquete padre.
	Relocate(ctx context.Context, ids []int64, destID int64) error

	// ListByMovement devuelve los activos de un movimiento, bloqueados
	// FOR UPDATE cuando lock es true.
	ListByMovement(ctx context.Context, movementID int64, lock bool) ([]*entity.Asset, error)

	// ListByOrder devuelve los activos enlazados a una orden a través de
	// cualquiera de sus movimientos, sin importar el estado del movimiento.
	ListByOrder(ctx context.Context, orderID int64) ([]*entity.Asset, error)

	// ListIDs pagina ids de activos para el verificador de cadenas.
	ListIDs(ctx context.Context, offset, limit int) ([]int64, error)

	// Huérfanos para los barridos del verificador.
	ListUnmovedWithoutLocation(ctx context.Context) ([]*entity.Asset, error)
	ListUnmovedWithLocation(ctx context.Context) ([]*entity.Asset, error)
	Delete(ctx context.Context, id int64) error
}
