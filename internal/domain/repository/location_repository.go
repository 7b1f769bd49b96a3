package repository

import (
	"context"

	"github.com/jhoicas/Activos-api/internal/domain/entity"
)

// LocationRepository puerto de persistencia para ubicaciones.
type LocationRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Location, error)
	Create(ctx context.Context, l *entity.Location) error
	List(ctx context.Context, limit, offset int) ([]*entity.Location, error)

	// FindBundling devuelve la ubicación neutra de armado de paquetes
	// (usage=bundle, sin departamento), o nil si no está configurada.
	FindBundling(ctx context.Context) (*entity.Location, error)
}

// DepartmentRepository puerto de lectura de departamentos.
type DepartmentRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Department, error)
}

// CheckpointRepository puerto de lectura de cortes de inventario.
type CheckpointRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Checkpoint, error)

	// LastValidated devuelve el último corte validado de la ubicación,
	// o nil si nunca se ha hecho inventario allí.
	LastValidated(ctx context.Context, locationID int64) (*entity.Checkpoint, error)
}
