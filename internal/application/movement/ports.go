package movement

import (
	"context"

	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad del motor de movimientos:
// la reubicación y el cambio de estado se confirman juntos o no se confirman.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		assetRepo repository.AssetRepository,
		locRepo repository.LocationRepository,
		chkRepo repository.CheckpointRepository,
	) error) error
}

// RoleProvider resuelve el rol efectivo de un principal: departamento activo
// (nil si no tiene) y capacidades. El núcleo nunca implementa autorización;
// solo consulta este puerto antes de tocar estado.
type RoleProvider interface {
	RoleOf(ctx context.Context, userID string) (*domain.Role, error)
}
