package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Activos-api/internal/domain/entity"
)

// MovementRepository puerto de persistencia para movimientos.
type MovementRepository interface {
	Create(ctx context.Context, m *entity.Movement) error
	GetByID(ctx context.Context, id int64) (*entity.Movement, error)

	// GetForUpdate bloquea la fila del movimiento (SELECT FOR UPDATE);
	// serializa cierres concurrentes y la doble aprobación.
	GetForUpdate(ctx context.Context, id int64) (*entity.Movement, error)

	Update(ctx context.Context, m *entity.Movement) error

	AddItem(ctx context.Context, movementID, assetID int64) error
	RemoveItem(ctx context.Context, movementID, assetID int64) error
	HasItem(ctx context.Context, movementID, assetID int64) (bool, error)
	CountItems(ctx context.Context, movementID int64) (int, error)

	// ListDoneByAsset devuelve los movimientos 'done' que contienen el
	// activo, ordenados por (date_act, id).
	ListDoneByAsset(ctx context.Context, assetID int64) ([]*entity.Movement, error)

	// UpdateDateAct reubica temporalmente un movimiento (reparación del auditor).
	UpdateDateAct(ctx context.Context, movementID int64, dateAct time.Time) error
}
