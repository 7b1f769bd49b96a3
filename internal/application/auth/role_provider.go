package auth

import (
	"context"

	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

// RoleProvider resuelve el rol efectivo de un principal a partir de la tabla
// de usuarios: departamento activo y capacidades derivadas del rol persistido.
// Implementa el puerto movement.RoleProvider.
type RoleProvider struct {
	userRepo repository.UserRepository
}

// NewRoleProvider construye el proveedor de roles.
func NewRoleProvider(userRepo repository.UserRepository) *RoleProvider {
	return &RoleProvider{userRepo: userRepo}
}

// RoleOf devuelve el Role del usuario o ErrUserNotFound.
func (p *RoleProvider) RoleOf(ctx context.Context, userID string) (*domain.Role, error) {
	u, err := p.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil || u.Status != "active" {
		return nil, domain.ErrUserNotFound
	}
	return domain.NewRole(u.ID, u.DepartmentID, domain.CapsForRole(u.Role)...), nil
}
