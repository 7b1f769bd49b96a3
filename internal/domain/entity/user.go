package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin       = "admin"
	RoleAlmacenista = "almacenista" // opera recepciones y traslados de su departamento
	RoleAuditor     = "auditor"     // solo lectura + verificación de cadenas
)

// User usuario del sistema. DepartmentID define el lado que puede aprobar
// en traslados internos; nil para usuarios sin departamento (admin global).
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string // admin, almacenista, auditor
	DepartmentID *int64
	Status       string // active, inactive, suspended
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
