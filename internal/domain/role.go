package domain

// Capability capacidad tipada que las operaciones protegidas reciben de forma
// explícita. El núcleo nunca formatea cadenas de permisos ni decide roles;
// solo consulta la capacidad contra el Role inyectado.
type Capability string

const (
	CapValidateMovement Capability = "validate_movement"
	CapRejectMovement   Capability = "reject_movement"
	CapReceiveOrder     Capability = "receive_order"
	CapRepairChain      Capability = "repair_chain"
)

// Role vista mínima del proveedor de roles/permisos: departamento activo del
// principal (nil si no tiene) y el conjunto de capacidades concedidas.
type Role struct {
	UserID       string
	DepartmentID *int64
	caps         map[Capability]bool
}

// NewRole construye un Role con las capacidades dadas.
func NewRole(userID string, departmentID *int64, caps ...Capability) *Role {
	m := make(map[Capability]bool, len(caps))
	for _, c := range caps {
		m[c] = true
	}
	return &Role{UserID: userID, DepartmentID: departmentID, caps: m}
}

// Can indica si el rol tiene la capacidad.
func (r *Role) Can(c Capability) bool {
	if r == nil {
		return false
	}
	return r.caps[c]
}

// Require devuelve PermissionError si falta la capacidad.
func (r *Role) Require(c Capability) error {
	if !r.Can(c) {
		uid := ""
		if r != nil {
			uid = r.UserID
		}
		return &PermissionError{UserID: uid, Capability: c}
	}
	return nil
}

// CapsForRole mapea el rol persistido de un usuario a capacidades.
func CapsForRole(role string) []Capability {
	switch role {
	case "admin":
		return []Capability{CapValidateMovement, CapRejectMovement, CapReceiveOrder, CapRepairChain}
	case "almacenista":
		return []Capability{CapValidateMovement, CapRejectMovement, CapReceiveOrder}
	case "auditor":
		return []Capability{CapRepairChain}
	default:
		return nil
	}
}
