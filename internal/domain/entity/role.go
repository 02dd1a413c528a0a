package entity

import "strings"

// Role rol de un usuario. El conjunto de capacidades de cada rol es fijo.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleOperator Role = "OPERADOR"
	RoleViewer   Role = "VISUALIZADOR"
)

// Capabilities permisos derivados de un rol.
type Capabilities struct {
	CanCreate          bool
	CanEdit            bool
	CanDelete          bool
	CanManageUsers     bool
	CanManageCompanies bool
}

var roleCapabilities = map[Role]Capabilities{
	RoleAdmin: {
		CanCreate:          true,
		CanEdit:            true,
		CanDelete:          true,
		CanManageUsers:     true,
		CanManageCompanies: true,
	},
	RoleOperator: {
		CanCreate: true,
		CanEdit:   true,
	},
	RoleViewer: {},
}

// Capabilities devuelve el conjunto de permisos del rol. Un rol desconocido no tiene permisos.
func (r Role) Capabilities() Capabilities {
	return roleCapabilities[r]
}

// Valid indica si el rol es uno de los conocidos.
func (r Role) Valid() bool {
	_, ok := roleCapabilities[r]
	return ok
}

// ParseRole normaliza el texto recibido (acepta OPERATOR y VIEWER como alias).
func ParseRole(s string) (Role, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ADMIN":
		return RoleAdmin, true
	case "OPERADOR", "OPERATOR":
		return RoleOperator, true
	case "VISUALIZADOR", "VIEWER":
		return RoleViewer, true
	}
	return "", false
}
