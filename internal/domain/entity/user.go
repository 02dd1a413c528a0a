package entity

import (
	"slices"
	"time"
)

// User representa un usuario del sistema. Tiene exactamente una empresa principal;
// las secundarias solo suman acceso.
type User struct {
	ID                  string
	Email               string
	PasswordHash        string // bcrypt, nunca texto plano
	Name                string
	Role                Role
	CompanyID           string   // empresa principal
	SecondaryCompanyIDs []string // acceso adicional (admins multiempresa)
	Active              bool
	PhotoRef            string
	EmailNotifications  bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Clone devuelve una copia independiente (incluye el slice de empresas secundarias).
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	cp := *u
	cp.SecondaryCompanyIDs = slices.Clone(u.SecondaryCompanyIDs)
	return &cp
}

// BelongsTo indica si el usuario tiene acceso a la empresa (principal o secundaria).
func (u *User) BelongsTo(companyID string) bool {
	return u.CompanyID == companyID || slices.Contains(u.SecondaryCompanyIDs, companyID)
}

// CompanyIDs empresa principal seguida de las secundarias, sin duplicados.
func (u *User) CompanyIDs() []string {
	ids := []string{u.CompanyID}
	for _, id := range u.SecondaryCompanyIDs {
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	return ids
}

// AddSecondaryCompany agrega una empresa secundaria si no estaba.
func (u *User) AddSecondaryCompany(companyID string) {
	if companyID == "" || companyID == u.CompanyID || slices.Contains(u.SecondaryCompanyIDs, companyID) {
		return
	}
	u.SecondaryCompanyIDs = append(u.SecondaryCompanyIDs, companyID)
}

// IsActiveAdmin cuenta para la regla "siempre existe al menos un ADMIN activo".
func (u *User) IsActiveAdmin() bool {
	return u.Active && u.Role == RoleAdmin
}
