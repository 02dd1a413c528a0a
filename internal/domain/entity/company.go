package entity

import "time"

// Company representa una empresa/tenant: unidad de aislamiento de datos.
type Company struct {
	ID        string
	Name      string // único en todo el sistema
	TaxID     string // CNPJ / NIT
	Address   string
	Phone     string
	Email     string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone devuelve una copia independiente.
func (c *Company) Clone() *Company {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

// CompanyDependents cuenta lo que impide el borrado físico de una empresa.
type CompanyDependents struct {
	Vehicles     int
	PrimaryUsers int
}

// Blocking indica si hay dependientes.
func (d CompanyDependents) Blocking() bool {
	return d.Vehicles > 0 || d.PrimaryUsers > 0
}
