package search

import (
	"time"

	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Nombres de las claves de ordenamiento expuestas en la API.
const (
	SortRegistrationDate = "registrationDate"
	SortMileage          = "mileage"
	SortModel            = "model"
	SortBrand            = "brand"
	SortPlate            = "plate"
	SortName             = "name"
	SortTaxID            = "taxId"
	SortEmail            = "email"
)

// Las columnas corresponden al esquema de migrations/.
var (
	VehicleSchema = NewSchema(
		func(v *entity.Vehicle) string { return v.ID }, "id",
		OrderedKey(SortRegistrationDate, "created_at", func(v *entity.Vehicle) int64 { return v.CreatedAt.UnixMicro() }),
		OrderedKey(SortMileage, "mileage", func(v *entity.Vehicle) int { return v.Mileage }),
		TextKey(SortModel, "model", func(v *entity.Vehicle) string { return v.Model }),
		TextKey(SortBrand, "brand", func(v *entity.Vehicle) string { return v.Brand }),
		TextKey(SortPlate, "plate", func(v *entity.Vehicle) string { return v.Plate }),
	)

	CompanySchema = NewSchema(
		func(c *entity.Company) string { return c.ID }, "id",
		OrderedKey(SortRegistrationDate, "created_at", func(c *entity.Company) int64 { return c.CreatedAt.UnixMicro() }),
		TextKey(SortName, "name", func(c *entity.Company) string { return c.Name }),
		TextKey(SortTaxID, "tax_id", func(c *entity.Company) string { return c.TaxID }),
	)

	UserSchema = NewSchema(
		func(u *entity.User) string { return u.ID }, "id",
		OrderedKey(SortRegistrationDate, "created_at", func(u *entity.User) int64 { return u.CreatedAt.UnixMicro() }),
		TextKey(SortName, "name", func(u *entity.User) string { return u.Name }),
		TextKey(SortEmail, "email", func(u *entity.User) string { return u.Email }),
	)
)

// Sorting parámetros comunes de orden y página.
type Sorting struct {
	SortBy    string
	Direction Direction
	Page      int
	Size      int
}

// VehicleCriteria filtros de búsqueda de vehículos.
type VehicleCriteria struct {
	Plate      string
	Model      string
	Brand      string
	Notes      string
	MinMileage *int
	MaxMileage *int
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	From       *time.Time
	To         *time.Time
	Sorting
}

// Query traduce los criterios a una consulta del motor.
func (c VehicleCriteria) Query() Query[*entity.Vehicle] {
	return VehicleSchema.Query(c.SortBy, c.Direction, c.Page, c.Size,
		Contains[*entity.Vehicle]{Column: "plate", Value: c.Plate, Field: func(v *entity.Vehicle) string { return v.Plate }},
		Contains[*entity.Vehicle]{Column: "model", Value: c.Model, Field: func(v *entity.Vehicle) string { return v.Model }},
		Contains[*entity.Vehicle]{Column: "brand", Value: c.Brand, Field: func(v *entity.Vehicle) string { return v.Brand }},
		Contains[*entity.Vehicle]{Column: "notes", Value: c.Notes, Field: func(v *entity.Vehicle) string { return v.Notes }},
		IntRange[*entity.Vehicle]{Column: "mileage", Min: c.MinMileage, Max: c.MaxMileage,
			Field: func(v *entity.Vehicle) (int, bool) { return v.Mileage, true }},
		DecimalRange[*entity.Vehicle]{Column: "price", Min: c.MinPrice, Max: c.MaxPrice,
			Field: func(v *entity.Vehicle) *decimal.Decimal { return v.Price }},
		TimeRange[*entity.Vehicle]{Column: "created_at", From: c.From, To: c.To,
			Field: func(v *entity.Vehicle) time.Time { return v.CreatedAt }},
	)
}

// CompanyCriteria filtros de búsqueda de empresas.
type CompanyCriteria struct {
	Name   string
	TaxID  string
	Email  string
	Active *bool
	From   *time.Time
	To     *time.Time
	Sorting
}

// Query traduce los criterios a una consulta del motor.
func (c CompanyCriteria) Query() Query[*entity.Company] {
	return CompanySchema.Query(c.SortBy, c.Direction, c.Page, c.Size,
		Contains[*entity.Company]{Column: "name", Value: c.Name, Field: func(e *entity.Company) string { return e.Name }},
		Contains[*entity.Company]{Column: "tax_id", Value: c.TaxID, Field: func(e *entity.Company) string { return e.TaxID }},
		Contains[*entity.Company]{Column: "email", Value: c.Email, Field: func(e *entity.Company) string { return e.Email }},
		Equal[*entity.Company, bool]{Column: "active", Value: c.Active, Field: func(e *entity.Company) bool { return e.Active }},
		TimeRange[*entity.Company]{Column: "created_at", From: c.From, To: c.To,
			Field: func(e *entity.Company) time.Time { return e.CreatedAt }},
	)
}

// UserCriteria filtros de búsqueda de usuarios.
type UserCriteria struct {
	Name   string
	Email  string
	Role   *string
	Active *bool
	From   *time.Time
	To     *time.Time
	Sorting
}

// Query traduce los criterios a una consulta del motor.
func (c UserCriteria) Query() Query[*entity.User] {
	return UserSchema.Query(c.SortBy, c.Direction, c.Page, c.Size,
		Contains[*entity.User]{Column: "name", Value: c.Name, Field: func(u *entity.User) string { return u.Name }},
		Contains[*entity.User]{Column: "email", Value: c.Email, Field: func(u *entity.User) string { return u.Email }},
		Equal[*entity.User, string]{Column: "role", Value: c.Role, Field: func(u *entity.User) string { return string(u.Role) }},
		Equal[*entity.User, bool]{Column: "active", Value: c.Active, Field: func(u *entity.User) bool { return u.Active }},
		TimeRange[*entity.User]{Column: "created_at", From: c.From, To: c.To,
			Field: func(u *entity.User) time.Time { return u.CreatedAt }},
	)
}
