package http

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/flota-api/internal/domain"
	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/internal/domain/search"
)

const dateLayout = "2006-01-02"

// sortingParams lee sort_by, direction, page (desde 0) y size. Los valores fuera de rango los
// normaliza el motor de búsqueda.
func sortingParams(c *fiber.Ctx) (search.Sorting, error) {
	page, err := intParam(c, "page")
	if err != nil {
		return search.Sorting{}, err
	}
	size, err := intParam(c, "size")
	if err != nil {
		return search.Sorting{}, err
	}
	s := search.Sorting{
		SortBy:    c.Query("sort_by"),
		Direction: search.ParseDirection(c.Query("direction")),
	}
	if page != nil {
		s.Page = *page
	}
	if size != nil {
		s.Size = *size
	}
	return s, nil
}

func intParam(c *fiber.Ctx, name string) (*int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s debe ser un entero", domain.ErrValidation, name)
	}
	return &n, nil
}

func mileageParam(c *fiber.Ctx, name string) (*int, error) {
	n, err := intParam(c, name)
	if err != nil || n == nil {
		return n, err
	}
	if *n < math.MinInt32 || *n > entity.MaxMileage {
		return nil, fmt.Errorf("%w: %s fuera de rango", domain.ErrValidation, name)
	}
	return n, nil
}

func decimalParam(c *fiber.Ctx, name string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s debe ser un número", domain.ErrValidation, name)
	}
	return &d, nil
}

func boolParam(c *fiber.Ctx, name string) (*bool, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s debe ser true o false", domain.ErrValidation, name)
	}
	return &b, nil
}

// timeParam acepta RFC 3339 o una fecha sola (UTC). Con endOfDay una fecha sola cubre el día
// completo, de modo que to=2026-01-31 incluye todo el 31.
func timeParam(c *fiber.Ctx, name string, endOfDay bool) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: %s debe ser YYYY-MM-DD o RFC 3339", domain.ErrValidation, name)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Microsecond)
	}
	return &t, nil
}

func dateRange(c *fiber.Ctx) (from, to *time.Time, err error) {
	if from, err = timeParam(c, "from", false); err != nil {
		return nil, nil, err
	}
	if to, err = timeParam(c, "to", true); err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

func vehicleCriteria(c *fiber.Ctx) (search.VehicleCriteria, error) {
	var (
		cr  search.VehicleCriteria
		err error
	)
	if cr.Sorting, err = sortingParams(c); err != nil {
		return cr, err
	}
	cr.Plate = c.Query("plate")
	cr.Model = c.Query("model")
	cr.Brand = c.Query("brand")
	cr.Notes = c.Query("notes")
	if cr.MinMileage, err = mileageParam(c, "min_mileage"); err != nil {
		return cr, err
	}
	if cr.MaxMileage, err = mileageParam(c, "max_mileage"); err != nil {
		return cr, err
	}
	if cr.MinPrice, err = decimalParam(c, "min_price"); err != nil {
		return cr, err
	}
	if cr.MaxPrice, err = decimalParam(c, "max_price"); err != nil {
		return cr, err
	}
	cr.From, cr.To, err = dateRange(c)
	return cr, err
}

func companyCriteria(c *fiber.Ctx) (search.CompanyCriteria, error) {
	var (
		cr  search.CompanyCriteria
		err error
	)
	if cr.Sorting, err = sortingParams(c); err != nil {
		return cr, err
	}
	cr.Name = c.Query("name")
	cr.TaxID = c.Query("tax_id")
	cr.Email = c.Query("email")
	if cr.Active, err = boolParam(c, "active"); err != nil {
		return cr, err
	}
	cr.From, cr.To, err = dateRange(c)
	return cr, err
}

func userCriteria(c *fiber.Ctx) (search.UserCriteria, error) {
	var (
		cr  search.UserCriteria
		err error
	)
	if cr.Sorting, err = sortingParams(c); err != nil {
		return cr, err
	}
	cr.Name = c.Query("name")
	cr.Email = c.Query("email")
	if raw := strings.TrimSpace(c.Query("role")); raw != "" {
		role, ok := entity.ParseRole(raw)
		if !ok {
			return cr, fmt.Errorf("%w: rol %q desconocido", domain.ErrValidation, raw)
		}
		name := string(role)
		cr.Role = &name
	}
	if cr.Active, err = boolParam(c, "active"); err != nil {
		return cr, err
	}
	cr.From, cr.To, err = dateRange(c)
	return cr, err
}
