package http

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/flota-api/internal/application/dto"
	"github.com/jhoicas/flota-api/internal/application/ports"
	"github.com/jhoicas/flota-api/internal/application/usecase"
	"github.com/jhoicas/flota-api/internal/domain"
)

// Campos del formulario multipart de vehículos.
const (
	formVehicle = "vehicle"
	formPhotos  = "photos"
)

// VehicleHandler CRUD y búsqueda de vehículos, más las consultas públicas.
type VehicleHandler struct {
	uc *usecase.VehicleUseCase
}

func NewVehicleHandler(uc *usecase.VehicleUseCase) *VehicleHandler {
	return &VehicleHandler{uc: uc}
}

// vehicleInput acepta JSON o multipart (campo "vehicle" con el JSON y archivos "photos").
func vehicleInput(c *fiber.Ctx) (dto.VehicleRequest, []ports.Upload, error) {
	var in dto.VehicleRequest
	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		return in, nil, bindJSON(c, &in)
	}

	form, err := c.MultipartForm()
	if err != nil {
		return in, nil, fmt.Errorf("%w: formulario multipart inválido", domain.ErrValidation)
	}
	raw := form.Value[formVehicle]
	if len(raw) == 0 {
		return in, nil, fmt.Errorf("%w: falta el campo %q", domain.ErrValidation, formVehicle)
	}
	if err := json.Unmarshal([]byte(raw[0]), &in); err != nil {
		return in, nil, fmt.Errorf("%w: campo %q no es JSON válido", domain.ErrValidation, formVehicle)
	}
	if err := validateStruct(&in); err != nil {
		return in, nil, err
	}

	uploads := make([]ports.Upload, 0, len(form.File[formPhotos]))
	for _, fh := range form.File[formPhotos] {
		f, err := fh.Open()
		if err != nil {
			return in, nil, fmt.Errorf("abrir foto %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return in, nil, fmt.Errorf("leer foto %s: %w", fh.Filename, err)
		}
		uploads = append(uploads, ports.Upload{Name: fh.Filename, Data: data})
	}
	return in, uploads, nil
}

// Create godoc
// @Summary      Crear vehículo
// @Description  JSON o multipart/form-data con el campo "vehicle" (JSON) y archivos "photos".
// @Tags         vehicles
// @Accept       json,mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        X-Company-ID  header  string              false  "Empresa (solo ADMIN)"
// @Param        body          body    dto.VehicleRequest  true   "Vehículo"
// @Success      201  {object}  dto.VehicleResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/vehicles [post]
func (h *VehicleHandler) Create(c *fiber.Ctx) error {
	in, photos, err := vehicleInput(c)
	if err != nil {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), GetEmail(c), companySelection(c), in, photos)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Actualizar vehículo
// @Description  Las fotos enviadas se agregan a las existentes.
// @Tags         vehicles
// @Accept       json,mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string              true  "ID del vehículo"
// @Param        body  body  dto.VehicleRequest  true  "Vehículo"
// @Success      200  {object}  dto.VehicleResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/vehicles/{id} [put]
func (h *VehicleHandler) Update(c *fiber.Ctx) error {
	in, photos, err := vehicleInput(c)
	if err != nil {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), GetEmail(c), companySelection(c), c.Params("id"), in, photos)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar vehículo
// @Tags         vehicles
// @Security     BearerAuth
// @Param        id  path  string  true  "ID del vehículo"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/vehicles/{id} [delete]
func (h *VehicleHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetEmail(c), companySelection(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RemovePhoto godoc
// @Summary      Quitar una foto del vehículo
// @Tags         vehicles
// @Produce      json
// @Security     BearerAuth
// @Param        id   path   string  true  "ID del vehículo"
// @Param        ref  query  string  true  "Referencia de la foto"
// @Success      200  {object}  dto.VehicleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/vehicles/{id}/photos [delete]
func (h *VehicleHandler) RemovePhoto(c *fiber.Ctx) error {
	ref := strings.TrimSpace(c.Query("ref"))
	if ref == "" {
		return fmt.Errorf("%w: ref es requerido", domain.ErrValidation)
	}
	out, err := h.uc.RemovePhoto(c.UserContext(), GetEmail(c), companySelection(c), c.Params("id"), ref)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener vehículo
// @Tags         vehicles
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "ID del vehículo"
// @Success      200  {object}  dto.VehicleResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/vehicles/{id} [get]
func (h *VehicleHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), GetEmail(c), companySelection(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// GetByPlate godoc
// @Summary      Buscar vehículo por placa en la empresa
// @Tags         vehicles
// @Produce      json
// @Security     BearerAuth
// @Param        plate  path  string  true  "Placa"
// @Success      200  {object}  dto.VehicleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/vehicles/plate/{plate} [get]
func (h *VehicleHandler) GetByPlate(c *fiber.Ctx) error {
	out, err := h.uc.GetByPlate(c.UserContext(), GetEmail(c), companySelection(c), c.Params("plate"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Search godoc
// @Summary      Buscar vehículos
// @Description  Filtros combinados con AND; los textos no distinguen mayúsculas; rangos inclusivos.
// @Tags         vehicles
// @Produce      json
// @Security     BearerAuth
// @Param        plate        query  string  false  "Contiene"
// @Param        model        query  string  false  "Contiene"
// @Param        brand        query  string  false  "Contiene"
// @Param        notes        query  string  false  "Contiene"
// @Param        min_mileage  query  int     false  "Kilometraje mínimo"
// @Param        max_mileage  query  int     false  "Kilometraje máximo"
// @Param        min_price    query  string  false  "Precio mínimo"
// @Param        max_price    query  string  false  "Precio máximo"
// @Param        from         query  string  false  "Registrado desde (YYYY-MM-DD)"
// @Param        to           query  string  false  "Registrado hasta (YYYY-MM-DD)"
// @Param        sort_by      query  string  false  "registrationDate, mileage, model, brand, plate"
// @Param        direction    query  string  false  "ASC o DESC"
// @Param        page         query  int     false  "Página desde 0"
// @Param        size         query  int     false  "Tamaño (máx. 100)"
// @Success      200  {object}  dto.VehicleListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/vehicles/search [get]
func (h *VehicleHandler) Search(c *fiber.Ctx) error {
	criteria, err := vehicleCriteria(c)
	if err != nil {
		return err
	}
	out, err := h.uc.Search(c.UserContext(), GetEmail(c), companySelection(c), criteria)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// ListAll godoc
// @Summary      Listar todos los vehículos de la empresa
// @Tags         vehicles
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  dto.VehicleResponse
// @Router       /api/vehicles [get]
func (h *VehicleHandler) ListAll(c *fiber.Ctx) error {
	out, err := h.uc.ListAll(c.UserContext(), GetEmail(c), companySelection(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// PublicGetByID godoc
// @Summary      Consulta pública de vehículo
// @Tags         public
// @Produce      json
// @Param        id  path  string  true  "ID del vehículo"
// @Success      200  {object}  dto.VehicleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/public/vehicles/{id} [get]
func (h *VehicleHandler) PublicGetByID(c *fiber.Ctx) error {
	out, err := h.uc.PublicGetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// PublicGetByPlate godoc
// @Summary      Consulta pública por placa
// @Tags         public
// @Produce      json
// @Param        plate  path  string  true  "Placa"
// @Success      200  {object}  dto.VehicleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/public/vehicles/plate/{plate} [get]
func (h *VehicleHandler) PublicGetByPlate(c *fiber.Ctx) error {
	out, err := h.uc.PublicGetByPlate(c.UserContext(), c.Params("plate"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}
