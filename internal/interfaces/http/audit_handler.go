package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/flota-api/internal/application/usecase"
)

// AuditHandler consulta del trail de auditoría de la empresa.
type AuditHandler struct {
	uc *usecase.AuditUseCase
}

func NewAuditHandler(uc *usecase.AuditUseCase) *AuditHandler {
	return &AuditHandler{uc: uc}
}

// ByEntity godoc
// @Summary      Historial de una entidad
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Param        kind  path  string  true  "VEHICLE, COMPANY o USER"
// @Param        id    path  string  true  "ID de la entidad"
// @Success      200   {array}  dto.AuditEntryResponse
// @Router       /api/audit/entity/{kind}/{id} [get]
func (h *AuditHandler) ByEntity(c *fiber.Ctx) error {
	out, err := h.uc.ByEntity(c.UserContext(), GetEmail(c), companySelection(c), c.Params("kind"), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// ByCompany godoc
// @Summary      Historial de la empresa
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Param        from  query  string  false  "Desde (YYYY-MM-DD o RFC3339)"
// @Param        to    query  string  false  "Hasta (YYYY-MM-DD o RFC3339)"
// @Success      200   {array}  dto.AuditEntryResponse
// @Router       /api/audit/company [get]
func (h *AuditHandler) ByCompany(c *fiber.Ctx) error {
	from, to, err := dateRange(c)
	if err != nil {
		return err
	}
	out, err := h.uc.ByCompany(c.UserContext(), GetEmail(c), companySelection(c), from, to)
	if err != nil {
		return err
	}
	return c.JSON(out)
}
