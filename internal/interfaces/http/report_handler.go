package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/flota-api/internal/application/usecase"
)

// ReportHandler reportes de flota.
type ReportHandler struct {
	uc *usecase.ReportUseCase
}

func NewReportHandler(uc *usecase.ReportUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// FleetSummary godoc
// @Summary      Resumen de la flota
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.FleetReportResponse
// @Router       /api/reports/fleet [get]
func (h *ReportHandler) FleetSummary(c *fiber.Ctx) error {
	out, err := h.uc.FleetSummary(c.UserContext(), GetEmail(c), companySelection(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// FleetPDF godoc
// @Summary      Resumen de la flota en PDF
// @Tags         reports
// @Produce      application/pdf
// @Security     BearerAuth
// @Success      200  {file}  binary
// @Router       /api/reports/fleet/pdf [get]
func (h *ReportHandler) FleetPDF(c *fiber.Ctx) error {
	data, filename, err := h.uc.FleetPDF(c.UserContext(), GetEmail(c), companySelection(c))
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(data)
}
