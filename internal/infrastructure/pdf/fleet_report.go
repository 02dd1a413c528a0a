// Package pdf genera el reporte imprimible de flota por empresa.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Empresa + NIT        │  REPORTE DE FLOTA + Fecha    │
//	│  Dirección / Tel / Email                                     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: Vehículos | Kilometraje total | Promedio           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Marca | Vehículos | %                                │
//	│  TABLA: Mes de registro | Vehículos                          │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strconv"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/flota-api/internal/application/ports"
	"github.com/jhoicas/flota-api/internal/domain/entity"
)

var _ ports.FleetReportGenerator = (*MarotoFleetReport)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorStripe  = &props.Color{Red: 235, Green: 241, Blue: 247}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoFleetReport implementa ports.FleetReportGenerator con Maroto v2.
type MarotoFleetReport struct{}

func NewMarotoFleetReport() *MarotoFleetReport { return &MarotoFleetReport{} }

// GenerateFleetReport genera el PDF y devuelve sus bytes.
func (g *MarotoFleetReport) GenerateFleetReport(company *entity.Company, stats *entity.FleetStats, generatedAt time.Time) ([]byte, error) {
	if company == nil || stats == nil {
		return nil, fmt.Errorf("pdf: empresa y estadísticas son obligatorias")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte de flota", true).
		WithAuthor(company.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(company, generatedAt))
	m.AddRows(contactRow(company))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(stats))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(sectionTitle("VEHÍCULOS POR MARCA"))
	m.AddRows(tableHeader([]string{"Marca", "Vehículos", "%"}, []int{6, 3, 3}))
	for i, b := range stats.ByBrand {
		m.AddRows(tableRow(i, []string{b.Brand, strconv.Itoa(b.Count), percent(b.Count, stats.Total)}, []int{6, 3, 3}))
	}
	if len(stats.ByBrand) == 0 {
		m.AddRows(emptyRow())
	}

	m.AddRows(line.NewRow(4))
	m.AddRows(sectionTitle("REGISTROS POR MES"))
	m.AddRows(tableHeader([]string{"Mes", "Vehículos"}, []int{6, 6}))
	for i, mc := range stats.ByMonth {
		m.AddRows(tableRow(i, []string{mc.Month, strconv.Itoa(mc.Count)}, []int{6, 6}))
	}
	if len(stats.ByMonth) == 0 {
		m.AddRows(emptyRow())
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(company *entity.Company, generatedAt time.Time) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(company.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("NIT: "+nonEmpty(company.TaxID, "-"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("REPORTE DE FLOTA", props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New("Generado: "+generatedAt.UTC().Format("02/01/2006 15:04")+" UTC", props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

func contactRow(company *entity.Company) core.Row {
	return row.New(8).Add(
		col.New(12).Add(
			text.New(fmt.Sprintf("Dirección: %s   |   Tel: %s   |   Email: %s",
				nonEmpty(company.Address, "-"),
				nonEmpty(company.Phone, "-"),
				nonEmpty(company.Email, "-"),
			), props.Text{Size: 8, Top: 1, Color: colorGray}),
		),
	)
}

// summaryRow: tres indicadores en columnas iguales.
func summaryRow(stats *entity.FleetStats) core.Row {
	avg := int64(0)
	if stats.Total > 0 {
		avg = stats.TotalMileage / int64(stats.Total)
	}
	kpi := func(label, value string) core.Col {
		return col.New(4).Add(
			text.New(label, props.Text{Size: 8, Align: align.Center, Color: colorGray, Top: 2}),
			text.New(value, props.Text{Style: fontstyle.Bold, Size: 14, Align: align.Center, Color: colorPrimary, Top: 8}),
		)
	}
	return row.New(20).Add(
		kpi("Vehículos", formatThousands(int64(stats.Total))),
		kpi("Kilometraje total", formatThousands(stats.TotalMileage)+" km"),
		kpi("Kilometraje promedio", formatThousands(avg)+" km"),
	)
}

func sectionTitle(s string) core.Row {
	return row.New(7).Add(col.New(12).Add(
		text.New(s, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2}),
	))
}

func tableHeader(labels []string, sizes []int) core.Row {
	cols := make([]core.Col, len(labels))
	for i, l := range labels {
		cols[i] = col.New(sizes[i]).Add(text.New(l, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: cellAlign(i), Top: 1, Left: 1, Right: 1,
		}))
	}
	return row.New(6).Add(cols...)
}

// tableRow alterna el fondo de las filas.
func tableRow(i int, values []string, sizes []int) core.Row {
	cols := make([]core.Col, len(values))
	for j, v := range values {
		cols[j] = col.New(sizes[j]).Add(text.New(v, props.Text{
			Size: 8, Align: cellAlign(j), Top: 1, Left: 1, Right: 1,
		}))
	}
	r := row.New(6).Add(cols...)
	if i%2 == 1 {
		r = r.WithStyle(&props.Cell{BackgroundColor: colorStripe})
	}
	return r
}

func emptyRow() core.Row {
	return row.New(6).Add(col.New(12).Add(
		text.New("Sin registros", props.Text{Size: 8, Color: colorGray, Top: 1, Left: 1}),
	))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func cellAlign(i int) align.Type {
	if i == 0 {
		return align.Left
	}
	return align.Right
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func percent(n, total int) string {
	if total == 0 {
		return "0%"
	}
	return strconv.FormatFloat(float64(n)*100/float64(total), 'f', 1, 64) + "%"
}

// formatThousands inserta puntos de miles. Ej: 1000000 → "1.000.000"
func formatThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := false
	if n < 0 {
		neg = true
		s = s[1:]
	}
	l := len(s)
	buf := make([]byte, 0, l+l/3+1)
	if neg {
		buf = append(buf, '-')
	}
	for i, c := range []byte(s) {
		if i > 0 && (l-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
