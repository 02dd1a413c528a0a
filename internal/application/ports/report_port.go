package ports

import (
	"time"

	"github.com/jhoicas/flota-api/internal/domain/entity"
)

// FleetReportGenerator genera la representación imprimible (PDF) del resumen de flota.
type FleetReportGenerator interface {
	GenerateFleetReport(company *entity.Company, stats *entity.FleetStats, generatedAt time.Time) ([]byte, error)
}
