package audit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/flota-api/internal/application/audit"
	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/internal/infrastructure/memory"
)

// failingRepo simula una base de datos que rechaza las inserciones.
type failingRepo struct{}

func (failingRepo) Append(context.Context, *entity.AuditEntry) error {
	return errors.New("conexión cerrada")
}

func (failingRepo) ListByEntity(context.Context, entity.EntityKind, string, string) ([]*entity.AuditEntry, error) {
	return nil, nil
}

func (failingRepo) ListByCompany(context.Context, string, *time.Time, *time.Time) ([]*entity.AuditEntry, error) {
	return nil, nil
}

type snapshotDTO struct {
	Plate   string `json:"plate"`
	Mileage int    `json:"mileage"`
}

func TestRecorder_GuardaSnapshotsJSON(t *testing.T) {
	ctx := context.Background()
	repos := memory.New().Repositories()
	rec := audit.NewRecorder(repos.Audit, zerolog.Nop(), nil)

	rec.Record(ctx, audit.Entry{
		Action:     entity.AuditUpdate,
		Kind:       entity.KindVehicle,
		EntityID:   "v1",
		ActorEmail: "ana@andina.co",
		CompanyID:  "c1",
		Before:     snapshotDTO{Plate: "ABC123", Mileage: 10},
		After:      snapshotDTO{Plate: "ABC123", Mileage: 20},
		Note:       "vehículo actualizado",
	})

	list, err := repos.Audit.ListByEntity(ctx, entity.KindVehicle, "v1", "c1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	e := list[0]
	assert.Equal(t, `{"plate":"ABC123","mileage":10}`, e.Before)
	assert.Equal(t, `{"plate":"ABC123","mileage":20}`, e.After)
	require.NotNil(t, e.CompanyID)
	assert.Equal(t, "c1", *e.CompanyID)
	assert.False(t, e.CreatedAt.IsZero())
}

func TestRecorder_SinEmpresaNiSnapshots(t *testing.T) {
	ctx := context.Background()
	repos := memory.New().Repositories()
	rec := audit.NewRecorder(repos.Audit, zerolog.Nop(), nil)

	rec.Record(ctx, audit.Entry{Action: entity.AuditDelete, Kind: entity.KindUser, EntityID: "u1", ActorEmail: "x@y.co"})

	list, err := repos.Audit.ListByEntity(ctx, entity.KindUser, "u1", "")
	require.NoError(t, err)
	assert.Empty(t, list, "una entrada sin empresa no aparece en consultas por empresa")
}

func TestRecorder_FallosSeDescartanYSeCuentan(t *testing.T) {
	failures := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_audit_failures_total"})
	rec := audit.NewRecorder(failingRepo{}, zerolog.Nop(), failures)

	assert.NotPanics(t, func() {
		rec.Record(context.Background(), audit.Entry{Action: entity.AuditCreate, Kind: entity.KindCompany, EntityID: "c1"})
	})
	// Un snapshot no serializable también se descarta.
	rec.Record(context.Background(), audit.Entry{Action: entity.AuditCreate, Kind: entity.KindCompany, EntityID: "c2", After: make(chan int)})

	assert.Equal(t, 2.0, testutil.ToFloat64(failures))
}

func TestRecorder_IgnoraCancelacionDelRequest(t *testing.T) {
	repos := memory.New().Repositories()
	rec := audit.NewRecorder(repos.Audit, zerolog.Nop(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec.Record(ctx, audit.Entry{Action: entity.AuditCreate, Kind: entity.KindCompany, EntityID: "c1", CompanyID: "c1"})

	list, err := repos.Audit.ListByCompany(context.Background(), "c1", nil, nil)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
