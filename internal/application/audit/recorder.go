package audit

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/jhoicas/flota-api/internal/domain/entity"
	"github.com/jhoicas/flota-api/internal/domain/repository"
)

// Entry datos de una mutación a auditar. Before/After son snapshots serializables
// (nil en CREATE y DELETE respectivamente).
type Entry struct {
	Action     entity.AuditAction
	Kind       entity.EntityKind
	EntityID   string
	ActorEmail string
	CompanyID  string
	Before     any
	After      any
	Note       string
}

// Recorder persiste el trail de auditoría. Es best-effort: nunca devuelve error al caller.
type Recorder struct {
	repo     repository.AuditRepository
	log      zerolog.Logger
	failures prometheus.Counter
}

// NewRecorder construye el recorder. failures puede ser nil.
func NewRecorder(repo repository.AuditRepository, log zerolog.Logger, failures prometheus.Counter) *Recorder {
	return &Recorder{repo: repo, log: log, failures: failures}
}

// Record serializa los snapshots y guarda la entrada. Los fallos se registran en el log y se descartan;
// se invoca después del commit, así que la mutación ya es definitiva.
func (r *Recorder) Record(ctx context.Context, e Entry) {
	before, err := snapshot(e.Before)
	if err != nil {
		r.fail(err, e, "serializar estado anterior")
		return
	}
	after, err := snapshot(e.After)
	if err != nil {
		r.fail(err, e, "serializar estado nuevo")
		return
	}
	entry := &entity.AuditEntry{
		ID:         uuid.New().String(),
		Action:     e.Action,
		EntityKind: e.Kind,
		EntityID:   e.EntityID,
		ActorEmail: e.ActorEmail,
		Before:     before,
		After:      after,
		Note:       e.Note,
		CreatedAt:  entity.Now(),
	}
	if e.CompanyID != "" {
		id := e.CompanyID
		entry.CompanyID = &id
	}
	// Desacoplado de la cancelación del request: la mutación ya se confirmó.
	if err := r.repo.Append(context.WithoutCancel(ctx), entry); err != nil {
		r.fail(err, e, "guardar entrada")
	}
}

func (r *Recorder) fail(err error, e Entry, step string) {
	if r.failures != nil {
		r.failures.Inc()
	}
	r.log.Error().Err(err).
		Str("step", step).
		Str("action", string(e.Action)).
		Str("entity_kind", string(e.Kind)).
		Str("entity_id", e.EntityID).
		Str("actor", e.ActorEmail).
		Msg("auditoría no registrada")
}

func snapshot(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
