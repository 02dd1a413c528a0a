// Package scheduler corre las tareas de mantenimiento con robfig/cron.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/jhoicas/flota-api/pkg/metrics"
)

// ResetTokenPurger borra los tokens de recuperación vencidos o consumidos.
type ResetTokenPurger interface {
	PurgeResetTokens(ctx context.Context) (int64, error)
}

const purgeJob = "purge_reset_tokens"

// Scheduler envuelve un cron en UTC. Las ejecuciones no se solapan.
type Scheduler struct {
	cron    *cron.Cron
	log     zerolog.Logger
	jobs    *metrics.JobMetrics
	timeout time.Duration
}

func New(log zerolog.Logger, jobs *metrics.JobMetrics) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		log:     log,
		jobs:    jobs,
		timeout: 5 * time.Minute,
	}
}

// SchedulePurge registra la limpieza de tokens con la expresión spec (5 campos o @hourly, @daily...).
func (s *Scheduler) SchedulePurge(spec string, purger ResetTokenPurger, purged prometheus.Counter) error {
	_, err := s.cron.AddFunc(spec, func() { s.RunPurge(purger, purged) })
	if err != nil {
		return fmt.Errorf("scheduler: spec %q: %w", spec, err)
	}
	return nil
}

// RunPurge ejecuta una limpieza; los errores solo se registran.
func (s *Scheduler) RunPurge(purger ResetTokenPurger, purged prometheus.Counter) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	n, err := purger.PurgeResetTokens(ctx)
	s.jobs.Observe(purgeJob, time.Since(start), err)
	if err != nil {
		s.log.Error().Err(err).Str("job", purgeJob).Msg("falló la limpieza de tokens")
		return
	}
	if purged != nil {
		purged.Add(float64(n))
	}
	s.log.Info().Str("job", purgeJob).Int64("deleted", n).Msg("tokens de recuperación purgados")
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop detiene el cron y espera a que termine el job en curso o a que ctx expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}
