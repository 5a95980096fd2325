// Package sweeper removes role assignments that expired longer ago than the retention period.
package sweeper

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/GenziCode/genzi-rms-sub003/internal/clock"
	assignmentctl "github.com/GenziCode/genzi-rms-sub003/internal/db/controller/assignment"
	"github.com/GenziCode/genzi-rms-sub003/internal/logger"
)

var swept = promauto.NewCounter(prometheus.CounterOpts{ //nolint:gochecknoglobals
	Name: "authz_swept_assignments_total",
	Help: "Number of expired role assignments deleted by the sweeper",
})

// Sweeper deletes expired assignments. Expired rows are kept for Retention so the
// assignment history stays auditable.
type Sweeper struct {
	db        *gorm.DB
	clock     clock.Clock
	retention time.Duration
	log       zerolog.Logger
}

// New creates a sweeper. A nil clock uses the wall clock.
func New(db *gorm.DB, clk clock.Clock, retention time.Duration) *Sweeper {
	if clk == nil {
		clk = clock.Real{}
	}

	return &Sweeper{
		db:        db,
		clock:     clk,
		retention: retention,
		log:       logger.Component("sweeper"),
	}
}

// Sweep deletes the assignments that expired before now minus the retention period.
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	cutoff := s.clock.Now().Add(-s.retention)

	n, err := assignmentctl.DeleteExpiredBefore(s.db.WithContext(ctx), cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired assignments: %w", err)
	}

	swept.Add(float64(n))
	s.log.Info().Int64("deleted", n).Time("cutoff", cutoff).Msg("expired assignments swept")

	return n, nil
}

// Schedule registers the sweep on c using a cron spec.
func (s *Sweeper) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	id, err := c.AddFunc(spec, func() {
		if _, err := s.Sweep(context.Background()); err != nil {
			s.log.Error().Err(err).Msg("sweep failed")
		}
	})
	if err != nil {
		return 0, fmt.Errorf("invalid sweep schedule %q: %w", spec, err)
	}

	s.log.Info().Str("schedule", spec).Dur("retention", s.retention).Msg("sweeper scheduled")

	return id, nil
}
