package authz

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/GenziCode/genzi-rms-sub003/internal/cache"
	"github.com/GenziCode/genzi-rms-sub003/internal/clock"
)

// deps are shared by the engine components.
type deps struct {
	db    *gorm.DB
	clock clock.Clock
	bus   cache.Bus
	log   zerolog.Logger
}

func (d *deps) conn(ctx context.Context) *gorm.DB {
	return d.db.WithContext(ctx)
}

type invalidator interface {
	Name() string
	Invalidate()
}

// invalidate clears c and tells the other replicas to do the same.
func (d *deps) invalidate(ctx context.Context, c invalidator) {
	c.Invalidate()

	if d.bus == nil {
		return
	}

	if err := d.bus.Publish(ctx, c.Name()); err != nil {
		d.log.Warn().Err(err).Str("cache", c.Name()).Msg("failed to publish cache invalidation")
	}
}
