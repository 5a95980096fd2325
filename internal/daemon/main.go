// Package daemon wires the store, the engine and the web service into a running process.
package daemon

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GenziCode/genzi-rms-sub003/internal/authz"
	"github.com/GenziCode/genzi-rms-sub003/internal/cache"
	"github.com/GenziCode/genzi-rms-sub003/internal/config"
	"github.com/GenziCode/genzi-rms-sub003/internal/db"
	"github.com/GenziCode/genzi-rms-sub003/internal/directory"
	"github.com/GenziCode/genzi-rms-sub003/internal/sweeper"
	"github.com/GenziCode/genzi-rms-sub003/internal/web"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	db         *gorm.DB
	engine     *authz.Engine
	redis      *redis.Client
	bus        *cache.RedisBus
	cron       *cron.Cron
	webService *web.Service
}

// Engine returns the authorization engine.
func (d *Daemon) Engine() *authz.Engine {
	return d.engine
}

// DB returns the store connection.
func (d *Daemon) DB() *gorm.DB {
	return d.db
}

// Sweeper returns a sweeper on the daemon's store.
func (d *Daemon) Sweeper() *sweeper.Sweeper {
	return sweeper.New(d.db, nil, d.cfg.Sweeper.Retention)
}

// Start runs the daemon until SIGINT or SIGTERM.
func (d *Daemon) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if d.bus != nil {
		if err := d.bus.Start(ctx); err != nil {
			return fmt.Errorf("failed to start invalidation bus: %w", err)
		}
	}

	if d.cfg.Sweeper.Enabled {
		d.cron = cron.New()

		if _, err := d.Sweeper().Schedule(d.cron, d.cfg.Sweeper.Schedule); err != nil {
			return err
		}

		d.cron.Start()
	}

	d.webService = web.New(d.cfg, d.engine)

	errCh := make(chan error, 1)

	go func() {
		errCh <- d.webService.Start(":" + strconv.Itoa(d.cfg.Webserver.Port))
	}()

	log.Info().Int("port", d.cfg.Webserver.Port).Msg("authz service started")

	go d.webService.WaitShutdown()

	err := <-errCh

	d.Close()

	return err
}

// Close stops the scheduler and releases the connections.
func (d *Daemon) Close() {
	if d.cron != nil {
		<-d.cron.Stop().Done()
	}

	if d.redis != nil {
		if err := d.redis.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close redis client")
		}
	}

	if sqlDB, err := d.db.DB(); err == nil {
		if err = sqlDB.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close database")
		}
	}
}

// New opens the store and builds the engine from cfg.
func New(ctx context.Context, cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, config.ErrConfigNil
	}

	conn, err := db.Open(&cfg.DB, cfg.DevMode)
	if err != nil {
		return nil, err
	}

	d := &Daemon{cfg: cfg, db: conn}

	opts := []authz.Option{
		authz.WithTTL(cfg.Cache.TTL),
		authz.WithElevatedRoles(cfg.Authz.ElevatedRoles...),
		authz.WithMaxCategoryDepth(cfg.Authz.MaxCategoryDepth),
		authz.WithDefaultAllowUnmapped(cfg.Authz.DefaultAllowUnmappedForms),
		authz.WithDefaultAllowUnmappedFields(cfg.Authz.DefaultAllowUnmappedFields),
	}

	dir, err := newDirectory(cfg, conn)
	if err != nil {
		d.Close()

		return nil, err
	}

	opts = append(opts, authz.WithDirectory(dir))

	if cfg.Cache.RedisAddr != "" {
		d.redis, err = cache.NewRedisClient(ctx, cfg.Cache.RedisAddr)
		if err != nil {
			d.Close()

			return nil, err
		}

		d.bus = cache.NewRedisBus(d.redis, cfg.Cache.Channel)
		opts = append(opts, authz.WithInvalidationBus(d.bus))

		log.Info().Str("addr", cfg.Cache.RedisAddr).Str("channel", cfg.Cache.Channel).
			Msg("cache invalidation bus enabled")
	}

	d.engine = authz.New(conn, opts...)

	return d, nil
}

func newDirectory(cfg *config.Config, conn *gorm.DB) (directory.Directory, error) {
	if !cfg.LDAP.Enabled {
		return directory.NewGorm(conn), nil
	}

	dir, err := directory.NewLDAP(cfg.LDAP)
	if err != nil {
		return nil, fmt.Errorf("failed to configure ldap directory: %w", err)
	}

	log.Info().Str("url", cfg.LDAP.URL).Str("base_dn", cfg.LDAP.BaseDN).Msg("ldap directory enabled")

	return dir, nil
}
