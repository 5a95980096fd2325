package authz

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/GenziCode/genzi-rms-sub003/internal/cache"
	"github.com/GenziCode/genzi-rms-sub003/internal/clock"
	"github.com/GenziCode/genzi-rms-sub003/internal/db/models"
	"github.com/GenziCode/genzi-rms-sub003/internal/directory"
	"github.com/GenziCode/genzi-rms-sub003/internal/logger"
)

type options struct {
	clock        clock.Clock
	ttl          time.Duration
	dir          directory.Directory
	elevated     []string
	maxDepth     int
	defaultAllow bool
	allowFields  bool
	bus          cache.Bus
}

// Option configures an Engine.
type Option func(*options)

// WithClock sets the time source for expiry checks and cache lifetimes.
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithTTL sets the lifetime of the catalog, form and field caches.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.ttl = ttl
	}
}

// WithDirectory sets the user directory consulted by category checks.
// Without a directory every principal is treated as an active, regular tenant member.
func WithDirectory(d directory.Directory) Option {
	return func(o *options) {
		o.dir = d
	}
}

// WithElevatedRoles sets the member roles bypassing category checks.
func WithElevatedRoles(roles ...string) Option {
	return func(o *options) {
		o.elevated = roles
	}
}

// WithMaxCategoryDepth bounds the ancestor chain accepted by CreateCategory and MoveCategory.
func WithMaxCategoryDepth(n int) Option {
	return func(o *options) {
		o.maxDepth = n
	}
}

// WithDefaultAllowUnmapped sets whether forms and routes without a definition are allowed.
func WithDefaultAllowUnmapped(allow bool) Option {
	return func(o *options) {
		o.defaultAllow = allow
	}
}

// WithDefaultAllowUnmappedFields sets whether payloads of forms without field
// definitions are passed through. When false they are filtered down to nothing.
func WithDefaultAllowUnmappedFields(allow bool) Option {
	return func(o *options) {
		o.allowFields = allow
	}
}

// WithInvalidationBus publishes cache invalidations to other replicas and applies theirs.
func WithInvalidationBus(b cache.Bus) Option {
	return func(o *options) {
		o.bus = b
	}
}

// Engine wires the engine components on one store.
type Engine struct {
	deps       *deps
	catalog    *Catalog
	roles      *RoleStore
	ledger     *Ledger
	aggregator *Aggregator
	categories *CategoryResolver
	forms      *FormGate
	fields     *FieldFilter
}

// New creates an engine on db.
func New(db *gorm.DB, opts ...Option) *Engine {
	o := options{
		clock:        clock.Real{},
		ttl:          cache.DefaultTTL,
		elevated:     []string{models.MemberRoleOwner, models.MemberRoleAdmin},
		maxDepth:     DefaultMaxCategoryDepth,
		defaultAllow: true,
		allowFields:  true,
	}

	for _, opt := range opts {
		opt(&o)
	}

	d := &deps{
		db:    db,
		clock: o.clock,
		bus:   o.bus,
		log:   logger.Component("authz"),
	}

	elevated := make(map[string]struct{}, len(o.elevated))
	for _, r := range o.elevated {
		elevated[strings.ToLower(r)] = struct{}{}
	}

	catalogCache := cache.NewTTL[string, []models.Permission](catalogCacheName, o.ttl, o.clock)
	formsCache := cache.NewTTL[string, []models.FormPermission](formsCacheName, o.ttl, o.clock)
	fieldsCache := cache.NewTTL[fieldKey, []models.FieldPermission](fieldsCacheName, o.ttl, o.clock)

	if o.bus != nil {
		o.bus.Subscribe(catalogCache.Name(), catalogCache.Invalidate)
		o.bus.Subscribe(formsCache.Name(), formsCache.Invalidate)
		o.bus.Subscribe(fieldsCache.Name(), fieldsCache.Invalidate)
	}

	e := &Engine{deps: d}
	e.catalog = newCatalog(d, catalogCache)
	e.roles = newRoleStore(d, e.catalog)
	e.ledger = newLedger(d, e.roles)
	e.aggregator = newAggregator(d, e.ledger)
	e.categories = &CategoryResolver{
		deps:     d,
		perms:    e.aggregator,
		dir:      o.dir,
		elevated: elevated,
		maxDepth: o.maxDepth,
	}
	e.forms = &FormGate{deps: d, perms: e.aggregator, cache: formsCache, defaultAllow: o.defaultAllow}
	e.fields = &FieldFilter{deps: d, perms: e.aggregator, cache: fieldsCache, defaultAllow: o.allowFields}

	return e
}

// Catalog returns the permission catalog.
func (e *Engine) Catalog() *Catalog { return e.catalog }

// Roles returns the role store.
func (e *Engine) Roles() *RoleStore { return e.roles }

// Assignments returns the role assignment ledger.
func (e *Engine) Assignments() *Ledger { return e.ledger }

// Aggregator returns the effective permission aggregator.
func (e *Engine) Aggregator() *Aggregator { return e.aggregator }

// Categories returns the category permission resolver.
func (e *Engine) Categories() *CategoryResolver { return e.categories }

// Forms returns the form and route gate.
func (e *Engine) Forms() *FormGate { return e.forms }

// Fields returns the field visibility filter.
func (e *Engine) Fields() *FieldFilter { return e.fields }

// GetUserPermissions returns the effective permissions of a user.
func (e *Engine) GetUserPermissions(ctx context.Context, tenantID, userID string) (GrantSet, error) {
	return e.aggregator.GetUserPermissions(ctx, tenantID, userID)
}

// HasPermission decides whether the user holds the permission code.
func (e *Engine) HasPermission(ctx context.Context, tenantID, userID, code string) (Decision, error) {
	return e.check(ctx, "permission", tenantID, userID, []string{code}, GrantSet.HasAll)
}

// HasAnyPermission decides whether the user holds at least one of the codes.
func (e *Engine) HasAnyPermission(ctx context.Context, tenantID, userID string, codes ...string) (Decision, error) {
	return e.check(ctx, "any_permission", tenantID, userID, codes, GrantSet.HasAny)
}

// HasAllPermissions decides whether the user holds every code.
func (e *Engine) HasAllPermissions(ctx context.Context, tenantID, userID string, codes ...string) (Decision, error) {
	return e.check(ctx, "all_permissions", tenantID, userID, codes, GrantSet.HasAll)
}

func (e *Engine) check(ctx context.Context, name, tenantID, userID string, codes []string,
	match func(GrantSet, ...string) bool,
) (Decision, error) {
	if len(codes) == 0 {
		return deny(ReasonMissing), ErrEmptyCodes
	}

	grants, err := e.aggregator.GetUserPermissions(ctx, tenantID, userID)
	if err != nil {
		observe(name, Decision{}, err)
		e.deps.log.Error().Err(err).Str("tenant_id", tenantID).Str("user_id", userID).
			Strs("permission", codes).Msg("permission check failed")

		return deny(ReasonStoreError), err
	}

	d := deny(ReasonMissing)

	switch {
	case grants.IsGlobal():
		d = allow(ReasonGlobal)
	case match(grants, codes...):
		d = allow(ReasonGranted)
	default:
		e.deps.log.Debug().Str("tenant_id", tenantID).Str("user_id", userID).
			Strs("permission", codes).Msg("permission denied")
	}

	observe(name, d, nil)

	return d, nil
}
