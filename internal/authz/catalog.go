package authz

import (
	"context"
	"fmt"
	"sort"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/GenziCode/genzi-rms-sub003/internal/cache"
	permissionctl "github.com/GenziCode/genzi-rms-sub003/internal/db/controller/permission"
	"github.com/GenziCode/genzi-rms-sub003/internal/db/models"
)

const (
	catalogCacheName = "catalog"
	catalogKey       = "all"
)

// PermissionInput defines a catalog entry.
type PermissionInput struct {
	Code     string
	Name     string
	Category models.PermissionCategory
	IsSystem bool
}

// Catalog is the global permission catalog.
// Slices returned by its methods are shared with the cache and must not be modified.
type Catalog struct {
	*deps
	cache *cache.TTL[string, []models.Permission]
}

func newCatalog(d *deps, c *cache.TTL[string, []models.Permission]) *Catalog {
	return &Catalog{deps: d, cache: c}
}

// List returns every catalog entry ordered by code.
func (c *Catalog) List(ctx context.Context) ([]models.Permission, error) {
	return c.cache.GetOrLoad(ctx, catalogKey, func(ctx context.Context) ([]models.Permission, error) {
		perms, err := permissionctl.List(c.conn(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to load permission catalog: %w", err)
		}

		return perms, nil
	})
}

// ListByModule returns the entries of one module.
func (c *Catalog) ListByModule(ctx context.Context, module string) ([]models.Permission, error) {
	perms, err := c.List(ctx)
	if err != nil {
		return nil, err
	}

	module = NormalizeCode(module)

	var out []models.Permission

	for _, p := range perms {
		if p.Module == module && p.Code != GlobalCode {
			out = append(out, p)
		}
	}

	return out, nil
}

// Get returns the entry of a code.
func (c *Catalog) Get(ctx context.Context, code string) (*models.Permission, error) {
	perms, err := c.List(ctx)
	if err != nil {
		return nil, err
	}

	code = NormalizeCode(code)
	for i := range perms {
		if perms[i].Code == code {
			p := perms[i]

			return &p, nil
		}
	}

	return nil, errors.Wrapf(ErrPermissionNotFound, "%q", code)
}

// Define creates or updates a catalog entry. Only concrete module:action codes and the
// global wildcard can be defined.
func (c *Catalog) Define(ctx context.Context, in PermissionInput) (*models.Permission, error) {
	p, err := newPermission(in)
	if err != nil {
		return nil, err
	}

	if err = permissionctl.Upsert(c.conn(ctx), p); err != nil {
		return nil, fmt.Errorf("failed to save permission %s: %w", p.Code, err)
	}

	c.invalidate(ctx, c.cache)
	c.log.Info().Str("permission", p.Code).Msg("permission defined")

	return p, nil
}

// Seed defines the built in permissions. Existing entries are updated.
func (c *Catalog) Seed(ctx context.Context) error {
	defaults := DefaultPermissions()

	err := c.conn(ctx).Transaction(func(tx *gorm.DB) error {
		for _, in := range defaults {
			p, err := newPermission(in)
			if err != nil {
				return err
			}

			if err = permissionctl.Upsert(tx, p); err != nil {
				return fmt.Errorf("failed to save permission %s: %w", p.Code, err)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	c.invalidate(ctx, c.cache)
	c.log.Info().Int("count", len(defaults)).Msg("permission catalog seeded")

	return nil
}

// Resolve expands codes into catalog entries.
// "*" resolves to the global catalog entry, "module:*" to every entry of the module
// and a literal code to its entry. The result is deduplicated and ordered by code.
func (c *Catalog) Resolve(ctx context.Context, codes []string) ([]models.Permission, error) {
	if len(codes) == 0 {
		return nil, ErrEmptyCodes
	}

	perms, err := c.List(ctx)
	if err != nil {
		return nil, err
	}

	byCode := make(map[string]models.Permission, len(perms))
	byModule := make(map[string][]models.Permission)

	for _, p := range perms {
		byCode[p.Code] = p
		if p.Code != GlobalCode {
			byModule[p.Module] = append(byModule[p.Module], p)
		}
	}

	resolved := make(map[string]models.Permission)

	for _, code := range codes {
		g, err := ParseGrant(code)
		if err != nil {
			return nil, err
		}

		switch g.Kind {
		case GrantGlobal:
			p, ok := byCode[GlobalCode]
			if !ok {
				return nil, errors.Wrap(ErrPermissionNotFound, "global wildcard is not in the catalog")
			}

			resolved[p.Code] = p
		case GrantModule:
			entries := byModule[g.Module]
			if len(entries) == 0 {
				return nil, errors.Wrapf(ErrPermissionNotFound, "no permissions in module %q", g.Module)
			}

			for _, p := range entries {
				resolved[p.Code] = p
			}
		default:
			p, ok := byCode[g.String()]
			if !ok {
				return nil, errors.Wrapf(ErrPermissionNotFound, "%q", g.String())
			}

			resolved[p.Code] = p
		}
	}

	out := make([]models.Permission, 0, len(resolved))
	for _, p := range resolved {
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })

	return out, nil
}

func newPermission(in PermissionInput) (*models.Permission, error) {
	code := NormalizeCode(in.Code)

	p := &models.Permission{
		Code:     code,
		Name:     in.Name,
		Category: in.Category,
		IsSystem: in.IsSystem,
	}

	if p.Name == "" {
		p.Name = code
	}

	if code == GlobalCode {
		p.Module, p.Action = GlobalCode, GlobalCode
		if p.Category == "" {
			p.Category = models.PermissionCategoryAdmin
		}
	} else {
		g, err := ParseGrant(code)
		if err != nil {
			return nil, err
		}

		if g.Kind != GrantExact {
			return nil, errors.Wrapf(ErrInvalidCode, "%q: catalog entries must name one action", code)
		}

		p.Module, p.Action = g.Module, g.Action
	}

	switch p.Category {
	case "":
		p.Category = models.PermissionCategoryCRUD
	case models.PermissionCategoryCRUD, models.PermissionCategoryAction,
		models.PermissionCategoryReport, models.PermissionCategoryAdmin:
	default:
		return nil, errors.Wrapf(ErrInvalidInput, "unknown permission category %q", p.Category)
	}

	return p, nil
}
