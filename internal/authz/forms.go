package authz

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/GenziCode/genzi-rms-sub003/internal/cache"
	formctl "github.com/GenziCode/genzi-rms-sub003/internal/db/controller/form"
	"github.com/GenziCode/genzi-rms-sub003/internal/db/models"
)

const formsCacheName = "forms"

// FormInput defines a form and its optional route mapping.
type FormInput struct {
	FormName     string   `validate:"required,max=100"`
	FormCaption  string   `validate:"max=150"`
	FormCategory string   `validate:"max=50"`
	Module       string   `validate:"max=50"`
	Route        string   `validate:"omitempty,startswith=/,max=255"`
	HTTPMethods  []string `validate:"dive,oneof=GET POST PUT PATCH DELETE HEAD OPTIONS"`
	// IsActive defaults to true.
	IsActive *bool
}

// FormGate decides access to forms and API routes.
type FormGate struct {
	*deps
	perms        permissionSource
	cache        *cache.TTL[string, []models.FormPermission]
	defaultAllow bool
}

// GetForms returns every form of a tenant, inactive ones included.
// The slice is shared with the cache and must not be modified.
func (g *FormGate) GetForms(ctx context.Context, tenantID string) ([]models.FormPermission, error) {
	return g.cache.GetOrLoad(ctx, tenantID, func(ctx context.Context) ([]models.FormPermission, error) {
		forms, err := formctl.List(g.conn(ctx), tenantID)
		if err != nil {
			return nil, fmt.Errorf("failed to load forms: %w", err)
		}

		return forms, nil
	})
}

// GetForm returns a form by name.
func (g *FormGate) GetForm(ctx context.Context, tenantID, formName string) (*models.FormPermission, error) {
	forms, err := g.GetForms(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	for i := range forms {
		if forms[i].FormName == formName {
			f := forms[i]

			return &f, nil
		}
	}

	return nil, errors.Wrapf(ErrFormNotFound, "%q", formName)
}

// UpsertForm creates or replaces a form definition.
func (g *FormGate) UpsertForm(ctx context.Context, tenantID string, in FormInput) (*models.FormPermission, error) {
	methods := make([]string, len(in.HTTPMethods))
	for i, m := range in.HTTPMethods {
		methods[i] = strings.ToUpper(strings.TrimSpace(m))
	}

	in.HTTPMethods = methods

	if err := validateInput(in); err != nil {
		return nil, err
	}

	f := &models.FormPermission{
		TenantID:     tenantID,
		FormName:     in.FormName,
		FormCaption:  in.FormCaption,
		FormCategory: in.FormCategory,
		Module:       NormalizeCode(in.Module),
		Route:        strings.TrimSuffix(in.Route, "/"),
		HTTPMethods:  in.HTTPMethods,
		IsActive:     in.IsActive == nil || *in.IsActive,
	}

	if f.Route == "" && in.Route != "" {
		f.Route = "/"
	}

	if err := formctl.Upsert(g.conn(ctx), f); err != nil {
		return nil, fmt.Errorf("failed to save form %s: %w", f.FormName, err)
	}

	g.invalidate(ctx, g.cache)
	g.log.Info().Str("tenant_id", tenantID).Str("form", f.FormName).Str("route", f.Route).Msg("form saved")

	return f, nil
}

// HasFormAccess decides whether the user may open a form.
// The user needs module:read of the form's module or form:<name>. Forms missing from
// the tenant's definitions, or inactive ones, are allowed when the gate is configured
// to allow unmapped forms.
func (g *FormGate) HasFormAccess(ctx context.Context, tenantID, userID, formName string) (Decision, error) {
	d, err := g.hasFormAccess(ctx, tenantID, userID, formName)
	g.record("form", tenantID, userID, formName, d, err)

	return d, err
}

func (g *FormGate) hasFormAccess(ctx context.Context, tenantID, userID, formName string) (Decision, error) {
	grants, err := g.perms.GetUserPermissions(ctx, tenantID, userID)
	if err != nil {
		return deny(ReasonStoreError), err
	}

	if grants.IsGlobal() {
		return allow(ReasonGlobal), nil
	}

	form, err := g.GetForm(ctx, tenantID, formName)
	if errors.Is(err, ErrFormNotFound) {
		return g.unmapped(), nil
	}

	if err != nil {
		return deny(ReasonStoreError), err
	}

	return g.formAccess(grants, form), nil
}

// HasRouteAccess resolves the form serving route and method and decides access to it.
func (g *FormGate) HasRouteAccess(ctx context.Context, tenantID, userID, route, method string) (Decision, error) {
	d, err := g.hasRouteAccess(ctx, tenantID, userID, route, method)
	g.record("route", tenantID, userID, method+" "+route, d, err)

	return d, err
}

func (g *FormGate) hasRouteAccess(ctx context.Context, tenantID, userID, route, method string) (Decision, error) {
	grants, err := g.perms.GetUserPermissions(ctx, tenantID, userID)
	if err != nil {
		return deny(ReasonStoreError), err
	}

	if grants.IsGlobal() {
		return allow(ReasonGlobal), nil
	}

	form, err := g.ResolveRoute(ctx, tenantID, route, method)
	if errors.Is(err, ErrFormNotFound) {
		return g.unmapped(), nil
	}

	if err != nil {
		return deny(ReasonStoreError), err
	}

	return g.formAccess(grants, form), nil
}

// ResolveRoute returns the active form with the longest route prefix matching route
// whose methods include method. A form without methods matches every method.
func (g *FormGate) ResolveRoute(ctx context.Context, tenantID, route, method string) (*models.FormPermission, error) {
	forms, err := g.GetForms(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	var best *models.FormPermission

	for i := range forms {
		f := &forms[i]
		if !f.IsActive || f.Route == "" || !routeMatches(f.Route, route) || !methodMatches(f.HTTPMethods, method) {
			continue
		}

		if best == nil || len(f.Route) > len(best.Route) {
			best = f
		}
	}

	if best == nil {
		return nil, errors.Wrapf(ErrFormNotFound, "no form for %s %s", method, route)
	}

	out := *best

	return &out, nil
}

// ListAccessibleForms returns the active forms the user may open.
func (g *FormGate) ListAccessibleForms(ctx context.Context, tenantID, userID string) ([]models.FormPermission, error) {
	grants, err := g.perms.GetUserPermissions(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	forms, err := g.GetForms(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	out := make([]models.FormPermission, 0, len(forms))

	for i := range forms {
		if !forms[i].IsActive {
			continue
		}

		if grants.IsGlobal() || g.formAccess(grants, &forms[i]).Allowed {
			out = append(out, forms[i])
		}
	}

	return out, nil
}

func (g *FormGate) formAccess(grants GrantSet, form *models.FormPermission) Decision {
	if !form.IsActive {
		return g.unmapped()
	}

	if form.Module != "" && grants.Has(form.Module+":read") {
		return allow(ReasonGranted)
	}

	if grants.Has("form:" + form.FormName) {
		return allow(ReasonGranted)
	}

	return deny(ReasonMissing)
}

func (g *FormGate) unmapped() Decision {
	if g.defaultAllow {
		return allow(ReasonUnmapped)
	}

	return deny(ReasonUnmapped)
}

func (g *FormGate) record(check, tenantID, userID, target string, d Decision, err error) {
	observe(check, d, err)

	switch {
	case err != nil:
		g.log.Error().Err(err).Str("tenant_id", tenantID).Str("user_id", userID).Str("form", target).Msg("form check failed")
	case !d.Allowed:
		g.log.Debug().Str("tenant_id", tenantID).Str("user_id", userID).Str("form", target).
			Str("reason", d.Reason).Msg("form access denied")
	}
}

// routeMatches reports whether prefix equals route or is a path prefix of it.
func routeMatches(prefix, route string) bool {
	if prefix == "/" {
		return strings.HasPrefix(route, "/")
	}

	return route == prefix || strings.HasPrefix(route, prefix+"/")
}

func methodMatches(methods []string, method string) bool {
	if len(methods) == 0 {
		return true
	}

	for _, m := range methods {
		if strings.EqualFold(m, method) {
			return true
		}
	}

	return false
}
