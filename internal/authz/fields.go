package authz

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/GenziCode/genzi-rms-sub003/internal/cache"
	fieldctl "github.com/GenziCode/genzi-rms-sub003/internal/db/controller/field"
	"github.com/GenziCode/genzi-rms-sub003/internal/db/models"
)

const fieldsCacheName = "fields"

type fieldKey struct {
	tenantID string
	formName string
}

// FieldInput defines the visibility of one form control.
type FieldInput struct {
	FormName        string `validate:"required,max=100"`
	ControlName     string `validate:"required,max=100"`
	ControlType     string `validate:"max=30"`
	FieldPath       string `validate:"max=255"`
	IsVisible       bool
	IsEditable      bool
	IsRequired      bool
	DefaultValue    any
	ValidationRules string `validate:"max=255"`
}

// FieldErrors maps field paths to validation failures.
type FieldErrors map[string]string

// Error implements error.
func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}

	return ErrFieldsRejected.Error() + ": " + strings.Join(parts, "; ")
}

// Unwrap makes FieldErrors match ErrFieldsRejected and ErrBadRequest.
func (fe FieldErrors) Unwrap() error {
	return ErrFieldsRejected
}

// FieldFilter applies field visibility rules to payloads.
//
// A form without any field definitions is passed through unless the engine was built
// with WithDefaultAllowUnmappedFields(false), in which case nothing is returned. Once a
// form has definitions, only the defined visible fields are returned.
type FieldFilter struct {
	*deps
	perms        permissionSource
	cache        *cache.TTL[fieldKey, []models.FieldPermission]
	defaultAllow bool
}

// GetFieldsForForm returns the field definitions of a form.
// The slice is shared with the cache and must not be modified.
func (f *FieldFilter) GetFieldsForForm(ctx context.Context, tenantID, formName string) ([]models.FieldPermission, error) {
	key := fieldKey{tenantID: tenantID, formName: formName}

	return f.cache.GetOrLoad(ctx, key, func(ctx context.Context) ([]models.FieldPermission, error) {
		fields, err := fieldctl.ListForForm(f.conn(ctx), tenantID, formName)
		if err != nil {
			return nil, fmt.Errorf("failed to load fields of form %s: %w", formName, err)
		}

		return fields, nil
	})
}

// UpsertField creates or replaces a field definition.
func (f *FieldFilter) UpsertField(ctx context.Context, tenantID string, in FieldInput) (*models.FieldPermission, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	if err := checkRules(in.ValidationRules); err != nil {
		return nil, err
	}

	field := &models.FieldPermission{
		TenantID:        tenantID,
		FormName:        in.FormName,
		ControlName:     in.ControlName,
		ControlType:     in.ControlType,
		FieldPath:       in.FieldPath,
		IsVisible:       in.IsVisible,
		IsEditable:      in.IsEditable,
		IsRequired:      in.IsRequired,
		DefaultValue:    in.DefaultValue,
		ValidationRules: in.ValidationRules,
	}

	if err := fieldctl.Upsert(f.conn(ctx), field); err != nil {
		return nil, fmt.Errorf("failed to save field %s.%s: %w", in.FormName, in.ControlName, err)
	}

	f.invalidate(ctx, f.cache)
	f.log.Info().Str("tenant_id", tenantID).Str("form", in.FormName).Str("field", in.ControlName).Msg("field saved")

	return field, nil
}

// DeleteField removes a field definition.
func (f *FieldFilter) DeleteField(ctx context.Context, tenantID, formName, controlName string) error {
	err := fieldctl.Delete(f.conn(ctx), tenantID, formName, controlName)
	if errors.Is(err, fieldctl.ErrFieldNotFound) {
		return errors.Wrapf(ErrFieldNotFound, "%s.%s", formName, controlName)
	}

	if err != nil {
		return fmt.Errorf("failed to delete field %s.%s: %w", formName, controlName, err)
	}

	f.invalidate(ctx, f.cache)

	return nil
}

// FilterFields returns the part of data the user may see.
// Holders of the global wildcard get all of data. Visible fields missing from data get
// their default value when one is defined.
func (f *FieldFilter) FilterFields(ctx context.Context, tenantID, userID, formName string, data map[string]any) (map[string]any, error) {
	grants, err := f.perms.GetUserPermissions(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	if grants.IsGlobal() {
		return copyMap(data), nil
	}

	fields, err := f.GetFieldsForForm(ctx, tenantID, formName)
	if err != nil {
		return nil, err
	}

	if len(fields) == 0 {
		return f.unmapped(tenantID, formName, data), nil
	}

	out := make(map[string]any, len(fields))

	for i := range fields {
		if !fields[i].IsVisible {
			continue
		}

		path := fields[i].Path()

		v, ok := getPath(data, path)
		if !ok && fields[i].DefaultValue != nil {
			v, ok = fields[i].DefaultValue, true
		}

		if ok {
			setPath(out, path, v)
		}
	}

	return out, nil
}

// FilterWritable returns the part of input the user may write.
func (f *FieldFilter) FilterWritable(ctx context.Context, tenantID, userID, formName string, input map[string]any) (map[string]any, error) {
	grants, err := f.perms.GetUserPermissions(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	if grants.IsGlobal() {
		return copyMap(input), nil
	}

	fields, err := f.GetFieldsForForm(ctx, tenantID, formName)
	if err != nil {
		return nil, err
	}

	if len(fields) == 0 {
		return f.unmapped(tenantID, formName, input), nil
	}

	out := make(map[string]any, len(fields))

	for i := range fields {
		if !fields[i].IsVisible || !fields[i].IsEditable {
			continue
		}

		path := fields[i].Path()
		if v, ok := getPath(input, path); ok {
			setPath(out, path, v)
		}
	}

	return out, nil
}

// CanViewField decides whether the user may see a control.
func (f *FieldFilter) CanViewField(ctx context.Context, tenantID, userID, formName, controlName string) (Decision, error) {
	d, err := f.fieldAccess(ctx, tenantID, userID, formName, controlName, false)
	observe("field_view", d, err)

	return d, err
}

// CanEditField decides whether the user may change a control. Editing requires the
// field to be both visible and editable.
func (f *FieldFilter) CanEditField(ctx context.Context, tenantID, userID, formName, controlName string) (Decision, error) {
	d, err := f.fieldAccess(ctx, tenantID, userID, formName, controlName, true)
	observe("field_edit", d, err)

	return d, err
}

func (f *FieldFilter) fieldAccess(ctx context.Context, tenantID, userID, formName, controlName string, edit bool) (Decision, error) {
	grants, err := f.perms.GetUserPermissions(ctx, tenantID, userID)
	if err != nil {
		return deny(ReasonStoreError), err
	}

	if grants.IsGlobal() {
		return allow(ReasonGlobal), nil
	}

	fields, err := f.GetFieldsForForm(ctx, tenantID, formName)
	if err != nil {
		return deny(ReasonStoreError), err
	}

	if len(fields) == 0 {
		f.log.Debug().Str("tenant_id", tenantID).Str("form", formName).Bool("allowed", f.defaultAllow).
			Msg("form has no field rules")

		if !f.defaultAllow {
			return deny(ReasonNoFieldRules), nil
		}

		return allow(ReasonNoFieldRules), nil
	}

	for i := range fields {
		if fields[i].ControlName != controlName {
			continue
		}

		switch {
		case !fields[i].IsVisible:
			return deny(ReasonHiddenField), nil
		case edit && !fields[i].IsEditable:
			return deny(ReasonReadOnlyField), nil
		default:
			return allow(ReasonGranted), nil
		}
	}

	return deny(ReasonUnknownField), nil
}

// unmapped returns the payload of a form without field definitions.
func (f *FieldFilter) unmapped(tenantID, formName string, data map[string]any) map[string]any {
	f.log.Debug().Str("tenant_id", tenantID).Str("form", formName).Bool("allowed", f.defaultAllow).
		Msg("form has no field rules")

	if !f.defaultAllow {
		return map[string]any{}
	}

	return copyMap(data)
}

// ValidateFields checks data against the required flags and validation rules of the
// form's fields. Failures are returned as FieldErrors.
func (f *FieldFilter) ValidateFields(ctx context.Context, tenantID, formName string, data map[string]any) error {
	fields, err := f.GetFieldsForForm(ctx, tenantID, formName)
	if err != nil {
		return err
	}

	problems := FieldErrors{}

	for i := range fields {
		path := fields[i].Path()
		v, ok := getPath(data, path)

		if fields[i].IsRequired && (!ok || isEmpty(v)) {
			problems[path] = "is required"

			continue
		}

		if !ok || fields[i].ValidationRules == "" {
			continue
		}

		if err := validateVar(v, fields[i].ValidationRules); err != nil {
			problems[path] = fmt.Sprintf("fails %q", fields[i].ValidationRules)
		}
	}

	if len(problems) > 0 {
		return problems
	}

	return nil
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	default:
		return false
	}
}
