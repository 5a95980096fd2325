package authz

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error kinds. Every error returned by the engine for a rejected mutation or a failed
// lookup wraps exactly one of them.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrBadRequest = errors.New("bad request")
	ErrForbidden  = errors.New("forbidden")
	ErrIntegrity  = errors.New("data integrity violation")
)

var (
	// ErrRoleNotFound is returned when a role does not exist in the tenant.
	ErrRoleNotFound       = fmt.Errorf("role %w", ErrNotFound)
	// ErrPermissionNotFound is returned when a code is not in the permission catalog.
	ErrPermissionNotFound = fmt.Errorf("permission %w", ErrNotFound)
	// ErrAssignmentNotFound is returned when the user holds no valid assignment of the role.
	ErrAssignmentNotFound = fmt.Errorf("role assignment %w", ErrNotFound)
	// ErrCategoryNotFound is returned when a category does not exist in the tenant.
	ErrCategoryNotFound   = fmt.Errorf("category %w", ErrNotFound)
	// ErrFormNotFound is returned when a form is not defined for the tenant.
	ErrFormNotFound       = fmt.Errorf("form %w", ErrNotFound)
	// ErrFieldNotFound is returned when a field is not defined for the form.
	ErrFieldNotFound      = fmt.Errorf("field %w", ErrNotFound)

	// ErrRoleExists is returned when the role code is already used in the tenant.
	ErrRoleExists = fmt.Errorf("role code already exists: %w", ErrConflict)
	// ErrRoleInUse is returned when deleting a role that is still assigned.
	ErrRoleInUse  = fmt.Errorf("role is still assigned: %w", ErrConflict)

	// ErrInvalidCode is returned for a permission code that is not module:action.
	ErrInvalidCode    = fmt.Errorf("invalid permission code: %w", ErrBadRequest)
	// ErrEmptyCodes is returned when no permission codes are given.
	ErrEmptyCodes     = fmt.Errorf("permission codes cannot be empty: %w", ErrBadRequest)
	// ErrInvalidInput is returned when an input fails validation.
	ErrInvalidInput   = fmt.Errorf("invalid input: %w", ErrBadRequest)
	// ErrInvalidAction is returned for an unknown category action.
	ErrInvalidAction  = fmt.Errorf("invalid category action: %w", ErrBadRequest)
	// ErrExpiryInPast is returned when an assignment would expire immediately.
	ErrExpiryInPast   = fmt.Errorf("expiry must be in the future: %w", ErrBadRequest)
	// ErrFieldsRejected is matched by FieldErrors when field values fail their rules.
	ErrFieldsRejected = fmt.Errorf("field validation failed: %w", ErrBadRequest)

	// ErrSystemRole is returned when changing or deleting a system role.
	ErrSystemRole = fmt.Errorf("system roles cannot be changed: %w", ErrForbidden)

	// ErrCategoryCycle is returned when a category would be, or is, its own ancestor.
	ErrCategoryCycle   = fmt.Errorf("category parent cycle: %w", ErrIntegrity)
	// ErrCategoryTooDeep is returned when a category would have more ancestors than allowed.
	ErrCategoryTooDeep = fmt.Errorf("category hierarchy too deep: %w", ErrIntegrity)
)

// Kind names an error kind.
type Kind string

// Error kinds reported by KindOf.
const (
	KindNone       Kind = ""
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindBadRequest Kind = "bad_request"
	KindForbidden  Kind = "forbidden"
	KindIntegrity  Kind = "integrity"
	KindInternal   Kind = "internal"
)

// KindOf reports the kind of err. Errors outside the taxonomy, such as store
// failures, are KindInternal.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrBadRequest):
		return KindBadRequest
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrIntegrity):
		return KindIntegrity
	default:
		return KindInternal
	}
}
