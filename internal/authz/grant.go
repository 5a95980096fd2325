package authz

import (
	"regexp"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/GenziCode/genzi-rms-sub003/internal/db/models"
)

// GlobalCode is the permission code granting everything.
const GlobalCode = "*"

const wildcardAction = "*"

var codePart = regexp.MustCompile(`^[a-z0-9][a-z0-9_.-]*$`)

// GrantKind tells the three forms of a granted code apart.
type GrantKind uint8

const (
	// GrantExact matches one module:action code.
	GrantExact GrantKind = iota
	// GrantModule matches every action of a module (module:*).
	GrantModule
	// GrantGlobal matches every code (*).
	GrantGlobal
)

// Grant is a parsed permission code.
type Grant struct {
	Kind   GrantKind
	Module string
	Action string
}

// NormalizeCode lowercases and trims a permission code.
func NormalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// SplitCode splits a normalized code into module and action.
func SplitCode(code string) (module, action string, ok bool) {
	module, action, ok = strings.Cut(code, ":")
	if !ok || module == "" || action == "" || strings.Contains(action, ":") {
		return "", "", false
	}

	return module, action, true
}

// ParseGrant parses a permission code: "*", "module:*" or "module:action".
func ParseGrant(code string) (Grant, error) {
	code = NormalizeCode(code)
	if code == GlobalCode {
		return Grant{Kind: GrantGlobal}, nil
	}

	module, action, ok := SplitCode(code)
	if !ok || !codePart.MatchString(module) {
		return Grant{}, errors.Wrapf(ErrInvalidCode, "%q", code)
	}

	if action == wildcardAction {
		return Grant{Kind: GrantModule, Module: module}, nil
	}

	if !codePart.MatchString(action) {
		return Grant{}, errors.Wrapf(ErrInvalidCode, "%q", code)
	}

	return Grant{Kind: GrantExact, Module: module, Action: action}, nil
}

// GrantOf returns the grant of a catalog entry from the module and action stored when
// it was defined. ok is false for entries missing either part.
func GrantOf(p *models.Permission) (g Grant, ok bool) {
	switch {
	case p.Code == GlobalCode:
		return Grant{Kind: GrantGlobal}, true
	case p.Module == "" || p.Action == "" || p.Action == wildcardAction:
		return Grant{}, false
	default:
		return Grant{Kind: GrantExact, Module: p.Module, Action: p.Action}, true
	}
}

// String returns the code of the grant.
func (g Grant) String() string {
	switch g.Kind {
	case GrantGlobal:
		return GlobalCode
	case GrantModule:
		return g.Module + ":" + wildcardAction
	default:
		return g.Module + ":" + g.Action
	}
}

// GrantSet is a user's resolved permission set, parsed once for matching.
// The zero value grants nothing.
type GrantSet struct {
	global  bool
	exact   map[string]struct{}
	modules map[string]struct{}
}

// NewGrantSet builds a set from parsed grants.
func NewGrantSet(grants ...Grant) GrantSet {
	s := GrantSet{
		exact:   make(map[string]struct{}),
		modules: make(map[string]struct{}),
	}

	for _, g := range grants {
		s.add(g)
	}

	return s
}

// ParseGrantSet builds a set from codes. Invalid codes are returned as an error and
// left out of the set.
func ParseGrantSet(codes []string) (GrantSet, error) {
	s := NewGrantSet()

	var firstErr error

	for _, c := range codes {
		g, err := ParseGrant(c)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}

			continue
		}

		s.add(g)
	}

	return s, firstErr
}

func (s *GrantSet) add(g Grant) {
	switch g.Kind {
	case GrantGlobal:
		s.global = true
	case GrantModule:
		s.modules[g.Module] = struct{}{}
	default:
		s.exact[g.String()] = struct{}{}
	}
}

// Has reports whether the set grants the required code.
// The global wildcard is checked first, then the exact code, then module:*.
func (s GrantSet) Has(required string) bool {
	if s.global {
		return true
	}

	required = NormalizeCode(required)
	if _, ok := s.exact[required]; ok {
		return true
	}

	module, _, ok := SplitCode(required)
	if !ok {
		return false
	}

	_, ok = s.modules[module]

	return ok
}

// HasAny reports whether at least one of the codes is granted. It is false for no codes.
func (s GrantSet) HasAny(required ...string) bool {
	for _, r := range required {
		if s.Has(r) {
			return true
		}
	}

	return false
}

// HasAll reports whether every code is granted. It is true for no codes.
func (s GrantSet) HasAll(required ...string) bool {
	for _, r := range required {
		if !s.Has(r) {
			return false
		}
	}

	return true
}

// IsGlobal reports whether the set holds the global wildcard.
func (s GrantSet) IsGlobal() bool {
	return s.global
}

// Len returns the number of distinct grants.
func (s GrantSet) Len() int {
	n := len(s.exact) + len(s.modules)
	if s.global {
		n++
	}

	return n
}

// Codes returns the granted codes sorted.
func (s GrantSet) Codes() []string {
	codes := make([]string, 0, s.Len())
	if s.global {
		codes = append(codes, GlobalCode)
	}

	for m := range s.modules {
		codes = append(codes, m+":"+wildcardAction)
	}

	for c := range s.exact {
		codes = append(codes, c)
	}

	sort.Strings(codes)

	return codes
}

// HasPermission reports whether the granted codes allow the required code.
func HasPermission(granted []string, required string) bool {
	s, _ := ParseGrantSet(granted)

	return s.Has(required)
}

// HasAnyPermission reports whether the granted codes allow at least one required code.
func HasAnyPermission(granted []string, required ...string) bool {
	s, _ := ParseGrantSet(granted)

	return s.HasAny(required...)
}

// HasAllPermissions reports whether the granted codes allow every required code.
func HasAllPermissions(granted []string, required ...string) bool {
	s, _ := ParseGrantSet(granted)

	return s.HasAll(required...)
}
