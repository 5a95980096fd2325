package authz

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow(reason string) Decision {
	return Decision{Allowed: true, Reason: reason}
}

func deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Decision reasons.
const (
	ReasonGranted         = "granted"
	ReasonMissing         = "missing permission"
	ReasonGlobal          = "global wildcard"
	ReasonElevated        = "elevated member role"
	ReasonNotMember       = "not a tenant member"
	ReasonInactiveMember  = "inactive tenant member"
	ReasonExplicitGrant   = "explicit category grant"
	ReasonDefaultRead     = "default read"
	ReasonInherited       = "inherited from parent category"
	ReasonUnknownCategory = "unknown category"
	ReasonUnmapped        = "unmapped form or route"
	ReasonNoFieldRules    = "form has no field rules"
	ReasonHiddenField     = "field hidden"
	ReasonReadOnlyField   = "field read only"
	ReasonUnknownField    = "unknown field"
	ReasonStoreError      = "store error"
)

const (
	outcomeAllowed = "allowed"
	outcomeDenied  = "denied"
	outcomeError   = "error"
)

var decisions = promauto.NewCounterVec( //nolint:gochecknoglobals
	prometheus.CounterOpts{
		Name: "authz_decisions_total",
		Help: "Number of authorization decisions, differentiated by check and outcome.",
	},
	[]string{"check", "outcome"},
)

func observe(check string, d Decision, err error) {
	outcome := outcomeDenied

	switch {
	case err != nil:
		outcome = outcomeError
	case d.Allowed:
		outcome = outcomeAllowed
	}

	decisions.WithLabelValues(check, outcome).Inc()
}
