package config

import (
	"time"

	"github.com/GenziCode/genzi-rms-sub003/internal/logger"
)

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Cache     Cache
	Authz     Authz
	Sweeper   Sweeper
	Webserver Webserver
	LDAP      LDAP
}

// Cache settings for the catalog, form and field caches.
type Cache struct {
	TTL       time.Duration // lifetime of a cache generation
	RedisAddr string        // optional redis used to broadcast invalidations to other replicas
	Channel   string        // redis pub/sub channel
}

// Authz engine settings.
type Authz struct {
	ElevatedRoles              []string // member roles bypassing category checks
	MaxCategoryDepth           int      // upper bound for the ancestors of a category
	DefaultAllowUnmappedForms  bool     // grant access to forms and routes missing from the catalog
	DefaultAllowUnmappedFields bool     // pass payloads of forms without field definitions through
}

// Sweeper settings for the expired assignment cleanup job.
type Sweeper struct {
	Enabled   bool
	Schedule  string        // cron spec
	Retention time.Duration // how long expired assignments are kept for audit
}

// Webserver implements the ops webserver settings (checkalive and metrics).
type Webserver struct {
	Port         int // listening port for the webserver
	ShutDownTime int // wait time for shutdown
}

// LDAP settings for the LDAP backed user directory.
type LDAP struct {
	Enabled      bool
	URL          string
	BindDN       string
	BindPassword string
	StartTLS     bool // upgrade ldap:// connections
	SkipVerify   bool // skip TLS certificate verification
	BaseDN       string
	UserFilter   string // {tenant} and {user} are replaced
	RoleAttr     string
	ActiveAttr   string
	Timeout      time.Duration
}
