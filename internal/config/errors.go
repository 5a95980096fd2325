package config

import (
	"errors"
)

var (
	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("config webserver.port listening port can not be 0")

	// ErrUnknownGormEngine error if config db.gormengine is not supported.
	ErrUnknownGormEngine = errors.New("config db.gormengine must be mysql, postgres or sqlite")

	// ErrNegativeCacheTTL error if config cache.ttl is negative.
	ErrNegativeCacheTTL = errors.New("config cache.ttl can not be negative")

	// ErrLDAPURLEmpty error if the ldap directory is enabled without an url.
	ErrLDAPURLEmpty = errors.New("config ldap.url can not be empty when ldap is enabled")

	// ErrConfigNil error if no config was given.
	ErrConfigNil = errors.New("config is nil")
)
