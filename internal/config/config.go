// Package config handles input from etc/main.toml and GENZI_RMS_* environment variables.
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override (e.g. GENZI_RMS_DB_HOST).
const EnvPrefix = "GENZI_RMS"

// ReadConfig from config file.
func ReadConfig(path string) (Config, error) {
	var (
		c             Config
		JSONConfigEnv string
		err           error
	)

	// Read main configuration
	if path == "" {
		path = "./etc/"
	}

	v := viper.New()
	v.SetConfigName("main")
	v.SetConfigType("toml")
	v.AddConfigPath(path)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err = v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	if err = v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode main config file")
	}

	// override it from env
	JSONConfigEnv = os.Getenv(EnvPrefix + "_CONFIG_JSON")

	if JSONConfigEnv != "" {
		c, err = decodeAndMergeConfig(c, JSONConfigEnv)
		if err != nil {
			return c, err
		}
	}

	return c, validate(&c)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db.gormengine", EngineMySQL)
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("cache.channel", "authz:invalidate")
	v.SetDefault("authz.elevatedroles", []string{"owner", "admin"})
	v.SetDefault("authz.maxcategorydepth", 32)
	v.SetDefault("authz.defaultallowunmappedforms", true)
	v.SetDefault("authz.defaultallowunmappedfields", true)
	v.SetDefault("sweeper.schedule", "@hourly")
	v.SetDefault("sweeper.retention", 30*24*time.Hour)
	v.SetDefault("webserver.shutdowntime", 5)
	v.SetDefault("ldap.roleattr", "employeeType")
	v.SetDefault("ldap.timeout", 10*time.Second)
}

func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	err := json.Unmarshal([]byte(configAsJSON), &c)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read json config override")
	}

	return c, nil
}

// DumpConfigJSON config as JSON String.
func DumpConfigJSON(c *Config) (string, error) {
	var buffer bytes.Buffer
	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// validate minimal config settings.
func validate(c *Config) error {
	invalidErrMessage := "invalid config"

	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	switch c.DB.GormEngine {
	case EngineMySQL, EnginePostgres, EngineSQLite:
	default:
		return errors.Wrap(ErrUnknownGormEngine, invalidErrMessage)
	}

	if c.Cache.TTL < 0 {
		return errors.Wrap(ErrNegativeCacheTTL, invalidErrMessage)
	}

	if c.LDAP.Enabled && c.LDAP.URL == "" {
		return errors.Wrap(ErrLDAPURLEmpty, invalidErrMessage)
	}

	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = 5 // set default of 5 seconds
	}

	if c.Authz.MaxCategoryDepth <= 0 {
		c.Authz.MaxCategoryDepth = 32
	}

	return nil
}
