package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func etcPath(t *testing.T) string {
	t.Helper()

	// Get the project root by going up from internal/config
	projectRoot, err := filepath.Abs("../../")
	require.NoError(t, err, "failed to get project root")

	return filepath.Join(projectRoot, "etc") + string(filepath.Separator)
}

func TestReadConfig(t *testing.T) {
	cfg, err := ReadConfig(etcPath(t))
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.Title)
	assert.NotZero(t, cfg.Webserver.Port)
	assert.Equal(t, EngineSQLite, cfg.DB.GormEngine)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, []string{"owner", "admin"}, cfg.Authz.ElevatedRoles)
	assert.True(t, cfg.Authz.DefaultAllowUnmappedForms)
	assert.True(t, cfg.Authz.DefaultAllowUnmappedFields)
	assert.Equal(t, 32, cfg.Authz.MaxCategoryDepth)
	assert.Equal(t, 720*time.Hour, cfg.Sweeper.Retention)
	assert.Equal(t, "@hourly", cfg.Sweeper.Schedule)
}

func TestReadConfigMissingDirectory(t *testing.T) {
	_, err := ReadConfig(t.TempDir() + string(filepath.Separator))
	require.Error(t, err)
}

func TestReadConfigWithEnvOverride(t *testing.T) {
	t.Setenv("GENZI_RMS_CACHE_TTL", "90s")
	t.Setenv("GENZI_RMS_WEBSERVER_PORT", "9191")

	cfg, err := ReadConfig(etcPath(t))
	require.NoError(t, err)

	assert.Equal(t, 90*time.Second, cfg.Cache.TTL)
	assert.Equal(t, 9191, cfg.Webserver.Port)
}

func TestReadConfigWithJSONOverride(t *testing.T) {
	jsonOverride := `{"Title":"Test Override","Webserver":{"Port":9090}}`
	t.Setenv("GENZI_RMS_CONFIG_JSON", jsonOverride)

	cfg, err := ReadConfig(etcPath(t))
	require.NoError(t, err)

	assert.Equal(t, "Test Override", cfg.Title)
	assert.Equal(t, 9090, cfg.Webserver.Port)
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name: "valid config",
			config: Config{
				DB:        DB{GormEngine: EngineMySQL},
				Webserver: Webserver{Port: 8080},
			},
		},
		{
			name: "missing port",
			config: Config{
				DB: DB{GormEngine: EngineMySQL},
			},
			wantErr: ErrWebServerPortCanNotBeZero,
		},
		{
			name: "unknown engine",
			config: Config{
				DB:        DB{GormEngine: "oracle"},
				Webserver: Webserver{Port: 8080},
			},
			wantErr: ErrUnknownGormEngine,
		},
		{
			name: "negative ttl",
			config: Config{
				DB:        DB{GormEngine: EngineSQLite},
				Cache:     Cache{TTL: -time.Second},
				Webserver: Webserver{Port: 8080},
			},
			wantErr: ErrNegativeCacheTTL,
		},
		{
			name: "ldap without url",
			config: Config{
				DB:        DB{GormEngine: EngineSQLite},
				Webserver: Webserver{Port: 8080},
				LDAP:      LDAP{Enabled: true},
			},
			wantErr: ErrLDAPURLEmpty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate(&tt.config)
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, 5, tt.config.Webserver.ShutDownTime)
				assert.Equal(t, 32, tt.config.Authz.MaxCategoryDepth)

				return
			}

			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDumpConfigJSON(t *testing.T) {
	cfg := Config{
		Title:     "Test",
		DevMode:   true,
		Webserver: Webserver{Port: 8080},
	}

	jsonStr, err := DumpConfigJSON(&cfg)
	require.NoError(t, err)
	assert.True(t, strings.Contains(jsonStr, `"Title": "Test"`))
}
