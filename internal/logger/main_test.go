package logger_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GenziCode/genzi-rms-sub003/internal/logger"
)

func baseConfig() logger.Log {
	return logger.Log{LogLevel: "debug", AppName: "genzi-rms", ServiceName: "authz"}
}

func TestInitErrors(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(cfg *logger.Log)
		wantErr error
	}{
		{name: "unknown level", mutate: func(cfg *logger.Log) { cfg.LogLevel = "loud" }},
		{name: "no service", mutate: func(cfg *logger.Log) { cfg.ServiceName = "" }, wantErr: logger.ErrServiceNameIsEmpty},
		{name: "no app", mutate: func(cfg *logger.Log) { cfg.AppName = "" }, wantErr: logger.ErrAppNameIsEmpty},
		{
			name: "log path is a file",
			mutate: func(cfg *logger.Log) {
				file := filepath.Join(t.TempDir(), "taken")
				require.NoError(t, os.WriteFile(file, nil, 0o600))

				cfg.File = logger.LogFile{Enabled: true, Path: file, InfoLog: "info.log"}
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := baseConfig()
			tc.mutate(&cfg)

			err := logger.Init(cfg)
			require.Error(t, err)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestLevelWriter(t *testing.T) {
	var info, warn, errs, trace bytes.Buffer

	lw := &logger.LevelWriter{InfoWriter: &info, WarnWriter: &warn, ErrorWriter: &errs, TraceWriter: &trace}

	testCases := []struct {
		level zerolog.Level
		want  *bytes.Buffer
	}{
		{level: zerolog.TraceLevel, want: &trace},
		{level: zerolog.DebugLevel, want: &info},
		{level: zerolog.InfoLevel, want: &info},
		{level: zerolog.WarnLevel, want: &warn},
		{level: zerolog.ErrorLevel, want: &errs},
		{level: zerolog.FatalLevel, want: &errs},
	}

	for _, tc := range testCases {
		t.Run(tc.level.String(), func(t *testing.T) {
			before := tc.want.Len()

			n, err := lw.WriteLevel(tc.level, []byte("x\n"))
			require.NoError(t, err)
			assert.Equal(t, 2, n)
			assert.Equal(t, before+2, tc.want.Len())
		})
	}

	n, err := lw.WriteLevel(zerolog.Disabled, []byte("x\n"))
	require.NoError(t, err)
	assert.Zero(t, n)

	// a level group without a writer is dropped
	n, err = (&logger.LevelWriter{}).WriteLevel(zerolog.InfoLevel, []byte("x\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestInitFiles(t *testing.T) {
	dir := t.TempDir()

	cfg := baseConfig()
	cfg.File = logger.LogFile{
		Enabled: true, Path: dir,
		InfoLog: "info.log", WarnLog: "warn.log", ErrorLog: "error.log", TraceLog: "trace.log",
	}
	require.NoError(t, logger.Init(cfg))

	catalog := logger.Component("catalog")
	catalog.Info().Str("permission", "pos:sale").Msg("permission defined")
	catalog.Debug().Msg("cache filled")
	log.Warn().Str("tenant_id", "t1").Msg("category parent missing")
	log.Error().Str("tenant_id", "t1").Msg("category check failed")
	log.Trace().Msg("not at debug level")

	infos := readLines(t, filepath.Join(dir, "info.log"))
	require.Len(t, infos, 2)
	assert.Equal(t, "permission defined", infos[0]["message"])
	assert.Equal(t, "catalog", infos[0]["component"])
	assert.Equal(t, "pos:sale", infos[0]["permission"])
	assert.Equal(t, "genzi-rms", infos[0]["app"])
	assert.Equal(t, "authz", infos[0]["service"])
	assert.Equal(t, "debug", infos[1]["level"])

	warns := readLines(t, filepath.Join(dir, "warn.log"))
	require.Len(t, warns, 1)
	assert.Equal(t, "t1", warns[0]["tenant_id"])
	assert.NotContains(t, warns[0], "component")

	errs := readLines(t, filepath.Join(dir, "error.log"))
	require.Len(t, errs, 1)
	assert.Equal(t, "error", errs[0]["level"])

	assert.NoFileExists(t, filepath.Join(dir, "trace.log"))
}

func TestInitConsole(t *testing.T) {
	testCases := []struct {
		name     string
		pretty   bool
		wantJSON bool
	}{
		{name: "json lines", wantJSON: true},
		{name: "console writer", pretty: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := baseConfig()
			cfg.Console = logger.Console{Enabled: true, UseConsoleWriter: tc.pretty}

			out := captureOutput(t, func() {
				require.NoError(t, logger.Init(cfg))

				c := logger.Component("forms")
				c.Info().Str("form", "pos-terminal").Msg("form upserted")
				log.Error().Msg("store failure")
			})

			require.NotEmpty(t, out)
			assert.Contains(t, out, "form upserted")
			assert.Contains(t, out, "store failure")

			if !tc.wantJSON {
				return
			}

			for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
				var ev map[string]any
				require.NoError(t, json.Unmarshal([]byte(line), &ev), line)
				assert.Equal(t, "genzi-rms", ev["app"])
				assert.Equal(t, "authz", ev["service"])
			}
		})
	}
}

func readLines(t *testing.T, file string) []map[string]any {
	t.Helper()

	f, err := os.Open(file)
	require.NoError(t, err)

	defer f.Close()

	var out []map[string]any

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var ev map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &ev))

		out = append(out, ev)
	}

	require.NoError(t, sc.Err())

	return out
}

// captureOutput returns what fn wrote to stdout and stderr.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	stdout, stderr := os.Stdout, os.Stderr

	r, w, err := os.Pipe()
	require.NoError(t, err)

	os.Stdout, os.Stderr = w, w

	done := make(chan string)

	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		done <- buf.String()
	}()

	fn()

	_ = w.Close()
	os.Stdout, os.Stderr = stdout, stderr

	return <-done
}
