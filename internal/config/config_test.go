package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/tsvalidate/internal/errors"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		setup       func()
		expectError bool
		check       func(t *testing.T, config *Config)
	}{
		{
			name: "defaults",
			setup: func() {
				viper.Reset()
			},
			check: func(t *testing.T, config *Config) {
				assert.Equal(t, 30*time.Second, config.Validator.Timeout)
				assert.Equal(t, 4, config.Validator.MaxConcurrency)
				assert.Equal(t, "tsc", config.Compiler.Command)
				assert.True(t, config.Compiler.Strict)
				assert.Equal(t, []string{"ES2022", "DOM"}, config.Compiler.Lib)
				assert.Empty(t, config.Workspace.BaseDir)
				assert.False(t, config.Workspace.Keep)
				assert.Equal(t, "text", config.Logging.Format)
			},
		},
		{
			name: "overrides",
			setup: func() {
				viper.Reset()
				viper.Set("validator.timeout", "5s")
				viper.Set("validator.max_concurrency", 8)
				viper.Set("compiler.command", "npx")
				viper.Set("compiler.args", []string{"--no-install", "tsc"})
				viper.Set("compiler.strict", false)
				viper.Set("workspace.keep", true)
				viper.Set("logging.format", "console")
			},
			check: func(t *testing.T, config *Config) {
				assert.Equal(t, 5*time.Second, config.Validator.Timeout)
				assert.Equal(t, 8, config.Validator.MaxConcurrency)
				assert.Equal(t, "npx", config.Compiler.Command)
				assert.Equal(t, []string{"--no-install", "tsc"}, config.Compiler.Args)
				assert.False(t, config.Compiler.Strict)
				assert.True(t, config.Workspace.Keep)
				assert.Equal(t, "ES2022", config.Compiler.Target, "unset keys keep defaults")
			},
		},
		{
			name: "undecodable timeout",
			setup: func() {
				viper.Reset()
				viper.Set("validator.timeout", "soon")
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer viper.Reset()

			config, err := Load()
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, config)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, config)
			tt.check(t, config)
		})
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value interface{}
	}{
		{"zero timeout", "validator.timeout", "0s"},
		{"negative timeout", "validator.timeout", "-1s"},
		{"no concurrency", "validator.max_concurrency", 0},
		{"disallowed command", "compiler.command", "rm"},
		{"command injection", "compiler.command", "tsc;reboot"},
		{"argument injection", "compiler.args", []string{"$(id)"}},
		{"quote in target", "compiler.target", "ES2022\",\"x"},
		{"base dir traversal", "workspace.base_dir", "../outside"},
		{"unknown log level", "logging.level", "loud"},
		{"unknown log format", "logging.format", "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			v.Set(tt.key, tt.value)

			config, err := LoadFrom(v)
			require.Error(t, err)
			assert.Nil(t, config)
			assert.Equal(t, errors.ErrorTypeConfig, errors.TypeOf(err))
		})
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".tsvalidate.yml")
	content := `validator:
  timeout: 10s
compiler:
  command: tsc
  strict: false
  lib: [ES2020]
workspace:
  base_dir: ` + filepath.ToSlash(dir) + `
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	config, err := LoadFrom(v)
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, config.Validator.Timeout)
	assert.False(t, config.Compiler.Strict)
	assert.Equal(t, []string{"ES2020"}, config.Compiler.Lib)
	assert.Equal(t, filepath.ToSlash(dir), config.Workspace.BaseDir)
	assert.Equal(t, "debug", config.Logging.Level)
	assert.Equal(t, path, config.ConfigFile)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("TSVALIDATE_VALIDATOR_TIMEOUT", "7s")
	t.Setenv("TSVALIDATE_WORKSPACE_KEEP", "true")

	v := viper.New()
	v.SetEnvPrefix("TSVALIDATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	config, err := LoadFrom(v)
	require.NoError(t, err)

	assert.Equal(t, 7*time.Second, config.Validator.Timeout)
	assert.True(t, config.Workspace.Keep)
	assert.Equal(t, 4, config.Validator.MaxConcurrency)
}

func TestDefault(t *testing.T) {
	a := Default()
	b := Default()
	a.Compiler.Lib[0] = "ES5"
	assert.Equal(t, "ES2022", b.Compiler.Lib[0], "defaults must not share slices")
	assert.NoError(t, validateConfig(b))
}
