// Package config provides configuration management for tsvalidate using
// Viper for flexible configuration loading from files, environment variables
// and command-line flags.
//
// The configuration system supports YAML files, environment variable
// overrides with the TSVALIDATE_ prefix and validation of every value that
// reaches the filesystem or the compiler process. It manages the validation
// deadline and concurrency, the TypeScript compiler invocation and options,
// the scratch workspace location and logging.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/conneroisu/tsvalidate/internal/errors"
	"github.com/conneroisu/tsvalidate/internal/logging"
	"github.com/conneroisu/tsvalidate/internal/validation"
)

// Defaults.
const (
	DefaultTimeout        = 30 * time.Second
	DefaultMaxConcurrency = 4
	DefaultCommand        = "tsc"
)

// AllowedCommands are the compiler executables a configuration may name.
var AllowedCommands = map[string]bool{
	"tsc":  true,
	"tsgo": true,
	"npx":  true,
	"bunx": true,
	"pnpm": true,
	"yarn": true,
}

type Config struct {
	Validator  ValidatorConfig `mapstructure:"validator" yaml:"validator" json:"validator"`
	Compiler   CompilerConfig  `mapstructure:"compiler" yaml:"compiler" json:"compiler"`
	Workspace  WorkspaceConfig `mapstructure:"workspace" yaml:"workspace" json:"workspace"`
	Logging    LoggingConfig   `mapstructure:"logging" yaml:"logging" json:"logging"`
	ConfigFile string          `mapstructure:"-" yaml:"-" json:"-"` // file the values were read from, if any
}

type ValidatorConfig struct {
	Timeout        time.Duration `mapstructure:"timeout" yaml:"timeout" json:"timeout"`
	MaxConcurrency int           `mapstructure:"max_concurrency" yaml:"max_concurrency" json:"max_concurrency"`
}

type CompilerConfig struct {
	Command          string   `mapstructure:"command" yaml:"command" json:"command"`
	Args             []string `mapstructure:"args" yaml:"args" json:"args"`
	Target           string   `mapstructure:"target" yaml:"target" json:"target"`
	Module           string   `mapstructure:"module" yaml:"module" json:"module"`
	ModuleResolution string   `mapstructure:"module_resolution" yaml:"module_resolution" json:"module_resolution"`
	Strict           bool     `mapstructure:"strict" yaml:"strict" json:"strict"`
	JSX              string   `mapstructure:"jsx" yaml:"jsx" json:"jsx"`
	Lib              []string `mapstructure:"lib" yaml:"lib" json:"lib"`
	SkipSyntaxPass   bool     `mapstructure:"skip_syntax_pass" yaml:"skip_syntax_pass" json:"skip_syntax_pass"`
}

type WorkspaceConfig struct {
	// BaseDir is where per-call workspaces are created; empty means the
	// system temp directory
	BaseDir string `mapstructure:"base_dir" yaml:"base_dir" json:"base_dir"`
	// Keep skips workspace removal so a failed run can be inspected
	Keep bool `mapstructure:"keep" yaml:"keep" json:"keep"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" json:"level"`
	Format string `mapstructure:"format" yaml:"format" json:"format"`
}

// Default returns the configuration used when nothing is configured.
func Default() *Config {
	return &Config{
		Validator: ValidatorConfig{
			Timeout:        DefaultTimeout,
			MaxConcurrency: DefaultMaxConcurrency,
		},
		Compiler: CompilerConfig{
			Command:          DefaultCommand,
			Target:           "ES2022",
			Module:           "ESNext",
			ModuleResolution: "Bundler",
			Strict:           true,
			JSX:              "preserve",
			Lib:              []string{"ES2022", "DOM"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: logging.FormatText,
		},
	}
}

// SetDefaults registers every default with v so that environment variables
// for keys missing from the config file are still picked up by Unmarshal.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("validator.timeout", d.Validator.Timeout)
	v.SetDefault("validator.max_concurrency", d.Validator.MaxConcurrency)
	v.SetDefault("compiler.command", d.Compiler.Command)
	v.SetDefault("compiler.args", d.Compiler.Args)
	v.SetDefault("compiler.target", d.Compiler.Target)
	v.SetDefault("compiler.module", d.Compiler.Module)
	v.SetDefault("compiler.module_resolution", d.Compiler.ModuleResolution)
	v.SetDefault("compiler.strict", d.Compiler.Strict)
	v.SetDefault("compiler.jsx", d.Compiler.JSX)
	v.SetDefault("compiler.lib", d.Compiler.Lib)
	v.SetDefault("compiler.skip_syntax_pass", d.Compiler.SkipSyntaxPass)
	v.SetDefault("workspace.base_dir", d.Workspace.BaseDir)
	v.SetDefault("workspace.keep", d.Workspace.Keep)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
}

// Load reads the configuration from the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads the configuration from v. Keys that are not set keep
// their defaults.
func LoadFrom(v *viper.Viper) (*Config, error) {
	config := Default()
	if err := v.Unmarshal(config); err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("failed to decode configuration: %v", err))
	}
	config.ConfigFile = v.ConfigFileUsed()

	// Blank strings from the environment mean "unset"
	if strings.TrimSpace(config.Compiler.Command) == "" {
		config.Compiler.Command = DefaultCommand
	}
	if config.Logging.Format == "" {
		config.Logging.Format = logging.FormatText
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if err := validateValidatorConfig(&config.Validator); err != nil {
		return errors.NewConfigError(fmt.Sprintf("validator config: %v", err))
	}

	if err := validateCompilerConfig(&config.Compiler); err != nil {
		return errors.NewConfigError(fmt.Sprintf("compiler config: %v", err))
	}

	if err := validateWorkspaceConfig(&config.Workspace); err != nil {
		return errors.NewConfigError(fmt.Sprintf("workspace config: %v", err))
	}

	if err := validateLoggingConfig(&config.Logging); err != nil {
		return errors.NewConfigError(fmt.Sprintf("logging config: %v", err))
	}

	return nil
}

func validateValidatorConfig(config *ValidatorConfig) error {
	if config.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", config.Timeout)
	}
	if config.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be at least 1, got %d", config.MaxConcurrency)
	}
	return nil
}

func validateCompilerConfig(config *CompilerConfig) error {
	if err := validation.ValidateCommand(config.Command, AllowedCommands); err != nil {
		return err
	}

	for _, arg := range config.Args {
		if err := validation.ValidateArgument(arg); err != nil {
			return fmt.Errorf("invalid argument %q: %w", arg, err)
		}
	}

	// Option values end up in the generated tsconfig.json
	for name, value := range map[string]string{
		"target":            config.Target,
		"module":            config.Module,
		"module_resolution": config.ModuleResolution,
		"jsx":               config.JSX,
	} {
		if strings.ContainsAny(value, "\"\\\n\r") {
			return fmt.Errorf("%s contains invalid characters: %q", name, value)
		}
	}

	return nil
}

func validateWorkspaceConfig(config *WorkspaceConfig) error {
	if config.BaseDir == "" {
		return nil
	}

	if strings.ContainsRune(config.BaseDir, 0) {
		return fmt.Errorf("base_dir contains null byte")
	}

	// Reject path traversal attempts
	for _, part := range strings.Split(filepath.ToSlash(config.BaseDir), "/") {
		if part == ".." {
			return fmt.Errorf("base_dir contains path traversal: %s", config.BaseDir)
		}
	}

	return nil
}

func validateLoggingConfig(config *LoggingConfig) error {
	if _, err := logging.ParseLevel(config.Level); err != nil {
		return err
	}

	switch config.Format {
	case logging.FormatText, logging.FormatJSON, logging.FormatConsole:
		return nil
	default:
		return fmt.Errorf("unknown log format %q", config.Format)
	}
}
