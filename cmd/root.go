// Package cmd provides the command-line interface for tsvalidate with
// configuration management supporting multiple configuration sources.
//
// Configuration System:
//
//	The CLI supports flexible configuration through multiple sources with clear precedence:
//	1. Command-line flags (--config, --log-level, --timeout, etc.) - highest priority
//	2. TSVALIDATE_CONFIG_FILE environment variable - custom config file path
//	3. Individual environment variables (TSVALIDATE_VALIDATOR_TIMEOUT, etc.)
//	4. Configuration files (.tsvalidate.yml) - lowest priority
//
// Environment Variables:
//
//	TSVALIDATE_CONFIG_FILE: Path to custom configuration file
//	TSVALIDATE_VALIDATOR_TIMEOUT: Override the validation deadline
//	TSVALIDATE_COMPILER_COMMAND: TypeScript compiler executable
//	And every other key following the TSVALIDATE_<SECTION>_<OPTION> pattern
package cmd

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/tsvalidate/internal/config"
	"github.com/conneroisu/tsvalidate/internal/logging"
)

var cfgFile string

// appConfig and appLogger are populated before any subcommand runs.
var (
	appConfig *config.Config
	appLogger logging.Logger = logging.Nop()
)

// errValidationFailed makes the process exit non-zero without printing an
// additional error; the report already explains the failure.
var errValidationFailed = stderrors.New("validation failed")

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tsvalidate",
	Short: "Validate in-memory TypeScript file sets",
	Long: `tsvalidate checks whether a set of TypeScript files compiles and
type-checks as one coherent unit, without the files living in a real project.

Each run writes the files into a private scratch workspace, runs a syntax
pass and the TypeScript compiler against a generated tsconfig.json, reports
diagnostics against the paths you supplied and removes the workspace again.

Quick Start:
  tsvalidate validate src/a.ts src/b.ts   Validate files as one set
  tsvalidate validate --root ./snippet    Validate every file under a directory
  tsvalidate validate -m sets/*.yml       Validate manifests as a batch
  tsvalidate doctor                       Check compiler and workspace setup`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: loadRuntime,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !stderrors.Is(err, errValidationFailed) {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .tsvalidate.yml, can also use TSVALIDATE_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Var(newEnumValue(logging.FormatText, logging.FormatText, logging.FormatJSON, logging.FormatConsole),
		"log-format", "log format (text, json, console)")
}

// initConfig initializes the configuration system with support for multiple config sources.
//
// Configuration Loading Priority (highest to lowest):
//  1. --config flag: Explicitly specified config file path
//  2. TSVALIDATE_CONFIG_FILE environment variable: Custom config file path
//  3. Default: .tsvalidate.yml in current directory
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("TSVALIDATE_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".tsvalidate")
	}

	// Examples: TSVALIDATE_VALIDATOR_TIMEOUT, TSVALIDATE_WORKSPACE_KEEP
	viper.SetEnvPrefix("TSVALIDATE")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	config.SetDefaults(viper.GetViper())

	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))

	// A missing default config file is fine; defaults and environment apply.
	_ = viper.ReadInConfig()
}

// loadRuntime loads the configuration and builds the logger for the
// command about to run.
func loadRuntime(cmd *cobra.Command, args []string) error {
	// An explicitly named config file must exist and parse
	if cfgFile != "" || os.Getenv("TSVALIDATE_CONFIG_FILE") != "" {
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", viper.ConfigFileUsed(), err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}

	appConfig = cfg
	appLogger = logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: cfg.Logging.Format,
		Output: cmd.ErrOrStderr(),
	})
	appLogger.Debug(cmd.Context(), "Configuration loaded", "config_file", cfg.ConfigFile)

	return nil
}
