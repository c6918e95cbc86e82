package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/conneroisu/tsvalidate/internal/compiler"
	"github.com/conneroisu/tsvalidate/internal/config"
	"github.com/conneroisu/tsvalidate/internal/fileset"
	"github.com/conneroisu/tsvalidate/internal/types"
	"github.com/conneroisu/tsvalidate/internal/version"
	"github.com/conneroisu/tsvalidate/internal/workspace"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose the compiler and workspace setup",
	Long: `Check that everything a validation run needs is in place:

- Configuration file and values
- TypeScript compiler availability and version
- In-process syntax parser
- Writable workspace directory

Examples:
  tsvalidate doctor                 # Human-readable diagnosis
  tsvalidate doctor --format json   # Output as JSON for tooling
  tsvalidate doctor --format yaml   # Output as YAML`,
	RunE: runDoctor,
}

var doctorFormat = newEnumValue("table", "table", "json", "yaml")

// Diagnostic check statuses.
const (
	statusOK      = "ok"
	statusWarning = "warning"
	statusError   = "error"
)

// DiagnosticResult represents the result of a diagnostic check
type DiagnosticResult struct {
	Name       string                 `json:"name" yaml:"name"`
	Status     string                 `json:"status" yaml:"status"`
	Message    string                 `json:"message" yaml:"message"`
	Suggestion string                 `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty" yaml:"details,omitempty"`
}

// DoctorReport represents the complete diagnostic report
type DoctorReport struct {
	Timestamp   time.Time          `json:"timestamp" yaml:"timestamp"`
	Environment map[string]string  `json:"environment" yaml:"environment"`
	Results     []DiagnosticResult `json:"results" yaml:"results"`
	Summary     ReportSummary      `json:"summary" yaml:"summary"`
}

// ReportSummary provides an overview of diagnostic results
type ReportSummary struct {
	Total    int `json:"total" yaml:"total"`
	OK       int `json:"ok" yaml:"ok"`
	Warnings int `json:"warnings" yaml:"warnings"`
	Errors   int `json:"errors" yaml:"errors"`
}

func init() {
	rootCmd.AddCommand(doctorCmd)

	doctorCmd.Flags().VarP(doctorFormat, "format", "f", "Output format (table, json, yaml)")
}

func runDoctor(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := appConfig
	if cfg == nil {
		cfg = config.Default()
	}

	report := buildDoctorReport(ctx, cfg)

	out := cmd.OutOrStdout()
	switch doctorFormat.String() {
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	case "yaml":
		encoder := yaml.NewEncoder(out)
		defer encoder.Close()
		return encoder.Encode(report)
	default:
		displayReport(out, report)
		return nil
	}
}

func buildDoctorReport(ctx context.Context, cfg *config.Config) *DoctorReport {
	report := &DoctorReport{
		Timestamp:   time.Now(),
		Environment: gatherEnvironmentInfo(),
	}

	checks := []func(context.Context, *config.Config) DiagnosticResult{
		checkConfiguration,
		checkCompiler,
		checkSyntaxParser,
		checkWorkspace,
	}
	for _, check := range checks {
		report.Results = append(report.Results, check(ctx, cfg))
	}
	report.Summary = calculateSummary(report.Results)

	return report
}

func gatherEnvironmentInfo() map[string]string {
	env := map[string]string{
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"go_version": runtime.Version(),
		"tsvalidate": version.Get().Short(),
		"temp_dir":   os.TempDir(),
	}
	if wd, err := os.Getwd(); err == nil {
		env["working_dir"] = wd
	}
	return env
}

func checkConfiguration(ctx context.Context, cfg *config.Config) DiagnosticResult {
	result := DiagnosticResult{Name: "Configuration", Status: statusOK}

	result.Details = map[string]interface{}{
		"timeout":         cfg.Validator.Timeout.String(),
		"max_concurrency": cfg.Validator.MaxConcurrency,
		"compiler":        strings.TrimSpace(cfg.Compiler.Command + " " + strings.Join(cfg.Compiler.Args, " ")),
	}

	if cfg.ConfigFile == "" {
		result.Message = "No config file found, using defaults and environment"
		result.Suggestion = "Create .tsvalidate.yml to pin compiler options for your team"
		return result
	}

	result.Message = fmt.Sprintf("Using config file %s", cfg.ConfigFile)
	result.Details["config_file"] = cfg.ConfigFile
	return result
}

func checkCompiler(ctx context.Context, cfg *config.Config) DiagnosticResult {
	result := DiagnosticResult{Name: "TypeScript Compiler", Status: statusOK}

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	tsc := compiler.NewTSC(cfg.Compiler.Command, cfg.Compiler.Args...)
	v, err := tsc.Version(ctx)
	if err != nil {
		result.Status = statusError
		result.Message = fmt.Sprintf("TypeScript compiler unavailable: %v", err)
		result.Suggestion = "Install it with 'npm install -g typescript' or set compiler.command"
		return result
	}

	result.Message = fmt.Sprintf("TypeScript compiler installed: %s", v)
	result.Details = map[string]interface{}{"version": v}
	if p, err := exec.LookPath(cfg.Compiler.Command); err == nil {
		result.Details["path"] = p
	}
	return result
}

func checkSyntaxParser(ctx context.Context, cfg *config.Config) DiagnosticResult {
	result := DiagnosticResult{Name: "Syntax Parser", Status: statusOK}

	set, err := fileset.Normalize([]types.VirtualFile{
		{Path: "doctor.ts", Content: "export const sample: string = \"unterminated;\n"},
	})
	if err != nil {
		result.Status = statusError
		result.Message = err.Error()
		return result
	}

	if len(compiler.NewSyntaxChecker().Check(set)) == 0 {
		result.Status = statusError
		result.Message = "Syntax parser did not report a known syntax error"
		return result
	}

	result.Message = "In-process syntax parser works"
	if cfg.Compiler.SkipSyntaxPass {
		result.Status = statusWarning
		result.Message = "Syntax pass is disabled; syntax errors are reported by the compiler only"
	}
	return result
}

func checkWorkspace(ctx context.Context, cfg *config.Config) DiagnosticResult {
	result := DiagnosticResult{Name: "Workspace Directory", Status: statusOK}

	base := cfg.Workspace.BaseDir
	if base == "" {
		base = os.TempDir()
	}
	result.Details = map[string]interface{}{"base_dir": base}

	set, err := fileset.Normalize([]types.VirtualFile{{Path: "doctor.ts", Content: "export {};"}})
	if err != nil {
		result.Status = statusError
		result.Message = err.Error()
		return result
	}

	ws, err := workspace.Materialize(set, workspace.Options{BaseDir: cfg.Workspace.BaseDir, ID: "doctor"})
	if err != nil {
		result.Status = statusError
		result.Message = fmt.Sprintf("Cannot create workspaces in %s", base)
		result.Suggestion = "Check permissions or set workspace.base_dir to a writable directory"
		return result
	}
	if err := ws.Release(); err != nil {
		result.Status = statusWarning
		result.Message = fmt.Sprintf("Workspaces can be created but not removed: %v", err)
		return result
	}

	if cfg.Workspace.Keep {
		result.Status = statusWarning
		result.Message = "workspace.keep is enabled; workspaces will accumulate"
		return result
	}

	result.Message = fmt.Sprintf("Workspaces can be created and removed in %s", base)
	return result
}

func calculateSummary(results []DiagnosticResult) ReportSummary {
	summary := ReportSummary{Total: len(results)}
	for _, result := range results {
		switch result.Status {
		case statusOK:
			summary.OK++
		case statusWarning:
			summary.Warnings++
		case statusError:
			summary.Errors++
		}
	}
	return summary
}

func displayReport(w io.Writer, report *DoctorReport) {
	fmt.Fprintln(w, "tsvalidate doctor")
	fmt.Fprintln(w, "=================")

	for _, result := range report.Results {
		var icon string
		switch result.Status {
		case statusOK:
			icon = "✅"
		case statusWarning:
			icon = "⚠️"
		default:
			icon = "❌"
		}
		fmt.Fprintf(w, "%s %s: %s\n", icon, result.Name, result.Message)
		if result.Suggestion != "" {
			fmt.Fprintf(w, "   💡 %s\n", result.Suggestion)
		}
	}

	fmt.Fprintf(w, "\n%d checks: %d ok, %d warnings, %d errors\n",
		report.Summary.Total, report.Summary.OK, report.Summary.Warnings, report.Summary.Errors)
}
