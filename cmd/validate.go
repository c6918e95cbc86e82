package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conneroisu/tsvalidate/internal/manifest"
	"github.com/conneroisu/tsvalidate/internal/report"
	"github.com/conneroisu/tsvalidate/internal/types"
	"github.com/conneroisu/tsvalidate/internal/validator"
)

var (
	validateRoot      string
	validateManifests []string
	validateTimeout   time.Duration
	validateFormat    = newEnumValue(string(report.FormatText),
		string(report.FormatText), string(report.FormatJSON), string(report.FormatYAML), string(report.FormatHTML))
	validateNoColor bool
)

// validateCmd represents the validate command.
var validateCmd = &cobra.Command{
	Use:   "validate [file...]",
	Short: "Validate TypeScript files as one compilation unit",
	Long: `Validate a set of TypeScript files as if they formed one project.

The files given as arguments and the files found under --root form one set.
Each --manifest names a YAML or JSON file describing an independent set;
several manifests are validated concurrently as a batch.

The command exits with status 1 when any set is invalid.

Examples:
  tsvalidate validate a.ts lib/b.ts              # Validate two files together
  tsvalidate validate --root ./snippet           # Validate a directory tree
  tsvalidate validate -m one.yml -m two.yml      # Validate a batch of manifests
  tsvalidate validate --timeout 5s --format json # Machine-readable output`,
	RunE: runValidateCommand,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().
		StringVar(&validateRoot, "root", "", "Directory whose source files form the set")
	validateCmd.Flags().
		StringArrayVarP(&validateManifests, "manifest", "m", nil, "Manifest describing a file set (repeatable)")
	validateCmd.Flags().
		DurationVar(&validateTimeout, "timeout", 0, "Deadline per file set (default from config)")
	validateCmd.Flags().
		VarP(validateFormat, "format", "f", "Output format (text, json, yaml, html)")
	validateCmd.Flags().
		BoolVar(&validateNoColor, "no-color", false, "Disable colored output")
}

type namedSet struct {
	name  string
	files []types.VirtualFile
	opts  *validator.Options
}

func runValidateCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	sets, err := collectSets(cmd, args)
	if err != nil {
		return err
	}
	if len(sets) == 0 {
		return fmt.Errorf("nothing to validate: pass files, --root or --manifest")
	}

	v := validator.New(appConfig, validator.WithLogger(appLogger))

	entries := make([]report.Entry, len(sets))
	if len(sets) == 1 {
		result, err := v.ValidateFiles(ctx, sets[0].files, sets[0].opts)
		entries[0] = report.Entry{Name: sets[0].name, Result: result, Err: err}
	} else {
		// Sets with their own deadline run individually; the rest share one batch.
		var batch [][]types.VirtualFile
		var batchIndex []int
		for i, s := range sets {
			if s.opts != nil && s.opts.TimeoutMs > 0 && s.opts.TimeoutMs != timeoutMs(validateTimeout) {
				result, err := v.ValidateFiles(ctx, s.files, s.opts)
				entries[i] = report.Entry{Name: s.name, Result: result, Err: err}
				continue
			}
			batch = append(batch, s.files)
			batchIndex = append(batchIndex, i)
		}

		results := v.ValidateBatch(ctx, batch, &validator.Options{TimeoutMs: timeoutMs(validateTimeout)})
		for j, r := range results {
			i := batchIndex[j]
			entries[i] = report.Entry{Name: sets[i].name, Result: r.Result, Err: r.Err}
		}
	}

	noColor := validateNoColor || color.NoColor
	format := report.Format(validateFormat.String())
	if err := report.Render(ctx, cmd.OutOrStdout(), format, entries, report.Options{NoColor: noColor}); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	if !report.AllValid(entries) {
		return errValidationFailed
	}
	return nil
}

// collectSets turns arguments, --root and --manifest into file sets.
func collectSets(cmd *cobra.Command, args []string) ([]namedSet, error) {
	var sets []namedSet
	defaultOpts := &validator.Options{TimeoutMs: timeoutMs(validateTimeout)}

	if len(args) > 0 || validateRoot != "" {
		var files []types.VirtualFile
		name := "arguments"

		if validateRoot != "" {
			found, err := manifest.FromDir(validateRoot)
			if err != nil {
				return nil, err
			}
			files = append(files, found...)
			name = validateRoot
		}

		if len(args) > 0 {
			cwd, err := os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("failed to get working directory: %w", err)
			}
			read, err := manifest.FromPaths(cwd, args)
			if err != nil {
				return nil, err
			}
			files = append(files, read...)
		}

		sets = append(sets, namedSet{name: name, files: files, opts: defaultOpts})
	}

	for _, path := range validateManifests {
		m, err := manifest.Load(path)
		if err != nil {
			return nil, err
		}
		files, err := m.VirtualFiles(filepath.Dir(path))
		if err != nil {
			return nil, err
		}

		opts := defaultOpts
		if m.TimeoutMs > 0 && !flagChanged(cmd.Flags(), "timeout") {
			opts = &validator.Options{TimeoutMs: m.TimeoutMs}
		}
		sets = append(sets, namedSet{name: m.Name, files: files, opts: opts})
	}

	return sets, nil
}

func timeoutMs(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d.Milliseconds())
}
