//go:build property

package validator

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/conneroisu/tsvalidate/internal/compiler"
	"github.com/conneroisu/tsvalidate/internal/config"
	"github.com/conneroisu/tsvalidate/internal/types"
	"github.com/conneroisu/tsvalidate/internal/workspace"
)

// TestValidateFilesProperties checks validity and cleanup over generated sets
func TestValidateFilesProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(1357)
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	cfg := config.Default()
	cfg.Workspace.BaseDir = t.TempDir()

	// severities[i] decides what the checker reports for file i
	severityGen := gen.OneConstOf(types.Severity(""), types.SeverityWarning, types.SeverityError)

	properties.Property("valid iff no error diagnostic, and no workspace survives", prop.ForAll(
		func(severities []types.Severity) bool {
			files := make([]types.VirtualFile, len(severities))
			var raws []compiler.RawDiagnostic
			wantValid := true
			for i, sev := range severities {
				files[i] = types.VirtualFile{Path: fmt.Sprintf("m%d.ts", i), Content: "export {};"}
				if sev == "" {
					continue
				}
				raws = append(raws, compiler.RawDiagnostic{
					File: fmt.Sprintf("src/m%d.ts", i), Line: 1, Column: 1,
					Message: "generated", Severity: sev, Source: types.SourceSemantic,
				})
				if sev == types.SeverityError {
					wantValid = false
				}
			}

			checker := checkerFunc(func(ctx context.Context, ws *workspace.Workspace) ([]compiler.RawDiagnostic, error) {
				return raws, nil
			})
			result, err := New(cfg, WithChecker(checker)).ValidateFiles(context.Background(), files, nil)
			if err != nil || result.IsValid != wantValid || len(result.Errors) != len(raws) {
				return false
			}

			entries, err := os.ReadDir(cfg.Workspace.BaseDir)
			return err == nil && len(entries) == 0
		},
		gen.SliceOf(severityGen, reflect.TypeOf(types.Severity(""))),
	))

	properties.TestingRun(t)
}
