package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/tsvalidate/internal/report"
	"github.com/conneroisu/tsvalidate/internal/version"
)

// resetCommandState restores globals and flag values that persist across
// executions of the package-level command tree.
func resetCommandState(t *testing.T) {
	t.Helper()

	viper.Reset()
	cfgFile = ""
	validateRoot = ""
	validateTimeout = 0
	validateNoColor = false
	versionShort = false
	appConfig = nil

	for _, c := range append([]*cobra.Command{rootCmd}, rootCmd.Commands()...) {
		for _, fs := range []*pflag.FlagSet{c.Flags(), c.PersistentFlags()} {
			fs.VisitAll(func(f *pflag.Flag) {
				if f.Value.Type() != "stringArray" {
					_ = f.Value.Set(f.DefValue)
				}
				f.Changed = false
			})
		}
	}
	validateManifests = nil

	t.Setenv("TSVALIDATE_WORKSPACE_BASE_DIR", t.TempDir())
	t.Chdir(t.TempDir())
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetCommandState(t)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestValidate_SyntaxErrorFailsWithJSONReport(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "broken.ts"), "const s = \"unterminated;\n")

	out, err := execute(t, "validate", "--root", root, "--format", "json")
	require.ErrorIs(t, err, errValidationFailed)

	var doc report.Document
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.False(t, doc.IsValid)
	assert.Equal(t, root, doc.Name)
	require.NotEmpty(t, doc.Errors)
	assert.Equal(t, "broken.ts", doc.Errors[0].FilePath)
	assert.Equal(t, 1, doc.Errors[0].Line)
}

func TestValidate_ManifestBatch(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.yml")
	broken := filepath.Join(dir, "broken.yml")
	writeFile(t, empty, "name: empty\nfiles: []\n")
	writeFile(t, broken, `name: broken
files:
  - path: lib/a.ts
    content: "export const = ;"
`)

	out, err := execute(t, "validate", "-m", empty, "-m", broken, "--format", "yaml")
	require.ErrorIs(t, err, errValidationFailed)

	var docs []report.Document
	require.NoError(t, yaml.Unmarshal([]byte(out), &docs))
	require.Len(t, docs, 2)
	assert.Equal(t, "empty", docs[0].Name)
	assert.True(t, docs[0].IsValid)
	assert.Equal(t, "broken", docs[1].Name)
	assert.False(t, docs[1].IsValid)
	for _, d := range docs[1].Errors {
		assert.Equal(t, "lib/a.ts", d.FilePath)
	}
}

func TestValidate_TextReport(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "broken.ts"), "let = 1;\n")

	out, err := execute(t, "validate", "--root", root, "--no-color")
	require.ErrorIs(t, err, errValidationFailed)
	assert.Contains(t, out, "✗")
	assert.Contains(t, out, "broken.ts:1:")
	assert.NotContains(t, out, "\x1b[")
}

func TestValidate_CleanSetWithCompiler(t *testing.T) {
	if _, err := exec.LookPath("tsc"); err != nil {
		t.Skip("tsc not installed")
	}

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "math.ts"), "export const add = (a: number, b: number): number => a + b;\n")
	writeFile(t, filepath.Join(root, "index.ts"), "import { add } from './math';\nexport const three: number = add(1, 2);\n")

	out, err := execute(t, "validate", "--root", root, "--format", "json")
	require.NoError(t, err)

	var doc report.Document
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.True(t, doc.IsValid)
	assert.Empty(t, doc.Errors)
}

func TestValidate_Usage(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "nothing to validate",
			args:    []string{"validate"},
			wantErr: "nothing to validate",
		},
		{
			name:    "unknown format",
			args:    []string{"validate", "--format", "pdf", "a.ts"},
			wantErr: "must be one of",
		},
		{
			name:    "missing manifest",
			args:    []string{"validate", "-m", "does-not-exist.yml"},
			wantErr: "does-not-exist.yml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.NotErrorIs(t, err, errValidationFailed)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_InvalidConfigRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yml")
	writeFile(t, path, "validator:\n  max_concurrency: 0\n")

	_, err := execute(t, "--config", path, "validate", "a.ts")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_concurrency")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, version.Get().Short(), strings.TrimSpace(out))

	out, err = execute(t, "version", "--format", "json")
	require.NoError(t, err)
	var info version.BuildInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, version.Get().Version, info.Version)
}

func TestDoctor_YAML(t *testing.T) {
	out, err := execute(t, "doctor", "--format", "yaml")
	require.NoError(t, err)

	var doc struct {
		Results []DiagnosticResult `yaml:"results"`
		Summary ReportSummary      `yaml:"summary"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))

	names := make([]string, 0, len(doc.Results))
	byName := map[string]DiagnosticResult{}
	for _, r := range doc.Results {
		names = append(names, r.Name)
		byName[r.Name] = r
	}
	assert.Equal(t, []string{"Configuration", "TypeScript Compiler", "Syntax Parser", "Workspace Directory"}, names)
	assert.Equal(t, statusOK, byName["Syntax Parser"].Status)
	assert.Equal(t, statusOK, byName["Workspace Directory"].Status)
	assert.Equal(t, 4, doc.Summary.Total)
}

func TestCalculateSummary(t *testing.T) {
	summary := calculateSummary([]DiagnosticResult{
		{Status: statusOK}, {Status: statusOK}, {Status: statusWarning}, {Status: statusError},
	})
	assert.Equal(t, ReportSummary{Total: 4, OK: 2, Warnings: 1, Errors: 1}, summary)
}

func TestEnumValue(t *testing.T) {
	v := newEnumValue("text", "text", "json")
	assert.Equal(t, "text", v.String())
	assert.Equal(t, "string", v.Type())

	require.NoError(t, v.Set(" JSON "))
	assert.Equal(t, "json", v.String())

	err := v.Set("xml")
	require.Error(t, err)
	assert.Equal(t, "json", v.String())
	assert.Contains(t, err.Error(), "text, json")
}

func TestTimeoutMs(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"0s", 0},
		{"-1s", 0},
		{"1500ms", 1500},
		{"2m", 120000},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var fs pflag.FlagSet
			d := fs.Duration("d", 0, "")
			require.NoError(t, fs.Set("d", tt.in))
			assert.Equal(t, tt.want, timeoutMs(*d))
		})
	}
}
