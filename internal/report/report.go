// Package report renders validation results for people and machines.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/tsvalidate/internal/diagnostics"
	"github.com/conneroisu/tsvalidate/internal/types"
)

// Format selects an output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatHTML Format = "html"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML, FormatHTML:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unsupported format %q (use text, json, yaml or html)", s)
	}
}

// Entry is the outcome for one named file set.
type Entry struct {
	Name   string
	Result types.ValidationResult
	// Err is set when the set was rejected as invalid input
	Err error
}

// Options tune rendering.
type Options struct {
	NoColor bool
	Title   string
}

// Document is the machine-readable form of an entry.
type Document struct {
	Name       string              `json:"name,omitempty" yaml:"name,omitempty"`
	IsValid    bool                `json:"isValid" yaml:"isValid"`
	Errors     []types.Diagnostic  `json:"errors" yaml:"errors"`
	Summary    diagnostics.Summary `json:"summary" yaml:"summary"`
	DurationMs int64               `json:"durationMs" yaml:"durationMs"`
	Error      string              `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewDocument converts an entry.
func NewDocument(e Entry) Document {
	doc := Document{
		Name:       e.Name,
		IsValid:    e.Err == nil && e.Result.IsValid,
		Errors:     e.Result.Errors,
		Summary:    diagnostics.Summarize(e.Result.Errors),
		DurationMs: e.Result.Duration.Milliseconds(),
	}
	if doc.Errors == nil {
		doc.Errors = []types.Diagnostic{}
	}
	if e.Err != nil {
		doc.Error = e.Err.Error()
	}
	return doc
}

// AllValid reports whether every entry passed.
func AllValid(entries []Entry) bool {
	for _, e := range entries {
		if e.Err != nil || !e.Result.IsValid {
			return false
		}
	}
	return true
}

// Render writes entries to w. A single entry is encoded as an object and
// several as a list.
func Render(ctx context.Context, w io.Writer, format Format, entries []Entry, opts Options) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(documents(entries))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(documents(entries)); err != nil {
			return err
		}
		return enc.Close()
	case FormatHTML:
		return HTML(entries, opts).Render(ctx, w)
	case FormatText, "":
		return renderText(w, entries, opts)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

func documents(entries []Entry) interface{} {
	docs := make([]Document, len(entries))
	for i, e := range entries {
		docs[i] = NewDocument(e)
	}
	if len(docs) == 1 {
		return docs[0]
	}
	return docs
}

func renderText(w io.Writer, entries []Entry, opts Options) error {
	pass := color.New(color.FgGreen, color.Bold)
	fail := color.New(color.FgRed, color.Bold)
	errColor := color.New(color.FgRed)
	warnColor := color.New(color.FgYellow)
	faint := color.New(color.Faint)
	for _, c := range []*color.Color{pass, fail, errColor, warnColor, faint} {
		if opts.NoColor {
			c.DisableColor()
		} else {
			c.EnableColor()
		}
	}

	for _, e := range entries {
		name := e.Name
		if name == "" {
			name = "file set"
		}

		if e.Err != nil {
			if _, err := fail.Fprintf(w, "✗ %s: rejected: %v\n", name, e.Err); err != nil {
				return err
			}
			continue
		}

		s := diagnostics.Summarize(e.Result.Errors)
		if e.Result.IsValid {
			if _, err := pass.Fprintf(w, "✓ %s: valid", name); err != nil {
				return err
			}
		} else if _, err := fail.Fprintf(w, "✗ %s: invalid", name); err != nil {
			return err
		}
		if _, err := faint.Fprintf(w, " (%d errors, %d warnings, %dms)\n", s.Errors, s.Warnings, e.Result.Duration.Milliseconds()); err != nil {
			return err
		}

		for _, d := range e.Result.Errors {
			c := errColor
			if !d.IsError() {
				c = warnColor
			}
			if _, err := c.Fprintf(w, "  %s\n", d.String()); err != nil {
				return err
			}
		}
	}
	return nil
}
