// Package types provides common type definitions used throughout tsvalidate.
// This package contains shared types to avoid circular dependencies between packages.
package types

import (
	"fmt"
	"time"
)

// VirtualFile is one not-yet-persisted source file of a validation request.
type VirtualFile struct {
	// Path is relative to the root of the file set (e.g. "src/models/user.ts")
	Path string `json:"path" yaml:"path"`
	// Content is the full text of the file
	Content string `json:"content" yaml:"content"`
}

// Severity classifies a diagnostic. Only SeverityError affects validity.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// DiagnosticSource tells which stage produced a diagnostic.
type DiagnosticSource string

const (
	SourceSyntax   DiagnosticSource = "syntax"
	SourceSemantic DiagnosticSource = "semantic"
	SourceTimeout  DiagnosticSource = "timeout"
	SourceIO       DiagnosticSource = "io"
	SourceInternal DiagnosticSource = "internal"
)

// Diagnostic is a single reported issue in caller terms.
type Diagnostic struct {
	// FilePath is the caller's relative path, empty for set-wide problems
	FilePath string `json:"filePath" yaml:"filePath"`
	// Line is 1-based
	Line int `json:"line" yaml:"line"`
	// Column is 1-based and counted in characters
	Column   int              `json:"column" yaml:"column"`
	Message  string           `json:"message" yaml:"message"`
	Severity Severity         `json:"severity" yaml:"severity"`
	Code     string           `json:"code,omitempty" yaml:"code,omitempty"`
	Source   DiagnosticSource `json:"source,omitempty" yaml:"source,omitempty"`
}

// String renders the diagnostic as file:line:column: severity: message.
func (d Diagnostic) String() string {
	location := d.FilePath
	if location == "" {
		location = "<file set>"
	} else if d.Line > 0 {
		location = fmt.Sprintf("%s:%d:%d", d.FilePath, d.Line, d.Column)
	}

	if d.Code != "" {
		return fmt.Sprintf("%s: %s %s: %s", location, d.Severity, d.Code, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", location, d.Severity, d.Message)
}

// IsError reports whether the diagnostic affects the verdict.
func (d Diagnostic) IsError() bool {
	return d.Severity == SeverityError
}

// ValidationResult is the verdict for one file set.
type ValidationResult struct {
	IsValid  bool          `json:"isValid" yaml:"isValid"`
	Errors   []Diagnostic  `json:"errors" yaml:"errors"`
	Duration time.Duration `json:"-" yaml:"-"`
}

// NewResult builds a result whose validity is derived from the diagnostics.
func NewResult(diagnostics []Diagnostic) ValidationResult {
	if diagnostics == nil {
		diagnostics = []Diagnostic{}
	}

	valid := true
	for _, d := range diagnostics {
		if d.IsError() {
			valid = false
			break
		}
	}

	return ValidationResult{IsValid: valid, Errors: diagnostics}
}

// FailedResult builds an invalid result carrying a single set-wide diagnostic.
func FailedResult(source DiagnosticSource, code, message string) ValidationResult {
	return ValidationResult{
		IsValid: false,
		Errors: []Diagnostic{{
			Message:  message,
			Severity: SeverityError,
			Code:     code,
			Source:   source,
		}},
	}
}
