// Package errors provides the structured error taxonomy of the validator and
// the parser that turns TypeScript compiler output into structured records.
//
// The parser understands the non-pretty tsc output format, extracts file
// paths, line and column numbers, diagnostic codes and messages, and folds
// indented continuation lines (chained "elaboration" messages) into the
// diagnostic they belong to.
package errors

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/conneroisu/tsvalidate/internal/types"
)

// ErrorKind represents different kinds of compiler diagnostics
type ErrorKind int

const (
	ErrorKindUnknown ErrorKind = iota
	ErrorKindSyntax
	ErrorKindSemantic
	ErrorKindConfig
)

// String returns the string representation of the kind
func (k ErrorKind) String() string {
	switch k {
	case ErrorKindSyntax:
		return "syntax"
	case ErrorKindSemantic:
		return "semantic"
	case ErrorKindConfig:
		return "config"
	default:
		return "unknown"
	}
}

// ParsedError represents a parsed compiler diagnostic with structured information
type ParsedError struct {
	Kind     ErrorKind      `json:"kind"`
	Severity types.Severity `json:"severity"`
	File     string         `json:"file"`
	Line     int            `json:"line"`
	Column   int            `json:"column"`
	Code     string         `json:"code"`
	Message  string         `json:"message"`
	RawError string         `json:"raw_error"`
}

// ErrorParser parses tsc diagnostics into structured format
type ErrorParser struct {
	patterns []errorPattern
}

type errorPattern struct {
	regex       *regexp.Regexp
	parseFields func(matches []string) (file string, line int, column int, category, code, message string)
}

// NewErrorParser creates a new error parser
func NewErrorParser() *ErrorParser {
	return &ErrorParser{
		patterns: buildTSCPatterns(),
	}
}

// ParseError parses compiler output into structured errors. Lines that are
// neither a diagnostic nor a continuation of one are ignored.
func (ep *ErrorParser) ParseError(output string) []*ParsedError {
	var parsed []*ParsedError
	var current *ParsedError

	output = strings.ReplaceAll(output, "\r\n", "\n")
	for _, raw := range strings.Split(output, "\n") {
		if strings.TrimSpace(raw) == "" {
			continue
		}

		if current != nil && (strings.HasPrefix(raw, " ") || strings.HasPrefix(raw, "\t")) {
			current.Message += "\n" + strings.TrimSpace(raw)
			current.RawError += "\n" + raw
			continue
		}

		current = ep.tryParse(strings.TrimSpace(raw))
		if current != nil {
			parsed = append(parsed, current)
		}
	}

	return parsed
}

func (ep *ErrorParser) tryParse(line string) *ParsedError {
	for _, pattern := range ep.patterns {
		matches := pattern.regex.FindStringSubmatch(line)
		if matches == nil {
			continue
		}

		file, lineNum, column, category, code, message := pattern.parseFields(matches)
		return &ParsedError{
			Kind:     classifyCode(code),
			Severity: severityOf(category),
			File:     file,
			Line:     lineNum,
			Column:   column,
			Code:     code,
			Message:  message,
			RawError: line,
		}
	}
	return nil
}

func buildTSCPatterns() []errorPattern {
	return []errorPattern{
		{
			// src/a.ts(1,14): error TS2322: Type 'string' is not assignable to type 'number'.
			regex: regexp.MustCompile(`^(.+?)\((\d+),(\d+)\): (error|warning|message|suggestion) (TS\d+): (.*)$`),
			parseFields: func(m []string) (string, int, int, string, string, string) {
				line, _ := strconv.Atoi(m[2])
				column, _ := strconv.Atoi(m[3])
				return m[1], line, column, m[4], m[5], m[6]
			},
		},
		{
			// src/a.ts: error TS6053: File not found.
			regex: regexp.MustCompile(`^(.+?): (error|warning|message|suggestion) (TS\d+): (.*)$`),
			parseFields: func(m []string) (string, int, int, string, string, string) {
				return m[1], 0, 0, m[2], m[3], m[4]
			},
		},
		{
			// error TS5058: The specified path does not exist: 'x'.
			regex: regexp.MustCompile(`^(error|warning|message|suggestion) (TS\d+): (.*)$`),
			parseFields: func(m []string) (string, int, int, string, string, string) {
				return "", 0, 0, m[1], m[2], m[3]
			},
		},
	}
}

// classifyCode maps a TS diagnostic code onto a kind. The 1xxx range holds
// the scanner and parser diagnostics, 5xxx and 6xxx the option and file
// discovery diagnostics.
func classifyCode(code string) ErrorKind {
	n, err := strconv.Atoi(strings.TrimPrefix(code, "TS"))
	if err != nil {
		return ErrorKindUnknown
	}

	switch {
	case n >= 1000 && n < 2000:
		return ErrorKindSyntax
	case n >= 5000 && n < 7000:
		return ErrorKindConfig
	default:
		return ErrorKindSemantic
	}
}

func severityOf(category string) types.Severity {
	if category == "error" {
		return types.SeverityError
	}
	return types.SeverityWarning
}
