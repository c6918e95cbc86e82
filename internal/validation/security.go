// Package validation provides security validation functions for preventing
// command injection, path traversal, and other unsafe inputs reaching the
// workspace or the compiler process.
package validation

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"unicode"
)

// ValidateArgument validates a command line argument to prevent injection attacks
func ValidateArgument(arg string) error {
	if strings.ContainsRune(arg, 0) {
		return fmt.Errorf("contains null byte")
	}

	// Check for shell metacharacters that could be used for command injection
	dangerous := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\\", "\"", "'", "\n", "\r"}
	for _, char := range dangerous {
		if strings.Contains(arg, char) {
			return fmt.Errorf("contains dangerous character: %q", char)
		}
	}

	// Check for path traversal attempts
	if strings.Contains(arg, "..") {
		return fmt.Errorf("contains path traversal: %s", arg)
	}

	// Check for absolute paths (prefer relative paths for security)
	if filepath.IsAbs(arg) && !strings.HasPrefix(arg, "/usr/bin/") && !strings.HasPrefix(arg, "/bin/") {
		return fmt.Errorf("absolute path not allowed: %s", arg)
	}

	return nil
}

// ValidateCommand validates a command against an allowlist of executable
// base names. Absolute or relative locations of an allowed executable are
// accepted so that a project-local compiler can be configured.
func ValidateCommand(command string, allowedCommands map[string]bool) error {
	if command == "" {
		return fmt.Errorf("command cannot be empty")
	}

	if strings.ContainsRune(command, 0) {
		return fmt.Errorf("command contains null byte")
	}

	base := filepath.Base(command)
	if !allowedCommands[base] {
		return fmt.Errorf("command '%s' is not allowed", command)
	}

	dangerous := []string{";", "&", "|", "$", "`", "<", ">", "\"", "'", "\n", "\r", " "}
	for _, char := range dangerous {
		if strings.Contains(command, char) {
			return fmt.Errorf("invalid command '%s': contains dangerous character %q", command, char)
		}
	}

	if strings.Contains(filepath.ToSlash(command), "../") {
		return fmt.Errorf("invalid command '%s': contains path traversal", command)
	}

	return nil
}

// ValidateRelativePath validates a slash-separated file set path. The path
// must stay inside the set root once cleaned and must not carry control
// characters. Shell metacharacters are allowed since paths never reach a
// shell; routing conventions such as "(group)" or "$id" rely on them.
func ValidateRelativePath(p string) error {
	if p == "" {
		return fmt.Errorf("path cannot be empty")
	}

	for _, r := range p {
		if r == 0 {
			return fmt.Errorf("path contains null byte")
		}
		if unicode.IsControl(r) {
			return fmt.Errorf("path contains control character %U", r)
		}
	}

	if strings.HasPrefix(p, "/") || filepath.IsAbs(p) || hasDriveLetter(p) {
		return fmt.Errorf("path must be relative")
	}

	cleaned := path.Clean(p)
	if cleaned == "." {
		return fmt.Errorf("path does not name a file")
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return fmt.Errorf("path escapes the file set root")
	}

	return nil
}

func hasDriveLetter(p string) bool {
	return len(p) >= 2 && p[1] == ':' &&
		((p[0] >= 'a' && p[0] <= 'z') || (p[0] >= 'A' && p[0] <= 'Z'))
}

// ValidateFileExtension validates file extensions against an allowlist
func ValidateFileExtension(filename string, allowedExtensions []string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return fmt.Errorf("file must have an extension")
	}

	for _, allowed := range allowedExtensions {
		if ext == strings.ToLower(allowed) {
			return nil
		}
	}

	return fmt.Errorf("file extension '%s' is not allowed", ext)
}
