// Package util provides small helpers shared across the codebase.
package util

import "strings"

// ShellQuote wraps a string in single quotes, escaping any existing single quotes.
// Words made only of characters the shell never interprets are returned as-is,
// so probe commands stay readable in logs.
func ShellQuote(s string) string {
	if s != "" && isShellSafe(s) {
		return s
	}
	// Replace ' with '\'' (end quote, escaped quote, start quote)
	escaped := strings.ReplaceAll(s, "'", "'\\''")
	return "'" + escaped + "'"
}

// ShellJoin quotes each argument and joins them with spaces, producing a
// command line a remote shell splits back into the same argv.
func ShellJoin(argv []string) string {
	quoted := make([]string, len(argv))
	for i, arg := range argv {
		quoted[i] = ShellQuote(arg)
	}
	return strings.Join(quoted, " ")
}

func isShellSafe(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("-_./:%@=+,", r):
		default:
			return false
		}
	}
	return true
}
