// internal/app/system/normalize/normalize.go
package normalize

import "strings"

// Email lowercases and trims an email address. Emails are compared and
// indexed in this form.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace but preserves case. Display names keep
// their original casing; case-insensitive matching uses the folded *_ci
// fields instead.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Role lowercases and trims a role value before enum validation.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Seniority lowercases and trims a seniority value before enum validation.
func Seniority(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Status lowercases and trims a project status value before enum validation.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Skills trims each skill, drops empties, and deduplicates while keeping
// the first occurrence's casing.
func Skills(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

// QueryParam trims a URL query parameter value.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
