package helpers

import "strings"

// SplitAndTrim splits target by sep and drops empty, whitespace-only parts
func SplitAndTrim(target string, sep string) []string {
	var parts []string
	for _, part := range strings.Split(target, sep) {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}
