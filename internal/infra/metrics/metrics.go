// File: internal/infra/metrics/metrics.go
package metrics

import "strings"

// Label values are lower-cased and trimmed so callers can pass raw route names.
func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
