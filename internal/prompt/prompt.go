// Package prompt composes the prompt sent to the provider from the caller's
// raw prompt and an optional persona snapshot.
package prompt

import (
	"strings"

	"personagen/internal/models"
)

// contextHeader introduces the persona block appended to the raw prompt.
const contextHeader = "Persona context:"

// Compose returns the provider prompt for raw. It is the identity when p is
// nil or has no non-blank text field. Otherwise a persona block is appended
// with one line per non-blank field in a fixed order: industry, target
// audience, brand tone, bio. Compose is pure and deterministic.
func Compose(raw string, p *models.Persona) string {
	if p == nil || p.IsBlank() {
		return raw
	}

	fields := []struct {
		label string
		value string
	}{
		{"Industry", p.Industry},
		{"Target audience", p.TargetAudience},
		{"Brand tone", p.BrandTone},
		{"About", p.Bio},
	}

	var b strings.Builder
	b.WriteString(raw)
	b.WriteString("\n\n")
	b.WriteString(contextHeader)
	for _, f := range fields {
		v := strings.TrimSpace(f.value)
		if v == "" {
			continue
		}
		b.WriteString("\n- ")
		b.WriteString(f.label)
		b.WriteString(": ")
		b.WriteString(v)
	}
	return b.String()
}
