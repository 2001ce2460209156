package extract

import "strings"

// Candidate produces one possible value for a field. Candidates are only
// evaluated until one yields a non-empty value.
type Candidate func() string

// Value wraps an already computed value.
func Value(s string) Candidate {
	return func() string { return s }
}

// First returns the first non-blank candidate value, trimmed.
func First(candidates ...Candidate) string {
	for _, c := range candidates {
		if c == nil {
			continue
		}
		if v := strings.TrimSpace(c()); v != "" {
			return v
		}
	}
	return ""
}
