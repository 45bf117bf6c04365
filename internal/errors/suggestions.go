// Package errors provides enhanced error messages with suggestions.
package errors

import (
	"fmt"
	"sort"
	"strings"
)

// SuggestiveError is an error that includes suggestions for fixing the problem.
type SuggestiveError struct {
	Message     string
	Suggestions []string
	HelpCommand string
}

func (e *SuggestiveError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nDid you mean one of these?\n")
		for _, s := range e.Suggestions {
			b.WriteString("  ")
			b.WriteString(s)
			b.WriteString("\n")
		}
	}

	if e.HelpCommand != "" {
		b.WriteString("\nRun '")
		b.WriteString(e.HelpCommand)
		b.WriteString("' for more information.")
	}

	return b.String()
}

// KeyNotFoundError creates an error for when a key isn't in a store,
// suggesting close matches among the keys that are.
func KeyNotFoundError(key string, available []string, helpCommand string) error {
	similar := findSimilar(key, available, 3)
	return &SuggestiveError{
		Message:     fmt.Sprintf("key %q not found", key),
		Suggestions: similar,
		HelpCommand: helpCommand,
	}
}

// UnknownFormatError creates an error for an unregistered store format.
func UnknownFormatError(name string, available []string) error {
	sorted := make([]string, len(available))
	copy(sorted, available)
	sort.Strings(sorted)
	return &SuggestiveError{
		Message:     fmt.Sprintf("unknown store format %q", name),
		Suggestions: sorted,
	}
}

// InvalidTimeError creates an error for invalid time format.
func InvalidTimeError(input string) error {
	return &SuggestiveError{
		Message: fmt.Sprintf("invalid time format %q", input),
		Suggestions: []string{
			"Relative: -1h30m, +2d, 1w (offsets from now)",
			"Absolute: 2024-01-15T10:30:00Z (RFC3339)",
			"Date only: 2024-01-15, 20240115, Jan 15, 2024",
			"Timestamp: 1701693045 (unix seconds or milliseconds)",
		},
	}
}

// InvalidDurationError creates an error for invalid duration format.
func InvalidDurationError(input string) error {
	return &SuggestiveError{
		Message: fmt.Sprintf("invalid duration format %q", input),
		Suggestions: []string{
			"Human: 1h30m, 2d, 1w2d3h (largest unit first)",
			"ISO-8601: PT1H30M, P1W2D",
		},
	}
}

// findSimilar finds strings similar to target using Levenshtein distance.
func findSimilar(target string, candidates []string, maxDistance int) []string {
	type match struct {
		value    string
		distance int
	}

	var matches []match
	targetLower := strings.ToLower(target)

	for _, c := range candidates {
		cLower := strings.ToLower(c)
		d := levenshtein(targetLower, cLower)
		if d <= maxDistance {
			matches = append(matches, match{value: c, distance: d})
		}
	}

	// Sort by distance (closest first)
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].distance < matches[j].distance
	})

	// Return top 3
	var result []string
	for i := 0; i < len(matches) && i < 3; i++ {
		result = append(result, matches[i].value)
	}

	return result
}

// levenshtein calculates the Levenshtein distance between two strings.
func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	matrix := make([][]int, len(a)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(b)+1)
	}

	for i := 0; i <= len(a); i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len(b); j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(a)][len(b)]
}
