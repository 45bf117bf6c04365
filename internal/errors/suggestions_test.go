package errors

import (
	"strings"
	"testing"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"", "", 0},
		{"a", "", 1},
		{"", "a", 1},
		{"abc", "abc", 0},
		{"abc", "ab", 1},
		{"abc", "abd", 1},
		{"kitten", "sitting", 3},
		{"last-run", "last-runs", 1},
		{"run", "last-run", 5},
	}

	for _, tc := range tests {
		got := levenshtein(tc.a, tc.b)
		if got != tc.expected {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.expected)
		}
	}
}

func TestFindSimilar(t *testing.T) {
	candidates := []string{"last-run", "last-sync", "cursor-api", "cursor-web"}

	tests := []struct {
		target      string
		maxDistance int
		wantAny     []string
	}{
		{"last-runs", 2, []string{"last-run"}},
		{"last", 5, []string{"last-run", "last-sync"}},
		{"cursor", 5, []string{"cursor-api", "cursor-web"}},
	}

	for _, tc := range tests {
		got := findSimilar(tc.target, candidates, tc.maxDistance)
		for _, want := range tc.wantAny {
			found := false
			for _, g := range got {
				if g == want {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("findSimilar(%q, maxDist=%d) = %v, expected to contain %q",
					tc.target, tc.maxDistance, got, want)
			}
		}
	}
}

func TestKeyNotFoundError(t *testing.T) {
	available := []string{"last-run", "last-sync", "cursor"}
	err := KeyNotFoundError("last-runs", available, "yumako state list")

	errStr := err.Error()
	if !strings.Contains(errStr, "last-runs") {
		t.Errorf("error should contain the bad key: %s", errStr)
	}
	if !strings.Contains(errStr, "last-run") {
		t.Errorf("error should suggest similar key: %s", errStr)
	}
	if !strings.Contains(errStr, "yumako state list") {
		t.Errorf("error should suggest help command: %s", errStr)
	}
}

func TestKeyNotFoundErrorNoSuggestions(t *testing.T) {
	err := KeyNotFoundError("cursor", []string{"completely-different"}, "")

	errStr := err.Error()
	if strings.Contains(errStr, "Did you mean") {
		t.Errorf("error should not suggest anything: %s", errStr)
	}
}

func TestUnknownFormatError(t *testing.T) {
	err := UnknownFormatError("xml", []string{"yaml", "json", "text"})

	errStr := err.Error()
	if !strings.Contains(errStr, "xml") {
		t.Errorf("error should contain the bad format: %s", errStr)
	}
	// Suggestions are sorted for stable output.
	idx := strings.Index(errStr, "json")
	if idx == -1 || idx > strings.Index(errStr, "text") || strings.Index(errStr, "text") > strings.Index(errStr, "yaml") {
		t.Errorf("expected sorted format suggestions: %s", errStr)
	}
}

func TestInvalidTimeError(t *testing.T) {
	err := InvalidTimeError("yesterday")
	errStr := err.Error()

	if !strings.Contains(errStr, "yesterday") {
		t.Errorf("error should contain the bad input: %s", errStr)
	}
	if !strings.Contains(errStr, "RFC3339") {
		t.Errorf("error should mention RFC3339 format: %s", errStr)
	}
}

func TestInvalidDurationError(t *testing.T) {
	err := InvalidDurationError("4 fortnights")
	errStr := err.Error()

	if !strings.Contains(errStr, "4 fortnights") {
		t.Errorf("error should contain the bad input: %s", errStr)
	}
	if !strings.Contains(errStr, "ISO-8601") {
		t.Errorf("error should mention ISO-8601 form: %s", errStr)
	}
}
