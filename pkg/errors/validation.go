package errors

import (
	"strings"
	"unicode"
)

// ValidateNodeID validates a node identifier from a graph payload.
// Node IDs become map keys and appear in output files verbatim, so the
// rules are intentionally conservative:
//   - No empty IDs
//   - No control characters or null bytes
//   - Maximum length of 256 characters
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidGraph, "node id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidGraph, "node id too long (max 256 characters): %q", id[:32]+"…")
	}

	for _, r := range id {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidGraph, "node id contains control characters")
		}
	}

	return nil
}

// validOrderings is the set of recognized circular ordering strategies.
// The empty string selects identity (input) order.
var validOrderings = map[string]bool{
	"":                  true,
	"degree":            true,
	"topology":          true,
	"topology-directed": true,
}

// ValidateOrdering checks that an ordering strategy name is recognized.
// Engines deliberately fall back to identity ordering at execution time
// rather than failing; this validator exists for callers that want to
// reject typos up front (CLI flags, API requests).
func ValidateOrdering(ordering string) error {
	if !validOrderings[ordering] {
		return New(ErrCodeInvalidOrdering,
			"invalid ordering: %q (must be one of: degree, topology, topology-directed, or empty)", ordering)
	}
	return nil
}

// validAlgorithms is the set of layout algorithms the pipeline can run.
var validAlgorithms = map[string]bool{
	"force":    true,
	"circular": true,
	"dot":      true,
}

// ValidateAlgorithm checks that a layout algorithm name is recognized.
func ValidateAlgorithm(name string) error {
	if !validAlgorithms[name] {
		return New(ErrCodeInvalidAlgorithm,
			"invalid algorithm: %q (must be one of: force, circular, dot)", name)
	}
	return nil
}

// ValidateGraphPath validates a graph file path supplied on the command line
// or in an API request. It prevents null bytes and enforces a sane length;
// the OS handles the rest.
func ValidateGraphPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidOption, "graph path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidOption, "graph path too long (max %d characters)", maxPathLength)
	}

	if strings.ContainsRune(path, '\x00') {
		return New(ErrCodeInvalidOption, "graph path contains null bytes")
	}

	return nil
}
