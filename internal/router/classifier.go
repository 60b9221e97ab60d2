// Package router classifies incoming messages by complexity and maps
// each tier to a model profile, tracking what routing saves relative to
// always using the most expensive tier.
package router

import "strings"

// Complexity is the classifier's output bucket.
type Complexity string

const (
	Simple  Complexity = "simple"
	Medium  Complexity = "medium"
	Complex Complexity = "complex"
)

// Classify buckets a message as simple, medium, or complex. Pure and
// deterministic: lowercased, whitespace-normalized input against the
// versioned pattern set. Always returns one of the three tiers.
func Classify(message string) Complexity {
	lower := strings.ToLower(strings.TrimSpace(message))
	wordCount := len(strings.Fields(lower))

	// Very short utterances, including the empty string, are never
	// worth a large model.
	if wordCount <= 3 {
		return Simple
	}

	for _, p := range trivialPatterns {
		if p.MatchString(lower) {
			return Simple
		}
	}

	score := 0
	for _, p := range topicPatterns {
		if p.MatchString(lower) {
			score++
		}
	}

	// Code content trumps brevity. Markers checked against the raw
	// message: fences and arrows are case-sensitive syntax.
	for _, marker := range codeMarkers {
		if strings.Contains(message, marker) {
			score += 3
			break
		}
	}

	switch {
	case wordCount >= 20:
		score += 2
	case wordCount >= 10:
		score++
	}

	if strings.Count(message, "?") >= 2 {
		score++
	}

	if score >= 2 {
		return Complex
	}
	if score == 1 {
		return Medium
	}

	// No signal at all: fall back on raw length.
	switch {
	case wordCount <= 6:
		return Simple
	case wordCount <= 15:
		return Medium
	default:
		return Complex
	}
}
