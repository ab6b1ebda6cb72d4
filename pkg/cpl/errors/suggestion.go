package errors

import (
	"fmt"
	"strings"
)

// SuggestSyntaxFix returns the canonical fix hint for one of the fixed
// parse failure messages, or "" for messages it does not recognize.
func SuggestSyntaxFix(message string) string {
	switch message {
	case MsgUnexpectedParen:
		return `remove the stray ")" or open a group before it`
	case MsgUnbalancedParen:
		return `close the group with ")"`
	case MsgExpectInt:
		return `write the minimum count after "{", e.g. "{2}" or "{2,5}"`
	case MsgUnbalancedBrace:
		return `close the repetition with "}"`
	case MsgMinGreaterThanMax:
		return `swap the bounds so the minimum comes first, e.g. "{2,5}"`
	case MsgRepeatTooLarge:
		return "use a repeat minimum of at most 1000"
	default:
		return ""
	}
}

// SuggestPatternName suggests possible pattern names when an unknown name
// is looked up in a catalog. It uses Levenshtein distance to find similar
// names.
func SuggestPatternName(unknown string, validNames []string) string {
	if len(validNames) == 0 {
		return ""
	}

	if best := ClosestMatch(unknown, validNames); best != "" {
		return fmt.Sprintf("Did you mean '%s'?", best)
	}

	// No close match, list a few valid names instead
	if len(validNames) > 5 {
		return fmt.Sprintf("Valid patterns include: %s, ...", strings.Join(validNames[:5], ", "))
	}
	return fmt.Sprintf("Valid patterns: %s", strings.Join(validNames, ", "))
}

// ClosestMatch returns the candidate closest to input by edit distance,
// or "" when nothing is within a reasonable number of edits.
func ClosestMatch(input string, candidates []string) string {
	minDistance := 1000
	var bestMatch string

	for _, candidate := range candidates {
		dist := levenshteinDistance(input, candidate)
		if dist < minDistance {
			minDistance = dist
			bestMatch = candidate
		}
	}

	// Only suggest if the distance is reasonable (< 5 edits)
	if minDistance < 5 {
		return bestMatch
	}
	return ""
}

// levenshteinDistance computes the Levenshtein distance between two strings.
// This is used for finding similar pattern names for suggestions.
func levenshteinDistance(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}

	len1 := len(s1)
	len2 := len(s2)

	// Create distance matrix
	matrix := make([][]int, len1+1)
	for i := range matrix {
		matrix[i] = make([]int, len2+1)
	}

	// Initialize first column and row
	for i := 0; i <= len1; i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len2; j++ {
		matrix[0][j] = j
	}

	// Compute distances
	for i := 1; i <= len1; i++ {
		for j := 1; j <= len2; j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}

			matrix[i][j] = min(
				matrix[i-1][j]+1,      // Deletion
				matrix[i][j-1]+1,      // Insertion
				matrix[i-1][j-1]+cost, // Substitution
			)
		}
	}

	return matrix[len1][len2]
}
