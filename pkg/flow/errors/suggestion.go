package errors

import "fmt"

// SuggestIdentifier suggests the closest known name for an unresolved identifier.
// It returns "" when nothing is reasonably close.
func SuggestIdentifier(unknown string, known []string) string {
	if len(known) == 0 {
		return ""
	}

	minDistance := 1000
	var bestMatch string

	for _, name := range known {
		dist := levenshteinDistance(unknown, name)
		if dist < minDistance || (dist == minDistance && name < bestMatch) {
			minDistance = dist
			bestMatch = name
		}
	}

	// Only suggest if the distance is reasonable relative to the name length
	limit := len(unknown) / 2
	if limit > 3 {
		limit = 3
	}
	if minDistance > 0 && minDistance <= limit {
		return fmt.Sprintf("Did you mean '%s'?", bestMatch)
	}
	return ""
}

// levenshteinDistance computes the edit distance between two strings.
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

	for i := 0; i <= len1; i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len2; j++ {
		matrix[0][j] = j
	}

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
