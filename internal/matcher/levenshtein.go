// file: internal/matcher/levenshtein.go
// version: 1.0.0
// guid: 7d2e9f41-5a38-4b6c-9e10-82c4d7a1f5b9

package matcher

// Distance computes the Levenshtein edit distance between a and b: the
// minimum number of single-character insertions, deletions, or substitutions
// needed to turn a into b. Symmetric, zero iff the strings are equal.
//
// Full DP table, O(len(a)*len(b)) time and space. Fine for the short
// normalized fields this service compares; not suitable for large documents.
func Distance(a, b string) int {
	runesA := []rune(a)
	runesB := []rune(b)
	lenA := len(runesA)
	lenB := len(runesB)

	if lenA == 0 {
		return lenB
	}
	if lenB == 0 {
		return lenA
	}

	table := make([][]int, lenB+1)
	for i := range table {
		table[i] = make([]int, lenA+1)
		table[i][0] = i
	}
	for j := 0; j <= lenA; j++ {
		table[0][j] = j
	}

	for i := 1; i <= lenB; i++ {
		for j := 1; j <= lenA; j++ {
			cost := 1
			if runesA[j-1] == runesB[i-1] {
				cost = 0
			}
			deletion := table[i-1][j] + 1
			insertion := table[i][j-1] + 1
			substitution := table[i-1][j-1] + cost
			table[i][j] = min3(deletion, insertion, substitution)
		}
	}

	return table[lenB][lenA]
}

func min3(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
