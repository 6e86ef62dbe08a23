package validate

import "sort"

// Suggest returns candidates similar enough to name to be worth offering as
// "did you mean" completions for an unknown-option error, most similar
// first, capped at 3. Used by [forgecli.dev/argspec/parse] when it raises
// unknown-option; kept here since it shares [similarityRatio] with the
// validator's own too-similar-option-names check.
func Suggest(name string, candidates []string) []string {
	const threshold = 0.6

	type scored struct {
		name  string
		ratio float64
	}

	var matches []scored

	for _, c := range candidates {
		if r := similarityRatio(name, c); r >= threshold {
			matches = append(matches, scored{c, r})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].ratio > matches[j].ratio })

	if len(matches) > 3 {
		matches = matches[:3]
	}

	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.name
	}

	return out
}

// similarityRatio returns the edit-distance similarity of a and b in
// [0,1], computed as 1 - levenshtein(a,b)/max(len(a),len(b)). No pack
// example or ecosystem library in reach implements this metric
// standalone without pulling in a much larger text-processing
// dependency, so it is hand-rolled (see DESIGN.md).
func similarityRatio(a, b string) float64 {
	if a == b {
		return 1
	}

	la, lb := len(a), len(b)
	if la == 0 || lb == 0 {
		return 0
	}

	dist := levenshtein(a, b)

	maxLen := la
	if lb > maxLen {
		maxLen = lb
	}

	return 1 - float64(dist)/float64(maxLen)
}

func levenshtein(a, b string) int {
	la, lb := len(a), len(b)

	prev := make([]int, lb+1)
	curr := make([]int, lb+1)

	for j := 0; j <= lb; j++ {
		prev[j] = j
	}

	for i := 1; i <= la; i++ {
		curr[0] = i

		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}

			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost

			min := del
			if ins < min {
				min = ins
			}

			if sub < min {
				min = sub
			}

			curr[j] = min
		}

		prev, curr = curr, prev
	}

	return prev[lb]
}
