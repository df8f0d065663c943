package assembler

import (
	"strings"
	"unicode"
)

const maxOverlapWords = 6

// normalizeToken lowercases a word and strips everything but letters,
// digits, and apostrophes, so the overlap merge can compare words
// independent of case and punctuation.
func normalizeToken(tok string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(tok) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func normalizeTokens(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = normalizeToken(t)
	}
	return out
}

// mergeOverlap merges an incoming transcript slice into the existing
// sentence buffer: a refined full restatement replaces the buffer
// outright, an overlapping word run is stripped from the slice before
// concatenation, and anything else is appended directly. The result is
// not yet trimmed; callers trim after merging.
func mergeOverlap(buffer, slice string) string {
	bufferTokens := strings.Fields(buffer)
	sliceTokens := strings.Fields(slice)

	if len(bufferTokens) == 0 {
		return slice
	}
	if len(sliceTokens) == 0 {
		return buffer
	}

	bufferNorm := normalizeTokens(bufferTokens)
	sliceNorm := normalizeTokens(sliceTokens)

	normBufStr := strings.Join(bufferNorm, " ")
	normSliceStr := strings.Join(sliceNorm, " ")

	if strings.HasPrefix(normSliceStr, normBufStr) && len(normSliceStr)-len(normBufStr) < 80 {
		return slice
	}

	maxK := maxOverlapWords
	if maxK > len(bufferNorm) {
		maxK = len(bufferNorm)
	}
	if maxK > len(sliceNorm) {
		maxK = len(sliceNorm)
	}

	for k := maxK; k >= 1; k-- {
		if tailEqualsHead(bufferNorm, sliceNorm, k) {
			remainder := sliceTokens[k:]
			if len(remainder) == 0 {
				return buffer
			}
			return buffer + " " + strings.Join(remainder, " ")
		}
	}

	return buffer + " " + slice
}

func tailEqualsHead(bufferNorm, sliceNorm []string, k int) bool {
	tail := bufferNorm[len(bufferNorm)-k:]
	head := sliceNorm[:k]
	for i := range tail {
		if tail[i] != head[i] {
			return false
		}
	}
	return true
}
