package audio

import "math"

// RMS computes the root-mean-square amplitude of a PCM16 buffer.
// Defined as 0 on empty input.
func RMS(pcm []int16) float64 {
	if len(pcm) == 0 {
		return 0
	}
	var sumSquares float64
	for _, s := range pcm {
		v := float64(s)
		sumSquares += v * v
	}
	return math.Sqrt(sumSquares / float64(len(pcm)))
}
