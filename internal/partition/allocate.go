package partition

import "math"

// Allocate distributes total lines over pcts. Every bucket but the last
// gets floor(total*p/100); the last absorbs the remainder, so the counts
// always sum to total.
func Allocate(total int, pcts []float64) []int {
	counts := make([]int, len(pcts))
	if len(pcts) == 0 {
		return counts
	}

	remaining := total
	for i, p := range pcts[:len(pcts)-1] {
		// The epsilon keeps exact products such as 10*30/100 from landing
		// a hair under the integer.
		n := int(math.Floor(float64(total)*p/100 + 1e-9))
		n = max(0, min(n, remaining))
		counts[i] = n
		remaining -= n
	}
	counts[len(counts)-1] = remaining
	return counts
}

// ActualPercent is count/total*100 rounded to one decimal place.
func ActualPercent(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(count)/float64(total)*1000) / 10
}
