package vdom

// longestIncreasingSubsequence marks the members of one longest strictly
// increasing subsequence of seq. O(n log n).
func longestIncreasingSubsequence(seq []int) []bool {
	stable := make([]bool, len(seq))
	if len(seq) == 0 {
		return stable
	}

	// tails[k] is the index in seq of the smallest tail of an increasing
	// subsequence of length k+1; prev links each element to its
	// predecessor in that subsequence.
	tails := make([]int, 0, len(seq))
	prev := make([]int, len(seq))
	for i, v := range seq {
		lo, hi := 0, len(tails)
		for lo < hi {
			mid := (lo + hi) / 2
			if seq[tails[mid]] < v {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		if lo > 0 {
			prev[i] = tails[lo-1]
		} else {
			prev[i] = -1
		}
		if lo == len(tails) {
			tails = append(tails, i)
		} else {
			tails[lo] = i
		}
	}

	for i := tails[len(tails)-1]; i >= 0; i = prev[i] {
		stable[i] = true
	}
	return stable
}
