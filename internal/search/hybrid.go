package search

// InterpolatedBinary probes by interpolation and then bisects the side of
// the probe that holds the target, which bounds the damage a skewed value
// distribution can do to plain interpolation.
func InterpolatedBinary(seq []uint64, target uint64) Outcome {
	c := &counter{}
	c.charge(costEmptyCheck)
	if len(seq) == 0 {
		return newOutcome(AlgorithmInterpolatedBinary, seq, NotFound, c)
	}

	low, high := 0, len(seq)-1
	for low < high {
		// A degenerate range or a target outside it cannot be interpolated.
		// Both cases are settled by the final check below.
		if !interpolable(seq, low, high, target) {
			break
		}

		c.charge(hybridGuard)
		probe := interpolate(seq, low, high, target)

		c.charge(hybridProbe)
		switch {
		case target > seq[probe]:
			mid := probe + (high-probe)/2

			c.charge(hybridMidpoint)
			if target <= seq[mid] {
				low, high = probe+1, mid
			} else {
				low = mid + 1
			}
		case target < seq[probe]:
			mid := low + (probe-low)/2

			c.charge(hybridMidpoint)
			if target >= seq[mid] {
				low, high = mid, probe-1
			} else {
				// seq[low] <= target < seq[mid] forces mid > low, so high stays >= low.
				high = mid - 1
			}
		default:
			return newOutcome(AlgorithmInterpolatedBinary, seq, Found(probe), c)
		}
		c.charge(hybridOverhead)
	}

	c.charge(hybridFinal)
	if low <= high && seq[low] == target {
		return newOutcome(AlgorithmInterpolatedBinary, seq, Found(low), c)
	}
	return newOutcome(AlgorithmInterpolatedBinary, seq, NotFound, c)
}
