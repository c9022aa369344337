package search

// Binary is classic bisection over the closed range [low, high].
func Binary(seq []uint64, target uint64) Outcome {
	c := &counter{}
	c.charge(costEmptyCheck)
	if len(seq) == 0 {
		return newOutcome(AlgorithmBinary, seq, NotFound, c)
	}

	low, high := 0, len(seq)-1
	for {
		c.charge(binaryGuard)
		if low > high {
			break
		}
		mid := low + (high-low)/2

		c.charge(binaryEquality)
		if seq[mid] == target {
			return newOutcome(AlgorithmBinary, seq, Found(mid), c)
		}

		c.charge(binaryDirection)
		if seq[mid] < target {
			low = mid + 1
		} else {
			// mid == 0 leaves high at -1, which fails the guard.
			high = mid - 1
		}
	}

	return newOutcome(AlgorithmBinary, seq, NotFound, c)
}
