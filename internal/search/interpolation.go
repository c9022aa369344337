package search

import "math/bits"

// Interpolation probes at the position where target would sit if the
// values between low and high were evenly spaced.
func Interpolation(seq []uint64, target uint64) Outcome {
	c := &counter{}
	c.charge(costEmptyCheck)
	if len(seq) == 0 {
		return newOutcome(AlgorithmInterpolation, seq, NotFound, c)
	}

	low, high := 0, len(seq)-1
	for low <= high && interpolable(seq, low, high, target) {
		c.charge(interpGuard)
		probe := interpolate(seq, low, high, target)

		c.charge(interpEquality)
		if seq[probe] == target {
			return newOutcome(AlgorithmInterpolation, seq, Found(probe), c)
		}

		c.charge(interpDirection)
		if target < seq[probe] {
			if probe == 0 {
				break
			}
			high = probe - 1
		} else {
			if probe == len(seq)-1 {
				break
			}
			low = probe + 1
		}
	}

	c.charge(interpFinal)
	if low < len(seq) && seq[low] == target {
		return newOutcome(AlgorithmInterpolation, seq, Found(low), c)
	}
	return newOutcome(AlgorithmInterpolation, seq, NotFound, c)
}

// interpolable reports whether the range has distinct boundary values and
// brackets target. Both must hold before interpolate may divide.
func interpolable(seq []uint64, low, high int, target uint64) bool {
	return seq[high] != seq[low] && target >= seq[low] && target <= seq[high]
}

// interpolate computes low + (target-v[low])*(high-low)/(v[high]-v[low]).
// The product is formed in 128 bits so large values cannot overflow. The
// caller guarantees v[low] <= target <= v[high] and v[low] < v[high], which
// keeps the result inside [low, high].
func interpolate(seq []uint64, low, high int, target uint64) int {
	num := target - seq[low]
	span := seq[high] - seq[low]
	hi, lo := bits.Mul64(num, uint64(high-low))
	// hi < span because num <= span and high-low < 2^64.
	quo, _ := bits.Div64(hi, lo, span)
	return low + int(quo)
}
