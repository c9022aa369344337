package search

// Cost model. Each constant is the number of comparisons charged when the
// named step is evaluated.
const (
	costEmptyCheck = 1

	binaryGuard     = 1
	binaryEquality  = 1
	binaryDirection = 1

	interpGuard     = 3
	interpEquality  = 1
	interpDirection = 1
	interpFinal     = 4

	hybridGuard    = 1
	hybridProbe    = 1
	hybridMidpoint = 1
	hybridOverhead = 1
	hybridFinal    = 2
)

// counter accumulates comparison charges for a single search.
type counter struct {
	n uint64
}

func (c *counter) charge(n uint64) {
	c.n += n
}

func (c *counter) total() uint64 {
	return c.n
}
