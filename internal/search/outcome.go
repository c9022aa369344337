// Package search implements instrumented searches over sorted sequences of
// unsigned integers. Every search reports where the target was found and
// how many value comparisons it took to get there.
package search

import (
	"encoding/json"
	"fmt"
)

// Index is the position reported by a search: either Found(i) or NotFound.
// The zero value is NotFound.
type Index struct {
	pos   int
	found bool
}

// NotFound is the Index of a target that is not in the sequence.
var NotFound = Index{}

// Found returns the Index for position i.
func Found(i int) Index {
	return Index{pos: i, found: true}
}

// Get returns the position and whether the target was found.
func (i Index) Get() (int, bool) {
	return i.pos, i.found
}

// IsFound reports whether the index refers to a position.
func (i Index) IsFound() bool {
	return i.found
}

func (i Index) String() string {
	if !i.found {
		return "not found"
	}
	return fmt.Sprintf("%d", i.pos)
}

// MarshalJSON encodes NotFound as null and Found(i) as i.
func (i Index) MarshalJSON() ([]byte, error) {
	if !i.found {
		return []byte("null"), nil
	}
	return json.Marshal(i.pos)
}

// MarshalYAML mirrors MarshalJSON.
func (i Index) MarshalYAML() (interface{}, error) {
	if !i.found {
		return nil, nil
	}
	return i.pos, nil
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (i *Index) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*i = NotFound
		return nil
	}
	var pos int
	if err := json.Unmarshal(data, &pos); err != nil {
		return fmt.Errorf("invalid index: %w", err)
	}
	if pos < 0 {
		return fmt.Errorf("invalid index: %d", pos)
	}
	*i = Found(pos)
	return nil
}

// Outcome is the result of one search invocation.
type Outcome struct {
	Algorithm   Algorithm `json:"algorithm" yaml:"algorithm"`
	Index       Index     `json:"index" yaml:"index"`
	Comparisons uint64    `json:"comparisons" yaml:"comparisons"`
	Length      int       `json:"length" yaml:"length"`
}

func newOutcome(alg Algorithm, seq []uint64, idx Index, c *counter) Outcome {
	return Outcome{
		Algorithm:   alg,
		Index:       idx,
		Comparisons: c.total(),
		Length:      len(seq),
	}
}
