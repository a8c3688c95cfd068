package risk

import (
	"math"

	"github.com/paulmach/orb"
)

// Index is a uniform grid over hazard sources sized to the influence radius,
// so a node's candidate set is the 3x3 cell neighborhood around it instead of
// the full observation list. Swapping this for a tree index would not change
// the decay/accumulation contract in Accumulate.
type Index struct {
	cell  float64
	cells map[[2]int][]Source
}

// NewIndex buckets the sources into cells of the given size in meters.
// Sources keep their input order within a cell.
func NewIndex(cellM float64, sources []Source) *Index {
	idx := &Index{
		cell:  cellM,
		cells: make(map[[2]int][]Source),
	}
	for _, src := range sources {
		key := idx.key(src.XY)
		idx.cells[key] = append(idx.cells[key], src)
	}
	return idx
}

func (idx *Index) key(p orb.Point) [2]int {
	return [2]int{
		int(math.Floor(p.X() / idx.cell)),
		int(math.Floor(p.Y() / idx.cell)),
	}
}

// Near returns every source in the 3x3 cell neighborhood of p. The result is
// a superset of the sources within one cell size of p; callers apply the
// exact radius cutoff. Neighborhood cells are visited in a fixed order so the
// result order is deterministic for a given input order.
func (idx *Index) Near(p orb.Point) []Source {
	if len(idx.cells) == 0 {
		return nil
	}
	center := idx.key(p)
	var out []Source
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			key := [2]int{center[0] + dx, center[1] + dy}
			out = append(out, idx.cells[key]...)
		}
	}
	return out
}

// Len returns the number of indexed sources.
func (idx *Index) Len() int {
	n := 0
	for _, bucket := range idx.cells {
		n += len(bucket)
	}
	return n
}
