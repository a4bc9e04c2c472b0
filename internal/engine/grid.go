package engine

import "strconv"

type OwnerKind uint8

const (
	OwnerNone OwnerKind = iota
	OwnerHuman
	OwnerComputer
)

// Owner identifies who holds a cell or a seat. The zero value is "nobody".
type Owner struct {
	Kind OwnerKind
	ID   string // participant id, humans only
	Slot int    // 0-based palette slot, computers only
}

var NoOwner = Owner{}

func Human(id string) Owner { return Owner{Kind: OwnerHuman, ID: id} }

func Computer(slot int) Owner { return Owner{Kind: OwnerComputer, Slot: slot} }

func (o Owner) IsNone() bool { return o.Kind == OwnerNone }

// Key is the wire identifier: the participant id for humans, "computerN" for
// computers and "" for nobody.
func (o Owner) Key() string {
	switch o.Kind {
	case OwnerHuman:
		return o.ID
	case OwnerComputer:
		return "computer" + strconv.Itoa(o.Slot+1)
	default:
		return ""
	}
}

type Cell struct {
	Owner    Owner
	Defended bool
}

// Grid is a size×size board stored row-major.
type Grid struct {
	Size  int
	Cells []Cell
}

func NewGrid(size int) Grid {
	return Grid{Size: size, Cells: make([]Cell, size*size)}
}

func (g Grid) Len() int { return len(g.Cells) }

func (g Grid) InBounds(idx int) bool { return idx >= 0 && idx < len(g.Cells) }

func (g Grid) clone() Grid {
	cells := make([]Cell, len(g.Cells))
	copy(cells, g.Cells)
	return Grid{Size: g.Size, Cells: cells}
}

// Adjacent returns the orthogonal neighbours of idx on a size×size board,
// in the order up, down, left, right. Out-of-range indices have none.
func Adjacent(size, idx int) []int {
	if size <= 0 || idx < 0 || idx >= size*size {
		return nil
	}
	row, col := idx/size, idx%size
	adj := make([]int, 0, 4)
	if row > 0 {
		adj = append(adj, idx-size)
	}
	if row < size-1 {
		adj = append(adj, idx+size)
	}
	if col > 0 {
		adj = append(adj, idx-1)
	}
	if col < size-1 {
		adj = append(adj, idx+1)
	}
	return adj
}

func (g Grid) Adjacent(idx int) []int { return Adjacent(g.Size, idx) }

// adjacentOwnedBy reports the lowest-index cell owned by o that touches idx.
// That cell is the origin recorded for a takeover.
func (g Grid) adjacentOwnedBy(idx int, o Owner) (int, bool) {
	origin := -1
	for _, n := range g.Adjacent(idx) {
		if g.Cells[n].Owner == o && (origin < 0 || n < origin) {
			origin = n
		}
	}
	return origin, origin >= 0
}

func (g Grid) unclaimed() []int {
	var out []int
	for i, c := range g.Cells {
		if c.Owner.IsNone() {
			out = append(out, i)
		}
	}
	return out
}

func (g Grid) claimedCount() int {
	n := 0
	for _, c := range g.Cells {
		if !c.Owner.IsNone() {
			n++
		}
	}
	return n
}
