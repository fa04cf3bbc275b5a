package pathfind

import (
	"math"
	"sync"
)

// MaxNodes bounds the memory of a single search.
const MaxNodes = 512

const noNode int32 = -1

type node struct {
	parent int32
	x, y   int32
	f      int32 // accumulated cost from the start
	g      int32 // heuristic
	c      int32 // cost of entering this node's tile
}

// nodePool is the fixed-capacity node store of one search. The open set is
// a bitset; totals mirrors f+g for open nodes and MaxInt32 for everything
// else so the best-node scan needs no branch on the open bit.
type nodePool struct {
	nodes  [MaxNodes]node
	table  [MaxNodes]uint32 // x<<16 | y
	totals [MaxNodes]int32
	open   [MaxNodes / 64]uint64
	cur    int32
	closed int32
}

var pools = sync.Pool{New: func() any { return new(nodePool) }}

func acquirePool(x, y, extraCost int32) *nodePool {
	p := pools.Get().(*nodePool)
	p.reset(x, y, extraCost)
	return p
}

func releasePool(p *nodePool) { pools.Put(p) }

func pack(x, y int32) uint32 { return uint32(x)<<16 | uint32(y)&0xFFFF }

func (p *nodePool) reset(x, y, extraCost int32) {
	for i := range p.totals {
		p.totals[i] = math.MaxInt32
	}
	clear(p.open[:])
	p.cur = 1
	p.closed = 0
	p.nodes[0] = node{parent: noNode, x: x, y: y, c: extraCost}
	p.table[0] = pack(x, y)
	p.totals[0] = 0
	p.setOpen(0)
}

func (p *nodePool) isOpen(i int32) bool { return p.open[i>>6]&(1<<(uint(i)&63)) != 0 }
func (p *nodePool) setOpen(i int32)     { p.open[i>>6] |= 1 << (uint(i) & 63) }
func (p *nodePool) clearOpen(i int32)   { p.open[i>>6] &^= 1 << (uint(i) & 63) }

// createOpen appends a node. It fails once the pool is full.
func (p *nodePool) createOpen(parent, x, y, f, heuristic, extraCost int32) bool {
	if p.cur >= MaxNodes {
		return false
	}
	i := p.cur
	p.cur++
	p.nodes[i] = node{parent: parent, x: x, y: y, f: f, g: heuristic, c: extraCost}
	p.table[i] = pack(x, y)
	p.totals[i] = f + heuristic
	p.setOpen(i)
	return true
}

func (p *nodePool) close(i int32) {
	p.totals[i] = math.MaxInt32
	p.clearOpen(i)
	p.closed++
}

// reopen puts a node back on the open set after its cost dropped.
func (p *nodePool) reopen(i int32) {
	p.totals[i] = p.nodes[i].f + p.nodes[i].g
	if !p.isOpen(i) {
		p.closed--
	}
	p.setOpen(i)
}

// lookup returns the index of the node at x, y or noNode. The start node
// is checked last, it is rarely somebody's neighbour.
func (p *nodePool) lookup(x, y int32) int32 {
	key := pack(x, y)
	for i := int32(1); i < p.cur; i++ {
		if p.table[i] == key {
			return i
		}
	}
	if p.table[0] == key {
		return 0
	}
	return noNode
}

// bestScalar is the reference best-node scan: the open node with the
// lowest f+g, ties going to the lowest index.
func (p *nodePool) bestScalar() int32 {
	best := noNode
	bestTotal := int32(math.MaxInt32)
	for i := int32(0); i < p.cur; i++ {
		if !p.isOpen(i) {
			continue
		}
		n := &p.nodes[i]
		if total := n.f + n.g; total < bestTotal {
			best, bestTotal = i, total
		}
	}
	return best
}

const lanes = 8

// best scans totals in eight independent lanes and reduces them at the
// end. It returns exactly what bestScalar returns.
func (p *nodePool) best() int32 {
	var minVal [lanes]int32
	var minIdx [lanes]int32
	for l := 0; l < lanes; l++ {
		minVal[l] = p.totals[l]
		minIdx[l] = int32(l)
	}
	for base := int32(lanes); base < p.cur; base += lanes {
		chunk := (*[lanes]int32)(p.totals[base : base+lanes])
		for l := 0; l < lanes; l++ {
			if v := chunk[l]; v < minVal[l] {
				minVal[l] = v
				minIdx[l] = base + int32(l)
			}
		}
	}

	best, bestTotal := minIdx[0], minVal[0]
	for l := 1; l < lanes; l++ {
		v, i := minVal[l], minIdx[l]
		if v < bestTotal || (v == bestTotal && i < best) {
			best, bestTotal = i, v
		}
	}
	if bestTotal == math.MaxInt32 {
		return noNode
	}
	return best
}
