package huffbit

import (
	"container/heap"
	"fmt"

	"github.com/larsko/huffbit/engine"
)

// ErrCodeTooLong is returned when the frequency distribution forces a code
// deeper than the 16-bit ceiling of the encoding transaction.
var ErrCodeTooLong = fmt.Errorf("huffman code exceeds %d bits", engine.MaxCodeLen)

// ErrEmptyInput is returned when a codebook is requested for a frequency
// table with no nonzero entry.
var ErrEmptyInput = fmt.Errorf("no symbols recorded")

// A Codebook maps every symbol of the alphabet to its codeword.
// Entries with a zero length denote symbols absent from the stream.
type Codebook [numSymbols]engine.Code

// Lookup returns the codeword for symbol.
func (b *Codebook) Lookup(symbol byte) engine.Code {
	return b[symbol]
}

// Len returns the number of symbols with a loaded codeword.
func (b *Codebook) Len() int {
	n := 0
	for _, c := range b {
		if c.Len > 0 {
			n++
		}
	}
	return n
}

// treeNode is one arena slot of the frequency-weighted merge tree.
// A leaf has left == -1; internal nodes own both children exclusively.
// The arena is append-only and the tree is never mutated after construction.
type treeNode struct {
	freq        uint64
	symbol      byte
	left, right int32
}

func (n treeNode) isLeaf() bool { return n.left < 0 }

// nodeHeap orders arena indexes by frequency. Equal frequencies fall back to
// the arena index, which is the insertion order: leaves in ascending symbol
// order first, then merged nodes in creation order. This keeps the built
// code deterministic and reproducible across runs.
type nodeHeap struct {
	arena []treeNode
	idx   []int32
}

func (h *nodeHeap) Len() int { return len(h.idx) }

func (h *nodeHeap) Less(i, j int) bool {
	a, b := h.arena[h.idx[i]], h.arena[h.idx[j]]
	if a.freq != b.freq {
		return a.freq < b.freq
	}
	return h.idx[i] < h.idx[j]
}

func (h *nodeHeap) Swap(i, j int) { h.idx[i], h.idx[j] = h.idx[j], h.idx[i] }

func (h *nodeHeap) Push(x interface{}) { h.idx = append(h.idx, x.(int32)) }

func (h *nodeHeap) Pop() interface{} {
	last := h.idx[len(h.idx)-1]
	h.idx = h.idx[:len(h.idx)-1]
	return last
}

// BuildCodebook derives the canonical prefix-free code for the recorded
// frequencies. The two lowest-frequency nodes are merged repeatedly, the
// first popped becoming the left (0) child and the second the right (1)
// child. A single distinct symbol yields the one-entry codebook {0, len 1}.
// Frequencies aggregate in 64 bits, so saturated counters cannot overflow
// while merging.
func BuildCodebook(t *FreqTable) (Codebook, error) {
	var book Codebook

	arena := make([]treeNode, 0, 2*numSymbols)
	for sym := 0; sym < numSymbols; sym++ {
		if t.counts[sym] > 0 {
			arena = append(arena, treeNode{
				freq:   uint64(t.counts[sym]),
				symbol: byte(sym),
				left:   -1,
				right:  -1,
			})
		}
	}
	if len(arena) == 0 {
		return book, ErrEmptyInput
	}

	h := &nodeHeap{arena: arena, idx: make([]int32, len(arena))}
	for i := range h.idx {
		h.idx[i] = int32(i)
	}
	heap.Init(h)

	for h.Len() > 1 {
		left := heap.Pop(h).(int32)
		right := heap.Pop(h).(int32)
		h.arena = append(h.arena, treeNode{
			freq:  h.arena[left].freq + h.arena[right].freq,
			left:  left,
			right: right,
		})
		heap.Push(h, int32(len(h.arena)-1))
	}
	root := h.idx[0]
	arena = h.arena

	if arena[root].isLeaf() {
		// Single distinct symbol: no traversal edges exist, so the path
		// would be empty. Emit a 1-bit code instead of a 0-length one to
		// keep the encoded stream well formed.
		book[arena[root].symbol] = engine.Code{Bits: 0, Len: 1}
		return book, nil
	}

	var assign func(node int32, bits uint32, depth int) error
	assign = func(node int32, bits uint32, depth int) error {
		n := arena[node]
		if n.isLeaf() {
			book[n.symbol] = engine.Code{Bits: uint16(bits), Len: uint8(depth)}
			return nil
		}
		if depth == engine.MaxCodeLen {
			return ErrCodeTooLong
		}
		if err := assign(n.left, bits<<1, depth+1); err != nil {
			return err
		}
		return assign(n.right, bits<<1|1, depth+1)
	}
	if err := assign(root, 0, 0); err != nil {
		return Codebook{}, err
	}
	return book, nil
}
