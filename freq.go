package huffbit

import (
	"fmt"
)

// ErrSymbolOutOfRange is returned when a symbol outside the 0-255 alphabet is recorded.
var ErrSymbolOutOfRange = fmt.Errorf("symbol out of range")

// DefaultCounterWidth is the width in bits of a frequency counter,
// matching the 24-bit counter registers of the hardware frequency counter.
const DefaultCounterWidth = 24

// A FreqTable tallies per-symbol occurrence counts over the fixed 256-symbol alphabet.
// Counters saturate at their maximum representable value instead of wrapping.
// The zero value is not usable; use NewFreqTable.
type FreqTable struct {
	counts [numSymbols]uint32
	max    uint32
}

// numSymbols is the size of the codec's fixed alphabet.
const numSymbols = 256

// NewFreqTable returns a frequency table whose counters are width bits wide.
// Width must be between 1 and 32.
func NewFreqTable(width int) (*FreqTable, error) {
	if width < 1 || width > 32 {
		return nil, fmt.Errorf("counter width %d outside 1-32", width)
	}
	var max uint32
	if width == 32 {
		max = ^uint32(0)
	} else {
		max = (1 << width) - 1
	}
	return &FreqTable{max: max}, nil
}

// Record increments the count for symbol, saturating at the counter maximum.
// Symbols outside 0-255 are rejected with ErrSymbolOutOfRange.
func (t *FreqTable) Record(symbol int) error {
	if symbol < 0 || symbol >= numSymbols {
		return ErrSymbolOutOfRange
	}
	if t.counts[symbol] < t.max {
		t.counts[symbol]++
	}
	return nil
}

// Count returns the recorded count for symbol, or 0 for symbols never observed.
func (t *FreqTable) Count(symbol byte) uint32 {
	return t.counts[symbol]
}

// Distinct returns the number of symbols with a nonzero count.
func (t *FreqTable) Distinct() int {
	n := 0
	for _, c := range t.counts {
		if c > 0 {
			n++
		}
	}
	return n
}
