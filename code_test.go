package huffbit

import (
	"testing"

	"github.com/larsko/huffbit/engine"
)

func TestBuildCodebookScenario(t *testing.T) {
	// [0x41 0x41 0x41 0x42 0x42 0x43]: the most frequent symbol gets the
	// shortest code and the tie between the 0x41 leaf and the merged node
	// resolves by insertion order.
	freq, err := NewFreqTable(DefaultCounterWidth)
	if err != nil {
		t.Fatalf("%v", err)
	}
	for _, sym := range []byte{0x41, 0x41, 0x41, 0x42, 0x42, 0x43} {
		if err := freq.Record(int(sym)); err != nil {
			t.Fatalf("%v", err)
		}
	}
	book, err := BuildCodebook(freq)
	if err != nil {
		t.Fatalf("%v", err)
	}

	want := map[byte]engine.Code{
		0x41: {Bits: 0, Len: 1}, // "0"
		0x43: {Bits: 2, Len: 2}, // "10"
		0x42: {Bits: 3, Len: 2}, // "11"
	}
	for sym, code := range want {
		if got := book.Lookup(sym); got != code {
			t.Errorf("symbol %02x: got %v (%q), want %v", sym, got, got.String(), code)
		}
	}
	if got := book.Len(); got != 3 {
		t.Errorf("codebook has %d entries, want 3", got)
	}
	for sym := 0; sym < 256; sym++ {
		if _, ok := want[byte(sym)]; !ok && book[sym].Len != 0 {
			t.Errorf("unexpected entry for symbol %02x", sym)
		}
	}
}

func TestBuildCodebookPrefixFree(t *testing.T) {
	freq, err := NewFreqTable(DefaultCounterWidth)
	if err != nil {
		t.Fatalf("%v", err)
	}
	// A lumpy distribution over the full alphabet, shallow enough to stay
	// inside the 16-bit ceiling.
	for sym := 0; sym < 256; sym++ {
		freq.counts[sym] = uint32(1 + sym%4)
	}
	book, err := BuildCodebook(freq)
	if err != nil {
		t.Fatalf("%v", err)
	}

	for a := 0; a < 256; a++ {
		ca := book[a]
		if ca.Len > engine.MaxCodeLen {
			t.Fatalf("symbol %02x: length %d exceeds %d", a, ca.Len, engine.MaxCodeLen)
		}
		if ca.Len == 0 {
			t.Fatalf("symbol %02x: missing codeword", a)
		}
		for b := a + 1; b < 256; b++ {
			cb := book[b]
			if ca.Prefix(cb) || cb.Prefix(ca) || ca == cb {
				t.Fatalf("codewords for %02x (%s) and %02x (%s) are not prefix-free",
					a, ca.String(), b, cb.String())
			}
		}
	}
}

func TestBuildCodebookDeterministic(t *testing.T) {
	freq, err := NewFreqTable(DefaultCounterWidth)
	if err != nil {
		t.Fatalf("%v", err)
	}
	for sym := 0; sym < 256; sym++ {
		freq.counts[sym] = uint32(sym % 7)
	}
	first, err := BuildCodebook(freq)
	if err != nil {
		t.Fatalf("%v", err)
	}
	second, err := BuildCodebook(freq)
	if err != nil {
		t.Fatalf("%v", err)
	}
	if first != second {
		t.Fatalf("building twice from the same table gave different codebooks")
	}
}

func TestBuildCodebookSingleSymbol(t *testing.T) {
	freq, err := NewFreqTable(DefaultCounterWidth)
	if err != nil {
		t.Fatalf("%v", err)
	}
	for i := 0; i < 10; i++ {
		if err := freq.Record(0x7F); err != nil {
			t.Fatalf("%v", err)
		}
	}
	book, err := BuildCodebook(freq)
	if err != nil {
		t.Fatalf("%v", err)
	}
	if got := book.Lookup(0x7F); got != (engine.Code{Bits: 0, Len: 1}) {
		t.Fatalf("degenerate codebook entry: got %v, want {0 1}", got)
	}
	if got := book.Len(); got != 1 {
		t.Fatalf("degenerate codebook has %d entries, want 1", got)
	}
}

func TestBuildCodebookTooLong(t *testing.T) {
	// Fibonacci frequencies force a fully skewed tree: 18 leaves reach
	// depth 17, past the 16-bit ceiling.
	freq, err := NewFreqTable(DefaultCounterWidth)
	if err != nil {
		t.Fatalf("%v", err)
	}
	a, b := uint32(1), uint32(1)
	for sym := 0; sym < 18; sym++ {
		freq.counts[sym] = a
		a, b = b, a+b
	}
	if _, err := BuildCodebook(freq); err != ErrCodeTooLong {
		t.Fatalf("got %v, want ErrCodeTooLong", err)
	}
}

func TestBuildCodebookEmpty(t *testing.T) {
	freq, err := NewFreqTable(DefaultCounterWidth)
	if err != nil {
		t.Fatalf("%v", err)
	}
	if _, err := BuildCodebook(freq); err != ErrEmptyInput {
		t.Fatalf("got %v, want ErrEmptyInput", err)
	}
}
