package huffbit

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
)

func openRead(t *testing.T, store *MemStore, name string) Stream {
	t.Helper()
	s, err := store.Open(name, ModeRead)
	if err != nil {
		t.Fatalf("%v", err)
	}
	return s
}

func TestSplitMergeWord(t *testing.T) {
	const w = uint32(0xA1B2C3D4)
	b := SplitWord(w)
	if b != [4]byte{0xA1, 0xB2, 0xC3, 0xD4} {
		t.Fatalf("SplitWord = %v", b)
	}
	if got := MergeWord(b); got != w {
		t.Fatalf("MergeWord = %08x, want %08x", got, w)
	}
}

func TestParseBitstream(t *testing.T) {
	store := NewMemStore()
	store.Put("in.rbt", []byte(
		"Design name: demo.ncd\n"+
			"Bits: 64\n"+
			FormatBits(0xA1B2C3D4, 32)+"\n"+
			FormatBits(0x00FF10E0, 32)+"\n"))

	header, symbols, err := ParseBitstream(openRead(t, store, "in.rbt"))
	if err != nil {
		t.Fatalf("%v", err)
	}
	wantHeader := []string{"Design name: demo.ncd", "Bits: 64"}
	if len(header) != len(wantHeader) || header[0] != wantHeader[0] || header[1] != wantHeader[1] {
		t.Errorf("header = %v, want %v", header, wantHeader)
	}
	want := []byte{0xA1, 0xB2, 0xC3, 0xD4, 0x00, 0xFF, 0x10, 0xE0}
	if !bytes.Equal(symbols, want) {
		t.Errorf("symbols = %x, want %x", symbols, want)
	}
}

func TestParseBitstreamPadding(t *testing.T) {
	// 8 leftover bits pad into a full zero-filled word.
	store := NewMemStore()
	store.Put("in.rbt", []byte("Bits: 8\n10100101\n"))

	_, symbols, err := ParseBitstream(openRead(t, store, "in.rbt"))
	if err != nil {
		t.Fatalf("%v", err)
	}
	want := []byte{0xA5, 0x00, 0x00, 0x00}
	if !bytes.Equal(symbols, want) {
		t.Errorf("symbols = %x, want %x", symbols, want)
	}
}

func TestParseBitstreamIgnoresNonBits(t *testing.T) {
	store := NewMemStore()
	store.Put("in.rbt", []byte("Bits: 32\n1010 0101 1111 0000 0000 1111 0101 1010\n"))

	_, symbols, err := ParseBitstream(openRead(t, store, "in.rbt"))
	if err != nil {
		t.Fatalf("%v", err)
	}
	want := []byte{0xA5, 0xF0, 0x0F, 0x5A}
	if !bytes.Equal(symbols, want) {
		t.Errorf("symbols = %x, want %x", symbols, want)
	}
}

func TestParseBitstreamNoPayload(t *testing.T) {
	store := NewMemStore()
	store.Put("in.rbt", []byte("Design name: demo.ncd\nBits: 0\n"))

	header, symbols, err := ParseBitstream(openRead(t, store, "in.rbt"))
	if err != nil {
		t.Fatalf("%v", err)
	}
	if len(header) != 2 || len(symbols) != 0 {
		t.Errorf("header %v symbols %x", header, symbols)
	}
}

func TestMergeSymbols(t *testing.T) {
	lines, err := MergeSymbols([]byte{0xA1, 0xB2, 0xC3, 0xD4})
	if err != nil {
		t.Fatalf("%v", err)
	}
	if len(lines) != 1 || lines[0] != FormatBits(0xA1B2C3D4, 32) {
		t.Errorf("lines = %v", lines)
	}

	if _, err := MergeSymbols([]byte{0x01, 0x02, 0x03}); !errors.Is(err, ErrMalformedRecord) {
		t.Errorf("partial group: got %v, want ErrMalformedRecord", err)
	}
}
