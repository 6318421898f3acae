package huffbit

import (
	"io"

	"github.com/pkg/errors"
)

// headerEnd is the prefix of the last header line of a bitstream file.
// Everything up to and including it is carried verbatim; the binary payload
// follows.
const headerEnd = "Bits:"

// wordBits is the width of one payload word; each word splits into four
// 8-bit symbols, reducing the symbol space the codec has to cover.
const wordBits = 32

// SplitWord splits one 32-bit payload word into four symbols, most
// significant byte first.
func SplitWord(w uint32) [4]byte {
	return [4]byte{byte(w >> 24), byte(w >> 16), byte(w >> 8), byte(w)}
}

// MergeWord reassembles the payload word from four symbols.
func MergeWord(b [4]byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// ParseBitstream reads a bitstream file from src: verbatim header lines
// through the first line starting with "Bits:", then lines of binary
// digits. Payload bits are packed most-significant-first into 32-bit words,
// the final word zero-padded, and every word split into four symbols.
// Characters other than '0' and '1' in the payload are ignored, matching
// the reference parser.
func ParseBitstream(src Stream) (header []string, symbols []byte, err error) {
	var word uint32
	bits := 0
	inHeader := true

	for {
		line, err := src.ReadLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, errors.Wrap(err, "")
		}
		if inHeader {
			header = append(header, line)
			if len(line) >= len(headerEnd) && line[:len(headerEnd)] == headerEnd {
				inHeader = false
			}
			continue
		}
		for i := 0; i < len(line); i++ {
			switch line[i] {
			case '0':
				word <<= 1
			case '1':
				word = word<<1 | 1
			default:
				continue
			}
			bits++
			if bits == wordBits {
				b := SplitWord(word)
				symbols = append(symbols, b[:]...)
				word, bits = 0, 0
			}
		}
	}
	if bits > 0 {
		word <<= uint(wordBits - bits)
		b := SplitWord(word)
		symbols = append(symbols, b[:]...)
	}
	return header, symbols, nil
}

// MergeSymbols regroups decoded symbols four at a time into 32-bit words
// rendered as 32-character binary lines. The compressor pads its payload to
// a whole word, so a trailing partial group marks corrupt input.
func MergeSymbols(symbols []byte) ([]string, error) {
	if len(symbols)%4 != 0 {
		return nil, errors.Wrapf(ErrMalformedRecord, "decoded stream has %d symbols, not a multiple of 4", len(symbols))
	}
	lines := make([]string, 0, len(symbols)/4)
	for i := 0; i < len(symbols); i += 4 {
		w := MergeWord([4]byte{symbols[i], symbols[i+1], symbols[i+2], symbols[i+3]})
		lines = append(lines, FormatBits(w, wordBits))
	}
	return lines, nil
}
