package huffbit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/larsko/huffbit/engine"
)

// ErrMalformedRecord is returned when a stored table or stream line fails
// its fixed-width or alphabet check during decompression.
var ErrMalformedRecord = fmt.Errorf("malformed record")

// Fixed field widths of the stored text representations.
const (
	SymbolBits = 8  // symbol field
	CodeBits   = 16 // codeword field
	LenBits    = 5  // length field
)

// The codebook table is introduced by a marker line and a dash rule,
// matching the layout the reference controller writes and scans for.
const (
	tableMarker = "Symbol       Codeword         Length"
	tableRule   = "--------------------------------------"
)

// Sentinel lines of the explicit framing mode. They replace the structural
// segment-boundary heuristic of the reference format.
const (
	sentinelCodebook = "#codebook"
	sentinelStream   = "#stream"
)

// FormatBits renders v as a fixed-width binary-digit string.
func FormatBits(v uint32, width int) string {
	b := make([]byte, width)
	for i := 0; i < width; i++ {
		if v>>(width-1-i)&1 == 1 {
			b[i] = '1'
		} else {
			b[i] = '0'
		}
	}
	return string(b)
}

// ParseBits parses a binary-digit string of exactly width characters.
func ParseBits(s string, width int) (uint32, error) {
	if len(s) != width {
		return 0, errors.Wrapf(ErrMalformedRecord, "field %q is not %d bits wide", s, width)
	}
	var v uint32
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '0':
			v <<= 1
		case '1':
			v = v<<1 | 1
		default:
			return 0, errors.Wrapf(ErrMalformedRecord, "field %q has non-binary digit", s)
		}
	}
	return v, nil
}

func isBinary(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] != '0' && s[i] != '1' {
			return false
		}
	}
	return true
}

// Segments are the three logical parts of a bundle, as text lines.
type Segments struct {
	Header []string
	Table  []string
	Stream []string
}

// TableLines renders the codebook as its stored table: marker line, dash
// rule, then one record per loaded symbol in ascending symbol order.
func (b *Codebook) TableLines() []string {
	lines := []string{tableMarker, tableRule}
	for sym := 0; sym < numSymbols; sym++ {
		c := b[sym]
		if c.Len == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("%-10s %-20s %2d",
			FormatBits(uint32(sym), SymbolBits), c.String(), c.Len))
	}
	return lines
}

// ParseTable reconstructs a codebook from stored table lines. The marker
// line and dash rule are skipped; every remaining nonempty line must be a
// (symbol, codeword, length) record with an 8-bit binary symbol, a binary
// codeword of at most 16 bits, and a decimal length equal to the codeword's
// width.
func ParseTable(lines []string) (Codebook, error) {
	var book Codebook
	n := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed == tableMarker || strings.HasPrefix(trimmed, "Symbol") || strings.HasPrefix(trimmed, "-") {
			continue
		}
		fields := strings.Fields(trimmed)
		if len(fields) != 3 {
			return Codebook{}, errors.Wrapf(ErrMalformedRecord, "table line %q does not have 3 fields", line)
		}
		sym, err := ParseBits(fields[0], SymbolBits)
		if err != nil {
			return Codebook{}, err
		}
		if !isBinary(fields[1]) || len(fields[1]) > engine.MaxCodeLen {
			return Codebook{}, errors.Wrapf(ErrMalformedRecord, "codeword %q", fields[1])
		}
		length, err := strconv.Atoi(fields[2])
		if err != nil || length != len(fields[1]) {
			return Codebook{}, errors.Wrapf(ErrMalformedRecord, "length %q does not match codeword %q", fields[2], fields[1])
		}
		code, err := ParseStreamLine(fields[1])
		if err != nil {
			return Codebook{}, err
		}
		book[byte(sym)] = code
		n++
	}
	if n == 0 {
		return Codebook{}, errors.Wrap(ErrMalformedRecord, "codebook table has no records")
	}
	return book, nil
}

// ParseStreamLine parses one trimmed codeword line of the encoded stream.
func ParseStreamLine(s string) (engine.Code, error) {
	if !isBinary(s) || len(s) > engine.MaxCodeLen {
		return engine.Code{}, errors.Wrapf(ErrMalformedRecord, "stream line %q", s)
	}
	v, _ := ParseBits(s, len(s))
	return engine.Code{Bits: uint16(v), Len: uint8(len(s))}, nil
}

// WriteBundle concatenates the three segments into one byte sequence, in
// fixed order: header, codebook table, encoded stream. With sentinel set,
// explicit boundary lines are inserted so SplitBundle needs no structural
// guessing; without it the layout is the reference one, recoverable through
// the marker/token heuristic.
func WriteBundle(seg Segments, sentinel bool) []byte {
	var sb strings.Builder
	write := func(lines []string) {
		for _, l := range lines {
			sb.WriteString(l)
			sb.WriteByte('\n')
		}
	}
	write(seg.Header)
	if sentinel {
		sb.WriteString(sentinelCodebook)
		sb.WriteByte('\n')
	}
	write(seg.Table)
	if sentinel {
		sb.WriteString(sentinelStream)
		sb.WriteByte('\n')
	}
	write(seg.Stream)
	return []byte(sb.String())
}

// SplitBundle recovers the three segments of a bundle. Sentinel lines are
// honored when present; otherwise the reference structural cues apply: the
// codebook starts at the first line with the table marker prefix, and the
// encoded stream at the first subsequent line that is a single bare binary
// token rather than a 3-field record.
func SplitBundle(data []byte) (Segments, error) {
	var seg Segments
	lines := strings.Split(string(data), "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	const (
		inHeader = iota
		inTable
		inStream
	)
	state := inHeader
	for _, raw := range lines {
		line := strings.TrimSuffix(raw, "\r")
		switch state {
		case inHeader:
			if line == sentinelCodebook {
				state = inTable
				continue
			}
			if strings.HasPrefix(line, "Symbol") {
				state = inTable
				seg.Table = append(seg.Table, line)
				continue
			}
			seg.Header = append(seg.Header, line)
		case inTable:
			if line == sentinelStream {
				state = inStream
				continue
			}
			if line == "" {
				continue
			}
			if fields := strings.Fields(line); len(fields) == 1 && isBinary(fields[0]) {
				state = inStream
				seg.Stream = append(seg.Stream, line)
				continue
			}
			seg.Table = append(seg.Table, line)
		case inStream:
			if line == "" {
				continue
			}
			seg.Stream = append(seg.Stream, line)
		}
	}
	if state == inHeader {
		return Segments{}, errors.Wrap(ErrMalformedRecord, "bundle has no codebook segment")
	}
	return seg, nil
}
