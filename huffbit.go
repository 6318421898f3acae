// Package huffbit compresses bitstream files losslessly with a Huffman code
// and wraps the result in a reversible byte obfuscation. The compressed
// artifact bundles three segments in fixed order: the verbatim file header,
// the codebook table, and the encoded symbol stream.
//
// Below is an example of compressing a bitstream file and restoring it:
//
//	go run compress/main.go design.rbt design.huf
//	go run decompress/main.go design.huf restored.rbt
//	diff design.rbt restored.rbt
//
// Symbol encoding and decoding run against transaction devices modeled in
// package engine; every stage of the pipeline drains fully before the next
// one starts.
package huffbit

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/larsko/huffbit/engine"
)

// progressEvery is the symbol interval between progress log records.
const progressEvery = 500000

// A loader accepts one codebook entry per load transaction.
type loader interface {
	Load(symbol byte, code engine.Code) error
}

// loadCodebook installs every loaded entry of book, one transaction at a
// time, observing each acknowledge before offering the next entry.
func loadCodebook(l loader, book *Codebook) error {
	for sym := 0; sym < numSymbols; sym++ {
		code := book[sym]
		if code.Len == 0 {
			continue
		}
		if err := l.Load(byte(sym), code); err != nil {
			return errors.Wrapf(err, "loading symbol %08b", sym)
		}
	}
	return nil
}

// Compress reads the bitstream named in from store, compresses it, and
// writes the obfuscated bundle to the stream named out.
func Compress(store Store, in, out string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "")
	}
	logger := cfg.logger()
	start := time.Now()

	src, err := store.Open(in, ModeRead)
	if err != nil {
		return errors.Wrap(err, "")
	}
	header, symbols, err := ParseBitstream(src)
	src.Close()
	if err != nil {
		return errors.Wrap(err, "")
	}
	if len(symbols) == 0 {
		return errors.Errorf("%s has no payload bits", in)
	}
	logger.Info("parsed bitstream", "input", in, "headerLines", len(header), "symbols", len(symbols))

	freq, err := NewFreqTable(cfg.CounterWidth)
	if err != nil {
		return errors.Wrap(err, "")
	}
	for _, sym := range symbols {
		if err := freq.Record(int(sym)); err != nil {
			return errors.Wrap(err, "")
		}
	}
	logger.Info("counted frequencies", "distinctSymbols", freq.Distinct())

	book, err := BuildCodebook(freq)
	if err != nil {
		return errors.Wrap(err, "")
	}

	enc := engine.NewEncoder(time.Duration(cfg.AckTimeout))
	defer enc.Close()
	if err := loadCodebook(enc, &book); err != nil {
		return err
	}
	logger.Info("loaded codebook", "entries", book.Len())

	stream := make([]string, 0, len(symbols))
	for i, sym := range symbols {
		code, err := enc.Encode(sym)
		if err != nil {
			return errors.Wrapf(err, "encoding symbol %d", i)
		}
		if code.Len == 0 {
			// Cannot happen when the codebook was built from this same
			// stream's frequencies; a hit here means the table and the
			// stream are out of step.
			return errors.Errorf("symbol %08b has no codeword", sym)
		}
		stream = append(stream, code.String())
		if (i+1)%progressEvery == 0 {
			logger.Info("encoding", "symbols", i+1)
		}
	}

	bundle := WriteBundle(Segments{Header: header, Table: book.TableLines(), Stream: stream}, cfg.Sentinel)
	MaskBytes(bundle, cfg.Key)
	if err := writeStream(store, out, bundle); err != nil {
		return err
	}

	if cfg.KeepArtifacts {
		if err := writeCompressArtifacts(store, out, freq, &book); err != nil {
			return err
		}
	}
	logger.Info("compression done",
		"output", out, "symbols", len(symbols), "bundleBytes", len(bundle),
		"elapsed", time.Since(start))
	return nil
}

// Decompress reads the obfuscated bundle named in from store and
// reconstructs the original bitstream into the stream named out.
func Decompress(store Store, in, out string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "")
	}
	logger := cfg.logger()
	start := time.Now()

	src, err := store.Open(in, ModeRead)
	if err != nil {
		return errors.Wrap(err, "")
	}
	bundle, err := src.ReadAll()
	src.Close()
	if err != nil {
		return errors.Wrap(err, "")
	}
	UnmaskBytes(bundle, cfg.Key)

	seg, err := SplitBundle(bundle)
	if err != nil {
		return errors.Wrap(err, "")
	}
	book, err := ParseTable(seg.Table)
	if err != nil {
		return errors.Wrap(err, "")
	}
	logger.Info("recovered bundle", "input", in,
		"headerLines", len(seg.Header), "codebookEntries", book.Len(), "streamLines", len(seg.Stream))

	dec := engine.NewDecoder(time.Duration(cfg.AckTimeout))
	defer dec.Close()
	if err := loadCodebook(dec, &book); err != nil {
		return err
	}

	symbols := make([]byte, 0, len(seg.Stream))
	for i, line := range seg.Stream {
		code, err := ParseStreamLine(line)
		if err != nil {
			return errors.Wrapf(err, "stream line %d", i)
		}
		sym, err := dec.Decode(code)
		if err != nil {
			return errors.Wrapf(err, "decoding stream line %d", i)
		}
		symbols = append(symbols, sym)
		if (i+1)%progressEvery == 0 {
			logger.Info("decoding", "symbols", i+1)
		}
	}

	words, err := MergeSymbols(symbols)
	if err != nil {
		return errors.Wrap(err, "")
	}
	restored := make([]string, 0, len(seg.Header)+len(words))
	restored = append(restored, seg.Header...)
	restored = append(restored, words...)
	if err := writeLines(store, out, restored); err != nil {
		return err
	}

	if cfg.KeepArtifacts {
		if err := writeTableArtifacts(store, out, &book); err != nil {
			return err
		}
	}
	logger.Info("decompression done",
		"output", out, "symbols", len(symbols), "words", len(words),
		"elapsed", time.Since(start))
	return nil
}

// writeStream replaces the named stream with data.
func writeStream(store Store, name string, data []byte) error {
	dst, err := store.Open(name, ModeWrite)
	if err != nil {
		return errors.Wrap(err, "")
	}
	if err := dst.WriteBytes(data); err != nil {
		dst.Close()
		return errors.Wrap(err, "")
	}
	return errors.Wrap(dst.Close(), "")
}

func writeLines(store Store, name string, lines []string) error {
	var buf []byte
	for _, l := range lines {
		buf = append(buf, l...)
		buf = append(buf, '\n')
	}
	return writeStream(store, name, buf)
}

// writeCompressArtifacts persists the frequency report and the fixed-width
// codebook helper streams next to the main output, mirroring the helper
// files of the reference controller.
func writeCompressArtifacts(store Store, out string, freq *FreqTable, book *Codebook) error {
	report := []string{"Symbol        Frequency", "-------------------------"}
	for sym := 0; sym < numSymbols; sym++ {
		if n := freq.Count(byte(sym)); n > 0 {
			report = append(report, fmt.Sprintf("%s        %d", FormatBits(uint32(sym), SymbolBits), n))
		}
	}
	if err := writeLines(store, out+".freq", report); err != nil {
		return err
	}
	return writeTableArtifacts(store, out, book)
}

// writeTableArtifacts persists the codebook in its three fixed-width forms:
// 8-bit symbols, 16-bit codewords, 5-bit lengths, one field per line.
func writeTableArtifacts(store Store, out string, book *Codebook) error {
	var syms, codes, lens []string
	for sym := 0; sym < numSymbols; sym++ {
		c := book[sym]
		if c.Len == 0 {
			continue
		}
		syms = append(syms, FormatBits(uint32(sym), SymbolBits))
		codes = append(codes, FormatBits(uint32(c.Bits), CodeBits))
		lens = append(lens, FormatBits(uint32(c.Len), LenBits))
	}
	if err := writeLines(store, out+".symbols", syms); err != nil {
		return err
	}
	if err := writeLines(store, out+".codewords", codes); err != nil {
		return err
	}
	return writeLines(store, out+".lengths", lens)
}
