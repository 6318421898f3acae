// Package engine models the codec's transaction devices: the codebook load
// channel, the symbol encoder, and the codeword decoder.
//
// Each device is served by a single goroutine behind a request channel of
// capacity one, which is the software rendering of the hardware handshake:
// at most one transaction is in flight, the caller blocks until the device
// acknowledges by replying, and a reply must be observed before the next
// request may be issued. A device that does not acknowledge within the
// configured budget aborts the transaction with ErrTransactionTimeout.
package engine

import (
	"fmt"
	"sync"
	"time"
)

// MaxCodeLen is the fixed-width ceiling of a codeword in bits.
const MaxCodeLen = 16

// DefaultAckTimeout bounds the wait for a device acknowledge.
// It matches the reference polling budget of 10000 polls at 10us.
const DefaultAckTimeout = 100 * time.Millisecond

// ErrTransactionTimeout is returned when a device acknowledge is not observed within the budget.
var ErrTransactionTimeout = fmt.Errorf("transaction timeout waiting for device acknowledge")

// ErrUnknownCodeword is returned when a decode query matches no loaded table entry.
var ErrUnknownCodeword = fmt.Errorf("no table entry for codeword")

// ErrCodeTooLong is returned when a load offers a codeword longer than MaxCodeLen bits.
var ErrCodeTooLong = fmt.Errorf("codeword exceeds %d bits", MaxCodeLen)

// A Code is a variable-length codeword. Bits holds the codeword value with
// its first bit at position Len-1 (MSB-first within the length); Len is the
// number of significant bits. A zero Len marks a symbol absent from the table.
type Code struct {
	Bits uint16
	Len  uint8
}

// String renders the codeword as its trimmed binary-digit form.
func (c Code) String() string {
	if c.Len == 0 {
		return ""
	}
	b := make([]byte, c.Len)
	for i := 0; i < int(c.Len); i++ {
		if c.Bits>>(int(c.Len)-1-i)&1 == 1 {
			b[i] = '1'
		} else {
			b[i] = '0'
		}
	}
	return string(b)
}

// Prefix reports whether c is a strict bit-prefix of d.
func (c Code) Prefix(d Code) bool {
	if c.Len == 0 || c.Len >= d.Len {
		return false
	}
	return d.Bits>>(d.Len-c.Len) == c.Bits
}

type reqKind int

const (
	reqLoad reqKind = iota
	reqEncode
	reqDecode
)

type request struct {
	kind   reqKind
	symbol byte
	code   Code
	reply  chan response
}

type response struct {
	symbol byte
	code   Code
	err    error
}

// A device owns a 256-entry table and serves load and lookup transactions
// sequentially. The table is touched only by the serve goroutine, so a
// transaction can never observe a half-installed entry.
type device struct {
	req     chan request
	done    chan struct{}
	stopped chan struct{}
	stop    sync.Once
	timeout time.Duration
}

func newDevice(timeout time.Duration) *device {
	if timeout <= 0 {
		timeout = DefaultAckTimeout
	}
	d := &device{
		req:     make(chan request, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		timeout: timeout,
	}
	return d
}

// transact issues one request and waits for the acknowledge.
func (d *device) transact(r request) (response, error) {
	r.reply = make(chan response, 1)
	deadline := time.NewTimer(d.timeout)
	defer deadline.Stop()

	select {
	case d.req <- r:
	case <-deadline.C:
		return response{}, ErrTransactionTimeout
	}
	select {
	case resp := <-r.reply:
		return resp, resp.err
	case <-deadline.C:
		return response{}, ErrTransactionTimeout
	}
}

// Close stops the device and waits for its serve loop to exit.
// Transactions issued after Close return ErrTransactionTimeout.
func (d *device) Close() {
	d.stop.Do(func() { close(d.done) })
	<-d.stopped
}

// An Encoder is the symbol-encode device. Entries are installed one at a
// time over the load channel; Encode then maps a symbol to its codeword.
type Encoder struct {
	*device
	table [numSymbols]Code
}

const numSymbols = 256

// NewEncoder starts an encoder device. A timeout of zero selects DefaultAckTimeout.
func NewEncoder(timeout time.Duration) *Encoder {
	e := &Encoder{device: newDevice(timeout)}
	go e.serve()
	return e
}

func (e *Encoder) serve() {
	defer close(e.stopped)
	for {
		select {
		case <-e.done:
			return
		case r := <-e.req:
			var resp response
			switch r.kind {
			case reqLoad:
				if r.code.Len > MaxCodeLen {
					resp.err = ErrCodeTooLong
				} else {
					e.table[r.symbol] = r.code
				}
			case reqEncode:
				resp.code = e.table[r.symbol]
			}
			r.reply <- resp
		}
	}
}

// Load installs one (symbol, codeword, length) entry. Reloading a symbol
// replaces its entry; loading the same entry twice is idempotent.
func (e *Encoder) Load(symbol byte, code Code) error {
	_, err := e.transact(request{kind: reqLoad, symbol: symbol, code: code})
	return err
}

// Encode returns the codeword for symbol. A symbol with no loaded entry
// yields a zero-length code; callers pairing an encoder with a codebook
// built from the same stream must treat that as a hard error.
func (e *Encoder) Encode(symbol byte) (Code, error) {
	resp, err := e.transact(request{kind: reqEncode, symbol: symbol})
	if err != nil {
		return Code{}, err
	}
	return resp.code, nil
}

// A Decoder is the codeword-decode device, indexed by (codeword, length)
// rather than by symbol.
type Decoder struct {
	*device
	table  [numSymbols]Code
	loaded [numSymbols]bool
}

// NewDecoder starts a decoder device. A timeout of zero selects DefaultAckTimeout.
func NewDecoder(timeout time.Duration) *Decoder {
	d := &Decoder{device: newDevice(timeout)}
	go d.serve()
	return d
}

func (d *Decoder) serve() {
	defer close(d.stopped)
	for {
		select {
		case <-d.done:
			return
		case r := <-d.req:
			var resp response
			switch r.kind {
			case reqLoad:
				if r.code.Len > MaxCodeLen {
					resp.err = ErrCodeTooLong
				} else {
					d.table[r.symbol] = r.code
					d.loaded[r.symbol] = true
				}
			case reqDecode:
				resp.symbol, resp.err = d.match(r.code)
			}
			r.reply <- resp
		}
	}
}

// match scans all loaded entries for an exact (codeword, length) hit.
// The exhaustive scan is the reference matching policy; exactness, not
// prefix matching, is what the table contract requires.
func (d *Decoder) match(c Code) (byte, error) {
	for sym := 0; sym < numSymbols; sym++ {
		if d.loaded[sym] && d.table[sym] == c {
			return byte(sym), nil
		}
	}
	return 0, ErrUnknownCodeword
}

// Load installs one (symbol, codeword, length) entry.
func (d *Decoder) Load(symbol byte, code Code) error {
	_, err := d.transact(request{kind: reqLoad, symbol: symbol, code: code})
	return err
}

// Decode returns the unique symbol whose entry is exactly (codeword, length).
// A query matching no loaded entry fails with ErrUnknownCodeword rather than
// returning a default symbol, so corruption is never mistaken for a decoded zero.
func (d *Decoder) Decode(code Code) (byte, error) {
	resp, err := d.transact(request{kind: reqDecode, code: code})
	if err != nil {
		return 0, err
	}
	return resp.symbol, nil
}
