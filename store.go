package huffbit

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Mode selects how a named stream is opened.
type Mode int

const (
	ModeRead Mode = iota
	ModeWrite
	ModeAppend
)

// A Stream is one named byte stream. Line reads strip the terminating
// newline and an optional carriage return; ReadLine returns io.EOF once the
// stream is exhausted.
type Stream interface {
	ReadLine() (string, error)
	ReadAll() ([]byte, error)
	WriteBytes(b []byte) error
	Close() error
}

// A Store opens named byte streams. The codec core performs all persistent
// I/O through this boundary; the pipeline never touches the filesystem
// directly.
type Store interface {
	Open(name string, mode Mode) (Stream, error)
}

// DirStore is a Store over one directory.
type DirStore struct {
	Dir string
}

func (s DirStore) Open(name string, mode Mode) (Stream, error) {
	path := filepath.Join(s.Dir, name)
	var f *os.File
	var err error
	switch mode {
	case ModeRead:
		f, err = os.Open(path)
	case ModeWrite:
		f, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	case ModeAppend:
		f, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	default:
		return nil, errors.Errorf("unknown mode %d", mode)
	}
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return &fileStream{f: f, r: bufio.NewReader(f)}, nil
}

type fileStream struct {
	f *os.File
	r *bufio.Reader
}

func (s *fileStream) ReadLine() (string, error) {
	line, err := s.r.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			return trimEOL(line), nil
		}
		return "", err
	}
	return trimEOL(line), nil
}

func (s *fileStream) ReadAll() ([]byte, error) {
	b, err := io.ReadAll(s.r)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return b, nil
}

func (s *fileStream) WriteBytes(b []byte) error {
	if _, err := s.f.Write(b); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

func (s *fileStream) Close() error {
	return s.f.Close()
}

func trimEOL(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}

// MemStore is an in-memory Store keyed by stream name.
type MemStore struct {
	mu    sync.Mutex
	files map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{files: map[string][]byte{}}
}

// Put seeds a named stream.
func (s *MemStore) Put(name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = append([]byte(nil), data...)
}

// Get returns the current contents of a named stream.
func (s *MemStore) Get(name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.files[name]
	return b, ok
}

func (s *MemStore) Open(name string, mode Mode) (Stream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch mode {
	case ModeRead:
		data, ok := s.files[name]
		if !ok {
			return nil, errors.Errorf("no such stream %q", name)
		}
		return &memStream{store: s, name: name, r: bytes.NewReader(data)}, nil
	case ModeWrite:
		s.files[name] = nil
		return &memStream{store: s, name: name}, nil
	case ModeAppend:
		return &memStream{store: s, name: name}, nil
	default:
		return nil, errors.Errorf("unknown mode %d", mode)
	}
}

type memStream struct {
	store *MemStore
	name  string
	r     *bytes.Reader
	br    *bufio.Reader
}

func (s *memStream) ReadLine() (string, error) {
	if s.r == nil {
		return "", errors.Errorf("stream %q not open for reading", s.name)
	}
	if s.br == nil {
		s.br = bufio.NewReader(s.r)
	}
	line, err := s.br.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			return trimEOL(line), nil
		}
		return "", err
	}
	return trimEOL(line), nil
}

func (s *memStream) ReadAll() ([]byte, error) {
	if s.r == nil {
		return nil, errors.Errorf("stream %q not open for reading", s.name)
	}
	if s.br != nil {
		return io.ReadAll(s.br)
	}
	return io.ReadAll(s.r)
}

func (s *memStream) WriteBytes(b []byte) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	s.store.files[s.name] = append(s.store.files[s.name], b...)
	return nil
}

func (s *memStream) Close() error { return nil }
