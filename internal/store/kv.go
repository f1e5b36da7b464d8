package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// KV is the persistence port for small pieces of client state.
type KV interface {
	Load(key string) ([]byte, bool, error)
	Save(key string, value []byte) error
	Clear(key string) error
}

// FileKV keeps every key in one JSON object file.
// Missing file yields an empty store without error.
type FileKV struct {
	Path string
	mu   sync.Mutex
}

// NewFileKV returns a FileKV backed by path.
func NewFileKV(path string) *FileKV { return &FileKV{Path: path} }

func (f *FileKV) read() (map[string]json.RawMessage, error) {
	b, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]json.RawMessage{}, nil
		}
		return nil, err
	}
	m := map[string]json.RawMessage{}
	if len(strings.TrimSpace(string(b))) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func (f *FileKV) write(m map[string]json.RawMessage) error {
	if strings.TrimSpace(f.Path) == "" {
		return errors.New("empty path")
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.Path, b, 0o600)
}

// Load returns the raw value stored under key.
func (f *FileKV) Load(key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, err := f.read()
	if err != nil {
		return nil, false, err
	}
	v, ok := m[key]
	if !ok {
		return nil, false, nil
	}
	// the file is indented for humans; callers get compact JSON back
	var buf bytes.Buffer
	if err := json.Compact(&buf, v); err != nil {
		return nil, false, err
	}
	return buf.Bytes(), true, nil
}

// Save stores value under key. Values that are not valid JSON are stored
// as JSON strings.
func (f *FileKV) Save(key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, err := f.read()
	if err != nil {
		return err
	}
	if json.Valid(value) {
		m[key] = append(json.RawMessage(nil), value...)
	} else {
		s, err := json.Marshal(string(value))
		if err != nil {
			return err
		}
		m[key] = s
	}
	return f.write(m)
}

// Clear removes key. Clearing a missing key is not an error.
func (f *FileKV) Clear(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, err := f.read()
	if err != nil {
		return err
	}
	if _, ok := m[key]; !ok {
		return nil
	}
	delete(m, key)
	return f.write(m)
}

// Memory is an in-process KV, handy for tests and dry runs.
type Memory struct {
	mu sync.Mutex
	m  map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory { return &Memory{m: map[string][]byte{}} }

// Load returns a copy of the value stored under key.
func (s *Memory) Load(key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	return append([]byte(nil), v...), ok, nil
}

// Save stores a copy of value under key.
func (s *Memory) Save(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = append([]byte(nil), value...)
	return nil
}

// Clear removes key. Clearing a missing key is not an error.
func (s *Memory) Clear(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}
