package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	sonic "github.com/bytedance/sonic"
	"github.com/valyala/bytebufferpool"
)

// FileStore keeps all keys in a single JSON file, rewritten atomically on
// every change via a temp-file rename.
type FileStore struct {
	mu      sync.Mutex
	path    string
	entries map[string]json.RawMessage
}

func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	s := &FileStore{
		path:    path,
		entries: make(map[string]json.RawMessage),
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read storage file: %w", err)
	}
	if len(raw) == 0 {
		return s, nil
	}

	if err := sonic.Unmarshal(raw, &s.entries); err != nil {
		// A corrupt storage file must not halt startup; start empty and let
		// the persistence layer rebuild from the network.
		s.entries = make(map[string]json.RawMessage)
	}
	if s.entries == nil {
		s.entries = make(map[string]json.RawMessage)
	}

	return s, nil
}

func (s *FileStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

func (s *FileStore) Set(_ context.Context, key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("storage key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	s.entries[key] = stored

	return s.flushLocked()
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; !ok {
		return nil
	}
	delete(s.entries, key)

	return s.flushLocked()
}

func (s *FileStore) flushLocked() error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	raw, err := sonic.Marshal(s.entries)
	if err != nil {
		return fmt.Errorf("encode storage file: %w", err)
	}
	if _, err := buf.Write(raw); err != nil {
		return fmt.Errorf("buffer storage file: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".storage-*")
	if err != nil {
		return fmt.Errorf("create temp storage file: %w", err)
	}

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write temp storage file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close temp storage file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace storage file: %w", err)
	}

	return nil
}
