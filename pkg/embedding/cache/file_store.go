package cache

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps the cache in an append-only JSONL file with an in-memory
// index. Writes append an envelope line and deletes append a tombstone, so
// replaying the file on open makes the last line for a key win. Lines that
// fail to parse or verify are skipped, not fatal.
type FileStore struct {
	mu    sync.Mutex
	path  string
	file  *os.File
	index map[string][]float32
}

func NewFileStore(path string) (*FileStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}

	s := &FileStore{
		path:  path,
		index: make(map[string][]float32),
	}
	if err := s.load(); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open cache file: %w", err)
	}
	s.file = f
	return s, nil
}

func (s *FileStore) load() error {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open cache file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	skipped := 0
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var e entry
		if err := json.Unmarshal(line, &e); err != nil {
			skipped++
			continue
		}
		if e.Deleted {
			delete(s.index, e.Key)
			continue
		}
		if e.verify() != nil {
			skipped++
			continue
		}
		s.index[e.Key] = e.Values
	}
	if skipped > 0 {
		log.Printf("[DEBUG] embedding cache: skipped %d unreadable entries in %s", skipped, s.path)
	}
	return scanner.Err()
}

func (s *FileStore) Get(ctx context.Context, key string) ([]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, ok := s.index[key]
	if !ok {
		return nil, ErrNotFound
	}
	return values, nil
}

func (s *FileStore) Put(ctx context.Context, key string, values []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.append(entry{Key: key, Checksum: vectorChecksum(values), Values: values}); err != nil {
		return err
	}
	s.index[key] = values
	return nil
}

func (s *FileStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[key]; !ok {
		return nil
	}
	if err := s.append(entry{Key: key, Deleted: true}); err != nil {
		return err
	}
	delete(s.index, key)
	return nil
}

func (s *FileStore) append(e entry) error {
	line, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if _, err := s.file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append cache entry: %w", err)
	}
	return nil
}

// Len reports how many vectors the store currently holds
func (s *FileStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.index)
}

func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}
