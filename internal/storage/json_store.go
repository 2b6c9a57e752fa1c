package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/julianstephens/detoxscan/internal/constants"
)

type jsonDocument struct {
	Version int               `json:"version"`
	Data    map[string]string `json:"data"`
}

// JSONStore keeps the whole key space in one JSON file. Every operation
// re-reads the file under a lockfile so several processes can share it.
type JSONStore struct {
	path   string
	lock   *fileLock
	mu     sync.Mutex
	loaded bool
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{
		path: path,
		lock: newFileLock(path + constants.LockfileSuffix),
	}
}

func (s *JSONStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		s.loaded = true
		return nil
	}

	if err := s.write(&jsonDocument{Version: 1, Data: map[string]string{}}); err != nil {
		return err
	}
	s.loaded = true
	return nil
}

func (s *JSONStore) Load() error {
	if _, err := os.Stat(s.path); err != nil {
		if os.IsNotExist(err) {
			return ErrNotInitialized
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}
	if _, err := s.read(); err != nil {
		return err
	}
	s.loaded = true
	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}

func (s *JSONStore) read() (*jsonDocument, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read storage: %w", err)
	}
	doc := &jsonDocument{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("failed to parse storage: %w", err)
	}
	if doc.Data == nil {
		doc.Data = map[string]string{}
	}
	return doc, nil
}

// write replaces the file through a rename so readers never see a partial document
func (s *JSONStore) write(doc *jsonDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	return nil
}

// locked runs fn with the in-process mutex and the cross-process lockfile held
func (s *JSONStore) locked(ctx context.Context, fn func() error) (err error) {
	if !s.loaded {
		return ErrNotLoaded
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.Acquire(ctx); err != nil {
		return err
	}
	defer func() {
		if rerr := s.lock.Release(); rerr != nil && err == nil {
			err = rerr
		}
	}()
	return fn()
}

func (s *JSONStore) Get(ctx context.Context, key string) (value string, found bool, err error) {
	err = s.locked(ctx, func() error {
		doc, err := s.read()
		if err != nil {
			return err
		}
		value, found = doc.Data[key]
		return nil
	})
	return value, found, err
}

func (s *JSONStore) Set(ctx context.Context, key, value string) error {
	return s.Update(ctx, key, func(string, bool) (string, error) {
		return value, nil
	})
}

func (s *JSONStore) Delete(ctx context.Context, key string) error {
	return s.locked(ctx, func() error {
		doc, err := s.read()
		if err != nil {
			return err
		}
		if _, ok := doc.Data[key]; !ok {
			return nil
		}
		delete(doc.Data, key)
		return s.write(doc)
	})
}

func (s *JSONStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	return s.locked(ctx, func() error {
		doc, err := s.read()
		if err != nil {
			return err
		}
		cur, ok := doc.Data[key]
		next, err := fn(cur, ok)
		if err != nil {
			return err
		}
		doc.Data[key] = next
		return s.write(doc)
	})
}

func (s *JSONStore) Keys(ctx context.Context) (keys []string, err error) {
	err = s.locked(ctx, func() error {
		doc, err := s.read()
		if err != nil {
			return err
		}
		for k := range doc.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return nil
	})
	return keys, err
}
