// Package localstore keeps the signed-in user record between invocations.
package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"storefront/internal/domain"
)

// DefaultKey is the fixed key the session record is stored under
const DefaultKey = "storefront:session:user"

// Cache is the durable session record; Load returns nil, nil when nothing is stored
type Cache interface {
	Load(ctx context.Context) (*domain.User, error)
	Save(ctx context.Context, u *domain.User) error
	Clear(ctx context.Context) error
}

// FileCache stores the record as a JSON document on disk
type FileCache struct {
	mu   sync.Mutex
	path string
}

func NewFileCache(path string) *FileCache {
	return &FileCache{path: path}
}

var _ Cache = (*FileCache)(nil)

func (c *FileCache) Load(ctx context.Context) (*domain.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}
	return decodeUser(b)
}

// Save writes to a temp file in the same directory then renames it over the old record
func (c *FileCache) Save(ctx context.Context, u *domain.User) error {
	if u == nil {
		return c.Clear(ctx)
	}
	b, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("create temp session: %w", err)
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close session: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace session: %w", err)
	}
	return nil
}

func (c *FileCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

func decodeUser(b []byte) (*domain.User, error) {
	if len(b) == 0 || string(b) == "null" {
		return nil, nil
	}
	var u domain.User
	if err := json.Unmarshal(b, &u); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &u, nil
}
