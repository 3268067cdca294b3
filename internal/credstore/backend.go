package credstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// DefaultStorageDir is the default directory for persisted credentials,
// relative to the user's home directory.
const DefaultStorageDir = ".config/roost/credentials"

// Backend is the persisted secure storage a Store writes through.
// Implementations must treat values as opaque secret bytes.
type Backend interface {
	// Put stores value under key, replacing any existing entry.
	Put(key string, value []byte) error

	// Get returns the value for key, or ErrNotFound if absent.
	Get(key string) ([]byte, error)

	// Delete removes the entry for key. Deleting an absent key is not an
	// error.
	Delete(key string) error
}

// FileBackend stores one credential per file under a directory.
//
// Files are created with 0600 permissions and the directory with 0700,
// matching the accessible-when-unlocked posture of a user-scoped secret
// store on a single-user machine.
type FileBackend struct {
	dir string
}

// NewFileBackend creates a file backend rooted at dir. An empty dir
// defaults to ~/.config/roost/credentials. The directory is created if it
// does not exist.
func NewFileBackend(dir string) (*FileBackend, error) {
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(homeDir, DefaultStorageDir)
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create credential storage directory: %w", err)
	}

	return &FileBackend{dir: dir}, nil
}

// Dir returns the directory the backend stores credentials in.
func (b *FileBackend) Dir() string {
	return b.dir
}

// Put implements Backend.
func (b *FileBackend) Put(key string, value []byte) error {
	return os.WriteFile(b.path(key), value, 0600)
}

// Get implements Backend.
func (b *FileBackend) Get(key string) ([]byte, error) {
	// #nosec G304 -- path is constructed from an internal key, not user input
	data, err := os.ReadFile(b.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Delete implements Backend.
func (b *FileBackend) Delete(key string) error {
	err := os.Remove(b.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (b *FileBackend) path(key string) string {
	return filepath.Join(b.dir, key)
}

// MemoryBackend is an in-memory Backend. It is used in tests and when
// persistence is disabled; contents are lost when the process exits.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: make(map[string][]byte)}
}

// Put implements Backend.
func (b *MemoryBackend) Put(key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	b.entries[key] = cp
	return nil
}

// Get implements Backend.
func (b *MemoryBackend) Get(key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	value, ok := b.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	return cp, nil
}

// Delete implements Backend.
func (b *MemoryBackend) Delete(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.entries, key)
	return nil
}
