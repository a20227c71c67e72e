// Package cache persists standardized per-source snapshots between runs so
// the expensive cleaning pass can be skipped when the raw input is unchanged.
package cache

import (
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"

	"github.com/emberdata/powermerge/pkg/errors"
	"github.com/emberdata/powermerge/pkg/plants"
)

// Store is a key-value store of standardized tables. Keys combine the source
// name with a fingerprint of the raw input so a changed input misses.
type Store interface {
	// Get returns the cached table for key, or errors.ErrNotFound.
	Get(key string) (plants.Table, error)

	// Put stores the table under key, replacing any previous entry.
	Put(key string, table plants.Table) error
}

// Key builds a cache key from a source name and one or more fingerprints.
// Anything that changes the derived table belongs in a fingerprint, or a
// warm cache will serve stale snapshots.
func Key(source string, fingerprints ...string) string {
	return source + "-" + strings.Join(fingerprints, "-")
}

// Fingerprint hashes arbitrary bytes into a short stable key component.
func Fingerprint(data []byte) string {
	h := fnv.New64a()
	h.Write(data)
	return fmt.Sprintf("%016x", h.Sum64())
}

// Memory is an in-process Store. Safe for concurrent use.
type Memory struct {
	mu     sync.RWMutex
	tables map[string]plants.Table
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{tables: make(map[string]plants.Table)}
}

// Get implements Store.
func (m *Memory) Get(key string) (plants.Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tables[key]
	if !ok {
		return nil, errors.ErrNotFound
	}
	out := make(plants.Table, len(t))
	copy(out, t)
	return out, nil
}

// Put implements Store.
func (m *Memory) Put(key string, table plants.Table) error {
	stored := make(plants.Table, len(table))
	copy(stored, table)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[key] = stored
	return nil
}

// Dir is a filesystem Store keeping one YAML file per key under a root
// directory.
type Dir struct {
	root string
}

// NewDir returns a filesystem store rooted at dir, creating it if needed.
func NewDir(dir string) (*Dir, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.WrapIO("create", dir, err)
	}
	return &Dir{root: dir}, nil
}

// Get implements Store.
func (d *Dir) Get(key string) (plants.Table, error) {
	data, err := os.ReadFile(d.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ErrNotFound
		}
		return nil, errors.WrapIO("read", d.path(key), err)
	}
	var table plants.Table
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, errors.WrapIO("read", d.path(key), err)
	}
	return table, nil
}

// Put implements Store. The file is written atomically via a temp file so a
// crashed run never leaves a truncated snapshot behind.
func (d *Dir) Put(key string, table plants.Table) error {
	data, err := yaml.Marshal(table)
	if err != nil {
		return errors.WrapIO("write", d.path(key), err)
	}
	tmp, err := os.CreateTemp(d.root, ".cache-*.yaml")
	if err != nil {
		return errors.WrapIO("create", d.root, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.WrapIO("write", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.WrapIO("write", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), d.path(key)); err != nil {
		os.Remove(tmp.Name())
		return errors.WrapIO("write", d.path(key), err)
	}
	return nil
}

func (d *Dir) path(key string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, key)
	return filepath.Join(d.root, safe+".yaml")
}

// Nop is a Store that caches nothing. Used when caching is disabled.
type Nop struct{}

// Get implements Store.
func (Nop) Get(string) (plants.Table, error) { return nil, errors.ErrNotFound }

// Put implements Store.
func (Nop) Put(string, plants.Table) error { return nil }
