package source

import (
	"fmt"
	"strings"
	"sync"

	"github.com/sanspareilsmyn/annualtables/internal/clock"
)

type variable struct {
	name string
	meta Metadata
	keys []KeyHandle
	// index maps upper-cased key to position in keys.
	index map[string]int
}

// Store is an in-memory Resolver and Sampler. Variables and their keys are
// declared up front; the host then sets current values once per timestep.
// Names and keys compare case-insensitively.
type Store struct {
	mu        sync.RWMutex
	variables map[string]*variable
	values    []float64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{variables: make(map[string]*variable)}
}

func normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Declare registers a variable. Declaring the same name twice with different
// metadata is an error; repeating identical metadata is a no-op.
func (s *Store) Declare(name string, meta Metadata) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if meta.Cadence == 0 {
		meta.Cadence = clock.Zone
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.variables[normalize(name)]; ok {
		if v.meta != meta {
			return fmt.Errorf("%w: %q", ErrConflictingDeclaration, name)
		}
		return nil
	}
	s.variables[normalize(name)] = &variable{name: name, meta: meta, index: make(map[string]int)}
	return nil
}

// AddKey exposes a declared variable for one key and returns its handle.
// Adding an existing key returns the existing handle.
func (s *Store) AddKey(name, key string) (Handle, error) {
	if strings.TrimSpace(key) == "" {
		return NoHandle, ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.variables[normalize(name)]
	if !ok {
		return NoHandle, fmt.Errorf("%w: %q", ErrUnknownVariable, name)
	}
	if i, ok := v.index[normalize(key)]; ok {
		return v.keys[i].Handle, nil
	}
	h := Handle(len(s.values))
	s.values = append(s.values, 0)
	v.index[normalize(key)] = len(v.keys)
	v.keys = append(v.keys, KeyHandle{Key: key, Handle: h})
	return h, nil
}

// Set stores the current value of a variable for a key.
func (s *Store) Set(name, key string, value float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.variables[normalize(name)]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownVariable, name)
	}
	i, ok := v.index[normalize(key)]
	if !ok {
		return fmt.Errorf("%w: %q for %q", ErrUnknownKey, key, name)
	}
	s.values[v.keys[i].Handle] = value
	return nil
}

// Resolve implements Resolver. The returned key slice is a copy.
func (s *Store) Resolve(name string) (Binding, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.variables[normalize(name)]
	if !ok {
		return Binding{}, false
	}
	keys := make([]KeyHandle, len(v.keys))
	copy(keys, v.keys)
	return Binding{Metadata: v.meta, Keys: keys}, true
}

// Value implements Sampler. Unknown handles read as zero.
func (s *Store) Value(h Handle) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if h < 0 || int(h) >= len(s.values) {
		return 0
	}
	return s.values[h]
}

// Variables returns the declared variable names.
func (s *Store) Variables() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.variables))
	for _, v := range s.variables {
		out = append(out, v.name)
	}
	return out
}
