package memory

import (
	"sync"

	"github.com/yndnr/jsonkv-go/internal/core/domain"
)

// Store is a concurrency-safe map of keys to JSON objects.
type Store struct {
	mu   sync.Mutex
	data map[string]domain.Object
}

// New creates an empty store.
func New() *Store {
	return &Store{
		data: make(map[string]domain.Object),
	}
}

// Set stores value under key, fully replacing any previous value.
func (s *Store) Set(key string, value domain.Object) {
	v := value.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = v
}

// Get returns an independent copy of the value under key.
func (s *Store) Get(key string) (domain.Object, bool) {
	s.mu.Lock()
	v, ok := s.data[key]
	s.mu.Unlock()

	if !ok {
		return domain.Object{}, false
	}
	// Stored slices are never written after insertion, so copying
	// outside the lock still yields a fully-applied value.
	return v.Clone(), true
}

// Delete removes key and reports whether it was present.
// Deleting an absent key is not an error.
func (s *Store) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[key]; !ok {
		return false
	}
	delete(s.data, key)
	return true
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

// Apply executes cmd as one atomic step.
func (s *Store) Apply(cmd *domain.Command) (*domain.Result, error) {
	if cmd == nil {
		return nil, domain.ErrUnknownMethod.WithDetails("nil command")
	}

	res := &domain.Result{
		Method: cmd.Method,
		Key:    cmd.Key,
	}

	switch cmd.Method {
	case domain.MethodSet:
		if cmd.Value.IsZero() {
			return nil, domain.ErrMissingValue
		}
		s.Set(cmd.Key, cmd.Value)
	case domain.MethodGet:
		res.Value, res.Found = s.Get(cmd.Key)
	case domain.MethodDelete:
		res.Found = s.Delete(cmd.Key)
	default:
		return nil, domain.ErrUnknownMethod.WithDetails(string(cmd.Method))
	}

	return res, nil
}
