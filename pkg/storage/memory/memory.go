package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// Storage keeps staged objects in process memory. Useful for tests and for
// running the stack without MinIO.
type Storage struct {
	mu      sync.Mutex
	objects map[string]object

	// FailGets simulates storage outage in tests.
	FailGets bool
}

type object struct {
	data    []byte
	written time.Time
}

func NewStorage() *Storage {
	return &Storage{objects: make(map[string]object)}
}

func (s *Storage) Store(_ context.Context, reader io.Reader, key string) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read object: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = object{data: data, written: time.Now()}
	return key, nil
}

func (s *Storage) Get(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailGets {
		return nil, fmt.Errorf("storage unavailable")
	}
	obj, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %q not found", key)
	}
	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

func (s *Storage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *Storage) CleanupBefore(_ context.Context, threshold time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, obj := range s.objects {
		if obj.written.Before(threshold) {
			delete(s.objects, key)
		}
	}
	return nil
}

// Len reports the number of staged objects, for cleanup assertions.
func (s *Storage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}
