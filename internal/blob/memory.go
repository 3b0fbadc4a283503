package blob

import (
	"bytes"
	"context"
	"io"
	"sync"
)

// MemoryStore держит файлы в памяти. Используется в тестах.
type MemoryStore struct {
	mu      sync.Mutex
	baseURL string
	objects map[string][]byte
	types   map[string]string
}

// NewMemoryStore создаёт MemoryStore, выдающий URL вида baseURL/key
func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		baseURL: baseURL,
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

func (s *MemoryStore) Put(_ context.Context, key, contentType string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = buf.Bytes()
	s.types[key] = contentType
	return s.baseURL + "/" + key, nil
}

// Get возвращает содержимое и тип объекта
func (s *MemoryStore) Get(key string) ([]byte, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	return data, s.types[key], ok
}
