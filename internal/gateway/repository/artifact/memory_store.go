package artifact

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string][]byte),
	}
}

func (s *MemoryStore) Put(_ context.Context, exportID, p string, content []byte) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	exportID, p, err := normalizeKey(exportID, p)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[objectKey(exportID, p)] = append([]byte(nil), content...)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, exportID, p string) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	exportID, p, err := normalizeKey(exportID, p)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.data[objectKey(exportID, p)]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), raw...), nil
}

func (s *MemoryStore) List(_ context.Context, exportID string) ([]string, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	exportID, err := normalizeExportID(exportID)
	if err != nil {
		return nil, err
	}
	prefix := exportID + "/"
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, 4)
	for key := range s.data {
		if strings.HasPrefix(key, prefix) {
			out = append(out, strings.TrimPrefix(key, prefix))
		}
	}
	sort.Strings(out)
	return out, nil
}

// GetURL has nothing to link to for in-memory content.
func (s *MemoryStore) GetURL(_ context.Context, _, _ string) (string, error) {
	return "", nil
}
