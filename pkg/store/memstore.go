package store

import "github.com/pkg/errors"

// MemStore keeps collections in memory. It backs the repository tests and
// doubles as a throwaway backend.
type MemStore struct {
	data map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string][]byte)}
}

func (m *MemStore) Ensure(name string) error {
	if _, ok := m.data[name]; !ok {
		m.data[name] = []byte("[]")
	}
	return nil
}

func (m *MemStore) Read(name string) ([]byte, error) {
	b, ok := m.data[name]
	if !ok {
		return nil, errors.Errorf("no such collection: %s", name)
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

func (m *MemStore) Write(name string, data []byte) error {
	b := make([]byte, len(data))
	copy(b, data)
	m.data[name] = b
	return nil
}
