package store

import (
	"fmt"
	"sort"
	"sync"

	"nodepanel/pkg/model"
)

// MemoryStore is a simple in-memory implementation, intended for dev/demo
// and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[uint]model.User
	nodes    map[uint]model.Node
	settings map[string]string
	nextUser uint
	nextNode uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[uint]model.User),
		nodes:    make(map[uint]model.Node),
		settings: make(map[string]string),
	}
}

func (m *MemoryStore) CreateUser(u model.User) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return u, fmt.Errorf("email already registered: %s", u.Email)
		}
	}
	m.nextUser++
	u.ID = m.nextUser
	m.users[u.ID] = u
	return u, nil
}

func (m *MemoryStore) GetUserByEmail(email string) (model.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, true, nil
		}
	}
	return model.User{}, false, nil
}

func (m *MemoryStore) SaveUser(u model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		return fmt.Errorf("user %d not found", u.ID)
	}
	m.users[u.ID] = u
	return nil
}

func (m *MemoryStore) CreateNode(n model.Node) (model.Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.nodes {
		if existing.Name == n.Name && existing.UserEmail == n.UserEmail {
			return n, fmt.Errorf("node %s already exists for %s", n.Name, n.UserEmail)
		}
	}
	m.nextNode++
	n.ID = m.nextNode
	m.nodes[n.ID] = n
	return n, nil
}

func (m *MemoryStore) GetNode(id uint) (model.Node, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.nodes[id]
	return n, ok, nil
}

func (m *MemoryStore) GetNodeByOwner(name, email string) (model.Node, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, n := range m.nodes {
		if n.Name == name && n.UserEmail == email {
			return n, true, nil
		}
	}
	return model.Node{}, false, nil
}

func (m *MemoryStore) SaveNode(n model.Node) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.nodes[n.ID]; !ok {
		return fmt.Errorf("node %d not found", n.ID)
	}
	m.nodes[n.ID] = n
	return nil
}

func (m *MemoryStore) ListNodes() ([]model.Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Node, 0, len(m.nodes))
	for _, n := range m.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) ListNodesByOwner(email string) ([]model.Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.Node
	for _, n := range m.nodes {
		if n.UserEmail == email {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) GetSetting(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.settings[key]
	return v, ok, nil
}

func (m *MemoryStore) PutSetting(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[key] = value
	return nil
}

// Ping reports readiness for health/info endpoints.
func (m *MemoryStore) Ping() error { return nil }
