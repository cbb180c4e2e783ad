package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-process Store. It backs tests and serves as the fallback
// when no data path is configured; documents do not survive a restart.
type Memory struct {
	mu       sync.RWMutex
	byPath   map[string][]Document
	notifier *notifier
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		byPath:   make(map[string][]Document),
		notifier: newNotifier(),
	}
}

func (m *Memory) GetAll(ctx context.Context, path string) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneDocs(m.byPath[path]), nil
}

func (m *Memory) GetOne(ctx context.Context, path, id string) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, doc := range m.byPath[path] {
		if doc.ID == id {
			return Document{ID: doc.ID, Data: append([]byte(nil), doc.Data...)}, nil
		}
	}
	return Document{}, ErrNotFound
}

func (m *Memory) Set(ctx context.Context, path, id string, v any) (string, error) {
	data, err := marshal(v)
	if err != nil {
		return "", err
	}
	if id == "" {
		id = uuid.NewString()
	}

	m.mu.Lock()
	docs := m.byPath[path]
	replaced := false
	for i := range docs {
		if docs[i].ID == id {
			// Upsert keeps the original collection position.
			docs[i].Data = data
			replaced = true
			break
		}
	}
	if !replaced {
		docs = append(docs, Document{ID: id, Data: data})
	}
	m.byPath[path] = docs
	snap := Snapshot{Path: path, Docs: cloneDocs(docs)}
	m.mu.Unlock()

	m.notifier.publish(snap)
	return id, nil
}

func (m *Memory) Delete(ctx context.Context, path, id string) error {
	m.mu.Lock()
	docs := m.byPath[path]
	removed := false
	for i := range docs {
		if docs[i].ID == id {
			m.byPath[path] = append(docs[:i], docs[i+1:]...)
			removed = true
			break
		}
	}
	snap := Snapshot{Path: path, Docs: cloneDocs(m.byPath[path])}
	m.mu.Unlock()

	// Deleting an absent document is a no-op, and no-ops are not published.
	if removed {
		m.notifier.publish(snap)
	}
	return nil
}

func (m *Memory) Subscribe(path string, fn func(Snapshot)) Subscription {
	sub := m.notifier.subscribe(path, fn)

	m.mu.RLock()
	snap := Snapshot{Path: path, Docs: cloneDocs(m.byPath[path])}
	m.mu.RUnlock()
	sub.deliver(snap)

	return sub
}

func (m *Memory) Close() error { return nil }

func cloneDocs(docs []Document) []Document {
	out := make([]Document, len(docs))
	for i, doc := range docs {
		out[i] = Document{ID: doc.ID, Data: append([]byte(nil), doc.Data...)}
	}
	return out
}
