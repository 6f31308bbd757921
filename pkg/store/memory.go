package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Memory is a map-backed DocumentStore used by tests and the dev server.
// Documents are copied on the way in and out so callers cannot alias the
// stored state.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]map[string]Document
	seq         map[string][]string // insertion order per collection
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		collections: make(map[string]map[string]Document),
		seq:         make(map[string][]string),
	}
}

func (m *Memory) Get(_ context.Context, collection, id string) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyDocument(doc), nil
}

func (m *Memory) Set(_ context.Context, collection, id string, doc Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.put(collection, id, copyDocument(doc))
	return nil
}

func (m *Memory) Merge(_ context.Context, collection, id string, doc Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.collections[collection][id]
	if !ok {
		m.put(collection, id, copyDocument(doc))
		return nil
	}
	merged := copyDocument(existing)
	for key, value := range copyDocument(doc) {
		merged[key] = value
	}
	m.put(collection, id, merged)
	return nil
}

func (m *Memory) Query(_ context.Context, collection string, q Query) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Entry
	for _, id := range m.seq[collection] {
		doc := m.collections[collection][id]
		if !matches(doc, q.Filters) {
			continue
		}
		out = append(out, Entry{ID: id, Data: copyDocument(doc)})
	}

	if q.OrderBy != "" {
		sort.SliceStable(out, func(i, j int) bool {
			less := lessValue(out[i].Data[q.OrderBy], out[j].Data[q.OrderBy])
			if q.Desc {
				return !less && !equalValue(out[i].Data[q.OrderBy], out[j].Data[q.OrderBy])
			}
			return less
		})
	}
	return out, nil
}

func (m *Memory) put(collection, id string, doc Document) {
	if m.collections[collection] == nil {
		m.collections[collection] = make(map[string]Document)
	}
	if _, exists := m.collections[collection][id]; !exists {
		m.seq[collection] = append(m.seq[collection], id)
	}
	m.collections[collection][id] = doc
}

func matches(doc Document, filters map[string]any) bool {
	for key, want := range filters {
		if doc[key] != want {
			return false
		}
	}
	return true
}

func lessValue(a, b any) bool {
	if at, aok := asTime(a); aok {
		if bt, bok := asTime(b); bok {
			return at.Before(bt)
		}
	}
	if an, aok := asNumber(a); aok {
		if bn, bok := asNumber(b); bok {
			return an < bn
		}
	}
	return asString(a) < asString(b)
}

func equalValue(a, b any) bool {
	return !lessValue(a, b) && !lessValue(b, a)
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		return parsed, err == nil
	default:
		return time.Time{}, false
	}
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func copyDocument(doc Document) Document {
	if doc == nil {
		return Document{}
	}
	out := make(Document, len(doc))
	for key, value := range doc {
		out[key] = copyValue(value)
	}
	return out
}

func copyValue(value any) any {
	switch v := value.(type) {
	case Document:
		return copyDocument(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = copyValue(item)
		}
		return out
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out
	default:
		return v
	}
}
