package store

import (
	"context"
	"reflect"
	"sync"

	"github.com/samber/mo"
)

// Memory keeps collections in process. Documents are kept in insertion order.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{collections: make(map[string]*memoryCollection)}
}

func (m *Memory) Collection(name string) Collection {
	m.mu.RLock()
	c, ok := m.collections[name]
	m.mu.RUnlock()
	if ok {
		return c
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.collections[name]; ok {
		return c
	}
	c = &memoryCollection{}
	m.collections[name] = c
	return c
}

func (m *Memory) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *Memory) Close(context.Context) error {
	return nil
}

type memoryCollection struct {
	mu   sync.RWMutex
	docs []Document
}

func (c *memoryCollection) Find(ctx context.Context, filter Filter) ([]Document, error) {
	id, hasID, fields, err := splitFilter(filter)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Document, 0, len(c.docs))
	for _, d := range c.docs {
		if matches(d, id, hasID, fields) {
			out = append(out, cloneDoc(d))
		}
	}
	return out, nil
}

func (c *memoryCollection) FindOne(ctx context.Context, filter Filter) (mo.Option[Document], error) {
	id, hasID, fields, err := splitFilter(filter)
	if err != nil {
		return mo.None[Document](), err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, d := range c.docs {
		if matches(d, id, hasID, fields) {
			return mo.Some(cloneDoc(d)), nil
		}
	}
	return mo.None[Document](), nil
}

func (c *memoryCollection) InsertOne(ctx context.Context, doc Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id := NewID()
	stored := withoutID(doc)
	stored[IDField] = id

	c.mu.Lock()
	c.docs = append(c.docs, stored)
	c.mu.Unlock()
	return id, nil
}

func (c *memoryCollection) InsertMany(ctx context.Context, docs []Document) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(docs))
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range docs {
		id := NewID()
		stored := withoutID(d)
		stored[IDField] = id
		c.docs = append(c.docs, stored)
		ids = append(ids, id)
	}
	return ids, nil
}

func (c *memoryCollection) UpdateByID(ctx context.Context, id string, set Document) error {
	if _, err := ParseID(id); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range c.docs {
		if d[IDField] != id {
			continue
		}
		for k, v := range set {
			if k == IDField {
				continue
			}
			d[k] = v
		}
		return nil
	}
	return nil
}

func (c *memoryCollection) DeleteByID(ctx context.Context, id string) error {
	if _, err := ParseID(id); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i, d := range c.docs {
		if d[IDField] == id {
			c.docs = append(c.docs[:i], c.docs[i+1:]...)
			return nil
		}
	}
	return nil
}

func (c *memoryCollection) DeleteAll(ctx context.Context) error {
	c.mu.Lock()
	c.docs = nil
	c.mu.Unlock()
	return nil
}

func matches(d Document, id string, hasID bool, fields Filter) bool {
	if hasID && d[IDField] != id {
		return false
	}
	for k, v := range fields {
		if !reflect.DeepEqual(d[k], v) {
			return false
		}
	}
	return true
}

func cloneDoc(d Document) Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}
