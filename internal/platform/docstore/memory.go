package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryDoc struct {
	fields    map[string]any
	createdAt time.Time
	updatedAt time.Time
	seq       int64
}

type memoryData struct {
	collections map[string]map[string]*memoryDoc
	seq         int64
}

// Memory is an in-process Store used for development and tests.
type Memory struct {
	mu   sync.RWMutex
	data *memoryData
	now  func() time.Time
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		data: &memoryData{collections: make(map[string]map[string]*memoryDoc)},
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the timestamp source.
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.now = now
	return m
}

// Create stores data under a new id.
func (m *Memory) Create(ctx context.Context, collection string, data any) (string, error) {
	if collection == "" {
		return "", ErrInvalidCollection
	}
	fields, err := toFields(data)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.create(collection, fields, m.now()), nil
}

// Get loads a single document.
func (m *Memory) Get(ctx context.Context, collection, id string) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.data.collections[collection][id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc.snapshot(id)
}

// Update merges fields into an existing document.
func (m *Memory) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	patch, err := toFields(fields)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.update(collection, id, patch, m.now())
}

// Delete removes a document. Missing ids are ignored.
func (m *Memory) Delete(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data.collections[collection], id)
	return nil
}

// Query returns the documents matching every filter.
func (m *Memory) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	filters, err := normalizeFilters(q.Where)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data.query(collection, q, filters)
}

// RunInTx runs fn against a private copy of the data and publishes the copy
// only when fn succeeds. Transactions are serialised with every other
// operation on the store.
func (m *Memory) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	view := &memoryTx{data: m.data.clone(), now: m.now}
	if err := fn(ctx, view); err != nil {
		return err
	}
	m.data = view.data
	return nil
}

// Count reports the number of documents in a collection.
func (m *Memory) Count(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data.collections[collection])
}

// memoryTx is the store view handed to RunInTx callbacks. The parent lock is
// already held, so it works on its data copy without locking.
type memoryTx struct {
	data *memoryData
	now  func() time.Time
}

func (t *memoryTx) Create(ctx context.Context, collection string, data any) (string, error) {
	if collection == "" {
		return "", ErrInvalidCollection
	}
	fields, err := toFields(data)
	if err != nil {
		return "", err
	}
	return t.data.create(collection, fields, t.now()), nil
}

func (t *memoryTx) Get(ctx context.Context, collection, id string) (Document, error) {
	doc, ok := t.data.collections[collection][id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc.snapshot(id)
}

func (t *memoryTx) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	patch, err := toFields(fields)
	if err != nil {
		return err
	}
	return t.data.update(collection, id, patch, t.now())
}

func (t *memoryTx) Delete(ctx context.Context, collection, id string) error {
	delete(t.data.collections[collection], id)
	return nil
}

func (t *memoryTx) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	filters, err := normalizeFilters(q.Where)
	if err != nil {
		return nil, err
	}
	return t.data.query(collection, q, filters)
}

func (t *memoryTx) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	return fn(ctx, t)
}

func (d *memoryData) create(collection string, fields map[string]any, now time.Time) string {
	coll, ok := d.collections[collection]
	if !ok {
		coll = make(map[string]*memoryDoc)
		d.collections[collection] = coll
	}
	d.seq++
	id := uuid.NewString()
	coll[id] = &memoryDoc{fields: fields, createdAt: now, updatedAt: now, seq: d.seq}
	return id
}

func (d *memoryData) update(collection, id string, patch map[string]any, now time.Time) error {
	doc, ok := d.collections[collection][id]
	if !ok {
		return ErrNotFound
	}
	merged := cloneMap(doc.fields)
	for k, v := range patch {
		merged[k] = v
	}
	d.collections[collection][id] = &memoryDoc{fields: merged, createdAt: doc.createdAt, updatedAt: now, seq: doc.seq}
	return nil
}

func (d *memoryData) query(collection string, q Query, filters []normalizedFilter) ([]Document, error) {
	matched := make([]string, 0)
	for id, doc := range d.collections[collection] {
		if doc.matches(filters) {
			matched = append(matched, id)
		}
	}
	coll := d.collections[collection]
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := coll[matched[i]], coll[matched[j]]
		if q.OrderBy != "" {
			if c := compareField(a, b, q.OrderBy); c != 0 {
				if q.Desc {
					return c > 0
				}
				return c < 0
			}
		}
		return a.seq < b.seq
	})
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	docs := make([]Document, 0, len(matched))
	for _, id := range matched {
		doc, err := coll[id].snapshot(id)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// clone copies the collection maps. Documents are replaced, never mutated in
// place, so sharing the *memoryDoc pointers is safe.
func (d *memoryData) clone() *memoryData {
	out := &memoryData{collections: make(map[string]map[string]*memoryDoc, len(d.collections)), seq: d.seq}
	for name, coll := range d.collections {
		copied := make(map[string]*memoryDoc, len(coll))
		for id, doc := range coll {
			copied[id] = doc
		}
		out.collections[name] = copied
	}
	return out
}

func (doc *memoryDoc) snapshot(id string) (Document, error) {
	raw, err := json.Marshal(doc.fields)
	if err != nil {
		return Document{}, err
	}
	return Document{ID: id, Data: raw, CreatedAt: doc.createdAt, UpdatedAt: doc.updatedAt}, nil
}

type normalizedFilter struct {
	field string
	value []byte
}

func normalizeFilters(filters []Filter) ([]normalizedFilter, error) {
	out := make([]normalizedFilter, 0, len(filters))
	for _, f := range filters {
		raw, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, normalizedFilter{field: f.Field, value: raw})
	}
	return out, nil
}

func (doc *memoryDoc) matches(filters []normalizedFilter) bool {
	for _, f := range filters {
		v, ok := doc.fields[f.field]
		if !ok {
			return false
		}
		raw, err := json.Marshal(v)
		if err != nil || !bytes.Equal(raw, f.value) {
			return false
		}
	}
	return true
}

func compareField(a, b *memoryDoc, field string) int {
	switch field {
	case FieldCreatedAt:
		return a.createdAt.Compare(b.createdAt)
	case FieldUpdatedAt:
		return a.updatedAt.Compare(b.updatedAt)
	}
	return compareValues(a.fields[field], b.fields[field])
}

// compareValues orders missing < bool < number < string.
func compareValues(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra - rb
	}
	switch av := a.(type) {
	case bool:
		bv := b.(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		default:
			return 1
		}
	case float64:
		bv := b.(float64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case string:
		bv := b.(string)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	}
	return 0
}

func rank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case float64:
		return 2
	case string:
		return 3
	}
	return 4
}

var _ Store = (*Memory)(nil)
var _ Store = (*memoryTx)(nil)
