// Package docstore provides a small document database abstraction: records
// live in named collections, carry server-assigned ids and timestamps, and are
// read back through equality queries.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Reserved field names exposed by Document.Decode. They are never stored in
// the document body.
const (
	FieldID        = "id"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

var (
	// ErrNotFound is returned when a document id does not exist.
	ErrNotFound = errors.New("docstore: document not found")
	// ErrInvalidCollection is returned for an empty collection name.
	ErrInvalidCollection = errors.New("docstore: collection required")
)

// Store is the persistence contract every feature repository builds on.
type Store interface {
	Create(ctx context.Context, collection string, data any) (string, error)
	Get(ctx context.Context, collection, id string) (Document, error)
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	Query(ctx context.Context, collection string, q Query) ([]Document, error)
	// RunInTx executes fn against a transactional view of the store. Either
	// every write made through the view is kept or none is.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}

// Filter matches documents whose field equals the value.
type Filter struct {
	Field string
	Value any
}

// Query describes an equality query with optional ordering and limit.
type Query struct {
	Where   []Filter
	OrderBy string
	Desc    bool
	Limit   int
}

// Where is a helper building a single equality filter query.
func Where(field string, value any) Query {
	return Query{Where: []Filter{{Field: field, Value: value}}}
}

// Document is a stored record snapshot.
type Document struct {
	ID        string
	Data      json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Decode unmarshals the document into dest, including id and timestamps.
func (d Document) Decode(dest any) error {
	fields := map[string]any{}
	if len(d.Data) > 0 {
		if err := json.Unmarshal(d.Data, &fields); err != nil {
			return fmt.Errorf("docstore: decode %s: %w", d.ID, err)
		}
	}
	fields[FieldID] = d.ID
	fields[FieldCreatedAt] = d.CreatedAt
	fields[FieldUpdatedAt] = d.UpdatedAt
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("docstore: decode %s: %w", d.ID, err)
	}
	return json.Unmarshal(raw, dest)
}

// DecodeAll decodes a query snapshot into a slice of T.
func DecodeAll[T any](docs []Document) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		var v T
		if err := doc.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// toFields turns an arbitrary value into the stored body, dropping reserved
// fields.
func toFields(data any) (map[string]any, error) {
	if data == nil {
		return map[string]any{}, nil
	}
	if m, ok := data.(map[string]any); ok {
		data = cloneMap(m)
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("docstore: encode: %w", err)
	}
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("docstore: encode: object expected: %w", err)
	}
	stripReserved(fields)
	return fields, nil
}

func stripReserved(fields map[string]any) {
	delete(fields, FieldID)
	delete(fields, FieldCreatedAt)
	delete(fields, FieldUpdatedAt)
}

func cloneMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
