// Package store defines the document-store collaborator the form engine
// reads schemas from and writes submissions to: point reads and writes keyed
// by collection+id, merge-semantics partial writes, and filtered ordered
// queries.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when no document exists under the key.
var ErrNotFound = errors.New("store: document not found")

// Document is the loosely typed map shape stores exchange.
type Document = map[string]any

// Entry pairs a document with its id in query results.
type Entry struct {
	ID   string
	Data Document
}

// Query selects documents by field equality and orders them by one field.
type Query struct {
	Filters map[string]any
	OrderBy string
	Desc    bool
}

// DocumentStore is the persistence seam. Merge applies the given top-level
// keys over the existing document (creating it when absent) and leaves other
// keys untouched.
type DocumentStore interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	Set(ctx context.Context, collection, id string, doc Document) error
	Merge(ctx context.Context, collection, id string, doc Document) error
	Query(ctx context.Context, collection string, q Query) ([]Entry, error)
}

// Collection names shared by the engine and its tooling.
const (
	CollectionForms       = "forms"
	CollectionMembers     = "Members"
	CollectionSubmissions = "form_submissions"
	CollectionTracking    = "user_form_submissions"
)

// Encode converts a typed record into a Document through its JSON form, so
// stored field names track the wire contract (json tags) exactly.
func Encode(record any) (Document, error) {
	payload, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("store: encode record: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("store: encode record: %w", err)
	}
	return doc, nil
}

// Decode fills a typed record from a Document through its JSON form.
func Decode(doc Document, out any) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("store: decode document: %w", err)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("store: decode document: %w", err)
	}
	return nil
}
