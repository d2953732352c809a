package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Document is one schemaless record. Documents returned by a store
// always carry the assigned identifier under the "id" key as a string.
type Document = map[string]any

// ErrNotFound reports that no document with the requested identifier
// exists. It is distinct from a backend failure; callers tell the two
// apart with errors.Is.
var ErrNotFound = errors.New("document not found")

// DocumentStore is the collection service the handlers write through.
// Implementations assign identifiers on Add and never mutate or delete
// existing documents. Add takes any marshalable record; reads come
// back as Documents.
type DocumentStore interface {
	Add(ctx context.Context, collection string, doc any) (string, error)
	Get(ctx context.Context, collection, id string) (Document, error)
	QueryByField(ctx context.Context, collection, field string, value any) ([]Document, error)
	ListAll(ctx context.Context, collection string) ([]Document, error)
	Close(ctx context.Context) error
}

// Init opens a store for the given URL. The prefix selects the
// backend: mongodb:// (or mongodb+srv://) for MongoDB, postgres:// for
// PostgreSQL and sqlite:// for a local SQLite file.
func Init(databaseURL string) (DocumentStore, error) {
	switch {
	case strings.HasPrefix(databaseURL, "mongodb://"), strings.HasPrefix(databaseURL, "mongodb+srv://"):
		return newMongoStore(databaseURL)
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "sqlite://"):
		return newGormStore(databaseURL)
	default:
		return nil, fmt.Errorf("invalid DATABASE_URL prefix %q: must start with 'mongodb://', 'postgres://' or 'sqlite://'", databaseURL)
	}
}
