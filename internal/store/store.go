// Package store provides the document collections backing the calendar API.
//
// A Database hands out named Collections of schema-less documents. Three
// backends implement it: MongoDB (production), PostgreSQL JSONB tables and an
// in-process memory store. The backend is picked from the connection URI
// scheme by Open.
package store

import (
	"context"
	"fmt"
	"net/url"

	"github.com/samber/mo"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection names used by the API.
const (
	Events = "events"
	Goals  = "goals"
	Tasks  = "tasks"
)

// IDField is the key holding a document's store-assigned identifier.
const IDField = "_id"

// Document is a schema-less record. Identifiers are exposed under IDField as
// 24-character hex strings regardless of backend.
type Document map[string]any

// Filter selects documents by top-level field equality. A nil or empty
// filter matches every document. IDField values must be hex identifiers.
type Filter map[string]any

// Collection is a named group of documents of one kind.
type Collection interface {
	Find(ctx context.Context, filter Filter) ([]Document, error)
	// FindOne returns mo.None when nothing matches.
	FindOne(ctx context.Context, filter Filter) (mo.Option[Document], error)
	InsertOne(ctx context.Context, doc Document) (string, error)
	// InsertMany returns the new identifiers in input order.
	InsertMany(ctx context.Context, docs []Document) ([]string, error)
	// UpdateByID merges set into the document. A missing document is not an error.
	UpdateByID(ctx context.Context, id string, set Document) error
	// DeleteByID removes the document. A missing document is not an error.
	DeleteByID(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}

// Database owns the connection to a document store.
type Database interface {
	Collection(name string) Collection
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Open connects to the store named by uri and verifies it answers a ping.
// dbName is only used by the MongoDB backend.
func Open(ctx context.Context, uri, dbName string) (Database, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("parse store uri: %w", err)
	}

	switch u.Scheme {
	case "mongodb", "mongodb+srv":
		return OpenMongo(ctx, uri, dbName)
	case "postgres", "postgresql":
		return OpenPostgres(ctx, uri)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported store scheme %q", u.Scheme)
	}
}

// NewID returns a fresh identifier in the same format MongoDB assigns.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// ParseID validates a hex identifier.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid document id %q: %w", id, err)
	}
	return oid, nil
}

// withoutID returns a shallow copy of doc minus IDField.
func withoutID(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		if k == IDField {
			continue
		}
		out[k] = v
	}
	return out
}

// splitFilter separates the identifier condition from the field conditions.
func splitFilter(filter Filter) (id string, hasID bool, fields Filter, err error) {
	fields = make(Filter, len(filter))
	for k, v := range filter {
		if k != IDField {
			fields[k] = v
			continue
		}
		s, ok := v.(string)
		if !ok {
			return "", false, nil, fmt.Errorf("filter %s must be a string, got %T", IDField, v)
		}
		if _, err := ParseID(s); err != nil {
			return "", false, nil, err
		}
		id, hasID = s, true
	}
	return id, hasID, fields, nil
}
