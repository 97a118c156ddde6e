// Package store provides the persisted document store the pipeline
// writes scan records to. Documents are schemaless JSON objects keyed
// by (ownerID, documentID); updates always use merge semantics so
// concurrent readers never observe a torn write of unrelated fields.
package store

import (
	"context"
	"errors"
	"sort"
	"time"
)

// ErrNotFound is returned when no document exists for the given key.
var ErrNotFound = errors.New("store: document not found")

// Document is a decoded JSON object.
type Document = map[string]any

// DocumentStore is the persistence contract the orchestrator depends
// on. Implementations must make each write durable before returning,
// since later pipeline stages read fields written by earlier ones.
type DocumentStore interface {
	// Create stores a new document under ownerID and returns its
	// assigned id. The id is also written into the document under "id".
	Create(ctx context.Context, ownerID string, doc Document) (string, error)

	// Get returns the document, or ErrNotFound.
	Get(ctx context.Context, ownerID, id string) (Document, error)

	// Patch merges partial into the stored document. Nested objects
	// are merged recursively; scalars and arrays are replaced. Returns
	// ErrNotFound if the document does not exist.
	Patch(ctx context.Context, ownerID, id string, partial Document) error

	// List returns the owner's documents ordered by createdAt
	// descending. A limit of 0 means no limit.
	List(ctx context.Context, ownerID string, limit int) ([]Document, error)
}

// Merge returns dst with patch applied: maps merge recursively, any
// other value in patch replaces the value in dst. dst is not modified.
func Merge(dst, patch Document) Document {
	out := make(Document, len(dst)+len(patch))
	for k, v := range dst {
		out[k] = v
	}
	for k, pv := range patch {
		if pm, ok := pv.(map[string]any); ok {
			if dm, ok := out[k].(map[string]any); ok {
				out[k] = Merge(dm, pm)
				continue
			}
		}
		out[k] = copyValue(pv)
	}
	return out
}

// sortByCreatedAtDesc orders documents newest first. Timestamps come
// from time.Time JSON marshaling, which trims trailing fraction zeros,
// so they have variable precision and must be parsed rather than
// compared as strings. Unparseable or missing timestamps sort last.
func sortByCreatedAtDesc(docs []Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		return docCreatedAt(docs[i]).After(docCreatedAt(docs[j]))
	})
}

func docCreatedAt(doc Document) time.Time {
	raw, _ := doc["createdAt"].(string)
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

// copyDocument deep-copies a document so callers never alias stored state.
func copyDocument(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return copyDocument(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = copyValue(e)
		}
		return out
	default:
		return v
	}
}
