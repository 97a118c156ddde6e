package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	valkey "github.com/valkey-io/valkey-go"
)

// Compile-time interface check.
var _ DocumentStore = (*ValkeyStore)(nil)

// ValkeyStore persists documents as JSON values in Valkey, keyed
// "scans:<ownerID>:<id>", with a per-owner list of ids at
// "scans:<ownerID>:index" so List never scans the keyspace. Patch is
// read-merge-write; the single orchestrator invocation per scan is the
// only writer, so no compare-and-set is needed.
type ValkeyStore struct {
	client valkey.Client
}

// NewValkeyStore connects to a Valkey instance at addr.
func NewValkeyStore(addr string) (*ValkeyStore, error) {
	client, err := valkey.NewClient(valkey.ClientOption{InitAddress: []string{addr}})
	if err != nil {
		return nil, fmt.Errorf("store: connect valkey: %w", err)
	}
	return &ValkeyStore{client: client}, nil
}

// Close shuts down the underlying connection.
func (s *ValkeyStore) Close() { s.client.Close() }

func docKey(ownerID, id string) string {
	return fmt.Sprintf("scans:%s:%s", ownerID, id)
}

// indexKey holds the per-owner list of document ids in creation order.
// Document ids are UUIDs, so the "index" suffix cannot collide with a
// document key.
func indexKey(ownerID string) string {
	return fmt.Sprintf("scans:%s:index", ownerID)
}

func (s *ValkeyStore) Create(ctx context.Context, ownerID string, doc Document) (string, error) {
	id := uuid.NewString()
	stored := copyDocument(doc)
	stored["id"] = id

	if err := s.write(ctx, ownerID, id, stored); err != nil {
		return "", err
	}
	cmd := s.client.B().Rpush().Key(indexKey(ownerID)).Element(id).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return "", fmt.Errorf("store: index document %s: %w", id, err)
	}
	return id, nil
}

func (s *ValkeyStore) Get(ctx context.Context, ownerID, id string) (Document, error) {
	cmd := s.client.B().Get().Key(docKey(ownerID, id)).Build()
	raw, err := s.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: get: %w", err)
	}

	var doc Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("store: decode document %s: %w", id, err)
	}
	return doc, nil
}

func (s *ValkeyStore) Patch(ctx context.Context, ownerID, id string, partial Document) error {
	doc, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}
	return s.write(ctx, ownerID, id, Merge(doc, partial))
}

func (s *ValkeyStore) List(ctx context.Context, ownerID string, limit int) ([]Document, error) {
	cmd := s.client.B().Lrange().Key(indexKey(ownerID)).Start(0).Stop(-1).Build()
	ids, err := s.client.Do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, fmt.Errorf("store: list index: %w", err)
	}

	out := make([]Document, 0, len(ids))
	for _, id := range ids {
		raw, err := s.client.Do(ctx, s.client.B().Get().Key(docKey(ownerID, id)).Build()).ToString()
		if err != nil {
			if valkey.IsValkeyNil(err) {
				continue // expired after it was indexed
			}
			return nil, fmt.Errorf("store: get %s: %w", id, err)
		}
		var doc Document
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return nil, fmt.Errorf("store: decode %s: %w", id, err)
		}
		out = append(out, doc)
	}

	sortByCreatedAtDesc(out)

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *ValkeyStore) write(ctx context.Context, ownerID, id string, doc Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("store: encode document %s: %w", id, err)
	}
	cmd := s.client.B().Set().Key(docKey(ownerID, id)).Value(string(data)).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("store: set: %w", err)
	}
	return nil
}
