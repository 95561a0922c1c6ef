// Package designstore persists named design snapshots. The whole collection
// lives under one storage key as a single JSON document, most recent first,
// capped at MaxSaved entries.
package designstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"redesignstudio/internal/kvstore"
	"redesignstudio/internal/types"
)

// MaxSaved bounds the collection; base64 payloads are heavy, so older
// snapshots beyond the cap are silently dropped on insert.
const MaxSaved = 10

// DefaultKey is the well-known storage key for the collection.
const DefaultKey = "ladder_redesign_studio_saves"

// ErrStorageFull wraps the persistence layer's out-of-space condition with
// the user-actionable message the UI shows verbatim.
var ErrStorageFull = errors.New("Storage full. Please delete old projects to save new ones.")

type Store struct {
	kv  kvstore.KV
	key string

	mu      sync.Mutex
	decoded *lru.Cache[string, []types.SavedDesign]
}

func New(kv kvstore.KV) *Store {
	return NewWithKey(kv, DefaultKey)
}

func NewWithKey(kv kvstore.KV, key string) *Store {
	key = strings.TrimSpace(key)
	if key == "" {
		key = DefaultKey
	}
	// Keyed by the raw persisted document, so an unchanged collection is
	// decoded once no matter how often List is called.
	cache, _ := lru.New[string, []types.SavedDesign](8)
	return &Store{kv: kv, key: key, decoded: cache}
}

// List returns the saved designs, most recent first. Unreadable or corrupt
// persisted data degrades to an empty list; read problems are logged, never
// propagated.
func (s *Store) List(ctx context.Context) []types.SavedDesign {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		log.Printf("designstore: read %q: %v", s.key, err)
		return nil
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}
	return cloneDesigns(s.decode(raw))
}

// Insert prepends d, truncates to MaxSaved, and persists the updated
// collection in a single Set. On any failure the previously persisted
// collection is untouched.
func (s *Store) Insert(ctx context.Context, d types.SavedDesign) error {
	d = types.NormalizeSavedDesign(d)
	if d.ID == "" {
		return fmt.Errorf("designstore: snapshot id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.List(ctx)
	updated := make([]types.SavedDesign, 0, len(current)+1)
	updated = append(updated, d)
	for _, existing := range current {
		if existing.ID == d.ID {
			continue
		}
		updated = append(updated, existing)
	}
	if len(updated) > MaxSaved {
		updated = updated[:MaxSaved]
	}
	return s.persist(ctx, updated)
}

// Remove filters id out and persists the remainder. A missing id is a
// no-op, not a failure.
func (s *Store) Remove(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.List(ctx)
	updated := make([]types.SavedDesign, 0, len(current))
	for _, d := range current {
		if d.ID == id {
			continue
		}
		updated = append(updated, d)
	}
	if len(updated) == len(current) {
		return nil
	}
	return s.persist(ctx, updated)
}

func (s *Store) persist(ctx context.Context, designs []types.SavedDesign) error {
	b, err := json.Marshal(designs)
	if err != nil {
		return fmt.Errorf("designstore: encode collection: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, string(b)); err != nil {
		if errors.Is(err, kvstore.ErrOutOfSpace) {
			return ErrStorageFull
		}
		return fmt.Errorf("designstore: persist collection: %w", err)
	}
	s.decoded.Add(string(b), cloneDesigns(designs))
	return nil
}

func (s *Store) decode(raw string) []types.SavedDesign {
	if cached, ok := s.decoded.Get(raw); ok {
		return cached
	}
	var designs []types.SavedDesign
	if err := json.Unmarshal([]byte(raw), &designs); err != nil {
		log.Printf("designstore: corrupt collection under %q: %v", s.key, err)
		return nil
	}
	for i := range designs {
		designs[i] = types.NormalizeSavedDesign(designs[i])
	}
	s.decoded.Add(raw, designs)
	return designs
}

func cloneDesigns(in []types.SavedDesign) []types.SavedDesign {
	if in == nil {
		return nil
	}
	out := make([]types.SavedDesign, len(in))
	copy(out, in)
	return out
}
