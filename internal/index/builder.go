package index

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/wikiprov/wikiprov/internal/cache"
	"github.com/wikiprov/wikiprov/internal/chunk"
	"github.com/wikiprov/wikiprov/internal/model"
)

// Source provides reference text for a topic (see wiki.Source)
type Source interface {
	Fetch(ctx context.Context, topic string) (string, error)
}

// Builder builds corpus indexes and memoizes them per topic. Two
// validations against the same topic share one fetch and one set of
// embedding calls, even when they race on first use.
type Builder struct {
	source   Source
	embedder Embedder
	chunking model.ChunkingConfig
	store    cache.Cache // optional persisted indexes, nil to disable

	mu      sync.Mutex
	entries map[string]*builderEntry
}

// builderEntry guards one topic's build with its own lock so building
// topic A never blocks queries about topic B.
type builderEntry struct {
	mu  sync.Mutex
	idx *Index
}

// NewBuilder creates an index builder
func NewBuilder(source Source, embedder Embedder, chunking model.ChunkingConfig, store cache.Cache) *Builder {
	return &Builder{
		source:   source,
		embedder: embedder,
		chunking: chunking,
		store:    store,
		entries:  make(map[string]*builderEntry),
	}
}

// Get returns the topic's index, building it on first use. Successful
// builds are memoized for the builder's lifetime; a failed build is not,
// so the caller's retry policy can apply.
func (b *Builder) Get(ctx context.Context, topic string) (*Index, error) {
	b.mu.Lock()
	entry, ok := b.entries[topic]
	if !ok {
		entry = &builderEntry{}
		b.entries[topic] = entry
	}
	b.mu.Unlock()

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.idx != nil {
		return entry.idx, nil
	}

	idx, err := b.build(ctx, topic)
	if err != nil {
		return nil, err
	}
	entry.idx = idx
	return idx, nil
}

// build fetches, chunks and embeds the topic's article. Partial indexes
// are never produced: any embedding failure fails the whole build.
func (b *Builder) build(ctx context.Context, topic string) (*Index, error) {
	if idx, ok := b.loadPersisted(topic); ok {
		return idx, nil
	}

	text, err := b.source.Fetch(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("build index for %q: %w", topic, err)
	}

	spans, err := chunk.Passages(text, b.chunking.MaxLength, b.chunking.Overlap)
	if err != nil {
		return nil, fmt.Errorf("chunk article for %q: %w", topic, err)
	}
	if len(spans) == 0 {
		return nil, fmt.Errorf("%w: article for %q has no usable content", model.ErrTopicNotFound, topic)
	}

	texts := make([]string, len(spans))
	for i, s := range spans {
		texts[i] = s.Text
	}

	vectors, err := b.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed passages for %q: %w", topic, err)
	}
	if len(vectors) != len(spans) {
		return nil, fmt.Errorf("%w: got %d vectors for %d passages", model.ErrEmbeddingService, len(vectors), len(spans))
	}

	passages := make([]model.Passage, len(spans))
	for i, s := range spans {
		passages[i] = model.Passage{
			ID:     fmt.Sprintf("%d", i),
			Text:   s.Text,
			Offset: s.Offset,
			Vector: vectors[i],
		}
	}

	idx := &Index{topic: topic, passages: passages, embedder: b.embedder}
	b.persist(topic, passages)
	return idx, nil
}

// persistedIndex is the on-disk representation of a built index
type persistedIndex struct {
	Topic    string          `json:"topic"`
	Passages []model.Passage `json:"passages"`
}

func (b *Builder) loadPersisted(topic string) (*Index, bool) {
	if b.store == nil {
		return nil, false
	}
	data, found := b.store.Get(cache.Key("index", topic))
	if !found {
		return nil, false
	}
	var p persistedIndex
	if err := json.Unmarshal(data, &p); err != nil || p.Topic != topic || len(p.Passages) == 0 {
		return nil, false
	}
	return &Index{topic: topic, passages: p.Passages, embedder: b.embedder}, true
}

func (b *Builder) persist(topic string, passages []model.Passage) {
	if b.store == nil {
		return
	}
	data, err := json.Marshal(persistedIndex{Topic: topic, Passages: passages})
	if err != nil {
		return
	}
	_ = b.store.Set(cache.Key("index", topic), data, 0)
}
