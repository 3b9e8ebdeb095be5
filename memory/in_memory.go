package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"
)

// SearchResult is a stored document with its relevance score.
type SearchResult struct {
	ID       string
	Content  string
	Score    float64
	Metadata map[string]any
}

// Options configure an InMemoryStore.
type Options struct {
	// Limit is the number of documents RetrieveAndCombineResults returns
	// (default 3).
	Limit int
	// Separator joins combined documents (default "\n").
	Separator string
}

type document struct {
	id       string
	seq      int
	content  string
	terms    map[string]struct{}
	metadata map[string]any
}

// InMemoryStore is a naive process‑local document store that doubles as a
// prompt.Retriever.
//
// Search: linear scan scoring each document by the fraction of query terms
// it contains (case insensitive). Suitable only for tests / demos; swap for a
// vector DB or semantic index for production retrieval.
type InMemoryStore struct {
	mu   sync.RWMutex
	docs map[string]document
	next int
	opts Options
}

// NewInMemoryStore creates a new in-memory document store
func NewInMemoryStore(optFns ...func(o *Options)) *InMemoryStore {
	opts := Options{Limit: 3, Separator: "\n"}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Limit <= 0 {
		opts.Limit = 3
	}
	return &InMemoryStore{docs: make(map[string]document), opts: opts}
}

// Store adds a document and returns its generated id.
func (m *InMemoryStore) Store(content string, metadata map[string]any) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := fmt.Sprintf("mem_%d", m.next)
	m.docs[id] = document{
		id:       id,
		seq:      m.next,
		content:  content,
		terms:    termSet(content),
		metadata: copyMetadata(metadata),
	}
	m.next++
	return id
}

// Delete removes a stored document by id.
func (m *InMemoryStore) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.docs[id]; !exists {
		return fmt.Errorf("memory %q not found", id)
	}
	delete(m.docs, id)
	return nil
}

// Len returns the number of stored documents.
func (m *InMemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}

// Search returns up to limit documents matching query, best first. Ties keep
// insertion order. An empty query matches every document with score 1.
func (m *InMemoryStore) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	queryTerms := termSet(query)

	m.mu.RLock()
	type hit struct {
		doc   document
		score float64
	}
	hits := make([]hit, 0, len(m.docs))
	for _, d := range m.docs {
		if s := score(queryTerms, d.terms); s > 0 {
			hits = append(hits, hit{doc: d, score: s})
		}
	}
	m.mu.RUnlock()

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].doc.seq < hits[j].doc.seq
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}

	results := make([]SearchResult, len(hits))
	for i, h := range hits {
		results[i] = SearchResult{
			ID:       h.doc.id,
			Content:  h.doc.content,
			Score:    h.score,
			Metadata: copyMetadata(h.doc.metadata),
		}
	}
	return results, nil
}

// RetrieveAndCombineResults implements prompt.Retriever.
func (m *InMemoryStore) RetrieveAndCombineResults(ctx context.Context, text string) (string, error) {
	results, err := m.Search(ctx, text, m.opts.Limit)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = r.Content
	}
	return strings.Join(parts, m.opts.Separator), nil
}

func score(query, doc map[string]struct{}) float64 {
	if len(query) == 0 {
		return 1
	}
	matched := 0
	for t := range query {
		if _, ok := doc[t]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(query))
}

func termSet(s string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func copyMetadata(md map[string]any) map[string]any {
	if md == nil {
		return nil
	}
	out := make(map[string]any, len(md))
	for k, v := range md {
		out[k] = v
	}
	return out
}
