package retriever

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"smart-tutor-go/internal/model"
)

// Index stores chunks and serves the two scoring branches. Both branches
// return raw scores in their own space; normalization and merging happen in
// the Retriever. Semantic scores are cosine similarities (higher is better);
// backends that work in distance space must convert before returning.
type Index interface {
	Add(ctx context.Context, chunks []model.Chunk) error
	SemanticSearch(ctx context.Context, vector []float32, k int) ([]model.SearchResult, error)
	KeywordSearch(ctx context.Context, query string, k int) ([]model.SearchResult, error)
	Reset(ctx context.Context) error
	Count(ctx context.Context) (int, error)
	Name() string
}

type indexedChunk struct {
	chunk  model.Chunk
	vector []float32 // unit-normalized copy of chunk.Vector
	terms  map[string]struct{}
}

// memoryIndex is a process-local Index guarded by a RWMutex. Keyword scores
// are exact term-overlap counts; ties keep insertion order.
type memoryIndex struct {
	mu     sync.RWMutex
	chunks []indexedChunk
}

func NewMemoryIndex() Index {
	return &memoryIndex{}
}

func (m *memoryIndex) Name() string { return "memory" }

func (m *memoryIndex) Add(_ context.Context, chunks []model.Chunk) error {
	prepared := make([]indexedChunk, 0, len(chunks))
	for _, c := range chunks {
		if c.Text == "" {
			continue
		}
		terms := make(map[string]struct{})
		for _, t := range Tokenize(c.Text) {
			terms[t] = struct{}{}
		}
		prepared = append(prepared, indexedChunk{
			chunk:  c,
			vector: normalize(c.Vector),
			terms:  terms,
		})
	}
	m.mu.Lock()
	m.chunks = append(m.chunks, prepared...)
	m.mu.Unlock()
	return nil
}

func (m *memoryIndex) SemanticSearch(_ context.Context, vector []float32, k int) ([]model.SearchResult, error) {
	if k <= 0 {
		return nil, nil
	}
	query := normalize(vector)
	if query == nil {
		return nil, fmt.Errorf("semantic search: empty query vector")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	type scored struct {
		pos   int
		score float64
	}
	candidates := make([]scored, 0, len(m.chunks))
	for i, ic := range m.chunks {
		if ic.vector == nil {
			continue
		}
		candidates = append(candidates, scored{pos: i, score: dot(query, ic.vector)})
	}
	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].score > candidates[b].score
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}

	results := make([]model.SearchResult, 0, len(candidates))
	for _, c := range candidates {
		ic := m.chunks[c.pos]
		results = append(results, model.SearchResult{
			ChunkID:       ic.chunk.ID,
			Content:       ic.chunk.Text,
			Metadata:      ic.chunk.Metadata,
			SemanticScore: c.score,
		})
	}
	return results, nil
}

func (m *memoryIndex) KeywordSearch(_ context.Context, query string, k int) ([]model.SearchResult, error) {
	if k <= 0 {
		return nil, nil
	}
	terms := Tokenize(query)
	if len(terms) == 0 {
		return nil, nil
	}
	seen := make(map[string]struct{}, len(terms))
	unique := terms[:0]
	for _, t := range terms {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		unique = append(unique, t)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	type scored struct {
		pos   int
		score int
	}
	var candidates []scored
	for i, ic := range m.chunks {
		overlap := 0
		for _, t := range unique {
			if _, ok := ic.terms[t]; ok {
				overlap++
			}
		}
		if overlap > 0 {
			candidates = append(candidates, scored{pos: i, score: overlap})
		}
	}
	// stable: equal overlap counts keep insertion order
	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].score > candidates[b].score
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}

	results := make([]model.SearchResult, 0, len(candidates))
	for _, c := range candidates {
		ic := m.chunks[c.pos]
		results = append(results, model.SearchResult{
			ChunkID:      ic.chunk.ID,
			Content:      ic.chunk.Text,
			Metadata:     ic.chunk.Metadata,
			KeywordScore: float64(c.score),
		})
	}
	return results, nil
}

func (m *memoryIndex) Reset(_ context.Context) error {
	m.mu.Lock()
	m.chunks = nil
	m.mu.Unlock()
	return nil
}

func (m *memoryIndex) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chunks), nil
}

func normalize(v []float32) []float32 {
	if len(v) == 0 {
		return nil
	}
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return nil
	}
	norm := math.Sqrt(sum)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
