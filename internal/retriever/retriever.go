package retriever

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"smart-tutor-go/internal/model"
	"smart-tutor-go/pkg/embedding"
	"smart-tutor-go/pkg/log"
	"smart-tutor-go/pkg/rerank"
)

type Mode string

const (
	ModeSemantic Mode = "semantic"
	ModeKeyword  Mode = "keyword"
	ModeHybrid   Mode = "hybrid"
)

// Retriever runs the two scoring branches over an Index, merges them, and
// reranks the merged pool. Hybrid scores combine min-max normalized branch
// scores; a candidate missing from one branch contributes 0 there.
type Retriever struct {
	index          Index
	embedder       embedding.Client
	reranker       rerank.Client
	semanticWeight float64
	chunkSize      int
	chunkOverlap   int
}

func New(index Index, embedder embedding.Client, reranker rerank.Client, semanticWeight float64, chunkSize, chunkOverlap int) *Retriever {
	if semanticWeight < 0 || semanticWeight > 1 {
		semanticWeight = 0.7
	}
	return &Retriever{
		index:          index,
		embedder:       embedder,
		reranker:       reranker,
		semanticWeight: semanticWeight,
		chunkSize:      chunkSize,
		chunkOverlap:   chunkOverlap,
	}
}

// IndexDocument chunks a document, embeds the chunks, and adds them to the
// index. Returns the number of chunks indexed.
func (r *Retriever) IndexDocument(ctx context.Context, sourceName, text string) (int, error) {
	chunks := SplitDocument(sourceName, text, r.chunkSize, r.chunkOverlap)
	if len(chunks) == 0 {
		return 0, nil
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := r.embedder.CreateEmbeddings(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed document %q: %w", sourceName, err)
	}
	for i := range chunks {
		chunks[i].Vector = vectors[i]
	}
	if err := r.index.Add(ctx, chunks); err != nil {
		return 0, fmt.Errorf("add chunks for %q: %w", sourceName, err)
	}
	log.Infof("[Retriever] indexed document '%s': %d chunks", sourceName, len(chunks))
	return len(chunks), nil
}

// Reset drops the whole corpus.
func (r *Retriever) Reset(ctx context.Context) error {
	return r.index.Reset(ctx)
}

// Count reports how many chunks the index holds.
func (r *Retriever) Count(ctx context.Context) (int, error) {
	return r.index.Count(ctx)
}

// Backend reports the active index backend name.
func (r *Retriever) Backend() string {
	return r.index.Name()
}

// Search retrieves at most k results for the query in the given mode.
// Results come back sorted descending by RelevanceScore. An empty corpus or
// an empty query yields an empty result, never an error. Model failures
// degrade: a failed embedding falls back to keyword-only; a failed rerank
// falls back to keyword-only in hybrid mode and to pre-rerank order in the
// single-branch modes.
func (r *Retriever) Search(ctx context.Context, query string, k int, mode Mode) ([]model.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" || k <= 0 {
		return []model.SearchResult{}, nil
	}

	switch mode {
	case ModeSemantic:
		return r.searchSemantic(ctx, query, k)
	case ModeKeyword:
		return r.searchKeyword(ctx, query, k)
	case ModeHybrid, "":
		return r.searchHybrid(ctx, query, k)
	default:
		return nil, fmt.Errorf("unknown search mode %q", mode)
	}
}

func (r *Retriever) searchSemantic(ctx context.Context, query string, k int) ([]model.SearchResult, error) {
	vector, err := r.embedder.CreateEmbedding(ctx, query)
	if err != nil {
		log.Warnf("[Retriever] query embedding failed, degrading to keyword search: %v", err)
		return r.searchKeyword(ctx, query, k)
	}
	results, err := r.index.SemanticSearch(ctx, vector, k)
	if err != nil {
		return nil, err
	}
	for i := range results {
		results[i].RelevanceScore = results[i].SemanticScore
	}
	return r.rerankOptional(ctx, query, results), nil
}

func (r *Retriever) searchKeyword(ctx context.Context, query string, k int) ([]model.SearchResult, error) {
	results, err := r.index.KeywordSearch(ctx, query, k)
	if err != nil {
		return nil, err
	}
	for i := range results {
		results[i].RelevanceScore = results[i].KeywordScore
	}
	return r.rerankOptional(ctx, query, results), nil
}

func (r *Retriever) searchHybrid(ctx context.Context, query string, k int) ([]model.SearchResult, error) {
	vector, err := r.embedder.CreateEmbedding(ctx, query)
	if err != nil {
		log.Warnf("[Retriever] query embedding failed, degrading to keyword search: %v", err)
		return r.searchKeyword(ctx, query, k)
	}

	// overfetch both branches so the merged pool has depth for the reranker
	pool := 2 * k
	semResults, err := r.index.SemanticSearch(ctx, vector, pool)
	if err != nil {
		return nil, err
	}
	kwResults, err := r.index.KeywordSearch(ctx, query, pool)
	if err != nil {
		return nil, err
	}

	merged := r.merge(semResults, kwResults)
	if len(merged) == 0 {
		return []model.SearchResult{}, nil
	}
	if len(merged) > pool {
		merged = merged[:pool]
	}

	// rerank is mandatory for hybrid: a dead model drops us to keyword-only
	if r.reranker == nil {
		log.Warnf("[Retriever] no reranker configured, degrading hybrid to keyword search")
		return r.searchKeyword(ctx, query, k)
	}
	passages := make([]string, len(merged))
	for i, res := range merged {
		passages[i] = res.Content
	}
	scores, err := r.reranker.Score(ctx, query, passages)
	if err != nil || len(scores) != len(merged) {
		log.Warnf("[Retriever] rerank failed, degrading hybrid to keyword search: %v", err)
		return r.searchKeyword(ctx, query, k)
	}
	for i := range merged {
		merged[i].RelevanceScore = scores[i]
	}
	// ties keep the hybrid-score order
	sort.SliceStable(merged, func(a, b int) bool {
		return merged[a].RelevanceScore > merged[b].RelevanceScore
	})
	if len(merged) > k {
		merged = merged[:k]
	}
	return merged, nil
}

// merge joins the two branches by chunk ID, min-max normalizes each branch
// over the candidate union, and combines them with the semantic weight.
// A branch where every score is equal maps present candidates to 1.0.
func (r *Retriever) merge(semResults, kwResults []model.SearchResult) []model.SearchResult {
	byID := make(map[string]*model.SearchResult)
	var order []string
	for _, res := range semResults {
		res := res
		byID[res.ChunkID] = &res
		order = append(order, res.ChunkID)
	}
	for _, res := range kwResults {
		if existing, ok := byID[res.ChunkID]; ok {
			existing.KeywordScore = res.KeywordScore
			continue
		}
		res := res
		byID[res.ChunkID] = &res
		order = append(order, res.ChunkID)
	}
	if len(order) == 0 {
		return nil
	}

	semNorm := normalizeBranch(byID, order, len(semResults) > 0, func(res *model.SearchResult) float64 { return res.SemanticScore })
	kwNorm := normalizeBranch(byID, order, len(kwResults) > 0, func(res *model.SearchResult) float64 { return res.KeywordScore })

	semPresent := make(map[string]struct{}, len(semResults))
	for _, res := range semResults {
		semPresent[res.ChunkID] = struct{}{}
	}
	kwPresent := make(map[string]struct{}, len(kwResults))
	for _, res := range kwResults {
		kwPresent[res.ChunkID] = struct{}{}
	}

	merged := make([]model.SearchResult, 0, len(order))
	for _, id := range order {
		res := byID[id]
		var sem, kw float64
		if _, ok := semPresent[id]; ok {
			sem = semNorm[id]
		}
		if _, ok := kwPresent[id]; ok {
			kw = kwNorm[id]
		}
		res.HybridScore = r.semanticWeight*sem + (1-r.semanticWeight)*kw
		merged = append(merged, *res)
	}
	sort.SliceStable(merged, func(a, b int) bool {
		return merged[a].HybridScore > merged[b].HybridScore
	})
	return merged
}

func normalizeBranch(byID map[string]*model.SearchResult, order []string, present bool, score func(*model.SearchResult) float64) map[string]float64 {
	norm := make(map[string]float64, len(order))
	if !present {
		return norm
	}
	min, max := score(byID[order[0]]), score(byID[order[0]])
	for _, id := range order {
		s := score(byID[id])
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	for _, id := range order {
		if max == min {
			norm[id] = 1.0
			continue
		}
		norm[id] = (score(byID[id]) - min) / (max - min)
	}
	return norm
}

// rerankOptional reorders single-branch results when a reranker is available;
// a model failure keeps the pre-rerank order.
func (r *Retriever) rerankOptional(ctx context.Context, query string, results []model.SearchResult) []model.SearchResult {
	if r.reranker == nil || len(results) == 0 {
		return results
	}
	passages := make([]string, len(results))
	for i, res := range results {
		passages[i] = res.Content
	}
	scores, err := r.reranker.Score(ctx, query, passages)
	if err != nil || len(scores) != len(results) {
		log.Warnf("[Retriever] rerank failed, keeping pre-rerank order: %v", err)
		return results
	}
	for i := range results {
		results[i].RelevanceScore = scores[i]
	}
	sort.SliceStable(results, func(a, b int) bool {
		return results[a].RelevanceScore > results[b].RelevanceScore
	})
	return results
}
