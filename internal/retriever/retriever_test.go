package retriever

import (
	"context"
	"errors"
	"testing"

	"smart-tutor-go/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bagEmbedder is a deterministic bag-of-words embedder: identical texts map
// to identical vectors, so cosine similarity of a text with itself is 1.0.
type bagEmbedder struct {
	fail bool
}

func (b *bagEmbedder) CreateEmbedding(_ context.Context, text string) ([]float32, error) {
	if b.fail {
		return nil, errors.New("embedding model unavailable")
	}
	vec := make([]float32, 64)
	for _, term := range Tokenize(text) {
		var h uint32 = 2166136261
		for _, c := range term {
			h = (h ^ uint32(c)) * 16777619
		}
		vec[h%64]++
	}
	return vec, nil
}

func (b *bagEmbedder) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := b.CreateEmbedding(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// overlapReranker scores each passage by its term overlap with the query.
type overlapReranker struct {
	fail  bool
	calls int
}

func (r *overlapReranker) Score(_ context.Context, query string, passages []string) ([]float64, error) {
	r.calls++
	if r.fail {
		return nil, errors.New("rerank model unavailable")
	}
	queryTerms := make(map[string]struct{})
	for _, t := range Tokenize(query) {
		queryTerms[t] = struct{}{}
	}
	scores := make([]float64, len(passages))
	for i, p := range passages {
		seen := make(map[string]struct{})
		for _, t := range Tokenize(p) {
			if _, ok := queryTerms[t]; !ok {
				continue
			}
			seen[t] = struct{}{}
		}
		scores[i] = float64(len(seen)) / float64(len(queryTerms)+1)
	}
	return scores, nil
}

// flatReranker gives every passage the same score, so the output keeps the
// pre-rerank (hybrid) order.
type flatReranker struct{}

func (flatReranker) Score(_ context.Context, _ string, passages []string) ([]float64, error) {
	scores := make([]float64, len(passages))
	for i := range scores {
		scores[i] = 0.5
	}
	return scores, nil
}

var corpus = []string{
	"Mitochondria are the powerhouse of the cell.",
	"Photosynthesis converts sunlight into chemical energy in plants.",
	"The French Revolution began in 1789 and reshaped Europe.",
	"Algebra studies mathematical symbols and the rules for manipulating them.",
	"The water cycle moves water between oceans, atmosphere, and land.",
}

func seedRetriever(t *testing.T, reranker *overlapReranker) *Retriever {
	t.Helper()
	index := NewMemoryIndex()
	embedder := &bagEmbedder{}
	var r *Retriever
	if reranker != nil {
		r = New(index, embedder, reranker, 0.7, 500, 50)
	} else {
		r = New(index, embedder, nil, 0.7, 500, 50)
	}
	for i, text := range corpus {
		_, err := r.IndexDocument(context.Background(), "corpus", text)
		require.NoError(t, err, "document %d", i)
	}
	return r
}

func TestSplitDocumentSmallDocSingleChunk(t *testing.T) {
	chunks := SplitDocument("notes.txt", "A short document.", 500, 50)
	require.Len(t, chunks, 1)
	assert.Equal(t, "A short document.", chunks[0].Text)
	assert.Equal(t, "notes.txt", chunks[0].Metadata.SourceName)
	assert.Equal(t, 0, chunks[0].Metadata.Offset)
	assert.NotEmpty(t, chunks[0].ID)
}

func TestSplitDocumentRespectsSizeAndOverlap(t *testing.T) {
	text := ""
	for i := 0; i < 40; i++ {
		text += "This sentence pads the document with a few words. "
	}
	chunks := SplitDocument("big.txt", text, 200, 40)
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c.Text)), 200+40, "chunk stays near the size budget")
		assert.NotEmpty(t, c.Text)
	}
	// offsets increase monotonically
	for i := 1; i < len(chunks); i++ {
		assert.Greater(t, chunks[i].Metadata.Offset, chunks[i-1].Metadata.Offset)
	}
}

func TestSplitDocumentEmptyInput(t *testing.T) {
	assert.Nil(t, SplitDocument("x", "", 500, 50))
	assert.Nil(t, SplitDocument("x", "   \n\n  ", 500, 50))
}

func TestSearchEmptyCorpus(t *testing.T) {
	r := New(NewMemoryIndex(), &bagEmbedder{}, nil, 0.7, 500, 50)
	for _, mode := range []Mode{ModeSemantic, ModeKeyword, ModeHybrid} {
		results, err := r.Search(context.Background(), "anything at all", 5, mode)
		require.NoError(t, err, string(mode))
		assert.Empty(t, results, string(mode))
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	r := seedRetriever(t, nil)
	results, err := r.Search(context.Background(), "   ", 5, ModeHybrid)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSemanticSearchVerbatimQueryFirst(t *testing.T) {
	r := seedRetriever(t, nil)
	results, err := r.Search(context.Background(), corpus[1], 3, ModeSemantic)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.LessOrEqual(t, len(results), 3)
	assert.Equal(t, corpus[1], results[0].Content)
	assert.InDelta(t, 1.0, results[0].SemanticScore, 1e-6)
}

func TestKeywordSearchVerbatimQueryFirst(t *testing.T) {
	r := seedRetriever(t, nil)
	results, err := r.Search(context.Background(), corpus[3], 3, ModeKeyword)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, corpus[3], results[0].Content)
}

func TestKeywordSearchTiesKeepInsertionOrder(t *testing.T) {
	index := NewMemoryIndex()
	ctx := context.Background()
	require.NoError(t, index.Add(ctx, []model.Chunk{
		{ID: "a", Text: "gravity pulls objects"},
		{ID: "b", Text: "gravity bends light"},
	}))
	results, err := index.KeywordSearch(ctx, "gravity", 5)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].ChunkID)
	assert.Equal(t, "b", results[1].ChunkID)
}

func TestHybridSearchEndToEnd(t *testing.T) {
	reranker := &overlapReranker{}
	r := seedRetriever(t, reranker)

	results, err := r.Search(context.Background(), "What is the powerhouse of the cell?", 3, ModeHybrid)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.LessOrEqual(t, len(results), 3)
	assert.Contains(t, results[0].Content, "Mitochondria")
	assert.Positive(t, reranker.calls)

	// sorted descending by relevance score
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].RelevanceScore, results[i].RelevanceScore)
	}
}

func TestHybridScoresMonotoneInBranches(t *testing.T) {
	index := NewMemoryIndex()
	embedder := &bagEmbedder{}
	r := New(index, embedder, flatReranker{}, 0.7, 500, 50)
	ctx := context.Background()
	for _, text := range corpus {
		_, err := r.IndexDocument(ctx, "corpus", text)
		require.NoError(t, err)
	}

	// the flat reranker preserves hybrid order, so the verbatim match (top of
	// both branches) must come out first
	results, err := r.Search(ctx, corpus[0], 5, ModeHybrid)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, corpus[0], results[0].Content)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].HybridScore, results[i].HybridScore)
	}
	assert.InDelta(t, 1.0, results[0].HybridScore, 1e-6, "top of both branches normalizes to 1.0")
}

func TestEmbeddingFailureDegradesToKeyword(t *testing.T) {
	index := NewMemoryIndex()
	working := &bagEmbedder{}
	r := New(index, working, nil, 0.7, 500, 50)
	ctx := context.Background()
	for _, text := range corpus {
		_, err := r.IndexDocument(ctx, "corpus", text)
		require.NoError(t, err)
	}

	broken := New(index, &bagEmbedder{fail: true}, nil, 0.7, 500, 50)
	for _, mode := range []Mode{ModeSemantic, ModeHybrid} {
		results, err := broken.Search(ctx, "powerhouse of the cell", 3, mode)
		require.NoError(t, err, string(mode))
		require.NotEmpty(t, results, string(mode))
		assert.Contains(t, results[0].Content, "Mitochondria")
		assert.Zero(t, results[0].SemanticScore, "keyword-only results carry no semantic score")
	}
}

func TestRerankFailureDegradesHybridToKeyword(t *testing.T) {
	reranker := &overlapReranker{fail: true}
	r := seedRetriever(t, reranker)

	results, err := r.Search(context.Background(), "powerhouse of the cell", 3, ModeHybrid)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Contains(t, results[0].Content, "Mitochondria")
}

func TestRerankFailureKeepsOrderInSingleModes(t *testing.T) {
	reranker := &overlapReranker{fail: true}
	r := seedRetriever(t, reranker)

	results, err := r.Search(context.Background(), corpus[1], 3, ModeSemantic)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, corpus[1], results[0].Content, "pre-rerank order survives the failed rerank")
}

func TestResetAndCount(t *testing.T) {
	r := seedRetriever(t, nil)
	ctx := context.Background()

	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(corpus), n)

	require.NoError(t, r.Reset(ctx))
	n, err = r.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	results, err := r.Search(ctx, "powerhouse", 3, ModeKeyword)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestUnknownModeRejected(t *testing.T) {
	r := seedRetriever(t, nil)
	_, err := r.Search(context.Background(), "query", 3, Mode("fuzzy"))
	assert.Error(t, err)
}
