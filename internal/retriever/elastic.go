package retriever

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"smart-tutor-go/internal/model"
	"smart-tutor-go/pkg/es"
	"smart-tutor-go/pkg/log"

	"github.com/elastic/go-elasticsearch/v8"
)

// elasticIndex is an Index backed by Elasticsearch: kNN over the dense_vector
// field for the semantic branch, a match query for the keyword branch. BM25
// keyword scores live in a different space than term-overlap counts, which is
// fine because the Retriever min-max normalizes each branch before merging.
type elasticIndex struct {
	client    *elasticsearch.Client
	indexName string
	modelName string
}

func NewElasticIndex(client *elasticsearch.Client, indexName, modelName string) Index {
	return &elasticIndex{client: client, indexName: indexName, modelName: modelName}
}

func (e *elasticIndex) Name() string { return "elastic" }

func (e *elasticIndex) Add(ctx context.Context, chunks []model.Chunk) error {
	for _, c := range chunks {
		doc := model.EsDocument{
			ChunkID:     c.ID,
			SourceName:  c.Metadata.SourceName,
			Offset:      c.Metadata.Offset,
			TextContent: c.Text,
			Vector:      c.Vector,
			ModelName:   e.modelName,
		}
		if err := es.IndexDocument(ctx, e.indexName, doc); err != nil {
			return fmt.Errorf("index chunk %s: %w", c.ID, err)
		}
	}
	return nil
}

func (e *elasticIndex) SemanticSearch(ctx context.Context, vector []float32, k int) ([]model.SearchResult, error) {
	if k <= 0 {
		return nil, nil
	}
	query := map[string]interface{}{
		"knn": map[string]interface{}{
			"field":          "vector",
			"query_vector":   vector,
			"k":              k,
			"num_candidates": k * 10,
		},
		"size":    k,
		"_source": []string{"chunk_id", "source_name", "offset", "text_content"},
	}
	hits, err := e.search(ctx, query)
	if err != nil {
		return nil, err
	}
	results := make([]model.SearchResult, 0, len(hits))
	for _, h := range hits {
		r := h.toResult()
		r.SemanticScore = h.Score
		results = append(results, r)
	}
	return results, nil
}

func (e *elasticIndex) KeywordSearch(ctx context.Context, queryText string, k int) ([]model.SearchResult, error) {
	if k <= 0 || strings.TrimSpace(queryText) == "" {
		return nil, nil
	}
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"match": map[string]interface{}{
				"text_content": queryText,
			},
		},
		"size":    k,
		"_source": []string{"chunk_id", "source_name", "offset", "text_content"},
	}
	hits, err := e.search(ctx, query)
	if err != nil {
		return nil, err
	}
	results := make([]model.SearchResult, 0, len(hits))
	for _, h := range hits {
		r := h.toResult()
		r.KeywordScore = h.Score
		results = append(results, r)
	}
	return results, nil
}

func (e *elasticIndex) Reset(ctx context.Context) error {
	body := strings.NewReader(`{"query": {"match_all": {}}}`)
	res, err := e.client.DeleteByQuery([]string{e.indexName}, body,
		e.client.DeleteByQuery.WithContext(ctx),
		e.client.DeleteByQuery.WithRefresh(true),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		log.Errorf("[ElasticIndex] reset failed: %s", res.String())
		return errors.New("failed to reset elasticsearch index")
	}
	return nil
}

func (e *elasticIndex) Count(ctx context.Context) (int, error) {
	res, err := e.client.Count(
		e.client.Count.WithContext(ctx),
		e.client.Count.WithIndex(e.indexName),
	)
	if err != nil {
		return 0, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, fmt.Errorf("count request failed: %s", res.String())
	}
	var parsed struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return 0, err
	}
	return parsed.Count, nil
}

type esHit struct {
	Score  float64 `json:"_score"`
	Source struct {
		ChunkID     string `json:"chunk_id"`
		SourceName  string `json:"source_name"`
		Offset      int    `json:"offset"`
		TextContent string `json:"text_content"`
	} `json:"_source"`
}

func (h esHit) toResult() model.SearchResult {
	return model.SearchResult{
		ChunkID: h.Source.ChunkID,
		Content: h.Source.TextContent,
		Metadata: model.ChunkMetadata{
			SourceName: h.Source.SourceName,
			Offset:     h.Source.Offset,
		},
	}
}

func (e *elasticIndex) search(ctx context.Context, query map[string]interface{}) ([]esHit, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return nil, fmt.Errorf("encode search query: %w", err)
	}
	res, err := e.client.Search(
		e.client.Search.WithContext(ctx),
		e.client.Search.WithIndex(e.indexName),
		e.client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search request failed: %s", res.String())
	}

	var parsed struct {
		Hits struct {
			Hits []esHit `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return parsed.Hits.Hits, nil
}
