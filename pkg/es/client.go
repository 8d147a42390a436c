// Package es provides the Elasticsearch client used by the scaled retriever
// backend.
package es

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"smart-tutor-go/internal/config"
	"smart-tutor-go/internal/model"
	"smart-tutor-go/pkg/log"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var ESClient *elasticsearch.Client

// InitES initializes the Elasticsearch client and makes sure the chunk index
// exists. dims is the embedding dimensionality of the dense_vector field.
func InitES(esCfg config.ElasticsearchConfig, dims int) error {
	cfg := elasticsearch.Config{
		Addresses: []string{esCfg.Addresses},
		Username:  esCfg.Username,
		Password:  esCfg.Password,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}
	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return err
	}
	ESClient = client
	return createIndexIfNotExists(esCfg.IndexName, dims)
}

func createIndexIfNotExists(indexName string, dims int) error {
	res, err := ESClient.Indices.Exists([]string{indexName})
	if err != nil {
		log.Errorf("failed to check whether index exists: %v", err)
		return err
	}
	if !res.IsError() && res.StatusCode == http.StatusOK {
		log.Infof("index '%s' already exists", indexName)
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		log.Errorf("unexpected status %d while checking index '%s'", res.StatusCode, indexName)
		return fmt.Errorf("unexpected status while checking index existence: %d", res.StatusCode)
	}

	mapping := fmt.Sprintf(`{
		"mappings": {
			"properties": {
				"chunk_id": { "type": "keyword" },
				"source_name": { "type": "keyword" },
				"offset": { "type": "integer" },
				"text_content": { "type": "text" },
				"vector": {
					"type": "dense_vector",
					"dims": %d,
					"index": true,
					"similarity": "cosine"
				},
				"model_name": { "type": "keyword" }
			}
		}
	}`, dims)

	res, err = ESClient.Indices.Create(
		indexName,
		ESClient.Indices.Create.WithBody(strings.NewReader(mapping)),
	)
	if err != nil {
		log.Errorf("failed to create index '%s': %v", indexName, err)
		return err
	}
	if res.IsError() {
		log.Errorf("Elasticsearch returned an error creating index '%s': %s", indexName, res.String())
		return errors.New("elasticsearch returned an error while creating index")
	}

	log.Infof("index '%s' created", indexName)
	return nil
}

// IndexDocument indexes a single chunk document.
func IndexDocument(ctx context.Context, indexName string, doc model.EsDocument) error {
	docBytes, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      indexName,
		DocumentID: doc.ChunkID,
		Body:       bytes.NewReader(docBytes),
		Refresh:    "true",
	}

	res, err := req.Do(ctx, ESClient)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Errorf("failed to index document into Elasticsearch: %s", res.String())
		return errors.New("failed to index document")
	}

	return nil
}
