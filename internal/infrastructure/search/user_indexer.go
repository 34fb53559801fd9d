// Package search mirrors users into Elasticsearch.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-hexagonal-users/internal/application"
	"github.com/oksasatya/go-hexagonal-users/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

// UserIndexer keeps one document per user, keyed by the user id.
type UserIndexer struct {
	es     *elasticsearch.Client
	index  string
	logger *logrus.Logger
}

var _ application.UserIndexing = (*UserIndexer)(nil)

func NewUserIndexer(es *elasticsearch.Client, index string, logger *logrus.Logger) *UserIndexer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &UserIndexer{es: es, index: index, logger: logger}
}

// Upsert merges fields into the user document, creating it when missing.
func (i *UserIndexer) Upsert(ctx context.Context, id string, fields map[string]any) error {
	doc := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		doc[k] = v
	}
	doc["id"] = id

	body, err := json.Marshal(map[string]any{"doc": doc, "doc_as_upsert": true})
	if err != nil {
		return err
	}
	req := esapi.UpdateRequest{Index: i.index, DocumentID: id, Body: bytes.NewReader(body), Refresh: "false"}
	return i.do(ctx, req, id, "es upsert", false)
}

// Remove deletes the user document. A missing document is not an error.
func (i *UserIndexer) Remove(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{Index: i.index, DocumentID: id}
	return i.do(ctx, req, id, "es delete", true)
}

// Search performs a multi_match query on email and name.
func (i *UserIndexer) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{entity.FieldEmailAddress + "^2", entity.FieldFullName},
			},
		},
		"size": size,
	}
	b, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := i.es.Search(
		i.es.Search.WithContext(c),
		i.es.Search.WithIndex(i.index),
		i.es.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

type requester interface {
	Do(ctx context.Context, transport esapi.Transport) (*esapi.Response, error)
}

func (i *UserIndexer) do(ctx context.Context, req requester, id, op string, allowMissing bool) error {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := req.Do(c, i.es)
	if err != nil {
		i.logger.WithError(err).WithField("user_id", id).Warn(op + " failed")
		return err
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() && !(allowMissing && res.StatusCode == http.StatusNotFound) {
		i.logger.WithField("status", res.Status()).WithField("user_id", id).Warn(op + " response error")
		return fmt.Errorf("%s %s: %s", op, id, strings.TrimSpace(res.Status()))
	}
	return nil
}

const usersMapping = `{
  "mappings": {
    "properties": {
      "id":           {"type": "keyword"},
      "emailAddress": {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "fullName":     {"type": "text"},
      "age":          {"type": "integer"}
    }
  }
}`

// EnsureIndex creates the users index with its mapping unless it exists.
func (i *UserIndexer) EnsureIndex(ctx context.Context) error {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := esapi.IndicesExistsRequest{Index: []string{i.index}}.Do(c, i.es)
	if err != nil {
		return err
	}
	_ = res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = esapi.IndicesCreateRequest{Index: i.index, Body: strings.NewReader(usersMapping)}.Do(c, i.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	// lost a race with another process creating it
	if res.StatusCode == http.StatusBadRequest {
		return nil
	}
	if res.IsError() {
		return fmt.Errorf("es create index %s: %s", i.index, strings.TrimSpace(res.Status()))
	}
	i.logger.WithField("index", i.index).Info("search index created")
	return nil
}
