package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/task_manager/internal/models"
)

type ClientConfig struct {
	URL      string
	User     string
	Password string
}

func NewClient(cfg ClientConfig) (*elasticsearch.Client, error) {
	esCfg := elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
	}

	client, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch error: %s: %s", res.Status(), body)
	}

	return client, nil
}

// Index mirrors tasks into an Elasticsearch index for full-text search.
type Index struct {
	ES   *elasticsearch.Client
	Name string
}

func NewIndex(es *elasticsearch.Client, name string) *Index {
	return &Index{ES: es, Name: name}
}

func (ix *Index) IndexTask(ctx context.Context, t *models.Task) error {
	if ix == nil || ix.ES == nil {
		return nil
	}

	doc, err := json.Marshal(t)
	if err != nil {
		return err
	}

	res, err := ix.ES.Index(
		ix.Name,
		bytes.NewReader(doc),
		ix.ES.Index.WithDocumentID(t.ID),
		ix.ES.Index.WithContext(ctx),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index task: %s", res.Status())
	}
	return nil
}

func (ix *Index) DeleteTask(ctx context.Context, id string) error {
	if ix == nil || ix.ES == nil {
		return nil
	}

	res, err := ix.ES.Delete(
		ix.Name,
		id,
		ix.ES.Delete.WithContext(ctx),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete task from index: %s", res.Status())
	}
	return nil
}

// Search runs a fuzzy multi_match over title/description. Non-admin callers
// get a term filter on the owner id so the ownership scope holds here too.
func (ix *Index) Search(ctx context.Context, query, userID string, admin bool, from, size int) (int64, []models.Task, error) {
	match := map[string]any{
		"multi_match": map[string]any{
			"query":     query,
			"fields":    []string{"title^2", "description"},
			"fuzziness": "AUTO",
		},
	}

	var q map[string]any
	if admin {
		q = match
	} else {
		q = map[string]any{
			"bool": map[string]any{
				"must":   match,
				"filter": map[string]any{"term": map[string]any{"userId.keyword": userID}},
			},
		}
	}

	body := map[string]any{
		"query": q,
		"from":  from,
		"size":  size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, err
	}

	res, err := ix.ES.Search(
		ix.ES.Search.WithContext(ctx),
		ix.ES.Search.WithIndex(ix.Name),
		ix.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return 0, nil, fmt.Errorf("search: %s: %s", res.Status(), strings.TrimSpace(string(body)))
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Task `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	tasks := make([]models.Task, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		tasks[i] = hit.Source
	}
	return r.Hits.Total.Value, tasks, nil
}
