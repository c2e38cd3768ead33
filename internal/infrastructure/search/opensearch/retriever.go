package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/turtacn/Graphyte-Intelligence/internal/domain/risk"
	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Graphyte-Intelligence/pkg/errors"
)

// DefaultIndex holds the news archive.
const DefaultIndex = "news-articles"

// articleDoc is the indexed form of an article.
type articleDoc struct {
	EntityName string `json:"entity_name,omitempty"`
	Headline   string `json:"headline"`
	Snippet    string `json:"snippet"`
	Source     string `json:"source,omitempty"`
	Published  string `json:"published,omitempty"`
	URL        string `json:"url,omitempty"`
	TypologyGT string `json:"typology_gt,omitempty"`
}

func toDoc(a risk.Article) articleDoc {
	return articleDoc{
		EntityName: a.EntityName,
		Headline:   a.Headline,
		Snippet:    a.Snippet,
		Source:     a.Source,
		Published:  a.Date,
		URL:        a.URL,
		TypologyGT: string(a.GroundTruth),
	}
}

func (d articleDoc) article() risk.Article {
	return risk.Article{
		EntityName: d.EntityName,
		Headline:   d.Headline,
		Snippet:    d.Snippet,
		Source:     d.Source,
		Date:       d.Published,
		URL:        d.URL,
	}
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string     `json:"_id"`
			Source articleDoc `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Retriever runs a simple_query_string search over headline and snippet.
type Retriever struct {
	client *Client
	index  string
	logger logging.Logger
}

// NewRetriever searches index, DefaultIndex when empty.
func NewRetriever(client *Client, index string, logger logging.Logger) *Retriever {
	if index == "" {
		index = DefaultIndex
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Retriever{client: client, index: index, logger: logger}
}

func buildSearchBody(query string, limit int) ([]byte, error) {
	body := map[string]interface{}{
		"size": limit,
		"query": map[string]interface{}{
			"simple_query_string": map[string]interface{}{
				"query":  query,
				"fields": []string{"headline^2", "snippet"},
			},
		},
		"sort": []interface{}{
			"_score",
			map[string]interface{}{"published": map[string]interface{}{"order": "desc", "unmapped_type": "date"}},
		},
	}
	return json.Marshal(body)
}

// Retrieve returns at most limit articles for query, best match first.
// Every failure carries the RetrievalFailure code.
func (r *Retriever) Retrieve(ctx context.Context, query string, limit int) ([]risk.Article, error) {
	if limit <= 0 {
		return []risk.Article{}, nil
	}
	body, err := buildSearchBody(query, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRetrievalFailure, "failed to build search body")
	}

	req := opensearchapi.SearchRequest{
		Index: []string{r.index},
		Body:  bytes.NewReader(body),
	}
	resp, err := req.Do(ctx, r.client.GetClient())
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRetrievalFailure, "opensearch search failed")
	}
	defer resp.Body.Close()

	if resp.IsError() {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.Newf(errors.ErrCodeRetrievalFailure, "opensearch search returned %d", resp.StatusCode).
			WithDetail(strings.TrimSpace(string(raw)))
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRetrievalFailure, "failed to decode search response")
	}

	articles := make([]risk.Article, 0, len(sr.Hits.Hits))
	for _, h := range sr.Hits.Hits {
		if h.Source.Headline == "" && h.Source.Snippet == "" {
			continue
		}
		articles = append(articles, h.Source.article())
		if len(articles) == limit {
			break
		}
	}
	r.logger.Debug("OpenSearch retrieval",
		logging.String("query", query),
		logging.Int("hits", len(articles)))
	return articles, nil
}

//Personal.AI order the ending
