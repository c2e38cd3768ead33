package opensearch

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"strings"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/turtacn/Graphyte-Intelligence/internal/domain/risk"
	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Graphyte-Intelligence/pkg/errors"
)

var (
	ErrIndexCreationFailed = errors.New(errors.ErrCodeExternalService, "index creation failed")
	ErrBulkIndexFailed     = errors.New(errors.ErrCodeExternalService, "bulk index failed")
)

// articleMapping keeps entity names as exact keywords and the text fields
// analysed.
const articleMapping = `{
  "settings": {"number_of_shards": 1, "number_of_replicas": 0},
  "mappings": {
    "properties": {
      "entity_name": {"type": "keyword"},
      "headline":    {"type": "text"},
      "snippet":     {"type": "text"},
      "source":      {"type": "keyword"},
      "published":   {"type": "date", "format": "strict_date_optional_time||yyyy-MM-dd", "ignore_malformed": true},
      "url":         {"type": "keyword", "index": false},
      "typology_gt": {"type": "keyword"}
    }
  }
}`

// IndexerConfig holds bulk ingestion parameters.
type IndexerConfig struct {
	BulkBatchSize int
	RefreshPolicy string // "true" | "false" | "wait_for"
}

// BulkResult summarises a bulk load.
type BulkResult struct {
	Succeeded int
	Failed    int
	Errors    []string
}

// Indexer loads articles into the news archive index.
type Indexer struct {
	client *Client
	index  string
	config IndexerConfig
	logger logging.Logger
}

// NewIndexer targets index, DefaultIndex when empty.
func NewIndexer(client *Client, index string, cfg IndexerConfig, logger logging.Logger) *Indexer {
	if index == "" {
		index = DefaultIndex
	}
	if cfg.BulkBatchSize <= 0 {
		cfg.BulkBatchSize = 500
	}
	if cfg.RefreshPolicy == "" {
		cfg.RefreshPolicy = "false"
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Indexer{client: client, index: index, config: cfg, logger: logger}
}

// IndexExists checks whether the index is present.
func (i *Indexer) IndexExists(ctx context.Context) (bool, error) {
	req := opensearchapi.IndicesExistsRequest{Index: []string{i.index}}
	resp, err := req.Do(ctx, i.client.GetClient())
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeExternalService, "failed to check index existence")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case 200:
		return true, nil
	case 404:
		return false, nil
	}
	return false, errorFromResponse(resp, errors.New(errors.ErrCodeExternalService, "check index existence failed"))
}

// EnsureIndex creates the index with the article mapping when missing.
func (i *Indexer) EnsureIndex(ctx context.Context) error {
	exists, err := i.IndexExists(ctx)
	if err != nil || exists {
		return err
	}

	req := opensearchapi.IndicesCreateRequest{
		Index: i.index,
		Body:  strings.NewReader(articleMapping),
	}
	resp, err := req.Do(ctx, i.client.GetClient())
	if err != nil {
		return ErrIndexCreationFailed.WithCause(err)
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return errorFromResponse(resp, ErrIndexCreationFailed)
	}

	i.logger.Info("Index created", logging.String("index", i.index))
	return nil
}

// articleID derives a stable document id so that re-importing the same
// corpus overwrites rather than duplicates.
func articleID(a risk.Article) string {
	h := sha256.Sum256([]byte(a.EntityName + "\x00" + a.Headline + "\x00" + a.Date + "\x00" + a.Source))
	return hex.EncodeToString(h[:16])
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		Status int `json:"status"`
		Error  *struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error,omitempty"`
	} `json:"items"`
}

// IndexArticles bulk-indexes articles in batches. Per-document failures are
// counted in the result; transport failures abort with an error.
func (i *Indexer) IndexArticles(ctx context.Context, articles []risk.Article) (*BulkResult, error) {
	result := &BulkResult{}
	for start := 0; start < len(articles); start += i.config.BulkBatchSize {
		end := start + i.config.BulkBatchSize
		if end > len(articles) {
			end = len(articles)
		}
		if err := i.indexBatch(ctx, articles[start:end], result); err != nil {
			return result, err
		}
	}
	i.logger.Info("Articles indexed",
		logging.String("index", i.index),
		logging.Int("succeeded", result.Succeeded),
		logging.Int("failed", result.Failed))
	return result, nil
}

func (i *Indexer) indexBatch(ctx context.Context, batch []risk.Article, result *BulkResult) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, a := range batch {
		meta := map[string]map[string]string{"index": {"_index": i.index, "_id": articleID(a)}}
		if err := enc.Encode(meta); err != nil {
			return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode bulk action")
		}
		if err := enc.Encode(toDoc(a)); err != nil {
			return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode article")
		}
	}

	req := opensearchapi.BulkRequest{
		Body:    &buf,
		Refresh: i.config.RefreshPolicy,
	}
	resp, err := req.Do(ctx, i.client.GetClient())
	if err != nil {
		return ErrBulkIndexFailed.WithCause(err)
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return errorFromResponse(resp, ErrBulkIndexFailed)
	}

	var br bulkResponse
	if err := json.NewDecoder(resp.Body).Decode(&br); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode bulk response")
	}
	if !br.Errors {
		result.Succeeded += len(batch)
		return nil
	}
	for _, item := range br.Items {
		for _, res := range item {
			if res.Error != nil || res.Status >= 300 {
				result.Failed++
				if res.Error != nil {
					result.Errors = append(result.Errors, res.Error.Type+": "+res.Error.Reason)
				}
			} else {
				result.Succeeded++
			}
		}
	}
	return nil
}

func errorFromResponse(resp *opensearchapi.Response, base *errors.AppError) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return base.WithDetail(strings.TrimSpace(resp.Status() + " " + string(raw)))
}

//Personal.AI order the ending
