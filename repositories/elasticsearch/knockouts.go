package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"rga/api/models"
	"rga/api/models/constants"
	s "rga/api/models/constants/sort"
	"rga/api/models/indexes"
	"rga/api/services/query"
	"rga/api/utils"

	"github.com/Jeffail/gabs"
	"github.com/elastic/go-elasticsearch/v7"
	"github.com/elastic/go-elasticsearch/v7/esapi"
	"github.com/elastic/go-elasticsearch/v7/esutil"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

type KnockoutRepository struct {
	Config *models.Config
	Es     *elasticsearch.Client
	Logger *zap.Logger
}

func NewKnockoutRepository(cfg *models.Config, es *elasticsearch.Client, logger *zap.Logger) *KnockoutRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KnockoutRepository{Config: cfg, Es: es, Logger: logger}
}

// BuildKnockoutQuery renders a translation as a bool filter of terms
// clauses; one terms clause per compound OR-list.
func BuildKnockoutQuery(translation query.Translation) map[string]interface{} {
	filter := []map[string]interface{}{}
	for _, f := range translation.Filters {
		filter = append(filter, map[string]interface{}{
			"terms": map[string]interface{}{
				f.Field: f.Values,
			},
		})
	}
	if translation.Compound != nil {
		for _, clause := range translation.Compound.Clauses {
			filter = append(filter, map[string]interface{}{
				"terms": map[string]interface{}{
					translation.Compound.Field: clause,
				},
			})
		}
	}

	if len(filter) == 0 {
		return map[string]interface{}{
			"match_all": map[string]interface{}{},
		}
	}
	return map[string]interface{}{
		"bool": map[string]interface{}{
			"filter": filter,
		},
	}
}

// EnsureIndex creates the collection with the knockout mapping unless it
// already exists.
func (r *KnockoutRepository) EnsureIndex(ctx context.Context, collection string) error {
	existsRes, err := r.Es.Indices.Exists([]string{collection}, r.Es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return err
	}
	existsRes.Body.Close()

	switch existsRes.StatusCode {
	case 200:
		return nil
	case 404:
	default:
		return fmt.Errorf("failed to check index '%s': got '%s'", collection, existsRes.Status())
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(map[string]interface{}{
		"mappings": indexes.KNOCKOUT_INDEX_MAPPING,
	}); err != nil {
		return err
	}

	res, err := r.Es.Indices.Create(collection,
		r.Es.Indices.Create.WithContext(ctx),
		r.Es.Indices.Create.WithBody(&buf),
	)
	if err != nil {
		return err
	}
	if _, err := r.readResponse(res, "create index"); err != nil {
		return err
	}
	r.Logger.Info("created knockout index", zap.String("collection", collection))
	return nil
}

// Insert bulk-indexes the records by id, then refreshes the collection.
// Any failed item fails the whole batch.
func (r *KnockoutRepository) Insert(ctx context.Context, collection string, records []indexes.FlatRecord) (uint64, error) {
	numWorkers := 1
	if r.Config != nil && r.Config.Api.BulkIndexingCap > 0 {
		numWorkers = r.Config.Api.BulkIndexingCap
	}

	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Index:         collection,
		Client:        r.Es,
		NumWorkers:    numWorkers,
		FlushBytes:    int(5e6),
		FlushInterval: 30 * time.Second,
	})
	if err != nil {
		return 0, err
	}

	var (
		failureMux   sync.Mutex
		firstFailure error
	)
	recordFailure := func(err error) {
		failureMux.Lock()
		defer failureMux.Unlock()
		if firstFailure == nil {
			firstFailure = err
		}
	}

	for _, record := range records {
		b, err := json.Marshal(record)
		if err != nil {
			recordFailure(fmt.Errorf("marshalling %s: %w", record.Id, err))
			continue
		}

		err = bi.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: record.Id,
			Body:       bytes.NewReader(b),
			OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				if err != nil {
					recordFailure(fmt.Errorf("indexing %s: %w", item.DocumentID, err))
					return
				}
				recordFailure(fmt.Errorf("indexing %s: %s: %s", item.DocumentID, res.Error.Type, res.Error.Reason))
			},
		})
		if err != nil {
			recordFailure(err)
			break
		}
	}

	if err := bi.Close(ctx); err != nil {
		return 0, err
	}

	stats := bi.Stats()
	r.Logger.Debug("bulk insert done",
		zap.String("collection", collection),
		zap.Uint64("indexed", stats.NumIndexed),
		zap.Uint64("failed", stats.NumFailed))

	if firstFailure != nil {
		return stats.NumIndexed, firstFailure
	}

	refreshRes, err := r.Es.Indices.Refresh(
		r.Es.Indices.Refresh.WithContext(ctx),
		r.Es.Indices.Refresh.WithIndex(collection),
	)
	if err != nil {
		return stats.NumIndexed, err
	}
	if _, err := r.readResponse(refreshRes, "refresh"); err != nil {
		return stats.NumIndexed, err
	}
	return stats.NumIndexed, nil
}

// Search returns one page of records and the total number of hits.
func (r *KnockoutRepository) Search(ctx context.Context, collection string, translation query.Translation, fields []string, skip int, limit int) ([]indexes.FlatRecord, int64, error) {
	body := map[string]interface{}{
		"query": BuildKnockoutQuery(translation),
		"from":  skip,
		"size":  limit,
		"sort": []map[string]interface{}{
			{indexes.ID: sortOrder(translation)},
		},
	}
	if len(fields) > 0 {
		body["_source"] = map[string]interface{}{
			"includes": fields,
		}
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, 0, err
	}
	r.Logger.Debug("knockout search", zap.String("collection", collection), zap.String("query", translation.String()))

	res, err := r.Es.Search(
		r.Es.Search.WithContext(ctx),
		r.Es.Search.WithIndex(collection),
		r.Es.Search.WithBody(&buf),
		r.Es.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, 0, err
	}
	jsonBody, err := r.readResponse(res, "search")
	if err != nil {
		return nil, 0, err
	}

	parsed, err := gabs.ParseJSON(jsonBody)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if value, ok := parsed.Path("hits.total.value").Data().(float64); ok {
		total = int64(value)
	}

	hits, _ := parsed.Path("hits.hits").Children()
	records := make([]indexes.FlatRecord, 0, len(hits))
	for _, hit := range hits {
		source, ok := hit.Path("_source").Data().(map[string]interface{})
		if !ok {
			continue
		}
		var record indexes.FlatRecord
		if err := mapstructure.Decode(source, &record); err != nil {
			r.Logger.Warn("skipping undecodable knockout record", zap.Error(err))
			continue
		}
		records = append(records, record)
	}
	return records, total, nil
}

func (r *KnockoutRepository) Count(ctx context.Context, collection string, translation query.Translation) (int64, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(map[string]interface{}{
		"query": BuildKnockoutQuery(translation),
	}); err != nil {
		return 0, err
	}

	res, err := r.Es.Count(
		r.Es.Count.WithContext(ctx),
		r.Es.Count.WithIndex(collection),
		r.Es.Count.WithBody(&buf),
	)
	if err != nil {
		return 0, err
	}
	jsonBody, err := r.readResponse(res, "count")
	if err != nil {
		return 0, err
	}

	parsed, err := gabs.ParseJSON(jsonBody)
	if err != nil {
		return 0, err
	}
	count, ok := parsed.Path("count").Data().(float64)
	if !ok {
		return 0, fmt.Errorf("count response without a count: %s", string(jsonBody))
	}
	return int64(count), nil
}

// Facet runs one terms aggregation per facet over the matching records.
func (r *KnockoutRepository) Facet(ctx context.Context, collection string, translation query.Translation, facets []query.Facet) ([]models.FacetResult, error) {
	aggs := map[string]interface{}{}
	for _, facet := range facets {
		aggs[facet.Field] = map[string]interface{}{
			"terms": map[string]interface{}{
				"field": facet.Field,
				"size":  facet.Size,
				"order": map[string]string{
					"_count": "desc",
				},
			},
		}
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(map[string]interface{}{
		"size":  0,
		"query": BuildKnockoutQuery(translation),
		"aggs":  aggs,
	}); err != nil {
		return nil, err
	}

	res, err := r.Es.Search(
		r.Es.Search.WithContext(ctx),
		r.Es.Search.WithIndex(collection),
		r.Es.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, err
	}
	jsonBody, err := r.readResponse(res, "facet")
	if err != nil {
		return nil, err
	}

	parsed, err := gabs.ParseJSON(jsonBody)
	if err != nil {
		return nil, err
	}

	results := make([]models.FacetResult, 0, len(facets))
	for _, facet := range facets {
		result := models.FacetResult{Field: facet.Field, Buckets: []models.FacetBucket{}}
		buckets, _ := parsed.Search("aggregations", facet.Field, "buckets").Children()
		for _, bucket := range buckets {
			count, _ := bucket.Path("doc_count").Data().(float64)
			result.Buckets = append(result.Buckets, models.FacetBucket{
				Value: fmt.Sprint(bucket.Path("key").Data()),
				Count: int64(count),
			})
		}
		results = append(results, result)
	}
	return results, nil
}

// Purge deletes every record of the collection and returns how many went.
func (r *KnockoutRepository) Purge(ctx context.Context, collection string) (int64, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(map[string]interface{}{
		"query": map[string]interface{}{
			"match_all": map[string]interface{}{},
		},
	}); err != nil {
		return 0, err
	}

	res, err := r.Es.DeleteByQuery(
		[]string{collection},
		bytes.NewReader(buf.Bytes()),
		r.Es.DeleteByQuery.WithContext(ctx),
		r.Es.DeleteByQuery.WithRefresh(true),
	)
	if err != nil {
		return 0, err
	}
	jsonBody, err := r.readResponse(res, "purge")
	if err != nil {
		return 0, err
	}

	parsed, err := gabs.ParseJSON(jsonBody)
	if err != nil {
		return 0, err
	}
	deleted, _ := parsed.Path("deleted").Data().(float64)
	r.Logger.Info("purged collection", zap.String("collection", collection), zap.Int64("deleted", int64(deleted)))
	return int64(deleted), nil
}

func sortOrder(translation query.Translation) constants.SortDirection {
	if translation.Order == s.Undefined {
		return s.Ascending
	}
	return translation.Order
}

// readResponse closes the response and returns its body when the status
// is 2xx.
func (r *KnockoutRepository) readResponse(res *esapi.Response, op string) ([]byte, error) {
	defer res.Body.Close()

	code, jsonBody, ok := utils.SplitStatusLine(res.String())
	if !ok || !utils.IsSuccess(code) {
		return nil, fmt.Errorf("failed to %s: got '%s'", op, res.Status())
	}
	return []byte(jsonBody), nil
}
