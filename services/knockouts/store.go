package knockouts

import (
	"context"

	"rga/api/models"
	"rga/api/models/indexes"
	"rga/api/services/query"
)

// Store is the search backend the engine runs against. The Elasticsearch
// repository implements it.
type Store interface {
	EnsureIndex(ctx context.Context, collection string) error
	Insert(ctx context.Context, collection string, records []indexes.FlatRecord) (uint64, error)
	Search(ctx context.Context, collection string, translation query.Translation, fields []string, skip int, limit int) ([]indexes.FlatRecord, int64, error)
	Count(ctx context.Context, collection string, translation query.Translation) (int64, error)
	Facet(ctx context.Context, collection string, translation query.Translation, facets []query.Facet) ([]models.FacetResult, error)
	Purge(ctx context.Context, collection string) (int64, error)
}
