package sanitation

import (
	"context"
	"testing"
	"time"

	"rga/api/models"
	"rga/api/models/indexes"
	"rga/api/models/ingest"
	"rga/api/services"
	"rga/api/services/knockouts"
	"rga/api/services/query"
	"rga/api/tests/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type ensureStore struct {
	ensured []string
}

func (s *ensureStore) EnsureIndex(ctx context.Context, collection string) error {
	s.ensured = append(s.ensured, collection)
	return nil
}

func (s *ensureStore) Insert(ctx context.Context, collection string, records []indexes.FlatRecord) (uint64, error) {
	return uint64(len(records)), nil
}

func (s *ensureStore) Search(ctx context.Context, collection string, translation query.Translation, fields []string, skip int, limit int) ([]indexes.FlatRecord, int64, error) {
	return nil, 0, nil
}

func (s *ensureStore) Count(ctx context.Context, collection string, translation query.Translation) (int64, error) {
	return 0, nil
}

func (s *ensureStore) Facet(ctx context.Context, collection string, translation query.Translation, facets []query.Facet) ([]models.FacetResult, error) {
	return nil, nil
}

func (s *ensureStore) Purge(ctx context.Context, collection string) (int64, error) {
	return 0, nil
}

func TestRun(t *testing.T) {
	cfg := common.InitConfig()
	store := &ensureStore{}
	ks, err := knockouts.NewService(cfg, store, zap.NewNop())
	require.NoError(t, err)
	iz := services.NewIngestionService(ks, cfg, zap.NewNop())

	iz.IngestRequestMapMux.Lock()
	iz.IngestRequestMap["stale"] = &ingest.IngestRequest{Filename: "stale.jsonl", State: ingest.Done, UpdatedAt: time.Now().Add(-100 * time.Hour)}
	iz.IngestRequestMap["fresh"] = &ingest.IngestRequest{Filename: "fresh.jsonl", State: ingest.Done, UpdatedAt: time.Now()}
	iz.IngestRequestMapMux.Unlock()

	ss := NewSanitationService(cfg, iz, ks, zap.NewNop())
	assert.False(t, ss.Initialized, "sanitation is disabled in the test config")

	ss.Run(context.Background())

	requests := iz.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, "fresh.jsonl", requests[0].Filename)
	assert.Equal(t, []string{"rga-test"}, store.ensured)
}

func TestInitSchedulesDailyRun(t *testing.T) {
	cfg := common.InitConfig()
	cfg.Sanitation.Enabled = true
	ks, err := knockouts.NewService(cfg, &ensureStore{}, zap.NewNop())
	require.NoError(t, err)

	ss := NewSanitationService(cfg, services.NewIngestionService(ks, cfg, zap.NewNop()), ks, zap.NewNop())
	defer ss.Stop()

	assert.True(t, ss.Initialized)
	assert.Len(t, ss.scheduler.Jobs(), 1)
}
