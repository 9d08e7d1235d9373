package services

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"rga/api/models"
	"rga/api/models/indexes"
	"rga/api/models/ingest"
	"rga/api/services/knockouts"
	"rga/api/services/query"
	"rga/api/tests/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type insertOnlyStore struct {
	mu      sync.Mutex
	indexed map[string]int
	ensured int

	// when set, inserts wait for it to be closed
	release chan struct{}
}

func (s *insertOnlyStore) EnsureIndex(ctx context.Context, collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensured++
	return nil
}

func (s *insertOnlyStore) Insert(ctx context.Context, collection string, records []indexes.FlatRecord) (uint64, error) {
	if s.release != nil {
		<-s.release
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indexed[collection] += len(records)
	return uint64(len(records)), nil
}

func (s *insertOnlyStore) Search(ctx context.Context, collection string, translation query.Translation, fields []string, skip int, limit int) ([]indexes.FlatRecord, int64, error) {
	return nil, 0, nil
}

func (s *insertOnlyStore) Count(ctx context.Context, collection string, translation query.Translation) (int64, error) {
	return 0, nil
}

func (s *insertOnlyStore) Facet(ctx context.Context, collection string, translation query.Translation, facets []query.Facet) ([]models.FacetResult, error) {
	return nil, nil
}

func (s *insertOnlyStore) Purge(ctx context.Context, collection string) (int64, error) {
	return 0, nil
}

func knockoutLines(t *testing.T) []byte {
	var out []byte
	for _, individual := range []models.KnockoutByIndividual{common.ScenarioIndividual(), common.SecondIndividual()} {
		blob, err := json.Marshal(individual)
		require.NoError(t, err)
		out = append(out, blob...)
		out = append(out, '\n')
	}
	return out
}

func newTestIngestionService(t *testing.T) (*IngestionService, *insertOnlyStore) {
	cfg := common.InitConfig()
	cfg.Api.DataPath = t.TempDir()

	store := &insertOnlyStore{indexed: map[string]int{}}
	ks, err := knockouts.NewService(cfg, store, zap.NewNop())
	require.NoError(t, err)
	return NewIngestionService(ks, cfg, zap.NewNop()), store
}

func writeDataFiles(t *testing.T, root string) {
	lines := knockoutLines(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "cohort"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "cohort", "plain.jsonl"), lines, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "cohort", "notes.txt"), []byte("ignore me"), 0o644))

	f, err := os.Create(filepath.Join(root, "cohort", "packed.jsonl.gz"))
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write(lines)
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())
}

func TestResolveFiles(t *testing.T) {
	iz, _ := newTestIngestionService(t)
	writeDataFiles(t, iz.Config.Api.DataPath)

	t.Run("should list knockout files of a directory", func(t *testing.T) {
		files, err := iz.ResolveFiles("cohort", nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"cohort/packed.jsonl.gz", "cohort/plain.jsonl"}, files)
	})

	t.Run("should accept existing file names", func(t *testing.T) {
		files, err := iz.ResolveFiles("", []string{"cohort/plain.jsonl", "/cohort/plain.jsonl"})
		require.NoError(t, err)
		assert.Equal(t, []string{"cohort/plain.jsonl"}, files)
	})

	t.Run("should reject missing and foreign files", func(t *testing.T) {
		for _, names := range [][]string{nil, {"cohort/missing.jsonl"}, {"cohort/notes.txt"}, {""}} {
			_, err := iz.ResolveFiles("", names)
			assert.Error(t, err, "%v", names)
		}
	})
}

func TestIngest(t *testing.T) {
	iz, store := newTestIngestionService(t)
	writeDataFiles(t, iz.Config.Api.DataPath)

	responses := iz.Ingest("cohort-a", []string{"cohort/plain.jsonl", "cohort/packed.jsonl.gz"})
	require.Len(t, responses, 2)
	for _, response := range responses {
		assert.Equal(t, ingest.Queued, response.State)
	}

	iz.Wait()
	assert.Eventually(t, func() bool {
		for _, request := range iz.Requests() {
			if request.State != ingest.Done {
				return false
			}
		}
		return len(iz.Requests()) == 2
	}, 2*time.Second, 10*time.Millisecond)

	for _, request := range iz.Requests() {
		assert.Equal(t, "cohort-a", request.Collection)
		assert.Equal(t, 2, request.Individuals)
		assert.Equal(t, uint64(3), request.RecordsIndexed)
	}
	assert.Equal(t, 6, store.indexed["cohort-a"])

	stats := iz.Stats()
	assert.Equal(t, 2, stats.States[ingest.Done])
	assert.Equal(t, uint64(6), stats.RecordsIndexed)
}

func TestIngestRejectsRunningFile(t *testing.T) {
	iz, _ := newTestIngestionService(t)

	iz.IngestRequestMapMux.Lock()
	iz.IngestRequestMap["busy"] = &ingest.IngestRequest{Filename: "busy.jsonl", State: ingest.Running}
	iz.IngestRequestMapMux.Unlock()

	responses := iz.Ingest("", []string{"busy.jsonl"})
	require.Len(t, responses, 1)
	assert.Equal(t, ingest.Error, responses[0].State)
}

func TestIngestClaimsConcurrentRequestsOnce(t *testing.T) {
	iz, store := newTestIngestionService(t)
	writeDataFiles(t, iz.Config.Api.DataPath)
	store.release = make(chan struct{})

	const callers = 8
	responses := make([][]ingest.IngestResponseDTO, callers)
	var wg sync.WaitGroup
	for n := 0; n < callers; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			responses[n] = iz.Ingest("", []string{"cohort/plain.jsonl"})
		}(n)
	}
	wg.Wait()

	queued := 0
	for _, response := range responses {
		require.Len(t, response, 1)
		if response[0].State == ingest.Queued {
			queued++
		}
	}
	assert.Equal(t, 1, queued)

	close(store.release)
	iz.Wait()
}

func TestIngestReportsLoadFailures(t *testing.T) {
	iz, _ := newTestIngestionService(t)

	iz.Ingest("", []string{"vanished.jsonl"})
	iz.Wait()

	assert.Eventually(t, func() bool {
		requests := iz.Requests()
		return len(requests) == 1 && requests[0].State == ingest.Error && requests[0].Message != ""
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPrune(t *testing.T) {
	iz, _ := newTestIngestionService(t)
	old := time.Now().Add(-96 * time.Hour)

	iz.IngestRequestMapMux.Lock()
	iz.IngestRequestMap["old-done"] = &ingest.IngestRequest{Filename: "a", State: ingest.Done, UpdatedAt: old}
	iz.IngestRequestMap["old-running"] = &ingest.IngestRequest{Filename: "b", State: ingest.Running, UpdatedAt: old}
	iz.IngestRequestMap["new-done"] = &ingest.IngestRequest{Filename: "c", State: ingest.Done, UpdatedAt: time.Now()}
	iz.IngestRequestMapMux.Unlock()

	assert.Equal(t, 1, iz.Prune(time.Now().Add(-72*time.Hour)))
	assert.Len(t, iz.Requests(), 2)
}
