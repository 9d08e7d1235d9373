package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"rga/api/models"
	"rga/api/models/indexes"
	"rga/api/services/knockouts"
	"rga/api/services/query"
	"rga/api/tests/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingStore struct {
	ensured []string
	batches []int
}

func (s *recordingStore) EnsureIndex(ctx context.Context, collection string) error {
	s.ensured = append(s.ensured, collection)
	return nil
}

func (s *recordingStore) Insert(ctx context.Context, collection string, records []indexes.FlatRecord) (uint64, error) {
	s.batches = append(s.batches, len(records))
	return uint64(len(records)), nil
}

func (s *recordingStore) Search(ctx context.Context, collection string, translation query.Translation, fields []string, skip int, limit int) ([]indexes.FlatRecord, int64, error) {
	return nil, 0, nil
}

func (s *recordingStore) Count(ctx context.Context, collection string, translation query.Translation) (int64, error) {
	return 0, nil
}

func (s *recordingStore) Facet(ctx context.Context, collection string, translation query.Translation, facets []query.Facet) ([]models.FacetResult, error) {
	return nil, nil
}

func (s *recordingStore) Purge(ctx context.Context, collection string) (int64, error) {
	return 0, nil
}

func useRecordingStore(t *testing.T) *recordingStore {
	store := &recordingStore{}
	original := newStore
	newStore = func(cfg *models.Config, logger *zap.Logger) (knockouts.Store, error) {
		return store, nil
	}
	t.Cleanup(func() { newStore = original })
	return store
}

func writeKnockoutFile(t *testing.T) string {
	var buf bytes.Buffer
	for _, individual := range []models.KnockoutByIndividual{common.ScenarioIndividual(), common.SecondIndividual()} {
		blob, err := json.Marshal(individual)
		require.NoError(t, err)
		buf.Write(blob)
		buf.WriteByte('\n')
	}
	path := filepath.Join(t.TempDir(), "knockouts.jsonl")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestLoadCommand(t *testing.T) {
	store := useRecordingStore(t)
	path := writeKnockoutFile(t)

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"load", "--file", path, "--collection", "cohort", "--batch-size", "1"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, []string{"cohort"}, store.ensured)
	assert.Equal(t, []int{1, 2}, store.batches)
	assert.Contains(t, out.String(), "collection: cohort")
	assert.Contains(t, out.String(), "records indexed: 3")
}

func TestLoadCommandRequiresFile(t *testing.T) {
	useRecordingStore(t)

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"load"})
	assert.Error(t, cmd.Execute())
}

func TestRunLoadMissingFile(t *testing.T) {
	useRecordingStore(t)

	err := runLoad(context.Background(), common.InitConfig(), &loadOptions{file: "/does/not/exist.jsonl"}, &bytes.Buffer{})
	assert.Error(t, err)
}
