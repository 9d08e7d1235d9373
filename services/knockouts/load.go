package knockouts

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"

	"rga/api/models"

	"go.uber.org/zap"
)

const maxLineBytes = 64 * 1024 * 1024

type LoadStats struct {
	Lines          int    `json:"lines"`
	Individuals    int    `json:"individuals"`
	Skipped        int    `json:"skipped"`
	RecordsIndexed uint64 `json:"recordsIndexed"`
}

// Load reads one KnockoutByIndividual JSON document per line and inserts
// them in batches of Api.InsertBatchSize. Malformed lines are logged and
// skipped; a failed batch stops the load.
func (s *Service) Load(ctx context.Context, collection string, r io.Reader) (LoadStats, error) {
	var stats LoadStats

	batchSize := s.Config.Api.InsertBatchSize
	if batchSize <= 0 {
		batchSize = 1000
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), maxLineBytes)

	batch := make([]models.KnockoutByIndividual, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		indexed, err := s.Insert(ctx, collection, batch)
		stats.RecordsIndexed += indexed
		batch = batch[:0]
		return err
	}

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		stats.Lines++

		var individual models.KnockoutByIndividual
		if err := json.Unmarshal([]byte(line), &individual); err != nil || individual.Id == "" {
			stats.Skipped++
			s.Logger.Warn("skipping malformed knockout line", zap.Int("line", stats.Lines), zap.Error(err))
			continue
		}
		stats.Individuals++

		batch = append(batch, individual)
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return stats, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, err
	}
	if err := flush(); err != nil {
		return stats, err
	}

	s.Logger.Info("knockout load finished",
		zap.Int("lines", stats.Lines),
		zap.Int("individuals", stats.Individuals),
		zap.Int("skipped", stats.Skipped),
		zap.Uint64("recordsIndexed", stats.RecordsIndexed))
	return stats, nil
}
