package services

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"rga/api/metrics"
	"rga/api/models"
	"rga/api/models/ingest"
	"rga/api/services/knockouts"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// knockout files are JSON lines, optionally gzipped
var knockoutFileSuffixes = []string{".jsonl", ".jsonl.gz", ".json", ".json.gz"}

type (
	IngestionService struct {
		Initialized                  bool
		IngestRequestChan            chan ingest.IngestRequest
		IngestRequestMap             map[string]*ingest.IngestRequest
		IngestRequestMapMux          sync.RWMutex
		ConcurrentFileIngestionQueue chan bool
		Knockouts                    *knockouts.Service
		Config                       *models.Config
		Logger                       *zap.Logger

		wg sync.WaitGroup
	}
)

func NewIngestionService(ks *knockouts.Service, cfg *models.Config, logger *zap.Logger) *IngestionService {
	concurrency := cfg.Api.BulkIndexingCap
	if concurrency <= 0 {
		concurrency = 1
	}

	iz := &IngestionService{
		Initialized:                  false,
		IngestRequestChan:            make(chan ingest.IngestRequest),
		IngestRequestMap:             map[string]*ingest.IngestRequest{},
		ConcurrentFileIngestionQueue: make(chan bool, concurrency),
		Knockouts:                    ks,
		Config:                       cfg,
		Logger:                       logger.Named("ingestion"),
	}

	iz.Init()

	return iz
}

func (i *IngestionService) Init() {
	// safeguard to prevent multiple initilizations
	if !i.Initialized {
		// a single listener owns every write to the request map
		go func() {
			for request := range i.IngestRequestChan {
				request.UpdatedAt = time.Now()
				i.IngestRequestMapMux.Lock()
				i.IngestRequestMap[request.Id.String()] = &request
				i.IngestRequestMapMux.Unlock()
				i.refreshGauges()
			}
		}()

		i.Initialized = true
		i.Logger.Info("ingestion service initialized")
	}
}

// ResolveFiles lists the knockout files to load, relative to the data path.
// A directory selects every knockout file below it; otherwise each file
// name must exist.
func (i *IngestionService) ResolveFiles(directory string, fileNames []string) ([]string, error) {
	root := i.Config.Api.DataPath

	if directory != "" {
		base := filepath.Join(root, filepath.Clean("/"+directory))
		var found []string
		err := filepath.Walk(base, func(absolute string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return nil
			}
			if !isKnockoutFile(absolute) {
				i.Logger.Debug("skipping non knockout file", zap.String("file", absolute))
				return nil
			}
			relative, err := filepath.Rel(root, absolute)
			if err != nil {
				return err
			}
			found = append(found, relative)
			return nil
		})
		if err != nil {
			return nil, models.NewValidationError("cannot read directory '%s': %v", directory, err)
		}
		sort.Strings(found)
		return found, nil
	}

	if len(fileNames) == 0 {
		return nil, models.NewValidationError("missing 'fileNames' or 'directory' query parameter")
	}
	var resolved []string
	for _, fileName := range fileNames {
		if fileName == "" {
			return nil, models.NewValidationError("empty file name")
		}
		relative := strings.TrimPrefix(filepath.Clean("/"+fileName), "/")
		info, err := os.Stat(filepath.Join(root, relative))
		if err != nil || info.IsDir() || !isKnockoutFile(relative) {
			return nil, models.NewValidationError("file %s not found", fileName)
		}
		if !slices.Contains(resolved, relative) {
			resolved = append(resolved, relative)
		}
	}
	return resolved, nil
}

// Ingest queues one load per file and returns immediately.
func (i *IngestionService) Ingest(collection string, fileNames []string) []ingest.IngestResponseDTO {
	collection = i.Knockouts.Collection(collection)
	startTime := time.Now()

	responseDtos := []ingest.IngestResponseDTO{}
	for _, fileName := range fileNames {
		request := ingest.IngestRequest{
			Id:         uuid.New(),
			Filename:   fileName,
			Collection: collection,
			State:      ingest.Queued,
			CreatedAt:  startTime,
			UpdatedAt:  startTime,
		}

		// check if there is an already existing ingestion request state
		if !i.claim(request) {
			responseDtos = append(responseDtos, ingest.IngestResponseDTO{
				Filename: fileName,
				State:    ingest.Error,
				Message:  "File already being ingested..",
			})
			continue
		}
		i.Logger.Info("queueing a new knockout ingestion request", zap.String("file", request.Filename))
		i.refreshGauges()

		responseDtos = append(responseDtos, ingest.IngestResponseDTO{
			Id:       request.Id,
			Filename: request.Filename,
			State:    request.State,
			Message:  "Successfully queued..",
		})

		i.wg.Add(1)
		go func(request ingest.IngestRequest) {
			defer i.wg.Done()

			// take a spot in the queue
			i.ConcurrentFileIngestionQueue <- true
			defer func() {
				<-i.ConcurrentFileIngestionQueue
			}()

			request.State = ingest.Running
			i.IngestRequestChan <- request

			stats, err := i.load(request.Filename, request.Collection)
			request.Lines = stats.Lines
			request.Individuals = stats.Individuals
			request.Skipped = stats.Skipped
			request.RecordsIndexed = stats.RecordsIndexed
			if err != nil {
				i.Logger.Error("knockout ingestion failed", zap.String("file", request.Filename), zap.Error(err))
				request.State = ingest.Error
				request.Message = err.Error()
			} else {
				request.State = ingest.Done
				request.Message = fmt.Sprintf("Indexed %d records from %d individuals", stats.RecordsIndexed, stats.Individuals)
			}
			i.IngestRequestChan <- request
		}(request)
	}

	return responseDtos
}

// Wait blocks until every queued load has finished.
func (i *IngestionService) Wait() {
	i.wg.Wait()
}

func (i *IngestionService) load(fileName string, collection string) (knockouts.LoadStats, error) {
	f, err := os.Open(filepath.Join(i.Config.Api.DataPath, fileName))
	if err != nil {
		return knockouts.LoadStats{}, err
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(fileName, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return knockouts.LoadStats{}, err
		}
		defer gz.Close()
		reader = gz
	}

	return i.Knockouts.Load(context.Background(), collection, reader)
}

func (i *IngestionService) FilenameAlreadyRunning(filename string) bool {
	i.IngestRequestMapMux.RLock()
	defer i.IngestRequestMapMux.RUnlock()
	return i.running(filename)
}

// claim records the queued request unless its file is already in flight.
// The check and the write share one lock.
func (i *IngestionService) claim(request ingest.IngestRequest) bool {
	i.IngestRequestMapMux.Lock()
	defer i.IngestRequestMapMux.Unlock()
	if i.running(request.Filename) {
		return false
	}
	i.IngestRequestMap[request.Id.String()] = &request
	return true
}

// running expects the map lock to be held.
func (i *IngestionService) running(filename string) bool {
	for _, request := range i.IngestRequestMap {
		if request.Filename == filename && !request.Finished() {
			return true
		}
	}
	return false
}

// Requests returns a snapshot of every tracked request, oldest first.
func (i *IngestionService) Requests() []ingest.IngestRequest {
	i.IngestRequestMapMux.RLock()
	requests := make([]ingest.IngestRequest, 0, len(i.IngestRequestMap))
	for _, request := range i.IngestRequestMap {
		requests = append(requests, *request)
	}
	i.IngestRequestMapMux.RUnlock()

	sort.Slice(requests, func(a, b int) bool {
		if !requests[a].CreatedAt.Equal(requests[b].CreatedAt) {
			return requests[a].CreatedAt.Before(requests[b].CreatedAt)
		}
		return requests[a].Filename < requests[b].Filename
	})
	return requests
}

func (i *IngestionService) Stats() ingest.IngestStatsDTO {
	stats := ingest.IngestStatsDTO{States: map[ingest.State]int{}}
	for _, request := range i.Requests() {
		stats.States[request.State]++
		stats.RecordsIndexed += request.RecordsIndexed
	}
	return stats
}

// Prune forgets finished requests last updated before the cutoff.
func (i *IngestionService) Prune(before time.Time) int {
	i.IngestRequestMapMux.Lock()
	pruned := 0
	for id, request := range i.IngestRequestMap {
		if request.Finished() && request.UpdatedAt.Before(before) {
			delete(i.IngestRequestMap, id)
			pruned++
		}
	}
	i.IngestRequestMapMux.Unlock()

	i.refreshGauges()
	return pruned
}

func (i *IngestionService) refreshGauges() {
	counts := map[ingest.State]int{ingest.Queued: 0, ingest.Running: 0, ingest.Done: 0, ingest.Error: 0}
	i.IngestRequestMapMux.RLock()
	for _, request := range i.IngestRequestMap {
		counts[request.State]++
	}
	i.IngestRequestMapMux.RUnlock()

	for state, count := range counts {
		metrics.IngestionRequests.WithLabelValues(string(state)).Set(float64(count))
	}
}

func isKnockoutFile(name string) bool {
	for _, suffix := range knockoutFileSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}
