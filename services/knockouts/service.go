package knockouts

import (
	"context"
	"errors"

	"rga/api/metrics"
	"rga/api/models"
	"rga/api/models/indexes"
	"rga/api/services/encoding"
	"rga/api/services/projection"
	"rga/api/services/query"
	"rga/api/services/views"

	"go.uber.org/zap"
)

type (
	// Service is the knockout engine: it encodes on the way in, translates
	// and reconstructs on the way out. Every backend failure leaves it as
	// a *models.EngineError; malformed queries as a *models.ValidationError.
	Service struct {
		Config        *models.Config
		Store         Store
		Encoder       *encoding.Encoder
		Translator    *query.Translator
		Reconstructor *views.Reconstructor
		Logger        *zap.Logger

		individualFields *projection.Resolver
		geneFields       *projection.Resolver
		variantFields    *projection.Resolver
		recordFields     *projection.Resolver
	}

	Page[T any] struct {
		Results    []T   `json:"results"`
		NumMatches int64 `json:"numMatches"`
		Skip       int   `json:"skip"`
		Limit      int   `json:"limit"`
	}

	// searchResult is one page of flat records plus what is needed to
	// narrow their variants.
	searchResult struct {
		records    []indexes.FlatRecord
		numMatches int64
		skip       int
		limit      int
		predicate  query.VariantPredicate
	}
)

func NewService(cfg *models.Config, store Store, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	translator, err := query.NewTranslatorFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	return &Service{
		Config:        cfg,
		Store:         store,
		Encoder:       encoding.NewEncoder(translator.Studies, translator.Policy, logger.Named("encoder")),
		Translator:    translator,
		Reconstructor: views.NewReconstructor(logger.Named("views")),
		Logger:        logger,

		individualFields: projection.NewResolver(projection.IndividualFields),
		geneFields:       projection.NewResolver(projection.GeneFields),
		variantFields:    projection.NewResolver(projection.VariantFields),
		recordFields:     projection.NewResolver(projection.RecordFields),
	}, nil
}

func (s *Service) Collection(requested string) string {
	if requested != "" {
		return requested
	}
	return s.Config.Elasticsearch.Collection
}

func (s *Service) EnsureIndex(ctx context.Context, collection string) error {
	defer metrics.ObserveOperation("ensureIndex")()
	return s.fail("ensureIndex", s.Store.EnsureIndex(ctx, s.Collection(collection)))
}

// Insert encodes the individuals and writes their records as one batch.
func (s *Service) Insert(ctx context.Context, collection string, individuals []models.KnockoutByIndividual) (uint64, error) {
	records, err := s.Encoder.EncodeAll(ctx, individuals, s.Config.Api.EncodingConcurrencyLevel)
	if err != nil {
		return 0, s.fail("insert", err)
	}
	if len(records) == 0 {
		return 0, nil
	}

	done := metrics.ObserveOperation("insert")
	indexed, err := s.Store.Insert(ctx, s.Collection(collection), records)
	done()
	if err != nil {
		return indexed, s.fail("insert", err)
	}

	tokens := 0
	for _, record := range records {
		tokens += len(record.CompoundFilters)
	}
	metrics.RecordsIndexedTotal.Add(float64(indexed))
	metrics.CompoundTokensTotal.Add(float64(tokens))
	return indexed, nil
}

func (s *Service) IndividualQuery(ctx context.Context, q models.KnockoutQuery) (Page[models.KnockoutByIndividual], error) {
	result, err := s.search(ctx, "individualQuery", q, s.individualFields)
	if err != nil {
		return Page[models.KnockoutByIndividual]{}, err
	}
	return Page[models.KnockoutByIndividual]{
		Results:    s.Reconstructor.Individuals(result.records, result.predicate),
		NumMatches: result.numMatches,
		Skip:       result.skip,
		Limit:      result.limit,
	}, nil
}

func (s *Service) GeneQuery(ctx context.Context, q models.KnockoutQuery) (Page[models.RgaKnockoutByGene], error) {
	result, err := s.search(ctx, "geneQuery", q, s.geneFields)
	if err != nil {
		return Page[models.RgaKnockoutByGene]{}, err
	}
	return Page[models.RgaKnockoutByGene]{
		Results:    s.Reconstructor.Genes(result.records, result.predicate),
		NumMatches: result.numMatches,
		Skip:       result.skip,
		Limit:      result.limit,
	}, nil
}

// VariantQuery pivots the matching records by variant. Only occurrences
// that satisfy the query's variant dimensions get a bucket.
func (s *Service) VariantQuery(ctx context.Context, q models.KnockoutQuery) (Page[models.KnockoutByVariant], error) {
	result, err := s.search(ctx, "variantQuery", q, s.variantFields)
	if err != nil {
		return Page[models.KnockoutByVariant]{}, err
	}

	return Page[models.KnockoutByVariant]{
		Results:    s.Reconstructor.Variants(result.records, q.VariantIds, result.predicate),
		NumMatches: result.numMatches,
		Skip:       result.skip,
		Limit:      result.limit,
	}, nil
}

// RecordQuery returns the flat records as stored.
func (s *Service) RecordQuery(ctx context.Context, q models.KnockoutQuery) (Page[indexes.FlatRecord], error) {
	result, err := s.search(ctx, "recordQuery", q, s.recordFields)
	if err != nil {
		return Page[indexes.FlatRecord]{}, err
	}
	return Page[indexes.FlatRecord]{
		Results:    result.records,
		NumMatches: result.numMatches,
		Skip:       result.skip,
		Limit:      result.limit,
	}, nil
}

func (s *Service) Count(ctx context.Context, q models.KnockoutQuery) (int64, error) {
	translation, err := s.Translator.Translate(q)
	if err != nil {
		return 0, s.fail("count", err)
	}

	defer metrics.ObserveOperation("count")()
	count, err := s.Store.Count(ctx, s.Collection(q.Collection), translation)
	if err != nil {
		return 0, s.fail("count", err)
	}
	return count, nil
}

func (s *Service) Facet(ctx context.Context, q models.KnockoutQuery) ([]models.FacetResult, error) {
	facets, err := query.ParseFacets(q.Facets)
	if err != nil {
		return nil, s.fail("facet", err)
	}
	if len(facets) == 0 {
		return nil, s.fail("facet", models.NewValidationError("at least one facet field is required"))
	}
	translation, err := s.Translator.Translate(q)
	if err != nil {
		return nil, s.fail("facet", err)
	}

	defer metrics.ObserveOperation("facet")()
	results, err := s.Store.Facet(ctx, s.Collection(q.Collection), translation, facets)
	if err != nil {
		return nil, s.fail("facet", err)
	}
	return results, nil
}

// Purge removes every record of the collection.
func (s *Service) Purge(ctx context.Context, collection string) (int64, error) {
	defer metrics.ObserveOperation("purge")()
	deleted, err := s.Store.Purge(ctx, s.Collection(collection))
	if err != nil {
		return 0, s.fail("purge", err)
	}
	return deleted, nil
}

func (s *Service) search(ctx context.Context, op string, q models.KnockoutQuery, resolver *projection.Resolver) (searchResult, error) {
	skip, limit, err := s.pagination(q)
	if err != nil {
		return searchResult{}, s.fail(op, err)
	}
	translation, err := s.Translator.Translate(q)
	if err != nil {
		return searchResult{}, s.fail(op, err)
	}
	predicate, err := s.Translator.Matcher(q)
	if err != nil {
		return searchResult{}, s.fail(op, err)
	}
	fields, err := resolver.Resolve(q.Include, q.Exclude)
	if err != nil {
		return searchResult{}, s.fail(op, err)
	}
	if predicate != nil {
		fields = withFields(fields, indexes.VARIANTS, indexes.VARIANT_JSON)
	}

	s.Logger.Debug("knockout query",
		zap.String("op", op),
		zap.String("translation", translation.String()),
		zap.Strings("fields", fields))

	done := metrics.ObserveOperation(op)
	records, numMatches, err := s.Store.Search(ctx, s.Collection(q.Collection), translation, fields, skip, limit)
	done()
	if err != nil {
		return searchResult{}, s.fail(op, err)
	}

	if recordPredicate := s.Translator.RecordMatcher(q); recordPredicate != nil {
		kept := make([]indexes.FlatRecord, 0, len(records))
		for _, record := range records {
			if recordPredicate(record) {
				kept = append(kept, record)
			}
		}
		records = kept
	}

	return searchResult{
		records:    records,
		numMatches: numMatches,
		skip:       skip,
		limit:      limit,
		predicate:  predicate,
	}, nil
}

func (s *Service) pagination(q models.KnockoutQuery) (int, int, error) {
	limit := q.Limit
	if limit == 0 {
		limit = s.Config.Api.DefaultLimit
	}
	if q.Skip < 0 || limit < 0 {
		return 0, 0, models.NewValidationError("skip and limit must not be negative")
	}
	if s.Config.Api.MaxLimit > 0 && limit > s.Config.Api.MaxLimit {
		return 0, 0, models.NewValidationError("limit %d exceeds the maximum of %d", limit, s.Config.Api.MaxLimit)
	}
	return q.Skip, limit, nil
}

// fail counts the error and wraps anything that is not a validation error.
func (s *Service) fail(op string, err error) error {
	if err == nil {
		return nil
	}
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		metrics.EngineErrorsTotal.WithLabelValues(op, "validation").Inc()
		return err
	}
	metrics.EngineErrorsTotal.WithLabelValues(op, "backend").Inc()
	s.Logger.Error("knockout engine failure", zap.String("op", op), zap.Error(err))
	return models.WrapEngineError(op, err)
}

func withFields(fields []string, required ...string) []string {
	for _, field := range required {
		found := false
		for _, f := range fields {
			if f == field {
				found = true
				break
			}
		}
		if !found {
			fields = append(fields, field)
		}
	}
	return fields
}
