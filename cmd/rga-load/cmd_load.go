package main

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"rga/api/models"
	esRepo "rga/api/repositories/elasticsearch"
	"rga/api/services/knockouts"
	"rga/api/utils"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newStore is swapped out in tests.
var newStore = func(cfg *models.Config, logger *zap.Logger) (knockouts.Store, error) {
	es, err := utils.CreateEsConnection(cfg, logger)
	if err != nil {
		return nil, err
	}
	return esRepo.NewKnockoutRepository(cfg, es, logger.Named("elasticsearch")), nil
}

type loadOptions struct {
	file       string
	collection string
	batchSize  int
}

func newLoadCmd() *cobra.Command {
	opts := &loadOptions{}

	loadCmd := &cobra.Command{
		Use:   "load",
		Short: "Load one JSON-lines knockout file (optionally gzipped)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg models.Config
			if err := envconfig.Process("", &cfg); err != nil {
				return err
			}
			return runLoad(cmd.Context(), &cfg, opts, cmd.OutOrStdout())
		},
	}

	loadCmd.Flags().StringVarP(&opts.file, "file", "f", "", "knockout JSON-lines file to load")
	loadCmd.Flags().StringVarP(&opts.collection, "collection", "c", "", "target collection (defaults to RGA_ES_COLLECTION)")
	loadCmd.Flags().IntVarP(&opts.batchSize, "batch-size", "b", 0, "individuals per bulk insert (defaults to RGA_API_INSERT_BATCH_SIZE)")
	_ = loadCmd.MarkFlagRequired("file")

	return loadCmd
}

func runLoad(ctx context.Context, cfg *models.Config, opts *loadOptions, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.batchSize > 0 {
		cfg.Api.InsertBatchSize = opts.batchSize
	}

	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		return err
	}
	defer logger.Sync()

	store, err := newStore(cfg, logger)
	if err != nil {
		return err
	}
	ks, err := knockouts.NewService(cfg, store, logger.Named("knockouts"))
	if err != nil {
		return err
	}
	if err := ks.EnsureIndex(ctx, opts.collection); err != nil {
		return err
	}

	f, err := os.Open(opts.file)
	if err != nil {
		return err
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(opts.file, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return err
		}
		defer gz.Close()
		reader = gz
	}

	stats, err := ks.Load(ctx, opts.collection, reader)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "collection: %s\nlines: %d\nindividuals: %d\nskipped: %d\nrecords indexed: %d\n",
		ks.Collection(opts.collection), stats.Lines, stats.Individuals, stats.Skipped, stats.RecordsIndexed)
	return nil
}
