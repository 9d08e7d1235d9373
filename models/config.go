package models

type Config struct {
	Debug          bool   `yaml:"debug" envconfig:"RGA_DEBUG" default:"false"`
	SemVer         string `yaml:"semver" envconfig:"RGA_SERVICE_SEMVER" default:"0.1.0"`
	ServiceContact string `yaml:"serviceContact" envconfig:"RGA_SERVICE_CONTACT"`

	Api struct {
		Url                      string `yaml:"url" envconfig:"RGA_API_URL"`
		Port                     string `yaml:"port" envconfig:"RGA_API_INTERNAL_PORT" default:"5000"`
		DataPath                 string `yaml:"dataPath" envconfig:"RGA_API_DATA_PATH" default:"/app/data"`
		InsertBatchSize          int    `yaml:"insertBatchSize" envconfig:"RGA_API_INSERT_BATCH_SIZE" default:"10000"`
		BulkIndexingCap          int    `yaml:"bulkIndexingCap" envconfig:"RGA_API_BULK_INDEXING_CAP" default:"4"`
		EncodingConcurrencyLevel int    `yaml:"encodingConcurrencyLevel" envconfig:"RGA_API_ENCODING_CONCURRENCY_LEVEL" default:"8"`
		DefaultLimit             int    `yaml:"defaultLimit" envconfig:"RGA_API_DEFAULT_LIMIT" default:"10"`
		MaxLimit                 int    `yaml:"maxLimit" envconfig:"RGA_API_MAX_LIMIT" default:"5000"`
	} `yaml:"api"`

	Elasticsearch struct {
		Url        string `yaml:"url" envconfig:"RGA_ES_URL" default:"http://localhost:9200"`
		Username   string `yaml:"username" envconfig:"RGA_ES_USERNAME"`
		Password   string `yaml:"password" envconfig:"RGA_ES_PASSWORD"`
		Collection string `yaml:"collection" envconfig:"RGA_ES_COLLECTION" default:"rga"`
		MaxRetries int    `yaml:"maxRetries" envconfig:"RGA_ES_MAX_RETRIES" default:"5"`
	} `yaml:"elasticsearch"`

	Rga struct {
		// population panels, in token order
		PopulationFrequencyStudies []string `yaml:"populationFrequencyStudies" envconfig:"RGA_POP_FREQ_STUDIES" default:"1kG_phase3,GNOMAD_GENOMES"`
		// upper bounds of the frequency buckets, ascending
		PopulationFrequencyBuckets []float64 `yaml:"populationFrequencyBuckets" envconfig:"RGA_POP_FREQ_BUCKETS" default:"0,0.0001,0.0005,0.001,0.005,0.01,0.05,1"`
		// "pair" or "single"
		CompHetQueryMode string `yaml:"compHetQueryMode" envconfig:"RGA_COMP_HET_QUERY_MODE" default:"pair"`
	} `yaml:"rga"`

	Sanitation struct {
		Enabled            bool   `yaml:"enabled" envconfig:"RGA_SANITATION_ENABLED" default:"true"`
		At                 string `yaml:"at" envconfig:"RGA_SANITATION_AT" default:"04:00:00"`
		RequestRetentionHr int    `yaml:"requestRetentionHr" envconfig:"RGA_SANITATION_REQUEST_RETENTION_HOURS" default:"72"`
	} `yaml:"sanitation"`
}
