package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type APIConfig struct {
	DBDSN     string `envconfig:"DB_DSN" required:"true"`
	Port      string `envconfig:"PORT" default:"8080"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	// Redis cache
	RedisAddr     string `envconfig:"REDIS_ADDR" required:"true"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// AWS / S3 content blobs
	AWSRegion     string `envconfig:"AWS_REGION" required:"true"`
	ContentBucket string `envconfig:"CONTENT_BUCKET" required:"true"`

	// Path selection: serve pages from the denormalized view projection
	// instead of the normalized record store.
	UseViewStore bool `envconfig:"USE_VIEW_STORE" default:"false"`

	ServiceCacheTTL  time.Duration `envconfig:"SERVICE_CACHE_TTL" default:"8h"`
	RCConfigCacheTTL time.Duration `envconfig:"RC_CONFIG_CACHE_TTL" default:"8h"`

	MaxPageSize int `envconfig:"MAX_PAGE_SIZE" default:"100"`

	// Server-side request rate limiting
	RequestsPerSecond float64 `envconfig:"REQUESTS_PER_SECOND" default:"50"`
	RequestBurst      int     `envconfig:"REQUEST_BURST" default:"100"`

	// Per-service THIRD_PARTY category tag overrides, "svc:TAG,svc:TAG"
	CategoryTags map[string]string `envconfig:"THIRD_PARTY_CATEGORY_TAGS"`
}

func LoadAPI() APIConfig {
	var cfg APIConfig
	if err := envconfig.Process("", &cfg); err != nil {
		panic(err)
	}
	return cfg
}
