package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"

	"kzmarket/listingworker/helpers"
	apperrors "kzmarket/listingworker/pkg/errors"
)

// Config represents the application configuration
type Config struct {
	// HTTP API configuration
	HTTPAddr string
	AppURL   string

	// Fetch configuration
	VerifyTLS    bool
	FetchTimeout time.Duration
	PaceMin      time.Duration
	PaceMax      time.Duration

	// Extraction configuration
	GazetteerPath string

	// Worker configuration
	WatchURLs      []string
	CrawlInterval  time.Duration
	PublishEnabled bool

	// Redis configuration
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamCount     int
	RedisStreamMaxLength int64

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() Config {
	return Config{
		HTTPAddr:             getEnv("HTTP_ADDR", ":8080"),
		AppURL:               getEnv("APP_URL", ""),
		VerifyTLS:            getEnvBool("VERIFY_TLS", true),
		FetchTimeout:         time.Duration(getEnvInt("FETCH_TIMEOUT_SECONDS", 15)) * time.Second,
		PaceMin:              time.Duration(getEnvInt("PACE_MIN_MS", 1100)) * time.Millisecond,
		PaceMax:              time.Duration(getEnvInt("PACE_MAX_MS", 2600)) * time.Millisecond,
		GazetteerPath:        getEnv("GAZETTEER_PATH", ""),
		WatchURLs:            helpers.SplitAndTrim(getEnv("WATCH_URLS", ""), ","),
		CrawlInterval:        time.Duration(getEnvInt("CRAWL_INTERVAL_SECONDS", 300)) * time.Second,
		PublishEnabled:       getEnvBool("PUBLISH_ENABLED", false),
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:              getEnvInt("REDIS_DB", 0),
		RedisStream:          getEnv("REDIS_STREAM", "listings"),
		RedisStreamCount:     getEnvInt("REDIS_STREAM_COUNT", 1),
		RedisStreamMaxLength: int64(getEnvInt("REDIS_STREAM_MAX_LENGTH", 1000)),
		Environment:          getEnv("LISTING_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration invariants
func (c Config) Validate() error {
	if c.HTTPAddr == "" {
		return apperrors.NewConfiguration("HTTP_ADDR must not be empty", nil)
	}
	if c.FetchTimeout <= 0 {
		return apperrors.NewConfiguration("FETCH_TIMEOUT_SECONDS must be positive", nil)
	}
	if c.PaceMin < 0 || c.PaceMax < c.PaceMin {
		return apperrors.NewConfiguration(fmt.Sprintf("invalid pacing interval [%s, %s]", c.PaceMin, c.PaceMax), nil)
	}
	if len(c.WatchURLs) > 0 && c.CrawlInterval <= 0 {
		return apperrors.NewConfiguration("CRAWL_INTERVAL_SECONDS must be positive when WATCH_URLS is set", nil)
	}
	if c.PublishEnabled {
		if c.RedisAddr == "" || c.RedisStream == "" {
			return apperrors.NewConfiguration("REDIS_ADDR and REDIS_STREAM are required when publishing", nil)
		}
		if c.RedisStreamCount <= 0 {
			return apperrors.NewConfiguration("REDIS_STREAM_COUNT must be positive", nil)
		}
	}
	return nil
}

type gazetteerFile struct {
	Cities []string `yaml:"cities"`
}

// LoadGazetteer reads the ordered place-name list from a YAML file.
// An empty path yields nil, meaning the built-in list. File order is kept as the match order.
func LoadGazetteer(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewConfiguration("failed to read gazetteer "+path, err)
	}

	var file gazetteerFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, apperrors.NewConfiguration("failed to parse gazetteer "+path, err)
	}

	cities := make([]string, 0, len(file.Cities))
	for _, c := range file.Cities {
		if c = strings.TrimSpace(c); c != "" {
			cities = append(cities, c)
		}
	}
	if len(cities) == 0 {
		return nil, apperrors.NewConfiguration("gazetteer "+path+" has no cities", nil)
	}
	return cities, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}
