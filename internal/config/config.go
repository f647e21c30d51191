package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const configPathEnv = "PLANNER_CONFIG"

// Config captures runtime configuration for the itinerary planner service.
type Config struct {
	ListenAddr    string `yaml:"listenAddr"`
	LogLevel      string `yaml:"logLevel"`
	TraceExporter string `yaml:"traceExporter"`

	PlacesSource   string `yaml:"placesSource"`
	StaticDataPath string `yaml:"staticData"`
	InsightSource  string `yaml:"insightSource"`
	ImageSource    string `yaml:"imageSource"`

	GoogleAPIKey string  `yaml:"googleApiKey"`
	GoogleRPS    float64 `yaml:"googleRps"`

	RedditBaseURL   string `yaml:"redditBaseUrl"`
	RedditSubreddit string `yaml:"redditSubreddit"`

	LLMAPIKey  string `yaml:"llmApiKey"`
	LLMBaseURL string `yaml:"llmBaseUrl"`
	LLMModel   string `yaml:"llmModel"`

	CacheBackend    string `yaml:"cacheBackend"`
	RedisURL        string `yaml:"redisUrl"`
	RedisPassword   string `yaml:"redisPassword"`
	RedisDB         int    `yaml:"redisDb"`
	CacheTTLMinutes int    `yaml:"cacheTtlMinutes"`

	MaxInFlight     int `yaml:"maxInFlight"`
	CallTimeoutMS   int `yaml:"callTimeoutMs"`
	RequestTimeoutS int `yaml:"requestTimeoutSeconds"`

	DefaultImage    string `yaml:"defaultImage"`
	DefaultCurrency string `yaml:"defaultCurrency"`

	RateLimitRPS   float64  `yaml:"rateLimitRps"`
	RateLimitBurst int      `yaml:"rateLimitBurst"`
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

func defaultConfig() Config {
	return Config{
		ListenAddr:      ":8080",
		LogLevel:        "info",
		TraceExporter:   "none",
		PlacesSource:    "static",
		StaticDataPath:  "data/sample_places.json",
		InsightSource:   "static",
		ImageSource:     "category",
		GoogleRPS:       5,
		RedditBaseURL:   "https://old.reddit.com",
		RedditSubreddit: "travel",
		LLMModel:        "gpt-4o-mini",
		CacheBackend:    "memory",
		RedisURL:        "localhost:6379",
		CacheTTLMinutes: 360,
		MaxInFlight:     8,
		CallTimeoutMS:   3000,
		RequestTimeoutS: 20,
		DefaultCurrency: "$",
		RateLimitRPS:    2,
		RateLimitBurst:  5,
		AllowedOrigins:  []string{"*"},
	}
}

// FromEnv creates a configuration from defaults, an optional YAML file named by
// PLANNER_CONFIG and environment variables, in increasing precedence.
func FromEnv() (Config, error) {
	_ = godotenv.Load()

	cfg := defaultConfig()
	if path := os.Getenv(configPathEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.ListenAddr = getEnv("PLANNER_LISTEN_ADDR", c.ListenAddr)
	c.LogLevel = getEnv("PLANNER_LOG_LEVEL", c.LogLevel)
	c.TraceExporter = getEnv("PLANNER_TRACE_EXPORTER", c.TraceExporter)
	c.PlacesSource = getEnv("PLANNER_PLACES_SOURCE", c.PlacesSource)
	c.StaticDataPath = getEnv("PLANNER_STATIC_DATA", c.StaticDataPath)
	c.InsightSource = getEnv("PLANNER_INSIGHT_SOURCE", c.InsightSource)
	c.ImageSource = getEnv("PLANNER_IMAGE_SOURCE", c.ImageSource)
	c.GoogleAPIKey = getEnv("GOOGLE_PLACES_API_KEY", c.GoogleAPIKey)
	c.RedditBaseURL = getEnv("PLANNER_REDDIT_BASE_URL", c.RedditBaseURL)
	c.RedditSubreddit = getEnv("PLANNER_REDDIT_SUBREDDIT", c.RedditSubreddit)
	c.LLMAPIKey = getEnv("PLANNER_LLM_API_KEY", c.LLMAPIKey)
	c.LLMBaseURL = getEnv("PLANNER_LLM_BASE_URL", c.LLMBaseURL)
	c.LLMModel = getEnv("PLANNER_LLM_MODEL", c.LLMModel)
	c.CacheBackend = getEnv("PLANNER_CACHE_BACKEND", c.CacheBackend)
	c.RedisURL = getEnv("REDIS_URL", c.RedisURL)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)
	c.DefaultImage = getEnv("PLANNER_DEFAULT_IMAGE", c.DefaultImage)
	c.DefaultCurrency = getEnv("PLANNER_DEFAULT_CURRENCY", c.DefaultCurrency)

	if origins := os.Getenv("PLANNER_ALLOWED_ORIGINS"); origins != "" {
		c.AllowedOrigins = splitList(origins)
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"REDIS_DB", &c.RedisDB},
		{"PLANNER_CACHE_TTL_MIN", &c.CacheTTLMinutes},
		{"PLANNER_MAX_IN_FLIGHT", &c.MaxInFlight},
		{"PLANNER_CALL_TIMEOUT_MS", &c.CallTimeoutMS},
		{"PLANNER_REQUEST_TIMEOUT_S", &c.RequestTimeoutS},
		{"PLANNER_RATE_LIMIT_BURST", &c.RateLimitBurst},
	}
	for _, field := range ints {
		if value := os.Getenv(field.key); value != "" {
			if _, err := fmt.Sscanf(value, "%d", field.dst); err != nil {
				return fmt.Errorf("parse %s: %w", field.key, err)
			}
		}
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{"PLANNER_GOOGLE_RPS", &c.GoogleRPS},
		{"PLANNER_RATE_LIMIT_RPS", &c.RateLimitRPS},
	}
	for _, field := range floats {
		if value := os.Getenv(field.key); value != "" {
			if _, err := fmt.Sscanf(value, "%f", field.dst); err != nil {
				return fmt.Errorf("parse %s: %w", field.key, err)
			}
		}
	}
	return nil
}

func (c *Config) normalize() {
	c.PlacesSource = strings.ToLower(strings.TrimSpace(c.PlacesSource))
	c.InsightSource = strings.ToLower(strings.TrimSpace(c.InsightSource))
	c.ImageSource = strings.ToLower(strings.TrimSpace(c.ImageSource))
	c.CacheBackend = strings.ToLower(strings.TrimSpace(c.CacheBackend))
	c.TraceExporter = strings.ToLower(strings.TrimSpace(c.TraceExporter))
	if c.RedisURL != "" && !strings.Contains(c.RedisURL, "://") {
		c.RedisURL = "redis://" + c.RedisURL
	}
}

// Validate reports the first inconsistent setting.
func (c Config) Validate() error {
	switch c.PlacesSource {
	case "static":
		if c.StaticDataPath == "" {
			return errors.New("PLANNER_STATIC_DATA is required for the static places source")
		}
	case "google":
		if c.GoogleAPIKey == "" {
			return errors.New("GOOGLE_PLACES_API_KEY is required for the google places source")
		}
	default:
		return fmt.Errorf("unknown places source %q", c.PlacesSource)
	}

	switch c.InsightSource {
	case "static":
		if c.PlacesSource != "static" {
			return errors.New("the static insight source needs the static places catalog")
		}
	case "reddit":
	default:
		return fmt.Errorf("unknown insight source %q", c.InsightSource)
	}

	switch c.ImageSource {
	case "category":
	case "google":
		if c.GoogleAPIKey == "" {
			return errors.New("GOOGLE_PLACES_API_KEY is required for the google image source")
		}
	default:
		return fmt.Errorf("unknown image source %q", c.ImageSource)
	}

	switch c.CacheBackend {
	case "memory", "redis", "none":
	default:
		return fmt.Errorf("unknown cache backend %q", c.CacheBackend)
	}

	switch c.TraceExporter {
	case "none", "stdout":
	default:
		return fmt.Errorf("unknown trace exporter %q", c.TraceExporter)
	}

	if c.MaxInFlight <= 0 {
		return errors.New("PLANNER_MAX_IN_FLIGHT must be positive")
	}
	if c.CallTimeoutMS <= 0 || c.RequestTimeoutS <= 0 {
		return errors.New("timeouts must be positive")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return errors.New("rate limit must be positive")
	}
	return nil
}

// CacheTTL is how long provider results stay cached.
func (c Config) CacheTTL() time.Duration { return time.Duration(c.CacheTTLMinutes) * time.Minute }

// CallTimeout bounds every individual provider call.
func (c Config) CallTimeout() time.Duration { return time.Duration(c.CallTimeoutMS) * time.Millisecond }

// RequestTimeout bounds a whole composition run.
func (c Config) RequestTimeout() time.Duration { return time.Duration(c.RequestTimeoutS) * time.Second }

// Secrets lists configured credential values that must never reach a response or log line.
func (c Config) Secrets() []string {
	var out []string
	for _, s := range []string{c.GoogleAPIKey, c.LLMAPIKey, c.RedisPassword} {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
