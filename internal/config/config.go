package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

var Module = fx.Module("config",
	fx.Provide(Load),
	fx.Provide(NewSettingsHolder),
)

// Config holds application configuration. It is built once at start and
// passed to every component; nothing else reads the environment.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string
	StoreLabel  string

	Observability ObservabilityConfig

	Source    SourceConfig
	Insight   InsightConfig
	Cache     CacheConfig
	Dashboard DashboardConfig
}

const (
	SourceStatic   = "static"
	SourceFlatFile = "flat-file"
	SourceRemote   = "remote-api"
)

const (
	PlatformShopify     = "shopify"
	PlatformWooCommerce = "woocommerce"
	PlatformDemo        = "demo"
)

type SourceConfig struct {
	Kind        string
	DataDir     string
	SeedOnStart bool
	Remote      RemoteConfig
}

type RemoteConfig struct {
	Platform string
	Timeout  time.Duration
	PageSize int

	ShopifyStore      string
	ShopifyToken      string
	ShopifyAPIVersion string

	WooStore          string
	WooConsumerKey    string
	WooConsumerSecret string

	DemoBaseURL string
}

type InsightConfig struct {
	Enabled bool
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Configured reports whether a Gemini call can be attempted at all.
func (c InsightConfig) Configured() bool {
	return c.Enabled && strings.TrimSpace(c.APIKey) != ""
}

const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
	CacheBackendNone   = "none"
)

type CacheConfig struct {
	Backend       string
	TTL           time.Duration
	Size          int
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// ObservabilityConfig feeds the logger, tracer and meter providers.
type ObservabilityConfig struct {
	LogLevel      string
	LogFormat     string
	OtelEnabled   bool
	OtelEndpoint  string
	OtelProtocol  string
	SamplingRatio float64
}

type DashboardConfig struct {
	WindowDays   int
	SettingsPath string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:      getenv("APP_SERVICE", "storepulse"),
		AppVersion:   getenv("SERVICE_VERSION", getenv("APP_VERSION", "0.1.0")),
		Environment:  getenv("DEPLOYMENT_ENV", getenv("ENVIRONMENT", "development")),
		HTTPAddr:     normalizeAddr(getenv("HTTP_ADDR", ":8080")),
		StoreLabel:   getenv("STORE_LABEL", "Premium eCommerce Store"),
		Observability: ObservabilityConfig{
			LogLevel:      strings.ToLower(strings.TrimSpace(getenv("LOG_LEVEL", "info"))),
			LogFormat:     strings.ToLower(strings.TrimSpace(getenv("LOG_FORMAT", "json"))),
			OtelEnabled:   getenvBool("OTEL_ENABLED", false),
			OtelEndpoint:  strings.TrimSpace(getenv("OTEL_EXPORTER_OTLP_ENDPOINT", getenv("OTLP_ENDPOINT", "localhost:4317"))),
			OtelProtocol:  strings.ToLower(strings.TrimSpace(getenv("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL", getenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")))),
			SamplingRatio: getenvFloat("OTEL_SAMPLING_RATIO", 0.1),
		},
		Source: SourceConfig{
			Kind:        normalizeSourceKind(getenv("SOURCE_KIND", SourceStatic)),
			DataDir:     getenv("DATA_DIR", "data"),
			SeedOnStart: getenvBool("SEED_ON_START", true),
			Remote: RemoteConfig{
				Platform:          strings.ToLower(strings.TrimSpace(getenv("REMOTE_PLATFORM", PlatformShopify))),
				Timeout:           getenvDuration("REMOTE_TIMEOUT", 15*time.Second),
				PageSize:          getenvInt("REMOTE_PAGE_SIZE", 250),
				ShopifyStore:      strings.TrimSpace(getenv("SHOPIFY_STORE", "")),
				ShopifyToken:      strings.TrimSpace(getenv("SHOPIFY_ACCESS_TOKEN", "")),
				ShopifyAPIVersion: getenv("SHOPIFY_API_VERSION", "2024-07"),
				WooStore:          strings.TrimSpace(getenv("WOO_STORE", "")),
				WooConsumerKey:    strings.TrimSpace(getenv("WOO_CONSUMER_KEY", "")),
				WooConsumerSecret: strings.TrimSpace(getenv("WOO_CONSUMER_SECRET", "")),
				DemoBaseURL:       strings.TrimRight(getenv("DEMO_API_URL", "https://dummyjson.com"), "/"),
			},
		},
		Insight: InsightConfig{
			Enabled: getenvBool("GEMINI_ENABLED", false),
			APIKey:  strings.TrimSpace(getenv("GEMINI_API_KEY", "")),
			Model:   getenv("GEMINI_MODEL", "gemini-2.5-flash"),
			Timeout: getenvDuration("INSIGHT_TIMEOUT", 20*time.Second),
		},
		Cache: CacheConfig{
			Backend:       normalizeCacheBackend(getenv("CACHE_BACKEND", CacheBackendMemory)),
			TTL:           getenvDuration("CACHE_TTL", 5*time.Minute),
			Size:          getenvInt("CACHE_SIZE", 32),
			RedisAddr:     strings.TrimSpace(getenv("REDIS_ADDR", "localhost:6379")),
			RedisPassword: strings.TrimSpace(getenv("REDIS_PASSWORD", "")),
			RedisDB:       getenvInt("REDIS_DB", 0),
		},
		Dashboard: DashboardConfig{
			WindowDays:   getenvInt("DASHBOARD_WINDOW_DAYS", 30),
			SettingsPath: strings.TrimSpace(getenv("SETTINGS_PATH", "")),
		},
	}

	return cfg
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func normalizeSourceKind(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case SourceFlatFile, "flatfile", "csv":
		return SourceFlatFile
	case SourceRemote, "remote", "api":
		return SourceRemote
	default:
		return SourceStatic
	}
}

func normalizeCacheBackend(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case CacheBackendRedis:
		return CacheBackendRedis
	case CacheBackendNone, "off", "disabled":
		return CacheBackendNone
	default:
		return CacheBackendMemory
	}
}

func normalizeAddr(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return ":8080"
	}
	if !strings.Contains(addr, ":") {
		return ":" + addr
	}
	return addr
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

// getenvDuration accepts Go durations ("15s") or a bare number of seconds.
func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	if parsed, err := time.ParseDuration(value); err == nil && parsed > 0 {
		return parsed
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return def
}
