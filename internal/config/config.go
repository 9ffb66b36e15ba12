package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config represents the application configuration structure. Values come
// from a yaml file and are overridden by environment variables.
type Config struct {
	// Environment selects the logger flavour; empty means derive it from DashboardContext.
	Environment string `env:"ENVIRONMENT" yaml:"environment"`
	// DashboardContext is local, dev, test, staging or prod. It picks the NERIS API
	// host, the export bucket and the database credentials.
	DashboardContext string `env:"DASHBOARD_CONTEXT" env-default:"local" yaml:"dashboardContext"`
	// HostUser owns the dbt schemas read from the analytics database.
	HostUser string `env:"HOST_USER" env-default:"root" yaml:"hostUser"`

	// HTTP contains all HTTP server related configurations
	HTTP struct {
		// Addr is the address and port the HTTP server will listen on
		Addr string `env:"HTTP_ADDR" env-default:":8050" yaml:"addr"`
		// ReadTimeout is the maximum duration for reading the entire request, including the body
		ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"1m" yaml:"readTimeout"`
		// ReadHeaderTimeout is the amount of time allowed to read request headers
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s" yaml:"readHeaderTimeout"`
		// WriteTimeout is the maximum duration before timing out writes of the response
		WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"2m" yaml:"writeTimeout"`
		// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled
		IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"2m" yaml:"idleTimeout"`
		// RequestTimeout is the maximum time allowed for processing a single request
		RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" env-default:"1m" yaml:"requestTimeout"`
		// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header
		MaxHeaderBytes int `env:"HTTP_MAX_HEADER_BYTES" env-default:"0" yaml:"maxHeaderBytes"`
		// MetricsPath defines the URL path where metrics are exposed
		MetricsPath string `env:"HTTP_METRICS_PATH" env-default:"/metrics" yaml:"metricsPath"`
		// AllowedOrigins are the origins allowed to embed the dashboard API.
		AllowedOrigins []string `env:"HTTP_ALLOWED_ORIGINS" env-default:"*" yaml:"allowedOrigins"`
	} `yaml:"http"`

	// Data configures where parquet exports are read from.
	Data struct {
		// Storage is s3 or filesystem.
		Storage string `env:"DATA_STORAGE" env-default:"s3" yaml:"storage"`
		// Root is the directory relative filesystem paths resolve against.
		Root string `env:"DATA_ROOT" env-default:"data" yaml:"root"`
		// BucketPrefix is suffixed with the dashboard context to form the bucket.
		BucketPrefix string `env:"DATA_BUCKET_PREFIX" env-default:"neris-analytics-exports" yaml:"bucketPrefix"`
		// S3Secret names the Secrets Manager entry holding the S3 keys; empty
		// means "analytics-export-s3-access-key-local" locally and "{context}_s3" elsewhere.
		S3Secret        string `env:"DATA_S3_SECRET" yaml:"s3Secret"`
		AccessKeyID     string `env:"DATA_S3_ACCESS_KEY_ID" yaml:"accessKeyId"`
		SecretAccessKey string `env:"DATA_S3_SECRET_ACCESS_KEY" yaml:"secretAccessKey"`
		// MaxOpenConnections bounds the DuckDB connection pool.
		MaxOpenConnections int  `env:"DATA_MAX_OPEN_CONNECTIONS" env-default:"8" yaml:"maxOpenConnections"`
		MetadataCache      bool `env:"DATA_PARQUET_METADATA_CACHE" env-default:"true" yaml:"metadataCache"`
	} `yaml:"data"`

	// Database is the analytics database. When Username is empty the
	// credentials are read from Secrets Manager.
	Database struct {
		Username           string        `env:"DATABASE_USERNAME" yaml:"username"`
		Password           string        `env:"DATABASE_PASSWORD" yaml:"password"`
		Host               string        `env:"DATABASE_HOST" env-default:"localhost" yaml:"host"`
		Port               int           `env:"DATABASE_PORT" env-default:"5432" yaml:"port"`
		SslMode            string        `env:"DATABASE_SSL_MODE" env-default:"prefer" yaml:"sslMode"`
		DatabaseName       string        `env:"DATABASE_NAME" env-default:"analytics" yaml:"name"`
		MaxOpenConnections int           `env:"DATABASE_MAX_OPEN_CONNECTIONS" env-default:"4" yaml:"maxOpenConnections"`
		MaxIdleConnections int           `env:"DATABASE_MAX_IDLE_CONNECTIONS" env-default:"1" yaml:"maxIdleConnections"`
		ConnMaxLifetime    time.Duration `env:"DATABASE_CONNECTION_MAX_LIFETIME" env-default:"3m" yaml:"connMaxLifetime"`
		ConnMaxIdleTime    time.Duration `env:"DATABASE_CONNECTION_MAX_IDLE_TIME" env-default:"3m" yaml:"connMaxIdleTime"`
	} `yaml:"database"`

	// Redis backs the permission and memo caches; empty URL means in process.
	Redis struct {
		URL string `env:"REDIS_URL" yaml:"url"`
	} `yaml:"redis"`

	Cache struct {
		// Timeout is how long memoized dashboard results live.
		Timeout time.Duration `env:"CACHE_TIMEOUT" env-default:"15m" yaml:"timeout"`
	} `yaml:"cache"`

	Auth struct {
		// SecretKey verifies embed tokens and signs session cookies.
		SecretKey string `env:"NERIS_SECRET_KEY" yaml:"secretKey"`
		// MockIDs is a JSON list of NERIS IDs used instead of the API in the local context.
		MockIDs string `env:"NERIS_AUTH_MOCK_IDS" yaml:"mockIds"`
		// TTL is how long cached permissions and sessions live.
		TTL time.Duration `env:"NERIS_AUTH_TTL" env-default:"1h" yaml:"ttl"`
		// APIBaseURL overrides the host derived from DashboardContext.
		APIBaseURL   string        `env:"NERIS_API_BASE_URL" yaml:"apiBaseUrl"`
		PathTemplate string        `env:"NERIS_API_PATH_TEMPLATE" env-default:"/v1/auth/user_permissions/{user_sub}" yaml:"pathTemplate"` //nolint: lll
		APITimeout   time.Duration `env:"NERIS_API_TIMEOUT" env-default:"10s" yaml:"apiTimeout"`
		CookieName   string        `env:"NERIS_SESSION_COOKIE" env-default:"_neris_auth_sid" yaml:"cookieName"`
	} `yaml:"auth"`

	ArcGIS struct {
		APIKey string `env:"AGO_API_KEY" yaml:"apiKey"`
		// FeatureServerURL hosts the department boundary, HQ and station layers.
		FeatureServerURL string        `env:"ARCGIS_FEATURE_SERVER_URL" yaml:"featureServerUrl"`
		GeocoderURL      string        `env:"ARCGIS_GEOCODER_URL" env-default:"https://geocode-api.arcgis.com/arcgis/rest/services/World/GeocodeServer" yaml:"geocoderUrl"` //nolint: lll
		Timeout          time.Duration `env:"ARCGIS_TIMEOUT" env-default:"10s" yaml:"timeout"`
	} `yaml:"arcgis"`

	AWS struct {
		Region string `env:"AWS_DEFAULT_REGION" env-default:"us-east-1" yaml:"region"`
	} `yaml:"aws"`

	Map struct {
		// MaxPoints caps the sampled incident points sent to the map.
		MaxPoints int `env:"MAP_MAX_POINTS" env-default:"10000" yaml:"maxPoints"`
		// BasemapURL is the tile URL template of the map background.
		BasemapURL string `env:"MAP_BASEMAP_URL" env-default:"https://{s}.basemaps.cartocdn.com/light_all/{z}/{x}/{y}{r}.png" yaml:"basemapUrl"` //nolint: lll
		// Timezone names the zone incident hours are reported in.
		Timezone string `env:"MAP_TIMEZONE" env-default:"UTC" yaml:"timezone"`
	} `yaml:"map"`

	// GracefulShutdownTimeout is the maximum duration to wait for ongoing requests to complete during shutdown
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"10s" yaml:"gracefulShutdownTimeout"` //nolint: lll
}

// S3SecretName returns the Secrets Manager entry holding the S3 keys.
func (c *Config) S3SecretName() string {
	if c.Data.S3Secret != "" {
		return c.Data.S3Secret
	}
	if c.DashboardContext == "local" {
		return "analytics-export-s3-access-key-local"
	}

	return c.DashboardContext + "_s3"
}

// Load receives the path for yaml config file and returns a filled Config
// struct. A missing file is not an error: the environment alone is read.
func Load(configPath string) (*Config, error) {
	var cfg Config
	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("could not read config from env: %w", err)
		}

		return &cfg, nil
	}

	err := cleanenv.ReadConfig(configPath, &cfg)
	if err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	return &cfg, nil
}
