package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	API    APIConfig
	Import ImportConfig
	Store  StoreConfig
	S3     S3Config
	Log    LogConfig
	CORS   CORSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// APIConfig holds settings for the upstream inventory API.
type APIConfig struct {
	BaseURL            string        `mapstructure:"base_url"`
	Token              string        `mapstructure:"token"`
	Timeout            time.Duration `mapstructure:"timeout"`
	CategoriesBulkPath string        `mapstructure:"categories_bulk_path"`
	AssetsBulkPath     string        `mapstructure:"assets_bulk_path"`
	CategoriesListPath string        `mapstructure:"categories_list_path"`
	LookupPageSize     int           `mapstructure:"lookup_page_size"`
}

// ImportConfig holds pipeline limits and behavior switches.
type ImportConfig struct {
	MaxFileSizeMB int64 `mapstructure:"max_file_size_mb"`
	// EmptyMainCategoryWorkaround reclassifies the server's false-positive
	// "Category '' is duplicated" rejections as accepted.
	EmptyMainCategoryWorkaround bool `mapstructure:"empty_main_category_workaround"`
}

// MaxFileSize returns the upload limit in bytes.
func (i *ImportConfig) MaxFileSize() int64 {
	return i.MaxFileSizeMB * 1024 * 1024
}

// StoreConfig holds import result storage settings.
type StoreConfig struct {
	Provider string        `mapstructure:"provider"`
	TTL      time.Duration `mapstructure:"ttl"`
	RedisURL string        `mapstructure:"redis_url"`
}

// S3Config holds AWS S3 settings for archiving result workbooks.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// Enabled reports whether an archive bucket is configured.
func (s *S3Config) Enabled() bool {
	return s.Bucket != ""
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads configuration from environment variables with the ASSETIMPORT_ prefix.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("ASSETIMPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.environment", "development")

	// Upstream API defaults
	v.SetDefault("api.base_url", "http://localhost:8000/api")
	v.SetDefault("api.token", "")
	v.SetDefault("api.timeout", "0s")
	v.SetDefault("api.categories_bulk_path", "/categories/bulk")
	v.SetDefault("api.assets_bulk_path", "/assets/bulk")
	v.SetDefault("api.categories_list_path", "/categories")
	v.SetDefault("api.lookup_page_size", 100)

	// Import defaults
	v.SetDefault("import.max_file_size_mb", 5)
	v.SetDefault("import.empty_main_category_workaround", true)

	// Result store defaults
	v.SetDefault("store.provider", "memory")
	v.SetDefault("store.ttl", "1h")
	v.SetDefault("store.redis_url", "redis://localhost:6379/0")

	// S3 defaults (archive disabled until a bucket is set)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                           "ASSETIMPORT_SERVER_PORT",
		"server.read_timeout":                   "ASSETIMPORT_SERVER_READ_TIMEOUT",
		"server.write_timeout":                  "ASSETIMPORT_SERVER_WRITE_TIMEOUT",
		"server.environment":                    "ASSETIMPORT_SERVER_ENVIRONMENT",
		"api.base_url":                          "ASSETIMPORT_API_BASE_URL",
		"api.token":                             "ASSETIMPORT_API_TOKEN",
		"api.timeout":                           "ASSETIMPORT_API_TIMEOUT",
		"api.categories_bulk_path":              "ASSETIMPORT_API_CATEGORIES_BULK_PATH",
		"api.assets_bulk_path":                  "ASSETIMPORT_API_ASSETS_BULK_PATH",
		"api.categories_list_path":              "ASSETIMPORT_API_CATEGORIES_LIST_PATH",
		"api.lookup_page_size":                  "ASSETIMPORT_API_LOOKUP_PAGE_SIZE",
		"import.max_file_size_mb":               "ASSETIMPORT_IMPORT_MAX_FILE_SIZE_MB",
		"import.empty_main_category_workaround": "ASSETIMPORT_IMPORT_EMPTY_MAIN_CATEGORY_WORKAROUND",
		"store.provider":                        "ASSETIMPORT_STORE_PROVIDER",
		"store.ttl":                             "ASSETIMPORT_STORE_TTL",
		"store.redis_url":                       "ASSETIMPORT_STORE_REDIS_URL",
		"s3.region":                             "ASSETIMPORT_S3_REGION",
		"s3.bucket":                             "ASSETIMPORT_S3_BUCKET",
		"s3.endpoint":                           "ASSETIMPORT_S3_ENDPOINT",
		"s3.access_key":                         "ASSETIMPORT_S3_ACCESS_KEY",
		"s3.secret_key":                         "ASSETIMPORT_S3_SECRET_KEY",
		"s3.presign_expiry":                     "ASSETIMPORT_S3_PRESIGN_EXPIRY",
		"log.level":                             "ASSETIMPORT_LOG_LEVEL",
		"log.format":                            "ASSETIMPORT_LOG_FORMAT",
		"cors.allowed_origins":                  "ASSETIMPORT_CORS_ALLOWED_ORIGINS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Platform PORT wins unless ASSETIMPORT_SERVER_PORT is set explicitly.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("ASSETIMPORT_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.API = APIConfig{
		BaseURL:            strings.TrimRight(v.GetString("api.base_url"), "/"),
		Token:              v.GetString("api.token"),
		Timeout:            v.GetDuration("api.timeout"),
		CategoriesBulkPath: v.GetString("api.categories_bulk_path"),
		AssetsBulkPath:     v.GetString("api.assets_bulk_path"),
		CategoriesListPath: v.GetString("api.categories_list_path"),
		LookupPageSize:     v.GetInt("api.lookup_page_size"),
	}
	cfg.Import = ImportConfig{
		MaxFileSizeMB:               v.GetInt64("import.max_file_size_mb"),
		EmptyMainCategoryWorkaround: v.GetBool("import.empty_main_category_workaround"),
	}
	cfg.Store = StoreConfig{
		Provider: v.GetString("store.provider"),
		TTL:      v.GetDuration("store.ttl"),
		RedisURL: v.GetString("store.redis_url"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{AllowedOrigins: corsOrigins}

	return cfg, nil
}
