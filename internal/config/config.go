package config

import (
	"log"
	"strings"
	"time"

	"github.com/sangkips/velo-register/internal/domain/enum"
	"github.com/spf13/viper"
)

type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	CORS       CORSConfig
	RateLimit  RateLimitConfig
	Redis      RedisConfig
	BackOffice BackOfficeConfig
	Register   RegisterConfig
	Printer    PrinterConfig
	Log        LogConfig
}

type AppConfig struct {
	Name  string
	Env   string
	Port  string
	Debug bool
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timezone string
}

// JWTConfig validates operator tokens issued by the back office
type JWTConfig struct {
	Secret string
	Leeway time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

// RedisConfig selects the cart store. An empty Addr keeps carts in memory.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CartTTL  time.Duration
}

type BackOfficeConfig struct {
	BaseURL          string
	Timeout          time.Duration
	BreakerFailures  uint32
	BreakerOpenFor   time.Duration
	BreakerHalfOpen  uint32
	MaxListPages     int
	DownloadMaxBytes int64
}

type RegisterConfig struct {
	DefaultStore          enum.Store
	SupportsLocalDownload bool
	DocumentDir           string
	CatalogRefresh        time.Duration
	IdempotencyTTL        time.Duration
}

type PrinterConfig struct {
	Type    string
	USBPath string
	Address string
}

type LogConfig struct {
	Level string
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables: %v", err)
	}

	// Set defaults
	viper.SetDefault("APP_NAME", "velo-register")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "velo_register")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "Europe/Paris")
	viper.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	viper.SetDefault("JWT_LEEWAY_SECONDS", 30)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_CART_TTL_HOURS", 12)
	viper.SetDefault("BACKOFFICE_BASE_URL", "http://localhost:8000/api")
	viper.SetDefault("BACKOFFICE_TIMEOUT_SECONDS", 15)
	viper.SetDefault("BACKOFFICE_BREAKER_FAILURES", 5)
	viper.SetDefault("BACKOFFICE_BREAKER_OPEN_SECONDS", 30)
	viper.SetDefault("BACKOFFICE_BREAKER_HALF_OPEN", 1)
	viper.SetDefault("BACKOFFICE_MAX_LIST_PAGES", 50)
	viper.SetDefault("BACKOFFICE_DOWNLOAD_MAX_BYTES", 20<<20)
	viper.SetDefault("REGISTER_DEFAULT_STORE", string(enum.StoreVilleAvray))
	viper.SetDefault("REGISTER_SUPPORTS_LOCAL_DOWNLOAD", true)
	viper.SetDefault("REGISTER_DOCUMENT_DIR", "./documents")
	viper.SetDefault("CATALOG_REFRESH_INTERVAL", "5m")
	viper.SetDefault("IDEMPOTENCY_TTL_HOURS", 24)
	viper.SetDefault("PRINTER_TYPE", "none")
	viper.SetDefault("LOG_LEVEL", "info")

	store, err := enum.ParseStore(viper.GetString("REGISTER_DEFAULT_STORE"))
	if err != nil {
		log.Printf("Warning: %v, defaulting to %s", err, enum.StoreVilleAvray)
		store = enum.StoreVilleAvray
	}

	return &Config{
		App: AppConfig{
			Name:  viper.GetString("APP_NAME"),
			Env:   viper.GetString("APP_ENV"),
			Port:  viper.GetString("APP_PORT"),
			Debug: viper.GetBool("APP_DEBUG"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
			Timezone: viper.GetString("DB_TIMEZONE"),
		},
		JWT: JWTConfig{
			Secret: viper.GetString("JWT_SECRET"),
			Leeway: time.Duration(viper.GetInt("JWT_LEEWAY_SECONDS")) * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
			CartTTL:  time.Duration(viper.GetInt("REDIS_CART_TTL_HOURS")) * time.Hour,
		},
		BackOffice: BackOfficeConfig{
			BaseURL:          strings.TrimRight(viper.GetString("BACKOFFICE_BASE_URL"), "/"),
			Timeout:          time.Duration(viper.GetInt("BACKOFFICE_TIMEOUT_SECONDS")) * time.Second,
			BreakerFailures:  viper.GetUint32("BACKOFFICE_BREAKER_FAILURES"),
			BreakerOpenFor:   time.Duration(viper.GetInt("BACKOFFICE_BREAKER_OPEN_SECONDS")) * time.Second,
			BreakerHalfOpen:  viper.GetUint32("BACKOFFICE_BREAKER_HALF_OPEN"),
			MaxListPages:     viper.GetInt("BACKOFFICE_MAX_LIST_PAGES"),
			DownloadMaxBytes: viper.GetInt64("BACKOFFICE_DOWNLOAD_MAX_BYTES"),
		},
		Register: RegisterConfig{
			DefaultStore:          store,
			SupportsLocalDownload: viper.GetBool("REGISTER_SUPPORTS_LOCAL_DOWNLOAD"),
			DocumentDir:           viper.GetString("REGISTER_DOCUMENT_DIR"),
			CatalogRefresh:        viper.GetDuration("CATALOG_REFRESH_INTERVAL"),
			IdempotencyTTL:        time.Duration(viper.GetInt("IDEMPOTENCY_TTL_HOURS")) * time.Hour,
		},
		Printer: PrinterConfig{
			Type:    viper.GetString("PRINTER_TYPE"),
			USBPath: viper.GetString("PRINTER_USB_PATH"),
			Address: viper.GetString("PRINTER_ADDRESS"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
	}
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}
