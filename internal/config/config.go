package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	ArchiveNone    = "none"
	ArchiveChannel = "channel"
	ArchiveS3      = "s3"
)

type Config struct {
	AppHost   string
	HTTPPort  string
	AppEnv    string
	LogLevel  string
	LogFormat string

	// SearchServiceURL — если задан, отчёты отправляются в search-service для индексации (POST /search/index/report).
	SearchServiceURL string

	KafkaBrokers     []string
	KafkaTopicReport string

	Telegram struct {
		ClientToken      string
		AdminToken       string
		ManagersGroupID  int64
		StorageChannelID int64
		InitialAdminID   int64
	}

	Intake struct {
		// MediaQuietPeriod — пауза без новых вложений, после которой пачка медиа считается полной.
		MediaQuietPeriod time.Duration
		ReportIDPrefix   string
	}

	Archive struct {
		Backend     string
		S3Bucket    string
		AWSRegion   string
		// EndpointURL — совместимое с S3 хранилище (localstack, MinIO); пусто — AWS.
		EndpointURL string
	}

	AdminCacheTTL time.Duration

	DB struct {
		Driver     string
		Host       string
		Port       string
		User       string
		Password   string
		Database   string
		SSLMode    string
		SQLitePath string
	}
}

func Load() (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	cfg := &Config{
		AppHost:          getEnv("APP_HOST", "0.0.0.0"),
		HTTPPort:         firstEnv("APP_PORT", "HTTP_PORT", "8098"),
		AppEnv:           getEnv("APP_ENV", "development"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "json"),
		SearchServiceURL: getEnv("SEARCH_SERVICE_URL", ""),
		KafkaBrokers:     ParseList(getEnv("KAFKA_BROKERS", "")),
		KafkaTopicReport: getEnv("KAFKA_TOPIC_REPORT", "reports"),
	}

	var err error
	cfg.Telegram.ClientToken = getEnv("CLIENT_BOT_TOKEN", "")
	cfg.Telegram.AdminToken = getEnv("ADMIN_BOT_TOKEN", "")
	if cfg.Telegram.ManagersGroupID, err = getInt64("MANAGERS_GROUP_ID", 0); err != nil {
		return nil, err
	}
	if cfg.Telegram.StorageChannelID, err = getInt64("STORAGE_CHANNEL_ID", 0); err != nil {
		return nil, err
	}
	if cfg.Telegram.InitialAdminID, err = getInt64("INITIAL_ADMIN_ID", 0); err != nil {
		return nil, err
	}

	if cfg.Intake.MediaQuietPeriod, err = getDuration("MEDIA_QUIET_PERIOD", 1500*time.Millisecond); err != nil {
		return nil, err
	}
	cfg.Intake.ReportIDPrefix = getEnv("REPORT_ID_PREFIX", "B")

	cfg.Archive.Backend = strings.ToLower(getEnv("ARCHIVE_BACKEND", ArchiveChannel))
	cfg.Archive.S3Bucket = getEnv("ARCHIVE_S3_BUCKET", "")
	cfg.Archive.AWSRegion = getEnv("AWS_REGION", "us-east-1")
	cfg.Archive.EndpointURL = getEnv("AWS_ENDPOINT_URL", "")

	if cfg.AdminCacheTTL, err = getDuration("ADMIN_CACHE_TTL", time.Minute); err != nil {
		return nil, err
	}

	cfg.DB.Driver = strings.ToLower(getEnv("DB_DRIVER", DriverPostgres))
	cfg.DB.Host = getEnv("DB_HOST", "localhost")
	cfg.DB.Port = getEnv("DB_PORT", "5432")
	cfg.DB.User = getEnv("DB_USER", "postgres")
	cfg.DB.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.DB.Database = getEnv("DB_DATABASE", "report_service")
	cfg.DB.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.DB.SQLitePath = getEnv("SQLITE_PATH", "report_service.db")
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.DB.Driver {
	case DriverPostgres:
		if c.DB.Host == "" || c.DB.Database == "" {
			return errors.New("config: DB_HOST and DB_DATABASE are required")
		}
		if c.AppEnv == "production" && c.DB.Password == "" {
			return errors.New("config: in production DB_PASSWORD is required")
		}
	case DriverSQLite:
		if c.DB.SQLitePath == "" {
			return errors.New("config: SQLITE_PATH is required for sqlite driver")
		}
	default:
		return fmt.Errorf("config: unknown DB_DRIVER %q", c.DB.Driver)
	}
	switch c.Archive.Backend {
	case ArchiveNone:
	case ArchiveChannel:
		if c.Telegram.StorageChannelID == 0 {
			return errors.New("config: STORAGE_CHANNEL_ID is required for channel archive")
		}
	case ArchiveS3:
		if c.Archive.S3Bucket == "" {
			return errors.New("config: ARCHIVE_S3_BUCKET is required for s3 archive")
		}
	default:
		return fmt.Errorf("config: unknown ARCHIVE_BACKEND %q", c.Archive.Backend)
	}
	if c.Intake.MediaQuietPeriod <= 0 {
		return errors.New("config: MEDIA_QUIET_PERIOD must be positive")
	}
	return nil
}

// ValidateBots проверяет настройки, нужные только режиму ботов.
func (c *Config) ValidateBots() error {
	if c.Telegram.ClientToken == "" || c.Telegram.AdminToken == "" {
		return errors.New("config: CLIENT_BOT_TOKEN and ADMIN_BOT_TOKEN are required")
	}
	if c.Telegram.ManagersGroupID == 0 {
		return errors.New("config: MANAGERS_GROUP_ID is required")
	}
	return nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.Database, c.DB.SSLMode)
}

func (c *Config) DatabaseURL() string {
	pass := url.QueryEscape(c.DB.Password)
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DB.User, pass, c.DB.Host, c.DB.Port, c.DB.Database, c.DB.SSLMode)
}

func (c *Config) Addr() string {
	return c.AppHost + ":" + c.HTTPPort
}

// ParseList разбивает строку "a,b , c" на слайс без пустых элементов.
func ParseList(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func firstEnv(keysAndDef ...string) string {
	if len(keysAndDef) == 0 {
		return ""
	}
	def := keysAndDef[len(keysAndDef)-1]
	for _, k := range keysAndDef[:len(keysAndDef)-1] {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt64(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}
