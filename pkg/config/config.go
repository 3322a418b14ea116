package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Storage driver selection values.
const (
	DriverAuto   = "auto"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Storage StorageConfig
	Redis   RedisConfig
	CORS    CORSConfig
	Log     LogConfig
	Backup  BackupConfig
	Export  ExportConfig
}

// StorageConfig selects and tunes the evaluation store backends.
type StorageConfig struct {
	// Driver is "auto" (probe SQLite, fall back to Redis), "sqlite" or "redis".
	Driver       string
	SQLitePath   string
	BusyTimeout  time.Duration
	MaxOpenConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// BackupConfig bounds snapshot import payloads and tunes the on-disk
// archive of periodic snapshots.
type BackupConfig struct {
	MaxSnapshotBytes int64

	ArchiveEnabled   bool
	ArchiveDir       string
	ArchiveInterval  time.Duration
	ArchiveRetention time.Duration
}

// ExportConfig gates the CSV/PDF score sheet endpoints.
type ExportConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Storage = StorageConfig{
		Driver:       strings.ToLower(v.GetString("STORAGE_DRIVER")),
		SQLitePath:   v.GetString("SQLITE_PATH"),
		BusyTimeout:  parseDuration(v.GetString("SQLITE_BUSY_TIMEOUT"), 5*time.Second),
		MaxOpenConns: v.GetInt("SQLITE_MAX_OPEN_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	maxSnapshot := v.GetInt64("BACKUP_MAX_SNAPSHOT_BYTES")
	if maxSnapshot <= 0 {
		maxSnapshot = 20 * 1024 * 1024
	}
	cfg.Backup = BackupConfig{
		MaxSnapshotBytes: maxSnapshot,
		ArchiveEnabled:   v.GetBool("BACKUP_ARCHIVE_ENABLED"),
		ArchiveDir:       v.GetString("BACKUP_ARCHIVE_DIR"),
		ArchiveInterval:  parseDuration(v.GetString("BACKUP_ARCHIVE_INTERVAL"), 24*time.Hour),
		ArchiveRetention: parseDuration(v.GetString("BACKUP_ARCHIVE_RETENTION"), 30*24*time.Hour),
	}

	cfg.Export = ExportConfig{Enabled: v.GetBool("ENABLE_EXPORTS")}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("STORAGE_DRIVER", DriverAuto)
	v.SetDefault("SQLITE_PATH", "./politrack.db")
	v.SetDefault("SQLITE_BUSY_TIMEOUT", "5s")
	v.SetDefault("SQLITE_MAX_OPEN_CONNS", 1)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("BACKUP_MAX_SNAPSHOT_BYTES", 20*1024*1024)
	v.SetDefault("BACKUP_ARCHIVE_ENABLED", false)
	v.SetDefault("BACKUP_ARCHIVE_DIR", "./backups")
	v.SetDefault("BACKUP_ARCHIVE_INTERVAL", "24h")
	v.SetDefault("BACKUP_ARCHIVE_RETENTION", "720h")
	v.SetDefault("ENABLE_EXPORTS", true)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
