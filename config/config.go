package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Dosada05/sports-meet/models"
	"github.com/Dosada05/sports-meet/repositories"
	"github.com/joho/godotenv"
)

const (
	BackendFS       = "fs"
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendS3       = "s3"
	BackendRedis    = "redis"
)

type S3Config struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

type RedisConfig struct {
	URL    string
	Prefix string
}

// Config holds every runtime setting of the service.
type Config struct {
	ServerPort   int
	StoreBackend string
	DataDir      string
	DatabaseURL  string
	S3           S3Config
	Redis        RedisConfig
	Keys         repositories.Keys

	MaxBackups   int
	Capabilities []string
	CORSOrigins  []string
	MaxBodyBytes int64

	JWTSecretKey      string
	AdminUsername     string
	AdminPasswordHash string

	Layout   models.MeetLayout
	LogLevel slog.Level
}

// Load reads the configuration from the environment. A .env file in the working
// directory is loaded first when present; variables already set win over it.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.LookupEnv)
}

// FromEnv builds the configuration from lookup, which has the signature of os.LookupEnv.
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	port, err := strconv.Atoi(get("SERVER_PORT", "3001"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	maxBackups, err := strconv.Atoi(get("MAX_BACKUPS", "20"))
	if err != nil || maxBackups < 0 {
		return nil, fmt.Errorf("MAX_BACKUPS must be a non-negative integer, got %q", get("MAX_BACKUPS", ""))
	}

	maxBody, err := strconv.ParseInt(get("MAX_BODY_BYTES", "52428800"), 10, 64)
	if err != nil || maxBody <= 0 {
		return nil, fmt.Errorf("MAX_BODY_BYTES must be a positive integer, got %q", get("MAX_BODY_BYTES", ""))
	}

	level, err := parseLevel(get("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ServerPort:   port,
		StoreBackend: strings.ToLower(get("STORE_BACKEND", BackendFS)),
		DataDir:      get("DATA_DIR", "public/data"),
		DatabaseURL:  get("DATABASE_URL", ""),
		S3: S3Config{
			Bucket:          get("S3_BUCKET", ""),
			Prefix:          get("S3_PREFIX", ""),
			Region:          get("S3_REGION", "auto"),
			Endpoint:        get("S3_ENDPOINT", ""),
			AccessKeyID:     get("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: get("S3_SECRET_ACCESS_KEY", ""),
		},
		Redis: RedisConfig{
			URL:    get("REDIS_URL", "redis://localhost:6379/0"),
			Prefix: get("REDIS_PREFIX", "sportsmeet:"),
		},
		Keys: repositories.Keys{
			Aggregate:     get("AGGREGATE_KEY", "sports_data.json"),
			ClassMapping:  get("CLASS_MAPPING_KEY", "h2c.json"),
			GamesPrefix:   get("GAMES_PREFIX", "games/"),
			PlayersPrefix: get("PLAYERS_PREFIX", "players/"),
			BackupPrefix:  get("BACKUP_PREFIX", "backups/"),
		},
		MaxBackups:        maxBackups,
		Capabilities:      splitList(get("CAPABILITIES", "aggregate,split-files")),
		CORSOrigins:       splitList(get("CORS_ORIGINS", "*")),
		MaxBodyBytes:      maxBody,
		JWTSecretKey:      get("JWT_SECRET_KEY", ""),
		AdminUsername:     get("ADMIN_USERNAME", "admin"),
		AdminPasswordHash: get("ADMIN_PASSWORD_HASH", ""),
		Layout:            models.DefaultMeetLayout(),
		LogLevel:          level,
	}

	switch cfg.StoreBackend {
	case BackendFS, BackendMemory, BackendS3, BackendRedis:
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL environment variable is not set")
		}
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
	if cfg.StoreBackend == BackendS3 && cfg.S3.Bucket == "" {
		return nil, errors.New("S3_BUCKET environment variable is not set")
	}

	if path := get("MEET_LAYOUT_FILE", ""); path != "" {
		layout, err := LoadLayout(path)
		if err != nil {
			return nil, err
		}
		cfg.Layout = layout
	}

	return cfg, nil
}

// LoadLayout reads a TOML file of [[days]] tables.
func LoadLayout(path string) (models.MeetLayout, error) {
	var layout models.MeetLayout
	if _, err := toml.DecodeFile(path, &layout); err != nil {
		return models.MeetLayout{}, fmt.Errorf("decode meet layout %s: %w", path, err)
	}
	if err := validateLayout(layout); err != nil {
		return models.MeetLayout{}, fmt.Errorf("meet layout %s: %w", path, err)
	}
	return layout, nil
}

func validateLayout(layout models.MeetLayout) error {
	if len(layout.Days) == 0 {
		return errors.New("at least one day is required")
	}
	seen := make(map[string]bool)
	for i, d := range layout.Days {
		if d.Number == "" || d.Key == "" || d.Fragment == "" {
			return fmt.Errorf("day %d: number, key and fragment are required", i+1)
		}
		for _, alias := range []string{d.Number, d.Key, d.Fragment} {
			if seen[alias] {
				return fmt.Errorf("day %d: identifier %q is already used", i+1, alias)
			}
			seen[alias] = true
		}
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", s, err)
	}
	return level, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
