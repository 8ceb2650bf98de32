package config

import (
	"flag"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Локальные и удалённые бэкенды клиента.
const (
	LocalSQLite = "sqlite"
	LocalFile   = "file"

	RemoteNone  = ""
	RemoteHTTP  = "http"
	RemoteRedis = "redis"
)

// DefaultMaxItemLength: предел длины записи в символах.
const DefaultMaxItemLength = 10000

type Config struct {
	// Server-side settings
	DatabaseDSN string `env:"DATABASE_URI"`
	AMQPURL     string `env:"AMQP_URL"`

	// Shared settings
	BaseURL     string `env:"BASE_URL"`
	EnableHTTPS bool   `env:"ENABLE_HTTPS"`

	// Client-side settings
	ServerURL     string `env:"-"`
	DataDir       string `env:"DATA_DIR"`
	LocalBackend  string `env:"LOCAL_BACKEND"`
	RemoteBackend string `env:"REMOTE_BACKEND"`
	RedisURL      string `env:"REDIS_URL"`
	GzipRequests  bool   `env:"GZIP_REQUESTS"`
	MaxItemLength int    `env:"MAX_ITEM_LENGTH"`
	Verbose       bool   `env:"VERBOSE"`
	Version       bool   `env:"-"` // show client version and exit (flag only)
}

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// Server flags
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "строка подключения к БД (postgres DSN или путь SQLite)")
	flag.StringVar(&cfg.AMQPURL, "amqp", cfg.AMQPURL, "RabbitMQ URL для уведомлений об изменениях")
	// Shared/client flags
	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "address of the record server (host:port)")
	flag.BoolVar(&cfg.EnableHTTPS, "https", cfg.EnableHTTPS, "enable HTTPS (client: prefer https scheme for BaseURL)")
	// Client flags
	flag.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "client data directory")
	flag.StringVar(&cfg.LocalBackend, "local", cfg.LocalBackend, "local store: sqlite | file")
	flag.StringVar(&cfg.RemoteBackend, "remote", cfg.RemoteBackend, "remote store: http | redis (empty = local only)")
	flag.StringVar(&cfg.RedisURL, "redis-url", cfg.RedisURL, "redis URL for the redis remote store")
	flag.BoolVar(&cfg.GzipRequests, "gzip", cfg.GzipRequests, "gzip request bodies sent to the record server")
	flag.IntVar(&cfg.MaxItemLength, "max-length", cfg.MaxItemLength, "maximum item length in characters")
	flag.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "verbose logging")
	flag.BoolVar(&cfg.Version, "version", cfg.Version, "Show client version and exit")

	flag.Parse()

	cfg.applyDefaults()
	return cfg
}

var hostPortRe = regexp.MustCompile(`^[A-Za-z0-9\.\-]+:\d{1,5}$`)

func (cfg *Config) applyDefaults() {
	// BaseURL только в виде "address:port" (без схемы и пути), иначе значение по умолчанию
	if !hostPortRe.MatchString(cfg.BaseURL) {
		cfg.BaseURL = "localhost:8081"
	}

	if cfg.EnableHTTPS {
		cfg.ServerURL = "https://" + cfg.BaseURL
	} else {
		cfg.ServerURL = "http://" + cfg.BaseURL
	}

	cfg.LocalBackend = strings.ToLower(strings.TrimSpace(cfg.LocalBackend))
	if cfg.LocalBackend != LocalFile {
		cfg.LocalBackend = LocalSQLite
	}

	cfg.RemoteBackend = strings.ToLower(strings.TrimSpace(cfg.RemoteBackend))
	switch cfg.RemoteBackend {
	case RemoteHTTP, RemoteRedis:
	default:
		cfg.RemoteBackend = RemoteNone
	}
	if cfg.RedisURL == "" {
		cfg.RedisURL = "redis://localhost:6379/0"
	}

	if cfg.MaxItemLength <= 0 {
		cfg.MaxItemLength = DefaultMaxItemLength
	}

	if cfg.DataDir == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			cfg.DataDir = filepath.Join(dir, "UniversalInbox")
		}
	}
}
