package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel    string `env:"LOG_LEVEL"`
	Postgres    Postgres
	Redis       Redis
	HTTP        HTTP
	Kafka       Kafka
	API         API
	Cache       Cache
	Jobs        Jobs
	Telegram    Telegram
	GoogleDrive GoogleDrive
	Generator   Generator
	ProfitScale int `env:"PROFIT_SCALE"`
}

type Postgres struct {
	Host            string `env:"PG_HOST"`
	Port            int    `env:"PG_PORT"`
	DbName          string `env:"PG_DB_NAME"`
	Password        string `env:"PG_PASSWORD"`
	User            string `env:"PG_USER"`
	MaxOpenConns    int    `env:"PG_MAX_OPEN_CONNS"`
	ConnMaxLifetime int    `env:"PG_CONN_MAX_LIFETIME"`
	MaxIdleConns    int    `env:"PG_MAX_IDLE_CONNS"`
	ConnMaxIdleTime int    `env:"PG_CONN_MAX_IDLE_TIME"`
	MigrationDir    string `env:"PG_MIGRATION_DIR"`
}

type Redis struct {
	Host     string `env:"REDIS_HOST"`
	Port     int    `env:"REDIS_PORT"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB"`
}

type HTTP struct {
	Port            string        `env:"HTTP_PORT"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT"`
}

type Kafka struct {
	Enabled bool   `env:"KAFKA_ENABLED"`
	Brokers string `env:"KAFKA_BROKERS"`
	Topic   string `env:"KAFKA_TOPIC"`
	GroupID string `env:"KAFKA_GROUP_ID"`
}

type API struct {
	Debug         bool          `env:"API_DEBUG"`
	Timeout       time.Duration `env:"API_TIMEOUT"`
	MarketDataApi MarketDataApi
}

type MarketDataApi struct {
	Url    string `env:"MARKET_DATA_API_URL"`
	Ticker string `env:"MARKET_DATA_TICKER"`
}

type Cache struct {
	ProfitExpiration time.Duration `env:"CACHE_PROFIT_EXPIRATION"`
	QuoteExpiration  time.Duration `env:"CACHE_QUOTE_EXPIRATION"`
}

type Jobs struct {
	RefreshQuoteInterval time.Duration `env:"REFRESH_QUOTE_JOB_INTERVAL"`
	DailyReportCrontab   string        `env:"DAILY_REPORT_JOB_CRONTAB"`
}

type Telegram struct {
	Enabled bool   `env:"TELEGRAM_ENABLED"`
	Token   string `env:"TELEGRAM_TOKEN"`
	ChatID  int64  `env:"TELEGRAM_CHAT_ID"`
}

type GoogleDrive struct {
	Enabled         bool   `env:"GOOGLE_DRIVE_ENABLED"`
	CredentialsFile string `env:"GOOGLE_DRIVE_CREDENTIALS_FILE"`
}

type Generator struct {
	DefaultTransactions int `env:"GENERATOR_DEFAULT_TRANSACTIONS"`
}

func MustLoad() *Config {
	_ = godotenv.Load(".env")

	cfg := &Config{}

	opts := env.Options{RequiredIfNoDef: true}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		log.Fatalf("parse config error: %s", err)
	}

	return cfg
}
