package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	GigaChat GigaChatConfig
	OpenAI   OpenAIConfig
	RateFeed RateFeedConfig
	Upload   UploadConfig
	Billing  BillingConfig
	Ticker   TickerConfig
	Logger   LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	RateTTL  time.Duration
}

type JWTConfig struct {
	SecretKey  string
	Expiration time.Duration
	RefreshExp time.Duration
}

type GigaChatConfig struct {
	APIKey             string
	Scope              string
	InsecureSkipVerify bool
}

type OpenAIConfig struct {
	APIKey string
	Model  string
}

// RateFeedConfig configures the live mid-market rate source. When APIKey is
// empty the resolver runs in simulated mode.
type RateFeedConfig struct {
	BaseURL        string
	APIKey         string
	RequestTimeout time.Duration
	// RequestsPerSec paces calls to the provider from the ratesync job.
	RequestsPerSec float64
}

type UploadConfig struct {
	// MaxFileSize is the hard ceiling for uploaded documents, in bytes.
	MaxFileSize int64
	// MinExtractedText is the shortest extraction output accepted as readable.
	MinExtractedText int
}

type BillingConfig struct {
	// CheckoutClientID identifies the hosted checkout widget; the widget runs
	// client-side, the server only records its approval callback.
	CheckoutClientID string
}

type TickerConfig struct {
	// Interval between rate refresh sweeps in the ratesync job.
	Interval time.Duration
	// ListenAddr is where the websocket live feed listens.
	ListenAddr string
}

func Load() (*Config, error) {
	// Optional .env file; real environment variables win when both are set.
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	jwtExp, _ := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24"))
	refreshExp, _ := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRATION_HOURS", "168"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	rateTTL, _ := strconv.Atoi(getEnv("REDIS_RATE_TTL_MINUTES", "60"))
	feedTimeout, _ := strconv.Atoi(getEnv("RATE_FEED_TIMEOUT_SECONDS", "10"))
	feedRPS, _ := strconv.ParseFloat(getEnv("RATE_FEED_REQUESTS_PER_SEC", "2"), 64)
	maxFileSize, _ := strconv.ParseInt(getEnv("UPLOAD_MAX_FILE_SIZE", "5242880"), 10, 64)
	minExtracted, _ := strconv.Atoi(getEnv("UPLOAD_MIN_EXTRACTED_TEXT", "32"))
	tickerInterval, _ := strconv.Atoi(getEnv("TICKER_INTERVAL_SECONDS", "300"))
	insecureSkipVerify := getEnv("GIGACHAT_INSECURE_SKIP_VERIFY", "true") == "true"

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "rateguard"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
			RateTTL:  time.Duration(rateTTL) * time.Minute,
		},
		JWT: JWTConfig{
			SecretKey:  getEnv("JWT_SECRET_KEY", "your-secret-key-change-in-production"),
			Expiration: time.Duration(jwtExp) * time.Hour,
			RefreshExp: time.Duration(refreshExp) * time.Hour,
		},
		GigaChat: GigaChatConfig{
			APIKey:             getEnv("GIGACHAT_API_KEY", ""),
			Scope:              getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
			InsecureSkipVerify: insecureSkipVerify,
		},
		OpenAI: OpenAIConfig{
			APIKey: getEnv("OPENAI_API_KEY", ""),
			Model:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		},
		RateFeed: RateFeedConfig{
			BaseURL:        getEnv("RATE_FEED_BASE_URL", "https://api.exchangerate.host"),
			APIKey:         getEnv("RATE_FEED_API_KEY", ""),
			RequestTimeout: time.Duration(feedTimeout) * time.Second,
			RequestsPerSec: feedRPS,
		},
		Upload: UploadConfig{
			MaxFileSize:      maxFileSize,
			MinExtractedText: minExtracted,
		},
		Billing: BillingConfig{
			CheckoutClientID: getEnv("BILLING_CHECKOUT_CLIENT_ID", ""),
		},
		Ticker: TickerConfig{
			Interval:   time.Duration(tickerInterval) * time.Second,
			ListenAddr: getEnv("TICKER_WS_ADDR", ":8081"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
