package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: nothing; the service must boot in offline demo mode with an empty environment
// - default: values common across all environments (timezone, timeouts, labels, etc.)
// - optional credentials switch live integrations on (Bakong settlement, Telegram notifier)
// -----------------------------------------------------------------------------

type Config struct {
	Server   ServerConfig
	CORS     CORSConfig
	Log      LogConfig
	Merchant MerchantConfig
	Bakong   BakongConfig
	Telegram TelegramConfig
	Order    OrderConfig
	Catalog  CatalogConfig
}

type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"3000"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"*"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,X-Terminal-ID"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"false"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"Asia/Phnom_Penh"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"25200"` // 7*60*60
}

type MerchantConfig struct {
	Name          string `envconfig:"MERCHANT_NAME" default:"Sokpheak Store"`
	City          string `envconfig:"MERCHANT_CITY" default:"Phnom Penh"`
	MerchantID    string `envconfig:"MERCHANT_ID" default:"POS001"`
	AcquiringBank string `envconfig:"MERCHANT_ACQUIRING_BANK" default:"DEV_BANK"`
	StoreLabel    string `envconfig:"MERCHANT_STORE_LABEL" default:"Sokpheak Store"`
	TerminalLabel string `envconfig:"MERCHANT_TERMINAL_LABEL" default:"POS-001"`
	Currency      string `envconfig:"MERCHANT_CURRENCY" default:"KHR"`
	PricingMode   string `envconfig:"PRICING_MODE" default:"catalog"`
}

type BakongConfig struct {
	Token              string        `envconfig:"BAKONG_TOKEN"`
	AccountID          string        `envconfig:"BAKONG_MERCHANT_ID"`
	APIURL             string        `envconfig:"BAKONG_API_URL" default:"https://api-bakong.nbc.gov.kh"`
	Timeout            time.Duration `envconfig:"BAKONG_TIMEOUT" default:"10s"`
	RatePerSecond      float64       `envconfig:"BAKONG_RATE_PER_SECOND" default:"5"`
	Burst              int           `envconfig:"BAKONG_RATE_BURST" default:"10"`
	BreakerMaxFailures uint32        `envconfig:"BAKONG_BREAKER_MAX_FAILURES" default:"5"`
	BreakerOpenTimeout time.Duration `envconfig:"BAKONG_BREAKER_OPEN_TIMEOUT" default:"30s"`
}

type TelegramConfig struct {
	BotToken string        `envconfig:"TELEGRAM_BOT_TOKEN"`
	ChatID   string        `envconfig:"TELEGRAM_CHAT_ID"`
	APIURL   string        `envconfig:"TELEGRAM_API_URL" default:"https://api.telegram.org"`
	Timeout  time.Duration `envconfig:"TELEGRAM_TIMEOUT" default:"10s"`
}

type OrderConfig struct {
	TTL           time.Duration `envconfig:"ORDER_TTL" default:"5m"`
	SweepInterval time.Duration `envconfig:"ORDER_SWEEP_INTERVAL" default:"0s"`
}

type CatalogConfig struct {
	File string `envconfig:"CATALOG_FILE"`
	DSN  string `envconfig:"CATALOG_DSN"`
}

// SettlementEnabled reports whether live settlement checks against Bakong are configured.
func (c BakongConfig) SettlementEnabled() bool {
	return c.Token != "" && c.AccountID != ""
}

func (c TelegramConfig) Enabled() bool {
	return c.BotToken != "" && c.ChatID != ""
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:            "8889", // Test port
			ShutdownTimeout: time.Second,
		},
		CORS: CORSConfig{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Accept", "X-Terminal-ID"},
			MaxAge:       time.Hour,
		},
		Log: LogConfig{
			Level:          "error", // Error level only for tests
			TimeZone:       "Asia/Phnom_Penh",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: 25200,
		},
		Merchant: MerchantConfig{
			Name:          "Test Store",
			City:          "Phnom Penh",
			MerchantID:    "POS001",
			AcquiringBank: "DEV_BANK",
			StoreLabel:    "Test Store",
			TerminalLabel: "POS-001",
			Currency:      "KHR",
			PricingMode:   "catalog",
		},
		Bakong: BakongConfig{
			APIURL:             "http://localhost:0",
			Timeout:            time.Second,
			RatePerSecond:      100,
			Burst:              100,
			BreakerMaxFailures: 5,
			BreakerOpenTimeout: time.Second,
		},
		Telegram: TelegramConfig{
			APIURL:  "http://localhost:0",
			Timeout: time.Second,
		},
		Order: OrderConfig{
			TTL: 5 * time.Minute,
		},
	}
}
