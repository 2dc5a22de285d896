package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var config = viper.New()

type Config struct {
	AppEnv     string `mapstructure:"APP_ENV"`
	AppName    string `mapstructure:"APP_NAME"`
	AppVersion string `mapstructure:"APP_VERSION"`
	TLS        struct {
		Enable   bool   `mapstructure:"ENABLE"`
		CertPath string `mapstructure:"CERT_PATH"`
		KeyPath  string `mapstructure:"KEY_PATH"`
	} `mapstructure:"TLS"`
	Otel struct {
		Addr string `mapstructure:"ADDR"`
	} `mapstructure:"OTEL"`
	Pyroscope struct {
		Addr string `mapstructure:"ADDR"`
	} `mapstructure:"PYROSCOPE"`
	Server struct {
		Addr         string        `mapstructure:"ADDR"`
		ReadTimeout  time.Duration `mapstructure:"READ_TIMEOUT"`
		WriteTimeout time.Duration `mapstructure:"WRITE_TIMEOUT"`
		IdleTimeout  time.Duration `mapstructure:"IDLE_TIMEOUT"`
	} `mapstructure:"HTTP_SERVER"`
	Redis struct {
		Addr        string        `mapstructure:"ADDR"`
		Password    string        `mapstructure:"PASSWORD"`
		DB          int           `mapstructure:"DB"`
		PoolSize    int           `mapstructure:"POOL_SIZE"`
		PoolTimeout time.Duration `mapstructure:"POOL_TIMEOUT"`
	} `mapstructure:"REDIS"`
	Billing struct {
		// WebhookSecret is the shared secret the payment provider
		// signs webhook payloads with.
		WebhookSecret string `mapstructure:"WEBHOOK_SECRET"`
		APIKey        string `mapstructure:"API_KEY"`
		APIAddr       string `mapstructure:"API_ADDR"`
		PurchaseURL   string `mapstructure:"PURCHASE_URL"`
		// SignatureTolerance bounds how stale a signed webhook
		// timestamp may be before the payload is rejected.
		SignatureTolerance time.Duration `mapstructure:"SIGNATURE_TOLERANCE"`
	} `mapstructure:"BILLING"`
	Mail struct {
		Addr   string `mapstructure:"ADDR"`
		APIKey string `mapstructure:"API_KEY"`
		From   string `mapstructure:"FROM"`
	} `mapstructure:"MAIL"`
	Gate struct {
		Enabled    bool          `mapstructure:"ENABLED"`
		AppURL     string        `mapstructure:"APP_URL"`
		LicenseTTL time.Duration `mapstructure:"LICENSE_TTL"`
		TokenTTL   time.Duration `mapstructure:"TOKEN_TTL"`
		DedupTTL   time.Duration `mapstructure:"DEDUP_TTL"`
	} `mapstructure:"GATE"`
	Flagsmith struct {
		Addr     string `mapstructure:"ADDR"`
		ApiKey   string `mapstructure:"API_KEY"`
		GateFlag string `mapstructure:"GATE_FLAG"`
	} `mapstructure:"FLAGSMITH"`
}

var Module = fx.Module("config", fx.Provide(LoadConfig))

func LoadConfig() *Config {

	config.SetConfigName("config")
	config.SetConfigType("yaml")
	config.AddConfigPath(".")

	config.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	config.AutomaticEnv()

	config.SetDefault("HTTP_SERVER.ADDR", ":8080")
	config.SetDefault("HTTP_SERVER.READ_TIMEOUT", 15*time.Second)
	config.SetDefault("HTTP_SERVER.WRITE_TIMEOUT", 15*time.Second)
	config.SetDefault("HTTP_SERVER.IDLE_TIMEOUT", 60*time.Second)
	config.SetDefault("BILLING.SIGNATURE_TOLERANCE", 5*time.Minute)
	config.SetDefault("GATE.ENABLED", true)
	config.SetDefault("GATE.LICENSE_TTL", 30*24*time.Hour)
	config.SetDefault("GATE.TOKEN_TTL", 24*time.Hour)
	config.SetDefault("GATE.DEDUP_TTL", 24*time.Hour)

	if err := config.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			zap.L().Error("failed to read config", zap.Error(err))
			os.Exit(1)
		}
	}

	var cfg Config
	if err := config.Unmarshal(&cfg); err != nil {
		zap.L().Error("failed to unmarshal config", zap.Error(err))
		os.Exit(1)
	}

	return &cfg
}
