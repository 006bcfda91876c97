package config

import (
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort     string `mapstructure:"SERVER_PORT"`
	BackendBaseURL string `mapstructure:"BACKEND_BASE_URL"`
	JWTSecret      string `mapstructure:"JWT_SECRET"`
	AmqpURL        string `mapstructure:"AMQP_URL"`
	KafkaBrokers   string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic     string `mapstructure:"KAFKA_NOTIFICATIONS_TOPIC"`
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	AWSRegion      string `mapstructure:"AWS_REGION"`
	SESSender      string `mapstructure:"SES_SENDER"`
	SESRecipient   string `mapstructure:"SES_RECIPIENT"`
	StripeAPIKey   string

	// Pricing policy. Tax rate is fixed per deployment.
	TaxRate            float64 `mapstructure:"TAX_RATE"`
	DefaultDeliveryFee float64 `mapstructure:"DEFAULT_DELIVERY_FEE"`

	// Mobile-money polling budget.
	PollInterval    time.Duration `mapstructure:"POLL_INTERVAL"`
	PollMaxAttempts int           `mapstructure:"POLL_MAX_ATTEMPTS"`

	// Per-call timeout for every backend HTTP request.
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("BACKEND_BASE_URL", "http://localhost:3000")
	viper.SetDefault("KAFKA_NOTIFICATIONS_TOPIC", "order-notifications")
	viper.SetDefault("TAX_RATE", 0.16)
	viper.SetDefault("DEFAULT_DELIVERY_FEE", 150.0)
	viper.SetDefault("POLL_INTERVAL", "5s")
	viper.SetDefault("POLL_MAX_ATTEMPTS", 6)
	viper.SetDefault("REQUEST_TIMEOUT", "10s")

	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err != nil {
		// A missing .env file is fine; anything else is not.
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No .env file found.")
		} else {
			return nil, err
		}
	}

	var cfg Config
	err = viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	cfg.StripeAPIKey = os.Getenv("STRIPE_API_KEY")

	return &cfg, nil
}
