package config

import (
	"log"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

type AuctionConfig struct {
	Env                 string `yaml:"env"`
	HTTPServer          `yaml:"http_server"`
	AuctionDB           `yaml:"auction_db"`
	Redis               `yaml:"redis"`
	KafkaService        `yaml:"kafka-service"`
	LogConfig           `yaml:"log_config"`
	VerificationService `yaml:"verification-service"`
	NotificationService `yaml:"notification-service"`
	Bidding             `yaml:"bidding"`
	MigrationsPath      string `yaml:"migrations_path"`
}

type HTTPServer struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type AuctionDB struct {
	Dsn string `yaml:"dsn"`
}

type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaService struct {
	Host  string `yaml:"host"`
	Port  string `yaml:"port"`
	Topic string `yaml:"topic"`
	Group string `yaml:"group"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	LogOutput string `yaml:"log_output"`
}

type VerificationService struct {
	BaseURL string `yaml:"base_url"`
}

type NotificationService struct {
	BaseURL string `yaml:"base_url"`
}

type Bidding struct {
	// LockTimeoutMs bounds how long a bid waits for the per-auction
	// admission lock before it is rejected as contended.
	LockTimeoutMs int `yaml:"lock_timeout_ms"`
	// TokenPaymentWindowHours is the payment window opened at admin
	// approval for auctions that carry a token amount.
	TokenPaymentWindowHours int `yaml:"token_payment_window_hours"`
	// SchedulerIntervalSec drives the auto-open, auto-close and
	// token-deadline background scans.
	SchedulerIntervalSec int `yaml:"scheduler_interval_sec"`
}

func MustLoad() *AuctionConfig {

	// Processing env config variable and file
	configPath := os.Getenv("AUCTION_CONFIG_PATH")

	if configPath == "" {
		log.Fatalf("AUCTION_CONFIG_PATH was not found\n")
	}

	if _, err := os.Stat(configPath); err != nil {
		log.Fatalf("failed to find config file: %v\n", err)
	}

	// YAML to struct object
	var cfg AuctionConfig
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("failed to read config file: %v", err)
	}

	return &cfg
}
