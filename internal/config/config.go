package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type RewardsConfig struct {
	Env           string `yaml:"env"`
	RewardsDB     `yaml:"rewards_db"`
	SolanaLedger  `yaml:"solana_ledger"`
	KafkaService  `yaml:"kafka-service"`
	RedisCache    `yaml:"redis_cache"`
	MetricsServer `yaml:"metrics_server"`
	LogConfig     `yaml:"log_config"`
}

type RewardsDB struct {
	Dsn            string `yaml:"dsn"`
	MigrationsPath string `yaml:"migrations_path"`
}

type SolanaLedger struct {
	RPCURL         string        `yaml:"rpc_url"`
	ProgramID      string        `yaml:"program_id"`
	PollInterval   time.Duration `yaml:"poll_interval"`
	ConfirmTimeout time.Duration `yaml:"confirm_timeout"`
}

type KafkaService struct {
	Host           string `yaml:"host"`
	Port           string `yaml:"port"`
	RequestsTopic  string `yaml:"requests_topic"`
	EventsTopic    string `yaml:"events_topic"`
	ConsumerGroup  string `yaml:"consumer_group"`
}

type RedisCache struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type MetricsServer struct {
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	LogOutput string `yaml:"log_output"`
}

func MustLoad() *RewardsConfig {

	configPath := os.Getenv("REWARDS_CONFIG_PATH")

	if configPath == "" {
		log.Fatalf("REWARDS_CONFIG_PATH was not found\n")
	}

	if _, err := os.Stat(configPath); err != nil {
		log.Fatalf("failed to find config file: %v\n", err)
	}

	var cfg RewardsConfig
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("failed to read config file: %v", err)
	}

	return &cfg
}
