package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Wallet WalletConfig `mapstructure:"wallet"`
	MQ     MQConfig     `mapstructure:"mq"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Kafka  KafkaConfig  `mapstructure:"kafka"`
}

type AppConfig struct {
	Env      string `mapstructure:"env"`
	HttpPort string `mapstructure:"http_port"`
}

// EndpointConfig 描述一个注入的签名端点 (RPC 节点)。
// preferred/restricted 对应 ProviderRegistry 的选择策略。
type EndpointConfig struct {
	Name       string `mapstructure:"name"`
	URL        string `mapstructure:"url"`
	Preferred  bool   `mapstructure:"preferred"`
	Restricted bool   `mapstructure:"restricted"`
}

type WalletConfig struct {
	Endpoints []EndpointConfig `mapstructure:"endpoints"`
	// DefaultEndpoint 是兜底的环境默认端点 (可为空)
	DefaultEndpoint string `mapstructure:"default_endpoint"`
	// Embedded 标记当前运行在受限的嵌入上下文中
	Embedded bool `mapstructure:"embedded"`

	// 回执轮询参数
	ReceiptPollInterval time.Duration `mapstructure:"receipt_poll_interval"`
	ReceiptTimeout      time.Duration `mapstructure:"receipt_timeout"`

	// Prices 是资产到法币价格的固定映射, 供投资组合估值使用。
	// 真实价格源接入之前的占位实现, 可被替换。
	Prices map[string]string `mapstructure:"prices"`
}

type MQConfig struct {
	// Type: "redis"、"kafka" 或 "" (禁用事件发布)
	Type  string `mapstructure:"type"`
	Topic string `mapstructure:"topic"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
}

var Global Config

func Init() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// 环境变量覆盖: wallet.embedded -> WALLET_EMBEDDED
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Printf("Warning: Config file not found, using defaults and environment variables")
		} else {
			log.Fatalf("Fatal error config file: %s \n", err)
		}
	}

	if err := viper.Unmarshal(&Global); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}

	log.Printf("Configuration loaded successfully. Env: %s", Global.App.Env)
}

func setDefaults() {
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.http_port", "8080")

	viper.SetDefault("wallet.embedded", false)
	viper.SetDefault("wallet.receipt_poll_interval", "2s")
	viper.SetDefault("wallet.receipt_timeout", "5m")
	viper.SetDefault("wallet.prices", map[string]string{"ETH": "2000", "LOT": "0"})

	viper.SetDefault("mq.type", "")
	viper.SetDefault("mq.topic", "wallet_events_tx")

	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("kafka.brokers", []string{"localhost:9092"})
}
