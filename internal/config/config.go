package config

import (
	"fmt"
	"os"
	"strconv"

	commoncfg "seatplan/common/config"
)

const (
	TriggerModeHTTP   = "http"
	TriggerModeEvents = "events"
)

// Config seatplan 服务配置
type Config struct {
	HTTP struct {
		Addr string
	}

	DBEnabled bool
	Database  commoncfg.DatabaseConfig

	RedisEnabled bool
	Redis        commoncfg.RedisConfig

	MQTTEnabled bool
	MQTT        commoncfg.MQTTConfig

	// 排座服务特定配置
	Placement struct {
		// 触发方式：http（仅 HTTP API）或 events（额外消费 Redis Streams 请求）
		TriggerMode string

		// Redis Streams 配置
		RequestStream string // 排座请求流，如 "seatplan:requests"
		EventStream   string // 完成事件流，如 "seatplan:events"
		ConsumerGroup string
		ConsumerName  string
		BatchSize     int

		CacheTTL int // 结果缓存时间（秒）

		// 固定随机种子（可选）；HasSeed=false 时每次运行按时间取种子
		Seed    int64
		HasSeed bool

		MQTTTopic string
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load 从环境变量加载配置
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	// DB 默认关闭：未配置数据库时使用内存 repo
	cfg.DBEnabled = getEnv("DB_ENABLED", "false") == "true"
	cfg.Database.Host = "localhost"
	cfg.Database.Port = 5432
	cfg.Database.User = "postgres"
	cfg.Database.Password = "postgres"
	cfg.Database.Database = "seatplan"
	cfg.Database.SSLMode = "disable"
	cfg.Database.LoadFromEnv("DB")

	cfg.RedisEnabled = getEnv("REDIS_ENABLED", "false") == "true"
	cfg.Redis.Addr = "localhost:6379"
	cfg.Redis.LoadFromEnv("REDIS")

	cfg.MQTTEnabled = getEnv("MQTT_ENABLED", "false") == "true"
	cfg.MQTT.Broker = "tcp://localhost:1883"
	cfg.MQTT.ClientID = "seatplan"
	cfg.MQTT.QoS = 1
	cfg.MQTT.LoadFromEnv("MQTT")

	cfg.Placement.TriggerMode = getEnv("SEATPLAN_TRIGGER_MODE", TriggerModeHTTP)
	cfg.Placement.RequestStream = getEnv("SEATPLAN_REQUEST_STREAM", "seatplan:requests")
	cfg.Placement.EventStream = getEnv("SEATPLAN_EVENT_STREAM", "seatplan:events")
	cfg.Placement.ConsumerGroup = getEnv("SEATPLAN_CONSUMER_GROUP", "seatplan-group")
	cfg.Placement.ConsumerName = getEnv("SEATPLAN_CONSUMER_NAME", "seatplan-1")
	cfg.Placement.BatchSize = parsePositive(getEnv("SEATPLAN_BATCH_SIZE", "10"), 10)
	cfg.Placement.CacheTTL = parsePositive(getEnv("SEATPLAN_CACHE_TTL", "3600"), 3600)
	cfg.Placement.MQTTTopic = getEnv("SEATPLAN_MQTT_TOPIC", "seatplan/placements")

	if s := os.Getenv("SEATPLAN_SEED"); s != "" {
		seed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid SEATPLAN_SEED %q: %w", s, err)
		}
		cfg.Placement.Seed = seed
		cfg.Placement.HasSeed = true
	}

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 检查配置之间的依赖关系
func (c *Config) Validate() error {
	switch c.Placement.TriggerMode {
	case TriggerModeHTTP:
	case TriggerModeEvents:
		if !c.RedisEnabled {
			return fmt.Errorf("trigger mode %q requires REDIS_ENABLED=true", TriggerModeEvents)
		}
	default:
		return fmt.Errorf("unsupported trigger mode: %s", c.Placement.TriggerMode)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parsePositive(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v
	}
	return def
}
