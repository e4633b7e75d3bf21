package config

import (
	"fmt"
	"time"
)

// Config alertaja 配置
type Config struct {
	Storage  StorageConfig  `yaml:"storage"`
	Redis    RedisConfig    `yaml:"redis"`
	Database DatabaseConfig `yaml:"database"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	SOS      SOSConfig      `yaml:"sos"`
	Dispatch DispatchConfig `yaml:"dispatch"`
	Location LocationConfig `yaml:"location"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Log      LogConfig      `yaml:"log"`
}

// StorageConfig 本地状态存储配置
type StorageConfig struct {
	Backend    string `yaml:"backend"     env:"STORAGE_BACKEND"     env-default:"badger"` // badger 或 redis
	Path       string `yaml:"path"        env:"STORAGE_PATH"        env-default:"./data"`
	Namespace  string `yaml:"namespace"   env:"STORAGE_NAMESPACE"   env-default:"@aj_"`
	SyncWrites bool   `yaml:"sync_writes" env:"STORAGE_SYNC_WRITES" env-default:"true"`
}

// RedisConfig Redis 配置（storage.backend=redis 时使用，同时用于事件流）
type RedisConfig struct {
	Addr        string `yaml:"addr"         env:"REDIS_ADDR"         env-default:"localhost:6379"`
	Password    string `yaml:"password"     env:"REDIS_PASSWORD"`
	DB          int    `yaml:"db"           env:"REDIS_DB"           env-default:"0"`
	EventStream string `yaml:"event_stream" env:"REDIS_EVENT_STREAM"` // 为空则不写事件流
}

// DatabaseConfig 安全站点目录数据库配置（仅 stations sync 使用）
type DatabaseConfig struct {
	Host     string `yaml:"host"      env:"DB_HOST"      env-default:"localhost"`
	Port     int    `yaml:"port"      env:"DB_PORT"      env-default:"5432"`
	User     string `yaml:"user"      env:"DB_USER"      env-default:"postgres"`
	Password string `yaml:"password"  env:"DB_PASSWORD"  env-default:"postgres"`
	Database string `yaml:"database"  env:"DB_NAME"      env-default:"alertaja"`
	SSLMode  string `yaml:"ssl_mode"  env:"DB_SSLMODE"   env-default:"disable"`
	MaxConns int    `yaml:"max_conns" env:"DB_MAX_CONNS" env-default:"4"`
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// MQTTConfig 设备外壳桥接（MQTT）配置
type MQTTConfig struct {
	Broker      string `yaml:"broker"       env:"MQTT_BROKER"`
	ClientID    string `yaml:"client_id"    env:"MQTT_CLIENT_ID"    env-default:"alertaja-core"`
	Username    string `yaml:"username"     env:"MQTT_USERNAME"`
	Password    string `yaml:"password"     env:"MQTT_PASSWORD"`
	QoS         byte   `yaml:"qos"          env:"MQTT_QOS"          env-default:"1"`
	TopicPrefix string `yaml:"topic_prefix" env:"MQTT_TOPIC_PREFIX" env-default:"alertaja/device"`
}

// Enabled 是否配置了 MQTT broker
func (c MQTTConfig) Enabled() bool {
	return c.Broker != ""
}

// SOSConfig SOS 与解锁配置
// 倒计时窗口（10 秒）、长按时长（2 秒）与密码错误提示（500 毫秒）固定，不可配置
type SOSConfig struct {
	PinLength int `yaml:"pin_length" env:"SOS_PIN_LENGTH" env-default:"4"`
}

// DispatchConfig 告警分发配置
type DispatchConfig struct {
	Launcher   string        `yaml:"launcher"    env:"DISPATCH_LAUNCHER"    env-default:"log"` // mqtt、webhook 或 log
	Platform   string        `yaml:"platform"    env:"DISPATCH_PLATFORM"    env-default:"android"`
	WebhookURL string        `yaml:"webhook_url" env:"DISPATCH_WEBHOOK_URL"`
	Timeout    time.Duration `yaml:"timeout"     env:"DISPATCH_TIMEOUT"     env-default:"5s"`
}

// LocationConfig 定位配置
type LocationConfig struct {
	Provider  string        `yaml:"provider"  env:"LOCATION_PROVIDER"  env-default:"none"` // http、static 或 none
	BaseURL   string        `yaml:"base_url"  env:"LOCATION_BASE_URL"`
	Timeout   time.Duration `yaml:"timeout"   env:"LOCATION_TIMEOUT"   env-default:"8s"`
	Latitude  float64       `yaml:"latitude"  env:"LOCATION_LATITUDE"`
	Longitude float64       `yaml:"longitude" env:"LOCATION_LONGITUDE"`
}

// MetricsConfig 本地指标配置
type MetricsConfig struct {
	Addr string `yaml:"addr" env:"METRICS_ADDR"` // 为空则不暴露 /metrics
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}
