package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const ServerTypeConverter = "converter"

var ConverterConfig ConverterConfiguration

type BaseConfig struct {
	ID         string `mapstructure:"id"`
	ServerType string `mapstructure:"serverType"`
	MetricPort int    `mapstructure:"metricPort"`
}

func (cfg *BaseConfig) CallID() string {
	return cfg.ID
}

func (cfg *BaseConfig) CallNodeType() string {
	return cfg.ServerType
}

type ConverterConfiguration struct {
	BaseConfig   `mapstructure:",squash"`
	DatabaseConf `mapstructure:"database"`
	LogConf      `mapstructure:"log"`
	NatsConfig   `mapstructure:"nats"`
	CacheConf    `mapstructure:"cache"`
	ConvertConf  `mapstructure:"convert"`
}

type LogConf struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

type DatabaseConf struct {
	MongoConf MongoConf `mapstructure:"mongo"`
	RedisConf RedisConf `mapstructure:"redis"`
}

type MongoConf struct {
	Url         string `mapstructure:"url"`
	Db          string `mapstructure:"db"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	MinPoolSize int    `mapstructure:"minPoolSize"`
	MaxPoolSize int    `mapstructure:"maxPoolSize"`
}

type RedisConf struct {
	Addr         string   `mapstructure:"addr"`
	ClusterAddrs []string `mapstructure:"clusterAddrs"`
	Password     string   `mapstructure:"password"`
	PoolSize     int      `mapstructure:"poolSize"`
	MinIdleConns int      `mapstructure:"minIdleConns"`
	Host         string   `mapstructure:"host"`
	Port         int      `mapstructure:"port"`
}

type NatsConfig struct {
	URL string `json:"url" mapstructure:"url"`
}

type CacheConf struct {
	MaxCost  int64 `mapstructure:"maxCost"`  // 本地缓存最大成本（字节）
	LocalTTL int   `mapstructure:"localTTL"` // 单位是秒
	RedisTTL int   `mapstructure:"redisTTL"` // 单位是秒
}

type ConvertConf struct {
	SkipBrokenKyoku bool   `mapstructure:"skipBrokenKyoku"`
	Subject         string `mapstructure:"subject"`
	Workers         int    `mapstructure:"workers"`
	Rate            int    `mapstructure:"rate"`  // 每秒允许的转换请求数
	Burst           int    `mapstructure:"burst"` // 允许的突发倍数
	MonitorInterval int    `mapstructure:"monitorInterval"` // 单位是秒
}

// Default 没有配置文件时使用（命令行离线转换）
func Default() ConverterConfiguration {
	return ConverterConfiguration{
		BaseConfig: BaseConfig{
			ID:         "converter-local",
			ServerType: ServerTypeConverter,
		},
		DatabaseConf: DatabaseConf{
			MongoConf: MongoConf{
				Url:         "mongodb://127.0.0.1:27017",
				Db:          "convlog",
				MinPoolSize: 1,
				MaxPoolSize: 10,
			},
			RedisConf: RedisConf{
				Addr:     "127.0.0.1:6379",
				PoolSize: 10,
			},
		},
		LogConf:    LogConf{Level: "info"},
		NatsConfig: NatsConfig{URL: "nats://127.0.0.1:4222"},
		CacheConf: CacheConf{
			MaxCost:  1 << 26,
			LocalTTL: 600,
			RedisTTL: 86400,
		},
		ConvertConf: ConvertConf{
			Subject:         "convlog.convert",
			Workers:         4,
			Rate:            50,
			Burst:           2,
			MonitorInterval: 30,
		},
	}
}

// Load 读取配置文件，未填写的字段沿用 Default
func Load(configFile string) error {
	v := viper.New()
	v.SetConfigFile(configFile)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := v.ReadInConfig(); err != nil {
		return err
	}

	cfg, err := decode(v)
	if err != nil {
		return err
	}
	ConverterConfig = cfg
	watch(v)
	return nil
}

func decode(v *viper.Viper) (ConverterConfiguration, error) {
	cfg := Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	if nodeID := os.Getenv("NODE_ID"); nodeID != "" {
		cfg.ID = nodeID
	}
	if cfg.ServerType != ServerTypeConverter {
		return cfg, fmt.Errorf("unknown server type: %s", cfg.ServerType)
	}
	if cfg.Subject == "" {
		return cfg, fmt.Errorf("convert.subject is required")
	}
	return cfg, nil
}
