package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Log struct {
		Level string
		Path  string
	}
	Parser struct {
		MaxAlertTypeLength int `mapstructure:"max_alert_type_length"`
	}
	Kafka struct {
		Enabled bool
		Brokers []string
		Topic   string
	}
	MySQL struct {
		Enabled bool
		DSN     string
		MaxIdle int `mapstructure:"max_idle"`
		MaxOpen int `mapstructure:"max_open"`
	}
	InfluxDB struct {
		Enabled bool
		URL     string
		Token   string
		Org     string
		Bucket  string
	}
	GeoIP struct {
		CityPath string `mapstructure:"city_path"`
		ASNPath  string `mapstructure:"asn_path"`
	}
	Webhook struct {
		Enabled     bool
		URL         string
		MinSeverity string        `mapstructure:"min_severity"`
		Cooldown    time.Duration `mapstructure:"cooldown"`
	}
	Security struct {
		WhitelistIPs []string `mapstructure:"whitelist_ips"`
	}
	Metrics struct {
		Enabled bool
		Addr    string
	}
}

var GlobalConfig = Default()

// Default 返回未读取配置文件时使用的默认配置
func Default() Config {
	var cfg Config
	cfg.Log.Level = "info"
	cfg.Parser.MaxAlertTypeLength = 100
	cfg.Kafka.Brokers = []string{"localhost:9092"}
	cfg.Kafka.Topic = "snort-alerts"
	cfg.MySQL.MaxIdle = 2
	cfg.MySQL.MaxOpen = 4
	cfg.InfluxDB.URL = "http://localhost:8086"
	cfg.InfluxDB.Bucket = "snort"
	cfg.Webhook.MinSeverity = "HIGH"
	cfg.Webhook.Cooldown = 10 * time.Minute
	cfg.Metrics.Addr = ":2112"
	return cfg
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.path", d.Log.Path)
	v.SetDefault("parser.max_alert_type_length", d.Parser.MaxAlertTypeLength)
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", d.Kafka.Brokers)
	v.SetDefault("kafka.topic", d.Kafka.Topic)
	v.SetDefault("mysql.enabled", false)
	v.SetDefault("mysql.dsn", "")
	v.SetDefault("mysql.max_idle", d.MySQL.MaxIdle)
	v.SetDefault("mysql.max_open", d.MySQL.MaxOpen)
	v.SetDefault("influxdb.enabled", false)
	v.SetDefault("influxdb.url", d.InfluxDB.URL)
	v.SetDefault("influxdb.token", "")
	v.SetDefault("influxdb.org", "")
	v.SetDefault("influxdb.bucket", d.InfluxDB.Bucket)
	v.SetDefault("geoip.city_path", "")
	v.SetDefault("geoip.asn_path", "")
	v.SetDefault("webhook.enabled", false)
	v.SetDefault("webhook.url", "")
	v.SetDefault("webhook.min_severity", d.Webhook.MinSeverity)
	v.SetDefault("webhook.cooldown", d.Webhook.Cooldown)
	v.SetDefault("security.whitelist_ips", []string{})
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", d.Metrics.Addr)
}

// Load 读取配置：path为空时在 ./config 和 . 下查找 config.yaml，找不到配置文件时使用默认值
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SNORTALERT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Init 加载配置到 GlobalConfig
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	GlobalConfig = cfg
	return nil
}
