package board_api_config

import (
	"time"

	"github.com/taehun/board/internal/obs"
	pg "github.com/taehun/board/internal/repository/postgres"
	"github.com/taehun/board/internal/repository/redisstore"
	"github.com/taehun/board/internal/services/board-api/files"
)

type App struct {
	Name    string `mapstructure:"name"`
	Env     string `mapstructure:"env"`
	Version string `mapstructure:"version"`
}

type Server struct {
	HTTPAddr        string        `mapstructure:"http_addr"`
	MetricsAddr     string        `mapstructure:"metrics_addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	GracefulTimeout time.Duration `mapstructure:"graceful_timeout"`
}

type Auth struct {
	JWTSecret  string        `mapstructure:"jwt_secret"`
	AccessTTL  time.Duration `mapstructure:"access_ttl"`
	RefreshTTL time.Duration `mapstructure:"refresh_ttl"`
	// ExcludePaths are request path prefixes the admission filter skips.
	ExcludePaths []string `mapstructure:"exclude_paths"`
}

type KafkaOut struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type Outbox struct {
	Workers       int           `mapstructure:"workers"`
	BatchSize     int           `mapstructure:"batch_size"`
	WaitTime      time.Duration `mapstructure:"wait_time"`
	InProgressTTL time.Duration `mapstructure:"in_progress_ttl"`
}

type OTEL struct {
	Enable       bool    `mapstructure:"enable"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

func (oc *OTEL) AsOTELConfig() *obs.OTELConfig {
	return &obs.OTELConfig{
		Enable:      oc.Enable,
		Endpoint:    oc.OTLPEndpoint,
		ServiceName: oc.ServiceName,
		SampleRatio: oc.SampleRatio,
	}
}

type Log struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

func (lc *Log) AsLoggerConfig() *obs.LogConfig {
	return &obs.LogConfig{
		Level:  lc.Level,
		Pretty: lc.Pretty,
		App:    "board/board-api",
		Env:    "",
		Ver:    "",
	}
}

type Config struct {
	App    App               `mapstructure:"app"`
	Server Server            `mapstructure:"server"`
	DB     pg.Config         `mapstructure:"db"`
	Redis  redisstore.Config `mapstructure:"redis"`
	Auth   Auth              `mapstructure:"auth"`
	S3     files.Config      `mapstructure:"s3"`
	Out    KafkaOut          `mapstructure:"kafka_out"`
	Outbox Outbox            `mapstructure:"outbox"`
	OTEL   OTEL              `mapstructure:"otel"`
	Log    Log               `mapstructure:"log"`
}
