package mail_notifier_config

import (
	"time"

	kafkax "github.com/taehun/board/internal/repository/kafka"
	pg "github.com/taehun/board/internal/repository/postgres"
)

type KafkaIn struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"group_id"`
}

func (k *KafkaIn) AsConsumerConfig() *kafkax.ConsumerConfig {
	return &kafkax.ConsumerConfig{
		Brokers: k.Brokers,
		Topic:   k.Topic,
		GroupID: k.GroupID,
	}
}

type SMTP struct {
	Addr       string        `mapstructure:"addr"`
	From       string        `mapstructure:"from"`
	User       string        `mapstructure:"user"`
	Password   string        `mapstructure:"password"`
	UseTLS     bool          `mapstructure:"use_tls"`
	Timeout    time.Duration `mapstructure:"timeout"`
	SubjPrefix string        `mapstructure:"subj_prefix"`
}

type Server struct {
	MetricsAddr string `mapstructure:"metrics_addr"`
}

type Config struct {
	DB       pg.Config `mapstructure:"db"`
	In       KafkaIn   `mapstructure:"kafka_in"`
	SMTP     SMTP      `mapstructure:"smtp"`
	Server   Server    `mapstructure:"server"`
	LogLevel string    `mapstructure:"log_level"`
}
