package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel           string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort           string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort         string `yaml:"socket-port" env:"SOCKET_PORT" env-default:"8081"`
	BaseURL            string `yaml:"base-url" env:"BASE_URL" env-default:"http://localhost:5173"`
	Redis              Redis  `yaml:"redis"`
	SessionStoragePath string `yaml:"session-storage-path" env:"SESSION_STORAGE_PATH" env-default:"sessions.db"`
	Sync               Sync   `yaml:"sync"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

type Sync struct {
	PollIntervalSeconds   int `yaml:"poll-interval-seconds" env:"SYNC_POLL_INTERVAL" env-default:"5"`
	ReconnectDelaySeconds int `yaml:"reconnect-delay-seconds" env:"SYNC_RECONNECT_DELAY" env-default:"2"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

func (that *Sync) PollInterval() time.Duration {
	return time.Duration(that.PollIntervalSeconds) * time.Second
}

func (that *Sync) ReconnectDelay() time.Duration {
	return time.Duration(that.ReconnectDelaySeconds) * time.Second
}
