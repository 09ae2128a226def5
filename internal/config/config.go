package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel    string    `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort    string    `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort  string    `yaml:"socket-port" env:"SOCKET_PORT" env-default:"8000"`
	UserService Service   `yaml:"user-service" env-prefix:"USER_SERVICE_"`
	RoomService Service   `yaml:"room-service" env-prefix:"ROOM_SERVICE_"`
	Admission   Admission `yaml:"admission"`
	Session     Session   `yaml:"session"`
	Redis       Redis     `yaml:"redis"`
}

// Service - address of a collaborator queried during admission.
type Service struct {
	URL     string        `yaml:"url" env:"URL"`
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT" env-default:"5s"`
}

type Admission struct {
	IdentityCacheTTL time.Duration `yaml:"identity-cache-ttl" env:"IDENTITY_CACHE_TTL" env-default:"1m"`
}

type Session struct {
	SendQueueSize int `yaml:"send-queue-size" env:"SEND_QUEUE_SIZE" env-default:"16"`
}

type Redis struct {
	Enabled       bool   `yaml:"enabled" env:"REDIS_ENABLED" env-default:"false"`
	Host          string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port          string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	ChannelPrefix string `yaml:"channel-prefix" env:"REDIS_CHANNEL_PREFIX" env-default:"game-events:"`
	MirrorBuffer  int    `yaml:"mirror-buffer" env:"REDIS_MIRROR_BUFFER" env-default:"256"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

// Load - reads path, then applies environment overrides and defaults.
func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
