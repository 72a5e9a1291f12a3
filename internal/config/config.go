package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel  string `yaml:"log-level" env-default:"info"`
	ServerURL string `yaml:"server-url" env-default:"ws://localhost:8080/ws"`
	UserID    string `yaml:"user-id" env-default:""`
	Redis     Redis  `yaml:"redis"`
	Match     Match  `yaml:"match"`
}

type Redis struct {
	Host string `yaml:"host" env-default:"localhost"`
	Port string `yaml:"port" env-default:"6379"`
}

type Match struct {
	RoomID     string `yaml:"room-id" env-default:""`
	BoardSize  int    `yaml:"board-size" env-default:"3"`
	LineLength int    `yaml:"line-length" env-default:"3"`
	Rounds     int    `yaml:"rounds" env-default:"1"`

	// TimerDuration is the per-turn countdown in seconds; 0 disables it.
	TimerDuration int `yaml:"timer-duration" env-default:"0"`
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
