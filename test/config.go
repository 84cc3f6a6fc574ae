package test

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// CHAT_TEST_ADDR pins the listener address; empty picks a random port
	Addr     string `envconfig:"CHAT_TEST_ADDR" default:"127.0.0.1:0"`
	LogLevel string `envconfig:"CHAT_TEST_LOG_LEVEL" default:"debug"`
	// CHAT_TEST_CENSORED_WORDS seeds the moderation dictionary for the run
	CensoredWords []string `envconfig:"CHAT_TEST_CENSORED_WORDS" default:"badger"`
	BufferSize    int      `envconfig:"CHAT_TEST_BUFFER_SIZE" default:"16"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
