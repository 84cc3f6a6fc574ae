package main

import "time"

type Config struct {
	Host                 string        `env:"HOST,default=0.0.0.0"`
	Port                 int           `env:"PORT,default=7891"`
	LogLevel             string        `env:"LOG_LEVEL,default=info"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=16"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	TelemetryInterval    time.Duration `env:"TELEMETRY_INTERVAL,default=30s"`
	ShutdownTimeout      time.Duration `env:"SHUTDOWN_TIMEOUT,default=5s"`
	// CensoredWords is a comma separated dictionary; empty disables moderation.
	CensoredWords             string `env:"CENSORED_WORDS"`
	ModerationCharReplacement string `env:"MODERATION_CHARACTER_REPLACEMENT,default=*"`
}
