package main

type Config struct {
	ServerAddress string `env:"CHAT_SERVER_ADDR,default=127.0.0.1:7891"`
	Username      string `env:"CHAT_USERNAME"`
	LogLevel      string `env:"LOG_LEVEL,default=warn"`
}
