package main

import (
	"strings"
	"time"
)

type Config struct {
	LogLevel             string        `env:"LOG_LEVEL,default=INFO"`
	Host                 string        `env:"HOST,default=localhost"`
	Port                 int           `env:"PORT,default=8080"`
	AdminPort            int           `env:"ADMIN_PORT,default=8081"`
	JWTSecret            string        `env:"JWT_SECRET,required=true"`
	JWTIssuer            string        `env:"JWT_ISSUER,default=taskhub"`
	StoreDriver          string        `env:"STORE_DRIVER,default=badger"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH,default=./data/badger"`
	SQLitePath           string        `env:"SQLITE_PATH,default=./data/taskhub.db"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=64"`
	WriteTimeout         time.Duration `env:"WRITE_TIMEOUT,default=5s"`
	JoinTimeout          time.Duration `env:"JOIN_TIMEOUT,default=5s"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=1s"`
	ReportInterval       time.Duration `env:"REPORT_INTERVAL,default=1m"`
	BackplaneRedisAddr   string        `env:"BACKPLANE_REDIS_ADDR"`
	BackplaneChannel     string        `env:"BACKPLANE_CHANNEL,default=taskhub:events"`
	BackplaneBufferSize  int           `env:"BACKPLANE_BUFFER_SIZE,default=1024"`
	AllowedOrigins       string        `env:"ALLOWED_ORIGINS"`
	InternalToken        string        `env:"INTERNAL_TOKEN"`
}

// Origins splits ALLOWED_ORIGINS, a comma separated list of host patterns.
func (c Config) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
