package config

import (
	"time"

	"github.com/spf13/viper"
)

// Server is the HTTP listener of the serve command
type Server struct {
	Host            string        `validate:"omitempty,hostname|ip"`
	Port            int           `validate:"gte=1,lte=65535"`
	ReadTimeout     time.Duration `validate:"gte=0"`
	WriteTimeout    time.Duration `validate:"gte=0"`
	ShutdownTimeout time.Duration `validate:"gte=0"`
}

func getServerConfig(v *viper.Viper) *Server {
	return &Server{
		Host:            v.GetString("server.host"),
		Port:            getIntOrDefault(v, "server.port", 8080),
		ReadTimeout:     getDurationOrDefault(v, "server.read_timeout", 15*time.Second),
		WriteTimeout:    getDurationOrDefault(v, "server.write_timeout", 15*time.Second),
		ShutdownTimeout: getDurationOrDefault(v, "server.shutdown_timeout", 30*time.Second),
	}
}
