package config

import (
	"github.com/spf13/viper"
)

// Config configuration struct
type Config struct {
	Level      int    `json:"level" yaml:"level" validate:"gte=0,lte=6"`
	Format     string `json:"format" yaml:"format" validate:"omitempty,oneof=json text"`
	Output     string `json:"output" yaml:"output" validate:"omitempty,oneof=stdout stderr file"`
	OutputFile string `json:"output_file" yaml:"output_file" validate:"required_if=Output file"`
}

// DefaultConfig returns the default logger configuration
func DefaultConfig() *Config {
	return &Config{
		Level:  4, // logrus.InfoLevel
		Format: "text",
		Output: "stderr",
	}
}

// GetConfig returns the logger configuration
func GetConfig(v *viper.Viper) *Config {
	if !v.IsSet("logger") {
		return DefaultConfig()
	}

	cfg := DefaultConfig()
	if v.IsSet("logger.level") {
		cfg.Level = v.GetInt("logger.level")
	}
	if f := v.GetString("logger.format"); f != "" {
		cfg.Format = f
	}
	if o := v.GetString("logger.output"); o != "" {
		cfg.Output = o
	}
	cfg.OutputFile = v.GetString("logger.output_file")
	return cfg
}
