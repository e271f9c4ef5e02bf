package paging

import (
	"fmt"

	"github.com/ncobase/docpage/validator"
)

// Config represents paginator configuration
type Config struct {
	// Name labels logs, metrics and errors. Defaults to the source name.
	Name string `json:"name"`
	// PageSize bounds every fetch.
	PageSize int `json:"page_size" validate:"gt=0"`
	// ListenForUpdates selects live fetches instead of one-shot snapshots.
	ListenForUpdates bool `json:"listen_for_updates"`
	// StreamBuffer is the channel capacity of each results subscriber.
	StreamBuffer int `json:"stream_buffer" validate:"gte=0"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		PageSize:     20,
		StreamBuffer: 1,
	}
}

// Validate validates configuration
func (c *Config) Validate() error {
	if err := validator.Validate(c); err != nil {
		return fmt.Errorf("invalid paging config: %w", err)
	}
	return nil
}
