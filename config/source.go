package config

import (
	"fmt"

	"github.com/ncobase/docpage/document"
	"github.com/spf13/viper"
)

// Source kinds
const (
	SourceMemory    = "memory"
	SourceMongoDB   = "mongodb"
	SourceRedis     = "redis"
	SourceFirestore = "firestore"
)

// Source selects and shapes the document source
type Source struct {
	Kind       string           `mapstructure:"kind" validate:"required,oneof=memory mongodb redis firestore"`
	Collection string           `mapstructure:"collection" validate:"required"`
	OrderBy    document.OrderBy `mapstructure:"order_by"`
	ObjectIDs  bool             `mapstructure:"object_ids"`
}

func getSourceConfig(v *viper.Viper) (*Source, error) {
	return &Source{
		Kind:       v.GetString("source.kind"),
		Collection: v.GetString("source.collection"),
		OrderBy: document.OrderBy{
			Field:      v.GetString("source.order_by.field"),
			Descending: v.GetBool("source.order_by.descending"),
		},
		ObjectIDs: v.GetBool("source.object_ids"),
	}, nil
}

// check verifies the store the source kind needs is configured.
func (s *Source) check(data *Data) error {
	switch s.Kind {
	case SourceMongoDB:
		if data.MongoDB == nil || data.MongoDB.URI == "" || data.MongoDB.Database == "" {
			return fmt.Errorf("invalid config: source %s needs data.mongodb.uri and data.mongodb.database", s.Kind)
		}
	case SourceRedis:
		if data.Redis == nil || data.Redis.Addr == "" {
			return fmt.Errorf("invalid config: source %s needs data.redis.addr", s.Kind)
		}
	case SourceFirestore:
		if data.Firestore == nil || data.Firestore.ProjectID == "" {
			return fmt.Errorf("invalid config: source %s needs data.firestore.project_id", s.Kind)
		}
	}
	return nil
}
