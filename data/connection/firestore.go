package connection

import (
	"context"
	"errors"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/ncobase/docpage/data/config"
	"google.golang.org/api/option"
)

// newFirestoreClient creates a new Firestore client
func newFirestoreClient(ctx context.Context, conf *config.Firestore) (*firestore.Client, error) {
	if conf == nil || conf.ProjectID == "" {
		return nil, errors.New("firestore configuration is nil or empty")
	}

	// the client library only honours the emulator through the environment
	if conf.EmulatorHost != "" {
		if err := os.Setenv("FIRESTORE_EMULATOR_HOST", conf.EmulatorHost); err != nil {
			return nil, fmt.Errorf("firestore emulator error: %v", err)
		}
	}

	var opts []option.ClientOption
	if conf.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(conf.CredentialsFile))
	}

	databaseID := conf.DatabaseID
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, conf.ProjectID, databaseID, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore connect error: %v", err)
	}
	return client, nil
}
