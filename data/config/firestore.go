package config

import (
	"github.com/spf13/viper"
)

// Firestore firestore config struct
type Firestore struct {
	ProjectID       string `json:"project_id" yaml:"project_id"`
	DatabaseID      string `json:"database_id" yaml:"database_id"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
	// EmulatorHost points the client at a local emulator, e.g. localhost:8080
	EmulatorHost string `json:"emulator_host" yaml:"emulator_host"`
}

// getFirestoreConfigs reads Firestore configurations
func getFirestoreConfigs(v *viper.Viper) *Firestore {
	return &Firestore{
		ProjectID:       v.GetString("data.firestore.project_id"),
		DatabaseID:      v.GetString("data.firestore.database_id"),
		CredentialsFile: v.GetString("data.firestore.credentials_file"),
		EmulatorHost:    v.GetString("data.firestore.emulator_host"),
	}
}
