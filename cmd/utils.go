package cmd

import (
	"fmt"

	"github.com/rubiojr/eventfinder/pkg/config"
	"github.com/rubiojr/eventfinder/pkg/storage"
)

// openStorage loads the configuration and opens the events store,
// initializing schema and full-text index.
func openStorage(configPath string) (*config.Config, *storage.Storage, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	store, err := storage.New(cfg.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening storage: %w", err)
	}

	return cfg, store, nil
}

func closeStorage(store *storage.Storage) {
	if err := store.Close(); err != nil {
		fmt.Printf("Warning: failed to close storage: %v\n", err)
	}
}
