package metastore

import (
	"database/sql"
	"fmt"

	"drivebox/internal/config"
	"drivebox/internal/drive"
)

// NewStoreFromConfig creates a MetadataStore based on the store config
// type. For the sqlite type the underlying *sql.DB is returned as well so
// the identity registry can share the handle; it is nil for memory.
func NewStoreFromConfig(cfg config.StoreConfig, clock drive.Clock) (drive.MetadataStore, *sql.DB, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(clock), nil, nil
	case "sqlite", "":
		if cfg.Path == "" {
			return nil, nil, fmt.Errorf("sqlite store requires path to be set")
		}
		store, db, err := Open(cfg.Path, clock)
		if err != nil {
			return nil, nil, err
		}
		return store, db, nil
	default:
		return nil, nil, fmt.Errorf("unknown store type: %q", cfg.Type)
	}
}
