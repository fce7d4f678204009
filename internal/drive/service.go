package drive

import (
	"context"
	"fmt"

	"drivebox/internal/model"
)

// Service is the orchestration layer for a user's virtual namespace. It
// coordinates the metadata store, blob store and identity registry to
// implement directory and file indexing, duplicate detection and file
// sharing. All operations are synchronous and request-scoped; concurrency
// is across independent requests through the shared stores.
type Service struct {
	store    MetadataStore
	blobs    BlobStore
	identity IdentityRegistry
	logger   Logger
	clock    Clock
	idgen    IDGenerator
}

// NewService creates a Service with the provided dependencies.
func NewService(store MetadataStore, blobs BlobStore, identity IdentityRegistry, logger Logger, clock Clock, idgen IDGenerator) *Service {
	return &Service{
		store:    store,
		blobs:    blobs,
		identity: identity,
		logger:   logger,
		clock:    clock,
		idgen:    idgen,
	}
}

// EnsureRoot creates the root directory record for ownerID if it is absent.
// Idempotent; called alongside first-login user creation.
func (s *Service) EnsureRoot(ctx context.Context, ownerID string) error {
	existing, err := s.store.FindDirectories(ctx, ownerID, Separator)
	if err != nil {
		return fmt.Errorf("checking for root directory: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	root := &model.Directory{
		ID:         s.idgen.New(),
		OwnerID:    ownerID,
		Name:       Separator,
		Path:       Separator,
		ParentPath: "", // The root has no parent
	}
	if err := s.store.InsertDirectory(ctx, root); err != nil {
		return fmt.Errorf("creating root directory: %w", err)
	}

	s.logger.Info("root directory created", "owner", ownerID)
	return nil
}
