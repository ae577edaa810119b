package ports

import (
	"context"

	"github.com/aretw0/provview/pkg/domain"
)

// Loader resolves provenance documents by artifact UUID.
// This allows the archive format (zip, directory, memory) to be decoupled from
// the graph builder.
type Loader interface {
	// RootUUID is the UUID of the result whose provenance is being viewed.
	RootUUID() string

	// LoadAction returns the parsed action.yaml of the action that produced uuid.
	// Missing non-root documents wrap domain.ErrMissingProvenance.
	LoadAction(ctx context.Context, uuid string) (domain.Value, error)

	// LoadArtifact returns the parsed metadata.yaml of the artifact uuid.
	LoadArtifact(ctx context.Context, uuid string) (domain.Value, error)
}
