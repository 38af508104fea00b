package tracking

import (
	"context"
	"strings"
)

// ArtifactStore resolves a run-relative artifact path to a local directory
// holding the artifact files.
type ArtifactStore interface {
	ResolveArtifact(ctx context.Context, runID string, artifactPath string) (string, error)
}

const DefaultTrackingRoot = "mlruns"

// NewStore selects a store from a tracking URI. Plain paths and file://
// URIs resolve against the local filesystem; s3:// URIs download artifacts
// from object storage.
func NewStore(ctx context.Context, uri string) (ArtifactStore, error) {
	switch {
	case uri == "":
		return &FSStore{Root: DefaultTrackingRoot}, nil
	case strings.HasPrefix(uri, "s3://"):
		options := NewDefaultS3Options()
		if err := options.ParseURI(uri); err != nil {
			return nil, err
		}
		return NewS3Store(ctx, options)
	case strings.HasPrefix(uri, "file://"):
		return &FSStore{Root: strings.TrimPrefix(uri, "file://")}, nil
	default:
		return &FSStore{Root: uri}, nil
	}
}
