package tracking

import (
	"context"
	"os"
	"path/filepath"

	"mlship.io/mlship/pkg/errors"
)

// FSStore serves artifacts from a local tracking root laid out as
// <root>/<run id>/artifacts/<artifact path>.
type FSStore struct {
	Root string
}

var _ ArtifactStore = &FSStore{}

func (s *FSStore) ResolveArtifact(ctx context.Context, runID string, artifactPath string) (string, error) {
	dir := filepath.Join(s.Root, runID, "artifacts", filepath.FromSlash(artifactPath))
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewArtifactUnknownError(runID, artifactPath)
		}
		return "", err
	}
	return dir, nil
}
