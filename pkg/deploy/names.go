package deploy

import (
	"path"
	"regexp"
	"strings"

	"github.com/opencontainers/go-digest"
)

// MaxResourceNameLength is the platform limit for model and image names.
const MaxResourceNameLength = 32

var invalidNameChars = regexp.MustCompile(`[^a-z0-9-]+`)

func DeriveModelName(modelPath string, runID string) string {
	return deriveName("mlship-", modelPath, runID)
}

func DeriveImageName(modelPath string, runID string) string {
	return deriveName("mlship-img-", modelPath, runID)
}

// deriveName slugs the path base and appends a short digest of the full
// source identifier, keeping the result within MaxResourceNameLength for
// any input.
func deriveName(prefix string, modelPath string, runID string) string {
	base := strings.ToLower(path.Base(strings.ReplaceAll(modelPath, "\\", "/")))
	base = strings.ReplaceAll(base, " ", "-")
	base = invalidNameChars.ReplaceAllString(base, "")

	suffix := "-" + digest.FromString(runID+":"+modelPath).Encoded()[:8]
	if max := MaxResourceNameLength - len(prefix) - len(suffix); len(base) > max {
		base = base[:max]
	}
	return prefix + base + suffix
}
