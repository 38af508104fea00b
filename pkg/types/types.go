package types

import (
	"strings"
	"time"

	"github.com/opencontainers/go-digest"
)

const (
	MediaTypeModelDirectoryTarGz = "application/vnd.mlship.model.directory.v1.tar+gz"
	MediaTypeModelFile           = "application/vnd.mlship.model.file.v1"
	MediaTypeExecutionScript     = "application/vnd.mlship.image.script.v1"
	MediaTypeCondaEnvYaml        = "application/vnd.mlship.image.conda.v1.yaml"
	MediaTypeRuntimeTarGz        = "application/vnd.mlship.image.runtime.v1.tar+gz"
)

type Descriptor struct {
	Name        string            `json:"name"`
	MediaType   string            `json:"mediaType,omitempty"`
	Digest      digest.Digest     `json:"digest,omitempty"`
	Size        int64             `json:"size,omitempty"`
	Modified    time.Time         `json:"modified,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty"`
}

func SortDescriptorName(a, b Descriptor) bool {
	return strings.Compare(a.Name, b.Name) < 0
}

type Workspace struct {
	Name        string            `json:"name"`
	Location    string            `json:"location,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty"`
}

type ImageConfig struct {
	ExecutionScript string            `json:"executionScript"`
	CondaFile       string            `json:"condaFile,omitempty"`
	RuntimeVersion  string            `json:"runtimeVersion,omitempty"`
	Tags            map[string]string `json:"tags,omitempty"`
	Description     string            `json:"description,omitempty"`
	Dependencies    []Descriptor      `json:"dependencies,omitempty"`
}
