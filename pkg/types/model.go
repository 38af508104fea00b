package types

import (
	"fmt"
	"os"
	"path/filepath"

	"sigs.k8s.io/yaml"
)

const (
	// DescriptorFileName is the sidecar file saved beside a model artifact
	// by the tracking library.
	DescriptorFileName = "mlmodel.yaml"

	// FlavorPyFunc is the generic-inference flavor. A model must carry it
	// to be servable from an image.
	FlavorPyFunc = "pyfunc"

	FlavorKeyPythonVersion = "python_version"
	FlavorKeyLoaderModule  = "loader_module"
	FlavorKeyEnv           = "env"
	FlavorKeyData          = "data"
)

type ModelDescriptor struct {
	ArtifactPath   string            `json:"artifact_path,omitempty"`
	RunID          string            `json:"run_id,omitempty"`
	UTCTimeCreated string            `json:"utc_time_created,omitempty"`
	Flavors        map[string]Flavor `json:"flavors"`
}

type Flavor map[string]any

func (f Flavor) String(key string) string {
	if f == nil {
		return ""
	}
	if val, ok := f[key].(string); ok {
		return val
	}
	return ""
}

func (d ModelDescriptor) Flavor(name string) (Flavor, bool) {
	flavor, ok := d.Flavors[name]
	return flavor, ok
}

func LoadDescriptor(dir string) (*ModelDescriptor, error) {
	filename := filepath.Join(dir, DescriptorFileName)
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read model descriptor:%s %w", filename, err)
	}
	descriptor := &ModelDescriptor{}
	if err := yaml.Unmarshal(content, descriptor); err != nil {
		return nil, fmt.Errorf("parse model descriptor:%s %w", filename, err)
	}
	return descriptor, nil
}

func (d ModelDescriptor) Save(dir string) error {
	content, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode model descriptor %w", err)
	}
	filename := filepath.Join(dir, DescriptorFileName)
	if err := os.WriteFile(filename, content, 0o644); err != nil {
		return fmt.Errorf("write model descriptor:%s %w", filename, err)
	}
	return nil
}
