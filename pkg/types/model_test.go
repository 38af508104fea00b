package types

import (
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadDescriptor(t *testing.T) {
	tests := []struct {
		name    string
		content ModelDescriptor
		wantErr bool
	}{
		{
			name: "pyfunc model",
			content: ModelDescriptor{
				ArtifactPath: "model",
				RunID:        "0123456789abcdef",
				Flavors: map[string]Flavor{
					FlavorPyFunc: {
						FlavorKeyPythonVersion: "3.6.5",
						FlavorKeyLoaderModule:  "mlship.sklearn",
					},
				},
			},
		},
		{
			name:    "no flavors",
			content: ModelDescriptor{Flavors: map[string]Flavor{}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if err := tt.content.Save(dir); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			got, err := LoadDescriptor(dir)
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadDescriptor() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !reflect.DeepEqual(*got, tt.content) {
				t.Errorf("LoadDescriptor() = %v, want %v", *got, tt.content)
			}
		})
	}
}

func TestLoadDescriptorMissing(t *testing.T) {
	if _, err := LoadDescriptor(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Errorf("LoadDescriptor() expected error for missing descriptor")
	}
}

func TestFlavorString(t *testing.T) {
	flavor := Flavor{FlavorKeyPythonVersion: "3.7.0", "rank": 3}
	if got := flavor.String(FlavorKeyPythonVersion); got != "3.7.0" {
		t.Errorf("Flavor.String() = %v, want 3.7.0", got)
	}
	if got := flavor.String("rank"); got != "" {
		t.Errorf("Flavor.String() on non-string = %q, want empty", got)
	}
	var none Flavor
	if got := none.String(FlavorKeyPythonVersion); got != "" {
		t.Errorf("Flavor.String() on nil flavor = %q, want empty", got)
	}
}
