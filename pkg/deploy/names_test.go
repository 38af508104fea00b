package deploy

import (
	"strings"
	"testing"
)

func TestDeriveNames(t *testing.T) {
	tests := []struct {
		name      string
		modelPath string
		runID     string
	}{
		{name: "plain dir", modelPath: "model"},
		{name: "nested path", modelPath: "outputs/wine model", runID: "run-123"},
		{name: "windows path", modelPath: `C:\runs\Wine Model`},
		{name: "long path", modelPath: strings.Repeat("averylongmodeldirectoryname", 10)},
		{name: "special chars", modelPath: "model_#1 (final)", runID: "run/456"},
		{name: "empty", modelPath: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			modelName := DeriveModelName(tt.modelPath, tt.runID)
			imageName := DeriveImageName(tt.modelPath, tt.runID)

			for _, name := range []string{modelName, imageName} {
				if len(name) > MaxResourceNameLength {
					t.Errorf("derived name %q exceeds %d chars", name, MaxResourceNameLength)
				}
				if invalidNameChars.MatchString(name) {
					t.Errorf("derived name %q contains invalid characters", name)
				}
			}
			if modelName == imageName {
				t.Errorf("model and image names collide: %q", modelName)
			}
			if got := DeriveModelName(tt.modelPath, tt.runID); got != modelName {
				t.Errorf("derivation not deterministic: %q != %q", got, modelName)
			}
		})
	}
}

func TestDeriveModelNameDistinguishesSources(t *testing.T) {
	a := DeriveModelName("model", "run-1")
	b := DeriveModelName("model", "run-2")
	if a == b {
		t.Errorf("same name %q for different runs", a)
	}
}
