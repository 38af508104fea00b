package deploy

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-logr/logr"
	"gopkg.in/yaml.v2"
	"mlship.io/mlship/pkg/platform"
	"mlship.io/mlship/pkg/types"
)

const (
	CondaEnvFileName   = "conda.yaml"
	modelArchiveName   = "model.tar.gz"
	runtimeArchiveName = "runtime.tar.gz"
)

// buildContext is the scratch directory holding everything uploaded for an
// image build. It is removed when the build finishes unless retention was
// requested.
type buildContext struct {
	Dir          string
	CondaFile    string
	Dependencies []string

	keep bool
}

func newBuildContext(keep bool) (*buildContext, error) {
	dir, err := os.MkdirTemp("", "mlship-build-")
	if err != nil {
		return nil, err
	}
	return &buildContext{Dir: dir, keep: keep}, nil
}

func (b *buildContext) Close(ctx context.Context) error {
	if b.keep {
		logr.FromContextOrDiscard(ctx).Info("retained build context", "dir", b.Dir)
		return nil
	}
	return os.RemoveAll(b.Dir)
}

// stage collects the environment file and archives into the context. The
// runtime source tree is archived rather than referenced so the build no
// longer depends on the caller's directories.
func (b *buildContext) stage(ctx context.Context, modelDir string, pyfunc types.Flavor, pythonVersion string, runtimeHome string) error {
	condafile := filepath.Join(b.Dir, CondaEnvFileName)
	if env := pyfunc.String(types.FlavorKeyEnv); env != "" {
		if err := copyFile(condafile, filepath.Join(modelDir, env)); err != nil {
			return fmt.Errorf("copy conda env:%s %w", env, err)
		}
	} else if err := writeDefaultCondaEnv(condafile, pythonVersion); err != nil {
		return err
	}
	b.CondaFile = condafile

	modeltgz := filepath.Join(b.Dir, modelArchiveName)
	if _, err := platform.TGZ(ctx, modelDir, modeltgz); err != nil {
		return fmt.Errorf("archive model:%s %w", modelDir, err)
	}
	b.Dependencies = append(b.Dependencies, modeltgz)

	if runtimeHome != "" {
		runtimetgz := filepath.Join(b.Dir, runtimeArchiveName)
		if _, err := platform.TGZ(ctx, runtimeHome, runtimetgz); err != nil {
			return fmt.Errorf("archive runtime:%s %w", runtimeHome, err)
		}
		b.Dependencies = append(b.Dependencies, runtimetgz)
	}
	return nil
}

func writeDefaultCondaEnv(filename string, pythonVersion string) error {
	env := map[string]any{
		"name":     "mlship-env",
		"channels": []string{"defaults"},
		"dependencies": []any{
			"python=" + pythonVersion,
			map[string][]string{"pip": {"mlship"}},
		},
	}
	content, err := yaml.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode conda env %w", err)
	}
	return os.WriteFile(filename, content, 0o644)
}

func copyFile(dst string, src string) error {
	srcfile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcfile.Close()

	dstfile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer dstfile.Close()

	_, err = io.Copy(dstfile, srcfile)
	return err
}
