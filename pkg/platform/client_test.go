package platform_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"mlship.io/mlship/pkg/errors"
	"mlship.io/mlship/pkg/platform"
	"mlship.io/mlship/pkg/platform/platformtest"
)

func newTestClient(t *testing.T) (*platform.Client, *platformtest.Server) {
	t.Helper()
	server := platformtest.NewServer("test-workspace")
	t.Cleanup(server.Close)
	cli := platform.NewClient(server.URL, "test-workspace", "Bearer test-token")
	cli.CacheDir = t.TempDir()
	return cli, server
}

func writeModelDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestClientLoadWorkspace(t *testing.T) {
	cli, _ := newTestClient(t)

	ws, err := cli.LoadWorkspace(context.Background())
	require.NoError(t, err)
	require.Equal(t, "test-workspace", ws.Name)

	cli.Workspace = "no-such-workspace"
	_, err = cli.LoadWorkspace(context.Background())
	require.True(t, errors.IsErrCode(err, errors.ErrCodeWorkspaceUnknown))
}

func TestClientRegisterModel(t *testing.T) {
	cli, server := newTestClient(t)
	dir := writeModelDir(t, map[string]string{"model.pkl": "weights"})

	model, err := cli.RegisterModel(context.Background(), platform.RegisterModelOptions{
		ModelPath: dir,
		ModelName: "wine-model",
		Tags:      map[string]string{"python_version": "3.6.5"},
	})
	require.NoError(t, err)
	require.Equal(t, "wine-model", model.Name)
	require.Equal(t, 1, model.Version)
	require.Equal(t, 1, server.CallCount("RegisterModel"))
	require.Equal(t, 1, server.CallCount("UploadBlob"))

	// registering the identical artifact again reuses the stored blob
	model, err = cli.RegisterModel(context.Background(), platform.RegisterModelOptions{
		ModelPath: dir,
		ModelName: "wine-model",
	})
	require.NoError(t, err)
	require.Equal(t, 2, model.Version)
	require.Equal(t, 1, server.CallCount("UploadBlob"))
}

func TestClientCreateImage(t *testing.T) {
	cli, server := newTestClient(t)

	stage := t.TempDir()
	script := filepath.Join(stage, "score.py")
	conda := filepath.Join(stage, "conda.yaml")
	dep := filepath.Join(stage, "model.tar.gz")
	for path, content := range map[string]string{script: "def init(): pass\n", conda: "name: env\n", dep: "tgz-bytes"} {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	image, err := cli.CreateImage(context.Background(), platform.CreateImageOptions{
		Name: "wine-image",
		Config: platform.ImageConfig{
			ExecutionScript: script,
			CondaFile:       conda,
			RuntimeVersion:  "3.6.5",
			Dependencies:    []string{dep},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "wine-image", image.Name())
	require.Equal(t, 3, server.CallCount("UploadBlob"))

	manifest, ok := server.Images["wine-image"]
	require.True(t, ok)
	require.Equal(t, "score.py", manifest.Config.ExecutionScript)
	require.Equal(t, "conda.yaml", manifest.Config.CondaFile)
	require.Len(t, manifest.Config.Dependencies, 3)
}

func TestImageWaitForCreation(t *testing.T) {
	interval := platform.CreationPollInterval
	platform.CreationPollInterval = 5 * time.Millisecond
	t.Cleanup(func() { platform.CreationPollInterval = interval })

	cli, server := newTestClient(t)
	stage := t.TempDir()
	script := filepath.Join(stage, "score.py")
	require.NoError(t, os.WriteFile(script, []byte("def init(): pass\n"), 0o644))

	image, err := cli.CreateImage(context.Background(), platform.CreateImageOptions{
		Name:   "wine-image",
		Config: platform.ImageConfig{ExecutionScript: script},
	})
	require.NoError(t, err)

	server.OperationStates = []string{platform.OperationStateRunning, platform.OperationStateSucceeded}
	require.NoError(t, image.WaitForCreation(context.Background()))
	require.GreaterOrEqual(t, server.CallCount("GetOperation"), 2)

	server.OperationStates = []string{platform.OperationStateFailed}
	image, err = cli.CreateImage(context.Background(), platform.CreateImageOptions{
		Name:   "failing-image",
		Config: platform.ImageConfig{ExecutionScript: script},
	})
	require.NoError(t, err)
	err = image.WaitForCreation(context.Background())
	require.True(t, errors.IsErrCode(err, errors.ErrCodeImageBuildFailed))
}

func TestClientImageStatus(t *testing.T) {
	cli, server := newTestClient(t)
	stage := t.TempDir()
	script := filepath.Join(stage, "score.py")
	require.NoError(t, os.WriteFile(script, []byte("def init(): pass\n"), 0o644))

	_, err := cli.CreateImage(context.Background(), platform.CreateImageOptions{
		Name:   "wine-image",
		Config: platform.ImageConfig{ExecutionScript: script},
	})
	require.NoError(t, err)
	server.OperationStates = []string{platform.OperationStateRunning}

	manifest, operation, err := cli.ImageStatus(context.Background(), "wine-image")
	require.NoError(t, err)
	require.Equal(t, "wine-image", manifest.Name)
	require.Equal(t, platform.OperationStateRunning, operation.State)

	_, _, err = cli.ImageStatus(context.Background(), "no-such-image")
	require.True(t, errors.IsErrCode(err, errors.ErrCodeImageUnknown))
}

func TestClientGetModelPath(t *testing.T) {
	cli, server := newTestClient(t)
	dir := writeModelDir(t, map[string]string{"model.pkl": "weights", "mlmodel.yaml": "flavors: {}\n"})

	_, err := cli.RegisterModel(context.Background(), platform.RegisterModelOptions{
		ModelPath: dir,
		ModelName: "wine-model",
	})
	require.NoError(t, err)

	path, err := cli.GetModelPath(context.Background(), "wine-model", 1)
	require.NoError(t, err)
	content, err := os.ReadFile(filepath.Join(path, "model.pkl"))
	require.NoError(t, err)
	require.Equal(t, "weights", string(content))
	require.Equal(t, 1, server.CallCount("GetBlob"))

	// second lookup is served from the local cache
	again, err := cli.GetModelPath(context.Background(), "wine-model", 1)
	require.NoError(t, err)
	require.Equal(t, path, again)
	require.Equal(t, 1, server.CallCount("GetBlob"))

	_, err = cli.GetModelPath(context.Background(), "no-such-model", 1)
	require.True(t, errors.IsErrCode(err, errors.ErrCodeModelUnknown))
}
