package image

import (
	"testing"

	"github.com/stretchr/testify/require"
	"mlship.io/mlship/cmd/mlship/workspace"
	"mlship.io/mlship/pkg/errors"
	"mlship.io/mlship/pkg/platform/platformtest"
	"mlship.io/mlship/pkg/types"
)

func setupWorkspace(t *testing.T) *platformtest.Server {
	t.Helper()
	server := platformtest.NewServer("dev-workspace")
	t.Cleanup(server.Close)

	t.Setenv("MLSHIP_HOME", t.TempDir())
	require.NoError(t, workspace.DefaultManager.Set(workspace.Details{
		Name:  "dev-workspace",
		URL:   server.URL,
		Token: workspace.EncodeToken("test-token"),
	}))
	return server
}

func pyfuncModelDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	descriptor := types.ModelDescriptor{Flavors: map[string]types.Flavor{
		types.FlavorPyFunc: {types.FlavorKeyPythonVersion: "3.6.5"},
	}}
	require.NoError(t, descriptor.Save(dir))
	return dir
}

func TestBuildImageCmd(t *testing.T) {
	server := setupWorkspace(t)
	dir := pyfuncModelDir(t)

	cmd := NewBuildImageCmd()
	cmd.SetArgs([]string{
		"-m", dir,
		"-w", "dev-workspace",
		"-n", "wine-model",
		"-i", "wine-image",
		"-t", `{"team":"mlops"}`,
		"--async",
	})
	require.NoError(t, cmd.Execute())

	require.Equal(t, 1, server.CallCount("GetWorkspace"))
	require.Equal(t, 1, server.CallCount("RegisterModel"))
	require.Equal(t, 1, server.CallCount("CreateImage"))
	require.Equal(t, 0, server.CallCount("GetOperation"))

	manifest, ok := server.Images["wine-image"]
	require.True(t, ok)
	require.Equal(t, "mlops", manifest.Config.Tags["team"])
	require.Equal(t, dir, manifest.Config.Tags["model_path"])
}

func TestBuildImageCmdMissingModelPath(t *testing.T) {
	setupWorkspace(t)

	cmd := NewBuildImageCmd()
	cmd.SetArgs([]string{"-w", "dev-workspace"})
	err := cmd.Execute()
	require.True(t, errors.IsErrCode(err, errors.ErrCodeInvalidParameter))
}

func TestBuildImageCmdInvalidTags(t *testing.T) {
	setupWorkspace(t)
	dir := pyfuncModelDir(t)

	cmd := NewBuildImageCmd()
	cmd.SetArgs([]string{"-m", dir, "-w", "dev-workspace", "-t", "not-json"})
	err := cmd.Execute()
	require.True(t, errors.IsErrCode(err, errors.ErrCodeInvalidParameter))
}

func TestBuildImageCmdUnknownWorkspace(t *testing.T) {
	setupWorkspace(t)
	dir := pyfuncModelDir(t)

	cmd := NewBuildImageCmd()
	cmd.SetArgs([]string{"-m", dir, "-w", "no-such-workspace"})
	require.Error(t, cmd.Execute())
}
