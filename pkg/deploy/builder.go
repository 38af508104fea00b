package deploy

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/go-logr/logr"
	goversion "github.com/hashicorp/go-version"
	"mlship.io/mlship/pkg/errors"
	"mlship.io/mlship/pkg/platform"
	"mlship.io/mlship/pkg/tracking"
	"mlship.io/mlship/pkg/types"
)

// Tags attached to every registered model and created image.
const (
	TagRunID         = "run_id"
	TagModelPath     = "model_path"
	TagPythonVersion = "python_version"
)

type Options struct {
	// ModelPath is a local artifact directory, or an artifact path relative
	// to a run when RunID is set.
	ModelPath string
	RunID     string

	// ModelName and ImageName are used verbatim when set and derived from
	// ModelPath/RunID otherwise.
	ModelName string
	ImageName string

	Tags        map[string]string
	Description string

	// RuntimeHome points at a local runtime source tree baked into the
	// image in place of the released package.
	RuntimeHome string

	// Synchronous blocks until the platform finished building the image.
	Synchronous bool

	// KeepContext retains the temporary build context for inspection.
	KeepContext bool
}

// BuildImage registers the model with the platform and requests creation of
// a deployable inference image from it. The model descriptor is validated
// before anything is sent: a pyfunc flavor must be present and the recorded
// python version must be at least 3.
func BuildImage(ctx context.Context, pf platform.Platform, store tracking.ArtifactStore, opts Options) (platform.Image, platform.Model, error) {
	log := logr.FromContextOrDiscard(ctx)

	modelDir := opts.ModelPath
	if opts.RunID != "" {
		if store == nil {
			return nil, platform.Model{}, errors.NewParameterInvalidError("run id given but no tracking store configured")
		}
		resolved, err := store.ResolveArtifact(ctx, opts.RunID, opts.ModelPath)
		if err != nil {
			return nil, platform.Model{}, err
		}
		modelDir = resolved
	}

	descriptor, err := types.LoadDescriptor(modelDir)
	if err != nil {
		return nil, platform.Model{}, err
	}
	pyfunc, ok := descriptor.Flavor(types.FlavorPyFunc)
	if !ok {
		return nil, platform.Model{}, errors.NewParameterInvalidError(
			fmt.Sprintf("model does not contain the %s flavor required for image deployment", types.FlavorPyFunc))
	}
	pythonVersion := pyfunc.String(types.FlavorKeyPythonVersion)
	if err := checkPythonVersion(pythonVersion); err != nil {
		return nil, platform.Model{}, err
	}

	modelName := opts.ModelName
	if modelName == "" {
		modelName = DeriveModelName(opts.ModelPath, opts.RunID)
	}
	imageName := opts.ImageName
	if imageName == "" {
		imageName = DeriveImageName(opts.ModelPath, opts.RunID)
	}
	tags := mergeTags(defaultTags(opts, pythonVersion), opts.Tags)

	bctx, err := newBuildContext(opts.KeepContext)
	if err != nil {
		return nil, platform.Model{}, err
	}
	defer bctx.Close(ctx)

	if err := bctx.stage(ctx, modelDir, pyfunc, pythonVersion, opts.RuntimeHome); err != nil {
		return nil, platform.Model{}, err
	}

	model, err := pf.RegisterModel(ctx, platform.RegisterModelOptions{
		ModelPath:   modelDir,
		ModelName:   modelName,
		Tags:        tags,
		Description: opts.Description,
	})
	if err != nil {
		return nil, platform.Model{}, err
	}
	log.Info("registered model", "name", model.Name, "version", model.Version)

	scriptPath := filepath.Join(bctx.Dir, ExecutionScriptName)
	if err := CreateExecutionScript(scriptPath, model); err != nil {
		return nil, model, err
	}

	image, err := pf.CreateImage(ctx, platform.CreateImageOptions{
		Name: imageName,
		Config: platform.ImageConfig{
			ExecutionScript: scriptPath,
			CondaFile:       bctx.CondaFile,
			RuntimeVersion:  pythonVersion,
			Tags:            tags,
			Description:     opts.Description,
			Dependencies:    bctx.Dependencies,
		},
	})
	if err != nil {
		return nil, model, err
	}
	log.Info("requested image creation", "name", image.Name())

	if opts.Synchronous {
		if err := image.WaitForCreation(ctx); err != nil {
			return image, model, err
		}
	}
	return image, model, nil
}

func checkPythonVersion(raw string) error {
	if raw == "" {
		return errors.NewParameterInvalidError("model descriptor does not record a python version")
	}
	v, err := goversion.NewVersion(raw)
	if err != nil {
		return errors.NewParameterInvalidError(fmt.Sprintf("invalid python version recorded: %s", raw))
	}
	if v.Segments()[0] < 3 {
		return errors.NewParameterInvalidError(
			fmt.Sprintf("image deployment requires python 3 or above, model was saved with python %s", raw))
	}
	return nil
}

func defaultTags(opts Options, pythonVersion string) map[string]string {
	tags := map[string]string{
		TagModelPath:     opts.ModelPath,
		TagPythonVersion: pythonVersion,
	}
	if opts.RunID != "" {
		tags[TagRunID] = opts.RunID
	}
	return tags
}

// mergeTags overlays user tags on the defaults. User values win on key
// collisions so nothing the caller supplied is dropped.
func mergeTags(defaults map[string]string, user map[string]string) map[string]string {
	merged := make(map[string]string, len(defaults)+len(user))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range user {
		merged[k] = v
	}
	return merged
}
