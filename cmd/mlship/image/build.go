package image

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"mlship.io/mlship/cmd/mlship/workspace"
	"mlship.io/mlship/pkg/deploy"
	"mlship.io/mlship/pkg/errors"
	"mlship.io/mlship/pkg/tracking"
)

const TrackingURIEnv = "MLSHIP_TRACKING_URI"

func NewBuildImageCmd() *cobra.Command {
	opts := deploy.Options{Synchronous: true}
	workspaceName, tagsJSON, trackingURI, async := "", "", os.Getenv(TrackingURIEnv), false
	cmd := &cobra.Command{
		Use:   "build-image",
		Short: "register a model and build an inference image from it",
		Example: `
  mlship build-image -m ./model -w dev-workspace
  mlship build-image -m model -r 0123abcdef -w dev-workspace -i wine-image -n wine-model -t '{"team":"mlops"}'
		`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := BaseContext()
			defer cancel()
			if opts.ModelPath == "" {
				return errors.NewParameterInvalidError("--model-path is required")
			}
			if tagsJSON != "" {
				if err := json.Unmarshal([]byte(tagsJSON), &opts.Tags); err != nil {
					return errors.NewParameterInvalidError(fmt.Sprintf("invalid tags: %s", err))
				}
			}
			opts.Synchronous = !async
			return BuildImage(ctx, workspaceName, trackingURI, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.ModelPath, "model-path", "m", opts.ModelPath, "path of the model to build an image for")
	cmd.Flags().StringVarP(&opts.RunID, "run-id", "r", opts.RunID, "run id of the model, model path becomes run relative")
	cmd.Flags().StringVarP(&workspaceName, "workspace", "w", workspaceName, "workspace to build in")
	cmd.Flags().StringVarP(&opts.ImageName, "image-name", "i", opts.ImageName, "image name, derived when omitted")
	cmd.Flags().StringVarP(&opts.ModelName, "model-name", "n", opts.ModelName, "model name, derived when omitted")
	cmd.Flags().StringVarP(&tagsJSON, "tags", "t", tagsJSON, "tags as a JSON string to string mapping")
	cmd.Flags().StringVarP(&opts.Description, "description", "d", opts.Description, "model and image description")
	cmd.Flags().StringVar(&opts.RuntimeHome, "runtime-home", opts.RuntimeHome, "local runtime source tree to bake into the image")
	cmd.Flags().StringVar(&trackingURI, "tracking-uri", trackingURI, "tracking store uri for run relative models")
	cmd.Flags().BoolVar(&async, "async", async, "return without waiting for image creation")
	cmd.Flags().BoolVar(&opts.KeepContext, "keep-context", opts.KeepContext, "keep the temporary build context")
	cmd.RegisterFlagCompletionFunc("workspace", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return workspace.CompleteWorkspaces(toComplete)
	})
	return cmd
}

func BuildImage(ctx context.Context, workspaceName string, trackingURI string, opts deploy.Options) error {
	details, err := workspace.DefaultManager.Get(workspaceName)
	if err != nil {
		return err
	}
	cli := details.Client()
	ws, err := cli.LoadWorkspace(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Building in workspace %s at %s\n", ws.Name, details.URL)

	store, err := tracking.NewStore(ctx, trackingURI)
	if err != nil {
		return err
	}
	image, model, err := deploy.BuildImage(ctx, cli, store, opts)
	if err != nil {
		return err
	}
	fmt.Printf("Registered model %s version %d\n", model.Name, model.Version)
	if opts.Synchronous {
		fmt.Printf("Image %s created\n", image.Name())
	} else {
		fmt.Printf("Image %s creation requested\n", image.Name())
	}
	return nil
}
