package main

import (
	"crypto/tls"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"mlship.io/mlship/cmd/mlship/completion"
	"mlship.io/mlship/cmd/mlship/image"
	"mlship.io/mlship/cmd/mlship/workspace"
	"mlship.io/mlship/pkg/version"
)

const ErrExitCode = 1

func main() {
	if err := NewMlshipCmd().Execute(); err != nil {
		os.Exit(ErrExitCode)
	}
}

func NewMlshipCmd() *cobra.Command {
	insecureSkipVerify := false
	cmd := &cobra.Command{
		Use:     "mlship",
		Short:   "deploy tracked models as inference images",
		Version: version.Get().String(),
	}
	cmd.AddCommand(
		image.NewBuildImageCmd(),
		image.NewImageCmd(),
		workspace.NewWorkspaceCmd(),
		completion.CompletionCmd,
	)
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if insecureSkipVerify {
			http.DefaultTransport.(*http.Transport).TLSClientConfig = &tls.Config{
				InsecureSkipVerify: true,
			}
		}
	}
	cmd.PersistentFlags().BoolVarP(&insecureSkipVerify, "insecure", "", insecureSkipVerify, "tls insecure skip verify")
	return cmd
}
