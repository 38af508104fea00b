package image

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"mlship.io/mlship/cmd/mlship/workspace"
)

func BaseContext() (context.Context, context.CancelFunc) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	if os.Getenv("DEBUG") == "1" {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
		ctx = logr.NewContext(ctx, stdr.NewWithOptions(log.Default(), stdr.Options{LogCaller: stdr.Error}))
	}
	return ctx, cancel
}

func NewImageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "image",
		Short: "Inspect images on the platform",
	}
	cmd.AddCommand(NewImageStatusCmd())
	return cmd
}

func NewImageStatusCmd() *cobra.Command {
	workspaceName := ""
	cmd := &cobra.Command{
		Use:   "status [name]",
		Short: "Show creation state of an image",
		Example: `
  mlship image status wine-image -w dev-workspace
		`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := BaseContext()
			defer cancel()
			if len(args) == 0 {
				return cmd.Help()
			}
			details, err := workspace.DefaultManager.Get(workspaceName)
			if err != nil {
				return err
			}
			manifest, operation, err := details.Client().ImageStatus(ctx, args[0])
			if err != nil {
				return err
			}
			state, message := manifest.State, ""
			if operation != nil {
				state, message = operation.State, operation.Message
			}
			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Image", "State", "Message"})
			t.AppendRow(table.Row{manifest.Name, state, message})
			t.Render()
			return nil
		},
	}
	cmd.Flags().StringVarP(&workspaceName, "workspace", "w", workspaceName, "workspace name")
	cmd.RegisterFlagCompletionFunc("workspace", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return workspace.CompleteWorkspaces(toComplete)
	})
	return cmd
}
