package workspace

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewWorkspaceRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove [name]",
		Short: "Remove a workspace",
		Example: `
  mlship workspace remove dev-workspace
		`,
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return CompleteWorkspaces(toComplete)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("workspace remove requires at least one argument")
			}
			for _, name := range args {
				if err := DefaultManager.Remove(name); err != nil {
					return err
				}
			}
			return nil
		},
	}
	return cmd
}
