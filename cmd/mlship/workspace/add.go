package workspace

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewWorkspaceAddCmd() *cobra.Command {
	token := ""
	cmd := &cobra.Command{
		Use:   "add [name] [url]",
		Short: "Add a workspace",
		Example: `
  mlship workspace add dev-workspace https://platform.example.com --token <token>
		`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("workspace add requires a name and a url")
			}
			if token != "" {
				token = EncodeToken(token)
			}
			return DefaultManager.Set(Details{Name: args[0], URL: args[1], Token: token})
		},
	}
	cmd.Flags().StringVar(&token, "token", token, "platform access token")
	return cmd
}
