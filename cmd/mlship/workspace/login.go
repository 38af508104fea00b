package workspace

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"mlship.io/mlship/pkg/platform"
)

func NewWorkspaceLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login [name] [url]",
		Short: "Login to a workspace",
		Example: `
  mlship workspace login dev-workspace https://platform.example.com
		`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
			defer cancel()
			if len(args) != 2 {
				return errors.New("workspace login requires a name and a url")
			}
			fmt.Println("please input token:")
			reader := bufio.NewReader(os.Stdin)
			token, err := reader.ReadString('\n')
			if err != nil {
				return err
			}
			token = strings.Trim(token, "\n")
			return Login(ctx, args[0], args[1], token)
		},
	}
	return cmd
}

// Login verifies the token by loading the workspace and stores it on
// success.
func Login(ctx context.Context, name string, addr string, token string) error {
	cli := platform.NewClient(addr, name, "Bearer "+token)
	ws, err := cli.LoadWorkspace(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Logged in to workspace %s\n", ws.Name)
	return DefaultManager.Set(Details{Name: name, URL: addr, Token: EncodeToken(token)})
}
