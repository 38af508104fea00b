package workspace

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"mlship.io/mlship/pkg/platform"
)

func NewWorkspaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workspace",
		Short: "Workspace management",
		Long:  "Manage platform workspaces known to this machine",
	}
	cmd.AddCommand(NewWorkspaceAddCmd())
	cmd.AddCommand(NewWorkspaceListCmd())
	cmd.AddCommand(NewWorkspaceRemoveCmd())
	cmd.AddCommand(NewWorkspaceLoginCmd())
	return cmd
}

type WorkspaceFile struct {
	Workspaces []Details `json:"workspaces,omitempty"`
}

type Details struct {
	Name string `json:"name,omitempty"`
	URL  string `json:"url,omitempty"`
	// Token is stored base64 encoded; raw values from hand-edited files
	// are accepted as-is.
	Token string `json:"token,omitempty"`
}

func (d Details) Client() *platform.Client {
	auth := ""
	if d.Token != "" {
		token := d.Token
		if decoded, err := base64.StdEncoding.DecodeString(token); err == nil {
			token = string(decoded)
		}
		auth = "Bearer " + token
	}
	return platform.NewClient(d.URL, d.Name, auth)
}

func EncodeToken(token string) string {
	return base64.StdEncoding.EncodeToString([]byte(token))
}

var DefaultManager = &Manager{}

type Manager struct {
	Path       string
	workspaces WorkspaceFile
}

func (m *Manager) path() string {
	if m.Path != "" {
		return m.Path
	}
	if home := os.Getenv("MLSHIP_HOME"); home != "" {
		return filepath.Join(home, "workspaces.json")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		panic(err)
	}
	return filepath.Join(home, ".mlship", "workspaces.json")
}

func (m *Manager) Set(item Details) error {
	if _, err := url.ParseRequestURI(item.URL); err != nil {
		return fmt.Errorf("invalid url: %s", item.URL)
	}
	if err := m.load(); err != nil {
		return err
	}
	var exists bool
	for i, ws := range m.workspaces.Workspaces {
		if ws.Name == item.Name {
			m.workspaces.Workspaces[i] = item
			exists = true
			break
		}
	}
	if !exists {
		m.workspaces.Workspaces = append(m.workspaces.Workspaces, item)
	}
	return m.save()
}

func (m *Manager) Get(name string) (Details, error) {
	if err := m.load(); err != nil {
		return Details{}, err
	}
	for _, ws := range m.workspaces.Workspaces {
		if ws.Name == name || ws.URL == name {
			return ws, nil
		}
	}
	return Details{}, fmt.Errorf("workspace %s not found, run 'mlship workspace add' first", name)
}

func (m *Manager) Remove(name string) error {
	if err := m.load(); err != nil {
		return err
	}
	for i, ws := range m.workspaces.Workspaces {
		if ws.Name == name {
			m.workspaces.Workspaces = append(m.workspaces.Workspaces[:i], m.workspaces.Workspaces[i+1:]...)
			return m.save()
		}
	}
	return fmt.Errorf("workspace %s not found", name)
}

func (m *Manager) List() []Details {
	if err := m.load(); err != nil {
		return nil
	}
	return m.workspaces.Workspaces
}

func (m *Manager) load() error {
	content, err := os.ReadFile(m.path())
	if err != nil {
		if os.IsNotExist(err) {
			m.workspaces = WorkspaceFile{}
			return nil
		}
		return err
	}
	return json.Unmarshal(content, &m.workspaces)
}

func (m *Manager) save() error {
	content, err := json.MarshalIndent(m.workspaces, "", "  ")
	if err != nil {
		return err
	}
	filename := m.path()
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return err
	}
	return os.WriteFile(filename, content, 0o600)
}

func CompleteWorkspaces(toComplete string) ([]string, cobra.ShellCompDirective) {
	names := []string{}
	for _, item := range DefaultManager.List() {
		names = append(names, item.Name)
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
