package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

// InitResult reports the database an init run prepared.
type InitResult struct {
	Path    string `json:"path"`
	Created bool   `json:"created"`
}

func (r InitResult) Text() string {
	if r.Created {
		return fmt.Sprintf("Created and seeded %s\n", r.Path)
	}
	return fmt.Sprintf("Database %s is ready\n", r.Path)
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create and seed the database",
		Long: `Open the configured database, creating it with the demo catalogue
when it does not exist yet. Opening an existing database changes nothing.

Example:
  storefront init --data-dir ./data`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(commandContext(cmd), rootOpts)
			if err != nil {
				return err
			}
			defer sess.Close()

			return rootOpts.formatter(cmd).Success(InitResult{
				Path:    filepath.Join(sess.cfg.DataDir, sess.cfg.DBName),
				Created: sess.store.Created(),
			})
		},
	}
}
