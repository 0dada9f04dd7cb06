package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clokai/clok/pkg/coretools"
	"github.com/clokai/clok/pkg/registry"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the registered tool collaborators",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		reg := registry.New()
		if err := coretools.Register(reg, coretools.Options{WorkspaceRoot: cfg.WorkspaceRoot}); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, name := range reg.Names() {
			def := reg.Get(name)
			fmt.Fprintf(out, "%-16s %-8s %s\n", def.Name, def.Class, def.Description)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}
