package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"schema-check/internal/core"
)

func newRulesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List builtin rule names",
		RunE: func(_ *cobra.Command, _ []string) error {
			for _, name := range core.Builtins() {
				fmt.Println(name)
			}
			return nil
		},
	}
}
