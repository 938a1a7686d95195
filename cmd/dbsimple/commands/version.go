package commands

import (
	"fmt"

	"github.com/dbsimple/dbsimple-go/internal/ui"
	"github.com/dbsimple/dbsimple-go/internal/version"
	"github.com/spf13/cobra"
)

func newVersionCommand() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		// No connection settings needed.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()
			if short {
				fmt.Fprintln(ui.Out, info.String())
				return nil
			}
			ui.PrintKeyValues(info.Pairs())
			return nil
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "Print a single line")
	return cmd
}
