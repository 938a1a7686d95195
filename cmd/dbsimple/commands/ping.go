package commands

import (
	"fmt"
	"time"

	"github.com/dbsimple/dbsimple-go/internal/ui"
	"github.com/spf13/cobra"
)

// serverVersioner is implemented by adapters that report the server version.
type serverVersioner interface {
	ServerVersion() string
}

func newPingCommand(a *app) *cobra.Command {
	var askPassword bool

	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Check that the database is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			started := time.Now()
			adapter, err := a.open(cmd.Context(), askPassword)
			if err != nil {
				return err
			}
			defer adapter.Close()

			res, err := adapter.Execute(cmd.Context(), "SELECT 1")
			if err != nil {
				return err
			}
			if n, err := res.Scalar(); err != nil || n != 1 {
				return fmt.Errorf("unexpected ping result %v", res.Value())
			}

			pairs := [][2]string{
				{"dialect", string(adapter.Dialect())},
				{"database", a.cfg.Descriptor.Database},
			}
			if sv, ok := adapter.(serverVersioner); ok {
				pairs = append(pairs, [2]string{"server version", sv.ServerVersion()})
			}
			pairs = append(pairs, [2]string{"round trip", time.Since(started).Round(time.Millisecond).String()})

			ui.PrintSuccess("connected")
			ui.PrintKeyValues(pairs)
			return nil
		},
	}

	cmd.Flags().BoolVar(&askPassword, "ask-password", false, "Prompt for the password")
	return cmd
}
