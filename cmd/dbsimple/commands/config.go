package commands

import (
	"github.com/dbsimple/dbsimple-go/internal/config"
	"github.com/dbsimple/dbsimple-go/internal/ui"
	"github.com/spf13/cobra"
)

func newConfigCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and save connection settings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the resolved connection settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			d := a.cfg.Descriptor
			password := ""
			if d.Password != "" {
				password = "********"
			}
			file := a.cfg.File
			if file == "" {
				file = "(none)"
			}

			ui.PrintKeyValues([][2]string{
				{"config file", file},
				{"scheme", d.Scheme},
				{"host", d.Host},
				{"port", portString(d.Port)},
				{"socket", d.Socket},
				{"database", d.Database},
				{"user", d.User},
				{"password", password},
				{"encoding", d.Encoding},
				{"persist", boolString(d.Persist)},
				{"timeout", d.Timeout.String()},
				{"pool max idle", ui.FormatValue(a.cfg.Pool.MaxIdleConns)},
				{"pool max lifetime", a.cfg.Pool.ConnMaxLifetime.String()},
				{"pool max idle time", a.cfg.Pool.ConnMaxIdleTime.String()},
			})
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "save",
		Short: "Save the resolved connection settings, without the password",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.Save(a.cfg.Descriptor)
			if err != nil {
				return err
			}
			ui.PrintSuccess("saved %s", path)
			return nil
		},
	})

	return cmd
}

func portString(p int) string {
	if p == 0 {
		return ""
	}
	return ui.FormatValue(p)
}

func boolString(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
