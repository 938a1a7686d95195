package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dbsimple/dbsimple-go/database"
	"github.com/dbsimple/dbsimple-go/internal/ui"
	"github.com/dbsimple/dbsimple-go/internal/watch"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

type execOptions struct {
	file        string
	json        bool
	markdown    bool
	total       bool
	watch       bool
	tx          bool
	askPassword bool
}

// statementOutput is the JSON shape of one executed statement.
type statementOutput struct {
	Statement string         `json:"statement"`
	Kind      string         `json:"kind"`
	InsertID  *int64         `json:"insert_id,omitempty"`
	Affected  *int64         `json:"rows_affected,omitempty"`
	Rows      []database.Row `json:"rows,omitempty"`
	Total     *int64         `json:"total,omitempty"`

	result database.Result
}

func newExecCommand(a *app) *cobra.Command {
	var opts execOptions

	cmd := &cobra.Command{
		Use:   "exec [SQL]",
		Short: "Execute SQL statements",
		Long: `Execute one or more SQL statements given as arguments, read from a file
with --file, or read from standard input.

Scripts are split into statements with the dialect's quoting rules, so
semicolons inside string literals and comments are safe.`,
		Example: `  dbsimple exec "SELECT * FROM users LIMIT 10" --total
  dbsimple exec -f migrate.sql --tx
  dbsimple exec -f report.sql --watch --json
  dbsimple exec -f report.sql --markdown`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.watch && opts.file == "" {
				return errors.New("--watch requires --file")
			}
			if opts.json && opts.markdown {
				return errors.New("--json and --markdown are mutually exclusive")
			}
			if opts.file != "" && len(args) > 0 {
				return errors.New("pass SQL either as arguments or with --file, not both")
			}
			return runExec(cmd.Context(), a, cmd.InOrStdin(), args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Read SQL from file")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print results as JSON")
	cmd.Flags().BoolVar(&opts.markdown, "markdown", false, "Print results as a rendered markdown report")
	cmd.Flags().BoolVar(&opts.total, "total", false, "Also report the total rows of paginated selections")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Re-run the file whenever it changes")
	cmd.Flags().BoolVar(&opts.tx, "tx", false, "Run all statements in one transaction")
	cmd.Flags().BoolVar(&opts.askPassword, "ask-password", false, "Prompt for the password")

	return cmd
}

func runExec(ctx context.Context, a *app, stdin io.Reader, args []string, opts execOptions) error {
	adapter, err := a.open(ctx, opts.askPassword)
	if err != nil {
		return err
	}
	defer adapter.Close()

	if !opts.watch {
		script, err := readScript(stdin, args, opts.file)
		if err != nil {
			return err
		}
		return runScript(ctx, adapter, script, opts)
	}

	w, err := watch.NewWatcher(opts.file, func() error {
		script, err := readScript(stdin, nil, opts.file)
		if err != nil {
			return err
		}
		ui.PrintInfo("running %s", opts.file)
		return runScript(ctx, adapter, script, opts)
	}, watch.WithErrorHandler(func(err error) {
		ui.PrintError("%v", err)
	}))
	if err != nil {
		return err
	}
	defer w.Stop()

	if err := w.Start(); err != nil {
		return err
	}
	ui.PrintInfo("watching %s, press Ctrl+C to stop", opts.file)
	<-ctx.Done()
	return nil
}

func readScript(stdin io.Reader, args []string, file string) (string, error) {
	switch {
	case len(args) > 0:
		return strings.Join(args, " "), nil
	case file != "":
		data, err := afero.ReadFile(afero.NewOsFs(), file)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", file, err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read standard input: %w", err)
	}
	return string(data), nil
}

// runScript executes every statement of script in order and stops at the
// first failure.
func runScript(ctx context.Context, adapter database.Adapter, script string, opts execOptions) (err error) {
	statements, err := splitScript(adapter, script)
	if err != nil {
		return err
	}
	if len(statements) == 0 {
		return errors.New("no SQL statement given")
	}

	if opts.tx {
		if err := adapter.Begin(ctx); err != nil {
			return err
		}
		defer func() {
			if err != nil {
				if rbErr := adapter.Rollback(); rbErr != nil {
					err = errors.Join(err, rbErr)
				}
				return
			}
			err = adapter.Commit()
		}()
	}

	outputs := make([]statementOutput, 0, len(statements))
	for _, stmt := range statements {
		out, err := runStatement(ctx, adapter, stmt, opts.total)
		if err != nil {
			return err
		}
		if opts.json || opts.markdown {
			outputs = append(outputs, out)
			continue
		}
		if err := printStatement(out); err != nil {
			return err
		}
	}

	switch {
	case opts.json:
		return ui.PrintJSON(outputs)
	case opts.markdown:
		sections := make([]string, 0, len(outputs))
		for _, out := range outputs {
			sections = append(sections, ui.MarkdownResult(out.Statement, out.result, out.Total))
		}
		return ui.PrintMarkdown(strings.Join(sections, "\n---\n\n"))
	}
	return nil
}

func splitScript(adapter database.Adapter, script string) ([]string, error) {
	if s, ok := adapter.(database.Splitter); ok {
		return s.SplitStatements(script)
	}
	if q := strings.TrimSpace(script); q != "" {
		return []string{q}, nil
	}
	return nil, nil
}

func runStatement(ctx context.Context, adapter database.Adapter, stmt string, withTotal bool) (statementOutput, error) {
	out := statementOutput{Statement: stmt}

	var (
		res database.Result
		err error
	)
	if withTotal {
		var total int64
		res, total, err = database.Paginate(ctx, adapter, stmt)
		if err == nil && res.Kind == database.KindRows {
			out.Total = &total
		}
	} else {
		res, err = adapter.Execute(ctx, stmt)
	}
	if err != nil {
		return out, err
	}

	out.result = res
	out.Kind = res.Kind.String()
	switch res.Kind {
	case database.KindInsertID:
		out.InsertID = &res.InsertID
	case database.KindRowCount:
		out.Affected = &res.RowsAffected
	case database.KindRows:
		out.Rows = res.Rows
		if out.Rows == nil {
			out.Rows = []database.Row{}
		}
	}
	return out, nil
}

func printStatement(out statementOutput) error {
	if err := ui.PrintResult(out.result); err != nil {
		return err
	}
	if out.Total != nil {
		ui.PrintInfo("%d rows in total", *out.Total)
	}
	return nil
}
