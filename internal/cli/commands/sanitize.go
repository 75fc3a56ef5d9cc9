package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// SanitizeOptions holds options for the sanitize command.
type SanitizeOptions struct {
	Input string
	JSON  bool
}

// NewSanitizeCommand creates the sanitize command.
func NewSanitizeCommand() *cobra.Command {
	opts := &SanitizeOptions{}

	cmd := &cobra.Command{
		Use:   "sanitize [SQL]",
		Short: "Cap LIMIT clauses and strip blacklisted keywords",
		Long: `Run a query through the same filter applied to student submissions.

LIMIT counts above select_limit are lowered to it and blacklisted keywords
such as SLEEP or BENCHMARK are removed. The rewritten SQL is printed on
stdout and every edit is reported as a warning on stderr.`,
		Example: `  leapgrade sanitize "SELECT * FROM Batting LIMIT 50000"
  leapgrade sanitize -i answer.sql
  cat answer.sql | leapgrade sanitize --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSanitize(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Print the result as JSON")

	return cmd
}

func runSanitize(cmd *cobra.Command, args []string, opts *SanitizeOptions) error {
	cmdCtx := NewCommandContext(cmd)

	sql, err := readInput(cmd, args, opts.Input)
	if err != nil {
		return err
	}

	res := cmdCtx.NewFilter().Sanitize(sql)

	out := cmd.OutOrStdout()
	if opts.JSON {
		warnings := res.Warnings
		if warnings == nil {
			warnings = []string{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"sql":      res.SQL,
			"modified": res.Modified,
			"warnings": warnings,
		})
	}

	_, _ = fmt.Fprintln(out, res.SQL)

	warn := NewStyles(isTerminal(cmd.ErrOrStderr())).Warning
	for _, w := range res.Warnings {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), warn.Render("warning: "+w))
	}
	return nil
}
