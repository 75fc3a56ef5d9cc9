// Package cli provides the command-line interface for leapgrade.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapgrade/internal/cli/commands"
	"github.com/leapstack-labs/leapgrade/internal/config"

	// Register adapters.
	_ "github.com/leapstack-labs/leapgrade/pkg/adapters/duckdb"
	_ "github.com/leapstack-labs/leapgrade/pkg/adapters/postgres"
	_ "github.com/leapstack-labs/leapgrade/pkg/adapters/sqlite"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "leapgrade",
		Short: "leapgrade - SQL assignment grader",
		Long: `leapgrade grades SQL queries submitted by students.

A submission is sanitized (oversized LIMIT clauses are capped and dangerous
keywords stripped), run against a read-only database next to the instructor's
answer, and the two results are scored with a fixed rubric that explains what
differs.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			loaded, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}

			logger := loaded.NewLogger(cmd.ErrOrStderr())
			if loaded.File != "" {
				logger.Debug("using config file", slog.String("path", loaded.File))
			}

			cmd.SetContext(config.WithConfig(cmd.Context(), loaded, logger))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: leapgrade.yaml, searched upwards)")
	rootCmd.PersistentFlags().String("type", "", "Target database type (sqlite|duckdb|postgres)")
	rootCmd.PersistentFlags().String("database", "", "Target database path or name")
	rootCmd.PersistentFlags().Int("select-limit", 0, "Maximum rows any query may return (0 disables the cap)")
	rootCmd.PersistentFlags().Duration("query-timeout", 0, "Per-query execution timeout")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format (text|json)")

	_ = rootCmd.RegisterFlagCompletionFunc("type", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"sqlite", "duckdb", "postgres"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("log-format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewSanitizeCommand())
	rootCmd.AddCommand(commands.NewScoreCommand())
	rootCmd.AddCommand(commands.NewGradeCommand())
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewVersionCommand(Version, GitCommit, BuildDate))
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for leapgrade.

To load completions:

Bash:
  $ source <(leapgrade completion bash)

Zsh:
  $ leapgrade completion zsh > "${fpath[1]}/_leapgrade"

Fish:
  $ leapgrade completion fish | source

PowerShell:
  PS> leapgrade completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}
