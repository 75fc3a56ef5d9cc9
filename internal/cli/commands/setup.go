// Package commands implements the leapgrade subcommands.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/leapstack-labs/leapgrade/internal/config"
	"github.com/leapstack-labs/leapgrade/internal/grader"
	"github.com/leapstack-labs/leapgrade/internal/upload"
	"github.com/leapstack-labs/leapgrade/pkg/filter"
	"github.com/leapstack-labs/leapgrade/pkg/rubric"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg    *config.Config
	Logger *slog.Logger
	Styles *Styles
}

// NewCommandContext collects the config and logger stored by the root
// command and picks output styles for the command's stdout.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	loaded := config.FromContext(cmd.Context())
	return &CommandContext{
		Cfg:    loaded.Config,
		Logger: config.GetLogger(cmd.Context()),
		Styles: NewStyles(isTerminal(cmd.OutOrStdout())),
	}
}

// NewFilter builds the query filter described by the configuration.
func (c *CommandContext) NewFilter() *filter.Filter {
	blacklist := c.Cfg.Blacklist
	if blacklist == nil {
		blacklist = filter.DefaultBlacklist()
	}
	return filter.New(filter.Options{
		Ceiling:   c.Cfg.SelectLimit,
		Blacklist: blacklist,
		Dialect:   c.Cfg.Target.Type,
		Logger:    c.Logger,
	})
}

// NewScorer builds the rubric scorer described by the configuration.
func (c *CommandContext) NewScorer() *rubric.Scorer {
	return rubric.NewScorer(rubric.Options{
		Keywords:  c.Cfg.Keywords,
		Tolerance: c.Cfg.Tolerance,
		Logger:    c.Logger,
	})
}

// NewGrader builds a grader against the configured target, with a
// filesystem uploader when uploads are enabled.
func (c *CommandContext) NewGrader() (*grader.Grader, error) {
	cfg := c.Cfg

	var uploader upload.Uploader
	if cfg.Upload.Enabled {
		fs, err := upload.NewFS(upload.FSConfig{
			Dir:     cfg.Upload.Dir,
			Prefix:  cfg.Upload.Prefix,
			BaseURL: cfg.Upload.BaseURL,
			Logger:  c.Logger,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create uploader: %w", err)
		}
		uploader = fs
	}

	selectLimit := cfg.SelectLimit
	if selectLimit == 0 {
		selectLimit = grader.NoSelectLimit
	}

	return grader.New(grader.Config{
		Target:         cfg.Target.AdapterConfig(),
		SelectLimit:    selectLimit,
		MaxQueryLength: cfg.MaxQueryLength,
		RowLimit:       cfg.RowLimit,
		QueryTimeout:   cfg.QueryTimeout,
		UploadResults:  cfg.Upload.Enabled,
		Blacklist:      cfg.Blacklist,
		Keywords:       cfg.Keywords,
		Tolerance:      cfg.Tolerance,
		Scale:          cfg.Scale,
		Uploader:       uploader,
		Logger:         c.Logger,
	}), nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // file descriptors fit in int
}

// readInput returns the SQL given as args, read from file, or piped on stdin.
func readInput(cmd *cobra.Command, args []string, file string) (string, error) {
	switch {
	case len(args) > 0:
		return strings.Join(args, " "), nil
	case file != "":
		content, err := os.ReadFile(file) //nolint:gosec // path supplied by the user
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		return string(content), nil
	case !isTerminal(cmd.InOrStdin()):
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(content), nil
	default:
		return "", fmt.Errorf("no SQL given: pass it as an argument, with --input, or on stdin")
	}
}
