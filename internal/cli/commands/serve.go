package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapgrade/internal/server"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the grading HTTP API",
		Long: `Start the HTTP API.

Endpoints:
  GET  /healthz        database connectivity check
  POST /api/sanitize   {"sql": ...}
  POST /api/score      two result sets and their queries
  POST /api/grade      {"key", "student_response", "grader_payload"}

The server stops gracefully on SIGINT or SIGTERM.`,
		Example: `  leapgrade serve
  leapgrade serve --addr :9000 --upload --upload-dir /srv/results --base-url https://files.example.com`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "Listen address (default :8080)")
	cmd.Flags().Bool("upload", false, "Offer CSV downloads of student results")
	cmd.Flags().String("upload-dir", "", "Directory uploaded results are written to")
	cmd.Flags().String("base-url", "", "Public URL the upload directory is served under")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cmdCtx := NewCommandContext(cmd)

	g, err := cmdCtx.NewGrader()
	if err != nil {
		return err
	}

	srv := server.New(server.Config{
		Addr:      cmdCtx.Cfg.Server.Addr,
		Evaluator: g,
		Filter:    cmdCtx.NewFilter(),
		Scorer:    cmdCtx.NewScorer(),
		Logger:    cmdCtx.Logger,
	})

	cmdCtx.Logger.Info("grading against target",
		slog.String("type", cmdCtx.Cfg.Target.Type),
		slog.String("database", cmdCtx.Cfg.Target.Database))

	return srv.Serve(cmd.Context())
}
