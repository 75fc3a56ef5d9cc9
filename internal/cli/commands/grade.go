package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/leapgrade/internal/grader"
	"github.com/leapstack-labs/leapgrade/internal/render"
)

// SubmissionFile is the YAML form of a submission.
type SubmissionFile struct {
	Key           string `yaml:"key"`
	StudentQuery  string `yaml:"student_response"`
	GraderPayload any    `yaml:"grader_payload"`
}

// GradeOptions holds options for the grade command.
type GradeOptions struct {
	File   string
	Format string
}

// NewGradeCommand creates the grade command.
func NewGradeCommand() *cobra.Command {
	opts := &GradeOptions{}

	cmd := &cobra.Command{
		Use:   "grade",
		Short: "Run a full grading pass against the target database",
		Long: `Grade a submission the way the server does: sanitize and run the student
query, run the answer, score the results and build the feedback message.

The submission file is YAML:

  key: hw1-q3-alice
  student_response: SELECT playerID, HR FROM Batting WHERE yearID = 2010
  grader_payload:
    answer: SELECT playerID, HR FROM Batting WHERE yearID = 2010 ORDER BY HR DESC
    row_limit: 5

Leaving out the answer runs the query as a sandbox submission.`,
		Example: `  leapgrade grade -f submission.yaml
  leapgrade grade -f submission.yaml --format html > feedback.html
  leapgrade grade -f - --format json < submission.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGrade(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Submission file, - for stdin (required)")
	cmd.Flags().StringVar(&opts.Format, "format", "text", "Output format: text, json, html")
	_ = cmd.MarkFlagRequired("file")

	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json", "html"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runGrade(cmd *cobra.Command, opts *GradeOptions) error {
	switch opts.Format {
	case "text", "json", "html":
	default:
		return fmt.Errorf("unknown format %q (want text, json or html)", opts.Format)
	}

	cmdCtx := NewCommandContext(cmd)

	sub, err := readSubmission(cmd, opts.File)
	if err != nil {
		return err
	}

	g, err := cmdCtx.NewGrader()
	if err != nil {
		return err
	}

	resp, err := g.Evaluate(cmd.Context(), sub)
	if err != nil {
		return fmt.Errorf("grading failed: %w", err)
	}

	out := cmd.OutOrStdout()
	switch opts.Format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	case "html":
		_, err := fmt.Fprintln(out, resp.Message)
		return err
	}

	limit := cmdCtx.Cfg.RowLimit
	if payload, err := g.ParsePayload(sub.Payload); err == nil {
		limit = payload.RowLimit
	}
	printResponse(out, cmdCtx.Styles, resp, limit)
	return nil
}

func readSubmission(cmd *cobra.Command, path string) (grader.Submission, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path) //nolint:gosec // path supplied by the user
	}
	if err != nil {
		return grader.Submission{}, fmt.Errorf("failed to read submission: %w", err)
	}

	var sf SubmissionFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return grader.Submission{}, fmt.Errorf("failed to parse submission: %w", err)
	}
	return grader.Submission{
		Key:          sf.Key,
		StudentQuery: sf.StudentQuery,
		Payload:      sf.GraderPayload,
	}, nil
}

func printResponse(w io.Writer, styles *Styles, resp *grader.Response, limit int) {
	if resp.Student == nil {
		// Rejected, or one of the queries failed to run.
		_, _ = fmt.Fprintln(w, styles.Error.Render("NOT GRADED"), styles.Muted.Render(resp.ID))
		_, _ = fmt.Fprintln(w, resp.Message)
		return
	}

	printVerdict(w, styles, resp.Correct, resp.Bucket, resp.Score, resp.Hints)

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, styles.Title.Render("Your results:"))
	render.TextTable(w, resp.Student, limit)

	if resp.Expected != nil && !resp.Correct {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, styles.Title.Render("Expected results:"))
		render.TextTable(w, resp.Expected, limit)
	}
}
