package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/leapgrade/pkg/result"
	"github.com/leapstack-labs/leapgrade/pkg/rubric"
)

// ResultFile is a query together with the result it produced.
type ResultFile struct {
	Query   string   `yaml:"query"`
	Columns []string `yaml:"columns"`
	Rows    [][]any  `yaml:"rows"`
}

// ScoreOptions holds options for the score command.
type ScoreOptions struct {
	Student string
	Grader  string
	Scale   map[string]string
	JSON    bool
}

// NewScoreCommand creates the score command.
func NewScoreCommand() *cobra.Command {
	opts := &ScoreOptions{}

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a student result against the expected result",
		Long: `Compare two saved query results with the rubric, without touching a database.

Each file is YAML with the query text, its column names and its rows:

  query: SELECT playerID, HR FROM Batting WHERE yearID = 2010
  columns: [playerID, HR]
  rows:
    - [bautijo02, 54]
    - [pujolal01, 42]`,
		Example: `  leapgrade score --student student.yaml --grader answer.yaml
  leapgrade score --student student.yaml --grader answer.yaml --scale close=0.9,nicetry=0.5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScore(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Student, "student", "", "Student result file (required)")
	cmd.Flags().StringVar(&opts.Grader, "grader", "", "Expected result file (required)")
	cmd.Flags().StringToStringVar(&opts.Scale, "scale", nil, "Override bucket scores, e.g. close=0.9")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Print the result as JSON")
	_ = cmd.MarkFlagRequired("student")
	_ = cmd.MarkFlagRequired("grader")

	return cmd
}

func runScore(cmd *cobra.Command, opts *ScoreOptions) error {
	cmdCtx := NewCommandContext(cmd)

	student, err := readResultFile(opts.Student)
	if err != nil {
		return err
	}
	expected, err := readResultFile(opts.Grader)
	if err != nil {
		return err
	}

	scale := cmdCtx.Cfg.Scale
	if len(opts.Scale) > 0 {
		scale = make(map[string]any, len(cmdCtx.Cfg.Scale)+len(opts.Scale))
		for k, v := range cmdCtx.Cfg.Scale {
			scale[k] = v
		}
		for k, v := range opts.Scale {
			scale[k] = v
		}
	}

	res := cmdCtx.NewScorer().Score(
		student.Query, result.New(student.Columns, toRows(student.Rows)...),
		expected.Query, result.New(expected.Columns, toRows(expected.Rows)...),
		rubric.ResolveScale(scale),
	)

	if opts.JSON {
		if res.Hints == nil {
			res.Hints = []string{}
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	printVerdict(cmd.OutOrStdout(), cmdCtx.Styles, res.Correct, res.Bucket, res.Score, res.Hints)
	return nil
}

func readResultFile(path string) (*ResultFile, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path supplied by the user
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var rf ResultFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &rf, nil
}

func toRows(raw [][]any) []result.Row {
	rows := make([]result.Row, len(raw))
	for i, r := range raw {
		rows[i] = result.Row(r)
	}
	return rows
}

// printVerdict writes the bucket, score and hints of a scored submission.
func printVerdict(w io.Writer, styles *Styles, correct bool, bucket rubric.Bucket, score float64, hints []string) {
	verdict := styles.Error.Render("INCORRECT")
	if correct {
		verdict = styles.Success.Render("CORRECT")
	}
	_, _ = fmt.Fprintf(w, "%s  %s %s\n", verdict,
		styles.Bucket(bucket).Render(string(bucket)),
		styles.Muted.Render(fmt.Sprintf("(score %.2f)", score)))

	if len(hints) == 0 {
		return
	}
	_, _ = fmt.Fprintln(w, styles.Title.Render("Hints:"))
	for _, h := range hints {
		_, _ = fmt.Fprintf(w, "  - %s\n", h)
	}
}
