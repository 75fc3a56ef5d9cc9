// Package rubric scores a student query result against a reference result.
//
// Scoring runs a fixed battery of checks (row contents, row counts, column
// names, column counts, keywords), maps their outcomes through an ordered
// decision table to a bucket, and looks the bucket up in a Scale. Hints are
// derived from the same outcomes, independently of the bucket.
package rubric

import (
	"log/slog"

	"github.com/leapstack-labs/leapgrade/pkg/result"
)

// DefaultTolerance is the relative difference within which row and column
// counts are considered close.
const DefaultTolerance = 0.5

// DefaultKeywords returns the SQL keywords compared between queries.
func DefaultKeywords() []string {
	return []string{"SELECT", "WHERE", "JOIN", "ORDER BY", "ASC", "DESC", "GROUP BY", "LIMIT"}
}

// Options configures a Scorer.
type Options struct {
	// Keywords compared between the student and grader queries. Nil uses
	// DefaultKeywords.
	Keywords []string

	// Tolerance for the count closeness checks. Zero or negative uses
	// DefaultTolerance.
	Tolerance float64

	Logger *slog.Logger
}

// ScoreResult is the outcome of scoring one submission.
type ScoreResult struct {
	Score           float64  `json:"score"`
	Correct         bool     `json:"correct"`
	Bucket          Bucket   `json:"bucket"`
	Hints           []string `json:"hints"`
	MissingKeywords []string `json:"missing_keywords,omitempty"`
	Outcomes        Outcomes `json:"outcomes"`
}

// Scorer applies the rubric. It is stateless and safe for concurrent use.
type Scorer struct {
	keywords  []string
	tolerance float64
	logger    *slog.Logger
}

// NewScorer creates a Scorer from opts.
func NewScorer(opts Options) *Scorer {
	s := &Scorer{
		keywords:  opts.Keywords,
		tolerance: opts.Tolerance,
		logger:    opts.Logger,
	}
	if s.keywords == nil {
		s.keywords = DefaultKeywords()
	}
	if s.tolerance <= 0 {
		s.tolerance = DefaultTolerance
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s
}

// Score compares the student query and result with the grader's. A nil
// scale uses DefaultScale. Correct is set when the score equals the scale's
// perfect value exactly.
func (s *Scorer) Score(studentQuery string, student *result.ResultSet, graderQuery string, grader *result.ResultSet, scale Scale) ScoreResult {
	if scale == nil {
		scale = DefaultScale()
	}

	c := newComparison(studentQuery, student, graderQuery, grader, s.keywords, s.tolerance)
	outcomes := c.evaluate()
	bucket := Decide(outcomes)
	score := scale.For(bucket)

	res := ScoreResult{
		Score:           score,
		Correct:         score == scale.For(Perfect),
		Bucket:          bucket,
		Hints:           c.hints(outcomes),
		MissingKeywords: c.missing,
		Outcomes:        outcomes,
	}

	s.logger.Debug("scored submission",
		slog.String("bucket", string(bucket)),
		slog.Float64("score", score),
		slog.Bool("correct", res.Correct),
		slog.Int("hints", len(res.Hints)))

	return res
}

// Score scores a submission with the default keywords and tolerance.
// scale may be any caller-supplied mapping; see ResolveScale.
func Score(studentQuery string, student *result.ResultSet, graderQuery string, grader *result.ResultSet, scale any) ScoreResult {
	return NewScorer(Options{}).Score(studentQuery, student, graderQuery, grader, ResolveScale(scale))
}
