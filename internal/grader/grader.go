// Package grader runs a complete grading pass: it sanitizes and executes
// the student and reference queries, scores the results, uploads a copy of
// the student's rows and renders the message returned to the student.
package grader

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/leapstack-labs/leapgrade/internal/render"
	"github.com/leapstack-labs/leapgrade/internal/upload"
	"github.com/leapstack-labs/leapgrade/pkg/adapter"
	"github.com/leapstack-labs/leapgrade/pkg/filter"
	"github.com/leapstack-labs/leapgrade/pkg/result"
	"github.com/leapstack-labs/leapgrade/pkg/rubric"
)

// Defaults for Config fields left at zero.
const (
	DefaultSelectLimit    = 10000
	NoSelectLimit         = -1
	DefaultMaxQueryLength = 10000
	DefaultQueryTimeout   = 10 * time.Second
)

// OpenFunc connects an adapter for cfg.
type OpenFunc func(ctx context.Context, cfg adapter.Config, logger *slog.Logger) (adapter.Adapter, error)

// Config configures a Grader.
type Config struct {
	// Target is the database submissions run against. A payload's
	// database replaces Target.Database.
	Target adapter.Config

	// SelectLimit caps LIMIT clauses and the rows read per query. Zero
	// uses DefaultSelectLimit; a negative value disables the cap.
	SelectLimit int

	// MaxQueryLength is the longest submission, in characters, that is
	// executed.
	MaxQueryLength int

	// RowLimit is the default number of rows displayed per table.
	RowLimit int

	QueryTimeout time.Duration

	// UploadResults is the default for the payload's upload_results.
	UploadResults bool

	Blacklist []string
	Keywords  []string
	Tolerance float64

	// Scale is the default scale for payloads that carry none.
	Scale map[string]any

	Uploader upload.Uploader
	Open     OpenFunc
	Logger   *slog.Logger
}

// Grader grades submissions. It is safe for concurrent use; each pass
// opens its own database connection.
type Grader struct {
	cfg      Config
	filter   *filter.Filter
	scorer   *rubric.Scorer
	uploader upload.Uploader
	open     OpenFunc
	logger   *slog.Logger
}

// Response is the outcome of a grading pass.
type Response struct {
	ID      string        `json:"id"`
	Correct bool          `json:"correct"`
	Score   float64       `json:"score"`
	Bucket  rubric.Bucket `json:"bucket,omitempty"`
	Hints   []string      `json:"hints,omitempty"`
	Message string        `json:"msg"`

	// Student and Expected are the executed results, kept for callers that
	// render them themselves.
	Student  *result.ResultSet `json:"-"`
	Expected *result.ResultSet `json:"-"`
}

// New creates a Grader, applying defaults to unset fields.
func New(cfg Config) *Grader {
	if cfg.SelectLimit == 0 {
		cfg.SelectLimit = DefaultSelectLimit
	}
	if cfg.MaxQueryLength <= 0 {
		cfg.MaxQueryLength = DefaultMaxQueryLength
	}
	if cfg.QueryTimeout == 0 {
		cfg.QueryTimeout = DefaultQueryTimeout
	}
	if cfg.Blacklist == nil {
		cfg.Blacklist = filter.DefaultBlacklist()
	}
	if cfg.Open == nil {
		cfg.Open = adapter.Open
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Grader{
		cfg: cfg,
		filter: filter.New(filter.Options{
			Ceiling:   cfg.SelectLimit,
			Blacklist: cfg.Blacklist,
			Dialect:   cfg.Target.Type,
			Logger:    logger,
		}),
		scorer: rubric.NewScorer(rubric.Options{
			Keywords:  cfg.Keywords,
			Tolerance: cfg.Tolerance,
			Logger:    logger,
		}),
		uploader: cfg.Uploader,
		open:     cfg.Open,
		logger:   logger,
	}
}

// Evaluate grades sub. Problems with the submission itself, including SQL
// errors in either query, are reported through the Response; an error is
// returned only when the payload is malformed or the database cannot be
// reached.
func (g *Grader) Evaluate(ctx context.Context, sub Submission) (*Response, error) {
	resp := &Response{ID: uuid.NewString()}
	key := sub.Key
	if key == "" {
		key = resp.ID
	}
	logger := g.logger.With(slog.String("id", resp.ID), slog.String("key", key))

	if n := utf8.RuneCountInString(sub.StudentQuery); n > g.cfg.MaxQueryLength {
		logger.Warn("query exceeds maximum length", slog.Int("length", n), slog.Int("max", g.cfg.MaxQueryLength))
		resp.Message = render.QueryTooLong(g.cfg.MaxQueryLength)
		return resp, nil
	}

	payload, err := g.ParsePayload(sub.Payload)
	if err != nil {
		return nil, err
	}

	target := g.cfg.Target
	target.Database = payload.Database
	if g.cfg.SelectLimit > 0 {
		target.MaxRows = g.cfg.SelectLimit
	}
	adp, err := g.open(ctx, target, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open grading database: %w", err)
	}
	defer func() { _ = adp.Close() }()

	studentSQL, student, studentWarnings, err := g.run(ctx, adp, RoleStudent, sub.StudentQuery)
	if err != nil {
		var qerr *QueryError
		if !errors.As(err, &qerr) {
			return nil, err
		}
		logger.Info("student query failed", slog.Any("error", err))
		resp.Message = render.StudentQueryError(qerr.Cause.Error(), qerr.Timeout)
		return resp, nil
	}

	var (
		expected       *result.ResultSet
		graderWarnings []string
		scored         rubric.ScoreResult
	)
	if strings.TrimSpace(payload.Answer) != "" {
		var graderSQL string
		graderSQL, expected, graderWarnings, err = g.run(ctx, adp, RoleGrader, payload.Answer)
		if err != nil {
			var qerr *QueryError
			if !errors.As(err, &qerr) {
				return nil, err
			}
			logger.Error("grader query failed", slog.Any("error", err))
			resp.Message = render.GraderQueryError(qerr.Cause.Error(), qerr.Timeout)
			return resp, nil
		}
		scored = g.scorer.Score(studentSQL, student, graderSQL, expected, payload.Scale)
	} else {
		// Sandbox queries have nothing to compare against.
		scored = rubric.ScoreResult{
			Score:   payload.Scale.For(rubric.Perfect),
			Correct: true,
			Bucket:  rubric.Perfect,
		}
	}

	resp.Correct = scored.Correct
	resp.Score = scored.Score
	resp.Bucket = scored.Bucket
	resp.Hints = scored.Hints
	resp.Student = student
	resp.Expected = expected

	var link template.HTML
	if payload.UploadResults && g.uploader != nil && student.RowCount() > 0 {
		link = g.upload(ctx, logger, student, upload.ObjectKey(key, payload.Filename, resp.Correct))
	}

	resp.Message = render.Message(render.Page{
		Correct:          resp.Correct,
		Student:          student,
		StudentWarnings:  studentWarnings,
		Expected:         expected,
		ExpectedWarnings: graderWarnings,
		Hints:            resp.Hints,
		RowLimit:         payload.RowLimit,
		DownloadLink:     link,
	})

	logger.Info("graded submission",
		slog.Bool("correct", resp.Correct),
		slog.Float64("score", resp.Score),
		slog.String("bucket", string(resp.Bucket)),
		slog.Int("rows", student.RowCount()))

	return resp, nil
}

// run sanitizes and executes query, returning the SQL that ran, its rows
// and any warnings for the reader.
func (g *Grader) run(ctx context.Context, adp adapter.Adapter, role Role, query string) (string, *result.ResultSet, []string, error) {
	sanitized := g.filter.ForDialect(adp.DialectName()).Sanitize(query)

	qctx := ctx
	if g.cfg.QueryTimeout > 0 {
		var cancel context.CancelFunc
		qctx, cancel = context.WithTimeout(ctx, g.cfg.QueryTimeout)
		defer cancel()
	}

	start := time.Now()
	rs, err := adp.Query(qctx, sanitized.SQL)
	if err != nil {
		// The caller going away is not the query's fault.
		if ctx.Err() != nil {
			return "", nil, nil, ctx.Err()
		}
		return "", nil, nil, &QueryError{
			Role:    role,
			Query:   sanitized.SQL,
			Cause:   err,
			Timeout: errors.Is(qctx.Err(), context.DeadlineExceeded),
		}
	}

	g.logger.Debug("executed query",
		slog.String("role", string(role)),
		slog.Int("rows", rs.RowCount()),
		slog.Duration("elapsed", time.Since(start)))

	warnings := sanitized.Warnings
	if g.cfg.SelectLimit > 0 && rs.RowCount() == g.cfg.SelectLimit {
		warnings = append(warnings, truncationWarning(g.cfg.SelectLimit))
	}
	return sanitized.SQL, rs, warnings, nil
}

func truncationWarning(limit int) string {
	return fmt.Sprintf("The result set below is incomplete. Your query was modified to LIMIT results to %d rows. "+
		"Consider adding a WHERE or LIMIT clause to narrow down results, and check any JOIN statements "+
		"to make sure you're joining ON the appropriate columns.", limit)
}

func (g *Grader) upload(ctx context.Context, logger *slog.Logger, rs *result.ResultSet, key string) template.HTML {
	contents, err := render.CSV(rs)
	if err != nil {
		logger.Error("failed to encode results", slog.Any("error", err))
		return render.UploadFailed
	}
	url, err := g.uploader.Upload(ctx, key, contents)
	if err != nil {
		logger.Error("failed to upload results", slog.String("object", key), slog.Any("error", err))
		return render.UploadFailed
	}
	return render.DownloadLink(url, "")
}

// Status reports whether the default database can be reached.
func (g *Grader) Status(ctx context.Context) error {
	adp, err := g.open(ctx, g.cfg.Target, g.logger)
	if err != nil {
		return err
	}
	defer func() { _ = adp.Close() }()
	return adp.Ping(ctx)
}
