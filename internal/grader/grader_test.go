package grader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapgrade/internal/testutil"
	"github.com/leapstack-labs/leapgrade/pkg/adapter"
	_ "github.com/leapstack-labs/leapgrade/pkg/adapters/sqlite"
	"github.com/leapstack-labs/leapgrade/pkg/rubric"
)

const answer2010 = "SELECT playerID, HR FROM Batting WHERE yearID = 2010 ORDER BY HR DESC"

type uploaded struct {
	key      string
	contents string
}

type fakeUploader struct {
	uploads []uploaded
	err     error
}

func (f *fakeUploader) Upload(_ context.Context, key string, contents []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.uploads = append(f.uploads, uploaded{key: key, contents: string(contents)})
	return "https://files.example.com/" + key, nil
}

func newLahmanGrader(t *testing.T, mutate func(cfg *Config)) (*Grader, *fakeUploader) {
	t.Helper()
	uploader := &fakeUploader{}
	cfg := Config{
		Target:        adapter.Config{Type: "sqlite", Database: testutil.NewLahmanDB(t)},
		RowLimit:      DefaultRowLimit,
		UploadResults: true,
		Uploader:      uploader,
		Logger:        testutil.NewTestLogger(t),
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return New(cfg), uploader
}

func TestEvaluate_Correct(t *testing.T) {
	g, uploader := newLahmanGrader(t, nil)

	resp, err := g.Evaluate(context.Background(), Submission{
		Key:          "k1",
		StudentQuery: answer2010,
		Payload:      map[string]any{"answer": answer2010},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.ID)
	assert.True(t, resp.Correct)
	assert.InDelta(t, 1.0, resp.Score, 1e-9)
	assert.Equal(t, rubric.Perfect, resp.Bucket)
	assert.Empty(t, resp.Hints)
	assert.Contains(t, resp.Message, "<h3>Query Results</h3>")
	assert.NotContains(t, resp.Message, "Showing", "every row fits under the row limit")
	assert.Contains(t, resp.Message, `href="https://files.example.com/k1/results.csv"`)
	assert.NotContains(t, resp.Message, "Expected Results")

	require.Len(t, uploader.uploads, 1)
	assert.Equal(t, "k1/results.csv", uploader.uploads[0].key)
	assert.Contains(t, uploader.uploads[0].contents, "playerID,HR\nbautijo02,54\n")
}

func TestEvaluate_Incorrect(t *testing.T) {
	g, uploader := newLahmanGrader(t, nil)

	resp, err := g.Evaluate(context.Background(), Submission{
		Key:          "k2",
		StudentQuery: "SELECT playerID, HR FROM Batting ORDER BY HR DESC",
		Payload:      map[string]any{"answer": answer2010, "row_limit": 2},
	})
	require.NoError(t, err)

	assert.False(t, resp.Correct)
	assert.Less(t, resp.Score, 1.0)
	assert.NotEqual(t, rubric.Perfect, resp.Bucket)
	assert.Contains(t, resp.Hints, rubric.HintTooManyRows)
	assert.Contains(t, resp.Hints, rubric.MissingKeywordsHint([]string{"WHERE"}))

	assert.Contains(t, resp.Message, "<h3>Your Results</h3>")
	assert.Contains(t, resp.Message, "<h3>Expected Results</h3>")
	assert.Contains(t, resp.Message, "Showing 2 of 6 rows.")
	assert.Contains(t, resp.Message, "Showing 2 of 4 rows.")
	assert.Contains(t, resp.Message, "<li>Too many rows.</li>")

	require.Len(t, uploader.uploads, 1)
	assert.Equal(t, "k2/incorrect-results.csv", uploader.uploads[0].key)
}

func TestEvaluate_Sandbox(t *testing.T) {
	g, _ := newLahmanGrader(t, nil)

	resp, err := g.Evaluate(context.Background(), Submission{
		StudentQuery: "SELECT teamID FROM Batting WHERE yearID = 2009",
		Payload:      `{"scale": {"perfect": 0.9}}`,
	})
	require.NoError(t, err)

	assert.True(t, resp.Correct)
	assert.InDelta(t, 0.9, resp.Score, 1e-9)
	assert.Equal(t, rubric.Perfect, resp.Bucket)
	assert.Contains(t, resp.Message, "<h3>Query Results</h3>")
	assert.Contains(t, resp.Message, "MIL")
}

func TestEvaluate_KeyDefaultsToID(t *testing.T) {
	g, uploader := newLahmanGrader(t, nil)

	resp, err := g.Evaluate(context.Background(), Submission{StudentQuery: "SELECT 1 AS one"})
	require.NoError(t, err)
	require.Len(t, uploader.uploads, 1)
	assert.Equal(t, resp.ID+"/results.csv", uploader.uploads[0].key)
}

func TestEvaluate_UploadDisabled(t *testing.T) {
	g, uploader := newLahmanGrader(t, nil)

	resp, err := g.Evaluate(context.Background(), Submission{
		StudentQuery: "SELECT 1 AS one",
		Payload:      map[string]any{"upload_results": "false"},
	})
	require.NoError(t, err)
	assert.True(t, resp.Correct)
	assert.Empty(t, uploader.uploads)
	assert.NotContains(t, resp.Message, "href=")
}

func TestEvaluate_NoRowsNoUpload(t *testing.T) {
	g, uploader := newLahmanGrader(t, nil)

	resp, err := g.Evaluate(context.Background(), Submission{
		StudentQuery: "SELECT * FROM Batting WHERE yearID = 1850",
	})
	require.NoError(t, err)
	assert.Empty(t, uploader.uploads)
	assert.Contains(t, resp.Message, "No rows found.")
}

func TestEvaluate_UploadFailure(t *testing.T) {
	g, uploader := newLahmanGrader(t, nil)
	uploader.err = errors.New("bucket unavailable")

	resp, err := g.Evaluate(context.Background(), Submission{StudentQuery: "SELECT 1 AS one"})
	require.NoError(t, err)
	assert.True(t, resp.Correct)
	assert.Contains(t, resp.Message, "Unable to upload results. Please try again later.")
}

func TestEvaluate_QueryTooLong(t *testing.T) {
	opened := false
	g, _ := newLahmanGrader(t, func(cfg *Config) {
		cfg.MaxQueryLength = 20
		cfg.Open = func(context.Context, adapter.Config, *slog.Logger) (adapter.Adapter, error) {
			opened = true
			return nil, errors.New("unexpected open")
		}
	})

	resp, err := g.Evaluate(context.Background(), Submission{
		StudentQuery: "SELECT playerID FROM Batting WHERE HR > 40",
		Payload:      map[string]any{"answer": answer2010},
	})
	require.NoError(t, err)
	assert.False(t, opened)
	assert.False(t, resp.Correct)
	assert.Zero(t, resp.Score)
	assert.Contains(t, resp.Message, "cannot process queries with over 20 characters")
}

func TestEvaluate_StudentQueryError(t *testing.T) {
	g, uploader := newLahmanGrader(t, nil)

	resp, err := g.Evaluate(context.Background(), Submission{
		StudentQuery: "SELECT * FROM Batters",
		Payload:      map[string]any{"answer": answer2010},
	})
	require.NoError(t, err)
	assert.False(t, resp.Correct)
	assert.Zero(t, resp.Score)
	assert.Contains(t, resp.Message, "Could not execute query:")
	assert.Contains(t, resp.Message, "Batters")
	assert.NotContains(t, resp.Message, "EXPLAIN")
	assert.Empty(t, uploader.uploads)
}

func TestEvaluate_GraderQueryError(t *testing.T) {
	g, _ := newLahmanGrader(t, nil)

	resp, err := g.Evaluate(context.Background(), Submission{
		StudentQuery: answer2010,
		Payload:      map[string]any{"answer": "SELECT nope FROM Batting"},
	})
	require.NoError(t, err)
	assert.False(t, resp.Correct)
	assert.Contains(t, resp.Message, "Could not execute grader query:")
	assert.Contains(t, resp.Message, "Please report this issue to the course staff.")
}

func TestEvaluate_Truncation(t *testing.T) {
	g, _ := newLahmanGrader(t, func(cfg *Config) {
		cfg.SelectLimit = 4
	})

	resp, err := g.Evaluate(context.Background(), Submission{
		StudentQuery: "SELECT playerID FROM Batting LIMIT 100",
	})
	require.NoError(t, err)
	assert.Contains(t, resp.Message, "LIMIT 100 exceeds the maximum of 4 and was lowered.")
	assert.Contains(t, resp.Message, "The result set below is incomplete. Your query was modified to LIMIT results to 4 rows.")
}

func TestEvaluate_TruncationBelowLimit(t *testing.T) {
	g, _ := newLahmanGrader(t, func(cfg *Config) {
		cfg.SelectLimit = 7
	})

	resp, err := g.Evaluate(context.Background(), Submission{StudentQuery: "SELECT playerID FROM Batting"})
	require.NoError(t, err)
	assert.NotContains(t, resp.Message, "incomplete")
}

// counter yields the integers 1..n, one per row.
func counter(n int) string {
	return fmt.Sprintf("WITH RECURSIVE n(x) AS (SELECT 1 UNION ALL SELECT x + 1 FROM n WHERE x < %d) ", n)
}

func TestEvaluate_FiltersWithTargetDialect(t *testing.T) {
	g, _ := newLahmanGrader(t, func(cfg *Config) {
		cfg.SelectLimit = 10
	})

	// SQLite reads '\' as a complete string, so the LIMIT is code.
	resp, err := g.Evaluate(context.Background(), Submission{
		StudentQuery: counter(100) + `SELECT x, '\' AS b FROM n LIMIT 50 -- '`,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Student)
	assert.Equal(t, 10, resp.Student.RowCount())
	assert.Contains(t, resp.Message, "LIMIT 50 exceeds the maximum of 10 and was lowered.")
}

func TestEvaluate_SelectLimitDisabled(t *testing.T) {
	g, _ := newLahmanGrader(t, func(cfg *Config) {
		cfg.SelectLimit = NoSelectLimit
		cfg.UploadResults = false
	})

	resp, err := g.Evaluate(context.Background(), Submission{
		StudentQuery: counter(DefaultSelectLimit+50) + "SELECT x FROM n LIMIT 10050",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Student)
	assert.Equal(t, DefaultSelectLimit+50, resp.Student.RowCount())
	assert.NotContains(t, resp.Message, "exceeds the maximum")
	assert.NotContains(t, resp.Message, "incomplete")
}

func TestEvaluate_OpenError(t *testing.T) {
	g, _ := newLahmanGrader(t, func(cfg *Config) {
		cfg.Target.Type = "oracle"
	})

	_, err := g.Evaluate(context.Background(), Submission{StudentQuery: "SELECT 1"})
	require.Error(t, err)
	var unknown *adapter.UnknownAdapterError
	assert.ErrorAs(t, err, &unknown)
}

func TestEvaluate_BadPayload(t *testing.T) {
	g, _ := newLahmanGrader(t, nil)

	_, err := g.Evaluate(context.Background(), Submission{StudentQuery: "SELECT 1", Payload: "{not json"})
	require.Error(t, err)
}

// mockAdapter runs queries against a sqlmock connection.
type mockAdapter struct {
	adapter.BaseSQLAdapter
}

func (m *mockAdapter) Connect(context.Context, adapter.Config) error {
	return nil
}

func (m *mockAdapter) DialectName() string {
	return "mock"
}

func newMockGrader(t *testing.T, cfg Config) (*Grader, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg.Logger = testutil.NewTestLogger(t)
	cfg.Open = func(_ context.Context, target adapter.Config, logger *slog.Logger) (adapter.Adapter, error) {
		return &mockAdapter{BaseSQLAdapter: adapter.BaseSQLAdapter{DB: db, Cfg: target, Logger: logger}}, nil
	}
	return New(cfg), mock
}

func TestEvaluate_StudentFailureSkipsAnswer(t *testing.T) {
	g, mock := newMockGrader(t, Config{})

	mock.ExpectQuery("SELECT broken").WillReturnError(errors.New("syntax error"))
	mock.ExpectClose()

	resp, err := g.Evaluate(context.Background(), Submission{
		StudentQuery: "SELECT broken",
		Payload:      map[string]any{"answer": "SELECT 1"},
	})
	require.NoError(t, err)
	assert.Contains(t, resp.Message, "syntax error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluate_SanitizedQueriesRun(t *testing.T) {
	g, mock := newMockGrader(t, Config{SelectLimit: 50})

	mock.ExpectQuery("SELECT a FROM t LIMIT 50").
		WillReturnRows(sqlmock.NewRows([]string{"a"}).AddRow(1))
	mock.ExpectQuery("SELECT a FROM t  LIMIT 1").
		WillReturnRows(sqlmock.NewRows([]string{"a"}).AddRow(1))
	mock.ExpectClose()

	resp, err := g.Evaluate(context.Background(), Submission{
		StudentQuery: "SELECT a FROM t LIMIT 500",
		Payload:      map[string]any{"answer": "SELECT a FROM t SLEEP LIMIT 1"},
	})
	require.NoError(t, err)
	assert.True(t, resp.Correct)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluate_Timeout(t *testing.T) {
	g, mock := newMockGrader(t, Config{QueryTimeout: 20 * time.Millisecond})

	mock.ExpectQuery("SELECT * FROM huge").
		WillDelayFor(time.Second).
		WillReturnRows(sqlmock.NewRows([]string{"a"}))
	mock.ExpectClose()

	resp, err := g.Evaluate(context.Background(), Submission{StudentQuery: "SELECT * FROM huge"})
	require.NoError(t, err)
	assert.False(t, resp.Correct)
	assert.Contains(t, resp.Message, "Could not execute query:")
	assert.Contains(t, resp.Message, "Prefix your query with EXPLAIN")
}

func TestEvaluate_CallerCanceled(t *testing.T) {
	g, mock := newMockGrader(t, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	mock.ExpectQuery("SELECT 1").WillDelayFor(time.Second).WillReturnRows(sqlmock.NewRows([]string{"a"}))
	mock.ExpectClose()

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := g.Evaluate(ctx, Submission{StudentQuery: "SELECT 1"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStatus(t *testing.T) {
	g, _ := newLahmanGrader(t, nil)
	assert.NoError(t, g.Status(context.Background()))

	g, _ = newLahmanGrader(t, func(cfg *Config) { cfg.Target.Type = "nope" })
	assert.Error(t, g.Status(context.Background()))
}

func TestQueryError(t *testing.T) {
	cause := errors.New("no such table")
	err := &QueryError{Role: RoleStudent, Query: "SELECT", Cause: cause}
	assert.Equal(t, "student query failed: no such table", err.Error())
	assert.ErrorIs(t, err, cause)

	err.Timeout = true
	assert.Equal(t, "student query timed out: no such table", err.Error())
}
