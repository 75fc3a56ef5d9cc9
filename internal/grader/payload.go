package grader

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cast"

	"github.com/leapstack-labs/leapgrade/pkg/rubric"
)

// DefaultFilename names uploaded result files.
const DefaultFilename = "results.csv"

// DefaultRowLimit is the number of rows displayed per result table.
const DefaultRowLimit = 10

// Submission is one student answer awaiting a grade.
type Submission struct {
	// Key identifies the submission. It names the upload folder and
	// defaults to the generated pass ID.
	Key string `json:"key" yaml:"key"`

	StudentQuery string `json:"student_response" yaml:"student_response"`

	// Payload is the problem's grader payload: database, answer,
	// row_limit, filename, upload_results and scale. It may also arrive as
	// a JSON-encoded string.
	Payload any `json:"grader_payload" yaml:"grader_payload"`
}

// Payload is a grader payload merged over the grader defaults.
type Payload struct {
	Database      string
	Answer        string
	RowLimit      int // < 1 means no limit
	Filename      string
	UploadResults bool
	Scale         rubric.Scale
}

// ParsePayload merges raw over the grader defaults. Keys that are absent
// keep their defaults; row_limit values that are not numeric or are below
// one disable the display limit.
func (g *Grader) ParsePayload(raw any) (Payload, error) {
	p := Payload{
		Database:      g.cfg.Target.Database,
		RowLimit:      g.cfg.RowLimit,
		Filename:      DefaultFilename,
		UploadResults: g.cfg.UploadResults,
	}

	fields, err := payloadMap(raw)
	if err != nil {
		return p, err
	}

	if v, ok := fields["database"]; ok && v != nil {
		p.Database = cast.ToString(v)
	}
	if v, ok := fields["answer"]; ok && v != nil {
		p.Answer = cast.ToString(v)
	}
	if v, ok := fields["row_limit"]; ok {
		p.RowLimit = sanitizeRowLimit(v)
	}
	if v, ok := fields["filename"]; ok && v != nil {
		if name := cast.ToString(v); name != "" {
			p.Filename = name
		}
	}
	if v, ok := fields["upload_results"]; ok && v != nil {
		upload, err := cast.ToBoolE(v)
		if err != nil {
			return p, fmt.Errorf("invalid upload_results value %v: %w", v, err)
		}
		p.UploadResults = upload
	}

	scale, ok := fields["scale"]
	if !ok || scale == nil {
		scale = g.cfg.Scale
	}
	p.Scale = rubric.ResolveScale(scale)

	return p, nil
}

func payloadMap(raw any) (map[string]any, error) {
	switch v := raw.(type) {
	case nil:
		return map[string]any{}, nil
	case string:
		if v == "" {
			return map[string]any{}, nil
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(v), &m); err != nil {
			return nil, fmt.Errorf("invalid grader payload: %w", err)
		}
		return m, nil
	default:
		m, err := cast.ToStringMapE(v)
		if err != nil {
			return nil, fmt.Errorf("invalid grader payload: %w", err)
		}
		return m, nil
	}
}

func sanitizeRowLimit(v any) int {
	limit, err := cast.ToIntE(v)
	if err != nil || limit < 1 {
		return 0
	}
	return limit
}
