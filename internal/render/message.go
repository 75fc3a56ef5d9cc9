package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/leapstack-labs/leapgrade/pkg/result"
)

// FailureHints is appended to messages for queries that ran out of time.
const FailureHints template.HTML = `
<p>It's possible that the query you submitted is returning too large of a result set.</p>
<ul>
<li>Consider adding WHERE clauses to narrow down the result set</li>
<li>Check your JOIN statements and make sure you're joining ON an appropriate column</li>
<li>Prefix your query with EXPLAIN to check for possible inefficiencies</li>
</ul>
`

// UploadFailed replaces the download link when the results upload fails.
const UploadFailed template.HTML = `
<small style="color:#b40">Unable to upload results. Please try again later.</small>
`

const templates = `
{{define "warning"}}
<div style="margin-bottom: 15px; padding: 15px 10px 0 10px; border: 1px solid #b40; border-radius: 3px; background-color: #ffd0ca;">
{{.}}
</div>
{{end}}

{{define "notice"}}<strong>Warning</strong>{{range .}}<p>{{.}}</p>{{end}}{{end}}

{{define "too_long"}}<p>The SQL grader cannot process queries with over {{.}} characters. Please revise your submission and try again.</p>{{end}}

{{define "query_error"}}
<div class="error">
    <h4 style="color:#b40">Could not execute {{.Subject}}:</h4>
    <pre><code>{{.Error}}</code></pre>{{if .Staff}}
    <p>Please report this issue to the course staff.</p>{{end}}{{.Extra}}
</div>
{{end}}

{{define "download"}}
<a href="{{.URL}}">{{.Message}}</a>
{{end}}

{{define "hints"}}<strong>Hints</strong><ul>{{range .}}<li>{{.}}</li>{{end}}</ul>{{end}}

{{define "correct"}}
<div class="correct">{{.Notices}}
    <small style="float:right">{{.DownloadLink}}</small>
    <h3>Query Results</h3>
    {{.StudentResults}}
</div>
{{end}}

{{define "incorrect"}}
<div class="error">{{.Notices}}
    <div style="float:left;width:48%;">
        <small style="float:right">{{.DownloadLink}}</small>
        <h3>Your Results</h3>
        {{.StudentResults}}
    </div>
    <div style="float:right; width:48%">
        <h3>Expected Results</h3>
        {{.ExpectedResults}}
    </div>
    <div style="clear:both">{{.Hints}}</div>
</div>
{{end}}
`

var tmpl = template.Must(template.New("render").Parse(templates))

func execute(name string, data any) template.HTML {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		// Templates are fixed and data is plain values.
		panic(fmt.Sprintf("render: template %s: %v", name, err))
	}
	return template.HTML(buf.String()) //nolint:gosec // produced by html/template
}

// Page holds everything shown after a query has been graded.
type Page struct {
	Correct bool

	Student         *result.ResultSet
	StudentWarnings []string

	// Expected is nil for sandbox submissions.
	Expected         *result.ResultSet
	ExpectedWarnings []string

	Hints []string

	// RowLimit caps the rows displayed per table; < 1 shows all.
	RowLimit int

	DownloadLink template.HTML
}

// Message renders the graded page. The expected results and hints are
// shown only for incorrect answers that have an expected result.
func Message(p Page) string {
	notices := Notice(p.StudentWarnings) + Notice(p.ExpectedWarnings)

	data := struct {
		Notices         template.HTML
		DownloadLink    template.HTML
		StudentResults  template.HTML
		ExpectedResults template.HTML
		Hints           template.HTML
	}{
		Notices:        notices,
		DownloadLink:   p.DownloadLink,
		StudentResults: HTMLTable(p.Student, p.RowLimit),
	}

	if p.Expected == nil || p.Correct {
		return string(execute("correct", data))
	}

	data.ExpectedResults = HTMLTable(p.Expected, p.RowLimit)
	data.Hints = HintList(p.Hints)
	return string(execute("incorrect", data))
}

// Notice renders warnings inside a warning box. No warnings render nothing.
func Notice(warnings []string) template.HTML {
	if len(warnings) == 0 {
		return ""
	}
	return Warning(execute("notice", warnings))
}

// Warning wraps msg in the warning box.
func Warning(msg template.HTML) template.HTML {
	return execute("warning", msg)
}

// HintList renders hints as a bulleted list. No hints render nothing.
func HintList(hints []string) template.HTML {
	if len(hints) == 0 {
		return ""
	}
	return execute("hints", hints)
}

// QueryTooLong is the message for submissions longer than maxLength.
func QueryTooLong(maxLength int) string {
	return string(Warning(execute("too_long", maxLength)))
}

// StudentQueryError is the message for a submission the database rejected.
// timedOut appends FailureHints.
func StudentQueryError(errText string, timedOut bool) string {
	data := queryError{Subject: "query", Error: errText}
	if timedOut {
		data.Extra = FailureHints
	}
	return string(execute("query_error", data))
}

// GraderQueryError is the message for a reference answer that failed to run.
func GraderQueryError(errText string, timedOut bool) string {
	data := queryError{Subject: "grader query", Error: errText, Staff: true}
	if timedOut {
		data.Extra = FailureHints
	}
	return string(execute("query_error", data))
}

type queryError struct {
	Subject string
	Error   string
	Staff   bool
	Extra   template.HTML
}

// DownloadLink renders a link to uploaded results.
func DownloadLink(url, message string) template.HTML {
	if message == "" {
		message = "Download full results"
	}
	return execute("download", struct {
		URL     template.URL
		Message string
	}{
		URL:     template.URL(url), //nolint:gosec // issued by the uploader
		Message: message,
	})
}
