package rubric

// Bucket names an outcome tier of the rubric.
type Bucket string

// Rubric buckets, best first.
const (
	Perfect Bucket = "perfect"
	Close   Bucket = "close"
	NiceTry Bucket = "nicetry"
	Decent  Bucket = "decent"
	Fail    Bucket = "fail"
)

type rule struct {
	bucket Bucket
	when   func(o Outcomes) bool
}

// rubric is evaluated top to bottom; the first matching rule wins.
var rubric = []rule{
	{Perfect, func(o Outcomes) bool {
		return o[RowsMatch] && o[ColsMatch] && o[KeywordsMatch]
	}},
	// Columns out of order or misnamed, rows right.
	{Close, func(o Outcomes) bool {
		return o[RowsMatchUnsorted] && o[KeywordsMatch]
	}},
	// Right shape but wrong rows (bad WHERE), or too many / few rows (bad LIMIT).
	{NiceTry, func(o Outcomes) bool {
		shape := (o[ColsMatchUnsorted] && o[RowCountsClose]) ||
			(o[ColCountsMatch] && o[RowCountsMatch]) ||
			o[ColsMatch]
		return shape && o[KeywordsMatch]
	}},
	{Decent, func(o Outcomes) bool {
		return o[RowCountsClose] && o[ColCountsClose]
	}},
	{Fail, func(Outcomes) bool { return true }},
}

// Decide maps check outcomes to a bucket.
func Decide(o Outcomes) Bucket {
	for _, r := range rubric {
		if r.when(o) {
			return r.bucket
		}
	}
	return Fail
}
