// Package analysis computes subject-level statistics over derived grade tables.
package analysis

import (
	"math"
	"sort"

	"github.com/KaramelBytes/markboard-cli/internal/grades"
)

// BucketCount is the number of records in one Mark_Range bucket.
type BucketCount struct {
	Label string `json:"label" yaml:"label"`
	Count int    `json:"count" yaml:"count"`
}

// ResultCount is the number of records with one Result.
type ResultCount struct {
	Result grades.Result `json:"result" yaml:"result"`
	Count  int           `json:"count" yaml:"count"`
}

// GenderCount is the number of records with one Gender value.
type GenderCount struct {
	Gender grades.Gender `json:"gender" yaml:"gender"`
	Count  int           `json:"count" yaml:"count"`
}

// ResultGenders splits one Result by Gender.
type ResultGenders struct {
	Result  grades.Result `json:"result" yaml:"result"`
	Genders []GenderCount `json:"genders" yaml:"genders"`
}

// AggregateResult is the read-only snapshot of statistics for one subject.
type AggregateResult struct {
	Subject string `json:"subject" yaml:"subject"`
	// Placeholder marks the all-zero result shown before any selection.
	Placeholder bool    `json:"placeholder" yaml:"placeholder"`
	Total       int     `json:"total" yaml:"total"`
	Boys        int     `json:"boys" yaml:"boys"`
	Girls       int     `json:"girls" yaml:"girls"`
	BoysPct     float64 `json:"boys_pct" yaml:"boys_pct"`
	GirlsPct    float64 `json:"girls_pct" yaml:"girls_pct"`
	AvgMarks    float64 `json:"avg_marks" yaml:"avg_marks"`

	MarkRanges     []BucketCount   `json:"mark_ranges" yaml:"mark_ranges"`
	Results        []ResultCount   `json:"results" yaml:"results"`
	ResultByGender []ResultGenders `json:"result_by_gender" yaml:"result_by_gender"`
	Genders        []GenderCount   `json:"genders" yaml:"genders"`
}

// Empty returns the all-zero placeholder used when nothing is selected.
func Empty() AggregateResult {
	res := newResult("", nil)
	res.Placeholder = true
	return res
}

// Aggregate computes statistics for records of t whose Subject equals subject.
// An empty subset yields zero counts and 0% rather than dividing by zero.
// Boys and girls are counted independently; other gender values only appear
// in Genders and per-result splits.
func Aggregate(t *grades.Table, subject string) AggregateResult {
	var subset []grades.Record
	if t != nil {
		for _, r := range t.Records {
			if r.Subject == subject {
				subset = append(subset, r)
			}
		}
	}
	res := newResult(subject, subset)
	if len(subset) == 0 {
		return res
	}

	bucketIdx := make(map[string]int, len(res.MarkRanges))
	for i, b := range res.MarkRanges {
		bucketIdx[b.Label] = i
	}
	var sum float64
	for _, r := range subset {
		sum += r.TotalMarks
		switch r.Gender {
		case grades.Boy:
			res.Boys++
		case grades.Girl:
			res.Girls++
		}
		if i, ok := bucketIdx[r.MarkRange]; ok {
			res.MarkRanges[i].Count++
		}
		for i := range res.Results {
			if res.Results[i].Result == r.Result {
				res.Results[i].Count++
				addGender(res.ResultByGender[i].Genders, r.Gender)
			}
		}
		addGender(res.Genders, r.Gender)
	}
	res.Total = len(subset)
	res.BoysPct = percent(res.Boys, res.Total)
	res.GirlsPct = percent(res.Girls, res.Total)
	res.AvgMarks = round(sum/float64(res.Total), 2)
	return res
}

// Subjects returns the sorted distinct Subject values in t.
func Subjects(t *grades.Table) []string {
	if t == nil {
		return []string{}
	}
	seen := make(map[string]struct{})
	out := []string{}
	for _, r := range t.Records {
		if _, ok := seen[r.Subject]; ok {
			continue
		}
		seen[r.Subject] = struct{}{}
		out = append(out, r.Subject)
	}
	sort.Strings(out)
	return out
}

// newResult builds a zero-filled result whose gender slots cover Boy, Girl
// and any other gender values present in subset.
func newResult(subject string, subset []grades.Record) AggregateResult {
	res := AggregateResult{Subject: subject}
	for _, lbl := range grades.BucketLabels() {
		res.MarkRanges = append(res.MarkRanges, BucketCount{Label: lbl})
	}
	genders := genderOrder(subset)
	for _, r := range grades.Results {
		res.Results = append(res.Results, ResultCount{Result: r})
		res.ResultByGender = append(res.ResultByGender, ResultGenders{Result: r, Genders: zeroGenders(genders)})
	}
	res.Genders = zeroGenders(genders)
	return res
}

func genderOrder(subset []grades.Record) []grades.Gender {
	seen := map[grades.Gender]struct{}{grades.Boy: {}, grades.Girl: {}}
	var others []string
	for _, r := range subset {
		if _, ok := seen[r.Gender]; ok {
			continue
		}
		seen[r.Gender] = struct{}{}
		others = append(others, string(r.Gender))
	}
	sort.Strings(others)
	out := []grades.Gender{grades.Boy, grades.Girl}
	for _, g := range others {
		out = append(out, grades.Gender(g))
	}
	return out
}

func zeroGenders(order []grades.Gender) []GenderCount {
	out := make([]GenderCount, len(order))
	for i, g := range order {
		out[i] = GenderCount{Gender: g}
	}
	return out
}

func addGender(counts []GenderCount, g grades.Gender) {
	for i := range counts {
		if counts[i].Gender == g {
			counts[i].Count++
			return
		}
	}
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return round(float64(n)/float64(total)*100, 1)
}

// round halves to even, so two complementary percentages never sum past 100.
func round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.RoundToEven(x*p) / p
}

// CountRange returns the bucket count for label, or 0.
func (a AggregateResult) CountRange(label string) int {
	for _, b := range a.MarkRanges {
		if b.Label == label {
			return b.Count
		}
	}
	return 0
}

// CountResult returns the number of records with result r.
func (a AggregateResult) CountResult(r grades.Result) int {
	for _, rc := range a.Results {
		if rc.Result == r {
			return rc.Count
		}
	}
	return 0
}

// GendersFor returns the gender split of records with result r.
func (a AggregateResult) GendersFor(r grades.Result) []GenderCount {
	for _, rg := range a.ResultByGender {
		if rg.Result == r {
			return rg.Genders
		}
	}
	return nil
}

// Clone returns a deep copy so callers cannot mutate a shared snapshot.
func (a AggregateResult) Clone() AggregateResult {
	out := a
	out.MarkRanges = append([]BucketCount(nil), a.MarkRanges...)
	out.Results = append([]ResultCount(nil), a.Results...)
	out.Genders = append([]GenderCount(nil), a.Genders...)
	out.ResultByGender = make([]ResultGenders, len(a.ResultByGender))
	for i, rg := range a.ResultByGender {
		out.ResultByGender[i] = ResultGenders{Result: rg.Result, Genders: append([]GenderCount(nil), rg.Genders...)}
	}
	return out
}
