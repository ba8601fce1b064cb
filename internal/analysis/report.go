package analysis

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KaramelBytes/markboard-cli/internal/grades"
)

// KPI is one headline figure as shown on the dashboard cards.
type KPI struct {
	Title string `json:"title" yaml:"title"`
	Value string `json:"value" yaml:"value"`
}

// KPIs returns the headline cards in display order.
func (a AggregateResult) KPIs() []KPI {
	return []KPI{
		{Title: "Total Students", Value: strconv.Itoa(a.Total)},
		{Title: "Boys %", Value: fmt.Sprintf("%.1f%%", a.BoysPct)},
		{Title: "Girls %", Value: fmt.Sprintf("%.1f%%", a.GirlsPct)},
		{Title: "Avg Marks", Value: strconv.FormatFloat(a.AvgMarks, 'f', -1, 64)},
	}
}

// Report bundles one aggregate with the context it was computed from.
type Report struct {
	Name     string          `json:"name" yaml:"name"`
	Course   string          `json:"course" yaml:"course"`
	Records  int             `json:"records" yaml:"records"`
	Subjects []string        `json:"subjects" yaml:"subjects"`
	Result   AggregateResult `json:"result" yaml:"result"`
	Samples  []grades.Record `json:"samples,omitempty" yaml:"samples,omitempty"`
	Warnings []string        `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// NewReport aggregates subject over t and collects up to sampleRows matching
// records plus notes about values the statistics leave out.
func NewReport(name, course string, t *grades.Table, subject string, sampleRows int) *Report {
	rep := &Report{
		Name:     name,
		Course:   course,
		Records:  t.Len(),
		Subjects: Subjects(t),
	}
	if subject == "" {
		rep.Result = Empty()
		return rep
	}
	rep.Result = Aggregate(t, subject)
	if t == nil {
		return rep
	}
	other := 0
	outside := 0
	for _, r := range t.Records {
		if r.Subject != subject {
			continue
		}
		if len(rep.Samples) < sampleRows {
			rep.Samples = append(rep.Samples, r)
		}
		if r.Gender != grades.Boy && r.Gender != grades.Girl {
			other++
		}
		if r.TotalMarks < 0 || r.TotalMarks > 100 {
			outside++
		}
	}
	if other > 0 {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("%d record(s) with gender other than Boy/Girl are not counted in Boys %%/Girls %%", other))
	}
	if outside > 0 {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("%d record(s) with Total_Marks outside 0-100 were clamped into the nearest range", outside))
	}
	if rep.Result.Total == 0 {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("no %s records for subject %q", course, subject))
	}
	return rep
}

// Markdown renders a compact summary suitable for terminals or standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	a := r.Result
	b.WriteString("[SUBJECT SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	if r.Course != "" {
		b.WriteString(fmt.Sprintf("Course: %s (%d records)\n", r.Course, r.Records))
	}
	if a.Placeholder {
		b.WriteString("Subject: (none selected)\n")
	} else {
		b.WriteString(fmt.Sprintf("Subject: %s\n", safeVal(a.Subject)))
	}
	for _, k := range a.KPIs() {
		b.WriteString(fmt.Sprintf("%s: %s\n", k.Title, k.Value))
	}

	if len(r.Subjects) > 0 {
		b.WriteString("\n[SUBJECTS]\n")
		for _, s := range r.Subjects {
			b.WriteString(fmt.Sprintf("- %s\n", safeVal(s)))
		}
	}

	b.WriteString("\n[MARK RANGES]\n")
	for _, m := range a.MarkRanges {
		b.WriteString(fmt.Sprintf("- %s: %d\n", m.Label, m.Count))
	}

	b.WriteString("\n[PASS VS FAIL]\n")
	for _, rc := range a.Results {
		b.WriteString(fmt.Sprintf("- %s: %d\n", rc.Result, rc.Count))
		for _, g := range a.GendersFor(rc.Result) {
			b.WriteString(fmt.Sprintf("  • %s: %d\n", safeVal(string(g.Gender)), g.Count))
		}
	}

	b.WriteString("\n[GENDER DISTRIBUTION]\n")
	for _, g := range a.Genders {
		pct := percent(g.Count, a.Total)
		b.WriteString(fmt.Sprintf("- %s: %d (%.1f%%)\n", safeVal(string(g.Gender)), g.Count, pct))
	}

	if len(r.Samples) > 0 {
		b.WriteString("\n[SAMPLE ROWS]\n")
		b.WriteString("| Row | Gender | Internal_1 | Internal_2 | External | Total_Marks | Result | Mark_Range |\n")
		b.WriteString("| --- | --- | --- | --- | --- | --- | --- | --- |\n")
		for _, s := range r.Samples {
			b.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s | %s | %s | %s |\n",
				s.Row, safeVal(string(s.Gender)), num(s.Internal1), num(s.Internal2), num(s.External),
				num(s.TotalMarks), s.Result, s.MarkRange))
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func num(x float64) string { return strconv.FormatFloat(x, 'f', -1, 64) }

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
