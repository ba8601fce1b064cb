package grades_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/markboard-cli/internal/grades"
	"github.com/KaramelBytes/markboard-cli/internal/parser"
)

var header = []string{" Course ", "Gender", "Subject", "Internal 1", "Internal 2", " External"}

func TestNormalizeColumns(t *testing.T) {
	in := []string{"  Internal 1 ", "Mark Range Total", "External"}
	got := grades.NormalizeColumns(in)
	assert.Equal(t, []string{"Internal_1", "Mark_Range_Total", "External"}, got)
	assert.Equal(t, "  Internal 1 ", in[0], "input must not be modified")
	assert.Equal(t, grades.NormalizeColumns(got), got)
}

func TestValidateSchema(t *testing.T) {
	require.NoError(t, grades.ValidateSchema(grades.NormalizeColumns(header)))

	err := grades.ValidateSchema([]string{"Course", "Gender", "Subject", "Internal_1", "Internal_2"})
	var se *grades.SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, []string{"External"}, se.Missing)
	assert.True(t, errors.Is(err, grades.ErrSchema))
	assert.Contains(t, err.Error(), "Missing required columns")

	// un-normalized labels do not satisfy the schema
	assert.Error(t, grades.ValidateSchema([]string{"Course", "Gender", "Subject", "Internal 1", "Internal 2", "External"}))
}

func TestBuildTable_FiltersCourseAndTypes(t *testing.T) {
	sh := parser.Sheet{
		Header: header,
		Rows: [][]string{
			{"BCA", "Boy", "Math", "20", "15", "10"},
			{"BBA", "Girl", "Math", "oops", "", ""},
			{" BCA ", "Girl", "Math", "10,5", "10", "9.5"},
			{"bca", "Boy", "Math", "1", "1", "1"},
			{"BCA", "Boy", "Math", "20%", "1", "1"},
		},
	}
	tbl, err := grades.BuildTable(sh, grades.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 3, tbl.Len())
	assert.Equal(t, grades.Record{Row: 2, Course: "BCA", Gender: grades.Boy, Subject: "Math", Internal1: 20, Internal2: 15, External: 10}, tbl.Records[0])
	assert.Equal(t, 10.5, tbl.Records[1].Internal1)
	assert.Equal(t, 4, tbl.Records[1].Row)
	assert.Equal(t, 20.0, tbl.Records[2].Internal1)
	assert.False(t, tbl.Derived)
}

func TestBuildTable_Errors(t *testing.T) {
	_, err := grades.BuildTable(parser.Sheet{Header: []string{"Course", "Gender"}}, grades.DefaultOptions())
	assert.ErrorIs(t, err, grades.ErrSchema)

	_, err = grades.BuildTable(parser.Sheet{Header: header, Rows: [][]string{{"BCA", "Boy", "Math", "ten", "1", "1"}}}, grades.DefaultOptions())
	var te *grades.TypeError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, grades.TypeError{Row: 2, Column: "Internal_1", Value: "ten"}, *te)

	_, err = grades.BuildTable(parser.Sheet{Header: header, Rows: [][]string{{"BCA", "Boy", "Math", "NaN", "1", "1"}}}, grades.DefaultOptions())
	assert.ErrorIs(t, err, grades.ErrType)

	_, err = grades.BuildTable(parser.Sheet{Header: header, Rows: [][]string{{"BCA", "Boy", "", "1", "1", "1"}}}, grades.DefaultOptions())
	var re *grades.RecordError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "Subject", re.Column)
	assert.Equal(t, 2, re.Row)

	_, err = grades.BuildTable(parser.Sheet{Header: header, Rows: [][]string{{"BCA", "Boy", "Math", "%", "1", "1"}}}, grades.DefaultOptions())
	assert.ErrorIs(t, err, grades.ErrType)
}

func TestBuildTable_ReportsSourceLines(t *testing.T) {
	sh := parser.Sheet{
		Header: header,
		Rows: [][]string{
			{"BCA", "Boy", "Math", "1", "1", "1"},
			{"BCA", "Girl", "Math", "x", "1", "1"},
		},
		Lines: []int{3, 7},
	}
	_, err := grades.BuildTable(sh, grades.DefaultOptions())
	var te *grades.TypeError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 7, te.Row)

	sh.Rows[1][3] = "2"
	tbl, err := grades.BuildTable(sh, grades.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Records[0].Row)
	assert.Equal(t, 7, tbl.Records[1].Row)
}

func TestResultFor_Boundary(t *testing.T) {
	assert.Equal(t, grades.Pass, grades.ResultFor(50, 50))
	assert.Equal(t, grades.Fail, grades.ResultFor(49.99, 50))
	assert.Equal(t, grades.Pass, grades.ResultFor(100, 50))
}

func TestMarkRangeFor(t *testing.T) {
	cases := []struct {
		total float64
		want  string
	}{
		{0, "0-20"},
		{19.99, "0-20"},
		{20, "20-40"},
		{39.5, "20-40"},
		{40, "40-60"},
		{60, "60-70"},
		{70, "70-80"},
		{80, "80-90"},
		{89.99, "80-90"},
		{90, "90-100"},
		{100, "90-100"},
	}
	for _, c := range cases {
		got, err := grades.MarkRangeFor(c.total, grades.RangeReject)
		require.NoError(t, err, "total %v", c.total)
		assert.Equal(t, c.want, got, "total %v", c.total)
	}

	got, err := grades.MarkRangeFor(-3, grades.RangeClamp)
	require.NoError(t, err)
	assert.Equal(t, "0-20", got)
	got, err = grades.MarkRangeFor(104, grades.RangeClamp)
	require.NoError(t, err)
	assert.Equal(t, "90-100", got)

	_, err = grades.MarkRangeFor(100.5, grades.RangeReject)
	assert.ErrorIs(t, err, grades.ErrRange)
}

func TestMarkRangeFor_ExactlyOneBucket(t *testing.T) {
	for x := 0.0; x <= 100; x += 0.25 {
		n := 0
		for _, b := range grades.Buckets {
			lbl, _ := grades.MarkRangeFor(x, grades.RangeReject)
			if lbl == b.Label {
				n++
			}
		}
		require.Equal(t, 1, n, "total %v", x)
	}
}

func TestDerive(t *testing.T) {
	in := &grades.Table{Records: []grades.Record{
		{Row: 2, Course: "BCA", Gender: grades.Boy, Subject: "Math", Internal1: 20, Internal2: 15, External: 10},
		{Row: 3, Course: "BCA", Gender: grades.Girl, Subject: "Math", Internal1: 10, Internal2: 10, External: 10},
		{Row: 4, Course: "BCA", Gender: grades.Girl, Subject: "Math", Internal1: 20, Internal2: 10, External: 20},
	}}
	out, err := grades.Derive(in, grades.DefaultOptions())
	require.NoError(t, err)
	require.True(t, out.Derived)

	assert.Equal(t, 45.0, out.Records[0].TotalMarks)
	assert.Equal(t, grades.Fail, out.Records[0].Result)
	assert.Equal(t, "40-60", out.Records[0].MarkRange)
	assert.Equal(t, 30.0, out.Records[1].TotalMarks)
	assert.Equal(t, "20-40", out.Records[1].MarkRange)
	assert.Equal(t, 50.0, out.Records[2].TotalMarks)
	assert.Equal(t, grades.Pass, out.Records[2].Result)

	// input untouched
	assert.False(t, in.Derived)
	assert.Zero(t, in.Records[0].TotalMarks)
	assert.Empty(t, in.Records[0].MarkRange)
}

func TestDerive_TotalIsExactSum(t *testing.T) {
	in := &grades.Table{Records: []grades.Record{{Row: 2, Internal1: 12.5, Internal2: 7.25, External: 30.25}}}
	out, err := grades.Derive(in, grades.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 12.5+7.25+30.25, out.Records[0].TotalMarks)
}

func TestDerive_RangePolicy(t *testing.T) {
	in := &grades.Table{Records: []grades.Record{{Row: 7, Internal1: 40, Internal2: 40, External: 30}}}

	out, err := grades.Derive(in, grades.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "90-100", out.Records[0].MarkRange)

	opt := grades.DefaultOptions()
	opt.RangePolicy = grades.RangeReject
	_, err = grades.Derive(in, opt)
	var re *grades.RangeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, 7, re.Row)
	assert.Equal(t, 110.0, re.Total)
}

func TestParseRangePolicy(t *testing.T) {
	p, err := grades.ParseRangePolicy("")
	require.NoError(t, err)
	assert.Equal(t, grades.RangeClamp, p)
	p, err = grades.ParseRangePolicy("REJECT")
	require.NoError(t, err)
	assert.Equal(t, grades.RangeReject, p)
	_, err = grades.ParseRangePolicy("drop")
	assert.Error(t, err)
}
