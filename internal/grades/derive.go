package grades

import "math"

// Bucket is one Mark_Range interval: [Lower, Upper), or [Lower, Upper] when Closed.
type Bucket struct {
	Label  string
	Lower  float64
	Upper  float64
	Closed bool
}

// Buckets is the fixed, ordered Mark_Range set covering [0,100].
var Buckets = []Bucket{
	{Label: "0-20", Lower: 0, Upper: 20},
	{Label: "20-40", Lower: 20, Upper: 40},
	{Label: "40-60", Lower: 40, Upper: 60},
	{Label: "60-70", Lower: 60, Upper: 70},
	{Label: "70-80", Lower: 70, Upper: 80},
	{Label: "80-90", Lower: 80, Upper: 90},
	{Label: "90-100", Lower: 90, Upper: 100, Closed: true},
}

// BucketLabels returns the Mark_Range labels in order.
func BucketLabels() []string {
	out := make([]string, len(Buckets))
	for i, b := range Buckets {
		out[i] = b.Label
	}
	return out
}

func (b Bucket) contains(x float64) bool {
	if x < b.Lower {
		return false
	}
	if b.Closed {
		return x <= b.Upper
	}
	return x < b.Upper
}

// TotalMarks sums the three score components.
func TotalMarks(r Record) float64 {
	return r.Internal1 + r.Internal2 + r.External
}

// ResultFor applies the pass mark; the threshold itself passes.
func ResultFor(total, passMark float64) Result {
	if total >= passMark {
		return Pass
	}
	return Fail
}

// MarkRangeFor returns the bucket label for total. Values outside [0,100]
// are clamped or rejected according to policy; NaN is always rejected.
func MarkRangeFor(total float64, policy RangePolicy) (string, error) {
	if math.IsNaN(total) {
		return "", ErrRange
	}
	if total < 0 || total > 100 {
		if policy == RangeReject {
			return "", ErrRange
		}
		if total < 0 {
			return Buckets[0].Label, nil
		}
		return Buckets[len(Buckets)-1].Label, nil
	}
	for _, b := range Buckets {
		if b.contains(total) {
			return b.Label, nil
		}
	}
	return "", ErrRange
}

// Derive returns a copy of t with Total_Marks, Result and Mark_Range filled in.
// t itself is left unchanged.
func Derive(t *Table, opt Options) (*Table, error) {
	out := t.Clone()
	if out == nil {
		out = &Table{}
	}
	for i := range out.Records {
		r := &out.Records[i]
		r.TotalMarks = TotalMarks(*r)
		r.Result = ResultFor(r.TotalMarks, opt.PassMark)
		label, err := MarkRangeFor(r.TotalMarks, opt.RangePolicy)
		if err != nil {
			return nil, &RangeError{Row: r.Row, Total: r.TotalMarks}
		}
		r.MarkRange = label
	}
	out.Derived = true
	return out, nil
}
