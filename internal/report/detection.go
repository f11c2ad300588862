package report

import "github.com/zero-day-ai/fraudgraph/internal/fraud"

// sectionOrder fixes the sheet order of a full detection report.
var sectionOrder = []string{
	fraud.AlgLayeredLaundering,
	fraud.AlgSharedDevices,
	fraud.AlgOutlierAmounts,
	fraud.AlgActivityAcceleration,
	fraud.AlgRiskBuckets,
}

// FromReport turns a detection report into sections, one per algorithm.
func FromReport(r *fraud.Report) []Section {
	byName := r.Sections()
	out := make([]Section, 0, len(sectionOrder))
	for _, name := range sectionOrder {
		out = append(out, Section{Name: name, Rows: byName[name]})
	}
	return out
}
