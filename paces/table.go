package paces

import "strings"

// PaceRow is one line of the club's pace chart: a base (10K) pace and the
// ranges derived from it for each training intensity.
type PaceRow struct {
	Label        string `json:"label"`
	BaseSeconds  int    `json:"base"`
	FiveK        string `json:"five_k"`
	TenK         string `json:"ten_k"`
	HalfMarathon string `json:"half_marathon"`
	Marathon     string `json:"marathon"`
	Aerobic      string `json:"aerobe"`
}

// Level returns the label up to the pace annotation, e.g. "40 min".
func (r PaceRow) Level() string {
	level, _, _ := strings.Cut(r.Label, "(")
	return strings.TrimSpace(level)
}

// paceTable is ordered by BaseSeconds, 3:30 to 5:30 per km.
var paceTable = [...]PaceRow{
	{Label: "35 min (3:30/km)", BaseSeconds: 210, FiveK: "3:23-3:26", TenK: "3:30", HalfMarathon: "3:38-3:42", Marathon: "3:48-3:55", Aerobic: "4:25-5:00"},
	{Label: "38 min (3:48/km)", BaseSeconds: 228, FiveK: "3:40-3:44", TenK: "3:48", HalfMarathon: "3:57-4:02", Marathon: "4:08-4:15", Aerobic: "4:45-5:20"},
	{Label: "40 min (4:00/km)", BaseSeconds: 240, FiveK: "3:52-3:56", TenK: "4:00", HalfMarathon: "4:10-4:15", Marathon: "4:20-4:30", Aerobic: "5:00-5:35"},
	{Label: "43 min (4:18/km)", BaseSeconds: 258, FiveK: "4:05-4:10", TenK: "4:18", HalfMarathon: "4:28-4:35", Marathon: "4:40-4:55", Aerobic: "5:20-6:00"},
	{Label: "46 min (4:36/km)", BaseSeconds: 276, FiveK: "4:20-4:25", TenK: "4:36", HalfMarathon: "4:45-4:52", Marathon: "5:00-5:10", Aerobic: "5:40-6:20"},
	{Label: "49 min (4:54/km)", BaseSeconds: 294, FiveK: "4:35-4:40", TenK: "4:54", HalfMarathon: "5:05-5:12", Marathon: "5:18-5:30", Aerobic: "6:00-6:40"},
	{Label: "52 min (5:12/km)", BaseSeconds: 312, FiveK: "4:55-5:00", TenK: "5:12", HalfMarathon: "5:24-5:32", Marathon: "5:40-5:55", Aerobic: "6:20-7:00"},
	{Label: "55 min (5:30/km)", BaseSeconds: 330, FiveK: "5:10-5:15", TenK: "5:30", HalfMarathon: "5:42-5:52", Marathon: "6:00-6:15", Aerobic: "6:40-7:20"},
}

// Table returns a copy of the pace chart so callers cannot modify it.
func Table() []PaceRow {
	rows := make([]PaceRow, len(paceTable))
	copy(rows, paceTable[:])
	return rows
}
