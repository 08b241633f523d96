package models

// TrainingEntry is a single session on a training day.
type TrainingEntry struct {
	ID       string   `json:"id,omitempty"`
	Title    string   `json:"title"`
	Activity string   `json:"activity"`
	Distance string   `json:"distance"`
	Notes    string   `json:"notes"`
	Tempos   []string `json:"tempos"`
}

// TrainingDay groups the entries scheduled for one date (YYYY-MM-DD).
type TrainingDay struct {
	Date    string          `json:"date"`
	Entries []TrainingEntry `json:"entries"`
}

// SharedScope is the single schedule every athlete sees.
const SharedScope = "shared"
