package models

// AthleteSettings holds the per-athlete pace preferences.
// BasePaceSeconds is authoritative; BasePaceInput mirrors it as mm:ss for display.
type AthleteSettings struct {
	BasePaceSeconds *int   `json:"base_pace_seconds,omitempty"`
	BasePaceInput   string `json:"base_pace_input,omitempty"`
}

// IsEmpty reports whether no pace has been stored yet.
func (s AthleteSettings) IsEmpty() bool {
	return s.BasePaceSeconds == nil && s.BasePaceInput == ""
}
