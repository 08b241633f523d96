package paces

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strconv"

	"sparta-training/models"
)

// Accepted range for a submitted base pace, in seconds per km.
const (
	MinBaseSeconds = 180
	MaxBaseSeconds = 330
)

var (
	ErrPaceEmpty   = errors.New("pace is empty")
	ErrPaceFormat  = errors.New("pace must be mm:ss")
	ErrPaceSeconds = errors.New("pace seconds must be below 60")
	ErrPaceRange   = errors.New("base pace out of range")
)

var paceRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// TempoMap maps a tempo label to its pace range, e.g. "10K" -> "4:00".
type TempoMap map[string]string

// SettingsLoader is the part of the settings store the resolver reads from.
type SettingsLoader interface {
	Load(athleteID string) (models.AthleteSettings, error)
}

// FindNearestRow returns the row whose base pace is closest to baseSeconds.
// Ties go to the earlier row. ok is false only for an empty table.
func FindNearestRow(table []PaceRow, baseSeconds int) (row PaceRow, ok bool) {
	best := -1
	bestDiff := 0
	for i, r := range table {
		diff := r.BaseSeconds - baseSeconds
		if diff < 0 {
			diff = -diff
		}
		if best == -1 || diff < bestDiff {
			best, bestDiff = i, diff
		}
	}
	if best == -1 {
		return PaceRow{}, false
	}
	return table[best], true
}

// ParsePaceToSeconds parses "m:ss" or "mm:ss" into seconds.
func ParsePaceToSeconds(text string) (int, error) {
	if text == "" {
		return 0, ErrPaceEmpty
	}
	m := paceRe.FindStringSubmatch(text)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrPaceFormat, text)
	}
	minutes, _ := strconv.Atoi(m[1])
	seconds, _ := strconv.Atoi(m[2])
	if seconds >= 60 {
		return 0, fmt.Errorf("%w: %q", ErrPaceSeconds, text)
	}
	return minutes*60 + seconds, nil
}

// FormatSecondsToPace renders seconds as zero-padded mm:ss.
func FormatSecondsToPace(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// ValidateBaseSeconds checks a submitted base pace against the accepted range.
func ValidateBaseSeconds(seconds int) error {
	if seconds < MinBaseSeconds || seconds > MaxBaseSeconds {
		return fmt.Errorf("%w: %d", ErrPaceRange, seconds)
	}
	return nil
}

// ComputeBasePaceSeconds prefers the stored seconds and falls back to parsing
// the textual input.
func ComputeBasePaceSeconds(settings models.AthleteSettings) (int, bool) {
	if settings.BasePaceSeconds != nil {
		return *settings.BasePaceSeconds, true
	}
	if settings.BasePaceInput == "" {
		return 0, false
	}
	seconds, err := ParsePaceToSeconds(settings.BasePaceInput)
	if err != nil {
		return 0, false
	}
	return seconds, true
}

// ToTempoMap builds the label lookup for one pace row.
func ToTempoMap(row PaceRow) TempoMap {
	m := TempoMap{
		Label5K:           row.FiveK,
		Label10K:          row.TenK,
		LabelHalfMarathon: row.HalfMarathon,
		LabelMarathon:     row.Marathon,
		LabelAeroob:       row.Aerobic,
	}
	for alias, canonical := range labelAliases {
		m[alias] = m[canonical]
	}
	return m
}

// ResolveTempoPaces returns the tempo map for an athlete. When settings is
// empty and both athleteID and store are given, settings are loaded first.
// The result is empty when no base pace can be resolved.
func ResolveTempoPaces(settings models.AthleteSettings, athleteID string, store SettingsLoader) TempoMap {
	if settings.IsEmpty() && athleteID != "" && store != nil {
		loaded, err := store.Load(athleteID)
		if err != nil {
			log.Printf("[ERROR] Failed to load settings for athlete %s: %v", athleteID, err)
		} else {
			settings = loaded
		}
	}

	base, ok := ComputeBasePaceSeconds(settings)
	if !ok {
		return TempoMap{}
	}
	row, ok := FindNearestRow(Table(), base)
	if !ok {
		return TempoMap{}
	}
	return ToTempoMap(row)
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying the request's tempo map.
func NewContext(ctx context.Context, m TempoMap) context.Context {
	if m == nil {
		m = TempoMap{}
	}
	return context.WithValue(ctx, contextKey{}, m)
}

// FromContext returns the tempo map stored by NewContext, or an empty map.
func FromContext(ctx context.Context) TempoMap {
	if m, ok := ctx.Value(contextKey{}).(TempoMap); ok {
		return m
	}
	return TempoMap{}
}

// Message returns the user-facing (Dutch) text for a pace validation error.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrPaceEmpty):
		return "Vul een tempo in (mm:ss)."
	case errors.Is(err, ErrPaceSeconds):
		return "Seconden moeten tussen 00 en 59 liggen."
	case errors.Is(err, ErrPaceFormat):
		return "Gebruik het formaat mm:ss, bijvoorbeeld 04:30."
	case errors.Is(err, ErrPaceRange):
		return "Kies een tempo tussen 03:00 en 05:30."
	default:
		return "Ongeldig tempo."
	}
}
