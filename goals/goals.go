package goals

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"sparta-training/models"
)

const dateLayout = "2006-01-02"

var (
	ErrInvalidGoal  = errors.New("goal needs a description and a valid date")
	ErrGoalNotFound = errors.New("goal not found")
)

var createdAtLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	dateLayout,
}

// NormalizeDate returns s, without surrounding whitespace, only when it is an
// exact YYYY-MM-DD calendar date.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil || t.Format(dateLayout) != s {
		return ""
	}
	return s
}

// NewID returns a fresh goal identifier.
func NewID() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "goal_" + id[:10]
}

var legacyNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://spartaone.local/goals"))

// LegacyID derives the ID of a stored goal that was saved without one. The
// same owner, position and description always give the same ID.
func LegacyID(owner string, idx int, description string) string {
	seed := owner + "/" + strconv.Itoa(idx) + "/" + description
	id := strings.ReplaceAll(uuid.NewSHA1(legacyNamespace, []byte(seed)).String(), "-", "")
	return "goal_" + id[:10]
}

// Normalize converts a raw goal into the canonical shape.
func Normalize(raw Raw, now time.Time) models.Goal {
	var g models.Goal
	var createdAt, updatedAt string

	if raw.Record == nil {
		g.Description = raw.Text
	} else {
		rec := raw.Record
		g.ID = rec.ID
		g.Description = firstNonEmpty(rec.Description, rec.Goal)
		g.TargetDate = firstNonEmpty(rec.TargetDate, rec.Date)
		createdAt, updatedAt = rec.CreatedAt, rec.UpdatedAt
	}

	g.Description = strings.TrimSpace(g.Description)
	g.TargetDate = NormalizeDate(g.TargetDate)
	if g.ID == "" {
		g.ID = NewID()
	}
	if t, ok := parseTimestamp(createdAt); ok {
		g.CreatedAt = t
	} else {
		g.CreatedAt = now
	}
	if t, ok := parseTimestamp(updatedAt); ok {
		g.UpdatedAt = &t
	}
	return g
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0), true
	}
	return time.Time{}, false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// today returns the local calendar date of now as YYYY-MM-DD.
func today(now time.Time) string {
	return now.Format(dateLayout)
}

// IsUpcoming reports whether g has a valid target date on or after today.
func IsUpcoming(g models.Goal, now time.Time) bool {
	date := NormalizeDate(g.TargetDate)
	return date != "" && date >= today(now)
}

// NextGoals returns goals with a description and a target date on or after
// today, earliest first. A limit of zero or less returns all of them.
func NextGoals(goals []models.Goal, limit int, now time.Time) []models.Goal {
	var upcoming []models.Goal
	for _, g := range goals {
		if strings.TrimSpace(g.Description) == "" || !IsUpcoming(g, now) {
			continue
		}
		upcoming = append(upcoming, g)
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].TargetDate < upcoming[j].TargetDate
	})
	if limit > 0 && len(upcoming) > limit {
		upcoming = upcoming[:limit]
	}
	return upcoming
}

// Partition splits goals into upcoming (sorted by date) and stale ones
// (past or undated), keeping the stale ones in stored order.
func Partition(goals []models.Goal, now time.Time) (upcoming, stale []models.Goal) {
	for _, g := range goals {
		if strings.TrimSpace(g.Description) == "" {
			continue
		}
		if IsUpcoming(g, now) {
			upcoming = append(upcoming, g)
		} else {
			stale = append(stale, g)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].TargetDate < upcoming[j].TargetDate
	})
	return upcoming, stale
}

// Add appends a new goal. The list is not modified on error.
func Add(list []models.Goal, description, targetDate string, now time.Time) ([]models.Goal, error) {
	description = strings.TrimSpace(description)
	targetDate = NormalizeDate(targetDate)
	if description == "" || targetDate == "" {
		return list, ErrInvalidGoal
	}
	g := Normalize(Structured(RawRecord{Description: description, TargetDate: targetDate}), now)
	out := make([]models.Goal, 0, len(list)+1)
	out = append(out, list...)
	return append(out, g), nil
}

// Update replaces description and target date of the goal with the given id.
func Update(list []models.Goal, id, description, targetDate string, now time.Time) ([]models.Goal, error) {
	description = strings.TrimSpace(description)
	targetDate = NormalizeDate(targetDate)
	if description == "" || targetDate == "" {
		return list, ErrInvalidGoal
	}
	for i := range list {
		if list[i].ID != id {
			continue
		}
		out := make([]models.Goal, len(list))
		copy(out, list)
		updated := now
		out[i].Description = description
		out[i].TargetDate = targetDate
		out[i].UpdatedAt = &updated
		return out, nil
	}
	return list, ErrGoalNotFound
}

// Delete removes the goal with the given id.
func Delete(list []models.Goal, id string) ([]models.Goal, error) {
	out := make([]models.Goal, 0, len(list))
	for _, g := range list {
		if g.ID != id {
			out = append(out, g)
		}
	}
	if len(out) == len(list) {
		return list, ErrGoalNotFound
	}
	return out, nil
}

// Message returns the user-facing (Dutch) text for a goal error.
func Message(err error, action string) string {
	switch {
	case errors.Is(err, ErrInvalidGoal):
		return "Vul een omschrijving en geldige datum (YYYY-MM-DD) in."
	case errors.Is(err, ErrGoalNotFound):
		return "Goal niet gevonden om te " + action + "."
	default:
		return "Unable to save goals."
	}
}

// DaysLabel describes how far away a goal's target date is, for goal cards.
func DaysLabel(g models.Goal, now time.Time) string {
	date := NormalizeDate(g.TargetDate)
	if date == "" {
		return "Datum ontbreekt"
	}
	target, _ := time.ParseInLocation(dateLayout, date, now.Location())
	todayMidnight, _ := time.ParseInLocation(dateLayout, today(now), now.Location())
	days := int(target.Sub(todayMidnight).Hours()+12) / 24
	if target.Before(todayMidnight) {
		return "Verlopen"
	}
	switch days {
	case 0:
		return "Vandaag"
	case 1:
		return "Morgen"
	default:
		return strconv.Itoa(days) + " dagen"
	}
}
