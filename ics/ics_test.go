package ics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sparta-training/models"
	"sparta-training/paces"
)

var stamp = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

// unfold reverses line folding and splits the document into content lines.
func unfold(doc string) []string {
	doc = strings.ReplaceAll(doc, "\r\n ", "")
	return strings.Split(strings.TrimSuffix(doc, "\r\n"), "\r\n")
}

func property(t *testing.T, lines []string, name string) string {
	t.Helper()
	inEvent := false
	for _, l := range lines {
		if l == "BEGIN:VEVENT" {
			inEvent = true
		}
		if !inEvent {
			continue
		}
		if strings.HasPrefix(l, name+":") || strings.HasPrefix(l, name+";") {
			return l
		}
	}
	return ""
}

func TestEscapeText(t *testing.T) {
	assert.Equal(t, `a\,b\;c\nd\\e`, EscapeText("a,b;c\nd\\e"))
	assert.Equal(t, `line1\nline2`, EscapeText("line1\r\nline2"))
	assert.Equal(t, `\\n`, EscapeText(`\n`))
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "Intervals", Summary(models.TrainingEntry{Title: "Intervals", Activity: "Track"}))
	assert.Equal(t, "Track", Summary(models.TrainingEntry{Activity: "Track"}))
	assert.Equal(t, "Training", Summary(models.TrainingEntry{}))
}

func TestDescription(t *testing.T) {
	entry := models.TrainingEntry{
		Activity: "6x1000m",
		Distance: "10 km",
		Tempos:   []string{"10K", "3K", "Recovery"},
		Notes:    "Bring spikes",
	}
	tempoPaces := paces.TempoMap{"10K": "4:00", "Recovery": "5:00-5:35"}

	assert.Equal(t,
		"6x1000m\n10 km\nTempos: 10K, 3K, Recovery\n10K: 4:00\nRecovery: 5:00-5:35\nBring spikes",
		Description(entry, tempoPaces))

	assert.Equal(t, "Tempos: 3K", Description(models.TrainingEntry{Tempos: []string{"3K"}}, tempoPaces))
	assert.Equal(t, "", Description(models.TrainingEntry{Title: "Only title"}, nil))
}

func TestMondayIsEveningSessionWithLocation(t *testing.T) {
	days := []models.TrainingDay{{Date: "2024-01-01", Entries: []models.TrainingEntry{{Title: "Track"}}}}
	lines := unfold(Render(BuildEvents(days, nil, Location()), stamp))

	assert.Equal(t, "DTSTART;TZID=Europe/Amsterdam:20240101T201500", property(t, lines, "DTSTART"))
	assert.Equal(t, "DTEND;TZID=Europe/Amsterdam:20240101T220000", property(t, lines, "DTEND"))
	assert.Equal(t, "LOCATION:"+EscapeText(ClubLocation), property(t, lines, "LOCATION"))
}

func TestWednesdayIsEveningSession(t *testing.T) {
	events := BuildEvents([]models.TrainingDay{{Date: "2024-01-03", Entries: []models.TrainingEntry{{}}}}, nil, Location())
	require.Len(t, events, 1)
	assert.Equal(t, 20, events[0].Start.Hour())
	assert.Equal(t, 15, events[0].Start.Minute())
	assert.Equal(t, ClubLocation, events[0].Location)
}

func TestTuesdayIsMorningSessionWithoutLocation(t *testing.T) {
	days := []models.TrainingDay{{Date: "2024-01-02", Entries: []models.TrainingEntry{{Title: "Easy"}}}}
	lines := unfold(Render(BuildEvents(days, nil, Location()), stamp))

	assert.Equal(t, "DTSTART;TZID=Europe/Amsterdam:20240102T090000", property(t, lines, "DTSTART"))
	assert.Equal(t, "DTEND;TZID=Europe/Amsterdam:20240102T103000", property(t, lines, "DTEND"))
	assert.Empty(t, property(t, lines, "LOCATION"))
}

func TestWeekendIsMorningSession(t *testing.T) {
	events := BuildEvents([]models.TrainingDay{{Date: "2024-01-07", Entries: []models.TrainingEntry{{}}}}, nil, Location())
	require.Len(t, events, 1)
	assert.Equal(t, 9, events[0].Start.Hour())
	assert.Empty(t, events[0].Location)
}

func TestInvalidDatesAreSkipped(t *testing.T) {
	days := []models.TrainingDay{
		{Date: "", Entries: []models.TrainingEntry{{Title: "No date"}}},
		{Date: "2024-02-30", Entries: []models.TrainingEntry{{Title: "Bad date"}}},
		{Date: "01-02-2024", Entries: []models.TrainingEntry{{Title: "Wrong layout"}}},
		{Date: "2024-01-02", Entries: []models.TrainingEntry{{Title: "Good"}, {Title: "Also good"}}},
		{Date: "2024-01-03"},
	}
	events := BuildEvents(days, nil, Location())
	require.Len(t, events, 2)
	assert.Equal(t, "Good", events[0].Summary)
	assert.Equal(t, "Also good", events[1].Summary)
}

func TestUIDIsDeterministic(t *testing.T) {
	uid := UID("2024-01-01", 0, "Track")
	assert.Equal(t, uid, UID("2024-01-01", 0, "Track"))
	assert.True(t, IsTrainingUID(uid))
	assert.True(t, strings.HasSuffix(uid, "@spartaone.local"))

	assert.NotEqual(t, uid, UID("2024-01-02", 0, "Track"))
	assert.NotEqual(t, uid, UID("2024-01-01", 1, "Track"))
	assert.NotEqual(t, uid, UID("2024-01-01", 0, "Tracks"))
	assert.False(t, IsTrainingUID("123@strava.com"))
}

func TestUIDsDifferAcrossEntriesOfADay(t *testing.T) {
	days := []models.TrainingDay{{Date: "2024-01-01", Entries: []models.TrainingEntry{{Title: "Same"}, {Title: "Same"}}}}
	events := BuildEvents(days, nil, Location())
	require.Len(t, events, 2)
	assert.NotEqual(t, events[0].UID, events[1].UID)
}

func TestRenderIsStableExceptDTSTAMP(t *testing.T) {
	days := []models.TrainingDay{
		{Date: "2024-01-01", Entries: []models.TrainingEntry{{Activity: "Tempo run", Tempos: []string{"10K"}}}},
		{Date: "2024-01-02", Entries: []models.TrainingEntry{{Title: "Easy", Notes: "Keep it, easy; really"}}},
	}
	tempoPaces := paces.TempoMap{"10K": "4:00"}

	first := TrainingsToICS(days, tempoPaces)
	time.Sleep(1100 * time.Millisecond)
	second := TrainingsToICS(days, tempoPaces)

	strip := func(doc string) []string {
		var out []string
		for _, l := range unfold(doc) {
			if !strings.HasPrefix(l, "DTSTAMP:") {
				out = append(out, l)
			}
		}
		return out
	}
	assert.Equal(t, strip(first), strip(second))
}

func TestRenderStructure(t *testing.T) {
	days := []models.TrainingDay{{Date: "2024-01-02", Entries: []models.TrainingEntry{{Title: "A"}, {Title: "B"}}}}
	doc := Render(BuildEvents(days, nil, Location()), stamp)

	assert.True(t, strings.HasPrefix(doc, "BEGIN:VCALENDAR\r\n"))
	assert.True(t, strings.HasSuffix(doc, "END:VCALENDAR\r\n"))
	assert.Equal(t, 2, strings.Count(doc, "BEGIN:VEVENT\r\n"))
	assert.Equal(t, 2, strings.Count(doc, "END:VEVENT\r\n"))
	assert.Contains(t, doc, "DTSTAMP:20240101T080000Z\r\n")
	assert.NotContains(t, strings.ReplaceAll(doc, "\r\n", ""), "\n")
}

func TestEmptyScheduleRendersEmptyCalendar(t *testing.T) {
	doc := Render(BuildEvents(nil, nil, Location()), stamp)
	assert.Contains(t, doc, "BEGIN:VCALENDAR")
	assert.NotContains(t, doc, "BEGIN:VEVENT")
}

func TestLongLinesAreFolded(t *testing.T) {
	notes := strings.Repeat("Loop rustig door het bos, één ronde; ", 10)
	days := []models.TrainingDay{{Date: "2024-01-02", Entries: []models.TrainingEntry{{Title: "Long", Notes: notes}}}}
	doc := Render(BuildEvents(days, nil, Location()), stamp)

	for _, l := range strings.Split(doc, "\r\n") {
		assert.LessOrEqual(t, len(l), 75)
	}
	assert.Equal(t, "DESCRIPTION:"+EscapeText(notes), property(t, unfold(doc), "DESCRIPTION"))
}

func TestResolvedPacesFlowIntoDescription(t *testing.T) {
	base := 240
	tempoPaces := paces.ResolveTempoPaces(models.AthleteSettings{BasePaceSeconds: &base}, "", nil)
	require.Equal(t, "4:00", tempoPaces["10K"])

	days := []models.TrainingDay{{Date: "2024-01-01", Entries: []models.TrainingEntry{{Activity: "Tempo run", Tempos: []string{"10K"}}}}}
	lines := unfold(TrainingsToICS(days, tempoPaces))

	description := property(t, lines, "DESCRIPTION")
	assert.Contains(t, description, "10K: 4:00")
	assert.Equal(t, `DESCRIPTION:Tempo run\nTempos: 10K\n10K: 4:00`, description)
	assert.Equal(t, "SUMMARY:Tempo run", property(t, lines, "SUMMARY"))
}

func TestSessionLocation(t *testing.T) {
	assert.Equal(t, ClubLocation, SessionLocation("2024-01-01"))
	assert.Equal(t, ClubLocation, SessionLocation("2024-01-03"))
	assert.Equal(t, "", SessionLocation("2024-01-02"))
	assert.Equal(t, "", SessionLocation("soon"))
}
