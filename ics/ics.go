// Package ics turns the shared training schedule into an iCalendar feed.
package ics

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"

	"sparta-training/models"
	"sparta-training/paces"
)

const (
	// TimeZone is the wall clock all sessions are scheduled in.
	TimeZone = "Europe/Amsterdam"

	// ClubLocation is where the evening sessions take place.
	ClubLocation = "AV Sparta (Voorburg), Groene Zoom 20, 2491 EH The Hague, Netherlands"

	uidDomain  = "spartaone.local"
	dateLayout = "2006-01-02"
)

var uidNamespace = uuid.NewMD5(uuid.NameSpaceDNS, []byte(uidDomain))

// Event is one calendar entry derived from a training entry.
type Event struct {
	UID         string
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
}

// Location returns the club's time zone, falling back to UTC.
func Location() *time.Location {
	loc, err := time.LoadLocation(TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// TrainingsToICS renders the schedule as an iCalendar document stamped with
// the current time.
func TrainingsToICS(days []models.TrainingDay, tempoPaces paces.TempoMap) string {
	return Render(BuildEvents(days, tempoPaces, Location()), time.Now())
}

// BuildEvents creates one event per entry. Days whose date is not a valid
// YYYY-MM-DD are skipped.
func BuildEvents(days []models.TrainingDay, tempoPaces paces.TempoMap, loc *time.Location) []Event {
	var events []Event
	for _, day := range days {
		date, err := time.ParseInLocation(dateLayout, day.Date, loc)
		if err != nil {
			continue
		}
		for idx, entry := range day.Entries {
			summary := Summary(entry)
			start, end, location := sessionSlot(date)
			events = append(events, Event{
				UID:         UID(day.Date, idx, summary),
				Summary:     summary,
				Description: Description(entry, tempoPaces),
				Location:    location,
				Start:       start,
				End:         end,
			})
		}
	}
	return events
}

// Summary is the event title: entry title, else activity, else "Training".
func Summary(entry models.TrainingEntry) string {
	if entry.Title != "" {
		return entry.Title
	}
	if entry.Activity != "" {
		return entry.Activity
	}
	return "Training"
}

// Description lists activity, distance, tempos with their paces and notes,
// one part per line, omitting empty parts.
func Description(entry models.TrainingEntry, tempoPaces paces.TempoMap) string {
	var parts []string
	if entry.Activity != "" {
		parts = append(parts, entry.Activity)
	}
	if entry.Distance != "" {
		parts = append(parts, entry.Distance)
	}
	if len(entry.Tempos) > 0 {
		parts = append(parts, "Tempos: "+strings.Join(entry.Tempos, ", "))
		var paceLines []string
		for _, label := range entry.Tempos {
			if pace := tempoPaces[label]; pace != "" {
				paceLines = append(paceLines, label+": "+pace)
			}
		}
		if len(paceLines) > 0 {
			parts = append(parts, strings.Join(paceLines, "\n"))
		}
	}
	if entry.Notes != "" {
		parts = append(parts, entry.Notes)
	}
	return strings.Join(parts, "\n")
}

// sessionSlot applies the club schedule: Monday and Wednesday are evening
// sessions at the track, every other day is a morning session.
func sessionSlot(date time.Time) (start, end time.Time, location string) {
	at := func(hour, min int) time.Time {
		return time.Date(date.Year(), date.Month(), date.Day(), hour, min, 0, 0, date.Location())
	}
	switch date.Weekday() {
	case time.Monday, time.Wednesday:
		return at(20, 15), at(22, 0), ClubLocation
	default:
		return at(9, 0), at(10, 30), ""
	}
}

// SessionLocation returns where the session on date (YYYY-MM-DD) is held, or
// "" when the date is invalid or the session has no fixed venue.
func SessionLocation(date string) string {
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return ""
	}
	_, _, location := sessionSlot(d)
	return location
}

// UID derives a stable identifier from the date, the entry's position on that
// day and its summary.
func UID(date string, idx int, summary string) string {
	seed := date + "-" + strconv.Itoa(idx) + "-" + summary
	return "spartaone-" + uuid.NewMD5(uidNamespace, []byte(seed)).String() + "@" + uidDomain
}

// IsTrainingUID reports whether uid was produced by UID.
func IsTrainingUID(uid string) bool {
	return strings.HasPrefix(uid, "spartaone-") && strings.HasSuffix(uid, "@"+uidDomain)
}

// Render writes events as an iCalendar document. stamp becomes DTSTAMP.
func Render(events []Event, stamp time.Time) string {
	var icsContent strings.Builder

	icsContent.WriteString("BEGIN:VCALENDAR\r\n")
	icsContent.WriteString("VERSION:2.0\r\n")
	icsContent.WriteString("PRODID:-//SpartaOne//Training Calendar//EN\r\n")
	icsContent.WriteString("CALSCALE:GREGORIAN\r\n")
	icsContent.WriteString("METHOD:PUBLISH\r\n")
	icsContent.WriteString("X-WR-CALNAME:SpartaOne Training\r\n")
	icsContent.WriteString("X-WR-TIMEZONE:" + TimeZone + "\r\n")

	icsContent.WriteString("BEGIN:VTIMEZONE\r\n")
	icsContent.WriteString("TZID:" + TimeZone + "\r\n")
	icsContent.WriteString("BEGIN:DAYLIGHT\r\n")
	icsContent.WriteString("DTSTART:19810329T020000\r\n")
	icsContent.WriteString("RRULE:FREQ=YEARLY;BYMONTH=3;BYDAY=-1SU\r\n")
	icsContent.WriteString("TZOFFSETFROM:+0100\r\n")
	icsContent.WriteString("TZOFFSETTO:+0200\r\n")
	icsContent.WriteString("TZNAME:CEST\r\n")
	icsContent.WriteString("END:DAYLIGHT\r\n")
	icsContent.WriteString("BEGIN:STANDARD\r\n")
	icsContent.WriteString("DTSTART:19961027T030000\r\n")
	icsContent.WriteString("RRULE:FREQ=YEARLY;BYMONTH=10;BYDAY=-1SU\r\n")
	icsContent.WriteString("TZOFFSETFROM:+0200\r\n")
	icsContent.WriteString("TZOFFSETTO:+0100\r\n")
	icsContent.WriteString("TZNAME:CET\r\n")
	icsContent.WriteString("END:STANDARD\r\n")
	icsContent.WriteString("END:VTIMEZONE\r\n")

	dtstamp := stamp.UTC().Format("20060102T150405Z")
	for _, event := range events {
		icsContent.WriteString("BEGIN:VEVENT\r\n")
		icsContent.WriteString(fmt.Sprintf("UID:%s\r\n", event.UID))
		icsContent.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", dtstamp))
		icsContent.WriteString(fmt.Sprintf("DTSTART;TZID=%s:%s\r\n", TimeZone, event.Start.Format("20060102T150405")))
		icsContent.WriteString(fmt.Sprintf("DTEND;TZID=%s:%s\r\n", TimeZone, event.End.Format("20060102T150405")))
		icsContent.WriteString(formatProperty("SUMMARY", event.Summary))
		if event.Location != "" {
			icsContent.WriteString(formatProperty("LOCATION", event.Location))
		}
		if event.Description != "" {
			icsContent.WriteString(formatProperty("DESCRIPTION", event.Description))
		}
		icsContent.WriteString("CATEGORIES:Running,Training\r\n")
		icsContent.WriteString("END:VEVENT\r\n")
	}

	icsContent.WriteString("END:VCALENDAR\r\n")
	return icsContent.String()
}

// EscapeText escapes a TEXT value. Backslashes go first so the escapes added
// afterwards are not doubled.
func EscapeText(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", `\n`)
	s = strings.ReplaceAll(s, ",", `\,`)
	s = strings.ReplaceAll(s, ";", `\;`)
	return s
}

// foldLine wraps a content line at 75 octets; continuation lines start with
// a space. Multi-byte characters are never split.
func foldLine(line string) string {
	const maxLen = 75

	var result strings.Builder
	limit := maxLen
	for len(line) > limit {
		cut := limit
		for cut > 0 && !isRuneStart(line[cut]) {
			cut--
		}
		result.WriteString(line[:cut])
		result.WriteString("\r\n ")
		line = line[cut:]
		limit = maxLen - 1
	}
	result.WriteString(line)
	return result.String()
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// formatProperty escapes and folds a TEXT property.
func formatProperty(property, value string) string {
	return foldLine(property+":"+EscapeText(value)) + "\r\n"
}
