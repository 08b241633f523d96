package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"sparta-training/ics"
)

// Events are synced from a week ago up to this far ahead.
const (
	syncLookBack  = 7 * 24 * time.Hour
	syncLookAhead = 90 * 24 * time.Hour
)

// getCalendarService creates an authenticated Google Calendar service using
// the service account JSON key from either:
// 1. the GOOGLE_SERVICE_ACCOUNT setting (for CI/CD)
// 2. service-account.json file (for local development)
func getCalendarService(ctx context.Context, serviceAccount string) (*calendar.Service, error) {
	var serviceAccountKey []byte
	if serviceAccount != "" {
		serviceAccountKey = []byte(serviceAccount)
		log.Println("Using service account from GOOGLE_SERVICE_ACCOUNT")
	} else {
		var err error
		serviceAccountKey, err = os.ReadFile("service-account.json")
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key (tried GOOGLE_SERVICE_ACCOUNT and service-account.json): %w", err)
		}
		log.Println("Using service account from service-account.json file")
	}

	config, err := google.JWTConfigFromJSON(serviceAccountKey, calendar.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse service account key: %w", err)
	}

	srv, err := calendar.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create calendar service: %w", err)
	}
	return srv, nil
}

type syncStats struct {
	Created, Updated, Deleted, Unchanged int
}

// syncTrainingEvents makes the calendar's training events match events:
// - creates events that are missing
// - updates events whose title, times, location or description changed
// - deletes training events that are no longer on the schedule
// Calendar entries not created by this sync are left alone.
func syncTrainingEvents(ctx context.Context, srv *calendar.Service, calendarID string, events []ics.Event, now time.Time) (syncStats, error) {
	var stats syncStats
	timeMin := now.Add(-syncLookBack)
	timeMax := now.Add(syncLookAhead)

	wanted := make(map[string]ics.Event)
	for _, event := range events {
		if event.Start.Before(timeMin) || !event.Start.Before(timeMax) {
			continue
		}
		wanted[event.UID] = event
	}

	existing := make(map[string]*calendar.Event)
	err := srv.Events.List(calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		Pages(ctx, func(page *calendar.Events) error {
			for _, item := range page.Items {
				if ics.IsTrainingUID(item.ICalUID) {
					existing[item.ICalUID] = item
				}
			}
			return nil
		})
	if err != nil {
		return stats, fmt.Errorf("unable to retrieve existing calendar events: %w", err)
	}

	for uid, gcalEvent := range existing {
		event, ok := wanted[uid]
		if !ok {
			if err := srv.Events.Delete(calendarID, gcalEvent.Id).Context(ctx).Do(); err != nil {
				log.Printf("[ERROR] Failed to delete event %s: %v", uid, err)
				continue
			}
			stats.Deleted++
			log.Printf("[SYNC] Deleted: %s (no longer on the schedule)", gcalEvent.Summary)
			continue
		}

		desired := createGoogleCalendarEvent(event)
		if !needsUpdate(gcalEvent, desired) {
			stats.Unchanged++
			continue
		}
		if _, err := srv.Events.Update(calendarID, gcalEvent.Id, desired).Context(ctx).Do(); err != nil {
			log.Printf("[ERROR] Failed to update event %s: %v", uid, err)
			continue
		}
		stats.Updated++
		log.Printf("[SYNC] Updated: %s (%s)", event.Summary, event.Start.Format("Mon 2 Jan"))
	}

	for uid, event := range wanted {
		if _, ok := existing[uid]; ok {
			continue
		}
		_, err := srv.Events.Insert(calendarID, createGoogleCalendarEvent(event)).Context(ctx).Do()
		var apiErr *googleapi.Error
		switch {
		case errors.As(err, &apiErr) && apiErr.Code == http.StatusConflict:
			log.Printf("[SYNC] Event %s already exists (skipped duplicate): %s", uid, event.Summary)
		case err != nil:
			log.Printf("[ERROR] Failed to create event %s: %v", uid, err)
		default:
			stats.Created++
			log.Printf("[SYNC] Created: %s (%s)", event.Summary, event.Start.Format("Mon 2 Jan"))
		}
	}

	return stats, nil
}

// createGoogleCalendarEvent converts a training event into a Google Calendar
// event carrying the same iCalendar UID as the ICS feed.
func createGoogleCalendarEvent(event ics.Event) *calendar.Event {
	return &calendar.Event{
		Summary:     event.Summary,
		Location:    event.Location,
		Description: event.Description,
		Start: &calendar.EventDateTime{
			DateTime: event.Start.Format(time.RFC3339),
			TimeZone: ics.TimeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: event.End.Format(time.RFC3339),
			TimeZone: ics.TimeZone,
		},
		ICalUID: event.UID,
	}
}

func needsUpdate(current, desired *calendar.Event) bool {
	if current.Summary != desired.Summary || current.Location != desired.Location {
		return true
	}
	if strings.TrimSpace(current.Description) != strings.TrimSpace(desired.Description) {
		return true
	}
	return !sameInstant(current.Start, desired.Start) || !sameInstant(current.End, desired.End)
}

func sameInstant(a, b *calendar.EventDateTime) bool {
	if a == nil || b == nil {
		return a == b
	}
	at, errA := time.Parse(time.RFC3339, a.DateTime)
	bt, errB := time.Parse(time.RFC3339, b.DateTime)
	return errA == nil && errB == nil && at.Equal(bt)
}
