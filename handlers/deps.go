package handlers

import (
	"context"
	"log"
	"time"

	"golang.org/x/oauth2"

	"sparta-training/models"
	"sparta-training/storage"
	"sparta-training/strava"
	"sparta-training/tmpl"
)

// StravaClient is the part of the Strava client the handlers use.
type StravaClient interface {
	Configured() bool
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, models.Athlete, error)
	Refresh(ctx context.Context, tok *oauth2.Token) (*oauth2.Token, bool, error)
	FetchActivities(ctx context.Context, tok *oauth2.Token, perPage int) ([]strava.Activity, error)
}

// CSVImporter converts a pasted CSV schedule into training days.
type CSVImporter interface {
	ParseCSV(ctx context.Context, csvText string) ([]models.TrainingDay, error)
}

// Deps holds all handler dependencies.
type Deps struct {
	Settings  *storage.SettingsStore
	Trainings *storage.TrainingStore
	Goals     *storage.GoalStore
	Athletes  *storage.AthleteStore
	Sessions  *SessionStore
	Strava    StravaClient
	Importer  CSVImporter
	Templates *tmpl.Templates
	AdminIDs  []string
	Logger    *log.Logger
	Now       func() time.Time
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *Deps) logf(format string, args ...any) {
	if d.Logger != nil {
		d.Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

func (d *Deps) isAdmin(athlete *models.Athlete) bool {
	if athlete == nil || athlete.ID == "" {
		return false
	}
	for _, id := range d.AdminIDs {
		if id == athlete.ID {
			return true
		}
	}
	return false
}
