// SpartaOne training club site
//
// Serves the club's shared training schedule, per-athlete tempo paces and
// goals behind a Strava login, plus a public iCalendar feed of the schedule.
//
// Commands:
// - serve (default): run the web application
// - ics: write the schedule to an ICS file
// - gcal: sync the schedule into a Google Calendar
//
// Configuration (environment, .env file or flags):
// - STRAVA_CLIENT_ID, STRAVA_CLIENT_SECRET, STRAVA_REDIRECT_URI: Strava OAuth app
// - OPENAI_API_KEY, OPENAI_MODEL: CSV schedule import
// - PORT, DATA_DIR, ADMIN_IDS, CSRF_KEY, LOG_FILE, TIMEZONE
// - GOOGLE_CALENDAR_ID, GOOGLE_SERVICE_ACCOUNT: gcal command
package main

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"sparta-training/handlers"
	"sparta-training/ics"
	"sparta-training/importer"
	"sparta-training/models"
	"sparta-training/storage"
	"sparta-training/strava"
	"sparta-training/tmpl"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes one command and returns the process exit code. Errors are
// logged before the log file is closed.
func run(args []string) int {
	cmd := "serve"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	cfg, err := loadConfig(args)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		return 2
	}

	logger, closeLog := setupLogging(cfg.LogFile)
	defer closeLog()
	applyTimeZone(cfg.TimeZone)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "serve":
		err = serve(ctx, cfg, logger)
	case "ics":
		err = generateICSOnly(cfg)
	case "gcal":
		err = syncGoogleCalendarOnly(ctx, cfg)
	default:
		err = fmt.Errorf("unknown command %q (want serve, ics or gcal)", cmd)
	}
	if err != nil {
		log.Printf("[ERROR] %v", err)
		return 1
	}
	return 0
}

// applyTimeZone makes name the local zone used for "today" on pages.
func applyTimeZone(name string) {
	if name == "" {
		return
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("[ERROR] Unknown TIMEZONE %q, keeping %s: %v", name, time.Local, err)
		return
	}
	time.Local = loc
}

func newStores(dataDir string) (*storage.SettingsStore, *storage.TrainingStore, *storage.GoalStore, *storage.AthleteStore) {
	return storage.NewSettingsStore(filepath.Join(dataDir, "settings")),
		storage.NewTrainingStore(filepath.Join(dataDir, "trainings")),
		storage.NewGoalStore(filepath.Join(dataDir, "goals")),
		storage.NewAthleteStore(filepath.Join(dataDir, "athletes"))
}

func serve(ctx context.Context, cfg Config, logger *log.Logger) error {
	settings, trainings, goalStore, athletes := newStores(cfg.DataDir)

	stravaClient := strava.NewClient(strava.Config{
		ClientID:     cfg.StravaClientID,
		ClientSecret: cfg.StravaClientSecret,
		RedirectURI:  cfg.StravaRedirectURI,
	})
	if !stravaClient.Configured() {
		log.Println("Warning: STRAVA_CLIENT_ID/STRAVA_CLIENT_SECRET not set, login will not work")
	}
	if cfg.OpenAIKey == "" {
		log.Println("Warning: OPENAI_API_KEY not set, CSV import is disabled")
	}

	deps := &handlers.Deps{
		Settings:  settings,
		Trainings: trainings,
		Goals:     goalStore,
		Athletes:  athletes,
		Sessions:  handlers.NewSessionStore(),
		Strava:    stravaClient,
		Importer:  importer.NewClient(cfg.OpenAIKey, cfg.OpenAIModel),
		Templates: tmpl.Load(),
		AdminIDs:  cfg.AdminIDs,
		Logger:    logger,
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           deps.Routes(csrfKey(cfg.CSRFKey)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("SpartaOne listening on http://localhost:%s", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Println("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// csrfKey stretches the configured secret to the 32 bytes the CSRF
// middleware needs. An empty secret disables CSRF protection.
func csrfKey(secret string) []byte {
	if secret == "" {
		return nil
	}
	sum := sha256.Sum256([]byte(secret))
	return sum[:]
}

// generateICSOnly writes the shared schedule without athlete paces to the
// configured output file.
func generateICSOnly(cfg Config) error {
	log.Println("Generating ICS file from the training schedule...")
	_, trainings, _, _ := newStores(cfg.DataDir)

	days, err := trainings.Load(models.SharedScope)
	if err != nil {
		return fmt.Errorf("failed to load trainings: %w", err)
	}

	events := ics.BuildEvents(days, nil, ics.Location())
	if err := os.MkdirAll(filepath.Dir(cfg.Output), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(cfg.Output, []byte(ics.Render(events, time.Now())), 0644); err != nil {
		return fmt.Errorf("error saving ICS file: %w", err)
	}

	log.Printf("Generated %s with %d events", cfg.Output, len(events))
	return nil
}

// syncGoogleCalendarOnly pushes the shared schedule into Google Calendar.
func syncGoogleCalendarOnly(ctx context.Context, cfg Config) error {
	log.Println("Syncing the training schedule to Google Calendar...")
	if cfg.GoogleCalendarID == "" {
		return errors.New("GOOGLE_CALENDAR_ID is not set")
	}

	_, trainings, _, _ := newStores(cfg.DataDir)
	days, err := trainings.Load(models.SharedScope)
	if err != nil {
		return fmt.Errorf("failed to load trainings: %w", err)
	}

	log.Println("Authenticating with Google Calendar...")
	srv, err := getCalendarService(ctx, cfg.GoogleServiceAccount)
	if err != nil {
		return fmt.Errorf("failed to authenticate with Google Calendar: %w", err)
	}

	events := ics.BuildEvents(days, nil, ics.Location())
	stats, err := syncTrainingEvents(ctx, srv, cfg.GoogleCalendarID, events, time.Now())
	if err != nil {
		return fmt.Errorf("failed to sync events with Google Calendar: %w", err)
	}

	log.Printf("✓ Google Calendar sync completed: %d created, %d updated, %d deleted, %d unchanged",
		stats.Created, stats.Updated, stats.Deleted, stats.Unchanged)
	return nil
}
