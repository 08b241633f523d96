package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"sparta-training/goals"
	"sparta-training/models"
	"sparta-training/paces"
	"sparta-training/strava"
)

// HomeData is the template data for the home page.
type HomeData struct {
	Page
	NextTraining    *models.TrainingDay
	UpcomingGoals   []models.Goal
	Activities      []strava.Activity
	ActivitiesError string
}

// HandleHome renders the landing page. Strava may also redirect back here
// with the authorization code.
func (d *Deps) HandleHome(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("code") != "" || q.Get("error") != "" {
		d.HandleCallback(w, r)
		return
	}
	d.renderHome(w, r, "")
}

func (d *Deps) renderHome(w http.ResponseWriter, r *http.Request, message string) {
	data := HomeData{Page: d.page(r, "home")}
	if message != "" {
		data.Message = message
	}

	sess := sessionFrom(r.Context())
	if sess.LoggedIn() {
		now := d.now()
		days, err := d.Trainings.Load(models.SharedScope)
		if err != nil {
			d.logf("[ERROR] Failed to load trainings: %v", err)
		}
		data.NextTraining = NextTrainingDay(days, now)

		list, err := d.Goals.Load(sess.Athlete.ID)
		if err != nil {
			d.logf("[ERROR] Failed to load goals for %s: %v", sess.Athlete.ID, err)
		}
		data.UpcomingGoals = goals.NextGoals(list, 3, now)

		if d.Strava != nil {
			activities, err := d.Strava.FetchActivities(r.Context(), sess.Token, 5)
			if err != nil {
				d.logf("[ERROR] %v", err)
				data.ActivitiesError = err.Error()
			}
			data.Activities = activities
		}
	}
	d.render(w, "home.html", data)
}

// NextTrainingDay returns the earliest day on or after today that has
// entries, or nil.
func NextTrainingDay(days []models.TrainingDay, now time.Time) *models.TrainingDay {
	today := now.Format("2006-01-02")
	var next *models.TrainingDay
	for i := range days {
		day := days[i]
		if len(day.Entries) == 0 {
			continue
		}
		if _, err := time.Parse("2006-01-02", day.Date); err != nil || day.Date < today {
			continue
		}
		if next == nil || day.Date < next.Date {
			next = &day
		}
	}
	return next
}

// AthleteRow is an athlete annotated for the athletes pages.
type AthleteRow struct {
	models.Athlete
	Pace10K  string
	Goals    []models.Goal
	NextGoal *models.Goal
}

// AthletesData is the template data for the athletes list.
type AthletesData struct {
	Page
	Athletes []AthleteRow
}

// HandleAthletes lists every athlete with their 10K pace and next goal.
func (d *Deps) HandleAthletes(w http.ResponseWriter, r *http.Request) {
	data := AthletesData{Page: d.page(r, "athletes")}
	rows, err := d.loadAthleteRows(r.Context())
	if err != nil {
		d.logf("[ERROR] Failed to load athletes: %v", err)
		data.Error = "Unable to load athletes."
	}
	data.Athletes = rows
	d.render(w, "athletes.html", data)
}

func (d *Deps) loadAthleteRows(ctx context.Context) ([]AthleteRow, error) {
	var (
		athletes []models.Athlete
		goalMap  map[string][]models.Goal
	)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		athletes, err = d.Athletes.LoadAll()
		return err
	})
	g.Go(func() error {
		var err error
		goalMap, err = d.Goals.LoadAll()
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := d.now()
	rows := make([]AthleteRow, len(athletes))
	var pg errgroup.Group
	pg.SetLimit(8)
	for i, a := range athletes {
		pg.Go(func() error {
			rows[i] = d.athleteRow(a, goalMap[a.ID], now)
			return nil
		})
	}
	pg.Wait()
	return rows, nil
}

func (d *Deps) athleteRow(a models.Athlete, list []models.Goal, now time.Time) AthleteRow {
	row := AthleteRow{Athlete: a, Pace10K: d.pace10K(a.ID), Goals: goals.NextGoals(list, 0, now)}
	if len(row.Goals) > 0 {
		row.NextGoal = &row.Goals[0]
	}
	return row
}

func (d *Deps) pace10K(athleteID string) string {
	settings, err := d.Settings.Load(athleteID)
	if err != nil {
		d.logf("[ERROR] Failed to load settings for athlete %s: %v", athleteID, err)
		return ""
	}
	base, ok := paces.ComputeBasePaceSeconds(settings)
	if !ok {
		return ""
	}
	row, ok := paces.FindNearestRow(paces.Table(), base)
	if !ok {
		return ""
	}
	return row.TenK
}

// AthleteDetailData is the template data for one athlete.
type AthleteDetailData struct {
	Page
	AthleteID string
	Detail    *AthleteRow
}

// HandleAthleteDetail shows one athlete's pace and upcoming goals.
func (d *Deps) HandleAthleteDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	data := AthleteDetailData{Page: d.page(r, "athletes"), AthleteID: id}

	athlete, found, err := d.Athletes.Get(id)
	if err != nil {
		d.logf("[ERROR] Failed to load athlete %s: %v", id, err)
	}
	if !found {
		d.renderStatus(w, http.StatusNotFound, "athlete.html", data)
		return
	}
	list, err := d.Goals.Load(id)
	if err != nil {
		d.logf("[ERROR] Failed to load goals for %s: %v", id, err)
	}
	row := d.athleteRow(athlete, list, d.now())
	data.Detail = &row
	d.render(w, "athlete.html", data)
}
