package handlers

import (
	"net/http"
	"strings"

	"sparta-training/goals"
	"sparta-training/models"
)

// GoalsData is the template data for the goals page.
type GoalsData struct {
	Page
	Upcoming []models.Goal
	Stale    []models.Goal
}

// HandleGoals shows the logged-in athlete's goals.
func (d *Deps) HandleGoals(w http.ResponseWriter, r *http.Request) {
	d.renderGoals(w, r, "")
}

func (d *Deps) renderGoals(w http.ResponseWriter, r *http.Request, errMsg string) {
	sess := sessionFrom(r.Context())
	data := GoalsData{Page: d.page(r, "goals")}
	data.Error = errMsg

	list, err := d.Goals.Load(sess.Athlete.ID)
	if err != nil {
		d.logf("[ERROR] Failed to load goals for %s: %v", sess.Athlete.ID, err)
		data.Error = "Unable to load goals."
	}
	data.Upcoming, data.Stale = goals.Partition(list, d.now())

	status := http.StatusOK
	if errMsg != "" {
		status = http.StatusUnprocessableEntity
	}
	d.renderStatus(w, status, "goals.html", data)
}

// HandleGoalsPost adds, updates or deletes one goal of the logged-in athlete.
func (d *Deps) HandleGoalsPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	athleteID := sessionFrom(r.Context()).Athlete.ID
	now := d.now()

	list, err := d.Goals.Load(athleteID)
	if err != nil {
		d.logf("[ERROR] Failed to load goals for %s: %v", athleteID, err)
		d.renderGoals(w, r, "Unable to save goals.")
		return
	}

	description := strings.TrimSpace(r.PostFormValue("goal_description"))
	targetDate := r.PostFormValue("goal_target_date")
	goalID := r.PostFormValue("goal_id")

	var (
		updated []models.Goal
		success string
		action  string
	)
	switch r.PostFormValue("op") {
	case "add":
		updated, err = goals.Add(list, description, targetDate, now)
		success = "Goal toegevoegd."
	case "update":
		updated, err = goals.Update(list, goalID, description, targetDate, now)
		success, action = "Goal bijgewerkt.", "wijzigen"
	case "delete":
		updated, err = goals.Delete(list, goalID)
		success, action = "Goal verwijderd.", "verwijderen"
	default:
		http.Error(w, "Unknown goal operation", http.StatusBadRequest)
		return
	}
	if err != nil {
		d.renderGoals(w, r, goals.Message(err, action))
		return
	}

	if err := d.Goals.Save(athleteID, updated); err != nil {
		d.logf("[ERROR] Failed to save goals for %s: %v", athleteID, err)
		d.renderGoals(w, r, "Unable to save goals.")
		return
	}
	d.flash(w, r, success, "/goals")
}
