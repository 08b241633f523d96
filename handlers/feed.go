package handlers

import (
	"io"
	"net/http"

	"sparta-training/ics"
	"sparta-training/models"
	"sparta-training/paces"
)

// HandleFeed serves the shared schedule as an iCalendar feed. It needs no
// login; ?athlete=<id> adds that athlete's paces to the descriptions.
func (d *Deps) HandleFeed(w http.ResponseWriter, r *http.Request) {
	days, err := d.Trainings.Load(models.SharedScope)
	if err != nil {
		d.logf("[ERROR] Failed to load trainings for feed: %v", err)
		http.Error(w, "Failed to load trainings", http.StatusInternalServerError)
		return
	}

	var tempoPaces paces.TempoMap
	if athleteID := r.URL.Query().Get("athlete"); athleteID != "" {
		tempoPaces = paces.ResolveTempoPaces(models.AthleteSettings{}, athleteID, d.Settings)
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="spartaone-training.ics"`)
	io.WriteString(w, ics.Render(ics.BuildEvents(days, tempoPaces, ics.Location()), d.now()))
}
