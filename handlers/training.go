package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"sparta-training/importer"
	"sparta-training/models"
	"sparta-training/paces"
	"sparta-training/storage"
)

// TrainingData is the template data for the training schedule page.
type TrainingData struct {
	Page
	Days     []models.TrainingDay
	Edit     *models.TrainingEntry
	EditDate string
	Labels   []string
	FeedURL  string
}

// HandleTraining shows the shared schedule. Admins get the import form and,
// with ?edit=<entry id>, the edit form for one entry.
func (d *Deps) HandleTraining(w http.ResponseWriter, r *http.Request) {
	d.renderTraining(w, r, http.StatusOK, "")
}

func (d *Deps) renderTraining(w http.ResponseWriter, r *http.Request, status int, errMsg string) {
	sess := sessionFrom(r.Context())
	data := TrainingData{
		Page:    d.page(r, "training"),
		Labels:  paces.Labels,
		FeedURL: feedURL(r, sess.Athlete.ID),
	}
	data.Error = errMsg

	days, err := d.Trainings.Load(models.SharedScope)
	if err != nil {
		d.logf("[ERROR] Failed to load trainings: %v", err)
		data.Error = "Unable to load trainings."
	}
	data.Days = days

	if editID := r.URL.Query().Get("edit"); editID != "" && data.IsAdmin {
		if entry := storage.FindEntry(days, editID); entry != nil {
			data.Edit = entry
			data.EditDate = entryDate(days, editID)
		} else if data.Error == "" {
			data.Error = "Training niet gevonden om te wijzigen."
		}
	}
	d.renderStatus(w, status, "training.html", data)
}

func entryDate(days []models.TrainingDay, entryID string) string {
	for _, day := range days {
		for _, e := range day.Entries {
			if e.ID == entryID {
				return day.Date
			}
		}
	}
	return ""
}

// HandleTrainingImport replaces the schedule with the trainings parsed from
// the pasted CSV.
func (d *Deps) HandleTrainingImport(w http.ResponseWriter, r *http.Request) {
	csvText := strings.TrimSpace(r.PostFormValue("training_csv"))
	if csvText == "" {
		d.renderTraining(w, r, http.StatusUnprocessableEntity, "Please paste CSV data before submitting.")
		return
	}
	if d.Importer == nil {
		d.renderTraining(w, r, http.StatusServiceUnavailable, "OPENAI_API_KEY is not configured on the server.")
		return
	}

	days, err := d.Importer.ParseCSV(r.Context(), csvText)
	if err != nil {
		d.logf("[ERROR] CSV import failed: %v", err)
		d.renderTraining(w, r, http.StatusBadGateway, importMessage(err))
		return
	}
	if err := d.Trainings.Save(models.SharedScope, days); err != nil {
		d.logf("[ERROR] Failed to save trainings: %v", err)
		d.renderTraining(w, r, http.StatusInternalServerError, "Unable to save trainings.")
		return
	}
	d.logf("[SYNC] Imported %d training days", len(days))
	d.flash(w, r, "Training schedule saved.", "/training")
}

func importMessage(err error) string {
	switch {
	case errors.Is(err, importer.ErrNoAPIKey):
		return "OPENAI_API_KEY is not configured on the server."
	case errors.Is(err, importer.ErrEmptyCSV):
		return "Please paste CSV data before submitting."
	case errors.Is(err, importer.ErrNoTraining):
		return "No trainings returned from the CSV."
	default:
		return err.Error()
	}
}

// HandleTrainingEdit overwrites one entry's fields.
func (d *Deps) HandleTrainingEdit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	entryID := chi.URLParam(r, "id")

	var tempos []string
	for _, t := range r.PostForm["tempos"] {
		if t = strings.TrimSpace(t); t != "" {
			tempos = append(tempos, t)
		}
	}

	err := d.Trainings.UpdateEntry(models.SharedScope, entryID, func(e *models.TrainingEntry) {
		e.Title = strings.TrimSpace(r.PostFormValue("title"))
		e.Activity = strings.TrimSpace(r.PostFormValue("activity"))
		e.Distance = strings.TrimSpace(r.PostFormValue("distance"))
		e.Notes = strings.TrimSpace(r.PostFormValue("notes"))
		e.Tempos = paces.FilterLabels(tempos)
	})
	switch {
	case errors.Is(err, storage.ErrEntryNotFound), errors.Is(err, storage.ErrInvalidKey):
		d.renderTraining(w, r, http.StatusNotFound, "Training niet gevonden om te wijzigen.")
	case err != nil:
		d.logf("[ERROR] Failed to update training %s: %v", entryID, err)
		d.renderTraining(w, r, http.StatusInternalServerError, "Unable to save updated training.")
	default:
		d.flash(w, r, "Training bijgewerkt.", "/training")
	}
}

// feedURL is the calendar subscription link for an athlete.
func feedURL(r *http.Request, athleteID string) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	u := url.URL{Scheme: scheme, Host: r.Host, Path: "/training.ics"}
	if athleteID != "" {
		u.RawQuery = url.Values{"athlete": {athleteID}}.Encode()
	}
	return u.String()
}
