package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"sparta-training/models"
	"sparta-training/paces"
)

// TemposData is the template data for the tempos page.
type TemposData struct {
	Page
	BasePaceInput string
	SliderValue   int
	HasBase       bool
	Selected      *paces.PaceRow
	Table         []paces.PaceRow
	MinSeconds    int
	MaxSeconds    int
	PaceError     string
}

// HandleTempos shows the athlete's base pace and the paces derived from it.
func (d *Deps) HandleTempos(w http.ResponseWriter, r *http.Request) {
	athleteID := sessionFrom(r.Context()).Athlete.ID
	settings, err := d.Settings.Load(athleteID)
	if err != nil {
		d.logf("[ERROR] Failed to load settings for athlete %s: %v", athleteID, err)
	}
	d.renderTempos(w, r, http.StatusOK, settings, "")
}

// HandleTemposPost stores a new base pace, either as seconds from the slider
// or as mm:ss text.
func (d *Deps) HandleTemposPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	athleteID := sessionFrom(r.Context()).Athlete.ID
	settings, err := d.Settings.Load(athleteID)
	if err != nil {
		d.logf("[ERROR] Failed to load settings for athlete %s: %v", athleteID, err)
	}

	var seconds int
	if r.PostForm.Has("base_pace_seconds") {
		seconds, _ = strconv.Atoi(strings.TrimSpace(r.PostFormValue("base_pace_seconds")))
		if err := paces.ValidateBaseSeconds(seconds); err != nil {
			d.renderTempos(w, r, http.StatusUnprocessableEntity, settings, paces.Message(err))
			return
		}
		settings.BasePaceInput = paces.FormatSecondsToPace(seconds)
	} else {
		input := strings.TrimSpace(r.PostFormValue("base_pace"))
		seconds, err = paces.ParsePaceToSeconds(input)
		if err != nil {
			settings.BasePaceInput = input
			d.renderTempos(w, r, http.StatusUnprocessableEntity, settings, paces.Message(err))
			return
		}
		settings.BasePaceInput = input
	}
	settings.BasePaceSeconds = &seconds

	if err := d.Settings.Save(athleteID, settings); err != nil {
		d.logf("[ERROR] Failed to save settings for athlete %s: %v", athleteID, err)
		d.renderTempos(w, r, http.StatusInternalServerError, settings, "Unable to save settings.")
		return
	}

	// Paces resolved by the middleware predate this change.
	ctx := paces.NewContext(r.Context(), paces.ResolveTempoPaces(settings, athleteID, d.Settings))
	d.renderTempos(w, r.WithContext(ctx), http.StatusOK, settings, "")
}

func (d *Deps) renderTempos(w http.ResponseWriter, r *http.Request, status int, settings models.AthleteSettings, paceErr string) {
	data := TemposData{
		Page:        d.page(r, "tempos"),
		Table:       paces.Table(),
		MinSeconds:  paces.MinBaseSeconds,
		MaxSeconds:  paces.MaxBaseSeconds,
		SliderValue: paces.Table()[0].BaseSeconds,
		PaceError:   paceErr,
	}

	if settings.BasePaceSeconds != nil {
		data.BasePaceInput = paces.FormatSecondsToPace(*settings.BasePaceSeconds)
	}
	if data.BasePaceInput == "" || paceErr != "" {
		data.BasePaceInput = settings.BasePaceInput
	}

	if base, ok := paces.ComputeBasePaceSeconds(settings); ok {
		data.HasBase = true
		data.SliderValue = base
		if row, ok := paces.FindNearestRow(data.Table, base); ok {
			data.Selected = &row
		}
	}
	d.renderStatus(w, status, "tempos.html", data)
}
