package handlers

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/gorilla/csrf"

	"sparta-training/models"
	"sparta-training/paces"
)

// Page is the data every template gets: navigation state, the logged-in
// athlete and any message for the banner.
type Page struct {
	Action     string
	Athlete    *models.Athlete
	IsAdmin    bool
	LoginURL   string
	CSRFField  template.HTML
	Message    string
	Error      string
	TempoPaces paces.TempoMap
}

func (d *Deps) page(r *http.Request, action string) Page {
	sess := sessionFrom(r.Context())
	p := Page{
		Action:     action,
		CSRFField:  csrf.TemplateField(r),
		Message:    sess.Flash,
		TempoPaces: paces.FromContext(r.Context()),
	}
	if sess.LoggedIn() {
		p.Athlete = sess.Athlete
		p.IsAdmin = d.isAdmin(sess.Athlete)
	}
	if d.Strava != nil {
		p.LoginURL = d.Strava.AuthCodeURL(sess.OAuthState)
	}
	return p
}

func (d *Deps) render(w http.ResponseWriter, name string, data any) {
	d.renderStatus(w, http.StatusOK, name, data)
}

func (d *Deps) renderStatus(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := d.Templates.ExecuteTemplate(&buf, name, data); err != nil {
		d.logf("[ERROR] Template %s: %v", name, err)
		http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
