package tmpl

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"time"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"sparta-training/goals"
	"sparta-training/ics"
	"sparta-training/models"
	"sparta-training/paces"
)

//go:embed templates/*.html
var files embed.FS

// Raw HTML in notes is escaped because WithUnsafe is not set.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// timeNow is a variable for testability.
var timeNow = time.Now

// Templates holds all page templates, keyed by page name.
type Templates struct {
	pages map[string]*template.Template
}

// ExecuteTemplate renders a page through the layout.
func (t *Templates) ExecuteTemplate(w io.Writer, name string, data any) error {
	tmpl, ok := t.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	return tmpl.ExecuteTemplate(w, "layout", data)
}

// Load parses the embedded templates. Each page gets its own clone of the
// layout so {{define "content"}} doesn't collide.
func Load() *Templates {
	base := template.Must(
		template.New("base").Funcs(FuncMap()).ParseFS(files, "templates/layout.html"),
	)

	pageFiles, err := fs.Glob(files, "templates/*.html")
	if err != nil {
		panic("failed to glob page templates: " + err.Error())
	}

	pages := map[string]*template.Template{}
	for _, f := range pageFiles {
		name := path.Base(f)
		if name == "layout.html" {
			continue
		}
		clone, err := base.Clone()
		if err != nil {
			panic("failed to clone base template: " + err.Error())
		}
		template.Must(clone.ParseFS(files, f))
		pages[name] = clone
	}
	return &Templates{pages: pages}
}

// DayCard is what the training-day partial renders.
type DayCard struct {
	Day        models.TrainingDay
	TempoPaces paces.TempoMap
	IsAdmin    bool
	Heading    string
}

// FuncMap returns the helpers available to every template.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"formatPace": paces.FormatSecondsToPace,
		"paceOf": func(m paces.TempoMap, label string) string {
			return m[label]
		},
		"markdown":  renderMarkdown,
		"shortDate": ShortDate,
		"location":  ics.SessionLocation,
		"daysLabel": func(g models.Goal) string {
			return goals.DaysLabel(g, timeNow())
		},
		"dayCard": func(day models.TrainingDay, m paces.TempoMap, isAdmin bool) DayCard {
			return DayCard{Day: day, TempoPaces: m, IsAdmin: isAdmin, Heading: DayHeading(day.Date)}
		},
		"json": func(v any) template.JS {
			b, _ := json.Marshal(v)
			return template.JS(b)
		},
	}
}

func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

var weekdayShort = [...]string{"Zo", "Ma", "Di", "Wo", "Do", "Vr", "Za"}

// ShortDate formats a YYYY-MM-DD date as "Ma 04-03-2024".
func ShortDate(date string) string {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return weekdayShort[d.Weekday()] + " " + d.Format("02-01-2006")
}

// DayHeading names a training day relative to today.
func DayHeading(date string) string {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return ""
	}
	today := timeNow()
	switch date {
	case today.Format("2006-01-02"):
		return "Training van vandaag"
	case today.AddDate(0, 0, 1).Format("2006-01-02"):
		return "Training van morgen"
	case today.AddDate(0, 0, 2).Format("2006-01-02"):
		return "Training van overmorgen"
	}
	return "Training op " + ShortDate(date)
}
