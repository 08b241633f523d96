package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"github.com/rs/cors"
)

// requestTimeout covers the CSV import, which waits on the OpenAI API.
const requestTimeout = 150 * time.Second

// Routes builds the site's router. Form posts are CSRF protected when
// csrfKey is set.
func (d *Deps) Routes(csrfKey []byte) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = log.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: logger, NoColor: true}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	// The feed is public and fetched by calendar apps, so it skips sessions.
	feedCORS := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodHead},
	})
	feed := feedCORS.Handler(http.HandlerFunc(d.HandleFeed))

	var mws chi.Middlewares
	if len(csrfKey) > 0 {
		mws = append(mws, plaintextHTTP, csrf.Protect(csrfKey, csrf.Path("/"), csrf.SameSite(csrf.SameSiteLaxMode)))
	}
	mws = append(mws, d.LoadSession)
	page := func(h http.HandlerFunc) http.Handler { return mws.HandlerFunc(h) }
	member := func(message string, h http.HandlerFunc) http.Handler { return page(d.requireLogin(message, h)) }

	training := member("Please log in to view the training schedule.", d.HandleTraining)

	r.Method(http.MethodGet, "/training.ics", feed)
	r.Method(http.MethodHead, "/training.ics", feed)
	r.Method(http.MethodGet, "/training", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Query().Get("format") == "ics" {
			feed.ServeHTTP(w, req)
			return
		}
		training.ServeHTTP(w, req)
	}))

	r.Method(http.MethodGet, "/", page(d.HandleHome))
	r.Method(http.MethodGet, "/login", page(d.HandleLogin))
	r.Method(http.MethodGet, "/auth/callback", page(d.HandleCallback))
	r.Method(http.MethodGet, "/logout", page(d.HandleLogout))

	r.Method(http.MethodGet, "/athletes", member("Please log in to view athletes.", d.HandleAthletes))
	r.Method(http.MethodGet, "/athletes/{id}", member("Please log in to view athletes.", d.HandleAthleteDetail))
	r.Method(http.MethodGet, "/goals", member("Please log in to edit goals.", d.HandleGoals))
	r.Method(http.MethodPost, "/goals", member("Please log in to edit goals.", d.HandleGoalsPost))
	r.Method(http.MethodPost, "/training/import", member("Please log in to view the training schedule.", d.admin(d.HandleTrainingImport)))
	r.Method(http.MethodPost, "/training/entries/{id}", member("Please log in to view the training schedule.", d.admin(d.HandleTrainingEdit)))
	r.Method(http.MethodGet, "/tempos", member("Please log in to view tempos.", d.HandleTempos))
	r.Method(http.MethodPost, "/tempos", member("Please log in to view tempos.", d.HandleTemposPost))

	return r
}

// plaintextHTTP tells the CSRF middleware when a request arrived without TLS
// so its origin checks don't assume https.
func plaintextHTTP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.TLS == nil && r.Header.Get("X-Forwarded-Proto") != "https" {
			r = csrf.PlaintextHTTPRequest(r)
		}
		next.ServeHTTP(w, r)
	})
}
