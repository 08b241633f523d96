package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the runtime configuration. Values come from flags, then the
// environment, then an optional .env file, then defaults.
type Config struct {
	StravaClientID       string
	StravaClientSecret   string
	StravaRedirectURI    string
	OpenAIKey            string
	OpenAIModel          string
	Port                 string
	DataDir              string
	AdminIDs             []string
	CSRFKey              string
	LogFile              string
	GoogleCalendarID     string
	GoogleServiceAccount string
	TimeZone             string
	Output               string
}

var configDefaults = map[string]string{
	"port":                "8080",
	"data_dir":            "data",
	"strava_redirect_uri": "http://localhost:8080/auth/callback",
	"timezone":            "Europe/Amsterdam",
	"output":              "output/calendar.ics",
}

// loadConfig parses args (without the subcommand) and resolves every key.
func loadConfig(args []string) (Config, error) {
	fs := pflag.NewFlagSet("sparta-training", pflag.ContinueOnError)
	fs.String("env-file", ".env", "dotenv file with KEY=value lines")
	fs.String("port", configDefaults["port"], "HTTP listen port")
	fs.String("data-dir", configDefaults["data_dir"], "directory holding the JSON stores")
	fs.String("log-file", "", "also write logs to this rotating file")
	fs.String("output", configDefaults["output"], "ics: file to write the calendar to")
	fs.String("calendar-id", "", "gcal: Google Calendar to sync into")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	v := viper.New()
	for key, value := range configDefaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	for key, flag := range map[string]string{
		"port":               "port",
		"data_dir":           "data-dir",
		"log_file":           "log-file",
		"output":             "output",
		"google_calendar_id": "calendar-id",
	} {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return Config{}, fmt.Errorf("failed to bind flag %s: %w", flag, err)
		}
	}

	envFile, _ := fs.GetString("env-file")
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			v.SetConfigFile(envFile)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return Config{}, fmt.Errorf("failed to read %s: %w", envFile, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to stat %s: %w", envFile, err)
		}
	}

	return Config{
		StravaClientID:       v.GetString("strava_client_id"),
		StravaClientSecret:   v.GetString("strava_client_secret"),
		StravaRedirectURI:    v.GetString("strava_redirect_uri"),
		OpenAIKey:            v.GetString("openai_api_key"),
		OpenAIModel:          v.GetString("openai_model"),
		Port:                 v.GetString("port"),
		DataDir:              v.GetString("data_dir"),
		AdminIDs:             splitList(v.GetString("admin_ids")),
		CSRFKey:              v.GetString("csrf_key"),
		LogFile:              v.GetString("log_file"),
		GoogleCalendarID:     v.GetString("google_calendar_id"),
		GoogleServiceAccount: v.GetString("google_service_account"),
		TimeZone:             v.GetString("timezone"),
		Output:               v.GetString("output"),
	}, nil
}

// splitList splits a comma or whitespace separated list, dropping blanks.
func splitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}
