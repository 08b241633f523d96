// Package strava handles the Strava OAuth flow and the few API calls the club
// site needs: the logged-in athlete's profile and their latest activities.
package strava

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2"

	"sparta-training/models"
)

const (
	AuthURL  = "https://www.strava.com/oauth/authorize"
	TokenURL = "https://www.strava.com/api/v3/oauth/token"
	APIBase  = "https://www.strava.com/api/v3"
	Scope    = "read,activity:read"

	// refreshLeeway renews access tokens this long before they expire.
	refreshLeeway = 60 * time.Second
)

var ErrNotConfigured = errors.New("strava client credentials are not configured")

// Config holds the OAuth application credentials. Endpoint fields default to
// Strava's production URLs.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AuthURL      string
	TokenURL     string
	APIBase      string
}

// Activity is the subset of a Strava activity shown on the home page.
type Activity struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Type           string  `json:"type"`
	Distance       float64 `json:"distance"`
	MovingTime     int     `json:"moving_time"`
	StartDateLocal string  `json:"start_date_local"`
}

// DistanceKm returns the distance in kilometres.
func (a Activity) DistanceKm() float64 {
	return a.Distance / 1000
}

type Client struct {
	oauth   *oauth2.Config
	apiBase string
}

func NewClient(cfg Config) *Client {
	if cfg.AuthURL == "" {
		cfg.AuthURL = AuthURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = TokenURL
	}
	if cfg.APIBase == "" {
		cfg.APIBase = APIBase
	}
	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       []string{Scope},
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		apiBase: cfg.APIBase,
	}
}

// Configured reports whether codes can be exchanged for tokens.
func (c *Client) Configured() bool {
	return c.oauth.ClientID != "" && c.oauth.ClientSecret != ""
}

// AuthCodeURL returns the Strava authorize URL carrying state.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state, oauth2.SetAuthURLParam("approval_prompt", "auto"))
}

// Exchange trades an authorization code for tokens. Strava embeds the athlete
// profile in the token response; when it is missing the profile is fetched.
func (c *Client) Exchange(ctx context.Context, code string) (*oauth2.Token, models.Athlete, error) {
	if !c.Configured() {
		return nil, models.Athlete{}, ErrNotConfigured
	}
	tok, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, models.Athlete{}, fmt.Errorf("token request failed: %w", err)
	}

	if athlete, ok := athleteFromToken(tok); ok {
		return tok, athlete, nil
	}
	athlete, err := c.FetchAthlete(ctx, tok)
	if err != nil {
		return tok, models.Athlete{}, err
	}
	return tok, athlete, nil
}

func athleteFromToken(tok *oauth2.Token) (models.Athlete, bool) {
	raw := tok.Extra("athlete")
	if raw == nil {
		return models.Athlete{}, false
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return models.Athlete{}, false
	}
	var athlete models.Athlete
	if err := json.Unmarshal(data, &athlete); err != nil || athlete.ID == "" {
		return models.Athlete{}, false
	}
	return athlete, true
}

// Refresh returns a valid token for tok, renewing it when it expires within
// a minute. refreshed reports whether a new token was issued.
func (c *Client) Refresh(ctx context.Context, tok *oauth2.Token) (fresh *oauth2.Token, refreshed bool, err error) {
	if tok == nil {
		return nil, false, errors.New("no token")
	}
	if tok.RefreshToken == "" || !c.Configured() {
		return tok, false, nil
	}
	src := oauth2.ReuseTokenSourceWithExpiry(tok, c.oauth.TokenSource(ctx, tok), refreshLeeway)
	fresh, err = src.Token()
	if err != nil {
		return tok, false, fmt.Errorf("failed to refresh tokens: %w", err)
	}
	return fresh, fresh.AccessToken != tok.AccessToken, nil
}

// FetchAthlete retrieves the authenticated athlete's profile.
func (c *Client) FetchAthlete(ctx context.Context, tok *oauth2.Token) (models.Athlete, error) {
	var athlete models.Athlete
	if err := c.get(ctx, tok, "/athlete", nil, &athlete); err != nil {
		return models.Athlete{}, fmt.Errorf("fetching athlete failed: %w", err)
	}
	return athlete, nil
}

// FetchActivities retrieves the athlete's most recent activities.
func (c *Client) FetchActivities(ctx context.Context, tok *oauth2.Token, perPage int) ([]Activity, error) {
	if perPage <= 0 {
		perPage = 5
	}
	query := url.Values{"per_page": {strconv.Itoa(perPage)}}
	var activities []Activity
	if err := c.get(ctx, tok, "/athlete/activities", query, &activities); err != nil {
		return nil, fmt.Errorf("fetching activities failed: %w", err)
	}
	return activities, nil
}

// get makes an authenticated request to the Strava API and decodes the JSON
// body into v. The oauth2 transport refreshes expired tokens on the way.
func (c *Client) get(ctx context.Context, tok *oauth2.Token, path string, query url.Values, v any) error {
	endpoint := c.apiBase + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	client := c.oauth.Client(ctx, tok)
	client.Timeout = 15 * time.Second
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
