// Package importer turns a pasted CSV training schedule into training days by
// asking an OpenAI chat model to restructure it.
package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sparta-training/models"
	"sparta-training/paces"
	"sparta-training/storage"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-5.2"
)

var (
	ErrNoAPIKey   = errors.New("OPENAI_API_KEY is not configured on the server")
	ErrEmptyCSV   = errors.New("please paste CSV data before submitting")
	ErrNoTraining = errors.New("no trainings returned from the CSV")
)

const systemPrompt = "You convert training schedules from CSV into JSON grouped by date."

var instructions = []string{
	"Input is CSV text with columns like Date, Activity, Distance, Notes.",
	`Return strictly JSON with this shape: {"trainings":[{"date":"YYYY-MM-DD","entries":[{"title":"string","activity":"string","distance":"string","notes":"string","tempos":["3K","5K","10K","Half Marathon","Marathon","Aerobe","Recovery"]}]}]}`,
	"Parse each row; put any extra columns into notes. Normalize date to YYYY-MM-DD.",
	`Fill "tempos" with zero or more of the allowed options based on the activity description; use an empty array if none apply.`,
	"Notes must be empty string unless the CSV explicitly has notes content for that row.",
	"Do not include any other text.",
	"CSV:",
}

// Client calls the chat completions endpoint.
type Client struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(apiKey, model string) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		APIKey:     apiKey,
		Model:      model,
		BaseURL:    DefaultBaseURL,
		HTTPClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// ParseCSV converts csvText into training days. Tempos are limited to the
// known labels, missing titles and notes become empty strings and every
// entry gets an ID.
func (c *Client) ParseCSV(ctx context.Context, csvText string) ([]models.TrainingDay, error) {
	csvText = strings.TrimSpace(csvText)
	if csvText == "" {
		return nil, ErrEmptyCSV
	}
	if c.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	content, err := c.complete(ctx, strings.Join(append(instructions, csvText), "\n"))
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Trainings *[]trainingDay `json:"trainings"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &parsed); err != nil || parsed.Trainings == nil {
		return nil, errors.New("OpenAI content was not in the expected format")
	}

	days := make([]models.TrainingDay, 0, len(*parsed.Trainings))
	for _, td := range *parsed.Trainings {
		day := models.TrainingDay{Date: td.Date, Entries: make([]models.TrainingEntry, 0, len(td.Entries))}
		for _, e := range td.Entries {
			day.Entries = append(day.Entries, models.TrainingEntry{
				Title:    string(e.Title),
				Activity: string(e.Activity),
				Distance: string(e.Distance),
				Notes:    string(e.Notes),
				Tempos:   paces.FilterLabels(e.Tempos),
			})
		}
		days = append(days, day)
	}
	if len(days) == 0 {
		return nil, ErrNoTraining
	}
	storage.AssignEntryIDs(days)
	return days, nil
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	body := map[string]any{
		"model":       c.Model,
		"temperature": 0,
		"messages": []map[string]any{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": prompt},
		},
		"response_format": map[string]string{"type": "json_object"},
	}
	bodyJSON, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.BaseURL, "/")+"/chat/completions", bytes.NewReader(bodyJSON))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("OpenAI request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("OpenAI request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var openAIResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &openAIResp); err != nil {
		return "", errors.New("OpenAI response was not valid JSON")
	}
	if len(openAIResp.Choices) == 0 || strings.TrimSpace(openAIResp.Choices[0].Message.Content) == "" {
		return "", errors.New("OpenAI response missing content")
	}
	return openAIResp.Choices[0].Message.Content, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
