package importer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatServer(t *testing.T, content string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "test-model", body["model"])
		assert.Equal(t, map[string]any{"type": "json_object"}, body["response_format"])

		if status != http.StatusOK {
			http.Error(w, "rate limited", status)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": content}}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(url string) *Client {
	c := NewClient("test-key", "test-model")
	c.BaseURL = url
	return c
}

func TestParseCSVNormalizesEntries(t *testing.T) {
	content := `{"trainings":[
		{"date":"2024-03-04","entries":[
			{"activity":"Intervals","distance":8,"notes":null,"tempos":"10K, 5K, Sprint, 10K"},
			{"title":"Long run","activity":"Duurloop","distance":"16 km","notes":"rustig","tempos":["Aerobe","Recovery","Aeroob"]}
		]},
		{"date":"2024-03-06"}
	]}`
	srv := chatServer(t, content, http.StatusOK)

	days, err := newTestClient(srv.URL).ParseCSV(context.Background(), "Date,Activity\n2024-03-04,Intervals")
	require.NoError(t, err)
	require.Len(t, days, 2)

	first := days[0].Entries[0]
	assert.Equal(t, "", first.Title)
	assert.Equal(t, "8", first.Distance)
	assert.Equal(t, "", first.Notes)
	assert.Equal(t, []string{"10K", "5K"}, first.Tempos)
	assert.NotEmpty(t, first.ID)

	second := days[0].Entries[1]
	assert.Equal(t, "Long run", second.Title)
	assert.Equal(t, []string{"Aerobe", "Recovery"}, second.Tempos)
	assert.NotEqual(t, first.ID, second.ID)

	assert.Equal(t, "2024-03-06", days[1].Date)
	assert.Empty(t, days[1].Entries)
}

func TestParseCSVStripsCodeFence(t *testing.T) {
	srv := chatServer(t, "```json\n{\"trainings\":[{\"date\":\"2024-03-04\",\"entries\":[]}]}\n```", http.StatusOK)
	days, err := newTestClient(srv.URL).ParseCSV(context.Background(), "a,b")
	require.NoError(t, err)
	assert.Len(t, days, 1)
}

func TestParseCSVErrors(t *testing.T) {
	ctx := context.Background()

	_, err := NewClient("", "").ParseCSV(ctx, "a,b")
	assert.ErrorIs(t, err, ErrNoAPIKey)

	_, err = NewClient("test-key", "").ParseCSV(ctx, "   ")
	assert.ErrorIs(t, err, ErrEmptyCSV)

	srv := chatServer(t, `{"trainings":[]}`, http.StatusOK)
	_, err = newTestClient(srv.URL).ParseCSV(ctx, "a,b")
	assert.ErrorIs(t, err, ErrNoTraining)

	srv = chatServer(t, `{"schedule":[]}`, http.StatusOK)
	_, err = newTestClient(srv.URL).ParseCSV(ctx, "a,b")
	assert.EqualError(t, err, "OpenAI content was not in the expected format")

	srv = chatServer(t, "", http.StatusTooManyRequests)
	_, err = newTestClient(srv.URL).ParseCSV(ctx, "a,b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestDefaults(t *testing.T) {
	c := NewClient("k", "")
	assert.Equal(t, DefaultModel, c.Model)
	assert.Equal(t, DefaultBaseURL, c.BaseURL)
	assert.NotNil(t, c.HTTPClient)
}
