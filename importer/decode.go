package importer

import (
	"encoding/json"
	"strings"
)

// trainingDay mirrors the model's output, which is looser than the stored
// format: tempos may be a list or a comma separated string and text fields
// may be null or numbers.
type trainingDay struct {
	Date    string          `json:"date"`
	Entries []trainingEntry `json:"entries"`
}

type trainingEntry struct {
	Title    looseString `json:"title"`
	Activity looseString `json:"activity"`
	Distance looseString `json:"distance"`
	Notes    looseString `json:"notes"`
	Tempos   tempoList   `json:"tempos"`
}

type looseString string

func (l *looseString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*l = looseString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*l = looseString(n.String())
		return nil
	}
	*l = ""
	return nil
}

type tempoList []string

func (t *tempoList) UnmarshalJSON(data []byte) error {
	var list []any
	if err := json.Unmarshal(data, &list); err == nil {
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, strings.TrimSpace(s))
			}
		}
		*t = out
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parts := strings.Split(s, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		*t = parts
		return nil
	}
	*t = nil
	return nil
}
