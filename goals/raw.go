package goals

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Raw is a goal as found on disk: either a bare string (legacy) or a record.
// Exactly one of Text or Record is meaningful; Record != nil selects it.
type Raw struct {
	Text   string
	Record *RawRecord
}

// RawRecord is a structured goal with the field-name variants seen in old files.
type RawRecord struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Goal        string `json:"goal"`
	TargetDate  string `json:"target_date"`
	Date        string `json:"date"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// PlainText builds a Raw holding a legacy string goal.
func PlainText(s string) Raw { return Raw{Text: s} }

// Structured builds a Raw holding a record.
func Structured(r RawRecord) Raw { return Raw{Record: &r} }

// UnmarshalJSON decodes either a JSON string or a JSON object.
func (r *Raw) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = Raw{}
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = PlainText(s)
		return nil
	case '{':
		var rec RawRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return err
		}
		*r = Structured(rec)
		return nil
	default:
		return fmt.Errorf("goal must be a string or an object, got %s", data)
	}
}
