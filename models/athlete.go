package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Athlete is the subset of the Strava profile the club keeps on disk.
type Athlete struct {
	ID        string `json:"id"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Username  string `json:"username"`
	City      string `json:"city"`
	Country   string `json:"country"`
	Profile   string `json:"profile"`
}

// UnmarshalJSON accepts the id as either a JSON number (Strava) or a string.
func (a *Athlete) UnmarshalJSON(data []byte) error {
	type plain Athlete
	var aux struct {
		plain
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*a = Athlete(aux.plain)
	a.ID = string(bytes.Trim(bytes.TrimSpace(aux.ID), `"`))
	if a.ID == "null" {
		a.ID = ""
	}
	return nil
}

// FullName joins first and last name.
func (a Athlete) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}
