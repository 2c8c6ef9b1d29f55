package models

import "time"

// ExplanationSettings captures the presentation preferences a generation
// request was made with.
type ExplanationSettings struct {
	Level    string `json:"level"`
	Tone     string `json:"tone"`
	Language string `json:"language"`
	Extras   string `json:"extras"`
}

// Explanation is one generated explanation owned by a user. Text may hold
// an error message reported by the generator; those are persisted like any
// other result.
type Explanation struct {
	ID        string              `json:"id"`
	UserID    string              `json:"userId"`
	Topic     string              `json:"topic"`
	Text      string              `json:"explanation"`
	Settings  ExplanationSettings `json:"settings"`
	CreatedAt time.Time           `json:"createdAt"`
}
