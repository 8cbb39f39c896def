package models

import "time"

type PlanStep struct {
	Description string `json:"description"`
}

// Plan is the ordered scaffolding generated before the final answer.
type Plan struct {
	Steps []PlanStep `json:"steps"`
}

// Answer carries every stage of one answered question.
type Answer struct {
	Question      string `json:"question"`
	Plan          Plan   `json:"plan"`
	RawCompletion string `json:"raw_completion"`
	// Content is the sanitized answer body.
	Content string `json:"content"`
	// Text is Content with the answer label prepended; this is what users see.
	Text string `json:"text"`
}

// Exchange is one entry of a session's question/answer history.
type Exchange struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}
