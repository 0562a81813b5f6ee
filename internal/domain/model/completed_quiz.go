package model

import (
	"time"
)

// CompletedQuiz records that a user successfully answered a quiz. The quiz id
// is a copy taken at completion time, so the record outlives quiz deletion.
// Repeat completions of the same quiz append new records.
type CompletedQuiz struct {
	CompletionID string    `json:"-"` // system-assigned, distinct from the quiz id
	QuizID       int64     `json:"id"`
	CompletedAt  time.Time `json:"completedAt"`
	UserID       int64     `json:"-"`
}
