package model

import (
	"time"
)

// Quiz is the stored form of a quiz. The answer key and the author are never
// serialized; clients only ever see the projection (id, title, text, options).
type Quiz struct {
	ID      int64    `json:"id"`
	Title   string   `json:"title"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
	Answer  []int    `json:"-"` // empty/absent = only an empty submission is correct

	AuthorID    int64     `json:"-"` // immutable after creation
	AuthorEmail string    `json:"-"` // joined from users for ownership checks
	CreatedAt   time.Time `json:"-"`
}
