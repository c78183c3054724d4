package models

import "time"

// Plan commits a user to a habit set and a start date. It is written once and never edited.
type Plan struct {
	UserID    string    `json:"userId"`
	Habits    []Habit   `json:"habits"`
	StartDate string    `json:"startDate"` // YYYY-MM-DD format
	CreatedAt time.Time `json:"createdAt"`
}
