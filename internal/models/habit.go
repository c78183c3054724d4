package models

import (
	"strings"

	"github.com/julianstephens/thirty/internal/constants"
)

// Habit is a setup-phase habit: what the user commits to track
type Habit struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Emoji    string             `json:"emoji"`
	Category constants.Category `json:"category"`
}

// ParseCategory maps free text to a known category; anything unknown is custom
func ParseCategory(s string) constants.Category {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, c := range constants.Categories {
		if string(c) == s {
			return c
		}
	}
	return constants.CategoryCustom
}

// DefaultHabits returns the starter set offered before a plan exists
func DefaultHabits() []Habit {
	return []Habit{
		{ID: "1", Name: "Daily Workout", Emoji: "💪", Category: constants.CategoryFitness},
		{ID: "2", Name: "No Junk Food", Emoji: "🥗", Category: constants.CategoryNutrition},
		{ID: "3", Name: "No Alcohol", Emoji: "🚫", Category: constants.CategoryWellness},
		{ID: "4", Name: "No Smoking", Emoji: "🚭", Category: constants.CategoryWellness},
		{ID: "5", Name: "Learn 1hr/day", Emoji: "📚", Category: constants.CategoryGrowth},
		{ID: "6", Name: "Deep Work 2hrs", Emoji: "⚡", Category: constants.CategoryProductivity},
		{ID: "7", Name: "Read Before Bed", Emoji: "📖", Category: constants.CategoryGrowth},
		{ID: "8", Name: "Fixed Sleep Schedule", Emoji: "😴", Category: constants.CategoryWellness},
	}
}

// FindHabit looks a habit up by id, then by case-insensitive name
func FindHabit(habits []Habit, ref string) (Habit, bool) {
	for _, h := range habits {
		if h.ID == ref {
			return h, true
		}
	}
	for _, h := range habits {
		if strings.EqualFold(h.Name, ref) {
			return h, true
		}
	}
	return Habit{}, false
}
