// Package tracker records which plan habits were completed on which days.
package tracker

import (
	"fmt"

	"github.com/julianstephens/thirty/internal/clock"
	apperrors "github.com/julianstephens/thirty/internal/errors"
	"github.com/julianstephens/thirty/internal/logger"
	"github.com/julianstephens/thirty/internal/models"
	"github.com/julianstephens/thirty/internal/storage"
	"github.com/julianstephens/thirty/internal/utils"
)

// Toggle describes the outcome of flipping one habit on one day
type Toggle struct {
	HabitID   string
	Date      string
	Found     bool
	Completed bool // habit is complete on Date after the flip
	Celebrate bool // Date is today and the habit just went incomplete -> complete
}

type Tracker struct {
	records *storage.Records
	clock   clock.Clock
}

func New(records *storage.Records, clk clock.Clock) *Tracker {
	return &Tracker{records: records, clock: clk}
}

// Load returns the tracked habits; empty when nothing is stored or the record is malformed
func (t *Tracker) Load(userID string) ([]models.TrackedHabit, error) {
	rec, err := t.records.Tracking(userID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return []models.TrackedHabit{}, nil
	}
	for i := range rec.Habits {
		if rec.Habits[i].CompletedDays == nil {
			rec.Habits[i].CompletedDays = models.NewDaySet()
		}
	}
	return rec.Habits, nil
}

// Toggle flips completion of habitID on date and persists the whole
// collection. An unknown habit id changes nothing.
func (t *Tracker) Toggle(userID, habitID, date string) ([]models.TrackedHabit, Toggle, error) {
	return t.update(userID, habitID, date, func(days *models.DaySet) bool {
		return days.Toggle(date)
	})
}

// Mark sets the habit complete on date; already-complete is a no-op write
func (t *Tracker) Mark(userID, habitID, date string) ([]models.TrackedHabit, Toggle, error) {
	return t.update(userID, habitID, date, func(days *models.DaySet) bool {
		days.Add(date)
		return true
	})
}

// Unmark clears completion of the habit on date
func (t *Tracker) Unmark(userID, habitID, date string) ([]models.TrackedHabit, Toggle, error) {
	return t.update(userID, habitID, date, func(days *models.DaySet) bool {
		days.Remove(date)
		return false
	})
}

func (t *Tracker) update(userID, habitID, date string, apply func(*models.DaySet) bool) ([]models.TrackedHabit, Toggle, error) {
	result := Toggle{HabitID: habitID, Date: date}

	if !utils.ValidateDate(date) {
		return nil, result, apperrors.Invalidf("date", apperrors.ErrInvalidDate, "invalid date %q (expected YYYY-MM-DD)", date)
	}

	habits, err := t.Load(userID)
	if err != nil {
		return nil, result, err
	}

	idx := -1
	for i := range habits {
		if habits[i].ID == habitID {
			idx = i
			break
		}
	}
	if idx < 0 {
		logger.Debug("Toggle for unknown habit ignored", "user", userID, "habit", habitID)
		return habits, result, nil
	}

	before := habits[idx].CompletedOn(date)
	result.Found = true
	result.Completed = apply(&habits[idx].CompletedDays)
	result.Celebrate = !before && result.Completed && date == utils.FormatDate(t.clock.Now())

	rec := models.TrackingRecord{Habits: habits, LastUpdated: t.clock.Now().UTC()}
	if err := t.records.SaveTracking(userID, rec); err != nil {
		return nil, result, fmt.Errorf("failed to save tracking: %w", err)
	}
	return habits, result, nil
}
