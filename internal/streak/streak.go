// Package streak derives progress, streaks and calendar state from tracked habits.
// Every function is pure and recomputes from its inputs.
package streak

import (
	"github.com/julianstephens/thirty/internal/constants"
	"github.com/julianstephens/thirty/internal/models"
	"github.com/julianstephens/thirty/internal/utils"
)

// Progress is the number of habits completed out of the total on one day
type Progress struct {
	Completed int
	Total     int
}

// Percent is the completion ratio in [0, 100]; 0 when there are no habits
func (p Progress) Percent() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Completed) / float64(p.Total) * 100
}

// Ratio is Percent scaled to [0, 1]
func (p Progress) Ratio() float64 {
	return p.Percent() / 100
}

func ProgressOn(habits []models.TrackedHabit, date string) Progress {
	p := Progress{Total: len(habits)}
	for _, h := range habits {
		if h.CompletedOn(date) {
			p.Completed++
		}
	}
	return p
}

func TodayProgress(habits []models.TrackedHabit, today string) Progress {
	return ProgressOn(habits, today)
}

// DayStatus classifies date as empty, partial or full. No habits is empty.
func DayStatus(habits []models.TrackedHabit, date string) constants.DayStatus {
	p := ProgressOn(habits, date)
	switch {
	case p.Completed == 0:
		return constants.DayEmpty
	case p.Completed == p.Total:
		return constants.DayFull
	default:
		return constants.DayPartial
	}
}

func allCompleted(habits []models.TrackedHabit, date string) bool {
	if len(habits) == 0 {
		return false
	}
	for _, h := range habits {
		if !h.CompletedOn(date) {
			return false
		}
	}
	return true
}

// CurrentStreak counts consecutive fully-completed days walking back from
// today, looking at most ChallengeDays days. An incomplete today does not end
// the scan: it adds nothing and the walk continues from yesterday. Any other
// incomplete day ends it.
func CurrentStreak(habits []models.TrackedHabit, today string) (int, error) {
	streak := 0
	for i := 0; i < constants.ChallengeDays; i++ {
		date, err := utils.AddDays(today, -i)
		if err != nil {
			return 0, err
		}

		if allCompleted(habits, date) {
			streak++
		} else if i > 0 {
			break
		}
	}
	return streak, nil
}

// CalendarWindow returns the ChallengeDays consecutive dates starting at startDate
func CalendarWindow(startDate string) ([]string, error) {
	start, err := utils.ParseDate(startDate)
	if err != nil {
		return nil, err
	}

	days := make([]string, constants.ChallengeDays)
	for i := range days {
		days[i] = utils.FormatDate(start.AddDate(0, 0, i))
	}
	return days, nil
}

// Cell is one day of the challenge calendar
type Cell struct {
	Date     string
	Day      int // 1-based position in the window
	Status   constants.DayStatus
	IsToday  bool
	IsFuture bool // after today; not toggleable
}

func CalendarCells(habits []models.TrackedHabit, startDate, today string) ([]Cell, error) {
	window, err := CalendarWindow(startDate)
	if err != nil {
		return nil, err
	}

	cells := make([]Cell, len(window))
	for i, date := range window {
		cells[i] = Cell{
			Date:     date,
			Day:      i + 1,
			Status:   DayStatus(habits, date),
			IsToday:  date == today,
			IsFuture: date > today,
		}
	}
	return cells, nil
}

// DaysSinceStart is the whole days from startDate to today; negative before the start
func DaysSinceStart(startDate, today string) (int, error) {
	return utils.DaysBetween(startDate, today)
}

// DaysRemaining is max(0, ChallengeDays - daysSinceStart), capped at ChallengeDays
// while the challenge has not started yet
func DaysRemaining(startDate, today string) (int, error) {
	since, err := DaysSinceStart(startDate, today)
	if err != nil {
		return 0, err
	}
	return remaining(since), nil
}

func remaining(since int) int {
	if since < 0 {
		since = 0
	}
	return max(0, constants.ChallengeDays-since)
}

// CompletedDays counts the days a habit was completed
func CompletedDays(h models.TrackedHabit) int {
	return len(h.CompletedDays)
}

// Summary is everything a challenge view shows, computed in one pass
type Summary struct {
	Today          string
	StartDate      string
	Progress       Progress
	Streak         int
	DaysSinceStart int
	DaysRemaining  int
	Started        bool
	Finished       bool
	Calendar       []Cell
}

// ChallengeDay is the 1-based day of the challenge today falls on, 0 outside the window
func (s Summary) ChallengeDay() int {
	if !s.Started || s.DaysSinceStart >= constants.ChallengeDays {
		return 0
	}
	return s.DaysSinceStart + 1
}

func Summarize(habits []models.TrackedHabit, startDate, today string) (Summary, error) {
	since, err := DaysSinceStart(startDate, today)
	if err != nil {
		return Summary{}, err
	}
	streak, err := CurrentStreak(habits, today)
	if err != nil {
		return Summary{}, err
	}
	cells, err := CalendarCells(habits, startDate, today)
	if err != nil {
		return Summary{}, err
	}

	return Summary{
		Today:          today,
		StartDate:      startDate,
		Progress:       TodayProgress(habits, today),
		Streak:         streak,
		DaysSinceStart: since,
		DaysRemaining:  remaining(since),
		Started:        since >= 0,
		Finished:       since >= constants.ChallengeDays,
		Calendar:       cells,
	}, nil
}
