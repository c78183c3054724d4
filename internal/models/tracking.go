package models

import (
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// DaySet is a set of YYYY-MM-DD dates. It serializes as a sorted JSON array.
type DaySet map[string]struct{}

// NewDaySet builds a set from the given days, dropping duplicates
func NewDaySet(days ...string) DaySet {
	s := make(DaySet, len(days))
	for _, d := range days {
		s[d] = struct{}{}
	}
	return s
}

func (s DaySet) Has(day string) bool {
	_, ok := s[day]
	return ok
}

func (s *DaySet) Add(day string) {
	if *s == nil {
		*s = make(DaySet)
	}
	(*s)[day] = struct{}{}
}

func (s DaySet) Remove(day string) {
	delete(s, day)
}

// Toggle flips membership of day and reports whether it is now present
func (s *DaySet) Toggle(day string) bool {
	if s.Has(day) {
		s.Remove(day)
		return false
	}
	s.Add(day)
	return true
}

// Sorted returns the days in ascending order
func (s DaySet) Sorted() []string {
	days := make([]string, 0, len(s))
	for d := range s {
		days = append(days, d)
	}
	sort.Strings(days)
	return days
}

func (s DaySet) Clone() DaySet {
	c := make(DaySet, len(s))
	for d := range s {
		c[d] = struct{}{}
	}
	return c
}

func (s DaySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *DaySet) UnmarshalJSON(data []byte) error {
	var days []string
	if err := json.Unmarshal(data, &days); err != nil {
		return err
	}
	*s = NewDaySet(days...)
	return nil
}

func (s DaySet) String() string {
	return "{" + strings.Join(s.Sorted(), ", ") + "}"
}

// TrackedHabit is a plan habit together with the days it was completed
type TrackedHabit struct {
	Habit
	CompletedDays DaySet `json:"completedDays"`
}

// NewTrackedHabit starts tracking h with no completed days
func NewTrackedHabit(h Habit) TrackedHabit {
	return TrackedHabit{Habit: h, CompletedDays: NewDaySet()}
}

// CompletedOn reports whether the habit was completed on day
func (t TrackedHabit) CompletedOn(day string) bool {
	return t.CompletedDays.Has(day)
}

// TrackingRecord is the persisted tracking state of one user
type TrackingRecord struct {
	Habits      []TrackedHabit `json:"habits"`
	LastUpdated time.Time      `json:"lastUpdated"`
}

// NewTrackingRecord copies the plan habits with empty completion sets
func NewTrackingRecord(habits []Habit, now time.Time) TrackingRecord {
	tracked := make([]TrackedHabit, len(habits))
	for i, h := range habits {
		tracked[i] = NewTrackedHabit(h)
	}
	return TrackingRecord{Habits: tracked, LastUpdated: now}
}
