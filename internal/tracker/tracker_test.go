package tracker

import (
	"errors"
	"testing"
	"time"

	"github.com/julianstephens/thirty/internal/clock"
	apperrors "github.com/julianstephens/thirty/internal/errors"
	"github.com/julianstephens/thirty/internal/models"
	"github.com/julianstephens/thirty/internal/storage"
)

var testNow = time.Date(2025, 3, 12, 18, 30, 0, 0, time.UTC)

func newTestTracker(t *testing.T) (*Tracker, *storage.Records) {
	t.Helper()
	records := storage.NewRecords(storage.NewMemoryStore())

	habits := models.DefaultHabits()[:2]
	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	p := models.Plan{UserID: "u1", Habits: habits, StartDate: "2025-03-10", CreatedAt: start}
	if err := records.CommitPlan(p, models.NewTrackingRecord(habits, start)); err != nil {
		t.Fatalf("CommitPlan failed: %v", err)
	}
	return New(records, clock.Fixed(testNow)), records
}

func TestLoad_Uninitialized(t *testing.T) {
	tr := New(storage.NewRecords(storage.NewMemoryStore()), clock.Fixed(testNow))

	habits, err := tr.Load("nobody")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if habits == nil || len(habits) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", habits)
	}
}

func TestLoad_Malformed(t *testing.T) {
	records := storage.NewRecords(storage.NewMemoryStore())
	if err := records.Backend().Put(storage.TrackingKey("u1"), []byte(`{"habits":"nope"}`)); err != nil {
		t.Fatal(err)
	}

	habits, err := New(records, clock.Fixed(testNow)).Load("u1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(habits) != 0 {
		t.Errorf("malformed record should read as empty, got %d habits", len(habits))
	}
}

func TestToggle_RoundTrip(t *testing.T) {
	tr, records := newTestTracker(t)

	habits, res, err := tr.Toggle("u1", "1", "2025-03-11")
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if !res.Found || !res.Completed {
		t.Errorf("expected found+completed, got %+v", res)
	}
	if res.Celebrate {
		t.Error("completing a past day should not celebrate")
	}
	if !habits[0].CompletedOn("2025-03-11") {
		t.Error("habit 1 should be complete on 2025-03-11")
	}

	stored, _ := records.Tracking("u1")
	if !stored.Habits[0].CompletedOn("2025-03-11") {
		t.Error("toggle was not persisted")
	}
	if !stored.LastUpdated.Equal(testNow) {
		t.Errorf("expected lastUpdated %v, got %v", testNow, stored.LastUpdated)
	}

	// toggling again restores the original state
	habits, res, err = tr.Toggle("u1", "1", "2025-03-11")
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if res.Completed {
		t.Error("second toggle should un-complete")
	}
	if len(habits[0].CompletedDays) != 0 {
		t.Errorf("expected no completed days, got %v", habits[0].CompletedDays)
	}
}

func TestToggle_CelebrateToday(t *testing.T) {
	tr, _ := newTestTracker(t)

	_, res, err := tr.Toggle("u1", "2", "2025-03-12")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Celebrate {
		t.Error("completing today should celebrate")
	}

	_, res, err = tr.Toggle("u1", "2", "2025-03-12")
	if err != nil {
		t.Fatal(err)
	}
	if res.Celebrate {
		t.Error("un-completing today should not celebrate")
	}
}

func TestToggle_UnknownHabit(t *testing.T) {
	tr, records := newTestTracker(t)
	before, _ := records.Tracking("u1")

	habits, res, err := tr.Toggle("u1", "999", "2025-03-12")
	if err != nil {
		t.Fatalf("unknown habit should not error: %v", err)
	}
	if res.Found {
		t.Error("expected Found=false for unknown habit")
	}
	if len(habits) != 2 {
		t.Errorf("expected the unchanged collection, got %d habits", len(habits))
	}

	after, _ := records.Tracking("u1")
	if !after.LastUpdated.Equal(before.LastUpdated) {
		t.Error("unknown habit toggle should not write")
	}
}

func TestToggle_InvalidDate(t *testing.T) {
	tr, _ := newTestTracker(t)

	_, _, err := tr.Toggle("u1", "1", "12/03/2025")
	if !errors.Is(err, apperrors.ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}
}

func TestToggle_SetSemantics(t *testing.T) {
	tr, _ := newTestTracker(t)

	for _, day := range []string{"2025-03-10", "2025-03-11", "2025-03-10"} {
		if _, _, err := tr.Mark("u1", "1", day); err != nil {
			t.Fatal(err)
		}
	}

	habits, err := tr.Load("u1")
	if err != nil {
		t.Fatal(err)
	}
	if got := habits[0].CompletedDays.Sorted(); len(got) != 2 {
		t.Errorf("expected 2 distinct days, got %v", got)
	}

	habits, res, err := tr.Unmark("u1", "1", "2025-03-10")
	if err != nil {
		t.Fatal(err)
	}
	if res.Completed || habits[0].CompletedOn("2025-03-10") {
		t.Error("Unmark should clear the day")
	}

	// unmarking an absent day is harmless
	if _, _, err := tr.Unmark("u1", "1", "2025-03-01"); err != nil {
		t.Fatal(err)
	}
}

func TestToggle_OtherHabitsUntouched(t *testing.T) {
	tr, _ := newTestTracker(t)

	if _, _, err := tr.Toggle("u1", "2", "2025-03-11"); err != nil {
		t.Fatal(err)
	}
	habits, _, err := tr.Toggle("u1", "1", "2025-03-11")
	if err != nil {
		t.Fatal(err)
	}
	if !habits[1].CompletedOn("2025-03-11") {
		t.Error("toggling habit 1 lost habit 2's completion")
	}
}
