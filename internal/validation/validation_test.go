package validation

import (
	"reflect"
	"testing"
	"time"

	"github.com/julianstephens/thirty/internal/models"
	"github.com/julianstephens/thirty/internal/storage"
)

const bcryptHash = "$2a$12$abcdefghijklmnopqrstuuKq0mF1pQd9m6gO0W3yYbQnQ3m0Kf3yK"

var created = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

func user(id, email, hash string) models.UserRecord {
	return models.UserRecord{
		User:         models.User{ID: id, Email: email, Name: id, CreatedAt: created},
		PasswordHash: hash,
	}
}

func habits() []models.Habit {
	return models.DefaultHabits()[:2]
}

// healthy returns a dataset with one user, one plan and matching tracking
func healthy() Dataset {
	u := user("u1", "a@b.co", bcryptHash)
	current := u.Public()
	tracking := models.NewTrackingRecord(habits(), created)
	tracking.Habits[0].CompletedDays.Add("2025-01-02")
	return Dataset{
		Users:       []models.UserRecord{u},
		CurrentUser: &current,
		Plans: map[string]models.Plan{
			"u1": {UserID: "u1", Habits: habits(), StartDate: "2025-01-01", CreatedAt: created},
		},
		Tracking: map[string]models.TrackingRecord{"u1": tracking},
	}
}

func conflictTypes(r ValidationResult) []ConflictType {
	types := []ConflictType{}
	for _, c := range r.Conflicts {
		types = append(types, c.Type)
	}
	return types
}

func TestValidate_Healthy(t *testing.T) {
	result := New().Validate(healthy())
	if result.HasConflicts() {
		t.Errorf("expected no conflicts, got %v", result.Conflicts)
	}
	if got := result.FormatReport(); got != "No conflicts detected." {
		t.Errorf("FormatReport() = %q", got)
	}
}

func TestValidate_Conflicts(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(ds *Dataset)
		want      []ConflictType
		wantError bool
	}{
		{
			name: "duplicate email",
			mutate: func(ds *Dataset) {
				ds.Users = append(ds.Users, user("u2", "a@b.co", bcryptHash))
			},
			want:      []ConflictType{ConflictDuplicateEmail},
			wantError: true,
		},
		{
			name: "missing hash",
			mutate: func(ds *Dataset) {
				ds.Users[0].PasswordHash = ""
			},
			want:      []ConflictType{ConflictMissingPasswordHash},
			wantError: true,
		},
		{
			name: "legacy hash is a warning",
			mutate: func(ds *Dataset) {
				ds.Users[0].PasswordHash = "4889ba9b"
			},
			want: []ConflictType{ConflictLegacyPasswordHash},
		},
		{
			name: "session for unknown user",
			mutate: func(ds *Dataset) {
				ds.CurrentUser = &models.User{ID: "ghost"}
			},
			want:      []ConflictType{ConflictDanglingSession},
			wantError: true,
		},
		{
			name: "plan without account",
			mutate: func(ds *Dataset) {
				ds.Users = nil
				ds.CurrentUser = nil
			},
			want: []ConflictType{ConflictOrphanRecord},
		},
		{
			name: "plan without tracking",
			mutate: func(ds *Dataset) {
				delete(ds.Tracking, "u1")
			},
			want:      []ConflictType{ConflictMissingTracking},
			wantError: true,
		},
		{
			name: "tracking without plan",
			mutate: func(ds *Dataset) {
				delete(ds.Plans, "u1")
			},
			want: []ConflictType{ConflictOrphanRecord},
		},
		{
			name: "invalid start date",
			mutate: func(ds *Dataset) {
				p := ds.Plans["u1"]
				p.StartDate = "01/01/2025"
				ds.Plans["u1"] = p
			},
			want:      []ConflictType{ConflictInvalidStartDate},
			wantError: true,
		},
		{
			name: "empty plan",
			mutate: func(ds *Dataset) {
				p := ds.Plans["u1"]
				p.Habits = nil
				ds.Plans["u1"] = p
			},
			want:      []ConflictType{ConflictEmptyPlan, ConflictHabitMismatch},
			wantError: true,
		},
		{
			name: "extra tracked habit",
			mutate: func(ds *Dataset) {
				tr := ds.Tracking["u1"]
				tr.Habits = append(tr.Habits, models.NewTrackedHabit(models.Habit{ID: "x", Name: "Extra"}))
				ds.Tracking["u1"] = tr
			},
			want:      []ConflictType{ConflictHabitMismatch},
			wantError: true,
		},
		{
			name: "malformed completion date",
			mutate: func(ds *Dataset) {
				ds.Tracking["u1"].Habits[1].CompletedDays.Add("yesterday")
			},
			want:      []ConflictType{ConflictInvalidDate},
			wantError: true,
		},
		{
			name: "completion outside the window",
			mutate: func(ds *Dataset) {
				ds.Tracking["u1"].Habits[1].CompletedDays.Add("2025-03-01")
			},
			want: []ConflictType{ConflictOutsideWindow},
		},
		{
			name: "malformed record",
			mutate: func(ds *Dataset) {
				ds.Malformed = []string{storage.PlanKey("u9")}
			},
			want:      []ConflictType{ConflictMalformedRecord},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := healthy()
			tt.mutate(&ds)

			result := New().Validate(ds)
			if got := conflictTypes(result); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("conflicts = %v, want %v", got, tt.want)
			}
			if result.HasErrors() != tt.wantError {
				t.Errorf("HasErrors() = %v, want %v", result.HasErrors(), tt.wantError)
			}
		})
	}
}

func TestLoadDataset(t *testing.T) {
	b := storage.NewMemoryStore()
	records := storage.NewRecords(b)

	u := user("u1", "a@b.co", bcryptHash)
	if err := records.SaveUserAndSession([]models.UserRecord{u}, u.Public()); err != nil {
		t.Fatal(err)
	}
	plan := models.Plan{UserID: "u1", Habits: habits(), StartDate: "2025-01-01", CreatedAt: created}
	if err := records.CommitPlan(plan, models.NewTrackingRecord(habits(), created)); err != nil {
		t.Fatal(err)
	}
	if err := b.Put(storage.TrackingKey("u2"), []byte(`{"habits": 7}`)); err != nil {
		t.Fatal(err)
	}

	ds, err := LoadDataset(records)
	if err != nil {
		t.Fatalf("LoadDataset() failed: %v", err)
	}
	if len(ds.Users) != 1 || ds.CurrentUser == nil || ds.CurrentUser.ID != "u1" {
		t.Errorf("unexpected users/session: %+v %+v", ds.Users, ds.CurrentUser)
	}
	if _, ok := ds.Plans["u1"]; !ok {
		t.Error("plan for u1 not loaded")
	}
	if _, ok := ds.Tracking["u1"]; !ok {
		t.Error("tracking for u1 not loaded")
	}
	if want := []string{storage.TrackingKey("u2")}; !reflect.DeepEqual(ds.Malformed, want) {
		t.Errorf("Malformed = %v, want %v", ds.Malformed, want)
	}

	result := New().Validate(ds)
	if got := conflictTypes(result); !reflect.DeepEqual(got, []ConflictType{ConflictMalformedRecord}) {
		t.Errorf("conflicts = %v", got)
	}
}
