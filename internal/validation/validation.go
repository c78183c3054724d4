package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/julianstephens/thirty/internal/auth"
	"github.com/julianstephens/thirty/internal/models"
	"github.com/julianstephens/thirty/internal/storage"
	"github.com/julianstephens/thirty/internal/streak"
	"github.com/julianstephens/thirty/internal/utils"
)

// ConflictType represents the type of integrity problem
type ConflictType string

const (
	ConflictDuplicateEmail      ConflictType = "duplicate_email"
	ConflictMissingPasswordHash ConflictType = "missing_password_hash"
	ConflictLegacyPasswordHash  ConflictType = "legacy_password_hash"
	ConflictDanglingSession     ConflictType = "dangling_session"
	ConflictOrphanRecord        ConflictType = "orphan_record"
	ConflictMalformedRecord     ConflictType = "malformed_record"
	ConflictInvalidStartDate    ConflictType = "invalid_start_date"
	ConflictEmptyPlan           ConflictType = "empty_plan"
	ConflictMissingTracking     ConflictType = "missing_tracking"
	ConflictHabitMismatch       ConflictType = "habit_mismatch"
	ConflictInvalidDate         ConflictType = "invalid_date"
	ConflictOutsideWindow       ConflictType = "outside_window"
)

// Severity separates problems that break the app from ones it tolerates
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

var severities = map[ConflictType]Severity{
	ConflictLegacyPasswordHash: SeverityWarning,
	ConflictOutsideWindow:      SeverityWarning,
	ConflictOrphanRecord:       SeverityWarning,
}

// Conflict represents a detected integrity problem
type Conflict struct {
	Type        ConflictType
	Description string
	UserID      string   // empty for store-wide problems
	Items       []string // habit ids, dates or emails involved
}

func (c Conflict) Severity() Severity {
	if s, ok := severities[c.Type]; ok {
		return s
	}
	return SeverityError
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// HasErrors ignores warnings
func (vr *ValidationResult) HasErrors() bool {
	for _, c := range vr.Conflicts {
		if c.Severity() == SeverityError {
			return true
		}
	}
	return false
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, c := range vr.Conflicts {
		fmt.Fprintf(&b, "- [%s] %s\n", c.Severity(), c.Description)
	}
	return b.String()
}

func (vr *ValidationResult) add(t ConflictType, userID string, items []string, format string, args ...interface{}) {
	vr.Conflicts = append(vr.Conflicts, Conflict{
		Type:        t,
		Description: fmt.Sprintf(format, args...),
		UserID:      userID,
		Items:       items,
	})
}

// Dataset is a snapshot of every stored record
type Dataset struct {
	Users       []models.UserRecord
	CurrentUser *models.User
	Plans       map[string]models.Plan
	Tracking    map[string]models.TrackingRecord

	// Keys that exist but failed to decode
	Malformed []string
}

// LoadDataset reads every record from the store
func LoadDataset(records *storage.Records) (Dataset, error) {
	ds := Dataset{
		Plans:    make(map[string]models.Plan),
		Tracking: make(map[string]models.TrackingRecord),
	}

	users, err := records.Users()
	if err != nil {
		return ds, err
	}
	ds.Users = users

	if ds.CurrentUser, err = records.CurrentUser(); err != nil {
		return ds, err
	}

	planIDs, err := records.PlannedUserIDs()
	if err != nil {
		return ds, err
	}
	for _, id := range planIDs {
		p, err := records.Plan(id)
		if err != nil {
			return ds, err
		}
		if p == nil {
			ds.Malformed = append(ds.Malformed, storage.PlanKey(id))
			continue
		}
		ds.Plans[id] = *p
	}

	trackedIDs, err := records.TrackedUserIDs()
	if err != nil {
		return ds, err
	}
	for _, id := range trackedIDs {
		rec, err := records.Tracking(id)
		if err != nil {
			return ds, err
		}
		if rec == nil {
			ds.Malformed = append(ds.Malformed, storage.TrackingKey(id))
			continue
		}
		ds.Tracking[id] = *rec
	}

	return ds, nil
}

// Validator checks stored records for integrity problems
type Validator struct{}

func New() *Validator {
	return &Validator{}
}

// Validate runs every check. Output order is deterministic.
func (v *Validator) Validate(ds Dataset) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	for _, key := range ds.Malformed {
		result.add(ConflictMalformedRecord, "", []string{key}, "Record %q is not valid JSON for its type", key)
	}

	known := v.validateUsers(ds, &result)

	if ds.CurrentUser != nil && !known[ds.CurrentUser.ID] {
		result.add(ConflictDanglingSession, ds.CurrentUser.ID, nil,
			"Current session belongs to unknown user %s", ds.CurrentUser.ID)
	}

	for _, id := range sortedKeys(ds.Plans) {
		v.validatePlan(id, ds, known, &result)
	}

	for _, id := range sortedKeys(ds.Tracking) {
		if _, ok := ds.Plans[id]; !ok {
			result.add(ConflictOrphanRecord, id, nil, "Tracking record for user %s has no plan", id)
		}
	}

	return result
}

func (v *Validator) validateUsers(ds Dataset, result *ValidationResult) map[string]bool {
	known := make(map[string]bool, len(ds.Users))
	byEmail := make(map[string][]string)

	for _, u := range ds.Users {
		known[u.ID] = true
		byEmail[u.Email] = append(byEmail[u.Email], u.ID)

		switch {
		case u.PasswordHash == "":
			result.add(ConflictMissingPasswordHash, u.ID, nil, "User %s has no password hash", u.Email)
		case !auth.IsBcrypt(u.PasswordHash):
			result.add(ConflictLegacyPasswordHash, u.ID, nil,
				"User %s still has a legacy password hash (upgraded on next login)", u.Email)
		}
	}

	for _, email := range sortedKeys(byEmail) {
		if ids := byEmail[email]; len(ids) > 1 {
			result.add(ConflictDuplicateEmail, "", ids, "Email %s is used by %d accounts", email, len(ids))
		}
	}

	return known
}

func (v *Validator) validatePlan(id string, ds Dataset, known map[string]bool, result *ValidationResult) {
	plan := ds.Plans[id]

	if !known[id] {
		result.add(ConflictOrphanRecord, id, nil, "Plan for user %s has no account", id)
	}
	if len(plan.Habits) == 0 {
		result.add(ConflictEmptyPlan, id, nil, "Plan for user %s has no habits", id)
	}

	window, err := streak.CalendarWindow(plan.StartDate)
	if err != nil {
		result.add(ConflictInvalidStartDate, id, []string{plan.StartDate},
			"Plan for user %s has an invalid start date %q", id, plan.StartDate)
	}

	tracking, ok := ds.Tracking[id]
	if !ok {
		result.add(ConflictMissingTracking, id, nil, "Plan for user %s has no tracking record", id)
		return
	}

	if missing, extra := diffHabits(plan.Habits, tracking.Habits); len(missing)+len(extra) > 0 {
		items := append(append([]string{}, missing...), extra...)
		result.add(ConflictHabitMismatch, id, items,
			"Tracking for user %s does not match the plan (missing %v, extra %v)", id, missing, extra)
	}

	inWindow := make(map[string]bool, len(window))
	for _, d := range window {
		inWindow[d] = true
	}

	var invalid, outside []string
	for _, h := range tracking.Habits {
		for _, d := range h.CompletedDays.Sorted() {
			switch {
			case !utils.ValidateDate(d):
				invalid = append(invalid, d)
			case window != nil && !inWindow[d]:
				outside = append(outside, d)
			}
		}
	}
	if len(invalid) > 0 {
		result.add(ConflictInvalidDate, id, invalid, "Tracking for user %s has malformed dates %v", id, invalid)
	}
	if len(outside) > 0 {
		result.add(ConflictOutsideWindow, id, outside,
			"Tracking for user %s has %d completions outside the 30-day window", id, len(outside))
	}
}

// diffHabits compares habit ids of the plan against the tracking record
func diffHabits(planned []models.Habit, tracked []models.TrackedHabit) (missing, extra []string) {
	want := make(map[string]bool, len(planned))
	for _, h := range planned {
		want[h.ID] = true
	}
	have := make(map[string]bool, len(tracked))
	for _, h := range tracked {
		have[h.ID] = true
		if !want[h.ID] {
			extra = append(extra, h.ID)
		}
	}
	for _, h := range planned {
		if !have[h.ID] {
			missing = append(missing, h.ID)
		}
	}
	return missing, extra
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
