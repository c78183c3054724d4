// Package plan manages the pre-plan setup habit list and the one-time plan commitment.
package plan

import (
	"fmt"
	"strings"

	"github.com/rs/xid"

	"github.com/julianstephens/thirty/internal/clock"
	"github.com/julianstephens/thirty/internal/constants"
	apperrors "github.com/julianstephens/thirty/internal/errors"
	"github.com/julianstephens/thirty/internal/logger"
	"github.com/julianstephens/thirty/internal/models"
	"github.com/julianstephens/thirty/internal/storage"
	"github.com/julianstephens/thirty/internal/utils"
)

type Service struct {
	records *storage.Records
	clock   clock.Clock
}

func NewService(records *storage.Records, clk clock.Clock) *Service {
	return &Service{records: records, clock: clk}
}

func (s *Service) today() string {
	return utils.FormatDate(s.clock.Now())
}

// GetPlan returns the user's plan, or nil if none was created yet
func (s *Service) GetPlan(userID string) (*models.Plan, error) {
	return s.records.Plan(userID)
}

func (s *Service) ensureNoPlan(userID string) error {
	p, err := s.records.Plan(userID)
	if err != nil {
		return err
	}
	if p != nil {
		return apperrors.ErrPlanExists
	}
	return nil
}

// SetupHabits returns the saved setup list. The first read seeds and
// persists the default habits.
func (s *Service) SetupHabits(userID string) ([]models.Habit, error) {
	if err := s.ensureNoPlan(userID); err != nil {
		return nil, err
	}

	habits, found, err := s.records.SetupHabits(userID)
	if err != nil {
		return nil, err
	}
	if found {
		return habits, nil
	}

	habits = models.DefaultHabits()
	if err := s.records.SaveSetupHabits(userID, habits); err != nil {
		return nil, err
	}
	return habits, nil
}

// AddHabit appends a habit to the setup list. A blank name is ignored.
func (s *Service) AddHabit(userID, name, emoji string, category constants.Category) ([]models.Habit, error) {
	habits, err := s.SetupHabits(userID)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return habits, nil
	}
	if strings.TrimSpace(emoji) == "" {
		emoji = constants.DefaultHabitEmoji
	}
	if category == "" {
		category = constants.CategoryCustom
	}

	habits = append(habits, models.Habit{
		ID:       xid.New().String(),
		Name:     name,
		Emoji:    emoji,
		Category: category,
	})
	if err := s.records.SaveSetupHabits(userID, habits); err != nil {
		return nil, err
	}
	return habits, nil
}

// DeleteHabit removes a habit by id. Unknown ids leave the list unchanged.
func (s *Service) DeleteHabit(userID, habitID string) ([]models.Habit, error) {
	habits, err := s.SetupHabits(userID)
	if err != nil {
		return nil, err
	}

	kept := make([]models.Habit, 0, len(habits))
	for _, h := range habits {
		if h.ID != habitID {
			kept = append(kept, h)
		}
	}
	if len(kept) == len(habits) {
		return habits, nil
	}

	if err := s.records.SaveSetupHabits(userID, kept); err != nil {
		return nil, err
	}
	return kept, nil
}

// RenameHabit sets a trimmed name. A blank name keeps the old one.
func (s *Service) RenameHabit(userID, habitID, name string) ([]models.Habit, error) {
	habits, err := s.SetupHabits(userID)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return habits, nil
	}

	changed := false
	for i := range habits {
		if habits[i].ID == habitID && habits[i].Name != name {
			habits[i].Name = name
			changed = true
		}
	}
	if !changed {
		return habits, nil
	}

	if err := s.records.SaveSetupHabits(userID, habits); err != nil {
		return nil, err
	}
	return habits, nil
}

// ResetSetupHabits replaces the setup list with the defaults
func (s *Service) ResetSetupHabits(userID string) ([]models.Habit, error) {
	if err := s.ensureNoPlan(userID); err != nil {
		return nil, err
	}

	habits := models.DefaultHabits()
	if err := s.records.SaveSetupHabits(userID, habits); err != nil {
		return nil, err
	}
	return habits, nil
}

// CreatePlan commits the habits and start date. The plan and an empty
// tracking record are written together; on any error nothing is written.
func (s *Service) CreatePlan(userID string, habits []models.Habit, startDate string) (models.Plan, error) {
	if len(habits) == 0 {
		return models.Plan{}, apperrors.Invalid("habits", apperrors.ErrEmptyHabitSet)
	}

	startDate = strings.TrimSpace(startDate)
	if startDate == "" {
		return models.Plan{}, apperrors.Invalid("startDate", apperrors.ErrMissingStartDate)
	}
	if !utils.ValidateDate(startDate) {
		return models.Plan{}, apperrors.Invalidf("startDate", apperrors.ErrInvalidDate, "invalid start date %q (expected YYYY-MM-DD)", startDate)
	}
	// both sides are YYYY-MM-DD so string order is date order
	if startDate < s.today() {
		return models.Plan{}, apperrors.Invalid("startDate", apperrors.ErrStartDateInPast)
	}

	if err := s.ensureNoPlan(userID); err != nil {
		return models.Plan{}, err
	}

	now := s.clock.Now().UTC()
	p := models.Plan{
		UserID:    userID,
		Habits:    append([]models.Habit(nil), habits...),
		StartDate: startDate,
		CreatedAt: now,
	}

	if err := s.records.CommitPlan(p, models.NewTrackingRecord(p.Habits, now)); err != nil {
		return models.Plan{}, fmt.Errorf("failed to create plan: %w", err)
	}

	logger.Info("Plan created", "user", userID, "habits", len(p.Habits), "start", startDate)
	return p, nil
}
