package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/julianstephens/thirty/internal/constants"
	"github.com/julianstephens/thirty/internal/logger"
	"github.com/julianstephens/thirty/internal/models"
)

func PlanKey(userID string) string        { return constants.PlanKeyPrefix + userID }
func SetupHabitsKey(userID string) string { return constants.SetupHabitsKeyPrefix + userID }
func TrackingKey(userID string) string    { return constants.TrackingKeyPrefix + userID }

// Records is the typed view over a Backend. A record that fails to decode
// reads as absent and is logged at warn level.
type Records struct {
	backend Backend
}

func NewRecords(b Backend) *Records {
	return &Records{backend: b}
}

func (r *Records) Backend() Backend {
	return r.backend
}

// getJSON decodes key into a new T; nil when the key is absent or malformed
func getJSON[T any](r *Records, key string) (*T, error) {
	data, err := r.backend.Get(key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}

	v := new(T)
	if err := json.Unmarshal(data, v); err != nil {
		logger.Warn("Ignoring malformed record", "key", key, "error", err)
		return nil, nil
	}
	return v, nil
}

func putOp(key string, v any) (Op, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Op{}, fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return Op{Key: key, Value: data}, nil
}

func (r *Records) putJSON(key string, v any) error {
	op, err := putOp(key, v)
	if err != nil {
		return err
	}
	if err := r.backend.Put(key, op.Value); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Users returns every stored account; empty when none exist yet
func (r *Records) Users() ([]models.UserRecord, error) {
	users, err := getJSON[[]models.UserRecord](r, constants.UsersKey)
	if err != nil || users == nil {
		return nil, err
	}
	return *users, nil
}

func (r *Records) SaveUsers(users []models.UserRecord) error {
	if users == nil {
		users = []models.UserRecord{}
	}
	return r.putJSON(constants.UsersKey, users)
}

// CurrentUser returns the session user, or nil when nobody is logged in
func (r *Records) CurrentUser() (*models.User, error) {
	u, err := getJSON[models.User](r, constants.CurrentUserKey)
	if err != nil || u == nil {
		return nil, err
	}
	if u.ID == "" {
		logger.Warn("Ignoring session without a user id", "key", constants.CurrentUserKey)
		return nil, nil
	}
	return u, nil
}

func (r *Records) SetCurrentUser(u models.User) error {
	return r.putJSON(constants.CurrentUserKey, u)
}

func (r *Records) ClearCurrentUser() error {
	if err := r.backend.Delete(constants.CurrentUserKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// SaveUserAndSession writes the user list and the session in one batch
func (r *Records) SaveUserAndSession(users []models.UserRecord, current models.User) error {
	usersOp, err := putOp(constants.UsersKey, users)
	if err != nil {
		return err
	}
	sessionOp, err := putOp(constants.CurrentUserKey, current)
	if err != nil {
		return err
	}
	if err := r.backend.Apply([]Op{usersOp, sessionOp}); err != nil {
		return fmt.Errorf("failed to write account: %w", err)
	}
	return nil
}

func (r *Records) Plan(userID string) (*models.Plan, error) {
	return getJSON[models.Plan](r, PlanKey(userID))
}

// SetupHabits returns the saved setup list and whether one was found
func (r *Records) SetupHabits(userID string) ([]models.Habit, bool, error) {
	habits, err := getJSON[[]models.Habit](r, SetupHabitsKey(userID))
	if err != nil || habits == nil {
		return nil, false, err
	}
	return *habits, true, nil
}

func (r *Records) SaveSetupHabits(userID string, habits []models.Habit) error {
	if habits == nil {
		habits = []models.Habit{}
	}
	return r.putJSON(SetupHabitsKey(userID), habits)
}

func (r *Records) Tracking(userID string) (*models.TrackingRecord, error) {
	return getJSON[models.TrackingRecord](r, TrackingKey(userID))
}

func (r *Records) SaveTracking(userID string, rec models.TrackingRecord) error {
	return r.putJSON(TrackingKey(userID), rec)
}

// CommitPlan writes the plan and its initial tracking record and drops the
// setup list, all in one backend batch
func (r *Records) CommitPlan(plan models.Plan, tracking models.TrackingRecord) error {
	planOp, err := putOp(PlanKey(plan.UserID), plan)
	if err != nil {
		return err
	}
	trackingOp, err := putOp(TrackingKey(plan.UserID), tracking)
	if err != nil {
		return err
	}

	ops := []Op{planOp, trackingOp, {Key: SetupHabitsKey(plan.UserID), Delete: true}}
	if err := r.backend.Apply(ops); err != nil {
		return fmt.Errorf("failed to write plan: %w", err)
	}
	return nil
}

// TrackedUserIDs lists every user that has a tracking record
func (r *Records) TrackedUserIDs() ([]string, error) {
	return r.userIDs(constants.TrackingKeyPrefix)
}

// PlannedUserIDs lists every user that has a plan record
func (r *Records) PlannedUserIDs() ([]string, error) {
	return r.userIDs(constants.PlanKeyPrefix)
}

func (r *Records) userIDs(prefix string) ([]string, error) {
	keys, err := r.backend.Keys(prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s records: %w", prefix, err)
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, k[len(prefix):])
	}
	return ids, nil
}
