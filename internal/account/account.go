// Package account owns user records, credentials and the current session.
package account

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf16"

	"github.com/rs/xid"

	"github.com/julianstephens/thirty/internal/auth"
	"github.com/julianstephens/thirty/internal/clock"
	"github.com/julianstephens/thirty/internal/constants"
	apperrors "github.com/julianstephens/thirty/internal/errors"
	"github.com/julianstephens/thirty/internal/logger"
	"github.com/julianstephens/thirty/internal/models"
	"github.com/julianstephens/thirty/internal/storage"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// SignUpForm is the raw input of the sign-up screen
type SignUpForm struct {
	Name     string
	Email    string
	Password string
	Confirm  string
}

type Service struct {
	records   *storage.Records
	passwords *auth.PasswordService
	clock     clock.Clock
}

func NewService(records *storage.Records, passwords *auth.PasswordService, clk clock.Clock) *Service {
	return &Service{
		records:   records,
		passwords: passwords,
		clock:     clk,
	}
}

// SignUp creates an account and logs it in. Nothing is written on failure.
func (s *Service) SignUp(email, password, name string) (models.User, error) {
	users, err := s.records.Users()
	if err != nil {
		return models.User{}, err
	}

	for _, u := range users {
		if u.Email == email {
			return models.User{}, apperrors.Invalid("email", apperrors.ErrDuplicateEmail)
		}
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return models.User{}, apperrors.Invalid("password", apperrors.ErrPasswordTooLong)
		}
		return models.User{}, err
	}

	rec := models.UserRecord{
		User: models.User{
			ID:        xid.New().String(),
			Email:     email,
			Name:      name,
			CreatedAt: s.clock.Now().UTC(),
		},
		PasswordHash: hash,
	}

	if err := s.records.SaveUserAndSession(append(users, rec), rec.Public()); err != nil {
		return models.User{}, fmt.Errorf("failed to create account: %w", err)
	}

	logger.Info("Account created", "user", rec.ID)
	return rec.Public(), nil
}

// Login verifies the credentials and establishes the session. A legacy
// password hash is upgraded in place after it verifies.
func (s *Service) Login(email, password string) (models.User, error) {
	users, err := s.records.Users()
	if err != nil {
		return models.User{}, err
	}

	idx := -1
	for i, u := range users {
		if u.Email != email {
			continue
		}
		if err := s.passwords.Verify(u.PasswordHash, password); err == nil {
			idx = i
			break
		} else if !errors.Is(err, auth.ErrMismatch) {
			logger.Warn("Password verification failed", "user", u.ID, "error", err)
		}
	}
	if idx < 0 {
		return models.User{}, apperrors.ErrInvalidCredentials
	}

	rec := users[idx]
	if s.passwords.NeedsRehash(rec.PasswordHash) {
		if hash, err := s.passwords.Hash(password); err == nil {
			users[idx].PasswordHash = hash
			if err := s.records.SaveUsers(users); err != nil {
				logger.Warn("Failed to upgrade password hash", "user", rec.ID, "error", err)
			} else {
				logger.Info("Upgraded password hash", "user", rec.ID)
			}
		}
	}

	if err := s.records.SetCurrentUser(rec.Public()); err != nil {
		return models.User{}, fmt.Errorf("failed to log in: %w", err)
	}
	return rec.Public(), nil
}

func (s *Service) Logout() error {
	return s.records.ClearCurrentUser()
}

// CurrentUser returns the logged-in user, or nil
func (s *Service) CurrentUser() (*models.User, error) {
	return s.records.CurrentUser()
}

func (s *Service) IsAuthenticated() bool {
	u, err := s.records.CurrentUser()
	if err != nil {
		logger.Warn("Failed to read session", "error", err)
		return false
	}
	return u != nil
}

func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// passwordLength counts UTF-16 code units, matching the legacy data format
func passwordLength(password string) int {
	return len(utf16.Encode([]rune(password)))
}

func ValidatePassword(password string) error {
	n := passwordLength(password)
	switch {
	case n < constants.MinPasswordLength:
		return apperrors.Invalid("password", apperrors.ErrPasswordTooShort)
	case n > constants.MaxPasswordLength:
		return apperrors.Invalid("password", apperrors.ErrPasswordTooLong)
	case len(password) > auth.MaxPasswordBytes:
		return apperrors.Invalidf("password", apperrors.ErrPasswordTooLong,
			"password must be %d bytes or fewer", auth.MaxPasswordBytes)
	}
	return nil
}

// ValidateSignUp checks the form in display order and returns the first failure
func ValidateSignUp(form SignUpForm) error {
	if strings.TrimSpace(form.Name) == "" {
		return apperrors.Invalid("name", apperrors.ErrNameRequired)
	}
	if !ValidateEmail(form.Email) {
		return apperrors.Invalid("email", apperrors.ErrInvalidEmailFormat)
	}
	if err := ValidatePassword(form.Password); err != nil {
		return err
	}
	if form.Password != form.Confirm {
		return apperrors.Invalid("confirm", apperrors.ErrPasswordMismatch)
	}
	return nil
}
