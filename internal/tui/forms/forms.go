// Package forms builds the huh forms shared by the CLI prompts and the TUI.
package forms

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/thirty/internal/account"
	"github.com/julianstephens/thirty/internal/constants"
	apperrors "github.com/julianstephens/thirty/internal/errors"
	"github.com/julianstephens/thirty/internal/utils"
)

// LoginFields backs the login form
type LoginFields struct {
	Email    string
	Password string
}

// HabitFields backs the add-habit form
type HabitFields struct {
	Name     string
	Emoji    string
	Category constants.Category
}

func NewHabitFields() *HabitFields {
	return &HabitFields{Emoji: constants.DefaultHabitEmoji, Category: constants.CategoryCustom}
}

// PlanFields backs the plan confirmation form
type PlanFields struct {
	StartDate string
	Confirmed bool
}

// CategoryLabel capitalizes a category for display
func CategoryLabel(c constants.Category) string {
	s := string(c)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func required(msg string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s", msg)
		}
		return nil
	}
}

// NewSignUpForm creates the sign-up form. The confirm field is checked against
// the password field as the user types.
func NewSignUpForm(f *account.SignUpForm) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&f.Name).
				Validate(required(apperrors.ErrNameRequired.Error())),
			huh.NewInput().
				Title("Email").
				Value(&f.Email).
				Validate(func(s string) error {
					if !account.ValidateEmail(s) {
						return apperrors.ErrInvalidEmailFormat
					}
					return nil
				}),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&f.Password).
				Validate(account.ValidatePassword),
			huh.NewInput().
				Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				Value(&f.Confirm).
				Validate(func(s string) error {
					if s != f.Password {
						return apperrors.ErrPasswordMismatch
					}
					return nil
				}),
		),
	).WithTheme(huh.ThemeDracula())
}

func NewLoginForm(f *LoginFields) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Value(&f.Email).
				Validate(required("email is required")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&f.Password).
				Validate(required("password is required")),
		),
	).WithTheme(huh.ThemeDracula())
}

// NewPasswordForm prompts for a password only
func NewPasswordForm(password *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(password).
				Validate(required("password is required")),
		),
	).WithTheme(huh.ThemeDracula())
}

func NewHabitForm(f *HabitFields) *huh.Form {
	emojis := make([]huh.Option[string], 0, len(constants.PopularEmojis))
	for _, e := range constants.PopularEmojis {
		emojis = append(emojis, huh.NewOption(e, e))
	}

	categories := make([]huh.Option[constants.Category], 0, len(constants.Categories))
	for _, c := range constants.Categories {
		categories = append(categories, huh.NewOption(CategoryLabel(c), c))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit Name").
				Value(&f.Name).
				Validate(required("habit name cannot be empty")),
			huh.NewSelect[string]().
				Title("Emoji").
				Options(emojis...).
				Value(&f.Emoji),
			huh.NewSelect[constants.Category]().
				Title("Category").
				Options(categories...).
				Value(&f.Category),
		),
	).WithTheme(huh.ThemeDracula())
}

// NewRenameForm edits a habit name in place
func NewRenameForm(name *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("New name").
				Value(name).
				Validate(required("habit name cannot be empty")),
		),
	).WithTheme(huh.ThemeDracula())
}

// NewPlanForm asks for the start date and a final confirmation.
// A plan cannot be edited once created.
func NewPlanForm(f *PlanFields, habitCount int, today string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Start date (YYYY-MM-DD)").
				Value(&f.StartDate).
				Validate(func(s string) error {
					switch {
					case strings.TrimSpace(s) == "":
						return apperrors.ErrMissingStartDate
					case !utils.ValidateDate(s):
						return apperrors.ErrInvalidDate
					case s < today:
						return apperrors.ErrStartDateInPast
					}
					return nil
				}),
			huh.NewConfirm().
				Title(fmt.Sprintf("Commit to %d habits for 30 days?", habitCount)).
				Description("The plan cannot be changed afterwards.").
				Value(&f.Confirmed),
		),
	).WithTheme(huh.ThemeDracula())
}

func NewConfirmForm(title string, value *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Value(value),
		),
	).WithTheme(huh.ThemeDracula())
}
