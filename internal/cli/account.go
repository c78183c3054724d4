package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/julianstephens/thirty/internal/account"
	"github.com/julianstephens/thirty/internal/constants"
	"github.com/julianstephens/thirty/internal/tui/forms"
)

type SignupCmd struct {
	Name     string `help:"Display name (prompted when omitted)."`
	Email    string `help:"Email address (prompted when omitted)."`
	Password string `help:"Password (prompted when omitted)." env:"THIRTY_PASSWORD"`
}

func (c *SignupCmd) Run(ctx *Context) error {
	form := account.SignUpForm{Name: c.Name, Email: strings.TrimSpace(c.Email), Password: c.Password, Confirm: c.Password}
	if form.Name == "" || form.Email == "" || form.Password == "" {
		if err := forms.NewSignUpForm(&form).Run(); err != nil {
			return err
		}
	}

	if err := account.ValidateSignUp(form); err != nil {
		return err
	}

	release, err := ctx.BeginWrite()
	if err != nil {
		return err
	}
	defer release()

	u, err := ctx.Accounts.SignUp(form.Email, form.Password, strings.TrimSpace(form.Name))
	if err != nil {
		return err
	}

	fmt.Printf("✓ Welcome, %s! You are logged in.\n", u.Name)
	fmt.Println("Next: review your habits with 'thirty habits list', then 'thirty plan create'.")
	return nil
}

type LoginCmd struct {
	Email    string `help:"Email address (prompted when omitted)."`
	Password string `help:"Password (prompted when omitted)." env:"THIRTY_PASSWORD"`
}

func (c *LoginCmd) Run(ctx *Context) error {
	fields := forms.LoginFields{Email: strings.TrimSpace(c.Email), Password: c.Password}
	switch {
	case fields.Email == "":
		if err := forms.NewLoginForm(&fields).Run(); err != nil {
			return err
		}
	case fields.Password == "":
		if err := forms.NewPasswordForm(&fields.Password).Run(); err != nil {
			return err
		}
	}

	release, err := ctx.BeginWrite()
	if err != nil {
		return err
	}
	defer release()

	u, err := ctx.Accounts.Login(strings.TrimSpace(fields.Email), fields.Password)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Logged in as %s (%s)\n", u.Name, u.Email)
	return nil
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx *Context) error {
	release, err := ctx.BeginWrite()
	if err != nil {
		return err
	}
	defer release()

	if err := ctx.Accounts.Logout(); err != nil {
		return err
	}
	fmt.Println("✓ Logged out")
	return nil
}

type WhoamiCmd struct{}

func (c *WhoamiCmd) Run(ctx *Context) error {
	snap, err := ctx.RequireUser()
	if err != nil {
		return err
	}

	u := snap.User
	fmt.Printf("%s <%s>\n", u.Name, u.Email)
	fmt.Printf("  Member since: %s (%s)\n", u.CreatedAt.Local().Format("Jan 2, 2006"), humanize.Time(u.CreatedAt))

	switch snap.State {
	case constants.StateNeedsPlan:
		fmt.Println("  Challenge:    not started, create a plan with 'thirty plan create'")
	case constants.StateActive:
		start, err := time.Parse(constants.DateFormat, snap.Plan.StartDate)
		if err == nil {
			verb := "started"
			if snap.Plan.StartDate > ctx.Today() {
				verb = "starts"
			}
			fmt.Printf("  Challenge:    %d habits, %s %s\n", len(snap.Plan.Habits), verb, humanize.Time(start))
		}
	}
	return nil
}
