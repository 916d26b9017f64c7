package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophchat/internal/client/auth"
	"github.com/dmitrijs2005/gophchat/internal/client/countries"
	"github.com/dmitrijs2005/gophchat/internal/client/models"
	"github.com/dmitrijs2005/gophchat/internal/common"
)

const defaultDialCode = "+1"

// Login walks the user through phone entry and code verification.
// Typing "back" at the code prompt returns to phone entry, "resend" asks
// for a new code once the cooldown has passed.
func (a *App) Login(ctx context.Context, _ []string) error {
	if a.isLoggedIn() {
		a.println("Already logged in, use 'logout' first")
		return nil
	}
	if a.flow.State().Step != auth.StepPhone {
		a.flow.Reset(ctx)
	}

	for {
		if err := a.enterPhone(ctx); err != nil {
			return err
		}
		back, err := a.enterCode(ctx)
		if err != nil {
			return err
		}
		if !back {
			return nil
		}
	}
}

func (a *App) enterPhone(ctx context.Context) error {
	for {
		dial, err := GetSimpleText(a.reader, fmt.Sprintf("Country dial code (Enter for %s, '?' to list)", defaultDialCode), a.out)
		if err != nil {
			return err
		}
		list := a.countryList()
		if dial == "?" {
			for _, c := range list {
				a.printf("  %s %-5s %s\n", c.Flag, c.DialCode, c.Name)
			}
			continue
		}
		if dial == "" {
			dial = defaultDialCode
		}
		if dial[0] != '+' {
			dial = "+" + dial
		}
		country, ok := countries.ByDialCode(list, dial)
		if !ok {
			a.println("Unknown dial code:", dial)
			continue
		}

		return a.enterNumber(ctx, country)
	}
}

func (a *App) enterNumber(ctx context.Context, country models.Country) error {
	for {
		phone, err := GetSimpleText(a.reader, fmt.Sprintf("Phone number (%s %s)", country.Flag, country.DialCode), a.out)
		if err != nil {
			return err
		}
		err = a.flow.RequestCode(ctx, phone, country.DialCode)
		if errors.Is(err, common.ErrValidation) {
			a.println(a.flow.State().Err)
			continue
		}
		if err != nil {
			a.println("error:", err)
		}
		return err
	}
}

// enterCode reads codes until one verifies. It reports back=true when the
// user chose to change the phone number.
func (a *App) enterCode(ctx context.Context) (bool, error) {
	for {
		code, err := a.readCode(fmt.Sprintf("Enter the %d-digit code ('resend', 'back')", auth.CodeLength))
		if err != nil {
			return false, err
		}

		switch code {
		case "back":
			a.flow.GoBack(ctx)
			return true, nil
		case "resend":
			sent, err := a.flow.Resend(ctx)
			if err != nil {
				a.println("error:", err)
				return false, err
			}
			if !sent {
				a.printf("You can resend in %ds\n", a.flow.State().Cooldown)
			}
			continue
		}

		user, err := a.flow.VerifyCode(ctx, code)
		switch {
		case errors.Is(err, common.ErrValidation), errors.Is(err, common.ErrVerification):
			a.println(a.flow.State().Err)
			continue
		case err != nil:
			a.println("error:", err)
			return false, err
		}
		a.println("Logged in as", user.CountryCode, user.Phone)
		return false, nil
	}
}

func (a *App) readCode(prompt string) (string, error) {
	if a.masked {
		return GetSecret(prompt, a.out)
	}
	return GetSimpleText(a.reader, prompt, a.out)
}

// Logout wipes local data and returns to the phone step.
func (a *App) Logout(ctx context.Context, _ []string) error {
	if err := a.sessions.Logout(ctx); err != nil {
		a.println("error:", err)
		return err
	}
	a.flow.Reset(ctx)
	a.setCurrent(nil)
	a.setListed(nil)
	a.println("Logged out, local data removed")
	return nil
}

func (a *App) Whoami(_ context.Context, _ []string) error {
	u, err := a.sessions.CurrentUser()
	if err != nil {
		a.println("Not logged in")
		return err
	}
	a.printf("%s %s (id %s, since %s)\n", u.CountryCode, u.Phone, u.ID, u.CreatedAt.Local().Format("2006-01-02"))
	return nil
}
