package cli

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/beiwe-client/internal/client/client"
	"github.com/dmitrijs2005/beiwe-client/internal/client/services"
	"github.com/dmitrijs2005/beiwe-client/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// registrationForm is what the user typed into the register prompts.
type registrationForm struct {
	ServerURL       string
	UserID          string
	TempPassword    string
	NewPassword     string
	ConfirmPassword string
	PhoneNumber     string
}

// validate checks the form in the order the prompts are shown and reports
// the first problem wrapped in common.ErrInvalidInput. The server URL is only
// required when the build lets the user choose it.
func (f registrationForm) validate(customizableURL bool) error {
	switch {
	case customizableURL && f.ServerURL == "":
		return fmt.Errorf("%w: study server URL is empty", common.ErrInvalidInput)
	case f.UserID == "":
		return fmt.Errorf("%w: user id is empty", common.ErrInvalidInput)
	case f.TempPassword == "":
		return fmt.Errorf("%w: temporary password is empty", common.ErrInvalidInput)
	case len(f.NewPassword) < common.MinPasswordLength:
		return fmt.Errorf("%w: new password must be at least %d characters", common.ErrInvalidInput, common.MinPasswordLength)
	case f.NewPassword != f.ConfirmPassword:
		return fmt.Errorf("%w: passwords do not match", common.ErrInvalidInput)
	}
	return nil
}

// stripSpaces removes every whitespace rune, as user ids never contain any.
func stripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func (a *App) readRegistrationForm() (registrationForm, error) {
	var f registrationForm
	var err error

	if a.opts.CustomizableServerURL {
		prompt := "Enter study server URL"
		if a.opts.DefaultServerURL != "" {
			prompt += " (empty for " + a.opts.DefaultServerURL + ")"
		}
		if f.ServerURL, err = getSimpleText(a.reader, prompt, a.out); err != nil {
			return f, err
		}
		if f.ServerURL == "" {
			f.ServerURL = a.opts.DefaultServerURL
		}
	}

	userID, err := getSimpleText(a.reader, "Enter user id", a.out)
	if err != nil {
		return f, err
	}
	f.UserID = stripSpaces(userID)

	if f.TempPassword, err = getPassword("Temporary password", a.out); err != nil {
		return f, err
	}
	if f.NewPassword, err = getPassword("New password", a.out); err != nil {
		return f, err
	}
	if f.ConfirmPassword, err = getPassword("Confirm new password", a.out); err != nil {
		return f, err
	}
	if f.PhoneNumber, err = getSimpleText(a.reader, "Enter phone number (optional)", a.out); err != nil {
		return f, err
	}
	return f, nil
}

// Register prompts for the registration form, validates it, and runs the
// registration. On success it stores the new password and prints where
// onboarding continues.
func (a *App) Register(ctx context.Context) error {
	form, err := a.readRegistrationForm()
	if err != nil {
		return err
	}
	if err := form.validate(a.opts.CustomizableServerURL); err != nil {
		return err
	}

	code, err := a.Registrar.Register(ctx, services.RegistrationRequest{
		ServerURL:    form.ServerURL,
		PatientID:    form.UserID,
		TempPassword: form.TempPassword,
		NewPassword:  form.NewPassword,
		PhoneNumber:  form.PhoneNumber,
	})
	if err != nil {
		a.Logger.Warn(ctx, "registration failed", "code", code, "error", err)
	}
	if code != http.StatusOK {
		return fmt.Errorf("couldn't register: %s (code %d)", describeCode(code), code)
	}

	next, err := a.Registrar.Finish(ctx, form.NewPassword)
	if err != nil {
		return err
	}
	printlnFn("Registered. Next step:", string(next))
	return nil
}

// describeCode turns a registration response code into a message for the
// participant.
func describeCode(code int) string {
	switch code {
	case client.CodeMalformedURL:
		return "the study server URL is not valid"
	case client.CodeNetworkError:
		return "could not reach the study server"
	case client.CodeInvalidServer:
		return "the server did not answer like a study server"
	case client.CodeLocalStore:
		return "could not save registration data on this device"
	case http.StatusBadRequest:
		return "the server rejected the request"
	case http.StatusForbidden:
		return "user id or password is incorrect"
	case http.StatusMethodNotAllowed:
		return "this user is already registered on another device"
	default:
		return "unexpected response"
	}
}
