package consolesdk

import (
	"regexp"
	"strings"
)

const minPasswordLength = 6

var reEmail = regexp.MustCompile(`(?i)^[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}$`)

// Validate checks the login form. Returns a map of field names to error
// messages, or nil if all fields are valid.
func (r LoginRequest) Validate() map[string]string {
	errs := make(map[string]string)

	email := strings.TrimSpace(r.Email)
	switch {
	case email == "":
		errs["email"] = "E-Mail ist erforderlich"
	case !reEmail.MatchString(email):
		errs["email"] = "Ungültige E-Mail-Adresse"
	}

	if r.Password == "" {
		errs["password"] = "Passwort ist erforderlich"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Validate checks the reset-request form.
func (r ResetRequest) Validate() map[string]string {
	if strings.TrimSpace(r.Email) == "" {
		return map[string]string{"email": "E-Mail ist erforderlich"}
	}
	return nil
}

// Validate checks the new password and its confirmation.
func (r ResetPasswordRequest) Validate() map[string]string {
	errs := make(map[string]string)

	switch {
	case r.Token == "":
		errs["token"] = "Reset-Link ist ungültig."
	case len(r.Password) < minPasswordLength:
		errs["password"] = "Passwort zu kurz."
	case r.Password != r.Confirm:
		errs["confirm"] = "Passwörter stimmen nicht überein."
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
