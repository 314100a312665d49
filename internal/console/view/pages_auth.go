package view

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/julis-sh/console/pkg/consolesdk"
)

// ExpiredFlag is the one-shot "session expired" marker left by a 401.
type ExpiredFlag interface {
	TakeExpiredFlag(ctx context.Context) bool
}

// Login asks for credentials and opens the start page on success.
func Login(api API, flags ExpiredFlag, nav Navigator) View {
	return ViewFunc(func(ctx context.Context, req *Request) error {
		_, _ = fmt.Fprintln(req.Out, "== Login ==")
		if flags.TakeExpiredFlag(ctx) {
			_, _ = fmt.Fprintln(req.Out, TextSessionExpired)
		}

		email, err := req.In.Prompt("E-Mail")
		if err != nil {
			return err
		}
		password, err := req.In.PromptSecret("Passwort")
		if err != nil {
			return err
		}

		form := consolesdk.LoginRequest{Email: strings.TrimSpace(email), Password: password}
		if errs := form.Validate(); errs != nil {
			printFieldErrors(req.Out, errs)
			return nil
		}

		if err := api.Login(ctx, form); err != nil {
			_, _ = fmt.Fprintln(req.Out, consolesdk.MessageOr(err, TextLoginFailed))
			return nil
		}

		nav.Navigate(PathHome)
		return nil
	})
}

// ResetRequest asks the backend to mail a reset link. The answer never
// reveals whether the address exists.
func ResetRequest(api API) View {
	return ViewFunc(func(ctx context.Context, req *Request) error {
		_, _ = fmt.Fprintln(req.Out, "== Passwort zurücksetzen ==")

		email, err := req.In.Prompt("E-Mail")
		if err != nil {
			return err
		}

		form := consolesdk.ResetRequest{Email: strings.TrimSpace(email)}
		if errs := form.Validate(); errs != nil {
			printFieldErrors(req.Out, errs)
			return nil
		}

		if err := api.RequestPasswordReset(ctx, form); err != nil {
			_, _ = fmt.Fprintln(req.Out, TextResetSendFailed)
			return nil
		}

		_, _ = fmt.Fprintln(req.Out, TextResetSent)
		return nil
	})
}

// ResetPassword sets a new password with the token from the reset link,
// passed as ?token=.
func ResetPassword(api API, nav Navigator) View {
	return ViewFunc(func(ctx context.Context, req *Request) error {
		token := req.Query.Get("token")
		if token == "" {
			_, _ = fmt.Fprintln(req.Out, TextResetNoToken)
			return nil
		}

		_, _ = fmt.Fprintln(req.Out, "== Neues Passwort setzen ==")
		pw, err := req.In.PromptSecret("Neues Passwort")
		if err != nil {
			return err
		}
		pw2, err := req.In.PromptSecret("Passwort wiederholen")
		if err != nil {
			return err
		}

		form := consolesdk.ResetPasswordRequest{Token: token, Password: pw, Confirm: pw2}
		if errs := form.Validate(); errs != nil {
			printFieldErrors(req.Out, errs)
			return nil
		}

		if err := api.ResetPassword(ctx, form); err != nil {
			_, _ = fmt.Fprintln(req.Out, consolesdk.MessageOr(err, TextResetFailed))
			return nil
		}

		_, _ = fmt.Fprintln(req.Out, TextResetDone)
		nav.Navigate(PathLogin)
		return nil
	})
}

// printFieldErrors prints validation messages in a stable order.
func printFieldErrors(w io.Writer, errs map[string]string) {
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		_, _ = fmt.Fprintln(w, errs[f])
	}
}
