package cmd

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/skilladmin/internal/errors"
	"github.com/felixgeelhaar/skilladmin/internal/session"
	"github.com/felixgeelhaar/skilladmin/internal/tui"
	"github.com/felixgeelhaar/skilladmin/internal/ux"
)

func newLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with an admin account",
		Long: `Exchange admin credentials for a session token and store it.

Missing --email or --password values are prompted for when running in a
terminal. In scripts, pass both flags or set them from a secret store.

Examples:
  skilladmin login
  skilladmin login --email admin@example.com --password "$ADMIN_PASSWORD"
`,
		Args: cobra.NoArgs,
		RunE: withRuntime(func(ctx context.Context, rt *runtime, _ []string) error {
			var err error
			if email, err = promptIfEmpty(email, "email", tui.Prompt{Message: "Email", Required: true}); err != nil {
				return err
			}
			if password, err = promptIfEmpty(password, "password", tui.Prompt{Message: "Password", Required: true, Secret: true}); err != nil {
				return err
			}

			admin, err := rt.guard.Login(ctx, email, password)
			if err != nil {
				return rt.loginError(err)
			}
			rt.log.Info("logged in", "admin", admin.ID, "backend", rt.cfg.Session.Backend)
			return rt.out.Format(outcome{Message: "Logged in as " + displayName(admin)})
		}),
	}

	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	return cmd
}

// promptIfEmpty returns value, or asks for it when a terminal is attached.
func promptIfEmpty(value, flag string, p tui.Prompt) (string, error) {
	if strings.TrimSpace(value) != "" {
		return value, nil
	}
	if !tui.ShouldPrompt() {
		return "", errors.NewInputMissingError(flag)
	}
	v, err := tui.PromptForString(p)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeCredentialsInput, "failed to read "+flag, err)
	}
	return v, nil
}

func displayName(a session.Admin) string {
	switch {
	case a.FullName != "" && a.Email != "":
		return fmt.Sprintf("%s (%s)", a.FullName, a.Email)
	case a.Email != "":
		return a.Email
	case a.FullName != "":
		return a.FullName
	}
	return a.ID
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: withRuntime(func(ctx context.Context, rt *runtime, _ []string) error {
			if _, err := rt.guard.Start(ctx); err != nil {
				return errors.NewStoreUnavailableError(rt.cfg.Session.Backend, err)
			}
			if err := rt.guard.Logout(ctx); err != nil {
				return errors.NewStoreUnavailableError(rt.cfg.Session.Backend, err)
			}
			return rt.out.Format(outcome{Message: "Logged out."})
		}),
	}
}

// statusReport describes the stored session. Token claims are decoded
// without verification and only shown for information.
type statusReport struct {
	LoggedIn    bool       `json:"logged_in" yaml:"logged_in"`
	API         string     `json:"api" yaml:"api"`
	Backend     string     `json:"session_backend" yaml:"session_backend"`
	AdminID     string     `json:"admin_id,omitempty" yaml:"admin_id,omitempty"`
	AdminEmail  string     `json:"admin_email,omitempty" yaml:"admin_email,omitempty"`
	AdminName   string     `json:"admin_name,omitempty" yaml:"admin_name,omitempty"`
	Fingerprint string     `json:"token_fingerprint,omitempty" yaml:"token_fingerprint,omitempty"`
	Subject     string     `json:"token_subject,omitempty" yaml:"token_subject,omitempty"`
	IssuedAt    *time.Time `json:"token_issued_at,omitempty" yaml:"token_issued_at,omitempty"`
	ExpiresAt   *time.Time `json:"token_expires_at,omitempty" yaml:"token_expires_at,omitempty"`
	Expired     bool       `json:"token_expired,omitempty" yaml:"token_expired,omitempty"`
}

func (s statusReport) Table() *ux.Table {
	f := &fields{title: "Session"}
	if s.LoggedIn {
		f.add("Status", "logged in")
	} else {
		f.add("Status", "not logged in")
	}
	f.add("API", s.API)
	f.add("Backend", s.Backend)
	if !s.LoggedIn {
		return f.Table()
	}
	f.add("Admin", s.AdminName)
	f.add("Email", s.AdminEmail)
	f.add("Admin ID", s.AdminID)
	f.add("Token", s.Fingerprint)
	if s.Subject != "" {
		f.add("Subject", s.Subject)
	}
	if s.IssuedAt != nil {
		f.add("Issued", formatTime(s.IssuedAt))
	}
	if s.ExpiresAt != nil {
		exp := formatTime(s.ExpiresAt)
		if s.Expired {
			exp += " (expired)"
		}
		f.add("Expires", exp)
	}
	return f.Table()
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored session",
		Long: `Show whether a session is stored, for which admin, and what its token says.

The token is never printed; a short fingerprint identifies it instead.
Exits with code 5 when no session is stored.`,
		Args: cobra.NoArgs,
		RunE: withRuntime(func(ctx context.Context, rt *runtime, _ []string) error {
			report := statusReport{API: rt.client.BaseURL(), Backend: rt.cfg.Session.Backend}

			sess, err := rt.store.Get(ctx)
			switch {
			case stderrors.Is(err, session.ErrNoSession):
				if ferr := rt.out.Format(report); ferr != nil {
					return ferr
				}
				return errors.NewNotLoggedInError()
			case err != nil:
				return errors.NewStoreUnavailableError(rt.cfg.Session.Backend, err)
			}

			report.LoggedIn = true
			report.AdminID = sess.Admin.ID
			report.AdminEmail = sess.Admin.Email
			report.AdminName = sess.Admin.FullName
			report.Fingerprint = session.Fingerprint(sess.Token)
			if claims, err := session.InspectClaims(sess.Token); err == nil {
				report.Subject = claims.Subject
				report.IssuedAt = claims.IssuedAt
				report.ExpiresAt = claims.ExpiresAt
				report.Expired = claims.Expired(time.Now())
			} else {
				rt.log.Debug("token is not a JWT", "fingerprint", report.Fingerprint)
			}
			return rt.out.Format(report)
		}),
	}
}
