package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/skilladmin/internal/api"
	"github.com/felixgeelhaar/skilladmin/internal/config"
	"github.com/felixgeelhaar/skilladmin/internal/errors"
	"github.com/felixgeelhaar/skilladmin/internal/health"
	"github.com/felixgeelhaar/skilladmin/internal/session"
	"github.com/felixgeelhaar/skilladmin/internal/ux"
)

type doctorReport struct {
	Status health.Status   `json:"status" yaml:"status"`
	Checks []health.Report `json:"checks" yaml:"checks"`
}

func (d doctorReport) Table() *ux.Table {
	t := ux.NewTable("CHECK", "STATUS", "MESSAGE", "DETAILS")
	t.Title = "Diagnostics"
	for _, c := range d.Checks {
		t.AddRow(c.Name, c.Status.String(), c.Message, details(c.Details))
	}
	t.Footer = "Overall: " + d.Status.String()
	return t
}

func details(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, m[k])
	}
	return strings.Join(parts, " ")
}

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the config, session store and admin API",
		Long: `Run diagnostics for everything skilladmin depends on and print a report.

Exits non-zero when any check is unhealthy. A missing session is only
reported as degraded.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}

			manager := health.NewManager()
			cfg, cfgErr := loadConfig(cc)
			if cfgErr != nil {
				manager.AddChecker(health.Static("config", health.Unhealthy(cfgErr.Error())))
				// Check what can still be checked against the defaults.
				cfg = config.Default()
				applyFlags(cfg, cc)
			} else {
				manager.AddChecker(health.Static("config", health.Healthy("configuration is valid").
					WithDetail("file", orNone(cfg.Path))))
			}

			store, err := session.Open(ctx, sessionConfig(cfg))
			if err != nil {
				manager.AddChecker(health.Static("session", health.Unhealthy("session store cannot be opened").
					WithDetail("backend", cfg.Session.Backend).
					WithDetail("error", err.Error())))
				store = session.NewMemoryStore()
			} else {
				manager.AddChecker(health.NewSessionChecker(store, cfg.Session.Backend))
			}
			defer func() { _ = session.Close(store) }()

			client, err := api.New(cfg.API.BaseURL, store, api.WithTimeout(cfg.API.Timeout))
			if err != nil {
				manager.AddChecker(health.Static("admin-api", health.Unhealthy(err.Error())))
			} else {
				manager.AddChecker(health.NewAPIChecker(client))
			}
			manager.AddChecker(health.ContractChecker())

			reports := manager.Check(ctx)
			report := doctorReport{Status: manager.OverallStatus(reports), Checks: reports}

			out, err := ux.NewFormatter(cfg.Defaults.Format, &ux.FormatterOptions{
				Writer:  cmd.OutOrStdout(),
				NoColor: cfg.Defaults.NoColor,
			})
			if err != nil {
				return errors.Wrap(errors.ErrCodeInputInvalid, "invalid --format", err)
			}
			if err := out.Format(report); err != nil {
				return err
			}
			if report.Status == health.StatusUnhealthy {
				return errUnhealthy(reports)
			}
			return nil
		},
	}
}

func errUnhealthy(reports []health.Report) error {
	var failed []string
	for _, r := range reports {
		if r.Status == health.StatusUnhealthy {
			failed = append(failed, r.Name)
		}
	}
	return fmt.Errorf("doctor: unhealthy checks: %s", strings.Join(failed, ", "))
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
