package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/skilladmin/internal/errors"
	"github.com/felixgeelhaar/skilladmin/internal/metrics"
	"github.com/felixgeelhaar/skilladmin/internal/tui"
)

func newDashboardCmd() *cobra.Command {
	var metricsListen string

	cmd := &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"ui"},
		Short:   "Open the interactive admin dashboard",
		Long: `Open the full-screen dashboard with tabs for users, reels, skills and
sub-skills. Without a stored session the login form is shown first.

Keys: tab/shift+tab switch tabs, n new, e edit, d delete, [ ] page,
+ page size, r refresh, L log out, q quit.

With --metrics-listen the process also serves Prometheus metrics, e.g.
  skilladmin dashboard --metrics-listen 127.0.0.1:9464
`,
		Args: cobra.NoArgs,
		RunE: withRuntime(func(ctx context.Context, rt *runtime, _ []string) error {
			if metricsListen == "" {
				metricsListen = rt.cfg.Metrics.Listen
			}
			if metricsListen != "" {
				srv, err := metrics.Listen(metricsListen, rt.reg)
				if err != nil {
					return errors.Wrap(errors.ErrCodeConfigInvalid, "cannot serve metrics on "+metricsListen, err).
						WithSuggestion("Pick a free address or clear metrics.listen")
				}
				rt.log.Info("serving metrics", "addr", srv.Addr())
				defer func() {
					sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
					defer cancel()
					_ = srv.Shutdown(sctx)
				}()
			}

			if _, err := rt.guard.Start(ctx); err != nil {
				return errors.NewStoreUnavailableError(rt.cfg.Session.Backend, err)
			}
			return tui.Run(ctx, rt.guard, rt.client)
		}),
	}

	cmd.Flags().StringVar(&metricsListen, "metrics-listen", "", "serve Prometheus metrics on this address (default metrics.listen)")
	return cmd
}
