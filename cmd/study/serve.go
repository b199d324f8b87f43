// ABOUTME: CLI command running the HTTP API with the scheduled notification check.
// ABOUTME: Recomputes and evaluates once at startup, then on the configured cron schedule.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/harperreed/study/internal/api"
	"github.com/harperreed/study/internal/events"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API used by the web client.

Routes live under /api (disciplines, tasks, sessions, results, goals, reviews,
evolution, performance history, notifications, sync). When static_dir is set the
web client build is served at /.

On startup the evolution tables are recomputed and a notification check runs.
The check repeats on check_schedule (cron syntax, default "5 0 * * *") so goals
whose end date passes without any new activity still transition to failed.

EXAMPLES:

  study serve
  study serve --addr :8080`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := current
		addr := serveAddr
		if addr == "" {
			addr = a.cfg.GetListenAddr()
		}

		if a.cfg.GetLogMode() != "dev" {
			gin.SetMode(gin.ReleaseMode)
		}
		router := api.NewRouter(a.svc, a.log.With("component", "api"), api.Options{
			CORSOrigins: a.cfg.GetCORSOrigins(),
			StaticDir:   a.cfg.GetStaticDir(),
			Spreadsheet: a.cfg.GetSpreadsheetPath(),
			Location:    a.loc,
		})
		srv := &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		scheduler, err := newScheduler(ctx, a, a.cfg.GetCheckSchedule())
		if err != nil {
			return err
		}

		runCheck(ctx, a, "startup")

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			color.Green("✓ Listening on http://%s", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			scheduler.Start()
			<-gctx.Done()
			<-scheduler.Stop().Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
		return g.Wait()
	},
}

// newScheduler registers the periodic check. The returned cron is not started.
func newScheduler(ctx context.Context, a *app, spec string) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(a.loc))
	if _, err := c.AddFunc(spec, func() { runCheck(ctx, a, "schedule") }); err != nil {
		return nil, fmt.Errorf("invalid check_schedule %q: %w", spec, err)
	}
	return c, nil
}

func runCheck(ctx context.Context, a *app, reason string) {
	out, err := a.dispatcher.Publish(ctx, events.CheckRequested{Reason: reason, Recompute: true})
	if err != nil {
		a.log.Error("notification check failed", "reason", reason, "error", err)
	}
	if out != nil {
		a.log.Info("notification check done", "reason", reason, "created", len(out.Notifications))
	}
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, 127.0.0.1:5000)")
	rootCmd.AddCommand(serveCmd)
}
