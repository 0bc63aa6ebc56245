package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
)

type runCmd struct{}

type runDone struct{ err error }

// RunFlow orchestrates the screening loop: trigger → run → done → wait for the schedule → trigger.
// It returns on SIGINT/SIGTERM or when ctx is done; a run in progress is cancelled and awaited.
func (a *App) RunFlow(ctx context.Context, runNow bool) error {
	sched, err := cron.ParseStandard(a.Config.Schedule)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	trigger := make(chan runCmd, 1)
	done := make(chan runDone, 1)
	defer close(trigger)
	go func() {
		for range trigger {
			_, err := a.ScreenAndStore(ctx, nil)
			done <- runDone{err: err}
		}
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	running := false
	if runNow {
		trigger <- runCmd{}
		running = true
	}
	for {
		if running {
			select {
			case d := <-done:
				running = false
				if d.err != nil {
					a.Logger.Error("scheduled run failed", "error", d.err)
				}
				a.Logger.Info("done, wait until next run")
			case sig := <-signals:
				a.Logger.Info("received signal, graceful shutdown", "sig", sig)
				cancel()
				<-done
				return nil
			case <-ctx.Done():
				<-done
				return nil
			}
			continue
		}

		next := nextRunTime(sched, a.now())
		wait := time.Until(next)
		a.Logger.Info("timer waiting", "hours", wait.Hours(), "until", next.Format("2006-01-02 15:04"))
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
			trigger <- runCmd{}
			running = true
		case sig := <-signals:
			timer.Stop()
			a.Logger.Info("received signal, stopping", "sig", sig, "restart_at", next.Format("2006-01-02 15:04"))
			return nil
		case <-ctx.Done():
			timer.Stop()
			a.Logger.Debug("context done, stopping schedule")
			return nil
		}
	}
}

// nextRunTime is the next activation of sched after now, evaluated in UTC.
func nextRunTime(sched cron.Schedule, now time.Time) time.Time {
	return sched.Next(now.UTC())
}
