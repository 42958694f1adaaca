package discord

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"

	"calbot/internal/ports/input"
)

// RunReminders polls runner every interval until ctx is done. A poll still
// running when the next one is due is skipped, never doubled.
func RunReminders(ctx context.Context, runner input.ReminderRunner, interval, timeout time.Duration) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			tickCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			if err := runner.Tick(tickCtx); err != nil {
				log.Error().Err(err).Msg("reminder tick failed")
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}

	log.Info().Dur("interval", interval).Msg("reminder scheduler started")
	scheduler.Start()
	<-ctx.Done()
	return scheduler.Shutdown()
}
