package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"MarketSeries/internal/recorder"
	"MarketSeries/internal/scheduler"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the batch once and write the output CSV",
	RunE:  runBatch,
}

func runBatch(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, rec, _, err := newPipeline(cfg, log)
	if err != nil {
		return err
	}
	defer rec.Close()

	// Stage and cause are logged by the pipeline.
	_, err = p.Run(ctx)
	return err
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Re-run the batch on the configured cron schedule until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		p, rec, tn, err := newPipeline(cfg, log)
		if err != nil {
			return err
		}
		defer rec.Close()

		sched := scheduler.NewScheduler(ctx, p, log)
		if sr, ok := rec.(*recorder.SQLiteRecorder); ok {
			sched.History = sr
		}
		if err := sched.Register(cfg.Schedule.Cron); err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()

		if tn != nil {
			go tn.StartPolling(ctx, sched.HandleCommand)
			log.Info("telegram polling started")
		}
		if now, _ := cmd.Flags().GetBool("now"); now {
			go sched.RunNow()
		}

		log.WithField("cron", cfg.Schedule.Cron).Info("MarketSeries is running. Press Ctrl+C to stop.")
		<-ctx.Done()
		log.Info("shutdown signal received, stopping...")
		return nil
	},
}

func init() {
	scheduleCmd.Flags().Bool("now", false, "also run once immediately")
}
