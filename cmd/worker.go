package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start background workers such as the recurring obligation sweeper.`,
}

var recurringWorkerCmd = &cobra.Command{
	Use:   "recurring",
	Short: "Materialize due loan EMIs and SIP installments on a schedule",
	Long:  `Sweep every user with a loan or SIP due today through the worker pool, once at start and then on every tick.`,
	Run: func(cmd *cobra.Command, args []string) {
		startRecurringWorker()
	},
}

var (
	workerInterval time.Duration
	workerOnce     bool
)

func startRecurringWorker() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	defer a.close()

	interval := workerInterval
	if interval <= 0 {
		interval = a.cfg.Recurring.WorkerInterval
	}
	if interval <= 0 {
		interval = time.Hour
	}

	a.logger.Info("starting recurring worker",
		"interval", interval,
		"max_workers", a.cfg.Recurring.MaxWorkers,
		"job_queue_size", a.cfg.Recurring.JobQueueSize,
		"timezone", a.location.String())

	sweep := func() {
		start := time.Now()
		created, err := a.recurring.ProcessAll(ctx, time.Now().In(a.location))
		if err != nil {
			a.logger.Error("recurring sweep failed", "error", err)
			return
		}
		a.logger.Info("recurring sweep finished", "created", created, "duration_ms", time.Since(start).Milliseconds())
	}

	sweep()
	if workerOnce {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("received signal, shutting down recurring worker")
			return
		case <-ticker.C:
			sweep()
		}
	}
}

func init() {
	recurringWorkerCmd.Flags().DurationVar(&workerInterval, "interval", 0, "sweep interval (overrides config)")
	recurringWorkerCmd.Flags().BoolVar(&workerOnce, "once", false, "run a single sweep and exit")

	workerCmd.AddCommand(recurringWorkerCmd)

	rootCmd.AddCommand(workerCmd)
}
