// Scheduled/manual sync runner. Exit code is non-zero when connectivity
// failed or any group errored, so cron alerting works off the exit status.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go-punchsync/internal/app"
	"go-punchsync/internal/sync"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	sourceFlag := flag.String("source", "all", "source to sync: devicelog, accesslog or all")
	sinceFlag := flag.String("since", "", "sync events after this date (YYYY-MM-DD), overrides the watermark")
	fullFlag := flag.Bool("full", false, "ignore the watermark, use the full default lookback")
	testFlag := flag.Bool("test", false, "only probe source connectivity, exit 0/1")
	flag.Parse()

	_ = godotenv.Load()
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	os.Exit(run(*sourceFlag, *sinceFlag, *fullFlag, *testFlag, logger))
}

func run(sourceName, since string, full, testOnly bool, logger *zap.Logger) int {
	cfg := app.LoadConfig()

	deps, err := app.Connect(cfg)
	if err != nil {
		logger.Error("connect failed", zap.Error(err))
		return 1
	}
	defer deps.Close()

	service := app.NewSyncService(deps, cfg)
	ctx := context.Background()

	if testOnly {
		ok := true
		for name, reachable := range service.TestConnections(ctx) {
			fmt.Printf("%-12s %s\n", name, reachability(reachable))
			ok = ok && reachable
		}
		if !ok {
			return 1
		}
		return 0
	}

	opts := sync.SyncOptions{Full: full}
	if since != "" {
		t, err := time.ParseInLocation("2006-01-02", since, time.Local)
		if err != nil {
			logger.Error("invalid --since date", zap.String("since", since))
			return 1
		}
		opts.Since = &t
	}

	runs, err := service.Run(ctx, sourceName, opts)
	if err != nil {
		logger.Error("sync failed", zap.Error(err))
		return 1
	}

	failed := false
	for _, r := range runs {
		printRun(r)
		failed = failed || r.Failed()
	}
	if failed {
		return 1
	}
	return 0
}

func printRun(r sync.RunResult) {
	if r.Error != nil {
		fmt.Printf("%s: FAILED (%s) %s\n", r.Source, r.Error.Code, r.Error.Message)
		return
	}
	s := r.Stats
	fmt.Printf("%s: fetched=%d check_ins=%d check_outs=%d skipped=%d lates=%d overtimes=%d errors=%d not_found=%d created=%d (%dms)\n",
		r.Source, s.Fetched, s.CheckIns, s.CheckOuts, s.Skipped,
		s.Lates, s.Overtimes, s.Errors, s.EmployeesNotFound, s.EmployeesCreated,
		s.DurationMs,
	)
}

func reachability(ok bool) string {
	if ok {
		return "OK"
	}
	return "UNREACHABLE"
}
