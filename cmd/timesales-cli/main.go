package main

import (
	"context"
	"timesales-scraper/cmd/timesales-cli/commands"
	"timesales-scraper/lib/serviceutil"
	"timesales-scraper/lib/telemetry"
)

func main() {
	ctx := serviceutil.SignalContext()
	telemetry.SetupFromEnv(ctx, "timesales-cli")
	telemetry.InitSlog(true)
	// flush batched spans and metrics before exiting; the signal
	// context may already be cancelled by the time we get here
	defer telemetry.Shutdown(context.Background())
	commands.ExecuteContext(ctx)
}
