package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fakhrymubarak/weather-forecast-redis/cmd/weather/commands"
	"github.com/fakhrymubarak/weather-forecast-redis/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := commands.NewRootCmd().ExecuteContext(ctx)
	stop()
	_ = config.GetLogger().Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not get weather data: %v\n", err)
		os.Exit(1)
	}
}
