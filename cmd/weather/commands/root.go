// Package commands implements the weather command line.
package commands

import (
	"context"
	"fmt"

	"github.com/fakhrymubarak/weather-forecast-redis/internal/service"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the command backed by the configured forecast service.
func NewRootCmd() *cobra.Command {
	return newRootCmd(func(ctx context.Context) service.ForecastServiceInterface {
		return service.NewDefaultForecastService(ctx)
	})
}

func newRootCmd(newResolver func(ctx context.Context) service.ForecastServiceInterface) *cobra.Command {
	return &cobra.Command{
		Use:           "weather <location>",
		Short:         "Get the weather forecast for a place (with Redis cache)",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			payload, origin, err := newResolver(ctx).Resolve(ctx, args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", origin.Label(), payload)
			return err
		},
	}
}
