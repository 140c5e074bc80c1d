package main

import (
	"context"
	"os"

	"github.com/openpulse/pulse/internal/config"
	"github.com/openpulse/pulse/pkg/log"
	"github.com/spf13/cobra"
)

var (
	debug bool
)

var rootCmd = &cobra.Command{
	Use:   "pulse",
	Short: "PULSE — contextual memory and adaptive reasoning",
	Long:  `PULSE is a personal technical assistant with layered memory and a fast/deep reasoning dispatcher.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags available to all subcommands
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", config.IsDebug(), "enable debug logging")
}

func setupLogger(ctx context.Context) (context.Context, func()) {
	isDebug := debug || config.IsDebug()
	return log.NewContextWithLogger(ctx, isDebug)
}
