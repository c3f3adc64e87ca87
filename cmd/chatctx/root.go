package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/sandevgo/chatctx/internal/config"
	"github.com/sandevgo/chatctx/pkg/log"
)

var (
	debug bool
)

var rootCmd = &cobra.Command{
	Use:   "chatctx",
	Short: "chatctx — conversational context engine",
	Long:  `chatctx detects follow-up questions, tracks conversation state, and serves relevant history from a graph-structured session memory.`,
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
