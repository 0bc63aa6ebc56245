package main

import (
	"log/slog"
	"os"

	"us-screener/internal/slogx"
)

func init() {
	slog.SetDefault(slogx.NewDefault("info", "text"))
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
