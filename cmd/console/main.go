// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/relabs-tech/gps_speedometer/internal/app"
	"github.com/relabs-tech/gps_speedometer/internal/logging"
)

func main() {
	interval := pflag.DurationP("interval", "i", 200*time.Millisecond, "time between fixes")
	level := pflag.StringP("log-level", "l", "info", "log level")
	pflag.Parse()

	logger, err := logging.New("console", *level)
	if err != nil {
		log.Fatal("failed to create logger", "err", err)
	}
	logger.Info("starting GPS speedometer (mock console)")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunMockConsole(ctx, os.Stdout, *interval, logger); err != nil {
		logger.Fatal("fatal", "err", err)
	}
}
