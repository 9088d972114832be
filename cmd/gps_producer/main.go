// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/relabs-tech/gps_speedometer/internal/app"
	"github.com/relabs-tech/gps_speedometer/internal/config"
	"github.com/relabs-tech/gps_speedometer/internal/logging"
)

func main() {
	configPath := pflag.StringP("config", "c", "./gps_config.txt", "path to configuration file")
	pflag.Parse()

	// Load configuration
	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatal("failed to load config", "err", err)
	}
	cfg := config.Get()

	logger, err := logging.New("gps", cfg.LogLevel)
	if err != nil {
		log.Fatal("failed to create logger", "err", err)
	}
	logger.Info("starting GPS producer (GPGGA → MQTT)")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunGPSProducer(ctx, cfg, logger); err != nil {
		logger.Fatal("fatal", "err", err)
	}
}
