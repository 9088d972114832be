// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/relabs-tech/gps_speedometer/internal/app"
	"github.com/relabs-tech/gps_speedometer/internal/gps"
	"github.com/relabs-tech/gps_speedometer/internal/logging"
)

func main() {
	policyFlag := pflag.String("partial", "accept", "partial decode policy: accept or reject")
	level := pflag.StringP("log-level", "l", "warn", "log level")
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: replay [flags] capture.nmea\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if pflag.NArg() != 1 {
		pflag.Usage()
		os.Exit(2)
	}

	policy, err := gps.ParsePartialPolicy(*policyFlag)
	if err != nil {
		log.Fatal("bad --partial", "err", err)
	}
	logger, err := logging.New("replay", *level)
	if err != nil {
		log.Fatal("failed to create logger", "err", err)
	}

	f, err := os.Open(pflag.Arg(0))
	if err != nil {
		logger.Fatal("open capture", "err", err)
	}
	defer f.Close()

	if _, err := app.RunReplay(f, os.Stdout, policy, logger); err != nil {
		logger.Fatal("fatal", "err", err)
	}
}
