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
)

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: distance lat1 lon1 lat2 lon2\n")
		fmt.Fprintf(os.Stderr, "put -- before the first negative coordinate, e.g. distance -- -33.8688 151.2093 -37.8136 144.9631\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if err := app.RunDistance(pflag.Args(), os.Stdout); err != nil {
		log.Error("distance", "err", err)
		pflag.Usage()
		os.Exit(2)
	}
}
