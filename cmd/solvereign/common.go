package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/maruel/subcommands"

	"github.com/DRNaser/shift-optimizer-sub005/internal/forecast"
)

func errToCode(a subcommands.Application, err error) int {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", a.GetName(), err)
		return 1
	}
	return 0
}

// parseWeekAnchor parses a -week-anchor flag value (YYYY-MM-DD, UTC) and
// rejects anything that isn't a Monday, since every downstream component
// assumes the week anchor is the canonical week start.
func parseWeekAnchor(raw string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("-week-anchor must be YYYY-MM-DD: %w", err)
	}
	if t.Weekday() != time.Monday {
		return time.Time{}, fmt.Errorf("-week-anchor %s is not a Monday", raw)
	}
	return t, nil
}

func readForecastFile(path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("forecast file path is required")
	}
	return os.ReadFile(path)
}

// parseForecastFile reads path and runs the whitelist parser over it.
func parseForecastFile(ctx context.Context, path string) (forecast.Result, error) {
	raw, err := readForecastFile(path)
	if err != nil {
		return forecast.Result{}, err
	}
	return forecast.Parse(ctx, raw, forecast.DefaultWhitelist())
}
