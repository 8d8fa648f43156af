package model

import (
	"fmt"
	"time"
)

// CurrentSeason returns the season (named by its ending year) in progress at
// now. The NBA season opens in October, so from October onward the current
// season is the following calendar year.
func CurrentSeason(now time.Time) int {
	if now.Month() >= time.October {
		return now.Year() + 1
	}
	return now.Year()
}

// SeasonLabel formats a season by its ending year, e.g. 2025 -> "2024-25".
func SeasonLabel(season int) string {
	return fmt.Sprintf("%d-%02d", season-1, season%100)
}
