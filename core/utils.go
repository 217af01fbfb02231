package core

import (
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// NullableString returns nil for blank strings.
func NullableString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Percentage returns round(part/total*100). An empty total counts as fully done.
func Percentage(part, total int) int {
	if total <= 0 {
		return 100
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

// Getwd returns the project root: the closest parent directory holding the go.mod file.
// go-test changes the working directory to the package being tested, hence the walk up.
func Getwd() string {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}
	currDir := wd
	for {
		if fi, err := os.Stat(filepath.Join(currDir, "go.mod")); err == nil && !fi.IsDir() {
			return currDir
		}
		newDir := filepath.Dir(currDir)
		if newDir == string(os.PathSeparator) || newDir == currDir {
			return wd
		}
		currDir = newDir
	}
}

// ParseDay parses a calendar date given as YYYY-MM-DD or RFC3339 and returns UTC midnight of that date.
func ParseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// Today returns midnight (UTC-based date value) of the current day in loc.
func Today(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

var lenientDayLayouts = []string{
	DateLayout,
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"January 2 2006",
	"2 Jan 2006",
	"2 January 2006",
	"01/02/2006",
}

var lenientYearlessLayouts = []string{"Jan 2", "January 2", "2 Jan", "2 January"}

// ParseLenientDay parses human-typed dates such as "Nov 15", "Nov 15, 2025" or "2025-11-15".
// Dates without a year fall in the current year of loc. Returns UTC midnight of the date.
func ParseLenientDay(s string, now time.Time, loc *time.Location) (time.Time, error) {
	s = strings.Join(strings.Fields(s), " ")
	if t, err := ParseDay(s); err == nil {
		return t, nil
	}
	for _, layout := range lenientDayLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	for _, layout := range lenientYearlessLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(now.In(loc).Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, errors.Errorf("unrecognized date %q", s)
}
