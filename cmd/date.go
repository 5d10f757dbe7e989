/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"cloud.google.com/go/civil"
)

// The first published snapshot.
var firstSnapshot = civil.Date{Year: 2025, Month: 11, Day: 7}

type ParsedDate struct {
	Date  civil.Date
	Year  bool
	Month bool
	Day   bool
}

var (
	yearPattern     = regexp.MustCompile(`^\d{4}$`)
	monthPattern    = regexp.MustCompile(`^\d{4}-\d{2}$`)
	dayPattern      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	relativePattern = regexp.MustCompile(`^(\d+)([dwmy])$`)
)

var today = func() civil.Date {
	return civil.DateOf(time.Now())
}

// parseDateRangeFromArgs returns the days covered by the arguments as a
// half-open range [start, end). With no arguments the range runs from the
// first published snapshot through today.
func parseDateRangeFromArgs(args []string) (start civil.Date, end civil.Date, err error) {
	switch len(args) {
	case 0:
		start, end = firstSnapshot, today().AddDays(1)

	case 1:
		start, end, err = getImplicitDateRange(args[0])

	case 2:
		start, end, err = getExplicitDateRange(args[0], args[1])

	default:
		err = fmt.Errorf("Expected at most two date arguments")
	}
	return
}

func getImplicitDateRange(ds string) (start civil.Date, end civil.Date, err error) {
	date, err := parseSingleDatestring(ds)
	if err != nil {
		return
	}

	start = date.Date
	switch {
	case date.Year:
		end = civil.Date{Year: start.Year + 1, Month: time.January, Day: 1}

	case date.Month:
		end = civil.DateOf(start.In(time.UTC).AddDate(0, 1, 0))

	case date.Day:
		end = start.AddDays(1)

	default:
		// Relative dates run through today.
		end = today().AddDays(1)
	}

	return
}

// getExplicitDateRange covers everything from the start of the first argument
// through the end of the second.
func getExplicitDateRange(startString, endString string) (start civil.Date, end civil.Date, err error) {
	startParsed, err := parseSingleDatestring(startString)
	if err != nil {
		return
	}
	start = startParsed.Date

	_, end, err = getImplicitDateRange(endString)
	if err != nil {
		return
	}
	if !start.Before(end) {
		err = fmt.Errorf("Start %s is not before end %s", start, end)
	}

	return
}

func parseSingleDatestring(ds string) (date ParsedDate, err error) {
	switch {
	case yearPattern.MatchString(ds):
		var t time.Time
		t, err = time.Parse("2006", ds)
		if err != nil {
			err = fmt.Errorf("Parsing datestring as year: %w", err)
			return
		}
		date.Date = civil.DateOf(t)
		date.Year = true

	case monthPattern.MatchString(ds):
		var t time.Time
		t, err = time.Parse("2006-01", ds)
		if err != nil {
			err = fmt.Errorf("Parsing datestring as month: %w", err)
			return
		}
		date.Date = civil.DateOf(t)
		date.Month = true

	case dayPattern.MatchString(ds):
		date.Date, err = civil.ParseDate(ds)
		if err != nil {
			err = fmt.Errorf("Parsing datestring as day: %w", err)
			return
		}
		date.Day = true

	case relativePattern.MatchString(ds):
		m := relativePattern.FindStringSubmatch(ds)
		amount, _ := strconv.Atoi(m[1])
		now := today()
		switch m[2] {
		case "d":
			date.Date = now.AddDays(-amount)
		case "w":
			date.Date = now.AddDays(-amount * 7)
		case "m":
			date.Date = civil.DateOf(now.In(time.UTC).AddDate(0, -amount, 0))
		case "y":
			date.Date = civil.DateOf(now.In(time.UTC).AddDate(-amount, 0, 0))
		}

	default:
		err = fmt.Errorf("Invalid format: %q", ds)
	}
	return
}

// parseDay parses an optional single day. An empty string gives the zero
// date, which the trend engine resolves from the stored dates.
func parseDay(ds string) (civil.Date, error) {
	if ds == "" {
		return civil.Date{}, nil
	}
	date, err := parseSingleDatestring(ds)
	if err != nil {
		return civil.Date{}, err
	}
	if date.Year || date.Month {
		return civil.Date{}, fmt.Errorf("Expected a single day, got %q", ds)
	}
	return date.Date, nil
}

// daysInRange lists every day in [start, end).
func daysInRange(start, end civil.Date) []civil.Date {
	var days []civil.Date
	for d := start; d.Before(end); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}
