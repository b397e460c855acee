// /home/krylon/go/src/github.com/blicero/asclepius/objects/date.go
// -*- mode: go; coding: utf-8; -*-
// Created on 04. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-06-01 21:09:44 krylon>

package objects

import (
	"fmt"
	"regexp"
	"time"

	"github.com/blicero/asclepius/common"
)

// Date is a calendar date, without a time of day attached to it.
// The original prototype compared dates as strings in one place and as
// parsed timestamps in another, which is asking for off-by-one-day bugs,
// so all date handling goes through this one type.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

var datePat = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)

// ParseDate parses a string of the form YYYY-MM-DD into a Date.
func ParseDate(s string) (Date, error) {
	var m = datePat.FindStringSubmatch(s)

	if m == nil {
		return Date{}, fmt.Errorf("Invalid date string %q (expect YYYY-MM-DD)", s)
	}

	var t, err = time.ParseInLocation(common.TimestampFormatDate, s, time.Local)

	if err != nil {
		return Date{}, err
	}

	return DateOf(t), nil
} // func ParseDate(s string) (Date, error)

// DateOf extracts the calendar date from the given timestamp, using the
// local time zone.
func DateOf(t time.Time) Date {
	var y, m, d = t.Date()
	return Date{Year: y, Month: m, Day: d}
} // func DateOf(t time.Time) Date

// Today returns the current date.
func Today() Date {
	return DateOf(time.Now())
} // func Today() Date

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d",
		d.Year,
		d.Month,
		d.Day)
} // func (d Date) String() string

// Time returns the local-midnight timestamp of the Date.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.Local)
} // func (d Date) Time() time.Time

// Cmp compares two Dates, returning -1, 0, or 1 if the receiver is
// before, equal to, or after the argument.
func (d Date) Cmp(other Date) int {
	switch {
	case d.Year != other.Year:
		return sign(d.Year - other.Year)
	case d.Month != other.Month:
		return sign(int(d.Month) - int(other.Month))
	default:
		return sign(d.Day - other.Day)
	}
} // func (d Date) Cmp(other Date) int

// Before returns true if the receiver is an earlier date than the argument.
func (d Date) Before(other Date) bool {
	return d.Cmp(other) < 0
} // func (d Date) Before(other Date) bool

// After returns true if the receiver is a later date than the argument.
func (d Date) After(other Date) bool {
	return d.Cmp(other) > 0
} // func (d Date) After(other Date) bool

// Equal returns true if both Dates refer to the same day.
func (d Date) Equal(other Date) bool {
	return d.Cmp(other) == 0
} // func (d Date) Equal(other Date) bool

// AddDays returns the Date n days after the receiver (n may be negative).
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
} // func (d Date) AddDays(n int) Date

// IsZero returns true if the receiver is the zero value.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
} // func (d Date) IsZero() bool

// MonthRange returns the first and last day of the given month.
func MonthRange(year int, month time.Month) (Date, Date) {
	var first = Date{Year: year, Month: month, Day: 1}
	// Day zero of the following month is the last day of this one.
	var last = DateOf(time.Date(year, month+1, 0, 0, 0, 0, 0, time.Local))

	return first, last
} // func MonthRange(year int, month time.Month) (Date, Date)

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
} // func sign(n int) int
