// /home/krylon/go/src/github.com/blicero/asclepius/objects/01_date_test.go
// -*- mode: go; coding: utf-8; -*-
// Created on 05. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-06-01 21:20:44 krylon>

package objects

import (
	"testing"
	"time"
)

func TestDateParse(t *testing.T) {
	type testCase struct {
		input     string
		expect    Date
		expectErr bool
	}

	var cases = []testCase{
		testCase{
			input:  "2023-04-05",
			expect: Date{Year: 2023, Month: time.April, Day: 5},
		},
		testCase{
			input:  "1999-12-31",
			expect: Date{Year: 1999, Month: time.December, Day: 31},
		},
		testCase{
			input:     "2023-4-5",
			expectErr: true,
		},
		testCase{
			input:     "05.04.2023",
			expectErr: true,
		},
		testCase{
			input:     "",
			expectErr: true,
		},
	}

	for _, c := range cases {
		var (
			err error
			d   Date
		)

		if d, err = ParseDate(c.input); err != nil {
			if !c.expectErr {
				t.Errorf("Cannot parse date %q: %s",
					c.input,
					err.Error())
			}
			continue
		} else if c.expectErr {
			t.Errorf("Parsing date %q should have failed, but it did not (-> %s)",
				c.input,
				d)
		} else if !d.Equal(c.expect) {
			t.Errorf("Unexpected result parsing %q: %s (expected %s)",
				c.input,
				d,
				c.expect)
		} else if d.String() != c.input {
			t.Errorf("Date %s does not render back to its input %q",
				d,
				c.input)
		}
	}
} // func TestDateParse(t *testing.T)

func TestDateCmp(t *testing.T) {
	type testCase struct {
		d1, d2 Date
		expect int
	}

	var cases = []testCase{
		testCase{
			d1:     Date{2023, time.April, 5},
			d2:     Date{2023, time.April, 5},
			expect: 0,
		},
		testCase{
			d1:     Date{2023, time.April, 5},
			d2:     Date{2023, time.April, 6},
			expect: -1,
		},
		testCase{
			d1:     Date{2023, time.May, 1},
			d2:     Date{2023, time.April, 30},
			expect: 1,
		},
		testCase{
			d1:     Date{2022, time.December, 31},
			d2:     Date{2023, time.January, 1},
			expect: -1,
		},
	}

	for _, c := range cases {
		if res := c.d1.Cmp(c.d2); res != c.expect {
			t.Errorf("Unexpected result comparing %s and %s: %d (expected %d)",
				c.d1,
				c.d2,
				res,
				c.expect)
		}
	}
} // func TestDateCmp(t *testing.T)

func TestDateAddDays(t *testing.T) {
	type testCase struct {
		d      Date
		n      int
		expect Date
	}

	var cases = []testCase{
		testCase{
			d:      Date{2023, time.April, 5},
			n:      1,
			expect: Date{2023, time.April, 6},
		},
		testCase{
			d:      Date{2023, time.April, 30},
			n:      1,
			expect: Date{2023, time.May, 1},
		},
		testCase{
			d:      Date{2023, time.December, 31},
			n:      1,
			expect: Date{2024, time.January, 1},
		},
		testCase{
			d:      Date{2024, time.February, 28},
			n:      1,
			expect: Date{2024, time.February, 29},
		},
		testCase{
			d:      Date{2023, time.March, 1},
			n:      -1,
			expect: Date{2023, time.February, 28},
		},
		testCase{
			d:      Date{2023, time.April, 5},
			n:      30,
			expect: Date{2023, time.May, 5},
		},
	}

	for _, c := range cases {
		if res := c.d.AddDays(c.n); !res.Equal(c.expect) {
			t.Errorf("Unexpected result for %s + %d days: %s (expected %s)",
				c.d,
				c.n,
				res,
				c.expect)
		}
	}
} // func TestDateAddDays(t *testing.T)

func TestMonthRange(t *testing.T) {
	type testCase struct {
		year          int
		month         time.Month
		first, last   Date
	}

	var cases = []testCase{
		testCase{
			year:  2023,
			month: time.April,
			first: Date{2023, time.April, 1},
			last:  Date{2023, time.April, 30},
		},
		testCase{
			year:  2023,
			month: time.February,
			first: Date{2023, time.February, 1},
			last:  Date{2023, time.February, 28},
		},
		testCase{
			year:  2024,
			month: time.February,
			first: Date{2024, time.February, 1},
			last:  Date{2024, time.February, 29},
		},
		testCase{
			year:  2023,
			month: time.December,
			first: Date{2023, time.December, 1},
			last:  Date{2023, time.December, 31},
		},
	}

	for _, c := range cases {
		var first, last = MonthRange(c.year, c.month)

		if !first.Equal(c.first) || !last.Equal(c.last) {
			t.Errorf("Unexpected range for %04d-%02d: %s - %s (expected %s - %s)",
				c.year,
				c.month,
				first,
				last,
				c.first,
				c.last)
		}
	}
} // func TestMonthRange(t *testing.T)

func TestValidTimeOfDay(t *testing.T) {
	type testCase struct {
		input  string
		expect bool
	}

	var cases = []testCase{
		testCase{"00:00", true},
		testCase{"09:00", true},
		testCase{"21:30", true},
		testCase{"23:59", true},
		testCase{"24:00", false},
		testCase{"9:00", false},
		testCase{"09:60", false},
		testCase{"09:00:00", false},
		testCase{"morning", false},
		testCase{"", false},
	}

	for _, c := range cases {
		if res := ValidTimeOfDay(c.input); res != c.expect {
			t.Errorf("Unexpected validation result for %q: %t",
				c.input,
				res)
		}
	}
} // func TestValidTimeOfDay(t *testing.T)

func TestDoseOverdue(t *testing.T) {
	var ref = time.Date(2023, time.April, 5, 10, 0, 0, 0, time.Local)

	type testCase struct {
		d      Dose
		expect bool
	}

	var cases = []testCase{
		testCase{
			d:      Dose{Date: Date{2023, time.April, 4}, Time: "21:00"},
			expect: true,
		},
		testCase{
			d:      Dose{Date: Date{2023, time.April, 5}, Time: "09:00"},
			expect: true,
		},
		testCase{
			d:      Dose{Date: Date{2023, time.April, 5}, Time: "10:00"},
			expect: false,
		},
		testCase{
			d:      Dose{Date: Date{2023, time.April, 5}, Time: "11:00"},
			expect: false,
		},
		testCase{
			d:      Dose{Date: Date{2023, time.April, 6}, Time: "09:00"},
			expect: false,
		},
	}

	for _, c := range cases {
		if res := c.d.IsOverdue(ref); res != c.expect {
			t.Errorf("Unexpected overdue status for Dose at %s %s (ref %s): %t",
				c.d.Date,
				c.d.Time,
				ref.Format("2006-01-02 15:04"),
				res)
		}
	}
} // func TestDoseOverdue(t *testing.T)
