// /home/krylon/go/src/github.com/blicero/asclepius/objects/medication.go
// -*- mode: go; coding: utf-8; -*-
// Created on 04. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-06-01 21:12:30 krylon>

// Package objects provides the data types used by the application.
package objects

import (
	"regexp"
	"time"
)

//go:generate ffjson medication.go

// MinReminderTimes and MaxReminderTimes delimit how many reminder times
// a single Medication may carry.
const (
	MinReminderTimes = 1
	MaxReminderTimes = 6
)

var timePat = regexp.MustCompile(`^(?:[01][0-9]|2[0-3]):[0-5][0-9]$`)

// ValidTimeOfDay returns true if the given string is a time of day of the
// form HH:MM (24-hour clock, zero-padded).
// Since the strings are zero-padded and of fixed width, comparing them
// lexically orders them chronologically, which the rest of the application
// relies on.
func ValidTimeOfDay(s string) bool {
	return timePat.MatchString(s)
} // func ValidTimeOfDay(s string) bool

// Medication is a drug the user takes regularly, along with the times of
// day they mean to take it.
type Medication struct {
	ID            int64
	Name          string
	Dosage        string
	ReminderTimes []string
	UUID          string
	Changed       time.Time
}

// HasTime returns true if the given time of day is among the Medication's
// reminder times.
func (m *Medication) HasTime(t string) bool {
	for _, r := range m.ReminderTimes {
		if r == t {
			return true
		}
	}

	return false
} // func (m *Medication) HasTime(t string) bool

// UniqueID returns an identifier that is unique across instances,
// i.e. a UUID.
func (m *Medication) UniqueID() string {
	return m.UUID
} // func (m *Medication) UniqueID() string

// IsNewer returns true if the receiver's Changed stamp is more recent
// than the argument's.
func (m *Medication) IsNewer(other *Medication) bool {
	return m.Changed.After(other.Changed)
} // func (m *Medication) IsNewer(other *Medication) bool
