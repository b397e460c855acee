// /home/krylon/go/src/github.com/blicero/asclepius/objects/dose.go
// -*- mode: go; coding: utf-8; -*-
// Created on 04. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-06-01 21:14:02 krylon>

package objects

import (
	"fmt"
	"time"

	"github.com/blicero/asclepius/objects/status"
)

//go:generate ffjson dose.go

// Dose is one scheduled instance of taking one Medication at one time of
// day on one date.
// For a given Medication there is at most one Dose per (date, time) pair.
type Dose struct {
	ID           int64
	MedicationID int64
	Date         Date
	Time         string
	Status       status.Status
	TakenAt      time.Time
	UUID         string
	Changed      time.Time
}

// Key returns the string that identifies the slot a Dose occupies,
// i.e. medication, date and time of day. Generating Doses twice for
// the same Medication must not produce two Doses with equal Keys.
func (d *Dose) Key() string {
	return fmt.Sprintf("%d/%s/%s",
		d.MedicationID,
		d.Date,
		d.Time)
} // func (d *Dose) Key() string

// IsOverdue returns true if the Dose's scheduled date and time lie
// strictly in the past, relative to the given reference time.
// It does not consider the Dose's Status.
func (d *Dose) IsOverdue(ref time.Time) bool {
	var today = DateOf(ref)

	if d.Date.Before(today) {
		return true
	}

	return d.Date.Equal(today) && d.Time < ref.Format("15:04")
} // func (d *Dose) IsOverdue(ref time.Time) bool

// DueAt returns the timestamp the Dose is scheduled for.
func (d *Dose) DueAt() (time.Time, error) {
	var t, err = time.ParseInLocation(
		"2006-01-02 15:04",
		fmt.Sprintf("%s %s", d.Date, d.Time),
		time.Local)

	if err != nil {
		return t, fmt.Errorf("Cannot parse due time of Dose %s: %s",
			d.Key(),
			err.Error())
	}

	return t, nil
} // func (d *Dose) DueAt() (time.Time, error)

// UniqueID returns an identifier that is unique across instances,
// i.e. a UUID.
func (d *Dose) UniqueID() string {
	return d.UUID
} // func (d *Dose) UniqueID() string
