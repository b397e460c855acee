// /home/krylon/go/src/github.com/blicero/asclepius/objects/view.go
// -*- mode: go; coding: utf-8; -*-
// Created on 05. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-05-28 16:33:17 krylon>

package objects

//go:generate ffjson view.go

// DoseEntry is a Dose paired with the Medication it belongs to, the way
// the frontend wants to display it.
type DoseEntry struct {
	Medication Medication
	Dose       Dose
}

// DayAdherence summarizes one calendar day: how many Doses were scheduled,
// how many of those the user confirmed, and the resulting adherence rate.
// Rate is zero - not NaN - for days without any scheduled Doses.
type DayAdherence struct {
	Date      Date
	Scheduled int
	Taken     int
	Rate      float64
	Entries   []DoseEntry
}
