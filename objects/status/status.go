// /home/krylon/go/src/github.com/blicero/asclepius/objects/status/status.go
// -*- mode: go; coding: utf-8; -*-
// Created on 04. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-04-04 17:51:30 krylon>

//go:generate stringer -type=Status

// Package status contains symbolic constants to describe the state
// of a single Dose.
package status

// Status describes the state of one Dose.
type Status uint8

// Scheduled means the Dose lies in the future (or has not been swept yet),
// Taken means the user has confirmed taking it,
// Missed means its time has passed without confirmation.
//
// Taken is terminal. Missed can still become Taken if the user confirms
// late, but it never reverts to Scheduled.
const (
	Scheduled Status = iota
	Taken
	Missed
)
