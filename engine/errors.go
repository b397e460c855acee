// /home/krylon/go/src/github.com/blicero/asclepius/engine/errors.go
// -*- mode: go; coding: utf-8; -*-
// Created on 12. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-05-28 17:40:31 krylon>

package engine

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a lookup or update referred to a Medication
// that does not exist.
var ErrNotFound = errors.New("medication was not found")

// ValidationError indicates that a Medication passed to the Engine had a
// field with an unacceptable value.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Invalid %s: %s",
		e.Field,
		e.Reason)
} // func (e *ValidationError) Error() string
