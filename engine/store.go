// /home/krylon/go/src/github.com/blicero/asclepius/engine/store.go
// -*- mode: go; coding: utf-8; -*-
// Created on 12. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-05-30 20:11:53 krylon>

package engine

import (
	"time"

	"github.com/blicero/asclepius/objects"
	"github.com/blicero/asclepius/objects/status"
)

// Store is the Engine's view of the persistence layer.
// *database.Database satisfies it; the tests use an in-memory stand-in,
// so the Engine's logic can be exercised without touching the disk.
type Store interface {
	Begin() error
	Commit() error
	Rollback() error

	MedicationAdd(m *objects.Medication) error
	MedicationUpdate(m *objects.Medication) error
	MedicationDelete(id int64) error
	MedicationGetByID(id int64) (*objects.Medication, error)
	MedicationGetAll() ([]objects.Medication, error)

	DoseAdd(d *objects.Dose) error
	DoseGetByID(id int64) (*objects.Dose, error)
	DoseGetByMedication(medID int64) ([]objects.Dose, error)
	DoseGetByDate(date objects.Date) ([]objects.Dose, error)
	DoseGetByDateRange(start, end objects.Date) ([]objects.Dose, error)
	DoseGetScheduled() ([]objects.Dose, error)
	DoseSetStatus(d *objects.Dose, st status.Status) error
	DoseMarkTaken(d *objects.Dose, when time.Time) error
	DoseDeleteByMedication(medID int64) error
	DoseDeleteFuture(medID int64, after objects.Date) error
}
