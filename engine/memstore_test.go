// /home/krylon/go/src/github.com/blicero/asclepius/engine/memstore_test.go
// -*- mode: go; coding: utf-8; -*-
// Created on 13. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-06-02 21:08:16 krylon>

package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/blicero/asclepius/objects"
	"github.com/blicero/asclepius/objects/status"
)

// memStore is an in-memory Store so the Engine can be tested without a
// database file. It mimics the ordering the real queries deliver.
type memStore struct {
	medCnt  int64
	doseCnt int64
	meds    map[int64]*objects.Medication
	doses   map[int64]*objects.Dose
}

func newMemStore() *memStore {
	return &memStore{
		meds:  make(map[int64]*objects.Medication),
		doses: make(map[int64]*objects.Dose),
	}
} // func newMemStore() *memStore

func (ms *memStore) Begin() error    { return nil }
func (ms *memStore) Commit() error   { return nil }
func (ms *memStore) Rollback() error { return nil }

func (ms *memStore) MedicationAdd(m *objects.Medication) error {
	ms.medCnt++
	m.ID = ms.medCnt
	m.Changed = time.Now()
	var c = *m
	ms.meds[m.ID] = &c
	return nil
} // func (ms *memStore) MedicationAdd(m *objects.Medication) error

func (ms *memStore) MedicationUpdate(m *objects.Medication) error {
	if _, ok := ms.meds[m.ID]; !ok {
		return fmt.Errorf("Medication %d does not exist", m.ID)
	}
	m.Changed = time.Now()
	var c = *m
	ms.meds[m.ID] = &c
	return nil
} // func (ms *memStore) MedicationUpdate(m *objects.Medication) error

func (ms *memStore) MedicationDelete(id int64) error {
	delete(ms.meds, id)
	return nil
} // func (ms *memStore) MedicationDelete(id int64) error

func (ms *memStore) MedicationGetByID(id int64) (*objects.Medication, error) {
	var m, ok = ms.meds[id]
	if !ok {
		return nil, nil
	}
	var c = *m
	return &c, nil
} // func (ms *memStore) MedicationGetByID(id int64) (*objects.Medication, error)

func (ms *memStore) MedicationGetAll() ([]objects.Medication, error) {
	var list = make([]objects.Medication, 0, len(ms.meds))
	for _, m := range ms.meds {
		list = append(list, *m)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
} // func (ms *memStore) MedicationGetAll() ([]objects.Medication, error)

func (ms *memStore) DoseAdd(d *objects.Dose) error {
	for _, x := range ms.doses {
		if x.Key() == d.Key() {
			return fmt.Errorf("Dose %s already exists", d.Key())
		}
	}
	ms.doseCnt++
	d.ID = ms.doseCnt
	d.Changed = time.Now()
	var c = *d
	ms.doses[d.ID] = &c
	return nil
} // func (ms *memStore) DoseAdd(d *objects.Dose) error

func (ms *memStore) DoseGetByID(id int64) (*objects.Dose, error) {
	var d, ok = ms.doses[id]
	if !ok {
		return nil, nil
	}
	var c = *d
	return &c, nil
} // func (ms *memStore) DoseGetByID(id int64) (*objects.Dose, error)

func (ms *memStore) doseSelect(keep func(d *objects.Dose) bool) []objects.Dose {
	var list = make([]objects.Dose, 0, len(ms.doses))
	for _, d := range ms.doses {
		if keep(d) {
			list = append(list, *d)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if c := list[i].Date.Cmp(list[j].Date); c != 0 {
			return c < 0
		} else if list[i].Time != list[j].Time {
			return list[i].Time < list[j].Time
		}
		return list[i].ID < list[j].ID
	})
	return list
} // func (ms *memStore) doseSelect(keep func(d *objects.Dose) bool) []objects.Dose

func (ms *memStore) DoseGetByMedication(medID int64) ([]objects.Dose, error) {
	return ms.doseSelect(func(d *objects.Dose) bool {
		return d.MedicationID == medID
	}), nil
} // func (ms *memStore) DoseGetByMedication(medID int64) ([]objects.Dose, error)

func (ms *memStore) DoseGetByDate(date objects.Date) ([]objects.Dose, error) {
	return ms.doseSelect(func(d *objects.Dose) bool {
		return d.Date.Equal(date)
	}), nil
} // func (ms *memStore) DoseGetByDate(date objects.Date) ([]objects.Dose, error)

func (ms *memStore) DoseGetByDateRange(start, end objects.Date) ([]objects.Dose, error) {
	return ms.doseSelect(func(d *objects.Dose) bool {
		return !d.Date.Before(start) && !d.Date.After(end)
	}), nil
} // func (ms *memStore) DoseGetByDateRange(start, end objects.Date) ([]objects.Dose, error)

func (ms *memStore) DoseGetScheduled() ([]objects.Dose, error) {
	return ms.doseSelect(func(d *objects.Dose) bool {
		return d.Status == status.Scheduled
	}), nil
} // func (ms *memStore) DoseGetScheduled() ([]objects.Dose, error)

func (ms *memStore) DoseSetStatus(d *objects.Dose, st status.Status) error {
	var x, ok = ms.doses[d.ID]
	if !ok {
		return fmt.Errorf("Dose %d does not exist", d.ID)
	}
	x.Status = st
	x.Changed = time.Now()
	d.Status = st
	d.Changed = x.Changed
	return nil
} // func (ms *memStore) DoseSetStatus(d *objects.Dose, st status.Status) error

func (ms *memStore) DoseMarkTaken(d *objects.Dose, when time.Time) error {
	var x, ok = ms.doses[d.ID]
	if !ok {
		return fmt.Errorf("Dose %d does not exist", d.ID)
	}
	x.Status = status.Taken
	x.TakenAt = when
	x.Changed = time.Now()
	d.Status = x.Status
	d.TakenAt = x.TakenAt
	d.Changed = x.Changed
	return nil
} // func (ms *memStore) DoseMarkTaken(d *objects.Dose, when time.Time) error

func (ms *memStore) DoseDeleteByMedication(medID int64) error {
	for id, d := range ms.doses {
		if d.MedicationID == medID {
			delete(ms.doses, id)
		}
	}
	return nil
} // func (ms *memStore) DoseDeleteByMedication(medID int64) error

func (ms *memStore) DoseDeleteFuture(medID int64, after objects.Date) error {
	for id, d := range ms.doses {
		if d.MedicationID == medID && d.Date.After(after) {
			delete(ms.doses, id)
		}
	}
	return nil
} // func (ms *memStore) DoseDeleteFuture(medID int64, after objects.Date) error
