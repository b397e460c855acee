// /home/krylon/go/src/github.com/blicero/asclepius/engine/engine.go
// -*- mode: go; coding: utf-8; -*-
// Created on 12. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-06-02 19:55:40 krylon>

// Package engine implements the schedule logic of the application:
// generating Doses from a Medication's reminder times, sweeping overdue
// Doses to Missed, recording confirmations, and aggregating adherence
// per day.
//
// The Engine does not look at the wall clock on its own, the reference
// time is passed in by the caller wherever it matters.
package engine

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/blicero/asclepius/common"
	"github.com/blicero/asclepius/logdomain"
	"github.com/blicero/asclepius/objects"
	"github.com/blicero/asclepius/objects/status"
)

// Engine ties the schedule logic to a Store.
type Engine struct {
	log     *log.Logger
	db      Store
	horizon int
}

// New creates an Engine on top of the given Store. If horizon is zero or
// negative, the default horizon of common.HorizonDays days is used.
func New(db Store, horizon int) (*Engine, error) {
	var (
		err error
		eng = &Engine{
			db:      db,
			horizon: horizon,
		}
	)

	if eng.horizon <= 0 {
		eng.horizon = common.HorizonDays
	}

	if eng.log, err = common.GetLogger(logdomain.Engine); err != nil {
		return nil, err
	}

	return eng, nil
} // func New(db Store, horizon int) (*Engine, error)

// checkMedication validates the fields the user supplies for a Medication.
// It returns the trimmed name and dosage, and the cleaned-up reminder
// times, sorted chronologically. The trimmed values are what gets stored.
func checkMedication(name, dosage string, times []string) (string, string, []string, error) {
	name = strings.TrimSpace(name)
	dosage = strings.TrimSpace(dosage)

	if name == "" {
		return "", "", nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	} else if dosage == "" {
		return "", "", nil, &ValidationError{Field: "dosage", Reason: "must not be empty"}
	} else if len(times) < objects.MinReminderTimes || len(times) > objects.MaxReminderTimes {
		return "", "", nil, &ValidationError{
			Field: "reminderTimes",
			Reason: fmt.Sprintf("expect %d - %d entries, not %d",
				objects.MinReminderTimes,
				objects.MaxReminderTimes,
				len(times)),
		}
	}

	var (
		seen    = make(map[string]bool, len(times))
		cleaned = make([]string, 0, len(times))
	)

	for _, t := range times {
		if !objects.ValidTimeOfDay(t) {
			return "", "", nil, &ValidationError{
				Field:  "reminderTimes",
				Reason: fmt.Sprintf("%q is not a valid time of day", t),
			}
		} else if seen[t] {
			return "", "", nil, &ValidationError{
				Field:  "reminderTimes",
				Reason: fmt.Sprintf("duplicate entry %q", t),
			}
		}

		seen[t] = true
		cleaned = append(cleaned, t)
	}

	// Zero-padded HH:MM sorts chronologically.
	sort.Strings(cleaned)

	return name, dosage, cleaned, nil
} // func checkMedication(name, dosage string, times []string) (string, string, []string, error)

// AddMedication validates and stores a new Medication and generates its
// Doses for the full horizon, starting on the reference date.
func (eng *Engine) AddMedication(name, dosage string, times []string, now time.Time) (*objects.Medication, error) {
	var (
		err     error
		cleaned []string
	)

	if name, dosage, cleaned, err = checkMedication(name, dosage, times); err != nil {
		eng.log.Printf("[DEBUG] Refusing to add Medication %q: %s\n",
			name,
			err.Error())
		return nil, err
	}

	var m = &objects.Medication{
		Name:          name,
		Dosage:        dosage,
		ReminderTimes: cleaned,
		UUID:          common.GetUUID(),
	}

	if err = eng.db.Begin(); err != nil {
		eng.log.Printf("[ERROR] Cannot start transaction: %s\n",
			err.Error())
		return nil, err
	}

	if err = eng.db.MedicationAdd(m); err != nil {
		eng.log.Printf("[ERROR] Cannot add Medication %q: %s\n",
			m.Name,
			err.Error())
		eng.db.Rollback() // nolint: errcheck
		return nil, err
	} else if _, err = eng.generateDoses(m, objects.DateOf(now), eng.horizon); err != nil {
		eng.db.Rollback() // nolint: errcheck
		return nil, err
	} else if err = eng.db.Commit(); err != nil {
		eng.log.Printf("[ERROR] Cannot commit transaction: %s\n",
			err.Error())
		return nil, err
	}

	eng.log.Printf("[INFO] Added Medication %d (%q) with %d reminder times\n",
		m.ID,
		m.Name,
		len(m.ReminderTimes))

	return m, nil
} // func (eng *Engine) AddMedication(name, dosage string, times []string, now time.Time) (*objects.Medication, error)

// UpdateMedication updates an existing Medication.
// If the set of reminder times changes, Doses on strictly future dates are
// thrown away and the horizon is regenerated; Doses of today and earlier
// are history and stay untouched.
func (eng *Engine) UpdateMedication(id int64, name, dosage string, times []string, now time.Time) (*objects.Medication, error) {
	var (
		err     error
		cleaned []string
		m       *objects.Medication
	)

	if name, dosage, cleaned, err = checkMedication(name, dosage, times); err != nil {
		eng.log.Printf("[DEBUG] Refusing to update Medication %d: %s\n",
			id,
			err.Error())
		return nil, err
	}

	if err = eng.db.Begin(); err != nil {
		eng.log.Printf("[ERROR] Cannot start transaction: %s\n",
			err.Error())
		return nil, err
	}

	if m, err = eng.db.MedicationGetByID(id); err != nil {
		eng.log.Printf("[ERROR] Cannot look up Medication %d: %s\n",
			id,
			err.Error())
		eng.db.Rollback() // nolint: errcheck
		return nil, err
	} else if m == nil {
		eng.db.Rollback() // nolint: errcheck
		return nil, ErrNotFound
	}

	var timesChanged = !sameTimes(m.ReminderTimes, cleaned)

	m.Name = name
	m.Dosage = dosage
	m.ReminderTimes = cleaned

	if err = eng.db.MedicationUpdate(m); err != nil {
		eng.log.Printf("[ERROR] Cannot update Medication %d: %s\n",
			id,
			err.Error())
		eng.db.Rollback() // nolint: errcheck
		return nil, err
	}

	if timesChanged {
		var today = objects.DateOf(now)

		if err = eng.db.DoseDeleteFuture(m.ID, today); err != nil {
			eng.log.Printf("[ERROR] Cannot delete future Doses of Medication %d: %s\n",
				id,
				err.Error())
			eng.db.Rollback() // nolint: errcheck
			return nil, err
		} else if _, err = eng.generateDoses(m, today, eng.horizon); err != nil {
			eng.db.Rollback() // nolint: errcheck
			return nil, err
		}
	}

	if err = eng.db.Commit(); err != nil {
		eng.log.Printf("[ERROR] Cannot commit transaction: %s\n",
			err.Error())
		return nil, err
	}

	return m, nil
} // func (eng *Engine) UpdateMedication(...) (*objects.Medication, error)

// DeleteMedication removes a Medication and all of its Doses, past and
// future. Deleting a Medication that does not exist is a no-op, not an
// error.
func (eng *Engine) DeleteMedication(id int64) error {
	var err error

	if err = eng.db.Begin(); err != nil {
		eng.log.Printf("[ERROR] Cannot start transaction: %s\n",
			err.Error())
		return err
	}

	if err = eng.db.DoseDeleteByMedication(id); err != nil {
		eng.log.Printf("[ERROR] Cannot delete Doses of Medication %d: %s\n",
			id,
			err.Error())
		eng.db.Rollback() // nolint: errcheck
		return err
	} else if err = eng.db.MedicationDelete(id); err != nil {
		eng.log.Printf("[ERROR] Cannot delete Medication %d: %s\n",
			id,
			err.Error())
		eng.db.Rollback() // nolint: errcheck
		return err
	} else if err = eng.db.Commit(); err != nil {
		eng.log.Printf("[ERROR] Cannot commit transaction: %s\n",
			err.Error())
		return err
	}

	return nil
} // func (eng *Engine) DeleteMedication(id int64) error

// GenerateDoses creates Doses for the given Medication for every date in
// [from, from+horizonDays) and every reminder time, skipping slots that
// already have a Dose. It returns the number of Doses actually created.
// Calling it repeatedly with the same arguments is safe.
func (eng *Engine) GenerateDoses(m *objects.Medication, from objects.Date, horizonDays int) (int, error) {
	var (
		err error
		cnt int
	)

	if horizonDays <= 0 {
		horizonDays = eng.horizon
	}

	if err = eng.db.Begin(); err != nil {
		eng.log.Printf("[ERROR] Cannot start transaction: %s\n",
			err.Error())
		return 0, err
	}

	if cnt, err = eng.generateDoses(m, from, horizonDays); err != nil {
		eng.db.Rollback() // nolint: errcheck
		return 0, err
	} else if err = eng.db.Commit(); err != nil {
		eng.log.Printf("[ERROR] Cannot commit transaction: %s\n",
			err.Error())
		return 0, err
	}

	return cnt, nil
} // func (eng *Engine) GenerateDoses(m *objects.Medication, from objects.Date, horizonDays int) (int, error)

// generateDoses does the actual work for GenerateDoses. The caller is
// responsible for the transaction.
func (eng *Engine) generateDoses(m *objects.Medication, from objects.Date, horizonDays int) (int, error) {
	var (
		err      error
		existing []objects.Dose
	)

	if existing, err = eng.db.DoseGetByMedication(m.ID); err != nil {
		eng.log.Printf("[ERROR] Cannot load Doses of Medication %d: %s\n",
			m.ID,
			err.Error())
		return 0, err
	}

	var occupied = make(map[string]bool, len(existing))

	for idx := range existing {
		occupied[existing[idx].Key()] = true
	}

	var cnt int

	for i := 0; i < horizonDays; i++ {
		var date = from.AddDays(i)

		for _, t := range m.ReminderTimes {
			var d = objects.Dose{
				MedicationID: m.ID,
				Date:         date,
				Time:         t,
				Status:       status.Scheduled,
			}

			if occupied[d.Key()] {
				continue
			}

			d.UUID = common.GetUUID()

			if err = eng.db.DoseAdd(&d); err != nil {
				eng.log.Printf("[ERROR] Cannot add Dose %s: %s\n",
					d.Key(),
					err.Error())
				return cnt, err
			}

			occupied[d.Key()] = true
			cnt++
		}
	}

	eng.log.Printf("[DEBUG] Generated %d Doses for Medication %d (%q)\n",
		cnt,
		m.ID,
		m.Name)

	return cnt, nil
} // func (eng *Engine) generateDoses(m *objects.Medication, from objects.Date, horizonDays int) (int, error)

// ReconcileMissed flags as Missed every Dose that is still Scheduled
// although its date and time have passed. It returns the number of Doses
// it flagged.
//
// The sweep only ever touches Scheduled Doses, so running it any number
// of times yields the same result as running it once, and a Taken Dose
// is never clobbered.
func (eng *Engine) ReconcileMissed(now time.Time) (int, error) {
	var (
		err     error
		pending []objects.Dose
	)

	if err = eng.db.Begin(); err != nil {
		eng.log.Printf("[ERROR] Cannot start transaction: %s\n",
			err.Error())
		return 0, err
	}

	if pending, err = eng.db.DoseGetScheduled(); err != nil {
		eng.log.Printf("[ERROR] Cannot load scheduled Doses: %s\n",
			err.Error())
		eng.db.Rollback() // nolint: errcheck
		return 0, err
	}

	var cnt int

	for idx := range pending {
		var d = &pending[idx]

		if !d.IsOverdue(now) {
			continue
		}

		if err = eng.db.DoseSetStatus(d, status.Missed); err != nil {
			eng.log.Printf("[ERROR] Cannot flag Dose %s as missed: %s\n",
				d.Key(),
				err.Error())
			eng.db.Rollback() // nolint: errcheck
			return 0, err
		}

		cnt++
	}

	if err = eng.db.Commit(); err != nil {
		eng.log.Printf("[ERROR] Cannot commit transaction: %s\n",
			err.Error())
		return 0, err
	}

	if cnt > 0 {
		eng.log.Printf("[INFO] Flagged %d Doses as missed\n",
			cnt)
	}

	return cnt, nil
} // func (eng *Engine) ReconcileMissed(now time.Time) (int, error)

// MarkTaken records that the user took the given Dose, regardless of its
// current status - confirming a Missed Dose after the fact is fine.
// An unknown ID is a no-op, not an error.
func (eng *Engine) MarkTaken(id int64, now time.Time) error {
	var (
		err error
		d   *objects.Dose
	)

	if d, err = eng.db.DoseGetByID(id); err != nil {
		eng.log.Printf("[ERROR] Cannot look up Dose %d: %s\n",
			id,
			err.Error())
		return err
	} else if d == nil {
		eng.log.Printf("[DEBUG] Dose %d does not exist, nothing to mark\n",
			id)
		return nil
	}

	if err = eng.db.DoseMarkTaken(d, now); err != nil {
		eng.log.Printf("[ERROR] Cannot mark Dose %s as taken: %s\n",
			d.Key(),
			err.Error())
		return err
	}

	return nil
} // func (eng *Engine) MarkTaken(id int64, now time.Time) error

// TodaysDoses returns all Doses scheduled for the reference date, each
// paired with its Medication, ordered by time of day. Doses whose
// Medication has vanished are silently dropped.
// The missed-Dose sweep runs first, so the caller never sees a stale
// Scheduled entry.
func (eng *Engine) TodaysDoses(now time.Time) ([]objects.DoseEntry, error) {
	var (
		err   error
		doses []objects.Dose
		meds  map[int64]objects.Medication
	)

	if _, err = eng.ReconcileMissed(now); err != nil {
		return nil, err
	} else if meds, err = eng.medicationIndex(); err != nil {
		return nil, err
	} else if doses, err = eng.db.DoseGetByDate(objects.DateOf(now)); err != nil {
		eng.log.Printf("[ERROR] Cannot load Doses for %s: %s\n",
			objects.DateOf(now),
			err.Error())
		return nil, err
	}

	var entries = make([]objects.DoseEntry, 0, len(doses))

	for idx := range doses {
		var m, ok = meds[doses[idx].MedicationID]

		if !ok {
			continue
		}

		entries = append(entries, objects.DoseEntry{
			Medication: m,
			Dose:       doses[idx],
		})
	}

	return entries, nil
} // func (eng *Engine) TodaysDoses(now time.Time) ([]objects.DoseEntry, error)

// AdherenceForRange computes, for every date in the inclusive range, how
// many Doses were scheduled, how many were taken, and the resulting rate.
// A day without Doses has a rate of zero.
func (eng *Engine) AdherenceForRange(start, end objects.Date, now time.Time) ([]objects.DayAdherence, error) {
	if start.After(end) {
		return nil, fmt.Errorf("Invalid date range %s - %s",
			start,
			end)
	}

	var (
		err   error
		doses []objects.Dose
		meds  map[int64]objects.Medication
	)

	if _, err = eng.ReconcileMissed(now); err != nil {
		return nil, err
	} else if meds, err = eng.medicationIndex(); err != nil {
		return nil, err
	} else if doses, err = eng.db.DoseGetByDateRange(start, end); err != nil {
		eng.log.Printf("[ERROR] Cannot load Doses for %s - %s: %s\n",
			start,
			end,
			err.Error())
		return nil, err
	}

	var byDate = make(map[objects.Date][]objects.Dose, 31)

	for idx := range doses {
		byDate[doses[idx].Date] = append(byDate[doses[idx].Date], doses[idx])
	}

	var days = make([]objects.DayAdherence, 0, 31)

	for date := start; !date.After(end); date = date.AddDays(1) {
		var day = objects.DayAdherence{
			Date:    date,
			Entries: make([]objects.DoseEntry, 0, len(byDate[date])),
		}

		for _, d := range byDate[date] {
			day.Scheduled++
			if d.Status == status.Taken {
				day.Taken++
			}

			if m, ok := meds[d.MedicationID]; ok {
				day.Entries = append(day.Entries, objects.DoseEntry{
					Medication: m,
					Dose:       d,
				})
			}
		}

		if day.Scheduled > 0 {
			day.Rate = float64(day.Taken) / float64(day.Scheduled)
		}

		days = append(days, day)
	}

	return days, nil
} // func (eng *Engine) AdherenceForRange(start, end objects.Date, now time.Time) ([]objects.DayAdherence, error)

// AdherenceForMonth is AdherenceForRange for one whole calendar month.
func (eng *Engine) AdherenceForMonth(year int, month time.Month, now time.Time) ([]objects.DayAdherence, error) {
	var first, last = objects.MonthRange(year, month)

	return eng.AdherenceForRange(first, last, now)
} // func (eng *Engine) AdherenceForMonth(year int, month time.Month, now time.Time) ([]objects.DayAdherence, error)

// Medications returns all Medications.
func (eng *Engine) Medications() ([]objects.Medication, error) {
	return eng.db.MedicationGetAll()
} // func (eng *Engine) Medications() ([]objects.Medication, error)

// MedicationByID looks up a single Medication, returning ErrNotFound if
// it does not exist.
func (eng *Engine) MedicationByID(id int64) (*objects.Medication, error) {
	var (
		err error
		m   *objects.Medication
	)

	if m, err = eng.db.MedicationGetByID(id); err != nil {
		return nil, err
	} else if m == nil {
		return nil, ErrNotFound
	}

	return m, nil
} // func (eng *Engine) MedicationByID(id int64) (*objects.Medication, error)

// Seed adds a couple of example Medications if the database holds none,
// so a first-time user does not look at an empty application.
// It returns the number of Medications it added.
func (eng *Engine) Seed(now time.Time) (int, error) {
	var (
		err  error
		meds []objects.Medication
	)

	if meds, err = eng.db.MedicationGetAll(); err != nil {
		eng.log.Printf("[ERROR] Cannot load Medications: %s\n",
			err.Error())
		return 0, err
	} else if len(meds) > 0 {
		return 0, nil
	}

	var samples = []struct {
		name   string
		dosage string
		times  []string
	}{
		{"Metformin", "500mg tablet", []string{"09:00", "21:00"}},
		{"Lisinopril", "10mg tablet", []string{"08:00"}},
	}

	for _, s := range samples {
		if _, err = eng.AddMedication(s.name, s.dosage, s.times, now); err != nil {
			return 0, err
		}
	}

	eng.log.Printf("[INFO] Seeded %d example Medications\n",
		len(samples))

	return len(samples), nil
} // func (eng *Engine) Seed(now time.Time) (int, error)

func (eng *Engine) medicationIndex() (map[int64]objects.Medication, error) {
	var (
		err  error
		meds []objects.Medication
	)

	if meds, err = eng.db.MedicationGetAll(); err != nil {
		eng.log.Printf("[ERROR] Cannot load Medications: %s\n",
			err.Error())
		return nil, err
	}

	var index = make(map[int64]objects.Medication, len(meds))

	for idx := range meds {
		index[meds[idx].ID] = meds[idx]
	}

	return index, nil
} // func (eng *Engine) medicationIndex() (map[int64]objects.Medication, error)

func sameTimes(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
} // func sameTimes(a, b []string) bool
