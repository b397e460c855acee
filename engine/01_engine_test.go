// /home/krylon/go/src/github.com/blicero/asclepius/engine/01_engine_test.go
// -*- mode: go; coding: utf-8; -*-
// Created on 13. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-06-03 18:21:47 krylon>

package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/blicero/asclepius/common"
	"github.com/blicero/asclepius/objects"
	"github.com/blicero/asclepius/objects/status"
)

var (
	eng   *Engine
	store *memStore
	med   *objects.Medication
)

// refTime is the fixed reference clock for the whole suite, a Saturday
// morning, after the first reminder of the day but before the second.
var refTime = time.Date(2023, 4, 15, 10, 0, 0, 0, time.Local)

func init() {
	var baseDir = filepath.Join(
		os.TempDir(),
		fmt.Sprintf("asclepius_engine_test_%d",
			time.Now().Unix()))

	if err := common.SetBaseDir(baseDir); err != nil {
		fmt.Printf("Cannot set base directory to %s: %s\n",
			baseDir,
			err.Error())
		os.Exit(1)
	}
} // func init()

func TestEngineCreate(t *testing.T) {
	var err error

	store = newMemStore()

	if eng, err = New(store, 0); err != nil {
		eng = nil
		t.Fatalf("Cannot create Engine: %s",
			err.Error())
	} else if eng.horizon != common.HorizonDays {
		t.Errorf("Unexpected horizon: %d (expected %d)",
			eng.horizon,
			common.HorizonDays)
	}
} // func TestEngineCreate(t *testing.T)

func TestAddMedicationInvalid(t *testing.T) {
	if eng == nil {
		t.SkipNow()
	}

	type testCase struct {
		name   string
		dosage string
		times  []string
	}

	var cases = []testCase{
		{"", "500mg tablet", []string{"09:00"}},
		{"   ", "500mg tablet", []string{"09:00"}},
		{"Metformin", "", []string{"09:00"}},
		{"Metformin", "500mg tablet", []string{}},
		{"Metformin", "500mg tablet", []string{"06:00", "08:00", "10:00", "12:00", "14:00", "16:00", "18:00"}},
		{"Metformin", "500mg tablet", []string{"9:00"}},
		{"Metformin", "500mg tablet", []string{"24:00"}},
		{"Metformin", "500mg tablet", []string{"09:60"}},
		{"Metformin", "500mg tablet", []string{"09:00", "09:00"}},
	}

	for _, c := range cases {
		var (
			err  error
			vErr *ValidationError
		)

		if _, err = eng.AddMedication(c.name, c.dosage, c.times, refTime); err == nil {
			t.Errorf("AddMedication(%q, %q, %v) should have failed",
				c.name,
				c.dosage,
				c.times)
		} else if !errors.As(err, &vErr) {
			t.Errorf("AddMedication(%q, %q, %v) returned the wrong kind of error: %s",
				c.name,
				c.dosage,
				c.times,
				err.Error())
		}
	}

	if len(store.meds) != 0 {
		t.Errorf("No Medication should have been stored, found %d",
			len(store.meds))
	}
} // func TestAddMedicationInvalid(t *testing.T)

func TestAddMedication(t *testing.T) {
	if eng == nil {
		t.SkipNow()
	}

	var err error

	// The times are deliberately out of order.
	if med, err = eng.AddMedication("Metformin", "500mg tablet", []string{"21:00", "09:00"}, refTime); err != nil {
		t.Fatalf("Cannot add Medication: %s",
			err.Error())
	} else if med.ID == 0 {
		t.Fatal("Medication did not get an ID")
	} else if len(med.ReminderTimes) != 2 {
		t.Fatalf("Unexpected number of reminder times: %d",
			len(med.ReminderTimes))
	} else if med.ReminderTimes[0] != "09:00" || med.ReminderTimes[1] != "21:00" {
		t.Errorf("Reminder times are not sorted: %v",
			med.ReminderTimes)
	}

	var expect = common.HorizonDays * 2

	if len(store.doses) != expect {
		t.Errorf("Unexpected number of Doses: %d (expected %d)",
			len(store.doses),
			expect)
	}

	var doses []objects.Dose

	if doses, err = store.DoseGetByDate(objects.DateOf(refTime)); err != nil {
		t.Fatalf("Cannot load today's Doses: %s",
			err.Error())
	} else if len(doses) != 2 {
		t.Errorf("Unexpected number of Doses for today: %d",
			len(doses))
	}

	for _, d := range doses {
		if d.Status != status.Scheduled {
			t.Errorf("Fresh Dose %s has status %s",
				d.Key(),
				d.Status)
		}
	}
} // func TestAddMedication(t *testing.T)

func TestGenerateIdempotent(t *testing.T) {
	if eng == nil || med == nil {
		t.SkipNow()
	}

	var (
		err error
		cnt int
	)

	if cnt, err = eng.GenerateDoses(med, objects.DateOf(refTime), 0); err != nil {
		t.Fatalf("Cannot generate Doses: %s",
			err.Error())
	} else if cnt != 0 {
		t.Errorf("Second generation run created %d Doses, should have created none",
			cnt)
	} else if len(store.doses) != common.HorizonDays*2 {
		t.Errorf("Unexpected number of Doses: %d (expected %d)",
			len(store.doses),
			common.HorizonDays*2)
	}
} // func TestGenerateIdempotent(t *testing.T)

func TestReconcileMissed(t *testing.T) {
	if eng == nil {
		t.SkipNow()
	}

	var (
		err error
		cnt int
	)

	// At 10:00, today's 09:00 Dose is overdue, the 21:00 one is not.
	if cnt, err = eng.ReconcileMissed(refTime); err != nil {
		t.Fatalf("Cannot reconcile missed Doses: %s",
			err.Error())
	} else if cnt != 1 {
		t.Errorf("Unexpected number of missed Doses: %d (expected 1)",
			cnt)
	}

	// A second sweep has nothing left to do.
	if cnt, err = eng.ReconcileMissed(refTime); err != nil {
		t.Fatalf("Cannot reconcile missed Doses: %s",
			err.Error())
	} else if cnt != 0 {
		t.Errorf("Second sweep flagged %d Doses, should have flagged none",
			cnt)
	}
} // func TestReconcileMissed(t *testing.T)

func TestMarkTaken(t *testing.T) {
	if eng == nil {
		t.SkipNow()
	}

	var (
		err    error
		missed *objects.Dose
		doses  []objects.Dose
	)

	if doses, err = store.DoseGetByDate(objects.DateOf(refTime)); err != nil {
		t.Fatalf("Cannot load today's Doses: %s",
			err.Error())
	}

	for idx := range doses {
		if doses[idx].Time == "09:00" {
			missed = &doses[idx]
			break
		}
	}

	if missed == nil {
		t.Fatal("Did not find today's 09:00 Dose")
	} else if missed.Status != status.Missed {
		t.Fatalf("Today's 09:00 Dose has status %s, expected %s",
			missed.Status,
			status.Missed)
	}

	// Confirming a missed Dose after the fact is allowed.
	if err = eng.MarkTaken(missed.ID, refTime); err != nil {
		t.Fatalf("Cannot mark Dose %d as taken: %s",
			missed.ID,
			err.Error())
	}

	var d *objects.Dose

	if d, err = store.DoseGetByID(missed.ID); err != nil {
		t.Fatalf("Cannot load Dose %d: %s",
			missed.ID,
			err.Error())
	} else if d.Status != status.Taken {
		t.Errorf("Dose %d has status %s, expected %s",
			d.ID,
			d.Status,
			status.Taken)
	} else if !common.TimeEqual(d.TakenAt, refTime) {
		t.Errorf("Dose %d was taken at %s, expected %s",
			d.ID,
			d.TakenAt.Format(common.TimestampFormat),
			refTime.Format(common.TimestampFormat))
	}

	// An unknown ID is quietly ignored.
	if err = eng.MarkTaken(86471, refTime); err != nil {
		t.Errorf("Marking a non-existent Dose should be a no-op, got: %s",
			err.Error())
	}
} // func TestMarkTaken(t *testing.T)

func TestTodaysDoses(t *testing.T) {
	if eng == nil {
		t.SkipNow()
	}

	var (
		err     error
		entries []objects.DoseEntry
	)

	if entries, err = eng.TodaysDoses(refTime); err != nil {
		t.Fatalf("Cannot get today's Doses: %s",
			err.Error())
	} else if len(entries) != 2 {
		t.Fatalf("Unexpected number of entries: %d (expected 2)",
			len(entries))
	}

	if entries[0].Dose.Time != "09:00" || entries[0].Dose.Status != status.Taken {
		t.Errorf("First entry should be the taken 09:00 Dose, got %s/%s",
			entries[0].Dose.Time,
			entries[0].Dose.Status)
	}

	if entries[1].Dose.Time != "21:00" || entries[1].Dose.Status != status.Scheduled {
		t.Errorf("Second entry should be the scheduled 21:00 Dose, got %s/%s",
			entries[1].Dose.Time,
			entries[1].Dose.Status)
	}

	for _, e := range entries {
		if e.Medication.ID != med.ID {
			t.Errorf("Entry %s belongs to Medication %d, expected %d",
				e.Dose.Key(),
				e.Medication.ID,
				med.ID)
		}
	}
} // func TestTodaysDoses(t *testing.T)

func TestAdherenceMonth(t *testing.T) {
	if eng == nil {
		t.SkipNow()
	}

	var (
		err  error
		days []objects.DayAdherence
	)

	if days, err = eng.AdherenceForMonth(2023, time.April, refTime); err != nil {
		t.Fatalf("Cannot compute adherence for April 2023: %s",
			err.Error())
	} else if len(days) != 30 {
		t.Fatalf("April has 30 days, got %d",
			len(days))
	}

	// Before the Medication was added, nothing was scheduled.
	var blank = days[13] // 2023-04-14

	if blank.Scheduled != 0 || blank.Taken != 0 || blank.Rate != 0 {
		t.Errorf("Unexpected adherence for %s: %d/%d (%.2f)",
			blank.Date,
			blank.Taken,
			blank.Scheduled,
			blank.Rate)
	}

	// On the reference date, one of two Doses was taken.
	var today = days[14] // 2023-04-15

	if today.Scheduled != 2 || today.Taken != 1 {
		t.Errorf("Unexpected adherence for %s: %d/%d",
			today.Date,
			today.Taken,
			today.Scheduled)
	} else if today.Rate != 0.5 {
		t.Errorf("Unexpected adherence rate for %s: %.2f (expected 0.50)",
			today.Date,
			today.Rate)
	} else if len(today.Entries) != 2 {
		t.Errorf("Unexpected number of entries for %s: %d",
			today.Date,
			len(today.Entries))
	}

	// The rest of the month is scheduled, nothing is taken yet.
	var future = days[29] // 2023-04-30

	if future.Scheduled != 2 || future.Taken != 0 || future.Rate != 0 {
		t.Errorf("Unexpected adherence for %s: %d/%d (%.2f)",
			future.Date,
			future.Taken,
			future.Scheduled,
			future.Rate)
	}

	var (
		start = objects.Date{Year: 2023, Month: time.April, Day: 20}
		end   = objects.Date{Year: 2023, Month: time.April, Day: 10}
	)

	if _, err = eng.AdherenceForRange(start, end, refTime); err == nil {
		t.Error("An inverted date range should be rejected")
	}
} // func TestAdherenceMonth(t *testing.T)

func TestUpdateMedication(t *testing.T) {
	if eng == nil || med == nil {
		t.SkipNow()
	}

	var (
		err error
		m   *objects.Medication
	)

	if m, err = eng.UpdateMedication(med.ID, "Metformin", "500mg tablet", []string{"08:00"}, refTime); err != nil {
		t.Fatalf("Cannot update Medication %d: %s",
			med.ID,
			err.Error())
	} else if len(m.ReminderTimes) != 1 || m.ReminderTimes[0] != "08:00" {
		t.Fatalf("Unexpected reminder times after update: %v",
			m.ReminderTimes)
	}

	med = m

	// Today's Doses survive the edit, including the taken one; only
	// future dates are regenerated. Today additionally gets the new
	// 08:00 slot.
	var doses []objects.Dose

	if doses, err = store.DoseGetByDate(objects.DateOf(refTime)); err != nil {
		t.Fatalf("Cannot load today's Doses: %s",
			err.Error())
	} else if len(doses) != 3 {
		t.Fatalf("Unexpected number of Doses for today: %d (expected 3)",
			len(doses))
	} else if doses[0].Time != "08:00" || doses[1].Time != "09:00" || doses[2].Time != "21:00" {
		t.Errorf("Unexpected Doses for today: %s, %s, %s",
			doses[0].Time,
			doses[1].Time,
			doses[2].Time)
	} else if doses[1].Status != status.Taken {
		t.Errorf("The taken 09:00 Dose was clobbered by the edit, status is %s",
			doses[1].Status)
	}

	var expect = 3 + (common.HorizonDays - 1)

	if len(store.doses) != expect {
		t.Errorf("Unexpected total number of Doses: %d (expected %d)",
			len(store.doses),
			expect)
	}

	var tomorrow []objects.Dose

	if tomorrow, err = store.DoseGetByDate(objects.DateOf(refTime).AddDays(1)); err != nil {
		t.Fatalf("Cannot load tomorrow's Doses: %s",
			err.Error())
	} else if len(tomorrow) != 1 || tomorrow[0].Time != "08:00" {
		t.Errorf("Unexpected Doses for tomorrow: %v",
			tomorrow)
	}
} // func TestUpdateMedication(t *testing.T)

func TestUpdateNameOnly(t *testing.T) {
	if eng == nil || med == nil {
		t.SkipNow()
	}

	var (
		err    error
		before = len(store.doses)
		m      *objects.Medication
	)

	if m, err = eng.UpdateMedication(med.ID, "Metformin XR", med.Dosage, med.ReminderTimes, refTime); err != nil {
		t.Fatalf("Cannot update Medication %d: %s",
			med.ID,
			err.Error())
	} else if m.Name != "Metformin XR" {
		t.Errorf("Unexpected name after update: %q",
			m.Name)
	} else if len(store.doses) != before {
		t.Errorf("Updating only the name changed the Dose count from %d to %d",
			before,
			len(store.doses))
	}

	med = m
} // func TestUpdateNameOnly(t *testing.T)

func TestUpdateMissing(t *testing.T) {
	if eng == nil {
		t.SkipNow()
	}

	var _, err = eng.UpdateMedication(74205, "Ghost", "1 tablet", []string{"12:00"}, refTime)

	if err == nil {
		t.Error("Updating a non-existent Medication should have failed")
	} else if !errors.Is(err, ErrNotFound) {
		t.Errorf("Unexpected error updating a non-existent Medication: %s",
			err.Error())
	}
} // func TestUpdateMissing(t *testing.T)

func TestDeleteMedication(t *testing.T) {
	if eng == nil || med == nil {
		t.SkipNow()
	}

	var err error

	if err = eng.DeleteMedication(med.ID); err != nil {
		t.Fatalf("Cannot delete Medication %d: %s",
			med.ID,
			err.Error())
	} else if len(store.meds) != 0 {
		t.Errorf("Medication %d is still there",
			med.ID)
	} else if len(store.doses) != 0 {
		t.Errorf("%d Doses survived the deletion of their Medication",
			len(store.doses))
	}

	// Deleting it again is a no-op.
	if err = eng.DeleteMedication(med.ID); err != nil {
		t.Errorf("Deleting a non-existent Medication should be a no-op, got: %s",
			err.Error())
	}

	med = nil
} // func TestDeleteMedication(t *testing.T)

func TestSeed(t *testing.T) {
	if eng == nil {
		t.SkipNow()
	}

	var (
		err error
		cnt int
	)

	if cnt, err = eng.Seed(refTime); err != nil {
		t.Fatalf("Cannot seed example Medications: %s",
			err.Error())
	} else if cnt != 2 {
		t.Errorf("Unexpected number of seeded Medications: %d (expected 2)",
			cnt)
	} else if len(store.doses) != common.HorizonDays*3 {
		t.Errorf("Unexpected number of Doses after seeding: %d (expected %d)",
			len(store.doses),
			common.HorizonDays*3)
	}

	// Seeding a non-empty database does nothing.
	if cnt, err = eng.Seed(refTime); err != nil {
		t.Fatalf("Cannot re-run seeding: %s",
			err.Error())
	} else if cnt != 0 {
		t.Errorf("Re-seeding added %d Medications, should have added none",
			cnt)
	}
} // func TestSeed(t *testing.T)

func TestOrphanedDose(t *testing.T) {
	if eng == nil {
		t.SkipNow()
	}

	// A Dose whose Medication has vanished can briefly exist when a
	// read races a delete. It must not surface in the joined views,
	// but it still counts as scheduled.
	var (
		err    error
		today  = objects.DateOf(refTime)
		orphan = objects.Dose{
			MedicationID: 4711,
			Date:         today,
			Time:         "12:00",
			Status:       status.Scheduled,
			UUID:         common.GetUUID(),
		}
	)

	if err = store.DoseAdd(&orphan); err != nil {
		t.Fatalf("Cannot add orphaned Dose: %s",
			err.Error())
	}

	var entries []objects.DoseEntry

	if entries, err = eng.TodaysDoses(refTime); err != nil {
		t.Fatalf("Cannot get today's Doses: %s",
			err.Error())
	} else if len(entries) != 3 {
		t.Errorf("Unexpected number of entries: %d (expected 3)",
			len(entries))
	}

	for _, e := range entries {
		if e.Dose.MedicationID == orphan.MedicationID {
			t.Errorf("Orphaned Dose %s showed up in today's schedule",
				e.Dose.Key())
		}
	}

	var days []objects.DayAdherence

	if days, err = eng.AdherenceForRange(today, today, refTime); err != nil {
		t.Fatalf("Cannot compute adherence for %s: %s",
			today,
			err.Error())
	} else if len(days) != 1 {
		t.Fatalf("Unexpected number of days: %d (expected 1)",
			len(days))
	} else if days[0].Scheduled != 4 {
		t.Errorf("Unexpected number of scheduled Doses on %s: %d (expected 4)",
			today,
			days[0].Scheduled)
	} else if len(days[0].Entries) != 3 {
		t.Errorf("Unexpected number of entries on %s: %d (expected 3)",
			today,
			len(days[0].Entries))
	}
} // func TestOrphanedDose(t *testing.T)

func TestFieldTrimming(t *testing.T) {
	if eng == nil {
		t.SkipNow()
	}

	var (
		err error
		m   *objects.Medication
	)

	if m, err = eng.AddMedication("  Aspirin  ", " 100mg tablet ", []string{"12:00"}, refTime); err != nil {
		t.Fatalf("Cannot add Medication: %s",
			err.Error())
	} else if m.Name != "Aspirin" {
		t.Errorf("Name was stored with padding: %q",
			m.Name)
	} else if m.Dosage != "100mg tablet" {
		t.Errorf("Dosage was stored with padding: %q",
			m.Dosage)
	}

	var stored *objects.Medication

	if stored, err = store.MedicationGetByID(m.ID); err != nil {
		t.Fatalf("Cannot load Medication %d: %s",
			m.ID,
			err.Error())
	} else if stored.Name != "Aspirin" || stored.Dosage != "100mg tablet" {
		t.Errorf("Persisted Medication carries padding: %q / %q",
			stored.Name,
			stored.Dosage)
	}

	if m, err = eng.UpdateMedication(m.ID, " Aspirin Forte ", m.Dosage, m.ReminderTimes, refTime); err != nil {
		t.Fatalf("Cannot update Medication %d: %s",
			m.ID,
			err.Error())
	} else if m.Name != "Aspirin Forte" {
		t.Errorf("Updated name was stored with padding: %q",
			m.Name)
	}
} // func TestFieldTrimming(t *testing.T)
