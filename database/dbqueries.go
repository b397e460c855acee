// /home/krylon/go/src/github.com/blicero/asclepius/database/dbqueries.go
// -*- mode: go; coding: utf-8; -*-
// Created on 06. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-05-30 19:21:44 krylon>

package database

import "github.com/blicero/asclepius/database/query"

var dbQueries = map[query.ID]string{
	query.MedicationAdd: `
INSERT INTO medication (uuid, name, dosage, times, changed)
VALUES                 (   ?,    ?,      ?,     ?,       ?)
`,
	query.MedicationUpdate: `
UPDATE medication
SET name = ?, dosage = ?, times = ?, changed = ?
WHERE id = ?
`,
	query.MedicationDelete: "DELETE FROM medication WHERE id = ?",
	query.MedicationGetByID: `
SELECT
    uuid,
    name,
    dosage,
    times,
    changed
FROM medication
WHERE id = ?
`,
	query.MedicationGetAll: `
SELECT
    id,
    uuid,
    name,
    dosage,
    times,
    changed
FROM medication
ORDER BY name
`,
	query.DoseAdd: `
INSERT INTO dose (uuid, medication_id, date, time, status, taken_at, changed)
VALUES           (   ?,             ?,    ?,    ?,      ?,        ?,       ?)
`,
	query.DoseGetByID: `
SELECT
    uuid,
    medication_id,
    date,
    time,
    status,
    taken_at,
    changed
FROM dose
WHERE id = ?
`,
	query.DoseGetByMedication: `
SELECT
    id,
    uuid,
    date,
    time,
    status,
    taken_at,
    changed
FROM dose
WHERE medication_id = ?
ORDER BY date, time, id
`,
	query.DoseGetByDate: `
SELECT
    id,
    uuid,
    medication_id,
    time,
    status,
    taken_at,
    changed
FROM dose
WHERE date = ?
ORDER BY time, id
`,
	query.DoseGetByDateRange: `
SELECT
    id,
    uuid,
    medication_id,
    date,
    time,
    status,
    taken_at,
    changed
FROM dose
WHERE date BETWEEN ? AND ?
ORDER BY date, time, id
`,
	query.DoseGetScheduled: `
SELECT
    id,
    uuid,
    medication_id,
    date,
    time,
    taken_at,
    changed
FROM dose
WHERE status = 0
ORDER BY date, time, id
`,
	query.DoseSetStatus: `
UPDATE dose
SET status = ?, changed = ?
WHERE id = ?
`,
	query.DoseMarkTaken: `
UPDATE dose
SET status = ?, taken_at = ?, changed = ?
WHERE id = ?
`,
	query.DoseDeleteByMedication: "DELETE FROM dose WHERE medication_id = ?",
	query.DoseDeleteFuture: `
DELETE FROM dose
WHERE medication_id = ?
  AND date > ?
`,
}
