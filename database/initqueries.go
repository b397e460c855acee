// /home/krylon/go/src/github.com/blicero/asclepius/database/initqueries.go
// -*- mode: go; coding: utf-8; -*-
// Created on 06. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-05-30 19:05:26 krylon>

package database

var initQueries = []string{
	`
CREATE TABLE medication (
    id      INTEGER PRIMARY KEY,
    uuid    TEXT UNIQUE NOT NULL,
    name    TEXT NOT NULL,
    dosage  TEXT NOT NULL,
    times   TEXT NOT NULL DEFAULT '[]',
    changed INTEGER NOT NULL,
    CHECK (name <> ''),
    CHECK (dosage <> '')
)
`,
	`
CREATE TABLE dose (
    id            INTEGER PRIMARY KEY,
    uuid          TEXT UNIQUE NOT NULL,
    medication_id INTEGER NOT NULL,
    date          TEXT NOT NULL,
    time          TEXT NOT NULL,
    status        INTEGER NOT NULL DEFAULT 0,
    taken_at      INTEGER NOT NULL DEFAULT 0,
    changed       INTEGER NOT NULL,
    FOREIGN KEY (medication_id) REFERENCES medication (id)
        ON DELETE CASCADE
        ON UPDATE RESTRICT,
    UNIQUE (medication_id, date, time),
    CHECK (date LIKE '____-__-__'),
    CHECK (time LIKE '__:__'),
    CHECK (status BETWEEN 0 AND 2)
)
`,
	"CREATE INDEX dose_date_idx ON dose (date)",
	"CREATE INDEX dose_med_idx ON dose (medication_id)",
	"CREATE INDEX dose_status_idx ON dose (status)",
}
