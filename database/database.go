// /home/krylon/go/src/github.com/blicero/asclepius/database/database.go
// -*- mode: go; coding: utf-8; -*-
// Created on 06. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-06-02 19:10:35 krylon>

// Package database provides the persistence layer of the application.
// It stores Medications and the Doses generated from them in an SQLite
// database.
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/blicero/asclepius/common"
	"github.com/blicero/asclepius/database/query"
	"github.com/blicero/asclepius/logdomain"
	"github.com/blicero/asclepius/objects"
	"github.com/blicero/asclepius/objects/status"
	"github.com/blicero/krylib"
	"github.com/mattn/go-sqlite3"
	"github.com/pquerna/ffjson/ffjson"
)

var (
	openLock sync.Mutex
	idCnt    int64
)

// ErrTxInProgress indicates that an attempt to initiate a transaction
// failed because there is already one in progress.
var ErrTxInProgress = errors.New("A Transaction is already in progress")

// ErrNoTxInProgress indicates that an attempt was made to finish a
// transaction when none was active.
var ErrNoTxInProgress = errors.New("There is no transaction in progress")

// ErrInvalidValue indicates that one or more parameters passed to a method
// had values that are invalid for that operation.
var ErrInvalidValue = errors.New("Invalid value for parameter")

// ErrObjectNotFound indicates that an Object was not found in the database.
var ErrObjectNotFound = errors.New("object was not found in database")

const retryDelay = 25 * time.Millisecond

func worthARetry(e error) bool {
	switch t := e.(type) {
	case *sqlite3.Error:
		return t.Code == sqlite3.ErrBusy || t.Code == sqlite3.ErrLocked
	case sqlite3.Error:
		return t.Code == sqlite3.ErrBusy || t.Code == sqlite3.ErrLocked
	default:
		return false
	}
} // func worthARetry(e error) bool

func waitForRetry() {
	time.Sleep(retryDelay)
} // func waitForRetry()

// Database wraps the connection to the underlying data store, along
// with the associated state.
type Database struct {
	id      int64
	db      *sql.DB
	tx      *sql.Tx
	log     *log.Logger
	path    string
	queries map[query.ID]*sql.Stmt
}

// Open opens the database at the given path. If the database does not
// exist, yet, it is created and initialized.
func Open(path string) (*Database, error) {
	var (
		err      error
		dbExists bool
		db       = &Database{
			path:    path,
			queries: make(map[query.ID]*sql.Stmt, len(dbQueries)),
		}
	)

	openLock.Lock()
	defer openLock.Unlock()
	idCnt++
	db.id = idCnt

	if db.log, err = common.GetLogger(logdomain.Database); err != nil {
		return nil, err
	}

	var connstring = fmt.Sprintf("%s?_locking=NORMAL&_journal=WAL&_fk=1&recursive_triggers=0",
		path)

	if dbExists, err = krylib.Fexists(path); err != nil {
		db.log.Printf("[ERROR] Failed to check if %s exists: %s\n",
			path,
			err.Error())
		return nil, err
	} else if db.db, err = sql.Open("sqlite3", connstring); err != nil {
		db.log.Printf("[ERROR] Failed to open %s: %s\n",
			path,
			err.Error())
		return nil, err
	}

	if !dbExists {
		if err = db.initialize(); err != nil {
			var e2 error
			if e2 = db.db.Close(); e2 != nil {
				db.log.Printf("[CRITICAL] Failed to close database: %s\n",
					e2.Error())
				return nil, e2
			} else if e2 = os.Remove(path); e2 != nil {
				db.log.Printf("[CRITICAL] Failed to remove database file %s: %s\n",
					db.path,
					e2.Error())
			}
			return nil, err
		}
		db.log.Printf("[INFO] Database at %s has been initialized\n",
			path)
	}

	return db, nil
} // func Open(path string) (*Database, error)

func (db *Database) initialize() error {
	var err error
	var tx *sql.Tx

	if tx, err = db.db.Begin(); err != nil {
		db.log.Printf("[ERROR] Cannot begin transaction: %s\n",
			err.Error())
		return err
	}

	for _, q := range initQueries {
		if _, err = tx.Exec(q); err != nil {
			db.log.Printf("[ERROR] Cannot execute init query: %s\n%s\n",
				err.Error(),
				q)
			if rbErr := tx.Rollback(); rbErr != nil {
				db.log.Printf("[CANTHAPPEN] Cannot rollback transaction: %s\n",
					rbErr.Error())
				return rbErr
			}
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		db.log.Printf("[CANTHAPPEN] Failed to commit init transaction: %s\n",
			err.Error())
		return err
	}

	return nil
} // func (db *Database) initialize() error

// Close closes the database.
// If there is a pending transaction, it is rolled back.
func (db *Database) Close() error {
	var err error

	if db.tx != nil {
		if err = db.tx.Rollback(); err != nil {
			db.log.Printf("[CRITICAL] Cannot roll back pending transaction: %s\n",
				err.Error())
			return err
		}
		db.tx = nil
	}

	for key, stmt := range db.queries {
		if err = stmt.Close(); err != nil {
			db.log.Printf("[CRITICAL] Cannot close statement handle %s: %s\n",
				key,
				err.Error())
			return err
		}
		delete(db.queries, key)
	}

	if err = db.db.Close(); err != nil {
		db.log.Printf("[CRITICAL] Cannot close database: %s\n",
			err.Error())
	}

	db.db = nil
	return nil
} // func (db *Database) Close() error

func (db *Database) getQuery(id query.ID) (*sql.Stmt, error) {
	var (
		stmt  *sql.Stmt
		found bool
		err   error
	)

	if stmt, found = db.queries[id]; found {
		return stmt, nil
	} else if _, found = dbQueries[id]; !found {
		return nil, fmt.Errorf("Unknown query %d",
			id)
	}

PREPARE_QUERY:
	if stmt, err = db.db.Prepare(dbQueries[id]); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto PREPARE_QUERY
		}

		db.log.Printf("[ERROR] Cannot parse query %s: %s\n%s\n",
			id,
			err.Error(),
			dbQueries[id])
		return nil, err
	}

	db.queries[id] = stmt
	return stmt, nil
} // func (db *Database) getQuery(query.ID) (*sql.Stmt, error)

// Begin begins an explicit database transaction.
// Only one transaction can be in progress at once, attempting to start one,
// while another transaction is already in progress will yield ErrTxInProgress.
func (db *Database) Begin() error {
	var err error

	if db.tx != nil {
		return ErrTxInProgress
	}

BEGIN_TX:
	for db.tx == nil {
		if db.tx, err = db.db.Begin(); err != nil {
			if worthARetry(err) {
				waitForRetry()
				continue BEGIN_TX
			} else {
				db.log.Printf("[ERROR] Failed to start transaction: %s\n",
					err.Error())
				return err
			}
		}
	}

	return nil
} // func (db *Database) Begin() error

// Commit ends the active transaction, making any changes made during that
// transaction permanent and visible to other connections.
// If no transaction is active, it returns ErrNoTxInProgress
func (db *Database) Commit() error {
	var err error

	if db.tx == nil {
		return ErrNoTxInProgress
	} else if err = db.tx.Commit(); err != nil {
		db.log.Printf("[ERROR] Cannot commit transaction: %s\n",
			err.Error())
		return err
	}

	db.tx = nil
	return nil
} // func (db *Database) Commit() error

// Rollback terminates a pending transaction, undoing any changes to the
// database made during that transaction.
// If no transaction is active, it returns ErrNoTxInProgress
func (db *Database) Rollback() error {
	var err error

	if db.tx == nil {
		return ErrNoTxInProgress
	} else if err = db.tx.Rollback(); err != nil {
		return fmt.Errorf("Cannot roll back database transaction: %s",
			err.Error())
	}

	db.tx = nil
	return nil
} // func (db *Database) Rollback() error

// MedicationAdd adds a Medication to the database, filling in its ID and
// Changed stamp on the way out.
func (db *Database) MedicationAdd(m *objects.Medication) error {
	const qid query.ID = query.MedicationAdd
	var (
		err      error
		msg      string
		stmt     *sql.Stmt
		tx       *sql.Tx
		txStatus bool
		times    []byte
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return err
	} else if times, err = ffjson.Marshal(m.ReminderTimes); err != nil {
		db.log.Printf("[ERROR] Cannot serialize reminder times of %q: %s\n",
			m.Name,
			err.Error())
		return err
	}

	defer ffjson.Pool(times)

	if db.tx != nil {
		tx = db.tx
	} else {
	BEGIN_AD_HOC:
		if tx, err = db.db.Begin(); err != nil {
			if worthARetry(err) {
				waitForRetry()
				goto BEGIN_AD_HOC
			}

			msg = fmt.Sprintf("Error starting transaction: %s",
				err.Error())
			db.log.Printf("[ERROR] %s\n", msg)
			return errors.New(msg)
		}

		defer func() {
			var err2 error
			if txStatus {
				if err2 = tx.Commit(); err2 != nil {
					db.log.Printf("[ERROR] Failed to commit ad-hoc transaction: %s\n",
						err2.Error())
				}
			} else if err2 = tx.Rollback(); err2 != nil {
				db.log.Printf("[ERROR] Rollback of ad-hoc transaction failed: %s\n",
					err2.Error())
			}
		}()
	}

	stmt = tx.Stmt(stmt)

	var (
		res sql.Result
		now = time.Now()
	)

EXEC_QUERY:
	if res, err = stmt.Exec(m.UUID, m.Name, m.Dosage, string(times), now.Unix()); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		msg = fmt.Sprintf("Cannot add Medication %q to database: %s",
			m.Name,
			err.Error())
		db.log.Printf("[ERROR] %s\n", msg)
		return errors.New(msg)
	}

	var id int64

	if id, err = res.LastInsertId(); err != nil {
		msg = fmt.Sprintf("Cannot get ID of new Medication %q: %s",
			m.Name,
			err.Error())
		db.log.Printf("[ERROR] %s\n", msg)
		return errors.New(msg)
	}

	txStatus = true
	m.ID = id
	m.Changed = now
	return nil
} // func (db *Database) MedicationAdd(m *objects.Medication) error

// MedicationUpdate updates a Medication's name, dosage, and reminder
// times in the database.
func (db *Database) MedicationUpdate(m *objects.Medication) error {
	const qid query.ID = query.MedicationUpdate
	var (
		err   error
		msg   string
		stmt  *sql.Stmt
		times []byte
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return err
	} else if times, err = ffjson.Marshal(m.ReminderTimes); err != nil {
		db.log.Printf("[ERROR] Cannot serialize reminder times of %q: %s\n",
			m.Name,
			err.Error())
		return err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	defer ffjson.Pool(times)

	var now = time.Now()

EXEC_QUERY:
	if _, err = stmt.Exec(m.Name, m.Dosage, string(times), now.Unix(), m.ID); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		msg = fmt.Sprintf("Cannot update Medication %d (%q): %s",
			m.ID,
			m.Name,
			err.Error())
		db.log.Printf("[ERROR] %s\n", msg)
		return errors.New(msg)
	}

	m.Changed = now
	return nil
} // func (db *Database) MedicationUpdate(m *objects.Medication) error

// MedicationDelete removes a Medication from the database.
// Doses referencing it are removed by the cascading foreign key, but
// callers that care should delete them explicitly inside the same
// transaction, so the behavior does not depend on the connection's
// foreign key pragma.
func (db *Database) MedicationDelete(id int64) error {
	const qid query.ID = query.MedicationDelete
	var (
		err  error
		msg  string
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

EXEC_QUERY:
	if _, err = stmt.Exec(id); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		msg = fmt.Sprintf("Cannot delete Medication %d: %s",
			id,
			err.Error())
		db.log.Printf("[ERROR] %s\n", msg)
		return errors.New(msg)
	}

	return nil
} // func (db *Database) MedicationDelete(id int64) error

// MedicationGetByID looks up a Medication by its ID. If no such Medication
// exists, it returns nil, but no error.
func (db *Database) MedicationGetByID(id int64) (*objects.Medication, error) {
	const qid query.ID = query.MedicationGetByID
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return nil, err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var rows *sql.Rows

EXEC_QUERY:
	if rows, err = stmt.Query(id); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot query Medication %d: %s\n",
			id,
			err.Error())
		return nil, err
	}

	defer rows.Close() // nolint: errcheck

	if rows.Next() {
		var (
			m       = &objects.Medication{ID: id}
			times   string
			changed int64
		)

		if err = rows.Scan(&m.UUID, &m.Name, &m.Dosage, &times, &changed); err != nil {
			db.log.Printf("[ERROR] Cannot scan row: %s\n",
				err.Error())
			return nil, err
		} else if err = ffjson.Unmarshal([]byte(times), &m.ReminderTimes); err != nil {
			db.log.Printf("[ERROR] Cannot de-serialize reminder times of Medication %d: %s\n",
				id,
				err.Error())
			return nil, err
		}

		m.Changed = time.Unix(changed, 0)
		return m, nil
	}

	return nil, nil
} // func (db *Database) MedicationGetByID(id int64) (*objects.Medication, error)

// MedicationGetAll fetches all Medications from the database, ordered
// by name.
func (db *Database) MedicationGetAll() ([]objects.Medication, error) {
	const qid query.ID = query.MedicationGetAll
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return nil, err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var rows *sql.Rows

EXEC_QUERY:
	if rows, err = stmt.Query(); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot query all Medications: %s\n",
			err.Error())
		return nil, err
	}

	defer rows.Close() // nolint: errcheck

	var meds = make([]objects.Medication, 0, 8)

	for rows.Next() {
		var (
			m       objects.Medication
			times   string
			changed int64
		)

		if err = rows.Scan(&m.ID, &m.UUID, &m.Name, &m.Dosage, &times, &changed); err != nil {
			db.log.Printf("[ERROR] Cannot scan row: %s\n",
				err.Error())
			return nil, err
		} else if err = ffjson.Unmarshal([]byte(times), &m.ReminderTimes); err != nil {
			db.log.Printf("[ERROR] Cannot de-serialize reminder times of Medication %d: %s\n",
				m.ID,
				err.Error())
			return nil, err
		}

		m.Changed = time.Unix(changed, 0)
		meds = append(meds, m)
	}

	return meds, nil
} // func (db *Database) MedicationGetAll() ([]objects.Medication, error)

// DoseAdd adds a single Dose to the database, filling in its ID on the
// way out.
func (db *Database) DoseAdd(d *objects.Dose) error {
	const qid query.ID = query.DoseAdd
	var (
		err      error
		msg      string
		stmt     *sql.Stmt
		tx       *sql.Tx
		txStatus bool
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return err
	}

	if db.tx != nil {
		tx = db.tx
	} else {
	BEGIN_AD_HOC:
		if tx, err = db.db.Begin(); err != nil {
			if worthARetry(err) {
				waitForRetry()
				goto BEGIN_AD_HOC
			}

			msg = fmt.Sprintf("Error starting transaction: %s",
				err.Error())
			db.log.Printf("[ERROR] %s\n", msg)
			return errors.New(msg)
		}

		defer func() {
			var err2 error
			if txStatus {
				if err2 = tx.Commit(); err2 != nil {
					db.log.Printf("[ERROR] Failed to commit ad-hoc transaction: %s\n",
						err2.Error())
				}
			} else if err2 = tx.Rollback(); err2 != nil {
				db.log.Printf("[ERROR] Rollback of ad-hoc transaction failed: %s\n",
					err2.Error())
			}
		}()
	}

	stmt = tx.Stmt(stmt)

	var (
		res     sql.Result
		now     = time.Now()
		takenAt int64
	)

	if !d.TakenAt.IsZero() {
		takenAt = d.TakenAt.Unix()
	}

EXEC_QUERY:
	if res, err = stmt.Exec(
		d.UUID,
		d.MedicationID,
		d.Date.String(),
		d.Time,
		d.Status,
		takenAt,
		now.Unix()); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		msg = fmt.Sprintf("Cannot add Dose %s to database: %s",
			d.Key(),
			err.Error())
		db.log.Printf("[ERROR] %s\n", msg)
		return errors.New(msg)
	}

	var id int64

	if id, err = res.LastInsertId(); err != nil {
		msg = fmt.Sprintf("Cannot get ID of new Dose %s: %s",
			d.Key(),
			err.Error())
		db.log.Printf("[ERROR] %s\n", msg)
		return errors.New(msg)
	}

	txStatus = true
	d.ID = id
	d.Changed = now
	return nil
} // func (db *Database) DoseAdd(d *objects.Dose) error

// DoseGetByID looks up a single Dose by its ID. If no such Dose exists,
// it returns nil, but no error.
func (db *Database) DoseGetByID(id int64) (*objects.Dose, error) {
	const qid query.ID = query.DoseGetByID
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return nil, err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var rows *sql.Rows

EXEC_QUERY:
	if rows, err = stmt.Query(id); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot query Dose %d: %s\n",
			id,
			err.Error())
		return nil, err
	}

	defer rows.Close() // nolint: errcheck

	if rows.Next() {
		var (
			d                = &objects.Dose{ID: id}
			dateStr          string
			st               uint8
			takenAt, changed int64
		)

		if err = rows.Scan(&d.UUID, &d.MedicationID, &dateStr, &d.Time, &st, &takenAt, &changed); err != nil {
			db.log.Printf("[ERROR] Cannot scan row: %s\n",
				err.Error())
			return nil, err
		} else if d.Date, err = objects.ParseDate(dateStr); err != nil {
			db.log.Printf("[ERROR] Cannot parse date of Dose %d: %s\n",
				id,
				err.Error())
			return nil, err
		}

		d.Status = status.Status(st)
		if takenAt != 0 {
			d.TakenAt = time.Unix(takenAt, 0)
		}
		d.Changed = time.Unix(changed, 0)

		return d, nil
	}

	return nil, nil
} // func (db *Database) DoseGetByID(id int64) (*objects.Dose, error)

// DoseGetByMedication fetches all Doses belonging to the given Medication,
// ordered by date and time.
func (db *Database) DoseGetByMedication(medID int64) ([]objects.Dose, error) {
	const qid query.ID = query.DoseGetByMedication
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return nil, err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var rows *sql.Rows

EXEC_QUERY:
	if rows, err = stmt.Query(medID); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot query Doses of Medication %d: %s\n",
			medID,
			err.Error())
		return nil, err
	}

	defer rows.Close() // nolint: errcheck

	var doses = make([]objects.Dose, 0, 64)

	for rows.Next() {
		var (
			d                = objects.Dose{MedicationID: medID}
			dateStr          string
			st               uint8
			takenAt, changed int64
		)

		if err = rows.Scan(&d.ID, &d.UUID, &dateStr, &d.Time, &st, &takenAt, &changed); err != nil {
			db.log.Printf("[ERROR] Cannot scan row: %s\n",
				err.Error())
			return nil, err
		} else if d.Date, err = objects.ParseDate(dateStr); err != nil {
			db.log.Printf("[ERROR] Cannot parse date of Dose %d: %s\n",
				d.ID,
				err.Error())
			return nil, err
		}

		d.Status = status.Status(st)
		if takenAt != 0 {
			d.TakenAt = time.Unix(takenAt, 0)
		}
		d.Changed = time.Unix(changed, 0)

		doses = append(doses, d)
	}

	return doses, nil
} // func (db *Database) DoseGetByMedication(medID int64) ([]objects.Dose, error)

// DoseGetByDate fetches all Doses scheduled for the given date, ordered by
// time of day (insertion order breaking ties).
func (db *Database) DoseGetByDate(date objects.Date) ([]objects.Dose, error) {
	const qid query.ID = query.DoseGetByDate
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return nil, err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var rows *sql.Rows

EXEC_QUERY:
	if rows, err = stmt.Query(date.String()); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot query Doses for %s: %s\n",
			date,
			err.Error())
		return nil, err
	}

	defer rows.Close() // nolint: errcheck

	var doses = make([]objects.Dose, 0, 16)

	for rows.Next() {
		var (
			d                = objects.Dose{Date: date}
			st               uint8
			takenAt, changed int64
		)

		if err = rows.Scan(&d.ID, &d.UUID, &d.MedicationID, &d.Time, &st, &takenAt, &changed); err != nil {
			db.log.Printf("[ERROR] Cannot scan row: %s\n",
				err.Error())
			return nil, err
		}

		d.Status = status.Status(st)
		if takenAt != 0 {
			d.TakenAt = time.Unix(takenAt, 0)
		}
		d.Changed = time.Unix(changed, 0)

		doses = append(doses, d)
	}

	return doses, nil
} // func (db *Database) DoseGetByDate(date objects.Date) ([]objects.Dose, error)

// DoseGetByDateRange fetches all Doses scheduled in the given inclusive
// date range, ordered by date and time.
func (db *Database) DoseGetByDateRange(start, end objects.Date) ([]objects.Dose, error) {
	const qid query.ID = query.DoseGetByDateRange
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return nil, err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var rows *sql.Rows

EXEC_QUERY:
	if rows, err = stmt.Query(start.String(), end.String()); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot query Doses for %s - %s: %s\n",
			start,
			end,
			err.Error())
		return nil, err
	}

	defer rows.Close() // nolint: errcheck

	var doses = make([]objects.Dose, 0, 64)

	for rows.Next() {
		var (
			d                objects.Dose
			dateStr          string
			st               uint8
			takenAt, changed int64
		)

		if err = rows.Scan(&d.ID, &d.UUID, &d.MedicationID, &dateStr, &d.Time, &st, &takenAt, &changed); err != nil {
			db.log.Printf("[ERROR] Cannot scan row: %s\n",
				err.Error())
			return nil, err
		} else if d.Date, err = objects.ParseDate(dateStr); err != nil {
			db.log.Printf("[ERROR] Cannot parse date of Dose %d: %s\n",
				d.ID,
				err.Error())
			return nil, err
		}

		d.Status = status.Status(st)
		if takenAt != 0 {
			d.TakenAt = time.Unix(takenAt, 0)
		}
		d.Changed = time.Unix(changed, 0)

		doses = append(doses, d)
	}

	return doses, nil
} // func (db *Database) DoseGetByDateRange(start, end objects.Date) ([]objects.Dose, error)

// DoseGetScheduled fetches all Doses whose status is still Scheduled,
// ordered by date and time.
func (db *Database) DoseGetScheduled() ([]objects.Dose, error) {
	const qid query.ID = query.DoseGetScheduled
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return nil, err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var rows *sql.Rows

EXEC_QUERY:
	if rows, err = stmt.Query(); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot query scheduled Doses: %s\n",
			err.Error())
		return nil, err
	}

	defer rows.Close() // nolint: errcheck

	var doses = make([]objects.Dose, 0, 64)

	for rows.Next() {
		var (
			d                = objects.Dose{Status: status.Scheduled}
			dateStr          string
			takenAt, changed int64
		)

		if err = rows.Scan(&d.ID, &d.UUID, &d.MedicationID, &dateStr, &d.Time, &takenAt, &changed); err != nil {
			db.log.Printf("[ERROR] Cannot scan row: %s\n",
				err.Error())
			return nil, err
		} else if d.Date, err = objects.ParseDate(dateStr); err != nil {
			db.log.Printf("[ERROR] Cannot parse date of Dose %d: %s\n",
				d.ID,
				err.Error())
			return nil, err
		}

		if takenAt != 0 {
			d.TakenAt = time.Unix(takenAt, 0)
		}
		d.Changed = time.Unix(changed, 0)

		doses = append(doses, d)
	}

	return doses, nil
} // func (db *Database) DoseGetScheduled() ([]objects.Dose, error)

// DoseSetStatus sets the status of the given Dose.
func (db *Database) DoseSetStatus(d *objects.Dose, st status.Status) error {
	const qid query.ID = query.DoseSetStatus
	var (
		err  error
		msg  string
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var now = time.Now()

EXEC_QUERY:
	if _, err = stmt.Exec(st, now.Unix(), d.ID); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		msg = fmt.Sprintf("Cannot set status of Dose %d to %s: %s",
			d.ID,
			st,
			err.Error())
		db.log.Printf("[ERROR] %s\n", msg)
		return errors.New(msg)
	}

	d.Status = st
	d.Changed = now
	return nil
} // func (db *Database) DoseSetStatus(d *objects.Dose, st status.Status) error

// DoseMarkTaken sets the given Dose's status to Taken and records the
// time the user confirmed taking it.
func (db *Database) DoseMarkTaken(d *objects.Dose, when time.Time) error {
	const qid query.ID = query.DoseMarkTaken
	var (
		err  error
		msg  string
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var now = time.Now()

EXEC_QUERY:
	if _, err = stmt.Exec(status.Taken, when.Unix(), now.Unix(), d.ID); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		msg = fmt.Sprintf("Cannot mark Dose %d as taken: %s",
			d.ID,
			err.Error())
		db.log.Printf("[ERROR] %s\n", msg)
		return errors.New(msg)
	}

	d.Status = status.Taken
	d.TakenAt = when
	d.Changed = now
	return nil
} // func (db *Database) DoseMarkTaken(d *objects.Dose, when time.Time) error

// DoseDeleteByMedication removes all Doses belonging to the given
// Medication, regardless of date or status.
func (db *Database) DoseDeleteByMedication(medID int64) error {
	const qid query.ID = query.DoseDeleteByMedication
	var (
		err  error
		msg  string
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

EXEC_QUERY:
	if _, err = stmt.Exec(medID); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		msg = fmt.Sprintf("Cannot delete Doses of Medication %d: %s",
			medID,
			err.Error())
		db.log.Printf("[ERROR] %s\n", msg)
		return errors.New(msg)
	}

	return nil
} // func (db *Database) DoseDeleteByMedication(medID int64) error

// DoseDeleteFuture removes all Doses of the given Medication whose
// scheduled date lies strictly after the given date. Doses on the given
// date itself are left alone.
func (db *Database) DoseDeleteFuture(medID int64, after objects.Date) error {
	const qid query.ID = query.DoseDeleteFuture
	var (
		err  error
		msg  string
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

EXEC_QUERY:
	if _, err = stmt.Exec(medID, after.String()); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		msg = fmt.Sprintf("Cannot delete future Doses of Medication %d: %s",
			medID,
			err.Error())
		db.log.Printf("[ERROR] %s\n", msg)
		return errors.New(msg)
	}

	return nil
} // func (db *Database) DoseDeleteFuture(medID int64, after objects.Date) error
