// /home/krylon/go/src/github.com/blicero/asclepius/backend/web.go
// -*- mode: go; coding: utf-8; -*-
// Created on 14. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-06-04 18:03:29 krylon>

package backend

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/blicero/asclepius/database"
	"github.com/blicero/asclepius/engine"
	"github.com/blicero/asclepius/objects"
	"github.com/gorilla/mux"
	"github.com/pquerna/ffjson/ffjson"
)

func (d *Daemon) initWebHandlers() error {
	d.router.HandleFunc("/medication/add", d.handleMedicationAdd)
	d.router.HandleFunc("/medication/all", d.handleMedicationGetAll)
	d.router.HandleFunc("/medication/{id:(?:\\d+)}", d.handleMedicationGetByID)
	d.router.HandleFunc("/medication/{id:(?:\\d+)}/update", d.handleMedicationUpdate)
	d.router.HandleFunc("/medication/{id:(?:\\d+)}/delete", d.handleMedicationDelete)
	d.router.HandleFunc("/dose/today", d.handleDoseToday)
	d.router.HandleFunc("/dose/{id:(?:\\d+)}/taken", d.handleDoseTaken)
	d.router.HandleFunc("/adherence/{year:(?:\\d+)}/{month:(?:\\d+)}", d.handleAdherence)

	return nil
} // func (d *Daemon) initWebHandlers() error

func (d *Daemon) serveHTTP() {
	var err error

	defer d.log.Println("[INFO] Web server is shutting down")

	d.log.Printf("[INFO] Web interface is going online at %s\n", d.web.Addr)
	http.Handle("/", d.router)

	if err = d.web.ListenAndServe(); err != nil {
		if err != http.ErrServerClosed {
			d.log.Printf("[ERROR] ListenAndServe returned an error: %s\n",
				err.Error())
		} else {
			d.log.Println("[INFO] HTTP Server has shut down.")
		}
	}
} // func (d *Daemon) serveHTTP()

func (d *Daemon) handleMedicationAdd(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err               error
		eng               *engine.Engine
		db                *database.Database
		m                 *objects.Medication
		name, dosage, msg string
		times             []string
		response          = objects.Response{ID: d.getID()}
	)

	if err = r.ParseForm(); err != nil {
		d.log.Printf("[ERROR] Cannot parse form data: %s\n",
			err.Error())
		response.Message = err.Error()
		goto SEND_RESPONSE
	}

	name = r.PostFormValue("name")
	dosage = r.PostFormValue("dosage")
	times = r.PostForm["time"]

	if eng, db, err = d.getEngine(); err != nil {
		response.Message = err.Error()
		goto SEND_RESPONSE
	}
	defer d.pool.Put(db)

	if m, err = eng.AddMedication(name, dosage, times, time.Now()); err != nil {
		msg = fmt.Sprintf("Cannot add Medication %q: %s",
			name,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	}

	response.Message = m.UUID
	response.Status = true

SEND_RESPONSE:
	d.sendResponseJSON(w, &response)
} // func (d *Daemon) handleMedicationAdd(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleMedicationUpdate(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err                      error
		eng                      *engine.Engine
		db                       *database.Database
		id                       int64
		idstr, name, dosage, msg string
		times                    []string
		res                      = objects.Response{ID: d.getID()}
	)

	var vars = mux.Vars(r)

	if err = r.ParseForm(); err != nil {
		msg = fmt.Sprintf("Cannot parse form data: %s", err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		res.Message = msg
		goto SEND_RESPONSE
	}

	idstr = vars["id"]
	name = r.PostFormValue("name")
	dosage = r.PostFormValue("dosage")
	times = r.PostForm["time"]

	if id, err = strconv.ParseInt(idstr, 10, 64); err != nil {
		msg = fmt.Sprintf("Cannot parse ID %q: %s",
			idstr,
			err.Error())
		d.log.Printf("[CANTHAPPEN] %s\n", msg)
		res.Message = msg
		goto SEND_RESPONSE
	}

	if eng, db, err = d.getEngine(); err != nil {
		res.Message = err.Error()
		goto SEND_RESPONSE
	}
	defer d.pool.Put(db)

	if _, err = eng.UpdateMedication(id, name, dosage, times, time.Now()); err != nil {
		if errors.Is(err, engine.ErrNotFound) {
			msg = fmt.Sprintf("Medication #%d was not found in database",
				id)
			d.log.Printf("[DEBUG] %s\n", msg)
		} else {
			msg = fmt.Sprintf("Cannot update Medication %d: %s",
				id,
				err.Error())
			d.log.Printf("[ERROR] %s\n", msg)
		}
		res.Message = msg
		goto SEND_RESPONSE
	}

	res.Message = "OK"
	res.Status = true

SEND_RESPONSE:
	d.sendResponseJSON(w, &res)
} // func (d *Daemon) handleMedicationUpdate(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleMedicationDelete(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err        error
		eng        *engine.Engine
		db         *database.Database
		idstr, msg string
		id         int64
		res        = objects.Response{ID: d.getID()}
	)

	var vars = mux.Vars(r)

	idstr = vars["id"]

	if id, err = strconv.ParseInt(idstr, 10, 64); err != nil {
		msg = fmt.Sprintf("Cannot parse ID %q: %s",
			idstr,
			err.Error())
		d.log.Printf("[CANTHAPPEN] %s\n", msg)
		res.Message = msg
		goto SEND_RESPONSE
	}

	if eng, db, err = d.getEngine(); err != nil {
		res.Message = err.Error()
		goto SEND_RESPONSE
	}
	defer d.pool.Put(db)

	if err = eng.DeleteMedication(id); err != nil {
		msg = fmt.Sprintf("Failed to delete Medication %d: %s",
			id,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		res.Message = msg
		goto SEND_RESPONSE
	}

	res.Message = fmt.Sprintf("Medication %d was deleted", id)
	res.Status = true

SEND_RESPONSE:
	d.sendResponseJSON(w, &res)
} // func (d *Daemon) handleMedicationDelete(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleMedicationGetAll(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err  error
		eng  *engine.Engine
		db   *database.Database
		meds []objects.Medication
		buf  []byte
	)

	if eng, db, err = d.getEngine(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer d.pool.Put(db)

	if meds, err = eng.Medications(); err != nil {
		d.log.Printf("[ERROR] Cannot load Medications: %s\n",
			err.Error())
	} else if buf, err = ffjson.Marshal(meds); err != nil {
		d.log.Printf("[ERROR] Cannot serialize Medication list: %s\n",
			err.Error())
	}

	defer ffjson.Pool(buf)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(200)
	w.Write(buf) // nolint: errcheck
} // func (d *Daemon) handleMedicationGetAll(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleMedicationGetByID(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err   error
		eng   *engine.Engine
		db    *database.Database
		m     *objects.Medication
		id    int64
		idstr string
		buf   []byte
	)

	var vars = mux.Vars(r)

	idstr = vars["id"]

	if id, err = strconv.ParseInt(idstr, 10, 64); err != nil {
		d.log.Printf("[CANTHAPPEN] Cannot parse ID %q: %s\n",
			idstr,
			err.Error())
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if eng, db, err = d.getEngine(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer d.pool.Put(db)

	if m, err = eng.MedicationByID(id); err != nil {
		if errors.Is(err, engine.ErrNotFound) {
			http.Error(w,
				fmt.Sprintf("Medication %d was not found", id),
				http.StatusNotFound)
		} else {
			d.log.Printf("[ERROR] Cannot look up Medication %d: %s\n",
				id,
				err.Error())
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	if buf, err = ffjson.Marshal(m); err != nil {
		d.log.Printf("[ERROR] Cannot serialize Medication %d: %s\n",
			id,
			err.Error())
	}

	defer ffjson.Pool(buf)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(200)
	w.Write(buf) // nolint: errcheck
} // func (d *Daemon) handleMedicationGetByID(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleDoseToday(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err     error
		eng     *engine.Engine
		db      *database.Database
		entries []objects.DoseEntry
		buf     []byte
	)

	if eng, db, err = d.getEngine(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer d.pool.Put(db)

	if entries, err = eng.TodaysDoses(time.Now()); err != nil {
		d.log.Printf("[ERROR] Cannot load today's Doses: %s\n",
			err.Error())
	} else if buf, err = ffjson.Marshal(entries); err != nil {
		d.log.Printf("[ERROR] Cannot serialize Dose list: %s\n",
			err.Error())
	}

	defer ffjson.Pool(buf)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(200)
	w.Write(buf) // nolint: errcheck
} // func (d *Daemon) handleDoseToday(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleDoseTaken(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err        error
		eng        *engine.Engine
		db         *database.Database
		idstr, msg string
		id         int64
		res        = objects.Response{ID: d.getID()}
	)

	var vars = mux.Vars(r)

	idstr = vars["id"]

	if id, err = strconv.ParseInt(idstr, 10, 64); err != nil {
		msg = fmt.Sprintf("Cannot parse ID %q: %s",
			idstr,
			err.Error())
		d.log.Printf("[CANTHAPPEN] %s\n", msg)
		res.Message = msg
		goto SEND_RESPONSE
	}

	if eng, db, err = d.getEngine(); err != nil {
		res.Message = err.Error()
		goto SEND_RESPONSE
	}
	defer d.pool.Put(db)

	if err = eng.MarkTaken(id, time.Now()); err != nil {
		msg = fmt.Sprintf("Cannot mark Dose %d as taken: %s",
			id,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		res.Message = msg
		goto SEND_RESPONSE
	}

	res.Message = "OK"
	res.Status = true

SEND_RESPONSE:
	d.sendResponseJSON(w, &res)
} // func (d *Daemon) handleDoseTaken(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleAdherence(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err         error
		eng         *engine.Engine
		db          *database.Database
		year, month int64
		days        []objects.DayAdherence
		buf         []byte
	)

	var vars = mux.Vars(r)

	if year, err = strconv.ParseInt(vars["year"], 10, 64); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	} else if month, err = strconv.ParseInt(vars["month"], 10, 64); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	} else if month < 1 || month > 12 {
		http.Error(w,
			fmt.Sprintf("Invalid month %d", month),
			http.StatusBadRequest)
		return
	}

	if eng, db, err = d.getEngine(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer d.pool.Put(db)

	if days, err = eng.AdherenceForMonth(int(year), time.Month(month), time.Now()); err != nil {
		d.log.Printf("[ERROR] Cannot compute adherence for %04d-%02d: %s\n",
			year,
			month,
			err.Error())
	} else if buf, err = ffjson.Marshal(days); err != nil {
		d.log.Printf("[ERROR] Cannot serialize adherence list: %s\n",
			err.Error())
	}

	defer ffjson.Pool(buf)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(200)
	w.Write(buf) // nolint: errcheck
} // func (d *Daemon) handleAdherence(w http.ResponseWriter, r *http.Request)

//////////////////////////////////////////////////////////////////////////////////////////////////
/// Helpers //////////////////////////////////////////////////////////////////////////////////////
//////////////////////////////////////////////////////////////////////////////////////////////////

func (d *Daemon) sendResponseJSON(w http.ResponseWriter, res *objects.Response) {
	var (
		err error
		buf []byte
	)

	if buf, err = ffjson.Marshal(res); err != nil {
		d.log.Printf("[ERROR] Cannot serialize Response object %#v: %s\n",
			res,
			err.Error())
		return
	}

	defer ffjson.Pool(buf)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(200)
	w.Write(buf) // nolint: errcheck
} // func (d *Daemon) sendResponseJSON(w http.ResponseWriter, res *objects.Response)

func (d *Daemon) getID() int64 {
	d.idLock.Lock()
	d.idCnt++
	var id = d.idCnt
	d.idLock.Unlock()
	return id
} // func (d *Daemon) getID() int64
