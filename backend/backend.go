// /home/krylon/go/src/github.com/blicero/asclepius/backend/backend.go
// -*- mode: go; coding: utf-8; -*-
// Created on 14. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-06-04 17:12:33 krylon>

// Package backend implements the server side of the application: it owns
// the database pool, runs the periodic sweep that flags overdue doses as
// missed, and exposes the schedule over HTTP.
package backend

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/blicero/asclepius/common"
	"github.com/blicero/asclepius/database"
	"github.com/blicero/asclepius/engine"
	"github.com/blicero/asclepius/logdomain"
	"github.com/gorilla/mux"
)

const (
	poolSize      = 4
	sweepInterval = time.Minute
)

// Daemon is the centerpiece of the backend, coordinating between the
// database, the schedule engine, and the clients.
type Daemon struct {
	log        *log.Logger
	pool       *database.Pool
	lock       sync.RWMutex // nolint: structcheck,unused
	active     bool
	web        http.Server
	router     *mux.Router
	listenAddr string
	idLock     sync.Mutex
	idCnt      int64
}

// Summon summons a Daemon and returns it. No sacrifice or idolatry is required.
func Summon(addr string) (*Daemon, error) {
	var (
		err error
		d   = &Daemon{
			listenAddr: addr,
			active:     true,
			router:     mux.NewRouter(),
		}
	)

	if d.log, err = common.GetLogger(logdomain.Backend); err != nil {
		fmt.Printf("ERROR initializing Logger: %s\n",
			err.Error())
		return nil, err
	} else if d.pool, err = database.NewPool(poolSize); err != nil {
		d.log.Printf("[ERROR] Cannot initialize database pool: %s\n",
			err.Error())
		return nil, err
	}

	d.web.Addr = addr
	d.web.ErrorLog = d.log
	d.web.Handler = d.router

	if err = d.initWebHandlers(); err != nil {
		d.log.Printf("[ERROR] Failed to initialize web server: %s\n",
			err.Error())
		return nil, err
	} else if err = d.seed(); err != nil {
		return nil, err
	}

	go d.sweepLoop()
	go d.serveHTTP()

	return d, nil
} // func Summon(addr string) (*Daemon, error)

// IsAlive returns true if the Daemon's active flag is set.
func (d *Daemon) IsAlive() bool {
	d.lock.RLock()
	var alive = d.active
	d.lock.RUnlock()

	return alive
} // func (d *Daemon) IsAlive() bool

// Banish clears the Daemon's active flag, telling components to shut down.
func (d *Daemon) Banish() error {
	var (
		err         error
		ctx, cancel = context.WithTimeout(context.Background(), time.Second*3)
	)
	defer cancel()

	if err = d.web.Shutdown(ctx); err != nil {
		d.log.Printf("[ERROR] Failed to shutdown web server: %s\n",
			err.Error())
	}

	if ctx.Err() != nil {
		err = ctx.Err()
		d.log.Printf("[ERROR] Failed to gracefully shut down web server: %s\n",
			ctx.Err().Error())
		d.web.Close() // nolint: errcheck
	}

	d.lock.Lock()
	d.active = false
	d.lock.Unlock()

	if cerr := d.pool.Close(); cerr != nil {
		d.log.Printf("[ERROR] Failed to close database pool: %s\n",
			cerr.Error())
		if err == nil {
			err = cerr
		}
	}

	return err
} // func (d *Daemon) Banish() error

// getEngine borrows a database connection from the pool and wraps an
// Engine around it. The caller must hand the connection back via
// d.pool.Put when done.
func (d *Daemon) getEngine() (*engine.Engine, *database.Database, error) {
	var (
		err error
		db  = d.pool.Get()
		eng *engine.Engine
	)

	if eng, err = engine.New(db, 0); err != nil {
		d.log.Printf("[ERROR] Cannot create Engine: %s\n",
			err.Error())
		d.pool.Put(db)
		return nil, nil, err
	}

	return eng, db, nil
} // func (d *Daemon) getEngine() (*engine.Engine, *database.Database, error)

// seed makes sure a fresh database holds a couple of example Medications.
func (d *Daemon) seed() error {
	var (
		err error
		eng *engine.Engine
		db  *database.Database
		cnt int
	)

	if eng, db, err = d.getEngine(); err != nil {
		return err
	}
	defer d.pool.Put(db)

	if cnt, err = eng.Seed(time.Now()); err != nil {
		d.log.Printf("[ERROR] Cannot seed database: %s\n",
			err.Error())
		return err
	} else if cnt > 0 {
		d.log.Printf("[INFO] Database was empty, seeded %d Medications\n",
			cnt)
	}

	return nil
} // func (d *Daemon) seed() error

// sweepLoop periodically flags overdue Doses as missed, so the schedule
// stays honest even when no client is asking.
func (d *Daemon) sweepLoop() {
	defer d.log.Println("[TRACE] Quitting sweepLoop")

	var ticker = time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for d.IsAlive() {
		<-ticker.C

		if err := d.sweep(); err != nil {
			d.log.Printf("[ERROR] Missed-dose sweep failed: %s\n",
				err.Error())
		}
	}
} // func (d *Daemon) sweepLoop()

func (d *Daemon) sweep() error {
	var (
		err error
		eng *engine.Engine
		db  *database.Database
	)

	if eng, db, err = d.getEngine(); err != nil {
		return err
	}
	defer d.pool.Put(db)

	var _, serr = eng.ReconcileMissed(time.Now())

	return serr
} // func (d *Daemon) sweep()
