// /home/krylon/go/src/github.com/blicero/asclepius/database/pool.go
// -*- mode: go; coding: utf-8; -*-
// Created on 07. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-05-30 19:44:12 krylon>

package database

import (
	"log"

	"github.com/blicero/asclepius/common"
	"github.com/blicero/asclepius/logdomain"
)

// Pool is a fixed-size pool of database connections, so the web handlers
// do not have to open a fresh connection per request.
type Pool struct {
	log *log.Logger
	q   chan *Database
}

// NewPool opens the given number of database connections and returns the
// Pool containing them.
func NewPool(cnt int) (*Pool, error) {
	var (
		err  error
		pool = &Pool{
			q: make(chan *Database, cnt),
		}
	)

	if pool.log, err = common.GetLogger(logdomain.DBPool); err != nil {
		return nil, err
	}

	for i := 0; i < cnt; i++ {
		var db *Database

		if db, err = Open(common.DbPath); err != nil {
			pool.log.Printf("[ERROR] Cannot open database connection #%d at %s: %s\n",
				i+1,
				common.DbPath,
				err.Error())
			return nil, err
		}

		pool.q <- db
	}

	return pool, nil
} // func NewPool(cnt int) (*Pool, error)

// Get returns a connection from the Pool, blocking until one is available.
// The caller is expected to return it via Put when done.
func (pool *Pool) Get() *Database {
	return <-pool.q
} // func (pool *Pool) Get() *Database

// GetNoWait returns a connection from the Pool, or nil if none is
// available immediately.
func (pool *Pool) GetNoWait() *Database {
	select {
	case db := <-pool.q:
		return db
	default:
		return nil
	}
} // func (pool *Pool) GetNoWait() *Database

// Put returns a connection to the Pool.
func (pool *Pool) Put(db *Database) {
	pool.q <- db
} // func (pool *Pool) Put(db *Database)

// Close closes all connections currently in the Pool.
func (pool *Pool) Close() error {
	var err error

	for {
		var db = pool.GetNoWait()

		if db == nil {
			return nil
		} else if err = db.Close(); err != nil {
			pool.log.Printf("[ERROR] Cannot close database connection: %s\n",
				err.Error())
			return err
		}
	}
} // func (pool *Pool) Close() error
