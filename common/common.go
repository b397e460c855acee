// /home/krylon/go/src/github.com/blicero/asclepius/common/common.go
// -*- mode: go; coding: utf-8; -*-
// Created on 03. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-06-02 18:47:29 krylon>

// Package common provides constants and functions used throughout
// the application.
package common

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/blicero/asclepius/logdomain"
	"github.com/hashicorp/logutils"
	"github.com/odeke-em/go-uuid"
)

//go:generate ./build_time_stamp.pl

// Debug indicates whether to emit additional log messages and perform
// additional sanity checks.
const Debug = true

// AppName is the name of the application, Version is ... the version.
// TimestampFormat is the format string used to render timestamps,
// TimestampFormatMinute leaves off the seconds, TimestampFormatDate
// renders just the calendar date.
const (
	AppName               = "Asclepius"
	Version               = "0.2.5"
	TimestampFormat       = "2006-01-02 15:04:05"
	TimestampFormatMinute = "2006-01-02 15:04"
	TimestampFormatDate   = "2006-01-02"
	TimestampFormatTime   = "15:04:05"
	DefaultPort           = 7202
)

// HorizonDays is the number of days into the future for which
// Doses are generated ahead of time.
const HorizonDays = 30

// LogLevels are the names of the log levels supported by the logger.
var LogLevels = []logutils.LogLevel{
	"TRACE",
	"DEBUG",
	"INFO",
	"WARNING",
	"ERROR",
	"CRITICAL",
	"CANTHAPPEN",
	"SILENT",
}

// PackageLevels defines minimum log levels per package.
var PackageLevels = make(map[logdomain.ID]logutils.LogLevel, len(logdomain.AllDomains()))

func init() {
	for _, id := range logdomain.AllDomains() {
		PackageLevels[id] = "TRACE"
	}
}

var (
	// BaseDir is the folder where all application-specific files
	// (database, log file, etc.) are stored.
	BaseDir = filepath.Join(
		os.Getenv("HOME"),
		fmt.Sprintf(".%s.d", strings.ToLower(AppName)))
	// LogPath is the file to which the log is written.
	LogPath = filepath.Join(
		BaseDir,
		fmt.Sprintf("%s.log", strings.ToLower(AppName)))
	// DbPath is the path of the database.
	DbPath = filepath.Join(
		BaseDir,
		fmt.Sprintf("%s.db", strings.ToLower(AppName)))
)

// SetBaseDir sets the BaseDir and related variables.
func SetBaseDir(path string) error {
	fmt.Printf("Setting BaseDir to %s\n", path)

	BaseDir = path
	LogPath = filepath.Join(
		BaseDir,
		fmt.Sprintf("%s.log", strings.ToLower(AppName)))
	DbPath = filepath.Join(
		BaseDir,
		fmt.Sprintf("%s.db", strings.ToLower(AppName)))

	// The old log file, if one is open, belongs to the old BaseDir.
	logLock.Lock()
	if logfile != nil {
		logfile.Close() // nolint: errcheck
		logfile = nil
	}
	logLock.Unlock()

	if err := InitApp(); err != nil {
		fmt.Printf("Error initializing application environment: %s\n",
			err.Error())
		return err
	}

	return nil
} // func SetBaseDir(path string) error

var (
	logLock sync.Mutex
	logfile *os.File
)

// openLogFile opens the log file, creating it if neccessary.
// The handle is shared by all loggers, so asking for any number of
// loggers still costs just the one file descriptor.
func openLogFile() (*os.File, error) {
	logLock.Lock()
	defer logLock.Unlock()

	if logfile != nil {
		return logfile, nil
	}

	var (
		err error
		fh  *os.File
	)

	if fh, err = os.OpenFile(LogPath, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0644); err != nil {
		return nil, fmt.Errorf("Error opening log file %s: %s",
			LogPath,
			err.Error())
	}

	logfile = fh
	return logfile, nil
} // func openLogFile() (*os.File, error)

// GetLogger tries to create a named logger instance and return it.
// If the directory to hold the log file does not exist, try to create it.
func GetLogger(dom logdomain.ID) (*log.Logger, error) {
	var (
		err  error
		fh   *os.File
		name = fmt.Sprintf("%s.%s",
			AppName,
			dom)
	)

	if err = InitApp(); err != nil {
		return nil, fmt.Errorf("Error initializing application environment: %s",
			err.Error())
	}

	if fh, err = openLogFile(); err != nil {
		return nil, err
	}

	var writer = io.MultiWriter(os.Stderr, fh)

	var filter = &logutils.LevelFilter{
		Levels:   LogLevels,
		MinLevel: PackageLevels[dom],
		Writer:   writer,
	}

	var logger = log.New(
		filter,
		name+" ",
		log.Ldate|log.Ltime|log.Lshortfile)

	return logger, nil
} // func GetLogger(dom logdomain.ID) (*log.Logger, error)

// InitApp performs some basic preparations for the application to run.
// Currently, this means creating the BaseDir.
func InitApp() error {
	var err error

	if err = os.MkdirAll(BaseDir, 0755); err != nil {
		var msg = fmt.Sprintf("Error creating BaseDir %s: %s",
			BaseDir,
			err.Error())
		return fmt.Errorf("%s", msg)
	}

	return nil
} // func InitApp() error

// GetUUID returns a randomized UUID.
func GetUUID() string {
	return uuid.NewRandom().String()
} // func GetUUID() string

// TimeEqual returns true if the two timestamps are less than one second apart.
func TimeEqual(t1, t2 time.Time) bool {
	var delta = t1.Sub(t2)

	if delta < 0 {
		delta = -delta
	}

	return delta < time.Second
} // func TimeEqual(t1, t2 time.Time) bool
