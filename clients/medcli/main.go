// /home/krylon/go/src/github.com/blicero/asclepius/clients/medcli/main.go
// -*- mode: go; coding: utf-8; -*-
// Created on 17. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-06-05 19:02:11 krylon>

// medcli is a small command line client for the backend. It can list
// the day's schedule, confirm doses, and manage medications.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/blicero/asclepius/clients/clientlib"
	"github.com/blicero/asclepius/common"
	"github.com/blicero/asclepius/objects"
)

func main() {
	var (
		err  error
		c    *clientlib.Client
		addr string
	)

	flag.StringVar(
		&addr,
		"address",
		fmt.Sprintf("localhost:%d", common.DefaultPort),
		"Address of the backend")

	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(1)
	}

	if c, err = clientlib.NewClient("http://" + addr); err != nil {
		fmt.Fprintf(
			os.Stderr,
			"Cannot create Client: %s\n",
			err.Error())
		os.Exit(1)
	}

	var args = flag.Args()

	switch args[0] {
	case "today":
		err = cmdToday(c)
	case "meds":
		err = cmdMeds(c)
	case "take":
		err = cmdTake(c, args[1:])
	case "add":
		err = cmdAdd(c, args[1:])
	case "delete":
		err = cmdDelete(c, args[1:])
	case "adherence":
		err = cmdAdherence(c, args[1:])
	default:
		fmt.Fprintf(
			os.Stderr,
			"Unknown command %q\n",
			args[0])
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(
			os.Stderr,
			"Error: %s\n",
			err.Error())
		os.Exit(1)
	}
} // func main()

func usage() {
	fmt.Fprintf(
		os.Stderr,
		`Usage: %s [-address HOST:PORT] COMMAND [ARGS...]

Commands:
  today                          Display the schedule for today
  meds                           List all medications
  take ID                        Confirm the dose with the given ID
  add NAME DOSAGE TIME...        Add a medication (times as HH:MM)
  delete ID                      Remove a medication and its doses
  adherence [YEAR MONTH]         Display adherence per day for one month
`,
		os.Args[0])
} // func usage()

func cmdToday(c *clientlib.Client) error {
	var entries, err = c.FetchToday()

	if err != nil {
		return err
	}

	for _, e := range entries {
		fmt.Printf("%6d  %s  %-9s  %s (%s)\n",
			e.Dose.ID,
			e.Dose.Time,
			e.Dose.Status,
			e.Medication.Name,
			e.Medication.Dosage)
	}

	return nil
} // func cmdToday(c *clientlib.Client) error

func cmdMeds(c *clientlib.Client) error {
	var meds, err = c.FetchMedications()

	if err != nil {
		return err
	}

	for _, m := range meds {
		fmt.Printf("%6d  %s (%s) at %s\n",
			m.ID,
			m.Name,
			m.Dosage,
			strings.Join(m.ReminderTimes, ", "))
	}

	return nil
} // func cmdMeds(c *clientlib.Client) error

func cmdTake(c *clientlib.Client, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("Usage: take ID")
	}

	var id, err = strconv.ParseInt(args[0], 10, 64)

	if err != nil {
		return fmt.Errorf("Cannot parse ID %q: %s",
			args[0],
			err.Error())
	}

	return c.MarkTaken(id)
} // func cmdTake(c *clientlib.Client, args []string) error

func cmdAdd(c *clientlib.Client, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("Usage: add NAME DOSAGE TIME...")
	}

	return c.SubmitMedication(args[0], args[1], args[2:])
} // func cmdAdd(c *clientlib.Client, args []string) error

func cmdDelete(c *clientlib.Client, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("Usage: delete ID")
	}

	var id, err = strconv.ParseInt(args[0], 10, 64)

	if err != nil {
		return fmt.Errorf("Cannot parse ID %q: %s",
			args[0],
			err.Error())
	}

	return c.DeleteMedication(id)
} // func cmdDelete(c *clientlib.Client, args []string) error

func cmdAdherence(c *clientlib.Client, args []string) error {
	var (
		err   error
		year  int64
		month int64
		now   = time.Now()
	)

	year = int64(now.Year())
	month = int64(now.Month())

	if len(args) == 2 {
		if year, err = strconv.ParseInt(args[0], 10, 64); err != nil {
			return fmt.Errorf("Cannot parse year %q: %s",
				args[0],
				err.Error())
		} else if month, err = strconv.ParseInt(args[1], 10, 64); err != nil {
			return fmt.Errorf("Cannot parse month %q: %s",
				args[1],
				err.Error())
		}
	} else if len(args) != 0 {
		return fmt.Errorf("Usage: adherence [YEAR MONTH]")
	}

	var days []objects.DayAdherence

	if days, err = c.FetchAdherence(int(year), time.Month(month)); err != nil {
		return err
	}

	for _, day := range days {
		fmt.Printf("%s  %2d/%2d  %5.1f%%\n",
			day.Date,
			day.Taken,
			day.Scheduled,
			day.Rate*100)
	}

	return nil
} // func cmdAdherence(c *clientlib.Client, args []string) error
