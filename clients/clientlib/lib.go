// /home/krylon/go/src/github.com/blicero/asclepius/clients/clientlib/lib.go
// -*- mode: go; coding: utf-8; -*-
// Created on 16. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-06-05 17:48:21 krylon>

// Package clientlib provides the basic framework for building clients
// that talk to the backend, submitting Medications, confirming Doses,
// and fetching the daily schedule.
package clientlib

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/blicero/asclepius/common"
	"github.com/blicero/asclepius/logdomain"
	"github.com/blicero/asclepius/objects"
	"github.com/pquerna/ffjson/ffjson"
)

// Client is the basic implementation of an Asclepius client, it
// implements the fundamental communication with the Server.
type Client struct {
	Server *url.URL
	Client http.Client
	log    *log.Logger
}

// NewClient creates a new Client.
func NewClient(srv string) (*Client, error) {
	var (
		err error
		c   = &Client{
			Client: http.Client{
				Timeout: time.Second * 10,
			},
		}
	)

	if c.log, err = common.GetLogger(logdomain.Client); err != nil {
		fmt.Fprintf(
			os.Stderr,
			"Cannot create Logger: %s\n",
			err.Error())
		return nil, err
	} else if c.Server, err = url.Parse(srv); err != nil {
		c.log.Printf("[ERROR] Cannot parse URL %q: %s\n",
			srv,
			err.Error())
		return nil, err
	}

	c.Server.Scheme = "http"

	return c, nil
} // func NewClient(srv string) (*Client, error)

func (c *Client) GetLogger() *log.Logger {
	return c.log
} // func (c *Client) GetLogger() *log.Logger

func (c *Client) addr(path string) string {
	var u = *c.Server
	u.Path = path
	return u.String()
} // func (c *Client) addr(path string) string

// postForm POSTs the given form data and unwraps the Response envelope.
func (c *Client) postForm(path string, values url.Values) error {
	var (
		err    error
		msg    string
		rcvBuf bytes.Buffer
		hres   *http.Response
		ores   objects.Response
	)

	if hres, err = c.Client.PostForm(c.addr(path), values); err != nil {
		c.log.Printf("[ERROR] Failed to POST to %s: %s\n",
			path,
			err.Error())
		return err
	}

	defer hres.Body.Close() // nolint: errcheck

	if hres.StatusCode != http.StatusOK {
		msg = fmt.Sprintf("Unexpected status from %s: %s",
			path,
			hres.Status)
		c.log.Printf("[ERROR] %s\n", msg)
		return errors.New(msg)
	} else if _, err = io.Copy(&rcvBuf, hres.Body); err != nil {
		c.log.Printf("[ERROR] Failed to read Response body from %s: %s\n",
			path,
			err.Error())
		return err
	} else if err = ffjson.Unmarshal(rcvBuf.Bytes(), &ores); err != nil {
		c.log.Printf("[ERROR] Cannot de-serialize Response from %s: %s\n",
			path,
			err.Error())
		return err
	} else if !ores.Status {
		err = fmt.Errorf("Request to %s failed: %s",
			path,
			ores.Message)
		c.log.Printf("[ERROR] %s\n",
			err.Error())
		return err
	}

	c.log.Printf("[DEBUG] Request to %s was successful: %s\n",
		path,
		ores.Message)

	return nil
} // func (c *Client) postForm(path string, values url.Values) error

// getJSON GETs the given path and de-serializes the payload into dst.
func (c *Client) getJSON(path string, dst interface{}) error {
	var (
		err    error
		rcvBuf bytes.Buffer
		hres   *http.Response
	)

	if hres, err = c.Client.Get(c.addr(path)); err != nil {
		c.log.Printf("[ERROR] Failed to GET %s: %s\n",
			path,
			err.Error())
		return err
	}

	defer hres.Body.Close() // nolint: errcheck

	if hres.StatusCode != http.StatusOK {
		var msg = fmt.Sprintf("Unexpected status from %s: %s",
			path,
			hres.Status)
		c.log.Printf("[ERROR] %s\n", msg)
		return errors.New(msg)
	} else if _, err = io.Copy(&rcvBuf, hres.Body); err != nil {
		c.log.Printf("[ERROR] Failed to read body from %s: %s\n",
			path,
			err.Error())
		return err
	} else if err = ffjson.Unmarshal(rcvBuf.Bytes(), dst); err != nil {
		c.log.Printf("[ERROR] Cannot de-serialize payload from %s: %s\n",
			path,
			err.Error())
		return err
	}

	return nil
} // func (c *Client) getJSON(path string, dst interface{}) error

// SubmitMedication asks the backend to create a new Medication.
func (c *Client) SubmitMedication(name, dosage string, times []string) error {
	var values = url.Values{
		"name":   []string{name},
		"dosage": []string{dosage},
		"time":   times,
	}

	return c.postForm("/medication/add", values)
} // func (c *Client) SubmitMedication(name, dosage string, times []string) error

// MarkTaken confirms the Dose with the given ID.
func (c *Client) MarkTaken(id int64) error {
	return c.postForm(fmt.Sprintf("/dose/%d/taken", id), nil)
} // func (c *Client) MarkTaken(id int64) error

// DeleteMedication asks the backend to remove a Medication and its Doses.
func (c *Client) DeleteMedication(id int64) error {
	return c.postForm(fmt.Sprintf("/medication/%d/delete", id), nil)
} // func (c *Client) DeleteMedication(id int64) error

// FetchMedications retrieves all Medications from the backend.
func (c *Client) FetchMedications() ([]objects.Medication, error) {
	var (
		err  error
		meds []objects.Medication
	)

	if err = c.getJSON("/medication/all", &meds); err != nil {
		return nil, err
	}

	return meds, nil
} // func (c *Client) FetchMedications() ([]objects.Medication, error)

// FetchToday retrieves the current day's schedule from the backend.
func (c *Client) FetchToday() ([]objects.DoseEntry, error) {
	var (
		err     error
		entries []objects.DoseEntry
	)

	if err = c.getJSON("/dose/today", &entries); err != nil {
		return nil, err
	}

	return entries, nil
} // func (c *Client) FetchToday() ([]objects.DoseEntry, error)

// FetchAdherence retrieves the adherence summary for one month.
func (c *Client) FetchAdherence(year int, month time.Month) ([]objects.DayAdherence, error) {
	var (
		err  error
		days []objects.DayAdherence
	)

	var path = fmt.Sprintf("/adherence/%04d/%02d",
		year,
		month)

	if err = c.getJSON(path, &days); err != nil {
		return nil, err
	}

	return days, nil
} // func (c *Client) FetchAdherence(year int, month time.Month) ([]objects.DayAdherence, error)
