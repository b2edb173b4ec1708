// Package cache keeps the per-date appointment lists the calendar renders
// from. The policy is invalidate-and-refetch: after a mutation succeeds the
// affected entries are dropped and re-read from the remote API, never patched
// in place. Server truth is the only truth the UI ever shows, which removes
// the whole class of write-write reconciliation bugs at the cost of one extra
// read per mutation.
package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/glowpoint/salon-scheduler/internal/apiclient"
	"github.com/glowpoint/salon-scheduler/internal/model"
)

// Lister is the read side of the appointment API the coordinator refreshes
// from. Satisfied by *apiclient.Client.
type Lister interface {
	ListAppointments(ctx context.Context, cookie, date string) ([]model.Appointment, error)
}

// entry is the cached state for one key. Data survives failed refreshes
// (stale-but-available); Err carries the most recent fetch failure so the UI
// can show an alert next to possibly stale data.
type entry struct {
	data      []model.Appointment
	err       error
	fetchedAt time.Time
}

// Coordinator caches appointment lists keyed by date (the empty key is the
// unscoped "all appointments" list). At most one fetch per key is in flight
// at any time; concurrent readers of a pending key share its result.
type Coordinator struct {
	lister Lister
	ttl    time.Duration

	mu      sync.Mutex
	entries map[string]*entry
	group   singleflight.Group
}

// New constructs a coordinator. ttl bounds how long a cached list is served
// without a refresh; zero or negative falls back to 30 seconds.
func New(lister Lister, ttl time.Duration) *Coordinator {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Coordinator{
		lister:  lister,
		ttl:     ttl,
		entries: make(map[string]*entry),
	}
}

// Day returns the appointment list for a date, fetching when the cache is
// cold or expired. On fetch failure previously cached data is returned
// alongside the error so the calendar can keep rendering.
func (c *Coordinator) Day(ctx context.Context, cookie, date string) ([]model.Appointment, error) {
	c.mu.Lock()
	e, ok := c.entries[date]
	if ok && e.err == nil && time.Since(e.fetchedAt) < c.ttl {
		data := e.data
		c.mu.Unlock()
		return data, nil
	}
	var stale []model.Appointment
	if ok {
		stale = e.data
	}
	c.mu.Unlock()

	data, err := c.fetch(ctx, cookie, date)
	if err != nil {
		return stale, err
	}
	return data, nil
}

// Refresh forces a fetch for a key regardless of freshness. Used after
// invalidation so the next render already has warm data.
func (c *Coordinator) Refresh(ctx context.Context, cookie, date string) ([]model.Appointment, error) {
	c.Invalidate(date)
	return c.fetch(ctx, cookie, date)
}

// Invalidate drops the entry for a date together with the unscoped list.
// Callers invoke it only after a mutation's success, so a refetch can never
// race ahead of the write it depends on.
func (c *Coordinator) Invalidate(date string) {
	c.mu.Lock()
	delete(c.entries, date)
	delete(c.entries, "")
	c.mu.Unlock()
}

// Err reports the last fetch error recorded for a key, if any.
func (c *Coordinator) Err(date string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[date]; ok {
		return e.err
	}
	return nil
}

// fetch performs the network read behind singleflight. Transport failures are
// retried once; application errors from the API (*RequestError) are not, the
// server already gave its answer.
func (c *Coordinator) fetch(ctx context.Context, cookie, date string) ([]model.Appointment, error) {
	v, err, _ := c.group.Do(date, func() (interface{}, error) {
		data, err := c.lister.ListAppointments(ctx, cookie, date)
		if err != nil && retryable(err) {
			data, err = c.lister.ListAppointments(ctx, cookie, date)
		}
		c.store(date, data, err)
		return data, err
	})
	if v == nil {
		return nil, err
	}
	return v.([]model.Appointment), err
}

// store records a fetch outcome. A failed fetch keeps the previous data and
// only replaces the error state.
func (c *Coordinator) store(date string, data []model.Appointment, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[date]
	if !ok {
		e = &entry{}
		c.entries[date] = e
	}
	if err != nil {
		e.err = err
		return
	}
	e.data = data
	e.err = nil
	e.fetchedAt = time.Now()
}

// retryable reports whether an error is a transport failure rather than an
// application response. The API answered in the latter case; retrying would
// just repeat the same rejection.
func retryable(err error) bool {
	var reqErr *apiclient.RequestError
	return !errors.As(err, &reqErr)
}
