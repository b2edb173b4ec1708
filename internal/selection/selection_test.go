package selection

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/glowpoint/salon-scheduler/internal/model"
)

type fakeDeleter struct {
	err     error
	deleted []int
}

func (f *fakeDeleter) DeleteAppointment(_ context.Context, _ string, id int) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeInvalidator struct {
	mu    sync.Mutex
	dates []string
}

func (f *fakeInvalidator) Invalidate(date string) {
	f.mu.Lock()
	f.dates = append(f.dates, date)
	f.mu.Unlock()
}

func apt(id int) model.Appointment {
	start := time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC)
	return model.Appointment{ID: id, StartTime: start, EndTime: start.Add(time.Hour)}
}

func TestOpenReplacesPriorSelection(t *testing.T) {
	c := New(&fakeDeleter{}, &fakeInvalidator{})

	c.Open(apt(1), model.Customer{}, Anchor{Top: 10}, 1)
	c.Open(apt(2), model.Customer{}, Anchor{Top: 20}, 2)

	sel, ok := c.Current()
	if !ok {
		t.Fatalf("expected an open selection")
	}
	if sel.Appointment.ID != 2 {
		t.Fatalf("second open must replace the first, got id %d", sel.Appointment.ID)
	}
	if sel.Anchor.Top != 20 {
		t.Fatalf("anchor not captured from the latest open: %+v", sel.Anchor)
	}
}

func TestCloseClearsSelection(t *testing.T) {
	c := New(&fakeDeleter{}, &fakeInvalidator{})
	c.Open(apt(1), model.Customer{}, Anchor{}, 0)
	c.Close()
	if _, ok := c.Current(); ok {
		t.Fatalf("selection still open after Close")
	}
	c.Close() // closing again is harmless
}

func TestDeleteOpen_SuccessClosesAndInvalidates(t *testing.T) {
	d := &fakeDeleter{}
	inv := &fakeInvalidator{}
	c := New(d, inv)
	c.Open(apt(25), model.Customer{}, Anchor{}, 0)

	if err := c.DeleteOpen(context.Background(), "ck"); err != nil {
		t.Fatalf("DeleteOpen: %v", err)
	}
	if len(d.deleted) != 1 || d.deleted[0] != 25 {
		t.Fatalf("wrong delete calls: %v", d.deleted)
	}
	if len(inv.dates) != 1 || inv.dates[0] != "2025-08-01" {
		t.Fatalf("cache not invalidated for the affected date: %v", inv.dates)
	}
	if _, ok := c.Current(); ok {
		t.Fatalf("selection must close after a successful delete")
	}
}

func TestDeleteOpen_FailureKeepsSelectionOpen(t *testing.T) {
	d := &fakeDeleter{err: errors.New("boom")}
	inv := &fakeInvalidator{}
	c := New(d, inv)
	c.Open(apt(25), model.Customer{}, Anchor{}, 0)

	if err := c.DeleteOpen(context.Background(), "ck"); err == nil {
		t.Fatalf("expected delete error")
	}
	if _, ok := c.Current(); !ok {
		t.Fatalf("selection must stay open after a failed delete")
	}
	if len(inv.dates) != 0 {
		t.Fatalf("cache must not be invalidated before the delete succeeds")
	}
}

func TestDeleteOpen_NothingOpen(t *testing.T) {
	c := New(&fakeDeleter{}, &fakeInvalidator{})
	if err := c.DeleteOpen(context.Background(), "ck"); !errors.Is(err, ErrNothingOpen) {
		t.Fatalf("expected ErrNothingOpen, got %v", err)
	}
}
