package slotlock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestWithSlotSerializesSameSlot(t *testing.T) {
	gate := New(5 * time.Second)

	const workers = 50
	var counter int
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := gate.WithSlot(context.Background(), "slot-1", func() error {
				// Unprotected read-modify-write; only safe if the gate
				// actually serializes callers.
				v := counter
				time.Sleep(time.Microsecond)
				counter = v + 1
				return nil
			})
			if err != nil {
				t.Errorf("WithSlot returned error: %v", err)
			}
		}()
	}
	wg.Wait()

	if counter != workers {
		t.Errorf("expected counter %d, got %d", workers, counter)
	}
}

func TestWithSlotDifferentSlotsDoNotBlock(t *testing.T) {
	gate := New(100 * time.Millisecond)

	release := make(chan struct{})
	holding := make(chan struct{})

	go func() {
		_ = gate.WithSlot(context.Background(), "slot-a", func() error {
			close(holding)
			<-release
			return nil
		})
	}()

	<-holding
	defer close(release)

	// slot-b must acquire immediately even though slot-a is held
	done := make(chan error, 1)
	go func() {
		done <- gate.WithSlot(context.Background(), "slot-b", func() error { return nil })
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected slot-b to acquire, got error: %v", err)
		}
	case <-time.After(50 * time.Millisecond):
		t.Fatal("slot-b blocked behind slot-a")
	}
}

func TestWithSlotReturnsBusyOnTimeout(t *testing.T) {
	gate := New(20 * time.Millisecond)

	release := make(chan struct{})
	holding := make(chan struct{})

	go func() {
		_ = gate.WithSlot(context.Background(), "slot-1", func() error {
			close(holding)
			<-release
			return nil
		})
	}()

	<-holding
	defer close(release)

	err := gate.WithSlot(context.Background(), "slot-1", func() error {
		t.Error("fn must not run when the gate is busy")
		return nil
	})
	if !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}
}

func TestWithSlotRespectsContextCancellation(t *testing.T) {
	gate := New(10 * time.Second)

	release := make(chan struct{})
	holding := make(chan struct{})

	go func() {
		_ = gate.WithSlot(context.Background(), "slot-1", func() error {
			close(holding)
			<-release
			return nil
		})
	}()

	<-holding
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := gate.WithSlot(ctx, "slot-1", func() error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestWithSlotPropagatesFnError(t *testing.T) {
	gate := New(time.Second)
	want := errors.New("boom")

	err := gate.WithSlot(context.Background(), "slot-1", func() error { return want })
	if !errors.Is(err, want) {
		t.Errorf("expected fn error to propagate, got %v", err)
	}
}

func TestIdlePermitsAreReleased(t *testing.T) {
	gate := New(time.Second)

	for i := 0; i < 10; i++ {
		_ = gate.WithSlot(context.Background(), "slot-1", func() error { return nil })
	}

	gate.mu.Lock()
	n := len(gate.slots)
	gate.mu.Unlock()

	if n != 0 {
		t.Errorf("expected no retained permits, found %d", n)
	}
}
