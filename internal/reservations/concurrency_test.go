package reservations

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"examly/internal/slots"
	"examly/pkg/slotlock"

	"github.com/google/uuid"
)

// Concurrent confirmations against a capacity-2 slot: exactly two must
// win and capacity must never go past the limit.
func TestConcurrentConfirmsRespectCapacity(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	admin := adminActor()

	slot := bookableSlot(2)
	store.addSlot(slot)

	const contenders = 5
	ids := make([]uuid.UUID, contenders)
	for i := 0; i < contenders; i++ {
		resp, err := svc.CreateReservation(context.Background(), userActor(), CreateReservationRequest{
			SlotID:    slot.ID.String(),
			Headcount: 1,
		})
		if err != nil {
			t.Fatalf("create reservation %d: %v", i, err)
		}
		ids[i] = uuid.MustParse(resp.ID)
	}

	var wg sync.WaitGroup
	results := make(chan error, contenders)

	for _, id := range ids {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			_, err := svc.ConfirmReservation(context.Background(), admin, id)
			results <- err
		}(id)
	}
	wg.Wait()
	close(results)

	var confirmed, rejected int
	for err := range results {
		switch {
		case err == nil:
			confirmed++
		case errors.Is(err, ErrCapacityExceeded):
			rejected++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	if confirmed != 2 {
		t.Errorf("confirmed = %d, want exactly 2", confirmed)
	}
	if rejected != 3 {
		t.Errorf("rejected = %d, want 3", rejected)
	}
	if used := store.slotUsed(t, slot.ID); used != 2 {
		t.Errorf("capacity used = %d, want 2", used)
	}
}

// The same reservation confirmed from many goroutines must be charged
// exactly once.
func TestConcurrentConfirmsOfSameReservation(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	admin := adminActor()

	slot := bookableSlot(100)
	store.addSlot(slot)

	resp, err := svc.CreateReservation(context.Background(), userActor(), CreateReservationRequest{
		SlotID:    slot.ID.String(),
		Headcount: 7,
	})
	if err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}
	id := uuid.MustParse(resp.ID)

	const attempts = 20
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ConfirmReservation(context.Background(), admin, id)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrAlreadyConfirmed):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	if wins != 1 {
		t.Errorf("winning confirms = %d, want exactly 1", wins)
	}
	if used := store.slotUsed(t, slot.ID); used != 7 {
		t.Errorf("capacity used = %d, want 7 (charged once)", used)
	}
}

// Interleaved confirms and capacity-releasing deletes must keep
// 0 <= capacity_used <= max_capacity at all times.
func TestConcurrentConfirmAndDeleteInvariant(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	admin := adminActor()

	slot := bookableSlot(10)
	store.addSlot(slot)

	const rounds = 30
	ids := make([]uuid.UUID, rounds)
	for i := 0; i < rounds; i++ {
		resp, err := svc.CreateReservation(context.Background(), userActor(), CreateReservationRequest{
			SlotID:    slot.ID.String(),
			Headcount: 1,
		})
		if err != nil {
			t.Fatalf("create reservation %d: %v", i, err)
		}
		ids[i] = uuid.MustParse(resp.ID)
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			if _, err := svc.ConfirmReservation(context.Background(), admin, id); err != nil {
				return
			}
			// Give it straight back
			_ = svc.DeleteReservation(context.Background(), admin, id)
		}(id)
	}
	wg.Wait()

	used := store.slotUsed(t, slot.ID)
	if used < 0 || used > 10 {
		t.Errorf("capacity used = %d, out of [0, 10]", used)
	}
	if used != 0 {
		t.Errorf("capacity used = %d after all confirms were released, want 0", used)
	}
}

// Confirms against distinct slots must not serialize on one another.
func TestConfirmsOnDifferentSlotsRunIndependently(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	admin := adminActor()

	const slotCount = 8
	ids := make([]uuid.UUID, slotCount)
	slotIDs := make([]uuid.UUID, slotCount)
	for i := 0; i < slotCount; i++ {
		slot := bookableSlot(5)
		store.addSlot(slot)
		slotIDs[i] = slot.ID

		resp, err := svc.CreateReservation(context.Background(), userActor(), CreateReservationRequest{
			SlotID:    slot.ID.String(),
			Headcount: 2,
		})
		if err != nil {
			t.Fatalf("create reservation %d: %v", i, err)
		}
		ids[i] = uuid.MustParse(resp.ID)
	}

	var wg sync.WaitGroup
	errs := make(chan error, slotCount)
	for _, id := range ids {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			_, err := svc.ConfirmReservation(context.Background(), admin, id)
			errs <- err
		}(id)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("confirm failed: %v", err)
		}
	}
	for _, slotID := range slotIDs {
		if used := store.slotUsed(t, slotID); used != 2 {
			t.Errorf("slot %s capacity used = %d, want 2", slotID, used)
		}
	}
}

// A slow transaction holding the gate pushes contenders into the busy
// path instead of letting them wait forever.
func TestConfirmReturnsBusyUnderContention(t *testing.T) {
	store := newFakeStore()

	slot := bookableSlot(10)
	store.addSlot(slot)

	// Tiny wait budget so the second caller gives up quickly
	gate := slotlock.New(20 * time.Millisecond)
	svc := NewService(&slowStore{fakeStore: store, delay: 200 * time.Millisecond}, store, gate, Settings{
		NoticeWindow: 72 * time.Hour,
	})
	admin := adminActor()

	first, err := svc.CreateReservation(context.Background(), userActor(), CreateReservationRequest{
		SlotID:    slot.ID.String(),
		Headcount: 1,
	})
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := svc.CreateReservation(context.Background(), userActor(), CreateReservationRequest{
		SlotID:    slot.ID.String(),
		Headcount: 1,
	})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	started := make(chan struct{})
	done := make(chan struct{})
	go func() {
		close(started)
		_, _ = svc.ConfirmReservation(context.Background(), admin, uuid.MustParse(first.ID))
		close(done)
	}()

	<-started
	time.Sleep(50 * time.Millisecond) // let the slow confirm take the gate

	_, err = svc.ConfirmReservation(context.Background(), admin, uuid.MustParse(second.ID))
	if !errors.Is(err, ErrSlotBusy) {
		t.Errorf("contending confirm: got %v, want ErrSlotBusy", err)
	}
	<-done
}

// slowStore delays capacity-coupled transitions to simulate a slow
// transaction holding the per-slot gate.
type slowStore struct {
	*fakeStore
	delay time.Duration
}

func (s *slowStore) ConfirmWithCapacityCheck(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	time.Sleep(s.delay)
	return s.fakeStore.ConfirmWithCapacityCheck(ctx, id)
}

func (s *slowStore) GetSlot(id uuid.UUID) (*slots.Slot, error) {
	return s.fakeStore.GetSlot(id)
}
