package slots

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

// fakeRepository is an in-memory Repository for service tests.
type fakeRepository struct {
	mu    sync.Mutex
	byID  map[uuid.UUID]*Slot
	byKey map[int64]uuid.UUID // start_time unix -> id
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		byID:  make(map[uuid.UUID]*Slot),
		byKey: make(map[int64]uuid.UUID),
	}
}

func (f *fakeRepository) Create(slot *Slot) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.byKey[slot.StartTime.Unix()]; exists {
		return ErrDuplicateSlot
	}
	if slot.ID == uuid.Nil {
		slot.ID = uuid.New()
	}
	cp := *slot
	f.byID[slot.ID] = &cp
	f.byKey[slot.StartTime.Unix()] = slot.ID
	return nil
}

func (f *fakeRepository) CreateBatch(batch []Slot) (int64, error) {
	var inserted int64
	for i := range batch {
		if err := f.Create(&batch[i]); err == nil {
			inserted++
		}
	}
	return inserted, nil
}

func (f *fakeRepository) GetByID(id uuid.UUID) (*Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	slot, ok := f.byID[id]
	if !ok {
		return nil, ErrSlotNotFound
	}
	cp := *slot
	return &cp, nil
}

func (f *fakeRepository) GetByDay(dayStart, dayEnd time.Time, availableOnly bool) ([]Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []Slot
	for _, slot := range f.byID {
		if slot.StartTime.Before(dayStart) || !slot.StartTime.Before(dayEnd) {
			continue
		}
		if availableOnly && slot.CapacityUsed >= slot.MaxCapacity {
			continue
		}
		out = append(out, *slot)
	}
	return out, nil
}

func (f *fakeRepository) GetAvailableDates(rangeStart, rangeEnd time.Time, location *time.Location) ([]DateAvailability, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	counts := make(map[string]int)
	for _, slot := range f.byID {
		if slot.StartTime.Before(rangeStart) || !slot.StartTime.Before(rangeEnd) {
			continue
		}
		if slot.CapacityUsed >= slot.MaxCapacity {
			continue
		}
		counts[slot.StartTime.In(location).Format("2006-01-02")]++
	}

	var out []DateAvailability
	for date, n := range counts {
		out = append(out, DateAvailability{Date: date, AvailableSlots: n})
	}
	return out, nil
}

func (f *fakeRepository) Delete(id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	slot, ok := f.byID[id]
	if !ok {
		return ErrSlotNotFound
	}
	delete(f.byKey, slot.StartTime.Unix())
	delete(f.byID, id)
	return nil
}

func newTestService(t *testing.T) (Service, *fakeRepository) {
	t.Helper()
	repo := newFakeRepository()
	svc := NewService(repo, Settings{
		DefaultCapacity: 50000,
		SlotDuration:    30 * time.Minute,
		Location:        kst(t),
	})
	return svc, repo
}

func TestCreateSlotDefaultsCapacity(t *testing.T) {
	svc, _ := newTestService(t)

	start := time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC)
	resp, err := svc.CreateSlot(CreateSlotRequest{
		StartTime: start,
		EndTime:   start.Add(30 * time.Minute),
	})
	if err != nil {
		t.Fatalf("CreateSlot: %v", err)
	}

	if resp.MaxCapacity != 50000 {
		t.Errorf("max capacity = %d, want default 50000", resp.MaxCapacity)
	}
	if resp.RemainingCapacity != 50000 {
		t.Errorf("remaining = %d, want 50000", resp.RemainingCapacity)
	}
}

func TestCreateSlotRejectsInvertedWindow(t *testing.T) {
	svc, _ := newTestService(t)

	start := time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC)
	_, err := svc.CreateSlot(CreateSlotRequest{
		StartTime: start,
		EndTime:   start.Add(-30 * time.Minute),
	})
	if !errors.Is(err, ErrInvalidWindow) {
		t.Errorf("expected ErrInvalidWindow, got %v", err)
	}
}

func TestCreateSlotRejectsOffGridWindows(t *testing.T) {
	svc, _ := newTestService(t)

	cases := []struct {
		name  string
		start time.Time
		end   time.Time
	}{
		{"wrong duration", time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC), time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC)},
		{"misaligned start", time.Date(2026, 9, 10, 9, 10, 0, 0, time.UTC), time.Date(2026, 9, 10, 9, 40, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateSlot(CreateSlotRequest{StartTime: tc.start, EndTime: tc.end})
			if !errors.Is(err, ErrInvalidWindow) {
				t.Errorf("expected ErrInvalidWindow, got %v", err)
			}
		})
	}
}

func TestCreateSlotDuplicateStartTime(t *testing.T) {
	svc, _ := newTestService(t)

	start := time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC)
	req := CreateSlotRequest{StartTime: start, EndTime: start.Add(30 * time.Minute)}

	if _, err := svc.CreateSlot(req); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := svc.CreateSlot(req); !errors.Is(err, ErrDuplicateSlot) {
		t.Errorf("expected ErrDuplicateSlot, got %v", err)
	}
}

func TestGenerateCalendarSkipsExistingPositions(t *testing.T) {
	svc, repo := newTestService(t)

	req := GenerateCalendarRequest{
		StartDate: "2026-09-10",
		EndDate:   "2026-09-10",
		StartHour: 9,
		EndHour:   11,
	}

	inserted, err := svc.GenerateCalendar(req)
	if err != nil {
		t.Fatalf("GenerateCalendar: %v", err)
	}
	if inserted != 4 {
		t.Errorf("first run inserted %d, want 4", inserted)
	}

	// Second run over the same range must be a no-op
	inserted, err = svc.GenerateCalendar(req)
	if err != nil {
		t.Fatalf("GenerateCalendar second run: %v", err)
	}
	if inserted != 0 {
		t.Errorf("second run inserted %d, want 0", inserted)
	}

	if len(repo.byID) != 4 {
		t.Errorf("repository holds %d slots, want 4", len(repo.byID))
	}
}

func TestGenerateCalendarRejectsBadDates(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GenerateCalendar(GenerateCalendarRequest{
		StartDate: "not-a-date",
		EndDate:   "2026-09-10",
	})
	if !errors.Is(err, ErrInvalidWindow) {
		t.Errorf("expected ErrInvalidWindow, got %v", err)
	}
}

func TestGetDaySlotsFiltersAvailability(t *testing.T) {
	svc, repo := newTestService(t)
	loc := kst(t)

	open := Slot{ID: uuid.New(), StartTime: time.Date(2026, 9, 10, 9, 0, 0, 0, loc), EndTime: time.Date(2026, 9, 10, 9, 30, 0, 0, loc), MaxCapacity: 10, CapacityUsed: 3}
	full := Slot{ID: uuid.New(), StartTime: time.Date(2026, 9, 10, 10, 0, 0, 0, loc), EndTime: time.Date(2026, 9, 10, 10, 30, 0, 0, loc), MaxCapacity: 10, CapacityUsed: 10}
	otherDay := Slot{ID: uuid.New(), StartTime: time.Date(2026, 9, 11, 9, 0, 0, 0, loc), EndTime: time.Date(2026, 9, 11, 9, 30, 0, 0, loc), MaxCapacity: 10}

	for _, s := range []Slot{open, full, otherDay} {
		cp := s
		if err := repo.Create(&cp); err != nil {
			t.Fatalf("seed slot: %v", err)
		}
	}

	all, err := svc.GetDaySlots(DaySlotsQuery{Date: "2026-09-10"})
	if err != nil {
		t.Fatalf("GetDaySlots: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("day listing returned %d slots, want 2", len(all))
	}

	available, err := svc.GetDaySlots(DaySlotsQuery{Date: "2026-09-10", AvailableOnly: true})
	if err != nil {
		t.Fatalf("GetDaySlots available only: %v", err)
	}
	if len(available) != 1 {
		t.Fatalf("available listing returned %d slots, want 1", len(available))
	}
	if available[0].ID != open.ID.String() {
		t.Errorf("available listing returned slot %s, want %s", available[0].ID, open.ID)
	}
}

func TestGetSlotByIDNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetSlotByID(uuid.New())
	if !errors.Is(err, ErrSlotNotFound) {
		t.Errorf("expected ErrSlotNotFound, got %v", err)
	}
}

func TestGetAvailableDatesOnlyCountsOpenSlots(t *testing.T) {
	svc, repo := newTestService(t)
	loc := kst(t)

	slots := []Slot{
		{StartTime: time.Date(2026, 9, 10, 9, 0, 0, 0, loc), EndTime: time.Date(2026, 9, 10, 9, 30, 0, 0, loc), MaxCapacity: 10},
		{StartTime: time.Date(2026, 9, 10, 10, 0, 0, 0, loc), EndTime: time.Date(2026, 9, 10, 10, 30, 0, 0, loc), MaxCapacity: 10},
		{StartTime: time.Date(2026, 9, 12, 9, 0, 0, 0, loc), EndTime: time.Date(2026, 9, 12, 9, 30, 0, 0, loc), MaxCapacity: 10, CapacityUsed: 10},
	}
	for i := range slots {
		if err := repo.Create(&slots[i]); err != nil {
			t.Fatalf("seed slot: %v", err)
		}
	}

	dates, err := svc.GetAvailableDates(AvailableDatesQuery{Year: 2026, Month: 9})
	if err != nil {
		t.Fatalf("GetAvailableDates: %v", err)
	}

	if len(dates) != 1 {
		t.Fatalf("returned %d dates, want 1", len(dates))
	}
	if dates[0].Date != "2026-09-10" || dates[0].AvailableSlots != 2 {
		t.Errorf("got %+v, want 2026-09-10 with 2 slots", dates[0])
	}
}
