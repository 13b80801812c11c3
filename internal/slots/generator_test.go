package slots

import (
	"errors"
	"testing"
	"time"
)

func kst(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func TestBuildCalendarFullDayGrid(t *testing.T) {
	loc := kst(t)
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, loc)

	grid, err := BuildCalendar(CalendarSpec{
		StartDate:   day,
		EndDate:     day,
		StartHour:   0,
		EndHour:     24,
		Duration:    30 * time.Minute,
		MaxCapacity: 50000,
	})
	if err != nil {
		t.Fatalf("BuildCalendar: %v", err)
	}

	if len(grid) != 48 {
		t.Errorf("expected 48 slots for a full day, got %d", len(grid))
	}

	first := grid[0]
	if !first.StartTime.Equal(day) {
		t.Errorf("first slot starts at %v, want %v", first.StartTime, day)
	}
	if got := first.EndTime.Sub(first.StartTime); got != 30*time.Minute {
		t.Errorf("slot duration %v, want 30m", got)
	}

	last := grid[len(grid)-1]
	wantLastStart := day.Add(23*time.Hour + 30*time.Minute)
	if !last.StartTime.Equal(wantLastStart) {
		t.Errorf("last slot starts at %v, want %v", last.StartTime, wantLastStart)
	}
}

func TestBuildCalendarBusinessHours(t *testing.T) {
	loc := kst(t)
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, loc)

	grid, err := BuildCalendar(CalendarSpec{
		StartDate:   day,
		EndDate:     day,
		StartHour:   9,
		EndHour:     18,
		Duration:    30 * time.Minute,
		MaxCapacity: 100,
	})
	if err != nil {
		t.Fatalf("BuildCalendar: %v", err)
	}

	// 9 hours of 30-minute slots
	if len(grid) != 18 {
		t.Errorf("expected 18 slots, got %d", len(grid))
	}

	for _, slot := range grid {
		if slot.StartTime.Hour() < 9 {
			t.Errorf("slot %v starts before opening hour", slot.StartTime)
		}
		if slot.EndTime.After(day.Add(18 * time.Hour)) {
			t.Errorf("slot ending %v crosses closing hour", slot.EndTime)
		}
		if slot.MaxCapacity != 100 {
			t.Errorf("slot capacity %d, want 100", slot.MaxCapacity)
		}
	}
}

func TestBuildCalendarMultipleDays(t *testing.T) {
	loc := kst(t)
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, loc)
	end := time.Date(2026, 9, 3, 0, 0, 0, 0, loc)

	grid, err := BuildCalendar(CalendarSpec{
		StartDate:   start,
		EndDate:     end,
		StartHour:   10,
		EndHour:     12,
		Duration:    30 * time.Minute,
		MaxCapacity: 50,
	})
	if err != nil {
		t.Fatalf("BuildCalendar: %v", err)
	}

	// 3 days x 4 slots
	if len(grid) != 12 {
		t.Errorf("expected 12 slots across 3 days, got %d", len(grid))
	}
}

func TestBuildCalendarRejectsInvalidSpecs(t *testing.T) {
	loc := kst(t)
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, loc)

	tests := []struct {
		name string
		spec CalendarSpec
	}{
		{
			name: "end date before start date",
			spec: CalendarSpec{StartDate: day, EndDate: day.AddDate(0, 0, -1), StartHour: 9, EndHour: 18, Duration: 30 * time.Minute, MaxCapacity: 10},
		},
		{
			name: "start hour after end hour",
			spec: CalendarSpec{StartDate: day, EndDate: day, StartHour: 18, EndHour: 9, Duration: 30 * time.Minute, MaxCapacity: 10},
		},
		{
			name: "zero duration",
			spec: CalendarSpec{StartDate: day, EndDate: day, StartHour: 9, EndHour: 18, Duration: 0, MaxCapacity: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := BuildCalendar(tt.spec); !errors.Is(err, ErrInvalidWindow) {
				t.Errorf("expected ErrInvalidWindow, got %v", err)
			}
		})
	}
}

func TestSlotRemainingCapacity(t *testing.T) {
	slot := Slot{MaxCapacity: 100, CapacityUsed: 30}
	if got := slot.RemainingCapacity(); got != 70 {
		t.Errorf("remaining = %d, want 70", got)
	}

	full := Slot{MaxCapacity: 100, CapacityUsed: 100}
	if got := full.RemainingCapacity(); got != 0 {
		t.Errorf("remaining = %d, want 0", got)
	}
}

func TestSlotIsBookableStrictBoundary(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	notice := 72 * time.Hour

	tests := []struct {
		name  string
		start time.Time
		want  bool
	}{
		{"well inside window", now.Add(100 * time.Hour), true},
		{"one second past boundary", now.Add(notice + time.Second), true},
		{"exactly at boundary", now.Add(notice), false},
		{"one second short", now.Add(notice - time.Second), false},
		{"in the past", now.Add(-time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot := Slot{StartTime: tt.start}
			if got := slot.IsBookable(now, notice); got != tt.want {
				t.Errorf("IsBookable = %v, want %v", got, tt.want)
			}
		})
	}
}
