package slots

import (
	"context"
	"fmt"
	"time"

	"examly/internal/shared/constants"
	"examly/pkg/cache"

	"github.com/google/uuid"
)

type Service interface {
	SetCacheService(cacheService cache.Service)

	CreateSlot(req CreateSlotRequest) (*SlotResponse, error)
	GenerateCalendar(req GenerateCalendarRequest) (int64, error)
	GetSlotByID(id uuid.UUID) (*SlotResponse, error)
	GetDaySlots(query DaySlotsQuery) ([]SlotResponse, error)
	GetAvailableDates(query AvailableDatesQuery) ([]DateAvailability, error)
	DeleteSlot(id uuid.UUID) error

	// GetSlot returns the raw model for other feature services
	GetSlot(id uuid.UUID) (*Slot, error)
}

// Settings carries the calendar defaults the service validates against.
type Settings struct {
	DefaultCapacity int
	SlotDuration    time.Duration
	Location        *time.Location
}

type service struct {
	repo         Repository
	settings     Settings
	cacheService cache.Service
}

func NewService(repo Repository, settings Settings) Service {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	return &service{
		repo:     repo,
		settings: settings,
	}
}

// SetCacheService injects the cache service dependency
func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

// Cache helper methods
func (s *service) setCache(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if s.cacheService == nil {
		return
	}
	_ = s.cacheService.Set(ctx, key, value, ttl)
}

func (s *service) getCache(ctx context.Context, key string, dest interface{}) error {
	if s.cacheService == nil {
		return fmt.Errorf("cache service not available")
	}
	return s.cacheService.Get(ctx, key, dest)
}

func (s *service) invalidateSlotCache(ctx context.Context) {
	if s.cacheService == nil {
		return
	}
	_ = s.cacheService.DeletePattern(ctx, constants.PATTERN_INVALIDATE_SLOTS_ALL)
}

func (s *service) CreateSlot(req CreateSlotRequest) (*SlotResponse, error) {
	if req.EndTime.Sub(req.StartTime) != s.settings.SlotDuration {
		return nil, fmt.Errorf("%w: slot must be exactly %s long", ErrInvalidWindow, s.settings.SlotDuration)
	}
	if !req.StartTime.Truncate(s.settings.SlotDuration).Equal(req.StartTime) {
		return nil, fmt.Errorf("%w: start time must align to the %s grid", ErrInvalidWindow, s.settings.SlotDuration)
	}

	capacity := req.MaxCapacity
	if capacity == 0 {
		capacity = s.settings.DefaultCapacity
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("max capacity must be positive")
	}

	slot := &Slot{
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		MaxCapacity: capacity,
	}

	if err := s.repo.Create(slot); err != nil {
		return nil, err
	}

	s.invalidateSlotCache(context.Background())

	resp := slot.ToResponse()
	return &resp, nil
}

func (s *service) GenerateCalendar(req GenerateCalendarRequest) (int64, error) {
	startDate, err := time.ParseInLocation("2006-01-02", req.StartDate, s.settings.Location)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid start date", ErrInvalidWindow)
	}
	endDate, err := time.ParseInLocation("2006-01-02", req.EndDate, s.settings.Location)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid end date", ErrInvalidWindow)
	}

	spec := CalendarSpec{
		StartDate:   startDate,
		EndDate:     endDate,
		StartHour:   req.StartHour,
		EndHour:     req.EndHour,
		Duration:    s.settings.SlotDuration,
		MaxCapacity: req.MaxCapacity,
	}
	if spec.StartHour == 0 && spec.EndHour == 0 {
		// Default to full-day grid
		spec.EndHour = 24
	}
	if spec.MaxCapacity == 0 {
		spec.MaxCapacity = s.settings.DefaultCapacity
	}

	grid, err := BuildCalendar(spec)
	if err != nil {
		return 0, err
	}

	inserted, err := s.repo.CreateBatch(grid)
	if err != nil {
		return 0, err
	}

	if inserted > 0 {
		s.invalidateSlotCache(context.Background())
	}

	return inserted, nil
}

func (s *service) GetSlotByID(id uuid.UUID) (*SlotResponse, error) {
	ctx := context.Background()
	cacheKey := constants.BuildSlotDetailKey(id.String())

	var cached SlotResponse
	if err := s.getCache(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	slot, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	resp := slot.ToResponse()
	s.setCache(ctx, cacheKey, resp, constants.TTL_SLOT_DETAIL)

	return &resp, nil
}

func (s *service) GetSlot(id uuid.UUID) (*Slot, error) {
	return s.repo.GetByID(id)
}

func (s *service) GetDaySlots(query DaySlotsQuery) ([]SlotResponse, error) {
	dayStart, err := time.ParseInLocation("2006-01-02", query.Date, s.settings.Location)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date format, expected YYYY-MM-DD", ErrInvalidWindow)
	}
	dayEnd := dayStart.AddDate(0, 0, 1)

	ctx := context.Background()
	cacheKey := constants.BuildDaySlotsKey(query.Date, query.AvailableOnly)

	var cached []SlotResponse
	if err := s.getCache(ctx, cacheKey, &cached); err == nil {
		return cached, nil
	}

	daySlots, err := s.repo.GetByDay(dayStart, dayEnd, query.AvailableOnly)
	if err != nil {
		return nil, err
	}

	responses := make([]SlotResponse, len(daySlots))
	for i, slot := range daySlots {
		responses[i] = slot.ToResponse()
	}

	s.setCache(ctx, cacheKey, responses, constants.TTL_SLOTS_DAY)

	return responses, nil
}

func (s *service) GetAvailableDates(query AvailableDatesQuery) ([]DateAvailability, error) {
	rangeStart := time.Date(query.Year, time.Month(query.Month), 1, 0, 0, 0, 0, s.settings.Location)
	rangeEnd := rangeStart.AddDate(0, 1, 0)

	ctx := context.Background()
	cacheKey := constants.BuildAvailableDatesKey(query.Year, query.Month)

	var cached []DateAvailability
	if err := s.getCache(ctx, cacheKey, &cached); err == nil {
		return cached, nil
	}

	dates, err := s.repo.GetAvailableDates(rangeStart, rangeEnd, s.settings.Location)
	if err != nil {
		return nil, err
	}

	s.setCache(ctx, cacheKey, dates, constants.TTL_SLOTS_AVAILABLE_DATES)

	return dates, nil
}

func (s *service) DeleteSlot(id uuid.UUID) error {
	if err := s.repo.Delete(id); err != nil {
		return err
	}

	s.invalidateSlotCache(context.Background())
	return nil
}
