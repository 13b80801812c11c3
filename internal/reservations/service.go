package reservations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"examly/internal/shared/constants"
	"examly/internal/slots"
	"examly/pkg/cache"
	"examly/pkg/slotlock"

	"github.com/google/uuid"
)

type Service interface {
	SetCacheService(cacheService cache.Service)
	SetEventPublisher(publisher EventPublisher)

	CreateReservation(ctx context.Context, actor Actor, req CreateReservationRequest) (*ReservationResponse, error)
	GetReservation(ctx context.Context, actor Actor, id uuid.UUID) (*ReservationResponse, error)
	GetUserReservations(ctx context.Context, actor Actor, query ReservationListQuery) (*PaginatedReservations, error)
	GetAllReservations(ctx context.Context, query ReservationListQuery) (*PaginatedReservations, error)
	UpdateReservation(ctx context.Context, actor Actor, id uuid.UUID, req UpdateReservationRequest) (*ReservationResponse, error)
	DeleteReservation(ctx context.Context, actor Actor, id uuid.UUID) error
	ConfirmReservation(ctx context.Context, actor Actor, id uuid.UUID) (*ReservationResponse, error)
}

// SlotService is the slice of the slots feature this service needs.
type SlotService interface {
	GetSlot(id uuid.UUID) (*slots.Slot, error)
}

// LifecycleEvent describes a reservation state change for downstream
// consumers (audit, analytics, capacity dashboards).
type LifecycleEvent struct {
	Type          string    `json:"type"`
	ReservationID string    `json:"reservation_id"`
	UserID        string    `json:"user_id"`
	SlotID        string    `json:"slot_id"`
	Headcount     int       `json:"headcount"`
	Status        string    `json:"status"`
	OccurredAt    time.Time `json:"occurred_at"`
}

const (
	EventReservationCreated   = "reservation.created"
	EventReservationUpdated   = "reservation.updated"
	EventReservationConfirmed = "reservation.confirmed"
	EventReservationDeleted   = "reservation.deleted"
)

// EventPublisher pushes lifecycle events onto the message bus.
type EventPublisher interface {
	PublishLifecycle(ctx context.Context, event LifecycleEvent) error
}

// Settings carries the booking rules the service enforces.
type Settings struct {
	NoticeWindow time.Duration
	Location     *time.Location
}

type service struct {
	repo         Repository
	slotService  SlotService
	gate         *slotlock.Gate
	settings     Settings
	cacheService cache.Service
	publisher    EventPublisher
}

func NewService(repo Repository, slotService SlotService, gate *slotlock.Gate, settings Settings) Service {
	return &service{
		repo:        repo,
		slotService: slotService,
		gate:        gate,
		settings:    settings,
	}
}

// SetCacheService injects the cache service dependency
func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

// SetEventPublisher injects the lifecycle event publisher
func (s *service) SetEventPublisher(publisher EventPublisher) {
	s.publisher = publisher
}

func (s *service) CreateReservation(ctx context.Context, actor Actor, req CreateReservationRequest) (*ReservationResponse, error) {
	slotID, err := uuid.Parse(req.SlotID)
	if err != nil {
		return nil, fmt.Errorf("invalid slot id: %w", err)
	}

	if req.Headcount <= 0 {
		return nil, ErrInvalidHeadcount
	}

	slot, err := s.slotService.GetSlot(slotID)
	if err != nil {
		return nil, err
	}

	if !slot.IsBookable(time.Now(), s.settings.NoticeWindow) {
		return nil, ErrWindowClosed
	}

	// A pending reservation holds no capacity, but one that could never
	// be confirmed is rejected up front.
	if req.Headcount > slot.RemainingCapacity() {
		return nil, ErrCapacityExceeded
	}

	reservation := &Reservation{
		UserID:    actor.ID,
		SlotID:    slotID,
		Headcount: req.Headcount,
		Status:    StatusPending,
	}

	if err := s.repo.Create(ctx, reservation); err != nil {
		return nil, err
	}

	s.invalidateUserReservationCache(ctx)
	s.publish(EventReservationCreated, reservation)

	reservation.Slot = *slot
	resp := reservation.ToResponse()
	return &resp, nil
}

func (s *service) GetReservation(ctx context.Context, actor Actor, id uuid.UUID) (*ReservationResponse, error) {
	reservation, err := s.repo.GetByIDWithSlot(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := Authorize(actor, reservation, ActionView); err != nil {
		return nil, err
	}

	resp := reservation.ToResponse()
	return &resp, nil
}

func (s *service) GetUserReservations(ctx context.Context, actor Actor, query ReservationListQuery) (*PaginatedReservations, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	cacheKey := fmt.Sprintf("%s%s:page:%d:limit:%d:status:%s",
		constants.CACHE_KEY_USER_RESERVATIONS, actor.ID, query.Page, query.Limit, query.Status)

	var cached PaginatedReservations
	if err := s.getCache(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	list, totalCount, err := s.repo.GetUserReservations(ctx, actor.ID, query)
	if err != nil {
		return nil, err
	}

	result := s.toPage(list, totalCount, query)
	s.setCache(ctx, cacheKey, result, constants.TTL_DYNAMIC_QUICK)

	return result, nil
}

func (s *service) GetAllReservations(ctx context.Context, query ReservationListQuery) (*PaginatedReservations, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}
	if err := s.resolveDateRange(&query); err != nil {
		return nil, err
	}

	list, totalCount, err := s.repo.GetAllReservations(ctx, query)
	if err != nil {
		return nil, err
	}

	return s.toPage(list, totalCount, query), nil
}

func (s *service) UpdateReservation(ctx context.Context, actor Actor, id uuid.UUID, req UpdateReservationRequest) (*ReservationResponse, error) {
	reservation, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := Authorize(actor, reservation, ActionModify); err != nil {
		return nil, err
	}

	// Confirmed reservations are frozen; capacity was already charged
	if !reservation.Status.CanBeModified() {
		return nil, ErrNotPending
	}

	updates := make(map[string]interface{})

	targetSlotID := reservation.SlotID
	if req.SlotID != nil {
		newSlotID, err := uuid.Parse(*req.SlotID)
		if err != nil {
			return nil, fmt.Errorf("invalid slot id: %w", err)
		}
		targetSlotID = newSlotID
		updates["slot_id"] = newSlotID
	}

	targetHeadcount := reservation.Headcount
	if req.Headcount != nil {
		if *req.Headcount <= 0 {
			return nil, ErrInvalidHeadcount
		}
		targetHeadcount = *req.Headcount
		updates["headcount"] = *req.Headcount
	}

	if len(updates) == 0 {
		resp := reservation.ToResponse()
		return &resp, nil
	}

	// Re-validate against the target slot, whether or not it changed
	slot, err := s.slotService.GetSlot(targetSlotID)
	if err != nil {
		return nil, err
	}
	if !slot.IsBookable(time.Now(), s.settings.NoticeWindow) {
		return nil, ErrWindowClosed
	}
	if targetHeadcount > slot.RemainingCapacity() {
		return nil, ErrCapacityExceeded
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, err
	}

	updated, err := s.repo.GetByIDWithSlot(ctx, id)
	if err != nil {
		return nil, err
	}

	s.invalidateUserReservationCache(ctx)
	s.publish(EventReservationUpdated, updated)

	resp := updated.ToResponse()
	return &resp, nil
}

func (s *service) DeleteReservation(ctx context.Context, actor Actor, id uuid.UUID) error {
	reservation, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := Authorize(actor, reservation, ActionDelete); err != nil {
		return err
	}

	// Owners can only withdraw while pending; admins may also remove
	// confirmed reservations, which hands capacity back to the slot.
	if !actor.IsAdmin() && !reservation.Status.CanBeModified() {
		return ErrAlreadyConfirmed
	}

	err = s.gate.WithSlot(ctx, reservation.SlotID.String(), func() error {
		return s.repo.DeleteWithCapacityRelease(ctx, id)
	})
	if err != nil {
		if errors.Is(err, slotlock.ErrBusy) {
			return ErrSlotBusy
		}
		return err
	}

	s.invalidateSlotCache(ctx)
	s.invalidateUserReservationCache(ctx)
	s.publish(EventReservationDeleted, reservation)

	return nil
}

func (s *service) ConfirmReservation(ctx context.Context, actor Actor, id uuid.UUID) (*ReservationResponse, error) {
	reservation, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := Authorize(actor, reservation, ActionConfirm); err != nil {
		return nil, err
	}

	var confirmed *Reservation
	err = s.gate.WithSlot(ctx, reservation.SlotID.String(), func() error {
		var txErr error
		confirmed, txErr = s.repo.ConfirmWithCapacityCheck(ctx, id)
		return txErr
	})
	if err != nil {
		if errors.Is(err, slotlock.ErrBusy) {
			return nil, ErrSlotBusy
		}
		return nil, err
	}

	s.invalidateSlotCache(ctx)
	s.invalidateUserReservationCache(ctx)
	s.publish(EventReservationConfirmed, confirmed)

	resp := confirmed.ToResponse()
	return &resp, nil
}

// resolveDateRange turns the From/To exam days into [FromTime, ToTime)
// bounds in the event timezone; To is inclusive of its whole day.
func (s *service) resolveDateRange(query *ReservationListQuery) error {
	loc := s.settings.Location
	if loc == nil {
		loc = time.UTC
	}

	if query.From != "" {
		from, err := time.ParseInLocation("2006-01-02", query.From, loc)
		if err != nil {
			return fmt.Errorf("%w: invalid from date, expected YYYY-MM-DD", slots.ErrInvalidWindow)
		}
		query.FromTime = &from
	}
	if query.To != "" {
		to, err := time.ParseInLocation("2006-01-02", query.To, loc)
		if err != nil {
			return fmt.Errorf("%w: invalid to date, expected YYYY-MM-DD", slots.ErrInvalidWindow)
		}
		end := to.AddDate(0, 0, 1)
		query.ToTime = &end
	}
	return nil
}

func (s *service) toPage(list []Reservation, totalCount int64, query ReservationListQuery) *PaginatedReservations {
	responses := make([]ReservationResponse, len(list))
	for i, reservation := range list {
		responses[i] = reservation.ToResponse()
	}

	return &PaginatedReservations{
		Reservations: responses,
		TotalCount:   totalCount,
		Page:         query.Page,
		Limit:        query.Limit,
		TotalPages:   CalculateTotalPages(totalCount, query.Limit),
	}
}

// publish hands a lifecycle event to the bus without blocking the request
func (s *service) publish(eventType string, reservation *Reservation) {
	if s.publisher == nil {
		return
	}

	event := LifecycleEvent{
		Type:          eventType,
		ReservationID: reservation.ID.String(),
		UserID:        reservation.UserID.String(),
		SlotID:        reservation.SlotID.String(),
		Headcount:     reservation.Headcount,
		Status:        reservation.Status.String(),
		OccurredAt:    time.Now(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.publisher.PublishLifecycle(ctx, event)
	}()
}

// Cache helpers
func (s *service) getCache(ctx context.Context, key string, dest interface{}) error {
	if s.cacheService == nil {
		return fmt.Errorf("cache service not available")
	}
	return s.cacheService.Get(ctx, key, dest)
}

func (s *service) setCache(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if s.cacheService == nil {
		return
	}
	_ = s.cacheService.Set(ctx, key, value, ttl)
}

func (s *service) invalidateUserReservationCache(ctx context.Context) {
	if s.cacheService == nil {
		return
	}
	_ = s.cacheService.DeletePattern(ctx, constants.PATTERN_INVALIDATE_USER_RESERVATIONS)
}

func (s *service) invalidateSlotCache(ctx context.Context) {
	if s.cacheService == nil {
		return
	}
	_ = s.cacheService.DeletePattern(ctx, constants.PATTERN_INVALIDATE_SLOTS_ALL)
}
