package constants

import (
	"fmt"
	"time"
)

// Redis Cache Configuration
// Centralizes cache keys and TTL values for the Examly application.
// Pattern: examly:{module}:{operation}:{identifier}:{params?}

// ================== CACHE TTL DURATIONS ==================

const (
	TTL_STATIC_SHORT = 6 * time.Hour // user profiles

	TTL_SEMI_STATIC_SHORT = 1 * time.Hour    // slot calendar shape (dates with open slots)
	TTL_SEMI_STATIC_QUICK = 15 * time.Minute // per-day slot listings

	TTL_DYNAMIC_QUICK  = 2 * time.Minute  // slot availability listings
	TTL_REALTIME_SHORT = 30 * time.Second // live remaining-capacity reads
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "examly"
)

// ================== SLOTS MODULE ==================

const (
	CACHE_KEY_SLOTS_AVAILABLE_DATES = CACHE_PREFIX + ":slots:available_dates" // + :year:Y:month:M
	CACHE_KEY_SLOTS_DAY             = CACHE_PREFIX + ":slots:day"             // + :date:YYYY-MM-DD:available:bool
	CACHE_KEY_SLOT_DETAIL           = CACHE_PREFIX + ":slots:detail:uuid:"    // + slot-id
)

const (
	TTL_SLOTS_AVAILABLE_DATES = TTL_SEMI_STATIC_QUICK
	TTL_SLOTS_DAY             = TTL_DYNAMIC_QUICK
	TTL_SLOT_DETAIL           = TTL_REALTIME_SHORT
)

// ================== RESERVATIONS MODULE ==================

const (
	CACHE_KEY_USER_RESERVATIONS = CACHE_PREFIX + ":reservations:user:uuid:" // + user-id:page:X
)

// ================== CACHE INVALIDATION PATTERNS ==================

const (
	// Everything derived from slot capacity must go when capacity changes
	PATTERN_INVALIDATE_SLOTS_ALL = CACHE_PREFIX + ":slots:*"

	PATTERN_INVALIDATE_USER_RESERVATIONS = CACHE_PREFIX + ":reservations:user:*"
)

// ================== HELPER FUNCTIONS ==================

func BuildAvailableDatesKey(year, month int) string {
	return CACHE_KEY_SLOTS_AVAILABLE_DATES + fmt.Sprintf(":year:%d:month:%d", year, month)
}

func BuildDaySlotsKey(date string, availableOnly bool) string {
	return CACHE_KEY_SLOTS_DAY + fmt.Sprintf(":date:%s:available:%t", date, availableOnly)
}

func BuildSlotDetailKey(slotID string) string {
	return CACHE_KEY_SLOT_DETAIL + slotID
}
