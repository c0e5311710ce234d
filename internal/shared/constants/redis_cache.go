package constants

import (
	"fmt"
	"time"
)

// Redis Cache Configuration
// Pattern: parkly:{module}:{operation}:{identifier}:{params?}

// ================== CACHE TTL DURATIONS ==================

// Static Data (Long TTL: rarely changes)
const (
	TTL_STATIC_LONG  = 24 * time.Hour // 24 hours - for location details
	TTL_STATIC_SHORT = 6 * time.Hour  // 6 hours - for user profiles
)

// Semi-Static Data (Medium TTL: changes occasionally)
const (
	TTL_SEMI_STATIC_SHORT = 1 * time.Hour    // 1 hour - for location listings
	TTL_SEMI_STATIC_QUICK = 15 * time.Minute // 15 minutes - for spot layouts
)

// Highly Dynamic (Micro TTL: real-time sensitive)
const (
	TTL_REALTIME_SHORT = 30 * time.Second // 30 seconds - for spot status listings
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "parkly"
)

// ================== LOCATIONS MODULE ==================

const (
	CACHE_KEY_LOCATIONS_LIST  = CACHE_PREFIX + ":locations:list"         // all locations
	CACHE_KEY_LOCATION_DETAIL = CACHE_PREFIX + ":locations:detail:id:"   // + location-id
	CACHE_KEY_LOCATION_SPOTS  = CACHE_PREFIX + ":locations:spots:id:"    // + location-id + :zone:Z
	CACHE_KEY_SPOT_DETAIL     = CACHE_PREFIX + ":spots:detail:id:"       // + spot-id
)

const (
	TTL_LOCATIONS_LIST  = TTL_SEMI_STATIC_SHORT // 1 hour
	TTL_LOCATION_DETAIL = TTL_STATIC_LONG       // 24 hours
	TTL_LOCATION_SPOTS  = TTL_REALTIME_SHORT    // 30 seconds, spot status moves with reservations
	TTL_SPOT_DETAIL     = TTL_REALTIME_SHORT    // 30 seconds
)

// ================== VEHICLES MODULE ==================

const (
	CACHE_KEY_USER_VEHICLES = CACHE_PREFIX + ":vehicles:user:" // + user-id
	TTL_USER_VEHICLES       = TTL_STATIC_SHORT
)

// ================== INVALIDATION PATTERNS ==================

const (
	PATTERN_INVALIDATE_LOCATIONS_ALL = CACHE_PREFIX + ":locations:*"
	PATTERN_INVALIDATE_SPOTS_ALL     = CACHE_PREFIX + ":spots:*"
)

// ================== HELPER FUNCTIONS ==================

func BuildLocationDetailKey(locationID int64) string {
	return CACHE_KEY_LOCATION_DETAIL + fmt.Sprintf("%d", locationID)
}

// BuildLocationSpotsKey -> "parkly:locations:spots:id:7:zone:VIP" (zone "all" when unfiltered)
func BuildLocationSpotsKey(locationID int64, zone string) string {
	if zone == "" {
		zone = "all"
	}
	return CACHE_KEY_LOCATION_SPOTS + fmt.Sprintf("%d", locationID) + ":zone:" + zone
}

func BuildLocationSpotsPattern(locationID int64) string {
	return CACHE_KEY_LOCATION_SPOTS + fmt.Sprintf("%d", locationID) + ":*"
}

func BuildSpotDetailKey(spotID int64) string {
	return CACHE_KEY_SPOT_DETAIL + fmt.Sprintf("%d", spotID)
}

func BuildUserVehiclesKey(userID string) string {
	return CACHE_KEY_USER_VEHICLES + userID
}
