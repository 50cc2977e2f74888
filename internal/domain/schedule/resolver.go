package schedule

import (
	"sync"
	"time"

	"github.com/billoapp/tabz/pkg/apperror"
)

// Resolver converts between absolute instants and venue-local wall-clock
// time using IANA zone database semantics. An unresolvable zone identifier
// is a configuration defect and is reported as UnknownTimeZone, never
// silently defaulted to UTC.
type Resolver struct {
	mu    sync.RWMutex
	zones map[string]*time.Location
}

// NewResolver creates a resolver with an empty zone cache
func NewResolver() *Resolver {
	return &Resolver{zones: make(map[string]*time.Location)}
}

// Location resolves a zone identifier, caching loaded locations
func (r *Resolver) Location(zone string) (*time.Location, error) {
	if zone == "" {
		return nil, apperror.NewUnknownTimeZone(zone)
	}

	r.mu.RLock()
	loc, ok := r.zones[zone]
	r.mu.RUnlock()
	if ok {
		return loc, nil
	}

	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, apperror.NewUnknownTimeZone(zone)
	}

	r.mu.Lock()
	r.zones[zone] = loc
	r.mu.Unlock()

	return loc, nil
}

// ToLocal converts an absolute instant to the venue-local wall clock
func (r *Resolver) ToLocal(at time.Time, zone string) (time.Time, error) {
	loc, err := r.Location(zone)
	if err != nil {
		return time.Time{}, err
	}
	return at.In(loc), nil
}

// FromLocal converts a venue-local calendar date and time of day to an
// absolute instant. DST transitions follow the zone database; no fixed-hour
// arithmetic is ever applied.
func (r *Resolver) FromLocal(year int, month time.Month, day, hour, minute int, zone string) (time.Time, error) {
	loc, err := r.Location(zone)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(year, month, day, hour, minute, 0, 0, loc), nil
}
