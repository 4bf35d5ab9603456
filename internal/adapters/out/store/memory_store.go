package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/domain"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/json_types"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/ports/out"
)

// MemoryStore keeps scheduled bookings in process memory. Cancelled bookings
// move to a bounded LRU history so lookups of recent ids keep working. The ids
// of all cancelled bookings are kept apart from the history, so a second cancel
// is rejected even after the payload was evicted.
type MemoryStore struct {
	mu        sync.RWMutex
	scheduled map[uuid.UUID]domain.Booking
	byDay     map[string][]uuid.UUID
	cancelled map[uuid.UUID]struct{}
	history   *lru.Cache[uuid.UUID, domain.Booking]
	logger    out.LoggerPort
}

func NewMemoryStore(historySize int, logger out.LoggerPort) (*MemoryStore, error) {
	history, err := lru.New[uuid.UUID, domain.Booking](historySize)
	if err != nil {
		logger.Error("store.memory.init_failed", out.LogFields{
			"error": err.Error(),
			"size":  historySize,
		})
		return nil, err
	}

	return &MemoryStore{
		scheduled: make(map[uuid.UUID]domain.Booking),
		byDay:     make(map[string][]uuid.UUID),
		cancelled: make(map[uuid.UUID]struct{}),
		history:   history,
		logger:    logger.WithModule("MemoryStore"),
	}, nil
}

// conflict returns the scheduled booking other than ignore that overlaps booking.
func (m *MemoryStore) conflict(booking domain.Booking, ignore uuid.UUID) (uuid.UUID, bool) {
	for _, id := range m.byDay[booking.Date.String()] {
		if id == ignore {
			continue
		}
		existing := m.scheduled[id]
		if existing.Interval().Overlaps(booking.StartsAt, booking.EndsAt) {
			return id, true
		}
	}
	return uuid.Nil, false
}

func (m *MemoryStore) insert(booking domain.Booking) {
	dayKey := booking.Date.String()
	m.scheduled[booking.ID] = booking
	m.byDay[dayKey] = append(m.byDay[dayKey], booking.ID)
}

// lookupScheduled returns the scheduled booking with bookingID or the error a
// cancel of it should fail with.
func (m *MemoryStore) lookupScheduled(bookingID uuid.UUID) (domain.Booking, error) {
	booking, exists := m.scheduled[bookingID]
	if exists {
		return booking, nil
	}
	if _, cancelled := m.cancelled[bookingID]; cancelled {
		return domain.Booking{}, alreadyCancelledError(bookingID)
	}
	return domain.Booking{}, bookingNotFoundError(bookingID)
}

func (m *MemoryStore) retire(booking domain.Booking, reason string, at time.Time) domain.Booking {
	markCancelled(&booking, reason, at)

	delete(m.scheduled, booking.ID)
	dayKey := booking.Date.String()
	ids := m.byDay[dayKey]
	for i, id := range ids {
		if id == booking.ID {
			m.byDay[dayKey] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	if len(m.byDay[dayKey]) == 0 {
		delete(m.byDay, dayKey)
	}
	m.cancelled[booking.ID] = struct{}{}
	m.history.Add(booking.ID, booking)

	return booking
}

func (m *MemoryStore) Reserve(ctx context.Context, booking domain.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, taken := m.conflict(booking, uuid.Nil); taken {
		m.logger.Info("store.reserve.conflict", out.LogFields{
			"bookingId":  booking.ID,
			"conflictId": id,
			"date":       booking.Date.String(),
			"startTime":  booking.StartTime.String(),
		})
		return slotTakenError(booking)
	}

	m.insert(booking)

	m.logger.Debug("store.reserve.success", out.LogFields{
		"bookingId": booking.ID,
		"date":      booking.Date.String(),
		"startTime": booking.StartTime.String(),
	})

	return nil
}

func (m *MemoryStore) Get(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if booking, exists := m.scheduled[bookingID]; exists {
		return &booking, nil
	}
	if booking, exists := m.history.Get(bookingID); exists {
		return &booking, nil
	}

	return nil, bookingNotFoundError(bookingID)
}

func (m *MemoryStore) Cancel(ctx context.Context, bookingID uuid.UUID, reason string, at time.Time) (*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	booking, err := m.lookupScheduled(bookingID)
	if err != nil {
		return nil, err
	}

	retired := m.retire(booking, reason, at)
	return &retired, nil
}

func (m *MemoryStore) Replace(ctx context.Context, oldID uuid.UUID, reason string, at time.Time, next domain.Booking) (*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	old, err := m.lookupScheduled(oldID)
	if err != nil {
		return nil, err
	}

	if id, taken := m.conflict(next, oldID); taken {
		m.logger.Info("store.replace.conflict", out.LogFields{
			"bookingId":    next.ID,
			"oldBookingId": oldID,
			"conflictId":   id,
			"date":         next.Date.String(),
			"startTime":    next.StartTime.String(),
		})
		return nil, slotTakenError(next)
	}

	retired := m.retire(old, reason, at)
	m.insert(next)

	m.logger.Debug("store.replace.success", out.LogFields{
		"bookingId":    next.ID,
		"oldBookingId": oldID,
	})

	return &retired, nil
}

func (m *MemoryStore) ListByDate(ctx context.Context, date time.Time) ([]domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := m.byDay[date.Format(json_types.DateLayout)]
	bookings := make([]domain.Booking, 0, len(ids))
	for _, id := range ids {
		bookings = append(bookings, m.scheduled[id])
	}

	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].StartsAt.Before(bookings[j].StartsAt)
	})

	return bookings, nil
}
