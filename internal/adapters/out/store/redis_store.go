package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/domain"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/json_types"
	"github.com/suchimauz/doctor-appointment-booking/internal/core/ports/out"
)

const (
	redisKeyPrefix = "appointment-booking"

	maxTxAttempts = 5
)

// releaseCell deletes a cell lock only while it still belongs to the booking.
var releaseCell = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisStore shares reservations between service replicas. A booking claims
// every grid cell its interval touches with SETNX, so two overlapping bookings
// always contend for at least one key.
type RedisStore struct {
	client      redis.UniversalClient
	cellMinutes int
	logger      out.LoggerPort
}

func NewRedisStore(client redis.UniversalClient, cellMinutes int, logger out.LoggerPort) (*RedisStore, error) {
	if cellMinutes <= 0 {
		return nil, fmt.Errorf("%w: cell size %d", domain.ErrInvalidInterval, cellMinutes)
	}
	return &RedisStore{
		client:      client,
		cellMinutes: cellMinutes,
		logger:      logger.WithModule("RedisStore"),
	}, nil
}

func bookingKey(id uuid.UUID) string {
	return fmt.Sprintf("%s:booking:%s", redisKeyPrefix, id)
}

func dayKey(date string) string {
	return fmt.Sprintf("%s:day:%s", redisKeyPrefix, date)
}

// cellKeys lists the grid cells covered by [start, end), starting from the
// cell that contains start.
func cellKeys(date string, start, end json_types.Clock, cellMinutes int) []string {
	keys := make([]string, 0)
	first := json_types.Clock(int(start) - int(start)%cellMinutes)
	for cell := first; cell < end; cell += json_types.Clock(cellMinutes) {
		keys = append(keys, fmt.Sprintf("%s:cell:%s:%s", redisKeyPrefix, date, cell))
	}
	return keys
}

// cellTTL keeps a cell lock a day past the end of its booking.
func cellTTL(endsAt time.Time) time.Duration {
	ttl := time.Until(endsAt) + 24*time.Hour
	if ttl < time.Minute {
		ttl = time.Minute
	}
	return ttl
}

func (r *RedisStore) Reserve(ctx context.Context, booking domain.Booking) error {
	date := booking.Date.String()
	cells := cellKeys(date, booking.StartTime, booking.EndTime, r.cellMinutes)
	owner := booking.ID.String()
	ttl := cellTTL(booking.EndsAt)

	acquired := make([]string, 0, len(cells))
	for _, cell := range cells {
		ok, err := r.client.SetNX(ctx, cell, owner, ttl).Result()
		if err != nil || !ok {
			r.release(ctx, acquired, owner)
			if err != nil {
				r.logger.Error("store.redis.reserve.setnx_failed", out.LogFields{
					"bookingId": owner,
					"cell":      cell,
					"error":     err.Error(),
				})
				return fmt.Errorf("store.redis.reserve.setnx_failed: %w", err)
			}
			r.logger.Info("store.redis.reserve.conflict", out.LogFields{
				"bookingId": owner,
				"cell":      cell,
			})
			return slotTakenError(booking)
		}
		acquired = append(acquired, cell)
	}

	payload, err := json.Marshal(booking)
	if err != nil {
		r.release(ctx, acquired, owner)
		return fmt.Errorf("store.redis.reserve.encode_failed: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, bookingKey(booking.ID), payload, 0)
		pipe.SAdd(ctx, dayKey(date), owner)
		return nil
	})
	if err != nil {
		r.release(ctx, acquired, owner)
		r.logger.Error("store.redis.reserve.write_failed", out.LogFields{
			"bookingId": owner,
			"error":     err.Error(),
		})
		return fmt.Errorf("store.redis.reserve.write_failed: %w", err)
	}

	return nil
}

func (r *RedisStore) release(ctx context.Context, cells []string, owner string) {
	for i := len(cells) - 1; i >= 0; i-- {
		if err := releaseCell.Run(ctx, r.client, []string{cells[i]}, owner).Err(); err != nil {
			r.logger.Warn("store.redis.release_failed", out.LogFields{
				"cell":  cells[i],
				"error": err.Error(),
			})
		}
	}
}

// watch runs fn as an optimistic transaction over keys and retries it while
// another client modifies a watched key first.
func (r *RedisStore) watch(ctx context.Context, fn func(tx *redis.Tx) error, keys ...string) error {
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err := r.client.Watch(ctx, fn, keys...)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
		r.logger.Debug("store.redis.tx.retry", out.LogFields{
			"attempt": attempt + 1,
			"keys":    len(keys),
		})
	}
	return fmt.Errorf("store.redis.tx_contended: %w", redis.TxFailedErr)
}

func decodeBooking(payload []byte) (*domain.Booking, error) {
	var booking domain.Booking
	if err := json.Unmarshal(payload, &booking); err != nil {
		return nil, fmt.Errorf("store.redis.decode_failed: %w", err)
	}
	return &booking, nil
}

// stringGetter is satisfied by both the client and a WATCH transaction.
type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readBooking(ctx context.Context, reader stringGetter, bookingID uuid.UUID) (*domain.Booking, error) {
	payload, err := reader.Get(ctx, bookingKey(bookingID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, bookingNotFoundError(bookingID)
	}
	if err != nil {
		return nil, fmt.Errorf("store.redis.get_failed: %w", err)
	}
	return decodeBooking(payload)
}

// ownedCells returns the cells still held by owner.
func ownedCells(ctx context.Context, tx *redis.Tx, cells []string, owner string) ([]string, error) {
	owned := make([]string, 0, len(cells))
	for _, cell := range cells {
		value, err := tx.Get(ctx, cell).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("store.redis.cell_read_failed: %w", err)
		}
		if value == owner {
			owned = append(owned, cell)
		}
	}
	return owned, nil
}

func (r *RedisStore) Get(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	return readBooking(ctx, r.client, bookingID)
}

// Cancel checks the status and writes the cancellation inside one WATCH
// transaction, so concurrent cancels of a booking have a single winner.
func (r *RedisStore) Cancel(ctx context.Context, bookingID uuid.UUID, reason string, at time.Time) (*domain.Booking, error) {
	snapshot, err := r.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	owner := bookingID.String()
	cells := cellKeys(snapshot.Date.String(), snapshot.StartTime, snapshot.EndTime, r.cellMinutes)

	var retired *domain.Booking
	err = r.watch(ctx, func(tx *redis.Tx) error {
		booking, err := readBooking(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if !booking.IsScheduled() {
			return alreadyCancelledError(bookingID)
		}

		owned, err := ownedCells(ctx, tx, cells, owner)
		if err != nil {
			return err
		}

		markCancelled(booking, reason, at)
		payload, err := json.Marshal(booking)
		if err != nil {
			return fmt.Errorf("store.redis.cancel.encode_failed: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, bookingKey(bookingID), payload, 0)
			pipe.SRem(ctx, dayKey(booking.Date.String()), owner)
			if len(owned) > 0 {
				pipe.Del(ctx, owned...)
			}
			return nil
		})
		if err != nil {
			return err
		}
		retired = booking
		return nil
	}, append([]string{bookingKey(bookingID)}, cells...)...)
	if err != nil {
		if !isDomainError(err) {
			r.logger.Error("store.redis.cancel.failed", out.LogFields{
				"bookingId": owner,
				"error":     err.Error(),
			})
		}
		return nil, err
	}

	return retired, nil
}

// Replace retires oldID and stores next in one WATCH transaction. Cells held
// by oldID count as free for next.
func (r *RedisStore) Replace(ctx context.Context, oldID uuid.UUID, reason string, at time.Time, next domain.Booking) (*domain.Booking, error) {
	snapshot, err := r.Get(ctx, oldID)
	if err != nil {
		return nil, err
	}

	oldOwner := oldID.String()
	nextOwner := next.ID.String()
	oldCells := cellKeys(snapshot.Date.String(), snapshot.StartTime, snapshot.EndTime, r.cellMinutes)
	nextCells := cellKeys(next.Date.String(), next.StartTime, next.EndTime, r.cellMinutes)

	nextSet := make(map[string]struct{}, len(nextCells))
	for _, cell := range nextCells {
		nextSet[cell] = struct{}{}
	}

	nextPayload, err := json.Marshal(next)
	if err != nil {
		return nil, fmt.Errorf("store.redis.replace.encode_failed: %w", err)
	}
	ttl := cellTTL(next.EndsAt)

	keys := make([]string, 0, 1+len(oldCells)+len(nextCells))
	keys = append(keys, bookingKey(oldID))
	keys = append(keys, oldCells...)
	keys = append(keys, nextCells...)

	var retired *domain.Booking
	err = r.watch(ctx, func(tx *redis.Tx) error {
		old, err := readBooking(ctx, tx, oldID)
		if err != nil {
			return err
		}
		if !old.IsScheduled() {
			return alreadyCancelledError(oldID)
		}

		for _, cell := range nextCells {
			holder, err := tx.Get(ctx, cell).Result()
			if errors.Is(err, redis.Nil) {
				continue
			}
			if err != nil {
				return fmt.Errorf("store.redis.cell_read_failed: %w", err)
			}
			if holder != oldOwner {
				r.logger.Info("store.redis.replace.conflict", out.LogFields{
					"bookingId":    nextOwner,
					"oldBookingId": oldOwner,
					"cell":         cell,
				})
				return slotTakenError(next)
			}
		}

		owned, err := ownedCells(ctx, tx, oldCells, oldOwner)
		if err != nil {
			return err
		}
		freed := make([]string, 0, len(owned))
		for _, cell := range owned {
			if _, reused := nextSet[cell]; !reused {
				freed = append(freed, cell)
			}
		}

		markCancelled(old, reason, at)
		oldPayload, err := json.Marshal(old)
		if err != nil {
			return fmt.Errorf("store.redis.replace.encode_failed: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, bookingKey(oldID), oldPayload, 0)
			pipe.SRem(ctx, dayKey(old.Date.String()), oldOwner)
			if len(freed) > 0 {
				pipe.Del(ctx, freed...)
			}
			for _, cell := range nextCells {
				pipe.Set(ctx, cell, nextOwner, ttl)
			}
			pipe.Set(ctx, bookingKey(next.ID), nextPayload, 0)
			pipe.SAdd(ctx, dayKey(next.Date.String()), nextOwner)
			return nil
		})
		if err != nil {
			return err
		}
		retired = old
		return nil
	}, keys...)
	if err != nil {
		if !isDomainError(err) {
			r.logger.Error("store.redis.replace.failed", out.LogFields{
				"bookingId":    nextOwner,
				"oldBookingId": oldOwner,
				"error":        err.Error(),
			})
		}
		return nil, err
	}

	return retired, nil
}

func (r *RedisStore) ListByDate(ctx context.Context, date time.Time) ([]domain.Booking, error) {
	ids, err := r.client.SMembers(ctx, dayKey(date.Format(json_types.DateLayout))).Result()
	if err != nil {
		return nil, fmt.Errorf("store.redis.list_failed: %w", err)
	}
	if len(ids) == 0 {
		return []domain.Booking{}, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, fmt.Sprintf("%s:booking:%s", redisKeyPrefix, id))
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("store.redis.list_failed: %w", err)
	}

	bookings := make([]domain.Booking, 0, len(values))
	for _, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}
		booking, err := decodeBooking([]byte(raw))
		if err != nil {
			return nil, err
		}
		if booking.IsScheduled() {
			bookings = append(bookings, *booking)
		}
	}

	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].StartsAt.Before(bookings[j].StartsAt)
	})

	return bookings, nil
}
