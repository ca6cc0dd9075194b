package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// releaseScript deletes a slot only while it still carries the caller's owner.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// AttemptSlots holds one lock key per (user, property) while a booking attempt
// is live. The key stores the attempt ID so only that attempt can free it.
type AttemptSlots struct {
	client    redis.UniversalClient
	prefix    string
	bookedTTL time.Duration
}

// AttemptSlotsOptions groups dependencies for NewAttemptSlots.
type AttemptSlotsOptions struct {
	Client redis.UniversalClient
	// Prefix namespaces keys; defaults to "portal:booking:".
	Prefix string
	// BookedTTL bounds how long a confirmed-booking marker is remembered; zero keeps it forever.
	BookedTTL time.Duration
}

// NewAttemptSlots creates a Redis-backed slot table.
func NewAttemptSlots(opts AttemptSlotsOptions) *AttemptSlots {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "portal:booking:"
	}
	return &AttemptSlots{client: opts.Client, prefix: prefix, bookedTTL: opts.BookedTTL}
}

// Acquire sets the slot key to owner only if absent. ttl keeps an abandoned
// checkout from blocking the pair indefinitely.
func (s *AttemptSlots) Acquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
	if key == "" {
		return false, errors.New("slot key cannot be empty")
	}
	if owner == "" {
		return false, errors.New("slot owner cannot be empty")
	}
	res, err := s.client.SetArgs(ctx, s.slotKey(key), owner, redis.SetArgs{
		Mode: "NX",
		TTL:  ttl,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("acquire slot: %w", err)
	}
	return res == "OK", nil
}

// Release deletes the slot when owner holds it. A slot that expired and was
// taken by another attempt is left alone.
func (s *AttemptSlots) Release(ctx context.Context, key, owner string) error {
	if err := releaseScript.Run(ctx, s.client, []string{s.slotKey(key)}, owner).Err(); err != nil {
		return fmt.Errorf("release slot: %w", err)
	}
	return nil
}

// Holder returns the owner of a held slot, or "" when the slot is free.
func (s *AttemptSlots) Holder(ctx context.Context, key string) (string, error) {
	owner, err := s.client.Get(ctx, s.slotKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read slot: %w", err)
	}
	return owner, nil
}

func (s *AttemptSlots) MarkBooked(ctx context.Context, key string) error {
	if err := s.client.Set(ctx, s.bookedKey(key), "1", s.bookedTTL).Err(); err != nil {
		return fmt.Errorf("mark booked: %w", err)
	}
	return nil
}

func (s *AttemptSlots) IsBooked(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, s.bookedKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("check booked: %w", err)
	}
	return n > 0, nil
}

func (s *AttemptSlots) slotKey(key string) string   { return s.prefix + "slot:" + key }
func (s *AttemptSlots) bookedKey(key string) string { return s.prefix + "booked:" + key }
