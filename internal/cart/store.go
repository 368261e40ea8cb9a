package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists carts and wishlists in redis, keyed by the opaque device key.
// Values are JSON-serialized arrays, read once per request and written after
// every mutation.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore constructs a Store. Entries expire after ttl of inactivity.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func cartKey(deviceKey string) string {
	return "cart:" + deviceKey
}

func wishlistKey(deviceKey string) string {
	return "wishlist:" + deviceKey
}

// LoadCart fetches the cart snapshot for a device, empty when absent.
func (s *Store) LoadCart(ctx context.Context, deviceKey string) (Snapshot, error) {
	payload, err := s.client.Get(ctx, cartKey(deviceKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("cart: load: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("cart: decode: %w", err)
	}
	return snap, nil
}

// SaveCart writes the snapshot, or deletes the key for an empty cart.
func (s *Store) SaveCart(ctx context.Context, deviceKey string, snap Snapshot) error {
	if snap.IsEmpty() {
		if err := s.client.Del(ctx, cartKey(deviceKey)).Err(); err != nil {
			return fmt.Errorf("cart: delete: %w", err)
		}
		return nil
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("cart: encode: %w", err)
	}
	if err := s.client.Set(ctx, cartKey(deviceKey), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("cart: save: %w", err)
	}
	return nil
}

// LoadWishlist fetches the wishlist for a device, empty when absent.
func (s *Store) LoadWishlist(ctx context.Context, deviceKey string) ([]WishlistItem, error) {
	payload, err := s.client.Get(ctx, wishlistKey(deviceKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cart: load wishlist: %w", err)
	}
	var items []WishlistItem
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, fmt.Errorf("cart: decode wishlist: %w", err)
	}
	return items, nil
}

// SaveWishlist writes the wishlist, or deletes the key when empty.
func (s *Store) SaveWishlist(ctx context.Context, deviceKey string, items []WishlistItem) error {
	if len(items) == 0 {
		if err := s.client.Del(ctx, wishlistKey(deviceKey)).Err(); err != nil {
			return fmt.Errorf("cart: delete wishlist: %w", err)
		}
		return nil
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("cart: encode wishlist: %w", err)
	}
	if err := s.client.Set(ctx, wishlistKey(deviceKey), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("cart: save wishlist: %w", err)
	}
	return nil
}

// IdleCarts returns device keys whose carts have not changed since the cutoff.
// Used by the abandoned-cart reminder job.
func (s *Store) IdleCarts(ctx context.Context, cutoff time.Time) ([]string, error) {
	var idle []string
	iter := s.client.Scan(ctx, 0, "cart:*", 200).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		payload, err := s.client.Get(ctx, key).Bytes()
		if err != nil {
			continue
		}
		var snap Snapshot
		if err := json.Unmarshal(payload, &snap); err != nil {
			continue
		}
		if !snap.IsEmpty() && snap.UpdatedAt.Before(cutoff) {
			idle = append(idle, key[len("cart:"):])
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("cart: scan idle: %w", err)
	}
	return idle, nil
}
