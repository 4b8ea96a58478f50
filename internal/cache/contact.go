package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lumera/contacts-service/internal/domain"
)

// keyPrefix namespaces contact cache entries in Redis.
const keyPrefix = "contacts:contact:"

// DefaultTTL bounds staleness of cached contacts. Writes invalidate eagerly,
// so the TTL only matters when an invalidation is lost.
const DefaultTTL = 5 * time.Minute

// ContactCache is a Redis read-through cache for contact records.
type ContactCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewContactCache creates a contact cache with the given TTL. A zero ttl
// falls back to DefaultTTL.
func NewContactCache(client *redis.Client, ttl time.Duration) *ContactCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ContactCache{client: client, ttl: ttl}
}

// Get returns the cached contact, or (nil, nil) on a cache miss.
func (c *ContactCache) Get(ctx context.Context, id string) (*domain.Contact, error) {
	data, err := c.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache get contact: %w", err)
	}

	var contact domain.Contact
	if err := json.Unmarshal(data, &contact); err != nil {
		// A corrupt entry is treated as a miss and overwritten on next Set.
		return nil, nil
	}

	return &contact, nil
}

// Set stores the contact under its ID.
func (c *ContactCache) Set(ctx context.Context, contact *domain.Contact) error {
	data, err := json.Marshal(contact)
	if err != nil {
		return fmt.Errorf("marshal contact for cache: %w", err)
	}

	if err := c.client.Set(ctx, keyPrefix+contact.ID, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set contact: %w", err)
	}

	return nil
}

// Delete evicts the contact from the cache.
func (c *ContactCache) Delete(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("cache delete contact: %w", err)
	}
	return nil
}
