package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Sort preferences are remembered for 28 days, matching the lifetime the
// original UI used for its sort cookie.
const sortPreferenceTTL = 2419200 * time.Second

// SortPreferences remembers each user's last-used ticket sort key in redis.
// A missing or unreachable redis only costs the remembered preference.
type SortPreferences struct {
	client *redis.Client
}

// NewSortPreferences builds the preference store.
func NewSortPreferences(client *redis.Client) *SortPreferences {
	return &SortPreferences{client: client}
}

func sortPreferenceKey(userID int64) string {
	return fmt.Sprintf("flicket:sort_pref:%d", userID)
}

// Get returns the remembered sort key, or "" when none is stored.
func (p *SortPreferences) Get(ctx context.Context, userID int64) string {
	if p == nil || p.client == nil {
		return ""
	}
	val, err := p.client.Get(ctx, sortPreferenceKey(userID)).Result()
	if err != nil {
		return ""
	}
	return val
}

// Set stores the sort key with the preference TTL.
func (p *SortPreferences) Set(ctx context.Context, userID int64, sort string) {
	if p == nil || p.client == nil || sort == "" {
		return
	}
	_ = p.client.Set(ctx, sortPreferenceKey(userID), sort, sortPreferenceTTL).Err()
}
